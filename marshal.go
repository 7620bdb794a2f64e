package goproblem

import (
	"bytes"
	"errors"
	"io"
)

var errNilTarget = errors.New("goproblem: Unmarshal into nil document")

// Marshal returns the compact JSON encoding of p.
func Marshal(p *Problem) ([]byte, error) {
	return marshal(func(out io.Writer, o WriteOpt) error { return Encode(out, p, o) }, WriteOpt{})
}

// MarshalIndent is like Marshal but indents nested members with indent.
func MarshalIndent(p *Problem, indent string) ([]byte, error) {
	return marshal(func(out io.Writer, o WriteOpt) error { return Encode(out, p, o) }, WriteOpt{Indent: indent})
}

// MarshalValidation returns the compact JSON encoding of p.
func MarshalValidation(p *ValidationProblem) ([]byte, error) {
	return marshal(func(out io.Writer, o WriteOpt) error { return EncodeValidation(out, p, o) }, WriteOpt{})
}

// MarshalValidationIndent is like MarshalValidation with indented output.
func MarshalValidationIndent(p *ValidationProblem, indent string) ([]byte, error) {
	return marshal(func(out io.Writer, o WriteOpt) error { return EncodeValidation(out, p, o) }, WriteOpt{Indent: indent})
}

func marshal(enc func(io.Writer, WriteOpt) error, o WriteOpt) ([]byte, error) {
	var buf bytes.Buffer
	if err := enc(&buf, o); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Encode writes p to out and flushes.
func Encode(out io.Writer, p *Problem, o WriteOpt) error {
	w := NewJSONWriter(out)
	w.SetIndent(o.Indent)
	if err := WriteProblem(w, p); err != nil {
		return err
	}
	return w.Flush()
}

// EncodeValidation writes p to out and flushes.
func EncodeValidation(out io.Writer, p *ValidationProblem, o WriteOpt) error {
	w := NewJSONWriter(out)
	w.SetIndent(o.Indent)
	if err := WriteValidationProblem(w, p); err != nil {
		return err
	}
	return w.Flush()
}

// Unmarshal reads data into p. Empty input or a value that is not an object
// leaves p untouched. Members already
// present in p are overwritten, except extensions, which fail with a
// duplicate_key issue.
func Unmarshal(data []byte, p *Problem, opts ...ReadOption) error {
	if p == nil {
		return errNilTarget
	}
	o := buildReadOpt(opts)
	src, err := bytesSource(data, o)
	if err != nil {
		return err
	}
	_, err = decode(src, o, func(r *Reader) (*Problem, error) { return ReadProblem(r, p) })
	return err
}

// UnmarshalValidation reads data into p; see Unmarshal.
func UnmarshalValidation(data []byte, p *ValidationProblem, opts ...ReadOption) error {
	if p == nil {
		return errNilTarget
	}
	o := buildReadOpt(opts)
	src, err := bytesSource(data, o)
	if err != nil {
		return err
	}
	_, err = decode(src, o, func(r *Reader) (*ValidationProblem, error) { return ReadValidationProblem(r, p) })
	return err
}

// Decode reads a single problem document from rd. It returns nil when the
// input is empty or its value is not an object.
func Decode(rd io.Reader, opts ...ReadOption) (*Problem, error) {
	o := buildReadOpt(opts)
	src, err := readerSource(rd, o)
	if err != nil {
		return nil, err
	}
	return decode(src, o, func(r *Reader) (*Problem, error) { return ReadProblem(r, nil) })
}

// DecodeValidation reads a single validation problem document from rd.
func DecodeValidation(rd io.Reader, opts ...ReadOption) (*ValidationProblem, error) {
	o := buildReadOpt(opts)
	src, err := readerSource(rd, o)
	if err != nil {
		return nil, err
	}
	return decode(src, o, func(r *Reader) (*ValidationProblem, error) { return ReadValidationProblem(r, nil) })
}

func bytesSource(data []byte, o ReadOpt) (Source, error) {
	if o.MaxBytes > 0 && int64(len(data)) > o.MaxBytes {
		return nil, truncated(o.MaxBytes)
	}
	return JSONBytes(data), nil
}

// readerSource enforces MaxBytes up front, otherwise it streams.
func readerSource(rd io.Reader, o ReadOpt) (Source, error) {
	if o.MaxBytes <= 0 {
		return JSONReader(rd), nil
	}
	data, err := io.ReadAll(io.LimitReader(rd, o.MaxBytes+1))
	if err != nil {
		iss := newIssue(CodeParseError, "", err.Error(), -1)
		iss.Cause = err
		return nil, iss
	}
	return bytesSource(data, o)
}

// decode reads exactly one top-level value. Anything but an object, including
// empty input, yields a nil document.
func decode[T any](src Source, o ReadOpt, read func(*Reader) (*T, error)) (*T, error) {
	if o.setNumberMode {
		src = WithNumberMode(src, o.NumberMode)
	}
	r := NewReader(src)
	ok, err := r.Read()
	if err != nil {
		return nil, readFailure(r, "", err)
	}
	if !ok {
		return nil, nil
	}
	v, err := read(r)
	if err != nil {
		return nil, err
	}
	if v == nil {
		if _, err := readValue(r, ""); err != nil {
			return nil, err
		}
	}
	more, err := r.Read()
	if err != nil {
		return nil, readFailure(r, "", err)
	}
	if more {
		return nil, malformed(r, "", "unexpected "+r.Kind().String()+" after document")
	}
	return v, nil
}

// MarshalJSON implements json.Marshaler.
func (p *Problem) MarshalJSON() ([]byte, error) { return Marshal(p) }

// UnmarshalJSON implements json.Unmarshaler.
func (p *Problem) UnmarshalJSON(data []byte) error { return Unmarshal(data, p) }

// MarshalJSON implements json.Marshaler.
func (p *ValidationProblem) MarshalJSON() ([]byte, error) { return MarshalValidation(p) }

// UnmarshalJSON implements json.Unmarshaler.
func (p *ValidationProblem) UnmarshalJSON(data []byte) error { return UnmarshalValidation(data, p) }
