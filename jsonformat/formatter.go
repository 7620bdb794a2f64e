// Package jsonformat writes problem documents as JSON in either the RFC 7807
// shape or the older shape kept for compatibility version 2.1.
package jsonformat

import (
	"fmt"
	"io"

	j "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/reoring/goproblem"
)

// Mode selects the wire shape.
type Mode int

const (
	// ModeRFC7807 omits unset members and places errors before extensions.
	ModeRFC7807 Mode = iota
	// ModeLegacy always writes the five well-known members, null when unset,
	// and always writes errors for validation problems.
	ModeLegacy
)

func (m Mode) String() string {
	if m == ModeLegacy {
		return "legacy"
	}
	return "rfc7807"
}

// ModeFor maps the compatibility flag to a Mode.
func ModeFor(allowRFC7807 bool) Mode {
	if allowRFC7807 {
		return ModeRFC7807
	}
	return ModeLegacy
}

// Formatter writes and reads problem documents.
type Formatter struct {
	mode     Mode
	indent   bool
	log      *zap.Logger
	readOpts []goproblem.ReadOption
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithIndent switches to two-space indented output.
func WithIndent(indent bool) Option { return func(f *Formatter) { f.indent = indent } }

// WithLogger sets the logger; the default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(f *Formatter) {
		if log != nil {
			f.log = log
		}
	}
}

// WithReadOptions passes options to every read.
func WithReadOptions(opts ...goproblem.ReadOption) Option {
	return func(f *Formatter) { f.readOpts = append(f.readOpts, opts...) }
}

// NewFormatter returns a Formatter for mode.
func NewFormatter(mode Mode, opts ...Option) *Formatter {
	f := &Formatter{mode: mode, log: zap.NewNop()}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Mode reports the wire shape in use.
func (f *Formatter) Mode() Mode { return f.mode }

// Write encodes v to w. Problem documents use the formatter's mode; other
// values are marshaled with go-json.
func (f *Formatter) Write(w io.Writer, v any) error {
	var err error
	switch x := v.(type) {
	case *goproblem.Problem:
		err = f.writeDocument(w, func(jw *goproblem.Writer) error {
			if f.mode == ModeLegacy && x != nil {
				return writeLegacy(jw, x, nil)
			}
			return goproblem.WriteProblem(jw, x)
		})
	case *goproblem.ValidationProblem:
		err = f.writeDocument(w, func(jw *goproblem.Writer) error {
			if f.mode == ModeLegacy && x != nil {
				return writeLegacy(jw, &x.Problem, &x.Errors)
			}
			return goproblem.WriteValidationProblem(jw, x)
		})
	default:
		err = f.writeOther(w, v)
	}
	if err != nil {
		f.log.Error("Failed to write JSON", zap.Stringer("mode", f.mode), zap.Error(err))
		return fmt.Errorf("jsonformat: %w", err)
	}
	return nil
}

func (f *Formatter) writeDocument(w io.Writer, write func(*goproblem.Writer) error) error {
	jw := goproblem.NewJSONWriter(w)
	if f.indent {
		jw.SetIndent("  ")
	}
	if err := write(jw); err != nil {
		return err
	}
	return jw.Flush()
}

func (f *Formatter) writeOther(w io.Writer, v any) error {
	var (
		data []byte
		err  error
	)
	if f.indent {
		data, err = j.MarshalIndent(v, "", "  ")
	} else {
		data, err = j.Marshal(v)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// writeLegacy writes every well-known member, then errors when errs is
// non-nil, then extensions.
func writeLegacy(w *goproblem.Writer, p *goproblem.Problem, errs *goproblem.ValidationErrors) error {
	str := func(key, v string) {
		w.Key(key)
		if v == "" {
			w.Null()
			return
		}
		w.String(v)
	}
	w.BeginObject()
	str(goproblem.KeyType, p.Type)
	str(goproblem.KeyTitle, p.Title)
	w.Key(goproblem.KeyStatus)
	if p.Status != nil {
		w.Int(int64(*p.Status))
	} else {
		w.Null()
	}
	str(goproblem.KeyDetail, p.Detail)
	str(goproblem.KeyInstance, p.Instance)
	var reserved []string
	if errs != nil {
		w.Key(goproblem.KeyErrors)
		goproblem.WriteErrors(w, errs)
		reserved = append(reserved, goproblem.KeyErrors)
	}
	if err := goproblem.WriteExtensions(w, &p.Extensions, reserved...); err != nil {
		return err
	}
	w.EndObject()
	return w.Err()
}

// ReadProblem decodes a problem document. Both modes accept either shape.
func (f *Formatter) ReadProblem(r io.Reader) (*goproblem.Problem, error) {
	p, err := goproblem.Decode(r, f.readOpts...)
	if err != nil {
		f.log.Debug("Failed to read problem", zap.Error(err))
		return nil, err
	}
	return p, nil
}

// ReadValidationProblem decodes a validation problem document.
func (f *Formatter) ReadValidationProblem(r io.Reader) (*goproblem.ValidationProblem, error) {
	p, err := goproblem.DecodeValidation(r, f.readOpts...)
	if err != nil {
		f.log.Debug("Failed to read validation problem", zap.Error(err))
		return nil, err
	}
	return p, nil
}
