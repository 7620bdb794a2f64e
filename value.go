package goproblem

import (
	"encoding/json"
	"io"
	"sort"
	"strconv"

	j "github.com/goccy/go-json"

	eng "github.com/reoring/goproblem/internal/engine"
)

// Writer emits JSON tokens. Errors are sticky; check Err or Flush.
type Writer = eng.Writer

// NewJSONWriter returns a compact Writer over out. Use SetIndent for indented
// output and Flush when done.
func NewJSONWriter(out io.Writer) *Writer { return eng.NewWriter(out) }

// ReadValue deserializes the value starting at the reader's current token:
// strings, numbers (per the reader's NumberMode), booleans, null, arrays as
// []any and objects as *Extensions. The reader is left on the value's last
// token.
func ReadValue(r *Reader) (any, error) { return readValue(r, "") }

func readValue(r *Reader, path string) (any, error) {
	tok := r.Token()
	switch tok.Kind {
	case _tokenBeginObject:
		return readObject(r, path)
	case _tokenBeginArray:
		return readArray(r, path)
	case _tokenString:
		return tok.String, nil
	case _tokenNumber:
		return convertNumber(tok.Number, r.NumberMode()), nil
	case _tokenBool:
		return tok.Bool, nil
	case _tokenNull:
		return nil, nil
	case _tokenNone:
		return nil, unexpectedEnd(r, path)
	default:
		return nil, malformed(r, path, "unexpected "+tok.Kind.String())
	}
}

func readObject(r *Reader, path string) (*Extensions, error) {
	obj := NewExtensions()
	for {
		if err := advance(r, path); err != nil {
			return nil, err
		}
		switch r.Kind() {
		case _tokenEndObject:
			return obj, nil
		case _tokenKey:
			key := r.Token().String
			kpath := joinPointer(path, key)
			if err := advance(r, kpath); err != nil {
				return nil, err
			}
			v, err := readValue(r, kpath)
			if err != nil {
				return nil, err
			}
			if obj.Has(key) {
				return nil, duplicateKey(kpath, key)
			}
			obj.insert(key, v)
		default:
			return nil, malformed(r, path, "expected key, got "+r.Kind().String())
		}
	}
}

func readArray(r *Reader, path string) ([]any, error) {
	arr := []any{}
	for i := 0; ; i++ {
		if err := advance(r, path); err != nil {
			return nil, err
		}
		if r.Kind() == _tokenEndArray {
			return arr, nil
		}
		v, err := readValue(r, joinPointer(path, strconv.Itoa(i)))
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}

// advance moves to the next token; running out of input is a malformed
// document at this point.
func advance(r *Reader, path string) error {
	ok, err := r.Read()
	if err != nil {
		return readFailure(r, path, err)
	}
	if !ok {
		return unexpectedEnd(r, path)
	}
	return nil
}

func convertNumber(lit string, mode NumberMode) any {
	switch mode {
	case NumberJSONNumber:
		return json.Number(lit)
	case NumberFloat64:
		if f, err := strconv.ParseFloat(lit, 64); err == nil {
			return f
		}
		return json.Number(lit)
	default:
		if n, err := strconv.ParseInt(lit, 10, 64); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(lit, 64); err == nil {
			return f
		}
		return json.Number(lit)
	}
}

// WriteValue serializes v. Ordered maps keep their order, map[string]any is
// written with sorted keys, problem documents go through the document codec
// and anything else is marshaled with go-json.
func WriteValue(w *Writer, v any) error {
	writeValue(w, v)
	return w.Err()
}

func writeValue(w *Writer, v any) {
	if w.Err() != nil {
		return
	}
	switch x := v.(type) {
	case nil:
		w.Null()
	case string:
		w.String(x)
	case bool:
		w.Bool(x)
	case int:
		w.Int(int64(x))
	case int8:
		w.Int(int64(x))
	case int16:
		w.Int(int64(x))
	case int32:
		w.Int(int64(x))
	case int64:
		w.Int(x)
	case uint:
		w.Uint(uint64(x))
	case uint8:
		w.Uint(uint64(x))
	case uint16:
		w.Uint(uint64(x))
	case uint32:
		w.Uint(uint64(x))
	case uint64:
		w.Uint(x)
	case float32:
		w.Float(float64(x), 32)
	case float64:
		w.Float(x, 64)
	case json.Number:
		w.Number(string(x))
	case json.RawMessage:
		w.RawValue(x)
	case []any:
		w.BeginArray()
		for _, e := range x {
			writeValue(w, e)
		}
		w.EndArray()
	case []string:
		writeStrings(w, x)
	case *Extensions:
		if x == nil {
			w.Null()
			return
		}
		writeObject(w, x)
	case Extensions:
		writeObject(w, &x)
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		w.BeginObject()
		for _, k := range keys {
			w.Key(k)
			writeValue(w, x[k])
		}
		w.EndObject()
	case *Problem:
		_ = WriteProblem(w, x)
	case Problem:
		_ = WriteProblem(w, &x)
	case *ValidationProblem:
		_ = WriteValidationProblem(w, x)
	case ValidationProblem:
		_ = WriteValidationProblem(w, &x)
	default:
		b, err := j.MarshalNoEscape(v)
		if err != nil {
			w.Fail(err)
			return
		}
		w.RawValue(b)
	}
}

func writeObject(w *Writer, m *Extensions) {
	w.BeginObject()
	for k, v := range m.All() {
		w.Key(k)
		writeValue(w, v)
	}
	w.EndObject()
}

func writeStrings(w *Writer, ss []string) {
	w.BeginArray()
	for _, s := range ss {
		w.String(s)
	}
	w.EndArray()
}
