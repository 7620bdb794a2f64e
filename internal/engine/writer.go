package engine

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	j "github.com/goccy/go-json"
)

// ErrWriterState is returned when tokens are written in an order that cannot
// produce a valid JSON document.
var ErrWriterState = errors.New("engine: invalid writer state")

type writeFrame struct {
	kind     containerKind
	count    int
	afterKey bool
}

// Writer emits JSON tokens to an io.Writer, either compact or indented.
// Errors are sticky: after the first failure every call is a no-op and Err
// (or Flush) reports it.
type Writer struct {
	out    *bufio.Writer
	indent string
	stack  []writeFrame
	err    error
}

// NewWriter returns a compact Writer. Set an indent string with SetIndent.
func NewWriter(w io.Writer) *Writer {
	return &Writer{out: bufio.NewWriter(w)}
}

// SetIndent enables indented output using indent per nesting level.
// An empty string switches back to compact output.
func (w *Writer) SetIndent(indent string) { w.indent = indent }

// Err returns the first error encountered.
func (w *Writer) Err() error { return w.err }

// Flush writes buffered output to the underlying writer.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if err := w.out.Flush(); err != nil {
		w.err = err
	}
	return w.err
}

// Fail records err as the sticky error unless one is already set.
func (w *Writer) Fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

// BeginObject writes '{'.
func (w *Writer) BeginObject() {
	w.beginValue()
	w.raw("{")
	w.stack = append(w.stack, writeFrame{kind: kindObject})
}

// EndObject writes '}'.
func (w *Writer) EndObject() { w.end(kindObject, "}") }

// BeginArray writes '['.
func (w *Writer) BeginArray() {
	w.beginValue()
	w.raw("[")
	w.stack = append(w.stack, writeFrame{kind: kindArray})
}

// EndArray writes ']'.
func (w *Writer) EndArray() { w.end(kindArray, "]") }

// Key writes an object key. The next call must write its value.
func (w *Writer) Key(name string) {
	if w.err != nil {
		return
	}
	n := len(w.stack)
	if n == 0 || w.stack[n-1].kind != kindObject || w.stack[n-1].afterKey {
		w.Fail(ErrWriterState)
		return
	}
	top := &w.stack[n-1]
	w.separator(top)
	w.quoted(name)
	if w.indent != "" {
		w.raw(": ")
	} else {
		w.raw(":")
	}
	top.afterKey = true
}

// String writes a string value.
func (w *Writer) String(s string) {
	w.beginValue()
	w.quoted(s)
}

// Int writes an integer value.
func (w *Writer) Int(v int64) {
	w.beginValue()
	w.raw(strconv.FormatInt(v, 10))
}

// Uint writes an unsigned integer value.
func (w *Writer) Uint(v uint64) {
	w.beginValue()
	w.raw(strconv.FormatUint(v, 10))
}

// Float writes a floating point value using the shortest representation that
// round-trips. NaN and infinities are rejected.
func (w *Writer) Float(v float64, bits int) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		w.Fail(errors.New("engine: unsupported float value " + strconv.FormatFloat(v, 'g', -1, bits)))
		return
	}
	w.beginValue()
	abs := math.Abs(v)
	format := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	b := strconv.AppendFloat(nil, v, format, -1, bits)
	if format == 'e' {
		// e-07 -> e-7, matching encoding/json.
		if n := len(b); n >= 4 && b[n-4] == 'e' && b[n-3] == '-' && b[n-2] == '0' {
			b[n-2] = b[n-1]
			b = b[:n-1]
		}
	}
	w.raw(string(b))
}

// Number writes a pre-formatted JSON number literal.
func (w *Writer) Number(lit string) {
	if lit == "" {
		lit = "0"
	}
	w.beginValue()
	w.raw(lit)
}

// Bool writes true or false.
func (w *Writer) Bool(v bool) {
	w.beginValue()
	if v {
		w.raw("true")
	} else {
		w.raw("false")
	}
}

// Null writes null.
func (w *Writer) Null() {
	w.beginValue()
	w.raw("null")
}

// RawValue writes an already-encoded JSON value. In indented mode the value is
// re-indented to the current nesting level.
func (w *Writer) RawValue(data []byte) {
	w.beginValue()
	if w.err != nil {
		return
	}
	if w.indent == "" {
		var buf bytes.Buffer
		if err := j.Compact(&buf, data); err != nil {
			w.Fail(err)
			return
		}
		_, w.err = w.out.Write(buf.Bytes())
		return
	}
	var buf bytes.Buffer
	if err := j.Indent(&buf, data, strings.Repeat(w.indent, len(w.stack)), w.indent); err != nil {
		w.Fail(err)
		return
	}
	_, w.err = w.out.Write(buf.Bytes())
}

func (w *Writer) beginValue() {
	if w.err != nil {
		return
	}
	n := len(w.stack)
	if n == 0 {
		return
	}
	top := &w.stack[n-1]
	switch {
	case top.kind == kindObject && top.afterKey:
		top.afterKey = false
	case top.kind == kindObject:
		w.Fail(ErrWriterState)
	default:
		w.separator(top)
	}
}

// separator writes the comma and line break that precede an element.
func (w *Writer) separator(top *writeFrame) {
	if top.count > 0 {
		w.raw(",")
	}
	top.count++
	w.newline(len(w.stack))
}

func (w *Writer) end(kind containerKind, closer string) {
	if w.err != nil {
		return
	}
	n := len(w.stack)
	if n == 0 || w.stack[n-1].kind != kind || w.stack[n-1].afterKey {
		w.Fail(ErrWriterState)
		return
	}
	count := w.stack[n-1].count
	w.stack = w.stack[:n-1]
	if count > 0 {
		w.newline(len(w.stack))
	}
	w.raw(closer)
}

func (w *Writer) newline(depth int) {
	if w.indent == "" {
		return
	}
	w.raw("\n")
	for i := 0; i < depth; i++ {
		w.raw(w.indent)
	}
}

func (w *Writer) quoted(s string) {
	if w.err != nil {
		return
	}
	b, err := j.MarshalNoEscape(s)
	if err != nil {
		w.Fail(err)
		return
	}
	_, w.err = w.out.Write(b)
}

func (w *Writer) raw(s string) {
	if w.err != nil {
		return
	}
	_, w.err = w.out.WriteString(s)
}
