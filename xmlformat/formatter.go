// Package xmlformat writes and reads problem documents as XML. Documents are
// first converted to a wrapper shape chosen by a wrapper.Registry, then handed
// to encoding/xml.
package xmlformat

import (
	"encoding/xml"
	"fmt"
	"io"
	"reflect"

	"go.uber.org/zap"

	"github.com/reoring/goproblem/wrapper"
)

// Formatter serializes values through a wrapper registry.
type Formatter struct {
	registry *wrapper.Registry
	indent   string
	log      *zap.Logger
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithIndent indents nested elements with indent.
func WithIndent(indent string) Option { return func(f *Formatter) { f.indent = indent } }

// WithLogger sets the logger; the default discards everything.
func WithLogger(log *zap.Logger) Option {
	return func(f *Formatter) {
		if log != nil {
			f.log = log
		}
	}
}

// NewFormatter returns a Formatter using registry, or CurrentRegistry when nil.
func NewFormatter(registry *wrapper.Registry, opts ...Option) *Formatter {
	if registry == nil {
		registry = current
	}
	f := &Formatter{registry: registry, log: zap.NewNop()}
	for _, o := range opts {
		o(f)
	}
	return f
}

// Registry returns the registry selected at construction.
func (f *Formatter) Registry() *wrapper.Registry { return f.registry }

// Write encodes v, declared as declared, to w. Values whose declared type has
// no wrapper are encoded directly.
func (f *Formatter) Write(w io.Writer, declared reflect.Type, v any) error {
	target := v
	if p := f.registry.GetProvider(wrapper.Context{DeclaredType: declared, IsSerialization: true}); p != nil {
		wrapped, err := p.Wrap(v)
		if err != nil {
			f.log.Error("Failed to wrap value",
				zap.String("registry", f.registry.Name()),
				zap.Stringer("declared", declared),
				zap.Error(err),
			)
			return fmt.Errorf("xmlformat: %w", err)
		}
		target = wrapped
	} else {
		f.log.Debug("No wrapper registered, encoding directly", zap.Stringer("declared", declared))
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", f.indent)
	if err := enc.Encode(target); err != nil {
		return fmt.Errorf("xmlformat: encode: %w", err)
	}
	return enc.Close()
}

// Read decodes one value of the declared type from r. Wrapped types are
// decoded into a fresh wrapper and unwrapped.
func (f *Formatter) Read(r io.Reader, declared reflect.Type) (any, error) {
	dec := xml.NewDecoder(r)
	p := f.registry.GetProvider(wrapper.Context{DeclaredType: declared})
	if p == nil {
		f.log.Debug("No wrapper registered, decoding directly", zap.Stringer("declared", declared))
		target := reflect.New(declared)
		if err := dec.Decode(target.Interface()); err != nil {
			return nil, fmt.Errorf("xmlformat: decode: %w", err)
		}
		return target.Elem().Interface(), nil
	}

	wt := p.WrappingType()
	var target reflect.Value
	if wt.Kind() == reflect.Pointer {
		target = reflect.New(wt.Elem())
	} else {
		target = reflect.New(wt)
	}
	if err := dec.Decode(target.Interface()); err != nil {
		return nil, fmt.Errorf("xmlformat: decode %s: %w", wt, err)
	}
	u, ok := target.Interface().(wrapper.Unwrapper)
	if !ok {
		return nil, fmt.Errorf("xmlformat: %s does not implement wrapper.Unwrapper", wt)
	}
	return u.Original(), nil
}

// WriteValue is Write with the declared type taken from T.
func WriteValue[T any](f *Formatter, w io.Writer, v T) error {
	return f.Write(w, reflect.TypeFor[T](), v)
}

// ReadValue is Read with the declared type taken from T.
func ReadValue[T any](f *Formatter, r io.Reader) (T, error) {
	var zero T
	v, err := f.Read(r, reflect.TypeFor[T]())
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("xmlformat: %w: got %T, want %s", wrapper.ErrInvalidCast, v, reflect.TypeFor[T]())
	}
	return out, nil
}
