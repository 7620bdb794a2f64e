// Package wrapper maps a declared document type to an alternate shape that a
// tree serializer can walk. A Registry is an immutable list of factories,
// keyed by exact type identity.
package wrapper

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrInvalidCast reports a Wrap call whose argument is not of the factory's
// declared type. Callers that looked the provider up by declared type never
// see it.
var ErrInvalidCast = errors.New("wrapper: value does not match declared type")

// Context describes the value a serializer is about to handle.
type Context struct {
	DeclaredType    reflect.Type
	IsSerialization bool
}

// Provider converts an original value into its wrapper.
type Provider interface {
	WrappingType() reflect.Type
	Wrap(original any) (any, error)
}

// Unwrapper is implemented by wrapper types that can hand back the document
// they hold after deserialization.
type Unwrapper interface {
	Original() any
}

// Factory binds one declared type to one wrapping type.
type Factory struct {
	declared reflect.Type
	wrapping reflect.Type
	wrap     func(any) (any, error)
}

// NewFactory returns a Factory wrapping values of T into W with fn.
func NewFactory[T, W any](fn func(T) W) *Factory {
	declared := reflect.TypeFor[T]()
	return &Factory{
		declared: declared,
		wrapping: reflect.TypeFor[W](),
		wrap: func(v any) (any, error) {
			if v == nil {
				var zero T
				return fn(zero), nil
			}
			t, ok := v.(T)
			if !ok {
				return nil, fmt.Errorf("%w: got %T, want %s", ErrInvalidCast, v, declared)
			}
			return fn(t), nil
		},
	}
}

// DeclaredType is the exact type this factory serves.
func (f *Factory) DeclaredType() reflect.Type { return f.declared }

// WrappingType is the type Wrap produces.
func (f *Factory) WrappingType() reflect.Type { return f.wrapping }

// Wrap converts original. A nil original wraps the zero value of the declared
// type.
func (f *Factory) Wrap(original any) (any, error) { return f.wrap(original) }

// GetProvider returns f when ctx declares exactly f's type, nil otherwise.
func (f *Factory) GetProvider(ctx Context) Provider {
	if ctx.DeclaredType == nil || ctx.DeclaredType != f.declared {
		return nil
	}
	return f
}

// Registry is an immutable, ordered set of factories.
type Registry struct {
	name      string
	factories []*Factory
}

// NewRegistry builds a registry. It panics when two factories declare the
// same type, since lookups would become order dependent.
func NewRegistry(name string, factories ...*Factory) *Registry {
	seen := make(map[reflect.Type]struct{}, len(factories))
	for _, f := range factories {
		if _, dup := seen[f.declared]; dup {
			panic(fmt.Sprintf("wrapper: registry %q declares %s twice", name, f.declared))
		}
		seen[f.declared] = struct{}{}
	}
	return &Registry{name: name, factories: append([]*Factory(nil), factories...)}
}

// Name identifies the registry in logs.
func (r *Registry) Name() string { return r.name }

// Factories returns a copy of the registered factories in order.
func (r *Registry) Factories() []*Factory { return append([]*Factory(nil), r.factories...) }

// GetProvider returns the provider of the first matching factory, or nil when
// the value should be serialized as is.
func (r *Registry) GetProvider(ctx Context) Provider {
	if r == nil {
		return nil
	}
	for _, f := range r.factories {
		if p := f.GetProvider(ctx); p != nil {
			return p
		}
	}
	return nil
}
