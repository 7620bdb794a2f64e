package goproblem

import (
	"bytes"
	"iter"
)

// OrderedMap maps string keys to values and iterates in insertion order.
// The zero value is an empty map ready to use. It is not safe for concurrent
// mutation.
type OrderedMap[V any] struct {
	keys   []string
	values map[string]V
}

// Extensions holds problem members outside the well-known set.
type Extensions = OrderedMap[any]

// ValidationErrors maps a field name to its validation messages.
type ValidationErrors = OrderedMap[[]string]

// NewExtensions returns an empty extension bag.
func NewExtensions() *Extensions { return &Extensions{} }

// Len returns the number of entries.
func (m *OrderedMap[V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Get returns the value stored under key.
func (m *OrderedMap[V]) Get(key string) (V, bool) {
	if m == nil || m.values == nil {
		var zero V
		return zero, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *OrderedMap[V]) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Add inserts key at the end. It fails with a duplicate_key issue when the key
// already exists; existing values are never replaced.
func (m *OrderedMap[V]) Add(key string, v V) error {
	if m.Has(key) {
		return duplicateKey(joinPointer("", key), key)
	}
	m.insert(key, v)
	return nil
}

// Set stores v under key. A new key is appended; an existing key keeps its
// position.
func (m *OrderedMap[V]) Set(key string, v V) {
	if m.Has(key) {
		m.values[key] = v
		return
	}
	m.insert(key, v)
}

// Delete removes key if present.
func (m *OrderedMap[V]) Delete(key string) {
	if !m.Has(key) {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Keys returns a copy of the keys in insertion order.
func (m *OrderedMap[V]) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// All iterates entries in insertion order.
func (m *OrderedMap[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		if m == nil {
			return
		}
		for _, k := range m.keys {
			if !yield(k, m.values[k]) {
				return
			}
		}
	}
}

// Clone returns a shallow copy.
func (m *OrderedMap[V]) Clone() *OrderedMap[V] {
	out := &OrderedMap[V]{}
	for k, v := range m.All() {
		out.insert(k, v)
	}
	return out
}

func (m *OrderedMap[V]) insert(key string, v V) {
	if m.values == nil {
		m.values = make(map[string]V)
	}
	m.keys = append(m.keys, key)
	m.values[key] = v
}

// MarshalJSON writes the entries as a JSON object in insertion order.
func (m *OrderedMap[V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	w := NewJSONWriter(&buf)
	w.BeginObject()
	for k, v := range m.All() {
		w.Key(k)
		writeValue(w, v)
	}
	w.EndObject()
	if err := w.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
