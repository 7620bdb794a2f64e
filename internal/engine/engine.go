package engine

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// String returns a short human-readable name, used in issue messages.
func (k Kind) String() string {
	switch k {
	case KindBeginObject:
		return "start of object"
	case KindEndObject:
		return "end of object"
	case KindBeginArray:
		return "start of array"
	case KindEndArray:
		return "end of array"
	case KindKey:
		return "key"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindNull:
		return "null"
	default:
		return "unknown"
	}
}

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind         containerKind
	expectingKey bool
}

// KeyTracker tells object keys apart from string values for decoders whose
// token stream does not distinguish them (encoding/json, go-json).
type KeyTracker struct {
	stack []frame
}

// BeginObject records an opened object.
func (t *KeyTracker) BeginObject() {
	t.stack = append(t.stack, frame{kind: kindObject, expectingKey: true})
}

// BeginArray records an opened array.
func (t *KeyTracker) BeginArray() {
	t.stack = append(t.stack, frame{kind: kindArray})
}

// End pops the innermost container. The closed container counts as the value
// of its parent's pending key.
func (t *KeyTracker) End() {
	if n := len(t.stack); n > 0 {
		t.stack = t.stack[:n-1]
	}
	t.ValueDone()
}

// IsKey reports whether a string token at the current position is an object
// key, and advances the tracker accordingly.
func (t *KeyTracker) IsKey() bool {
	if n := len(t.stack); n > 0 {
		top := &t.stack[n-1]
		if top.kind == kindObject && top.expectingKey {
			top.expectingKey = false
			return true
		}
	}
	t.ValueDone()
	return false
}

// ValueDone marks the value of the pending key as consumed.
func (t *KeyTracker) ValueDone() {
	if n := len(t.stack); n > 0 {
		top := &t.stack[n-1]
		if top.kind == kindObject && !top.expectingKey {
			top.expectingKey = true
		}
	}
}
