package goproblem

import (
	"errors"
	"io"
	"sync"

	eng "github.com/reoring/goproblem/internal/engine"
	gojsonsrc "github.com/reoring/goproblem/source/gojson"
	jsonsrc "github.com/reoring/goproblem/source/json"
)

// tokenKind enumerates JSON token kinds.
type tokenKind int

const (
	_tokenNone tokenKind = iota
	_tokenBeginObject
	_tokenEndObject
	_tokenBeginArray
	_tokenEndArray
	_tokenKey
	_tokenString
	_tokenNumber
	_tokenBool
	_tokenNull
)

// TokenKind is the exported alias of the token kind enumeration.
type TokenKind = tokenKind

const (
	// TokenNone is the kind of a Reader that has not read anything yet, or
	// has reached the end of its input.
	TokenNone        TokenKind = _tokenNone
	TokenBeginObject TokenKind = _tokenBeginObject
	TokenEndObject   TokenKind = _tokenEndObject
	TokenBeginArray  TokenKind = _tokenBeginArray
	TokenEndArray    TokenKind = _tokenEndArray
	TokenKey         TokenKind = _tokenKey
	TokenString      TokenKind = _tokenString
	TokenNumber      TokenKind = _tokenNumber
	TokenBool        TokenKind = _tokenBool
	TokenNull        TokenKind = _tokenNull
)

func (k tokenKind) String() string {
	if k == _tokenNone {
		return "none"
	}
	return toEngineKind(k).String()
}

// Token describes a token in the input stream. Offset records the byte position
// when known (-1 otherwise).
type Token struct {
	Kind   tokenKind
	String string // Stored for key/string tokens.
	Number string // Stored as text; NumberMode controls downstream interpretation.
	Bool   bool
	Offset int64
}

// Source abstracts over polymorphic input sources.
type Source interface {
	NextToken() (Token, error)
	NumberMode() NumberMode
	Location() int64 // byte offset; -1 if unknown
}

// JSONDriver converts JSON input into a Source. The default implementation is
// backed by goccy/go-json and may be swapped with SetJSONDriver.
type JSONDriver interface {
	NewReader(r io.Reader) Source
	NewBytes(b []byte) Source
	Name() string
}

var (
	jsonDriverMu      sync.RWMutex
	currentJSONDriver JSONDriver = GoJSONDriver()
)

// SetJSONDriver replaces the global JSON driver; nil values are ignored.
func SetJSONDriver(d JSONDriver) {
	if d == nil {
		return
	}
	jsonDriverMu.Lock()
	currentJSONDriver = d
	jsonDriverMu.Unlock()
}

// UseDefaultJSONDriver restores the go-json backed driver.
func UseDefaultJSONDriver() { SetJSONDriver(GoJSONDriver()) }

// CurrentJSONDriver returns the driver used by JSONReader and JSONBytes.
func CurrentJSONDriver() JSONDriver {
	jsonDriverMu.RLock()
	d := currentJSONDriver
	jsonDriverMu.RUnlock()
	return d
}

// GoJSONDriver returns the goccy/go-json backed driver.
func GoJSONDriver() JSONDriver { return goJSONDriver{} }

// StdJSONDriver returns the encoding/json backed driver.
func StdJSONDriver() JSONDriver { return stdJSONDriver{} }

type goJSONDriver struct{}

func (goJSONDriver) NewReader(r io.Reader) Source { return SourceFromEngine(gojsonsrc.NewReader(r), NumberNative) }
func (goJSONDriver) NewBytes(b []byte) Source     { return SourceFromEngine(gojsonsrc.NewBytes(b), NumberNative) }
func (goJSONDriver) Name() string                 { return "go-json" }

type stdJSONDriver struct{}

func (stdJSONDriver) NewReader(r io.Reader) Source { return SourceFromEngine(jsonsrc.NewReader(r), NumberNative) }
func (stdJSONDriver) NewBytes(b []byte) Source     { return SourceFromEngine(jsonsrc.NewBytes(b), NumberNative) }
func (stdJSONDriver) Name() string                 { return "encoding/json" }

// JSONReader wraps an io.Reader as a JSON Source.
func JSONReader(r io.Reader) Source { return CurrentJSONDriver().NewReader(r) }

// JSONBytes wraps a byte slice as a JSON Source.
func JSONBytes(b []byte) Source { return CurrentJSONDriver().NewBytes(b) }

// SourceFromEngine wraps an engine.TokenSource as a goproblem.Source.
func SourceFromEngine(inner eng.TokenSource, mode NumberMode) Source {
	return &engineSourceAdapter{inner: inner, numMode: mode}
}

// WithNumberMode wraps a Source and overrides its NumberMode.
func WithNumberMode(s Source, m NumberMode) Source { return &overrideNumberMode{inner: s, mode: m} }

type overrideNumberMode struct {
	inner Source
	mode  NumberMode
}

func (o *overrideNumberMode) NextToken() (Token, error) { return o.inner.NextToken() }
func (o *overrideNumberMode) NumberMode() NumberMode    { return o.mode }
func (o *overrideNumberMode) Location() int64           { return o.inner.Location() }

type engineSourceAdapter struct {
	inner   eng.TokenSource
	numMode NumberMode
}

func (s *engineSourceAdapter) NextToken() (Token, error) {
	t, err := s.inner.NextToken()
	if err != nil {
		return Token{}, err
	}
	return Token{Kind: fromEngineKind(t.Kind), String: t.String, Number: t.Number, Bool: t.Bool, Offset: t.Offset}, nil
}
func (s *engineSourceAdapter) NumberMode() NumberMode { return s.numMode }
func (s *engineSourceAdapter) Location() int64        { return s.inner.Location() }

func fromEngineKind(k eng.Kind) tokenKind {
	switch k {
	case eng.KindBeginObject:
		return _tokenBeginObject
	case eng.KindEndObject:
		return _tokenEndObject
	case eng.KindBeginArray:
		return _tokenBeginArray
	case eng.KindEndArray:
		return _tokenEndArray
	case eng.KindKey:
		return _tokenKey
	case eng.KindString:
		return _tokenString
	case eng.KindNumber:
		return _tokenNumber
	case eng.KindBool:
		return _tokenBool
	default:
		return _tokenNull
	}
}

func toEngineKind(k tokenKind) eng.Kind {
	switch k {
	case _tokenBeginObject:
		return eng.KindBeginObject
	case _tokenEndObject:
		return eng.KindEndObject
	case _tokenBeginArray:
		return eng.KindBeginArray
	case _tokenEndArray:
		return eng.KindEndArray
	case _tokenKey:
		return eng.KindKey
	case _tokenString:
		return eng.KindString
	case _tokenNumber:
		return eng.KindNumber
	case _tokenBool:
		return eng.KindBool
	default:
		return eng.KindNull
	}
}

// Reader is a cursor over a Source. It exposes the current token and advances
// one token at a time, which is the shape the document codec reads from.
type Reader struct {
	src Source
	tok Token
	eof bool
}

// NewReader returns a Reader positioned before the first token. Call Read to
// move onto it.
func NewReader(src Source) *Reader {
	return &Reader{src: src, tok: Token{Kind: _tokenNone, Offset: -1}}
}

// Read advances to the next token. It returns false, with a nil error, once
// the input is exhausted; the current kind is then TokenNone.
func (r *Reader) Read() (bool, error) {
	if r.eof {
		return false, nil
	}
	t, err := r.src.NextToken()
	if err != nil {
		if errors.Is(err, io.EOF) {
			r.eof = true
			r.tok = Token{Kind: _tokenNone, Offset: r.src.Location()}
			return false, nil
		}
		return false, err
	}
	r.tok = t
	return true, nil
}

// Token returns the current token.
func (r *Reader) Token() Token { return r.tok }

// Kind returns the kind of the current token.
func (r *Reader) Kind() TokenKind { return r.tok.Kind }

// NumberMode reports how numbers read generically are materialized.
func (r *Reader) NumberMode() NumberMode { return r.src.NumberMode() }

// Offset returns the best known byte offset of the current token.
func (r *Reader) Offset() int64 {
	if r.tok.Offset >= 0 {
		return r.tok.Offset
	}
	return r.src.Location()
}
