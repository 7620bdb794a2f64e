// Package json adapts encoding/json's streaming decoder into an
// engine.TokenSource.
package json

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"

	eng "github.com/reoring/goproblem/internal/engine"
)

type jsonSource struct {
	dec        *json.Decoder
	keys       eng.KeyTracker
	lastOffset int64
}

// NewReader wraps an io.Reader into an engine.TokenSource for JSON.
func NewReader(r io.Reader) eng.TokenSource {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &jsonSource{dec: dec, lastOffset: -1}
}

// NewBytes wraps a byte slice into an engine.TokenSource for JSON.
func NewBytes(b []byte) eng.TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *jsonSource) NextToken() (eng.Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return eng.Token{}, err
	}
	s.lastOffset = s.dec.InputOffset()

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			s.keys.BeginObject()
			return eng.Token{Kind: eng.KindBeginObject, Offset: s.lastOffset}, nil
		case '}':
			s.keys.End()
			return eng.Token{Kind: eng.KindEndObject, Offset: s.lastOffset}, nil
		case '[':
			s.keys.BeginArray()
			return eng.Token{Kind: eng.KindBeginArray, Offset: s.lastOffset}, nil
		case ']':
			s.keys.End()
			return eng.Token{Kind: eng.KindEndArray, Offset: s.lastOffset}, nil
		}
	case string:
		if s.keys.IsKey() {
			return eng.Token{Kind: eng.KindKey, String: v, Offset: s.lastOffset}, nil
		}
		return eng.Token{Kind: eng.KindString, String: v, Offset: s.lastOffset}, nil
	case bool:
		s.keys.ValueDone()
		return eng.Token{Kind: eng.KindBool, Bool: v, Offset: s.lastOffset}, nil
	case json.Number:
		s.keys.ValueDone()
		return eng.Token{Kind: eng.KindNumber, Number: string(v), Offset: s.lastOffset}, nil
	case float64:
		s.keys.ValueDone()
		return eng.Token{Kind: eng.KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64), Offset: s.lastOffset}, nil
	}
	s.keys.ValueDone()
	return eng.Token{Kind: eng.KindNull, Offset: s.lastOffset}, nil
}

func (s *jsonSource) Location() int64 { return s.lastOffset }
