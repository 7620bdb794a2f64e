// Package gojson adapts goccy/go-json's streaming decoder into an
// engine.TokenSource. It is the default driver behind goproblem.JSONBytes.
package gojson

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	j "github.com/goccy/go-json"

	eng "github.com/reoring/goproblem/internal/engine"
)

// ErrInvalidJSON is returned when the input is not a single well-formed JSON
// text.
var ErrInvalidJSON = errors.New("gojson: invalid JSON input")

type source struct {
	r    io.Reader
	data []byte
	dec  *j.Decoder
	err  error
	keys eng.KeyTracker
}

// NewReader wraps an io.Reader into an engine.TokenSource for JSON using go-json.
// The input is buffered and validated before the first token is returned.
func NewReader(r io.Reader) eng.TokenSource { return &source{r: r} }

// NewBytes wraps a byte slice into an engine.TokenSource for JSON using go-json.
func NewBytes(b []byte) eng.TokenSource { return &source{data: b} }

// open validates the whole input once. go-json's Decoder.Token does not
// check colons, commas or trailing commas.
func (s *source) open() error {
	if s.dec != nil || s.err != nil {
		return s.err
	}
	data := s.data
	if s.r != nil {
		b, err := io.ReadAll(s.r)
		if err != nil {
			s.err = err
			return err
		}
		data = b
	}
	if len(bytes.TrimSpace(data)) > 0 && !j.Valid(data) {
		s.err = ErrInvalidJSON
		var v any
		if err := j.Unmarshal(data, &v); err != nil {
			s.err = fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		return s.err
	}
	s.dec = j.NewDecoder(bytes.NewReader(data))
	s.dec.UseNumber()
	return nil
}

func (s *source) NextToken() (eng.Token, error) {
	if err := s.open(); err != nil {
		return eng.Token{}, err
	}
	tok, err := s.dec.Token()
	if err != nil {
		return eng.Token{}, err
	}
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			s.keys.BeginObject()
			return eng.Token{Kind: eng.KindBeginObject, Offset: -1}, nil
		case '}':
			s.keys.End()
			return eng.Token{Kind: eng.KindEndObject, Offset: -1}, nil
		case '[':
			s.keys.BeginArray()
			return eng.Token{Kind: eng.KindBeginArray, Offset: -1}, nil
		case ']':
			s.keys.End()
			return eng.Token{Kind: eng.KindEndArray, Offset: -1}, nil
		}
	case string:
		if s.keys.IsKey() {
			return eng.Token{Kind: eng.KindKey, String: v, Offset: -1}, nil
		}
		return eng.Token{Kind: eng.KindString, String: v, Offset: -1}, nil
	case bool:
		s.keys.ValueDone()
		return eng.Token{Kind: eng.KindBool, Bool: v, Offset: -1}, nil
	case j.Number:
		s.keys.ValueDone()
		return eng.Token{Kind: eng.KindNumber, Number: string(v), Offset: -1}, nil
	case float64:
		s.keys.ValueDone()
		return eng.Token{Kind: eng.KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64), Offset: -1}, nil
	}
	s.keys.ValueDone()
	return eng.Token{Kind: eng.KindNull, Offset: -1}, nil
}

func (s *source) Location() int64 { return -1 }
