package goproblem_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/goproblem"
)

// tokens is a Source over a fixed token list.
type tokens struct {
	list []goproblem.Token
	pos  int
}

func (s *tokens) NextToken() (goproblem.Token, error) {
	if s.pos >= len(s.list) {
		return goproblem.Token{}, io.EOF
	}
	t := s.list[s.pos]
	s.pos++
	return t, nil
}
func (s *tokens) NumberMode() goproblem.NumberMode { return goproblem.NumberNative }
func (s *tokens) Location() int64                  { return int64(s.pos) }

func tok(k goproblem.TokenKind, s string) goproblem.Token {
	t := goproblem.Token{Kind: k, Offset: -1}
	switch k {
	case goproblem.TokenNumber:
		t.Number = s
	default:
		t.String = s
	}
	return t
}

func TestDrivers(t *testing.T) {
	drivers := []goproblem.JSONDriver{goproblem.GoJSONDriver(), goproblem.StdJSONDriver()}
	t.Cleanup(goproblem.UseDefaultJSONDriver)

	for _, d := range drivers {
		t.Run(d.Name(), func(t *testing.T) {
			goproblem.SetJSONDriver(d)
			assert.Equal(t, d.Name(), goproblem.CurrentJSONDriver().Name())

			p, err := goproblem.Decode(strings.NewReader(outOfCredit))
			require.NoError(t, err)
			out, err := goproblem.Marshal(p)
			require.NoError(t, err)
			assert.Equal(t, outOfCredit, string(out))

			_, err = goproblem.Decode(strings.NewReader(`{"a":1,"a":2}`))
			require.ErrorIs(t, err, goproblem.ErrDuplicateKey)
		})
	}

	goproblem.SetJSONDriver(nil)
	assert.Equal(t, "encoding/json", goproblem.CurrentJSONDriver().Name())
}

func TestReader(t *testing.T) {
	r := goproblem.NewReader(goproblem.JSONBytes([]byte(`{"a":[1,"x",true,null]}`)))
	assert.Equal(t, goproblem.TokenNone, r.Kind())

	var kinds []goproblem.TokenKind
	for {
		ok, err := r.Read()
		require.NoError(t, err)
		if !ok {
			break
		}
		kinds = append(kinds, r.Kind())
	}
	assert.Equal(t, []goproblem.TokenKind{
		goproblem.TokenBeginObject, goproblem.TokenKey, goproblem.TokenBeginArray,
		goproblem.TokenNumber, goproblem.TokenString, goproblem.TokenBool, goproblem.TokenNull,
		goproblem.TokenEndArray, goproblem.TokenEndObject,
	}, kinds)
	assert.Equal(t, goproblem.TokenNone, r.Kind())

	ok, err := r.Read()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReadProblem_NonObjectIsNotConsumed(t *testing.T) {
	r := goproblem.NewReader(goproblem.JSONBytes([]byte(`["x"]`)))
	_, err := r.Read()
	require.NoError(t, err)

	p, err := goproblem.ReadProblem(r, nil)
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.Equal(t, goproblem.TokenBeginArray, r.Kind())

	v, err := goproblem.ReadValue(r)
	require.NoError(t, err)
	assert.Equal(t, []any{"x"}, v)
}

func TestReadProblem_ExpectsKeys(t *testing.T) {
	src := &tokens{list: []goproblem.Token{
		tok(goproblem.TokenBeginObject, ""),
		tok(goproblem.TokenString, "not a key"),
	}}
	r := goproblem.NewReader(src)
	_, err := r.Read()
	require.NoError(t, err)

	_, err = goproblem.ReadProblem(r, nil)
	require.ErrorIs(t, err, goproblem.ErrMalformed)
}

func TestReadProblem_EndOfInputMidObject(t *testing.T) {
	src := &tokens{list: []goproblem.Token{
		tok(goproblem.TokenBeginObject, ""),
		tok(goproblem.TokenKey, "status"),
		tok(goproblem.TokenNumber, "400"),
	}}
	r := goproblem.NewReader(src)
	_, err := r.Read()
	require.NoError(t, err)

	_, err = goproblem.ReadValidationProblem(r, nil)
	require.ErrorIs(t, err, goproblem.ErrMalformed)
	iss, ok := goproblem.AsIssue(err)
	require.True(t, ok)
	assert.Equal(t, goproblem.CodeParseError, iss.Code)
}

func TestWithNumberMode(t *testing.T) {
	src := goproblem.WithNumberMode(goproblem.JSONBytes([]byte(`{"n":5}`)), goproblem.NumberJSONNumber)
	assert.Equal(t, goproblem.NumberJSONNumber, src.NumberMode())

	r := goproblem.NewReader(src)
	_, err := r.Read()
	require.NoError(t, err)
	p, err := goproblem.ReadProblem(r, nil)
	require.NoError(t, err)
	n, _ := p.Extensions.Get("n")
	assert.Equal(t, "5", n.(interface{ String() string }).String())
}
