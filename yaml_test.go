package goproblem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/reoring/goproblem"
)

func TestYAML_KeepsJSONOrder(t *testing.T) {
	v := goproblem.NewValidation("Invalid")
	v.Instance = "/orders/1"
	v.AddError("qty", "must be positive")
	v.Extensions.Set("traceId", "abc")
	v.Extensions.Set("attempt", int64(2))

	out, err := yaml.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `title: Invalid
status: 400
instance: /orders/1
errors:
    qty:
        - must be positive
traceId: abc
attempt: 2
`, string(out))
}

func TestYAML_RoundTrip(t *testing.T) {
	in := `
type: about:blank
title: Conflict
status: 409
zeta: [1, two]
meta:
  retry: true
`
	var p goproblem.Problem
	require.NoError(t, yaml.Unmarshal([]byte(in), &p))
	assert.Equal(t, "about:blank", p.Type)
	assert.Equal(t, 409, p.StatusOr(0))
	assert.Equal(t, []string{"zeta", "meta"}, p.Extensions.Keys())

	zeta, _ := p.Extensions.Get("zeta")
	assert.Equal(t, []any{int64(1), "two"}, zeta)
	meta, _ := p.Extensions.Get("meta")
	require.IsType(t, &goproblem.Extensions{}, meta)
	retry, _ := meta.(*goproblem.Extensions).Get("retry")
	assert.Equal(t, true, retry)

	data, err := goproblem.Marshal(&p)
	require.NoError(t, err)
	assert.Equal(t, `{"type":"about:blank","title":"Conflict","status":409,"zeta":[1,"two"],"meta":{"retry":true}}`, string(data))
}

func TestYAML_ValidationErrors(t *testing.T) {
	var v goproblem.ValidationProblem
	require.NoError(t, yaml.Unmarshal([]byte("errors:\n  b: [x]\n  a: [y, z]\n"), &v))
	assert.Equal(t, []string{"b", "a"}, v.Errors.Keys())
	assert.False(t, v.Extensions.Has("errors"))
}

func TestYAML_TypeMismatch(t *testing.T) {
	var p goproblem.Problem
	err := yaml.Unmarshal([]byte("status: teapot\n"), &p)
	require.ErrorIs(t, err, goproblem.ErrTypeMismatch)

	err = yaml.Unmarshal([]byte("title: [a]\n"), &p)
	require.ErrorIs(t, err, goproblem.ErrTypeMismatch)
}

func TestYAML_ReservedExtension(t *testing.T) {
	p := &goproblem.Problem{}
	p.Extensions.Set("status", "shadow")
	_, err := yaml.Marshal(p)
	require.Error(t, err)
}
