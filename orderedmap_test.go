package goproblem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/goproblem"
)

func TestOrderedMap_AddRejectsDuplicates(t *testing.T) {
	var m goproblem.Extensions
	require.NoError(t, m.Add("b", 1))
	require.NoError(t, m.Add("a", 2))

	err := m.Add("b", 3)
	require.ErrorIs(t, err, goproblem.ErrDuplicateKey)
	iss, ok := goproblem.AsIssue(err)
	require.True(t, ok)
	assert.Equal(t, "/b", iss.Path)

	v, _ := m.Get("b")
	assert.Equal(t, 1, v)
	assert.Equal(t, []string{"b", "a"}, m.Keys())
}

func TestOrderedMap_SetKeepsPosition(t *testing.T) {
	var m goproblem.ValidationErrors
	m.Set("x", []string{"1"})
	m.Set("y", []string{"2"})
	m.Set("x", []string{"3"})

	assert.Equal(t, []string{"x", "y"}, m.Keys())
	v, _ := m.Get("x")
	assert.Equal(t, []string{"3"}, v)
	assert.Equal(t, 2, m.Len())
}

func TestOrderedMap_Delete(t *testing.T) {
	var m goproblem.Extensions
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("c", 3)
	m.Delete("b")
	m.Delete("missing")

	assert.Equal(t, []string{"a", "c"}, m.Keys())
	assert.False(t, m.Has("b"))

	m.Set("b", 4)
	assert.Equal(t, []string{"a", "c", "b"}, m.Keys())
}

func TestOrderedMap_CloneIsIndependent(t *testing.T) {
	m := goproblem.NewExtensions()
	m.Set("a", 1)
	c := m.Clone()
	c.Set("b", 2)
	m.Set("a", 9)

	assert.Equal(t, []string{"a"}, m.Keys())
	v, _ := c.Get("a")
	assert.Equal(t, 1, v)
}

func TestOrderedMap_All(t *testing.T) {
	var m goproblem.Extensions
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("c", 3)

	var seen []string
	for k := range m.All() {
		seen = append(seen, k)
		if k == "b" {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestOrderedMap_NilAndZero(t *testing.T) {
	var nilMap *goproblem.Extensions
	assert.Equal(t, 0, nilMap.Len())
	assert.False(t, nilMap.Has("a"))
	assert.Nil(t, nilMap.Keys())

	var zero goproblem.Extensions
	_, ok := zero.Get("a")
	assert.False(t, ok)
}

func TestOrderedMap_MarshalJSON(t *testing.T) {
	m := goproblem.NewExtensions()
	m.Set("z", []string{"x"})
	m.Set("a", map[string]any{"k2": 2, "k1": 1})

	data, err := m.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"z":["x"],"a":{"k1":1,"k2":2}}`, string(data))
}
