package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCatalog(t *testing.T) {
	c := New([]Module{
		{ID: "Native", Name: "Native", IsNative: true},
		{ID: "Bannerlord.Harmony", Name: "Harmony"},
		{ID: "Native", Name: "Duplicate"}, // dropped, first wins
	})

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []string{"Native", "Bannerlord.Harmony"}, c.IDs())

	m, ok := c.Get("Native")
	require.True(t, ok)
	assert.Equal(t, "Native", m.Name)

	_, ok = c.Get("Missing")
	assert.False(t, ok)
	assert.False(t, c.Has("Missing"))
}

func TestSelection(t *testing.T) {
	s := Selection{"Native": true, "SandBox": false}

	assert.True(t, s.IsSelected("Native"))
	assert.False(t, s.IsSelected("SandBox"))
	assert.False(t, s.IsSelected("Unknown"))

	var nilSelection Selection
	assert.False(t, nilSelection.IsSelected("Native"))

	clone := s.Clone()
	clone["Native"] = false
	assert.True(t, s.IsSelected("Native"), "clone must be independent")
}
