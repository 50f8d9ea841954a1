package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_RegisterAndResolve(t *testing.T) {
	c := New[string]()

	require.NoError(t, c.Register("session.people", "people-graph"))

	g, err := c.Resolve("session.people")
	require.NoError(t, err)
	assert.Equal(t, "people-graph", g)
}

func TestCatalog_RegisterRequiresQualifiedName(t *testing.T) {
	c := New[string]()

	err := c.Register("people", "people-graph")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not qualified")
}

func TestCatalog_ResolveUnknown(t *testing.T) {
	c := New[int]()

	_, err := c.Resolve("session.missing")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown graph 'session.missing'")
}

func TestCatalog_RegisterReplaces(t *testing.T) {
	c := New[int]()

	require.NoError(t, c.Register("s.g", 1))
	require.NoError(t, c.Register("s.g", 2))

	g, err := c.Resolve("s.g")
	require.NoError(t, err)
	assert.Equal(t, 2, g)
}

func TestCatalog_NamesSorted(t *testing.T) {
	c := New[int]()

	require.NoError(t, c.Register("s.b", 1))
	require.NoError(t, c.Register("s.a", 2))
	require.NoError(t, c.Register("s.c", 3))

	assert.Equal(t, []string{"s.a", "s.b", "s.c"}, c.Names())
}
