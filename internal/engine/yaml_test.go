package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const peopleYAML = `
name: people
nodes:
  - id: 1
    labels: [Person]
    props:
      name: Alice
      age: 34
      tags: [admin, staff]
  - id: 2
    labels: [Person]
    props:
      name: Bob
relationships:
  - id: 10
    type: KNOWS
    start: 1
    end: 2
    props:
      since: 2019
`

func TestParseGraphYAML(t *testing.T) {
	g, err := ParseGraphYAML([]byte(peopleYAML))
	require.NoError(t, err)

	assert.Equal(t, "people", g.Name)
	require.Len(t, g.Nodes, 2)
	require.Len(t, g.Relationships, 1)

	alice := g.NodeByID(1)
	require.NotNil(t, alice)
	assert.True(t, alice.HasLabel("Person"))
	assert.Equal(t, "Alice", alice.Props["name"])
	assert.Equal(t, int64(34), alice.Props["age"])
	assert.Equal(t, []Value{"admin", "staff"}, alice.Props["tags"])

	rel := g.Relationships[0]
	assert.Equal(t, "KNOWS", rel.Type)
	assert.Equal(t, int64(1), rel.StartID)
	assert.Equal(t, int64(2), rel.EndID)
	assert.Equal(t, int64(2019), rel.Props["since"])
}

func TestParseGraphYAML_MissingName(t *testing.T) {
	_, err := ParseGraphYAML([]byte("nodes: []\n"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing a name")
}

func TestParseGraphYAML_UnknownEndpoint(t *testing.T) {
	doc := `
name: broken
nodes:
  - id: 1
relationships:
  - id: 10
    type: KNOWS
    start: 1
    end: 99
`
	_, err := ParseGraphYAML([]byte(doc))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown node")
}

func TestParseGraphYAML_Malformed(t *testing.T) {
	_, err := ParseGraphYAML([]byte("name: [unbalanced"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding graph document")
}

func TestLoadGraphYAMLFile_Missing(t *testing.T) {
	_, err := LoadGraphYAMLFile("testdata/does-not-exist.yaml")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading graph fixture")
}
