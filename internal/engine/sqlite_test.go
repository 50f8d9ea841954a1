package engine

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGraphDB(t *testing.T, nodes, relationships []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE nodes (id INTEGER PRIMARY KEY, labels TEXT, props TEXT)`)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE relationships (id INTEGER PRIMARY KEY, type TEXT, start_id INTEGER, end_id INTEGER, props TEXT)`)
	require.NoError(t, err)
	for _, stmt := range nodes {
		_, err = db.Exec(stmt)
		require.NoError(t, err)
	}
	for _, stmt := range relationships {
		_, err = db.Exec(stmt)
		require.NoError(t, err)
	}
	return path
}

func TestLoadGraphSQLite(t *testing.T) {
	path := writeGraphDB(t,
		[]string{
			`INSERT INTO nodes VALUES (1, '["Person"]', '{"name":"Alice"}')`,
			`INSERT INTO nodes VALUES (2, '["Person"]', '{"name":"Bob"}')`,
		},
		[]string{
			`INSERT INTO relationships VALUES (10, 'KNOWS', 1, 2, '{}')`,
		})

	g, err := LoadGraphSQLite(path, "people")
	require.NoError(t, err)

	assert.Equal(t, "people", g.Name)
	require.Len(t, g.Nodes, 2)
	require.Len(t, g.Relationships, 1)

	alice := g.NodeByID(1)
	require.NotNil(t, alice)
	assert.True(t, alice.HasLabel("Person"))
	assert.Equal(t, "Alice", alice.Props["name"])

	rel := g.Relationships[0]
	assert.Equal(t, "KNOWS", rel.Type)
	assert.Equal(t, int64(1), rel.StartID)
	assert.Equal(t, int64(2), rel.EndID)
}

func TestLoadGraphSQLite_UnknownEndpoint(t *testing.T) {
	path := writeGraphDB(t,
		[]string{`INSERT INTO nodes VALUES (1, '["Person"]', '{}')`},
		[]string{`INSERT INTO relationships VALUES (10, 'KNOWS', 1, 99, '{}')`})

	_, err := LoadGraphSQLite(path, "people")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown node")
}

func TestLoadGraphSQLite_BadLabelJSON(t *testing.T) {
	path := writeGraphDB(t,
		[]string{`INSERT INTO nodes VALUES (1, 'not-json', '{}')`}, nil)

	_, err := LoadGraphSQLite(path, "people")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding labels")
}
