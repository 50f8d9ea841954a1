package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeader_FieldLookup(t *testing.T) {
	h := MustHeader(
		Field{Name: "n", Type: NodeType("Person")},
		Field{Name: "age", Type: Integer()},
	)

	assert.Equal(t, 2, h.Len())
	assert.Equal(t, []string{"n", "age"}, h.Names())
	assert.Equal(t, 1, h.IndexOf("age"))
	assert.Equal(t, -1, h.IndexOf("missing"))

	f, ok := h.Field("n")
	require.True(t, ok)
	assert.Equal(t, KindNode, f.Type.Kind)
	assert.Equal(t, []string{"Person"}, f.Type.Labels)
}

func TestHeader_DuplicateFieldName(t *testing.T) {
	_, err := NewHeader(
		Field{Name: "n", Type: NodeType()},
		Field{Name: "n", Type: Integer()},
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate header field 'n'")
}

func TestHeader_Select(t *testing.T) {
	h := MustHeader(
		Field{Name: "a", Type: NodeType()},
		Field{Name: "r", Type: RelationshipType("KNOWS")},
		Field{Name: "b", Type: NodeType()},
	)

	sub, err := h.Select("b", "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, sub.Names())

	_, err = h.Select("missing")
	require.Error(t, err)
}

func TestHeader_ConcatRejectsCollision(t *testing.T) {
	lhs := MustHeader(Field{Name: "a", Type: NodeType()})
	rhs := MustHeader(Field{Name: "a", Type: Integer()})

	_, err := lhs.Concat(rhs)
	require.Error(t, err)
}

func TestHeader_AppendLeavesOriginal(t *testing.T) {
	h := MustHeader(Field{Name: "a", Type: NodeType()})
	grown, err := h.Append(Field{Name: "b", Type: NodeType()})
	require.NoError(t, err)

	assert.Equal(t, 1, h.Len())
	assert.Equal(t, 2, grown.Len())
}

func TestType_String(t *testing.T) {
	assert.Equal(t, "NODE(:Person:Admin)", NodeType("Person", "Admin").String())
	assert.Equal(t, "RELATIONSHIP[KNOWS|LIKES]", RelationshipType("KNOWS", "LIKES").String())
	assert.Equal(t, "LIST<RELATIONSHIP>", ListOf(RelationshipType()).String())
	assert.Equal(t, "STRING", String().String())
}
