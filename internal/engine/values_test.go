package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/matthewbaird/graphplan/internal/record"
)

func TestValuesEqual(t *testing.T) {
	n1 := &Node{ID: 1}
	n1again := &Node{ID: 1, Labels: []string{"Person"}}
	n2 := &Node{ID: 2}

	assert.True(t, valuesEqual(n1, n1again), "nodes compare by ID")
	assert.False(t, valuesEqual(n1, n2))
	assert.True(t, valuesEqual(int64(3), float64(3)), "numbers compare across kinds")
	assert.False(t, valuesEqual(nil, nil), "null equals nothing")
	assert.False(t, valuesEqual(nil, int64(0)))
	assert.True(t, valuesEqual([]Value{int64(1), "a"}, []Value{float64(1), "a"}))
	assert.False(t, valuesEqual([]Value{int64(1)}, []Value{int64(1), int64(2)}))
}

func TestCompareValues(t *testing.T) {
	coll := collate.New(language.Und)

	assert.Equal(t, -1, compareValues(int64(1), float64(2), coll))
	assert.Equal(t, 0, compareValues(int64(2), float64(2), coll))
	assert.Equal(t, -1, compareValues(false, true, coll))
	assert.Equal(t, 1, compareValues("b", "a", coll))
	// Mixed types order by rank: numbers before strings.
	assert.Equal(t, -1, compareValues(int64(9), "a", coll))
	assert.Equal(t, -1, compareValues(nil, false, coll))
}

func TestNormalizeWidensIntegers(t *testing.T) {
	assert.Equal(t, int64(7), normalize(7))
	assert.Equal(t, int64(7), normalize(int32(7)))
	assert.Equal(t, float64(1.5), normalize(float32(1.5)))
	assert.Equal(t, "s", normalize("s"))
}

func TestFormatValue(t *testing.T) {
	n := &Node{ID: 3, Labels: []string{"Person", "Admin"}}
	r := &Relationship{ID: 9, Type: "KNOWS"}

	assert.Equal(t, "null", FormatValue(nil))
	assert.Equal(t, "(#3:Person:Admin)", FormatValue(n))
	assert.Equal(t, "[#9:KNOWS]", FormatValue(r))
	assert.Equal(t, "'hi'", FormatValue("hi"))
	assert.Equal(t, "[1, 'a']", FormatValue([]Value{int64(1), "a"}))
	assert.Equal(t, "{a: 1, b: 2}", FormatValue(map[string]Value{"b": int64(2), "a": int64(1)}))
}

func TestTable_AppendRejectsWidthMismatch(t *testing.T) {
	tbl := NewTable(record.MustHeader(
		record.Field{Name: "a", Type: record.Integer()},
		record.Field{Name: "b", Type: record.Integer()},
	))

	require.NoError(t, tbl.Append([]Value{int64(1), int64(2)}))
	err := tbl.Append([]Value{int64(1)})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "row width 1")
}

func TestTable_ColumnUnknownField(t *testing.T) {
	tbl := Unit()

	_, err := tbl.Column("ghost")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown field 'ghost'")
}

func TestUnit(t *testing.T) {
	u := Unit()

	assert.Equal(t, 0, u.Header().Len())
	assert.Equal(t, 1, u.Len())
}

func TestConformReordersByName(t *testing.T) {
	a := record.Field{Name: "a", Type: record.Integer()}
	b := record.Field{Name: "b", Type: record.String()}
	from := record.MustHeader(a, b)
	to := record.MustHeader(b, a)

	row, err := conform([]Value{int64(1), "x"}, from, to)
	require.NoError(t, err)

	assert.Equal(t, []Value{"x", int64(1)}, row)
}

func TestConformMissingField(t *testing.T) {
	a := record.Field{Name: "a", Type: record.Integer()}
	c := record.Field{Name: "c", Type: record.Integer()}

	_, err := conform([]Value{int64(1)}, record.MustHeader(a), record.MustHeader(c))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "field 'c'")
}
