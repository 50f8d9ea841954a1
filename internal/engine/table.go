package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/matthewbaird/graphplan/internal/record"
)

// Table is an in-memory record stream: a header plus rows of values in
// header field order.
type Table struct {
	head *record.Header
	rows [][]Value
}

// NewTable creates an empty table with the given header.
func NewTable(head *record.Header) *Table {
	return &Table{head: head}
}

// Unit returns the table with no fields and a single empty record, the seed
// for operators without input records.
func Unit() *Table {
	t := NewTable(record.Empty())
	t.rows = append(t.rows, nil)
	return t
}

// Header returns the table's header.
func (t *Table) Header() *record.Header { return t.head }

// Rows returns the table's rows. The slice is shared, not copied; callers
// treat it as read-only.
func (t *Table) Rows() [][]Value { return t.rows }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Append adds a row. The row length must match the header.
func (t *Table) Append(row []Value) error {
	if len(row) != t.head.Len() {
		return fmt.Errorf("row width %d does not match header %s", len(row), t.head)
	}
	t.rows = append(t.rows, row)
	return nil
}

// Column returns the values of the named field across all rows.
func (t *Table) Column(name string) ([]Value, error) {
	i := t.head.IndexOf(name)
	if i < 0 {
		return nil, fmt.Errorf("unknown field '%s' in %s", name, t.head)
	}
	col := make([]Value, len(t.rows))
	for r, row := range t.rows {
		col[r] = row[i]
	}
	return col, nil
}

// conform reorders a row from one header's field order into another's.
// Every field of to must be present in from.
func conform(row []Value, from, to *record.Header) ([]Value, error) {
	out := make([]Value, 0, to.Len())
	for _, f := range to.Fields() {
		i := from.IndexOf(f.Name)
		if i < 0 {
			return nil, fmt.Errorf("field '%s' required by %s missing from %s", f.Name, to, from)
		}
		out = append(out, row[i])
	}
	return out, nil
}

// String renders the table for diagnostics: header names, then one line per
// row.
func (t *Table) String() string {
	var sb strings.Builder
	sb.WriteString(strings.Join(t.head.Names(), " | "))
	sb.WriteString("\n")
	for _, row := range t.rows {
		parts := make([]string, len(row))
		for i, v := range row {
			parts[i] = FormatValue(v)
		}
		sb.WriteString(strings.Join(parts, " | "))
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatValue renders a value for table output and grouping keys. Node and
// relationship values render by identity; property maps render sorted for
// determinism.
func FormatValue(v Value) string {
	switch v := v.(type) {
	case nil:
		return "null"
	case *Node:
		if len(v.Labels) > 0 {
			return fmt.Sprintf("(#%d:%s)", v.ID, strings.Join(v.Labels, ":"))
		}
		return fmt.Sprintf("(#%d)", v.ID)
	case *Relationship:
		return fmt.Sprintf("[#%d:%s]", v.ID, v.Type)
	case string:
		return fmt.Sprintf("'%s'", v)
	case []Value:
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = FormatValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]Value:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s: %s", k, FormatValue(v[k]))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprintf("%v", v)
	}
}
