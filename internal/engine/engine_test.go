package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/graphplan/internal/catalog"
	"github.com/matthewbaird/graphplan/internal/expr"
	"github.com/matthewbaird/graphplan/internal/flat"
	"github.com/matthewbaird/graphplan/internal/physical"
	"github.com/matthewbaird/graphplan/internal/record"
	"github.com/matthewbaird/graphplan/internal/session"
)

const testGraphName = "test.people"

var testGraphRef = flat.ExternalGraph{Name: testGraphName}

// newPeopleGraph builds the shared fixture: three Person nodes in a KNOWS
// chain Alice -> Bob -> Carol, plus one unrelated Robot node.
func newPeopleGraph() *Graph {
	g := NewGraph("people")
	alice := g.AddNode([]string{"Person"}, map[string]Value{"name": "Alice", "age": int64(34)})
	bob := g.AddNode([]string{"Person"}, map[string]Value{"name": "Bob", "age": int64(25)})
	carol := g.AddNode([]string{"Person"}, map[string]Value{"name": "Carol", "age": int64(41)})
	g.AddNode([]string{"Robot"}, map[string]Value{"name": "R2"})
	g.AddRelationship("KNOWS", alice, bob, nil)
	g.AddRelationship("KNOWS", bob, carol, nil)
	return g
}

func nf(name string, labels ...string) record.Field {
	return record.Field{Name: name, Type: record.NodeType(labels...)}
}

func rfld(name string, relTypes ...string) record.Field {
	return record.Field{Name: name, Type: record.RelationshipType(relTypes...)}
}

func startOp() *flat.Start {
	return &flat.Start{Graph: testGraphRef, Head: record.Empty()}
}

func scanOp(f record.Field) *flat.NodeScan {
	return &flat.NodeScan{Node: f, In: startOp(), Head: record.MustHeader(f)}
}

// buildPlan lowers a flat plan against a fresh engine over g.
func buildPlan(t *testing.T, g *Graph, flatPlan flat.Operator) (*Engine, *Operator) {
	t.Helper()
	cat := catalog.New[*Graph]()
	require.NoError(t, cat.Register(testGraphName, g))
	eng := New(cat)
	planner := physical.New[*Operator, *Table](eng)
	pctx := physical.NewContext[*Table](session.New("test"), nil)
	op, err := planner.Process(flatPlan, pctx)
	require.NoError(t, err)
	return eng, op
}

func runPlan(t *testing.T, g *Graph, flatPlan flat.Operator, params map[string]any) *Table {
	t.Helper()
	eng, op := buildPlan(t, g, flatPlan)
	out, err := eng.Run(context.Background(), op, params)
	require.NoError(t, err)
	return out
}

// nodeNames extracts the name property of node-valued cells in a column.
func nodeNames(t *testing.T, tbl *Table, col string) []string {
	t.Helper()
	vals, err := tbl.Column(col)
	require.NoError(t, err)
	out := make([]string, len(vals))
	for i, v := range vals {
		n, ok := v.(*Node)
		require.True(t, ok, "column %s row %d is not a node: %v", col, i, v)
		out[i] = n.Props["name"].(string)
	}
	return out
}

func TestRun_NodeScanFiltersByLabel(t *testing.T) {
	tbl := runPlan(t, newPeopleGraph(), scanOp(nf("n", "Person")), nil)

	assert.ElementsMatch(t, []string{"Alice", "Bob", "Carol"}, nodeNames(t, tbl, "n"))
}

func TestRun_NodeScanUnlabelled(t *testing.T) {
	tbl := runPlan(t, newPeopleGraph(), scanOp(nf("n")), nil)

	assert.Equal(t, 4, tbl.Len())
}

func TestRun_FilterOnProperty(t *testing.T) {
	n := nf("n", "Person")
	over30 := &flat.Filter{
		Predicate: expr.Comparison{
			Op:    expr.OpGT,
			Left:  expr.Property{Subject: expr.Var{Name: "n"}, Key: "age"},
			Right: expr.Lit{Value: 30},
		},
		In:   scanOp(n),
		Head: record.MustHeader(n),
	}

	tbl := runPlan(t, newPeopleGraph(), over30, nil)

	assert.ElementsMatch(t, []string{"Alice", "Carol"}, nodeNames(t, tbl, "n"))
}

func TestRun_TrivialFilterKeepsEveryRow(t *testing.T) {
	n := nf("n", "Person")
	trivial := &flat.Filter{
		Predicate: expr.True(),
		In:        scanOp(n),
		Head:      record.MustHeader(n),
	}

	tbl := runPlan(t, newPeopleGraph(), trivial, nil)

	assert.Equal(t, 3, tbl.Len())
}

func TestRun_ProjectProperty(t *testing.T) {
	n := nf("n", "Person")
	name := record.Field{Name: "name", Type: record.String()}
	project := &flat.Project{
		Expr:  expr.Property{Subject: expr.Var{Name: "n"}, Key: "name"},
		Field: name,
		In:    scanOp(n),
		Head:  record.MustHeader(n, name),
	}

	tbl := runPlan(t, newPeopleGraph(), project, nil)

	names, err := tbl.Column("name")
	require.NoError(t, err)
	assert.ElementsMatch(t, []Value{"Alice", "Bob", "Carol"}, names)
}

func TestRun_AliasThenSelectFields(t *testing.T) {
	n := nf("n", "Person")
	nick := record.Field{Name: "nick", Type: record.String()}
	plan := &flat.Select{
		Fields: []record.Field{nick},
		Graphs: []string{testGraphName},
		In: &flat.Alias{
			Expr:  expr.Property{Subject: expr.Var{Name: "n"}, Key: "name"},
			Alias: nick,
			In:    scanOp(n),
			Head:  record.MustHeader(n, nick),
		},
		Head: record.MustHeader(nick),
	}

	tbl := runPlan(t, newPeopleGraph(), plan, nil)

	assert.Equal(t, []string{"nick"}, tbl.Header().Names())
	assert.Equal(t, 3, tbl.Len())
}

func TestRun_UnwindThenDistinct(t *testing.T) {
	x := record.Field{Name: "x", Type: record.Integer()}
	list := expr.ListLit{Elems: []expr.Expr{
		expr.Lit{Value: 1}, expr.Lit{Value: 2}, expr.Lit{Value: 2}, expr.Lit{Value: 3},
	}}
	plan := &flat.Distinct{
		Fields: []record.Field{x},
		In: &flat.Unwind{
			List: list,
			Item: x,
			In:   startOp(),
			Head: record.MustHeader(x),
		},
		Head: record.MustHeader(x),
	}

	tbl := runPlan(t, newPeopleGraph(), plan, nil)

	vals, err := tbl.Column("x")
	require.NoError(t, err)
	assert.Equal(t, []Value{int64(1), int64(2), int64(3)}, vals)
}

func TestRun_OrderBySkipLimit(t *testing.T) {
	n := nf("n", "Person")
	byName := expr.Property{Subject: expr.Var{Name: "n"}, Key: "name"}
	plan := &flat.Limit{
		Expr: expr.Param{Name: "limit"},
		In: &flat.Skip{
			Expr: expr.Lit{Value: 1},
			In: &flat.OrderBy{
				SortItems: []flat.SortItem{{Expr: byName}},
				In:        scanOp(n),
				Head:      record.MustHeader(n),
			},
			Head: record.MustHeader(n),
		},
		Head: record.MustHeader(n),
	}

	tbl := runPlan(t, newPeopleGraph(), plan, map[string]any{"limit": 2})

	assert.Equal(t, []string{"Bob", "Carol"}, nodeNames(t, tbl, "n"))
}

func TestRun_OrderByDescending(t *testing.T) {
	n := nf("n", "Person")
	byAge := expr.Property{Subject: expr.Var{Name: "n"}, Key: "age"}
	plan := &flat.OrderBy{
		SortItems: []flat.SortItem{{Expr: byAge, Descending: true}},
		In:        scanOp(n),
		Head:      record.MustHeader(n),
	}

	tbl := runPlan(t, newPeopleGraph(), plan, nil)

	assert.Equal(t, []string{"Carol", "Alice", "Bob"}, nodeNames(t, tbl, "n"))
}

func TestRun_SkipBeyondEnd(t *testing.T) {
	n := nf("n", "Person")
	plan := &flat.Skip{
		Expr: expr.Lit{Value: 10},
		In:   scanOp(n),
		Head: record.MustHeader(n),
	}

	tbl := runPlan(t, newPeopleGraph(), plan, nil)

	assert.Zero(t, tbl.Len())
}

func TestRun_GlobalAggregate(t *testing.T) {
	n := nf("n", "Person")
	age := expr.Property{Subject: expr.Var{Name: "n"}, Key: "age"}
	cnt := record.Field{Name: "cnt", Type: record.Integer()}
	total := record.Field{Name: "total", Type: record.Integer()}
	youngest := record.Field{Name: "youngest", Type: record.Integer()}
	oldest := record.Field{Name: "oldest", Type: record.Integer()}
	mean := record.Field{Name: "mean", Type: record.Float()}
	plan := &flat.Aggregate{
		Aggregations: []flat.AggregateItem{
			{Field: cnt, Agg: expr.Count{}},
			{Field: total, Agg: expr.Sum{Inner: age}},
			{Field: youngest, Agg: expr.Min{Inner: age}},
			{Field: oldest, Agg: expr.Max{Inner: age}},
			{Field: mean, Agg: expr.Avg{Inner: age}},
		},
		In:   scanOp(n),
		Head: record.MustHeader(cnt, total, youngest, oldest, mean),
	}

	tbl := runPlan(t, newPeopleGraph(), plan, nil)

	require.Equal(t, 1, tbl.Len())
	row := tbl.Rows()[0]
	assert.Equal(t, int64(3), row[0])
	assert.Equal(t, int64(100), row[1])
	assert.Equal(t, int64(25), row[2])
	assert.Equal(t, int64(41), row[3])
	assert.InDelta(t, 100.0/3.0, row[4], 1e-9)
}

func TestRun_GlobalAggregateOverEmptyInput(t *testing.T) {
	n := nf("n", "Ghost")
	cnt := record.Field{Name: "cnt", Type: record.Integer()}
	plan := &flat.Aggregate{
		Aggregations: []flat.AggregateItem{{Field: cnt, Agg: expr.Count{}}},
		In:           scanOp(n),
		Head:         record.MustHeader(cnt),
	}

	tbl := runPlan(t, newPeopleGraph(), plan, nil)

	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, int64(0), tbl.Rows()[0][0])
}

func TestRun_CollectDistinct(t *testing.T) {
	x := record.Field{Name: "x", Type: record.Integer()}
	collected := record.Field{Name: "xs", Type: record.ListOf(record.Integer())}
	plan := &flat.Aggregate{
		Aggregations: []flat.AggregateItem{
			{Field: collected, Agg: expr.Collect{Inner: expr.Var{Name: "x"}, Distinct: true}},
		},
		In: &flat.Unwind{
			List: expr.ListLit{Elems: []expr.Expr{
				expr.Lit{Value: 7}, expr.Lit{Value: 7}, expr.Lit{Value: 9},
			}},
			Item: x,
			In:   startOp(),
			Head: record.MustHeader(x),
		},
		Head: record.MustHeader(collected),
	}

	tbl := runPlan(t, newPeopleGraph(), plan, nil)

	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, []Value{int64(7), int64(9)}, tbl.Rows()[0][0])
}

func TestRun_CartesianProduct(t *testing.T) {
	a, b := nf("a", "Person"), nf("b", "Person")
	plan := &flat.CartesianProduct{
		LHS:  scanOp(a),
		RHS:  scanOp(b),
		Head: record.MustHeader(a, b),
	}

	tbl := runPlan(t, newPeopleGraph(), plan, nil)

	assert.Equal(t, 9, tbl.Len())
}

func TestRun_ValueJoinOnProperty(t *testing.T) {
	a, b := nf("a", "Person"), nf("b", "Person")
	plan := &flat.ValueJoin{
		LHS: scanOp(a),
		RHS: scanOp(b),
		Predicates: []expr.Comparison{{
			Op:    expr.OpLT,
			Left:  expr.Property{Subject: expr.Var{Name: "a"}, Key: "age"},
			Right: expr.Property{Subject: expr.Var{Name: "b"}, Key: "age"},
		}},
		Head: record.MustHeader(a, b),
	}

	tbl := runPlan(t, newPeopleGraph(), plan, nil)

	// Ages 34, 25, 41 admit exactly three strictly increasing pairs.
	assert.Equal(t, 3, tbl.Len())
}

func TestRun_MissingParameter(t *testing.T) {
	n := nf("n", "Person")
	plan := &flat.Limit{
		Expr: expr.Param{Name: "absent"},
		In:   scanOp(n),
		Head: record.MustHeader(n),
	}

	eng, op := buildPlan(t, newPeopleGraph(), plan)
	_, err := eng.Run(context.Background(), op, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing parameter $absent")
}

func TestRun_CancelledContext(t *testing.T) {
	eng, op := buildPlan(t, newPeopleGraph(), scanOp(nf("n", "Person")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := eng.Run(ctx, op, nil)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_UnknownGraph(t *testing.T) {
	cat := catalog.New[*Graph]()
	eng := New(cat)
	planner := physical.New[*Operator, *Table](eng)
	pctx := physical.NewContext[*Table](session.New("test"), nil)
	op, err := planner.Process(scanOp(nf("n")), pctx)
	require.NoError(t, err)

	_, err = eng.Run(context.Background(), op, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), testGraphName)
}

func TestRun_HasLabelPredicate(t *testing.T) {
	n := nf("n")
	plan := &flat.Filter{
		Predicate: expr.HasLabel{Subject: expr.Var{Name: "n"}, Label: "Robot"},
		In:        scanOp(n),
		Head:      record.MustHeader(n),
	}

	tbl := runPlan(t, newPeopleGraph(), plan, nil)

	assert.Equal(t, []string{"R2"}, nodeNames(t, tbl, "n"))
}

func TestRun_NullComparisonIsFalse(t *testing.T) {
	n := nf("n", "Person")
	// No Person carries a "height" property, so the comparison is never true.
	plan := &flat.Filter{
		Predicate: expr.Comparison{
			Op:    expr.OpGT,
			Left:  expr.Property{Subject: expr.Var{Name: "n"}, Key: "height"},
			Right: expr.Lit{Value: 0},
		},
		In:   scanOp(n),
		Head: record.MustHeader(n),
	}

	tbl := runPlan(t, newPeopleGraph(), plan, nil)

	assert.Zero(t, tbl.Len())
}
