package engine

import (
	"context"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/matthewbaird/graphplan/internal/catalog"
	"github.com/matthewbaird/graphplan/internal/record"
)

// state is the output of one operator evaluation: a table plus the graph
// scope it was computed under.
type state struct {
	table *Table
	// graphs holds the in-scope named graphs.
	graphs map[string]*Graph
	// ambient is the active source graph scans run against.
	ambient *Graph
}

// derive copies the graph scope with a new table.
func (s *state) derive(t *Table) *state {
	return &state{table: t, graphs: s.graphs, ambient: s.ambient}
}

// mergeScopes combines the graph scopes of two states; the left ambient
// graph wins.
func mergeScopes(lhs, rhs *state, t *Table) *state {
	graphs := make(map[string]*Graph, len(lhs.graphs)+len(rhs.graphs))
	for name, g := range rhs.graphs {
		graphs[name] = g
	}
	for name, g := range lhs.graphs {
		graphs[name] = g
	}
	ambient := lhs.ambient
	if ambient == nil {
		ambient = rhs.ambient
	}
	return &state{table: t, graphs: graphs, ambient: ambient}
}

type evalFn func(r *run, in []*state) (*state, error)

// Operator is a node of the physical plan: a lazy evaluation step over the
// outputs of its children. Opaque to the planner beyond its header.
type Operator struct {
	kind     string
	detail   string
	head     *record.Header
	children []*Operator
	eval     evalFn
}

// Header returns the record header the operator's output conforms to.
func (o *Operator) Header() *record.Header { return o.head }

// Kind returns the operator's kind name, e.g. "NodeScan".
func (o *Operator) Kind() string { return o.kind }

// Children returns the operator's inputs.
func (o *Operator) Children() []*Operator { return o.children }

// Explain renders the operator tree, root first, children indented.
func (o *Operator) Explain() string {
	var sb strings.Builder
	o.explain(&sb, 0)
	return sb.String()
}

func (o *Operator) explain(sb *strings.Builder, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	sb.WriteString(o.kind)
	if o.detail != "" {
		sb.WriteString("(")
		sb.WriteString(o.detail)
		sb.WriteString(")")
	}
	sb.WriteString("\n")
	for _, c := range o.children {
		c.explain(sb, depth+1)
	}
}

func newOp(kind, detail string, head *record.Header, eval evalFn, children ...*Operator) *Operator {
	return &Operator{kind: kind, detail: detail, head: head, children: children, eval: eval}
}

// Engine is the reference backend. It implements the producer contract over
// in-memory graphs resolved from a catalog, and evaluates the resulting
// operator trees.
type Engine struct {
	catalog  *catalog.Catalog[*Graph]
	collator *collate.Collator
}

// New creates an engine over the given graph catalog.
func New(cat *catalog.Catalog[*Graph]) *Engine {
	return &Engine{
		catalog:  cat,
		collator: collate.New(language.Und),
	}
}

// Catalog returns the engine's graph catalog.
func (e *Engine) Catalog() *catalog.Catalog[*Graph] { return e.catalog }

// run carries one evaluation's state.
type run struct {
	ctx    context.Context
	engine *Engine
	params map[string]any
}

// Run evaluates a physical operator tree and returns the root table.
func (e *Engine) Run(ctx context.Context, op *Operator, params map[string]any) (*Table, error) {
	r := &run{ctx: ctx, engine: e, params: params}
	st, err := r.eval(op)
	if err != nil {
		return nil, err
	}
	return st.table, nil
}

func (r *run) eval(o *Operator) (*state, error) {
	if err := r.ctx.Err(); err != nil {
		return nil, err
	}
	inputs := make([]*state, len(o.children))
	for i, c := range o.children {
		st, err := r.eval(c)
		if err != nil {
			return nil, err
		}
		inputs[i] = st
	}
	return o.eval(r, inputs)
}
