package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/matthewbaird/graphplan/internal/expr"
	"github.com/matthewbaird/graphplan/internal/flat"
	"github.com/matthewbaird/graphplan/internal/physical"
	"github.com/matthewbaird/graphplan/internal/record"
)

// Engine implements the full producer contract.
var _ physical.Producer[*Operator, *Table] = (*Engine)(nil)

// PlanStart seeds a plan from the given input records, bound to an external
// graph. Nil records seed from the unit table.
func (e *Engine) PlanStart(graph flat.ExternalGraph, records *Table, header *record.Header) (*Operator, error) {
	return newOp("Start", graph.Name, header, func(r *run, _ []*state) (*state, error) {
		g, err := r.engine.catalog.Resolve(graph.Name)
		if err != nil {
			return nil, err
		}
		t := records
		if t == nil {
			t = Unit()
		}
		out := NewTable(header)
		for _, row := range t.Rows() {
			conformed, err := conform(row, t.Header(), header)
			if err != nil {
				return nil, err
			}
			if err := out.Append(conformed); err != nil {
				return nil, err
			}
		}
		return &state{table: out, graphs: map[string]*Graph{graph.Name: g}, ambient: g}, nil
	}), nil
}

// PlanStartFromUnit seeds a plan from the unit table bound to an external
// graph.
func (e *Engine) PlanStartFromUnit(graph flat.ExternalGraph, header *record.Header) (*Operator, error) {
	return e.PlanStart(graph, Unit(), header)
}

// PlanEmptyRecords produces a table with the given header and no rows.
func (e *Engine) PlanEmptyRecords(header *record.Header) (*Operator, error) {
	return newOp("EmptyRecords", "", header, func(_ *run, _ []*state) (*state, error) {
		return &state{table: NewTable(header), graphs: map[string]*Graph{}}, nil
	}), nil
}

// PlanSetSourceGraph re-binds the active source graph.
func (e *Engine) PlanSetSourceGraph(in *Operator, graph flat.ExternalGraph, header *record.Header) (*Operator, error) {
	return newOp("SetSourceGraph", graph.Name, header, func(r *run, inputs []*state) (*state, error) {
		g, err := r.engine.catalog.Resolve(graph.Name)
		if err != nil {
			return nil, err
		}
		st := inputs[0]
		graphs := copyGraphs(st.graphs)
		graphs[graph.Name] = g
		return &state{table: st.table, graphs: graphs, ambient: g}, nil
	}, in), nil
}

// PlanNodeScan emits one record per node of the active source graph
// matching the variable's label constraints, per input record.
func (e *Engine) PlanNodeScan(in *Operator, node record.Field, header *record.Header) (*Operator, error) {
	return newOp("NodeScan", node.String(), header, func(r *run, inputs []*state) (*state, error) {
		st := inputs[0]
		if st.ambient == nil {
			return nil, fmt.Errorf("node scan for '%s' without a bound source graph", node.Name)
		}
		concat, err := st.table.Header().Append(node)
		if err != nil {
			return nil, err
		}
		out := NewTable(header)
		for _, row := range st.table.Rows() {
			for _, n := range st.ambient.Nodes {
				if !n.HasLabels(node.Type.Labels) {
					continue
				}
				conformed, err := conform(append(append([]Value(nil), row...), n), concat, header)
				if err != nil {
					return nil, err
				}
				if err := out.Append(conformed); err != nil {
					return nil, err
				}
			}
		}
		return st.derive(out), nil
	}, in), nil
}

// PlanRelationshipScan emits one record per relationship of the active
// source graph matching the variable's type constraints, per input record.
func (e *Engine) PlanRelationshipScan(in *Operator, relationship record.Field, header *record.Header) (*Operator, error) {
	return newOp("RelationshipScan", relationship.String(), header, func(r *run, inputs []*state) (*state, error) {
		st := inputs[0]
		if st.ambient == nil {
			return nil, fmt.Errorf("relationship scan for '%s' without a bound source graph", relationship.Name)
		}
		concat, err := st.table.Header().Append(relationship)
		if err != nil {
			return nil, err
		}
		out := NewTable(header)
		for _, row := range st.table.Rows() {
			for _, rel := range st.ambient.Relationships {
				if !relTypeMatches(rel, relationship.Type.RelTypes) {
					continue
				}
				conformed, err := conform(append(append([]Value(nil), row...), rel), concat, header)
				if err != nil {
					return nil, err
				}
				if err := out.Append(conformed); err != nil {
					return nil, err
				}
			}
		}
		return st.derive(out), nil
	}, in), nil
}

// PlanSelectFields projects the input to a field subset.
func (e *Engine) PlanSelectFields(in *Operator, fields []record.Field, header *record.Header) (*Operator, error) {
	return newOp("SelectFields", fieldNames(fields), header, func(r *run, inputs []*state) (*state, error) {
		return conformState(inputs[0], header)
	}, in), nil
}

// PlanSelectGraphs restricts the in-scope named graphs.
func (e *Engine) PlanSelectGraphs(in *Operator, graphs []string) (*Operator, error) {
	return newOp("SelectGraphs", strings.Join(graphs, ", "), in.Header(), func(r *run, inputs []*state) (*state, error) {
		st := inputs[0]
		kept := make(map[string]*Graph, len(graphs))
		for _, name := range graphs {
			if g, ok := st.graphs[name]; ok {
				kept[name] = g
			}
		}
		return &state{table: st.table, graphs: kept, ambient: st.ambient}, nil
	}, in), nil
}

// PlanRemoveAliases drops alias bindings absent from the output header.
func (e *Engine) PlanRemoveAliases(in *Operator, dependent []record.Field, header *record.Header) (*Operator, error) {
	return newOp("RemoveAliases", fieldNames(dependent), header, func(r *run, inputs []*state) (*state, error) {
		return conformState(inputs[0], header)
	}, in), nil
}

// PlanAlias binds an expression result under a new name.
func (e *Engine) PlanAlias(in *Operator, ex expr.Expr, alias record.Field, header *record.Header) (*Operator, error) {
	detail := fmt.Sprintf("%s AS %s", ex, alias.Name)
	return newOp("Alias", detail, header, e.projectEval(ex, alias, header), in), nil
}

// PlanProject adds a computed expression as a new field.
func (e *Engine) PlanProject(in *Operator, ex expr.Expr, field record.Field, header *record.Header) (*Operator, error) {
	detail := fmt.Sprintf("%s AS %s", ex, field.Name)
	return newOp("Project", detail, header, e.projectEval(ex, field, header), in), nil
}

func (e *Engine) projectEval(ex expr.Expr, field record.Field, header *record.Header) evalFn {
	return func(r *run, inputs []*state) (*state, error) {
		st := inputs[0]
		concat, err := st.table.Header().Append(field)
		if err != nil {
			return nil, err
		}
		out := NewTable(header)
		for _, row := range st.table.Rows() {
			v, err := r.evalExpr(ex, row, st.table.Header())
			if err != nil {
				return nil, err
			}
			conformed, err := conform(append(append([]Value(nil), row...), v), concat, header)
			if err != nil {
				return nil, err
			}
			if err := out.Append(conformed); err != nil {
				return nil, err
			}
		}
		return st.derive(out), nil
	}
}

// PlanUnwind expands each record into one record per element of a
// list-valued expression.
func (e *Engine) PlanUnwind(in *Operator, list expr.Expr, item record.Field, header *record.Header) (*Operator, error) {
	detail := fmt.Sprintf("%s AS %s", list, item.Name)
	return newOp("Unwind", detail, header, func(r *run, inputs []*state) (*state, error) {
		st := inputs[0]
		concat, err := st.table.Header().Append(item)
		if err != nil {
			return nil, err
		}
		out := NewTable(header)
		for _, row := range st.table.Rows() {
			v, err := r.evalExpr(list, row, st.table.Header())
			if err != nil {
				return nil, err
			}
			if v == nil {
				continue
			}
			elems, ok := v.([]Value)
			if !ok {
				return nil, fmt.Errorf("unwind of non-list value %s", FormatValue(v))
			}
			for _, elem := range elems {
				conformed, err := conform(append(append([]Value(nil), row...), elem), concat, header)
				if err != nil {
					return nil, err
				}
				if err := out.Append(conformed); err != nil {
					return nil, err
				}
			}
		}
		return st.derive(out), nil
	}, in), nil
}

// PlanFilter keeps records whose predicate evaluates to true.
func (e *Engine) PlanFilter(in *Operator, predicate expr.Expr, header *record.Header) (*Operator, error) {
	return newOp("Filter", predicate.String(), header, func(r *run, inputs []*state) (*state, error) {
		st := inputs[0]
		out := NewTable(header)
		for _, row := range st.table.Rows() {
			v, err := r.evalExpr(predicate, row, st.table.Header())
			if err != nil {
				return nil, err
			}
			if !truthy(v) {
				continue
			}
			conformed, err := conform(row, st.table.Header(), header)
			if err != nil {
				return nil, err
			}
			if err := out.Append(conformed); err != nil {
				return nil, err
			}
		}
		return st.derive(out), nil
	}, in), nil
}

// PlanDistinct de-duplicates on a field subset, keeping first occurrences.
func (e *Engine) PlanDistinct(in *Operator, fields []record.Field) (*Operator, error) {
	header := in.Header()
	return newOp("Distinct", fieldNames(fields), header, func(r *run, inputs []*state) (*state, error) {
		st := inputs[0]
		out := NewTable(header)
		seen := make(map[string]bool)
		for _, row := range st.table.Rows() {
			key, err := rowKey(row, st.table.Header(), fields)
			if err != nil {
				return nil, err
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			if err := out.Append(row); err != nil {
				return nil, err
			}
		}
		return st.derive(out), nil
	}, in), nil
}

// PlanAggregate groups by a field subset and computes aggregations per
// group. Group order follows first appearance in the input.
func (e *Engine) PlanAggregate(in *Operator, group []record.Field, aggregations []flat.AggregateItem, header *record.Header) (*Operator, error) {
	details := make([]string, 0, len(aggregations))
	for _, item := range aggregations {
		details = append(details, fmt.Sprintf("%s AS %s", item.Agg, item.Field.Name))
	}
	return newOp("Aggregate", strings.Join(details, ", "), header, func(r *run, inputs []*state) (*state, error) {
		st := inputs[0]
		inHead := st.table.Header()

		var keys []string
		groups := make(map[string][][]Value)
		firstRow := make(map[string][]Value)
		for _, row := range st.table.Rows() {
			// An empty grouping aggregates the whole input as one group.
			key := ""
			if len(group) > 0 {
				var err error
				key, err = rowKey(row, inHead, group)
				if err != nil {
					return nil, err
				}
			}
			if _, ok := groups[key]; !ok {
				keys = append(keys, key)
				firstRow[key] = row
			}
			groups[key] = append(groups[key], row)
		}
		// A global aggregation over zero rows still yields one row.
		if len(group) == 0 && len(keys) == 0 {
			keys = append(keys, "")
		}

		aggFields := make([]record.Field, len(aggregations))
		for i, item := range aggregations {
			aggFields[i] = item.Field
		}
		concat, err := record.NewHeader(append(append([]record.Field(nil), group...), aggFields...)...)
		if err != nil {
			return nil, err
		}

		out := NewTable(header)
		for _, key := range keys {
			row := make([]Value, 0, concat.Len())
			for _, f := range group {
				i := inHead.IndexOf(f.Name)
				if i < 0 {
					return nil, fmt.Errorf("unknown grouping field '%s' in %s", f.Name, inHead)
				}
				row = append(row, firstRow[key][i])
			}
			for _, item := range aggregations {
				v, err := r.evalAggregator(item.Agg, groups[key], inHead)
				if err != nil {
					return nil, err
				}
				row = append(row, v)
			}
			conformed, err := conform(row, concat, header)
			if err != nil {
				return nil, err
			}
			if err := out.Append(conformed); err != nil {
				return nil, err
			}
		}
		return st.derive(out), nil
	}, in), nil
}

// PlanOrderBy sorts records by the given keys. The sort is stable.
func (e *Engine) PlanOrderBy(in *Operator, sortItems []flat.SortItem, header *record.Header) (*Operator, error) {
	details := make([]string, len(sortItems))
	for i, item := range sortItems {
		details[i] = item.Expr.String()
		if item.Descending {
			details[i] += " DESC"
		}
	}
	return newOp("OrderBy", strings.Join(details, ", "), header, func(r *run, inputs []*state) (*state, error) {
		st := inputs[0]
		inHead := st.table.Header()

		rows := st.table.Rows()
		keys := make([][]Value, len(rows))
		for i, row := range rows {
			keys[i] = make([]Value, len(sortItems))
			for j, item := range sortItems {
				v, err := r.evalExpr(item.Expr, row, inHead)
				if err != nil {
					return nil, err
				}
				keys[i][j] = v
			}
		}

		order := make([]int, len(rows))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			for j, item := range sortItems {
				c := compareValues(keys[order[a]][j], keys[order[b]][j], r.engine.collator)
				if item.Descending {
					c = -c
				}
				if c != 0 {
					return c < 0
				}
			}
			return false
		})

		out := NewTable(header)
		for _, i := range order {
			conformed, err := conform(rows[i], inHead, header)
			if err != nil {
				return nil, err
			}
			if err := out.Append(conformed); err != nil {
				return nil, err
			}
		}
		return st.derive(out), nil
	}, in), nil
}

// PlanSkip drops the first records.
func (e *Engine) PlanSkip(in *Operator, ex expr.Expr, header *record.Header) (*Operator, error) {
	return newOp("Skip", ex.String(), header, func(r *run, inputs []*state) (*state, error) {
		st := inputs[0]
		n, err := r.evalCount(ex)
		if err != nil {
			return nil, err
		}
		out := NewTable(header)
		for i, row := range st.table.Rows() {
			if i < n {
				continue
			}
			if err := out.Append(row); err != nil {
				return nil, err
			}
		}
		return st.derive(out), nil
	}, in), nil
}

// PlanLimit keeps at most the first records.
func (e *Engine) PlanLimit(in *Operator, ex expr.Expr, header *record.Header) (*Operator, error) {
	return newOp("Limit", ex.String(), header, func(r *run, inputs []*state) (*state, error) {
		st := inputs[0]
		n, err := r.evalCount(ex)
		if err != nil {
			return nil, err
		}
		out := NewTable(header)
		for i, row := range st.table.Rows() {
			if i >= n {
				break
			}
			if err := out.Append(row); err != nil {
				return nil, err
			}
		}
		return st.derive(out), nil
	}, in), nil
}

// PlanProjectExternalGraph switches the active named graph context to a
// catalogued graph.
func (e *Engine) PlanProjectExternalGraph(in *Operator, graph flat.ExternalGraph) (*Operator, error) {
	return newOp("ProjectExternalGraph", graph.Name, in.Header(), func(r *run, inputs []*state) (*state, error) {
		g, err := r.engine.catalog.Resolve(graph.Name)
		if err != nil {
			return nil, err
		}
		st := inputs[0]
		graphs := copyGraphs(st.graphs)
		graphs[graph.Name] = g
		return &state{table: st.table, graphs: graphs, ambient: g}, nil
	}, in), nil
}

// PlanProjectPatternGraph materializes a new pattern graph from construction
// clauses and binds it as the active graph.
func (e *Engine) PlanProjectPatternGraph(in *Operator, graph flat.PatternGraph) (*Operator, error) {
	return newOp("ProjectPatternGraph", graph.Name, in.Header(), func(r *run, inputs []*state) (*state, error) {
		return materializePatternGraph(inputs[0], graph)
	}, in), nil
}

func conformState(st *state, header *record.Header) (*state, error) {
	out := NewTable(header)
	for _, row := range st.table.Rows() {
		conformed, err := conform(row, st.table.Header(), header)
		if err != nil {
			return nil, err
		}
		if err := out.Append(conformed); err != nil {
			return nil, err
		}
	}
	return st.derive(out), nil
}

func relTypeMatches(rel *Relationship, relTypes []string) bool {
	if len(relTypes) == 0 {
		return true
	}
	for _, t := range relTypes {
		if rel.Type == t {
			return true
		}
	}
	return false
}

// rowKey builds a deterministic grouping key over a field subset. An empty
// subset keys the whole row.
func rowKey(row []Value, head *record.Header, fields []record.Field) (string, error) {
	if len(fields) == 0 {
		parts := make([]string, len(row))
		for i, v := range row {
			parts[i] = FormatValue(v)
		}
		return strings.Join(parts, "\x00"), nil
	}
	parts := make([]string, len(fields))
	for i, f := range fields {
		idx := head.IndexOf(f.Name)
		if idx < 0 {
			return "", fmt.Errorf("unknown field '%s' in %s", f.Name, head)
		}
		parts[i] = FormatValue(row[idx])
	}
	return strings.Join(parts, "\x00"), nil
}

func fieldNames(fields []record.Field) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return strings.Join(names, ", ")
}

func copyGraphs(graphs map[string]*Graph) map[string]*Graph {
	out := make(map[string]*Graph, len(graphs))
	for name, g := range graphs {
		out[name] = g
	}
	return out
}
