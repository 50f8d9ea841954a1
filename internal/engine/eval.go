package engine

import (
	"fmt"

	"github.com/matthewbaird/graphplan/internal/expr"
	"github.com/matthewbaird/graphplan/internal/record"
)

// evalExpr evaluates an expression against one row. Null propagates through
// property access and comparisons to false per graph-query semantics.
func (r *run) evalExpr(e expr.Expr, row []Value, head *record.Header) (Value, error) {
	switch e := e.(type) {
	case expr.Var:
		i := head.IndexOf(e.Name)
		if i < 0 {
			return nil, fmt.Errorf("unbound variable '%s' in %s", e.Name, head)
		}
		return row[i], nil

	case expr.Param:
		v, ok := r.params[e.Name]
		if !ok {
			return nil, fmt.Errorf("missing parameter $%s", e.Name)
		}
		return normalize(v), nil

	case expr.Lit:
		return normalize(e.Value), nil

	case expr.Property:
		subject, err := r.evalExpr(e.Subject, row, head)
		if err != nil {
			return nil, err
		}
		switch subject := subject.(type) {
		case nil:
			return nil, nil
		case *Node:
			return normalize(subject.Props[e.Key]), nil
		case *Relationship:
			return normalize(subject.Props[e.Key]), nil
		default:
			return nil, fmt.Errorf("property access on non-entity value %s", FormatValue(subject))
		}

	case expr.ListLit:
		elems := make([]Value, len(e.Elems))
		for i, el := range e.Elems {
			v, err := r.evalExpr(el, row, head)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return elems, nil

	case expr.Comparison:
		left, err := r.evalExpr(e.Left, row, head)
		if err != nil {
			return nil, err
		}
		right, err := r.evalExpr(e.Right, row, head)
		if err != nil {
			return nil, err
		}
		return r.compare(e.Op, left, right), nil

	case expr.And:
		left, err := r.evalExpr(e.Left, row, head)
		if err != nil {
			return nil, err
		}
		if !truthy(left) {
			return false, nil
		}
		right, err := r.evalExpr(e.Right, row, head)
		if err != nil {
			return nil, err
		}
		return truthy(right), nil

	case expr.Or:
		left, err := r.evalExpr(e.Left, row, head)
		if err != nil {
			return nil, err
		}
		if truthy(left) {
			return true, nil
		}
		right, err := r.evalExpr(e.Right, row, head)
		if err != nil {
			return nil, err
		}
		return truthy(right), nil

	case expr.Not:
		inner, err := r.evalExpr(e.Expr, row, head)
		if err != nil {
			return nil, err
		}
		return !truthy(inner), nil

	case expr.HasLabel:
		subject, err := r.evalExpr(e.Subject, row, head)
		if err != nil {
			return nil, err
		}
		n, ok := subject.(*Node)
		if !ok {
			return false, nil
		}
		return n.HasLabel(e.Label), nil

	default:
		return nil, fmt.Errorf("unsupported expression %s (%T)", e, e)
	}
}

// compare applies a comparison operator; null operands yield false.
func (r *run) compare(op expr.CmpOp, left, right Value) bool {
	switch op {
	case expr.OpEQ:
		return valuesEqual(left, right)
	case expr.OpNEQ:
		if left == nil || right == nil {
			return false
		}
		return !valuesEqual(left, right)
	}
	if left == nil || right == nil {
		return false
	}
	if typeRank(left) != typeRank(right) {
		return false
	}
	c := compareValues(left, right, r.engine.collator)
	switch op {
	case expr.OpGT:
		return c > 0
	case expr.OpLT:
		return c < 0
	case expr.OpGTE:
		return c >= 0
	case expr.OpLTE:
		return c <= 0
	default:
		return false
	}
}

// evalCount evaluates a count expression (skip, limit) to a non-negative
// row count; such expressions see no row scope.
func (r *run) evalCount(e expr.Expr) (int, error) {
	v, err := r.evalExpr(e, nil, record.Empty())
	if err != nil {
		return 0, err
	}
	n, ok := v.(int64)
	if !ok || n < 0 {
		return 0, fmt.Errorf("expected a non-negative integer count, got %s", FormatValue(v))
	}
	return int(n), nil
}

// evalAggregator computes one aggregator over a group of rows.
func (r *run) evalAggregator(agg expr.Aggregator, rows [][]Value, head *record.Header) (Value, error) {
	switch agg := agg.(type) {
	case expr.Count:
		if agg.Inner == nil {
			return int64(len(rows)), nil
		}
		values, err := r.aggValues(agg.Inner, rows, head, agg.Distinct)
		if err != nil {
			return nil, err
		}
		return int64(len(values)), nil

	case expr.Sum:
		values, err := r.aggValues(agg.Inner, rows, head, false)
		if err != nil {
			return nil, err
		}
		return sumValues(values)

	case expr.Avg:
		values, err := r.aggValues(agg.Inner, rows, head, false)
		if err != nil {
			return nil, err
		}
		if len(values) == 0 {
			return nil, nil
		}
		total, err := sumValues(values)
		if err != nil {
			return nil, err
		}
		f, _ := numeric(total)
		return f / float64(len(values)), nil

	case expr.Min:
		return r.extremum(agg.Inner, rows, head, -1)

	case expr.Max:
		return r.extremum(agg.Inner, rows, head, 1)

	case expr.Collect:
		values, err := r.aggValues(agg.Inner, rows, head, agg.Distinct)
		if err != nil {
			return nil, err
		}
		return values, nil

	default:
		return nil, fmt.Errorf("unsupported aggregator %s (%T)", agg, agg)
	}
}

// aggValues evaluates an expression over a group, dropping nulls and,
// optionally, duplicates.
func (r *run) aggValues(e expr.Expr, rows [][]Value, head *record.Header, distinct bool) ([]Value, error) {
	values := make([]Value, 0, len(rows))
	for _, row := range rows {
		v, err := r.evalExpr(e, row, head)
		if err != nil {
			return nil, err
		}
		if v == nil {
			continue
		}
		if distinct && containsValue(values, v) {
			continue
		}
		values = append(values, v)
	}
	return values, nil
}

func (r *run) extremum(e expr.Expr, rows [][]Value, head *record.Header, dir int) (Value, error) {
	values, err := r.aggValues(e, rows, head, false)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	best := values[0]
	for _, v := range values[1:] {
		if compareValues(v, best, r.engine.collator)*dir > 0 {
			best = v
		}
	}
	return best, nil
}

func sumValues(values []Value) (Value, error) {
	allInts := true
	var total float64
	for _, v := range values {
		f, ok := numeric(v)
		if !ok {
			return nil, fmt.Errorf("cannot sum non-numeric value %s", FormatValue(v))
		}
		if _, isInt := v.(int64); !isInt {
			allInts = false
		}
		total += f
	}
	if allInts {
		return int64(total), nil
	}
	return total, nil
}

func containsValue(values []Value, v Value) bool {
	for _, existing := range values {
		if valuesEqual(existing, v) {
			return true
		}
	}
	return false
}
