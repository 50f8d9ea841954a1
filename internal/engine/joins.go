package engine

import (
	"fmt"
	"strings"

	"github.com/matthewbaird/graphplan/internal/expr"
	"github.com/matthewbaird/graphplan/internal/record"
)

// PlanCartesianProduct combines two inputs without a join condition.
func (e *Engine) PlanCartesianProduct(lhs, rhs *Operator, header *record.Header) (*Operator, error) {
	return newOp("CartesianProduct", "", header, func(r *run, inputs []*state) (*state, error) {
		left, right := inputs[0], inputs[1]
		concat, err := left.table.Header().Concat(right.table.Header())
		if err != nil {
			return nil, err
		}
		out := NewTable(header)
		for _, lrow := range left.table.Rows() {
			for _, rrow := range right.table.Rows() {
				row := append(append([]Value(nil), lrow...), rrow...)
				conformed, err := conform(row, concat, header)
				if err != nil {
					return nil, err
				}
				if err := out.Append(conformed); err != nil {
					return nil, err
				}
			}
		}
		return mergeScopes(left, right, out), nil
	}, lhs, rhs), nil
}

// PlanValueJoin joins two inputs on comparison predicates whose left sides
// evaluate in LHS scope and right sides in RHS scope.
func (e *Engine) PlanValueJoin(lhs, rhs *Operator, predicates []expr.Comparison, header *record.Header) (*Operator, error) {
	details := make([]string, len(predicates))
	for i, p := range predicates {
		details[i] = p.String()
	}
	return newOp("ValueJoin", strings.Join(details, ", "), header, func(r *run, inputs []*state) (*state, error) {
		left, right := inputs[0], inputs[1]
		concat, err := left.table.Header().Concat(right.table.Header())
		if err != nil {
			return nil, err
		}
		out := NewTable(header)
		for _, lrow := range left.table.Rows() {
			for _, rrow := range right.table.Rows() {
				matched := true
				for _, p := range predicates {
					lv, err := r.evalExpr(p.Left, lrow, left.table.Header())
					if err != nil {
						return nil, err
					}
					rv, err := r.evalExpr(p.Right, rrow, right.table.Header())
					if err != nil {
						return nil, err
					}
					if !r.compare(p.Op, lv, rv) {
						matched = false
						break
					}
				}
				if !matched {
					continue
				}
				row := append(append([]Value(nil), lrow...), rrow...)
				conformed, err := conform(row, concat, header)
				if err != nil {
					return nil, err
				}
				if err := out.Append(conformed); err != nil {
					return nil, err
				}
			}
		}
		return mergeScopes(left, right, out), nil
	}, lhs, rhs), nil
}

// PlanOptional attaches matching RHS records to each LHS record on their
// shared fields. Every LHS record survives; unmatched ones carry nulls in
// the RHS-only fields.
func (e *Engine) PlanOptional(lhs, rhs *Operator, header *record.Header) (*Operator, error) {
	return newOp("Optional", "", header, func(r *run, inputs []*state) (*state, error) {
		left, right := inputs[0], inputs[1]
		common := commonFields(left.table.Header(), right.table.Header())

		out := NewTable(header)
		for _, lrow := range left.table.Rows() {
			matched := false
			for _, rrow := range right.table.Rows() {
				if !rowsAgree(lrow, rrow, left.table.Header(), right.table.Header(), common) {
					continue
				}
				matched = true
				row, err := mergeRows(lrow, rrow, left.table.Header(), right.table.Header(), header)
				if err != nil {
					return nil, err
				}
				if err := out.Append(row); err != nil {
					return nil, err
				}
			}
			if !matched {
				row, err := mergeRows(lrow, nil, left.table.Header(), right.table.Header(), header)
				if err != nil {
					return nil, err
				}
				if err := out.Append(row); err != nil {
					return nil, err
				}
			}
		}
		return mergeScopes(left, right, out), nil
	}, lhs, rhs), nil
}

// PlanExistsSubQuery tags each LHS record with whether at least one RHS
// record agrees on their shared fields. LHS cardinality is preserved
// exactly: multiple matches contribute a single true.
func (e *Engine) PlanExistsSubQuery(lhs, rhs *Operator, target record.Field, header *record.Header) (*Operator, error) {
	return newOp("ExistsSubQuery", target.Name, header, func(r *run, inputs []*state) (*state, error) {
		left, right := inputs[0], inputs[1]
		common := commonFields(left.table.Header(), right.table.Header())
		concat, err := left.table.Header().Append(target)
		if err != nil {
			return nil, err
		}

		out := NewTable(header)
		for _, lrow := range left.table.Rows() {
			exists := false
			for _, rrow := range right.table.Rows() {
				if rowsAgree(lrow, rrow, left.table.Header(), right.table.Header(), common) {
					exists = true
					break
				}
			}
			conformed, err := conform(append(append([]Value(nil), lrow...), exists), concat, header)
			if err != nil {
				return nil, err
			}
			if err := out.Append(conformed); err != nil {
				return nil, err
			}
		}
		return mergeScopes(left, right, out), nil
	}, lhs, rhs), nil
}

// PlanUnion concatenates two inputs with identical field names. Rows are
// kept as-is; the union does not de-duplicate.
func (e *Engine) PlanUnion(lhs, rhs *Operator) (*Operator, error) {
	header := lhs.Header()
	return newOp("Union", "", header, func(r *run, inputs []*state) (*state, error) {
		left, right := inputs[0], inputs[1]
		out := NewTable(header)
		for _, row := range left.table.Rows() {
			conformed, err := conform(row, left.table.Header(), header)
			if err != nil {
				return nil, err
			}
			if err := out.Append(conformed); err != nil {
				return nil, err
			}
		}
		for _, row := range right.table.Rows() {
			conformed, err := conform(row, right.table.Header(), header)
			if err != nil {
				return nil, err
			}
			if err := out.Append(conformed); err != nil {
				return nil, err
			}
		}
		return mergeScopes(left, right, out), nil
	}, lhs, rhs), nil
}

// commonFields returns the names present in both headers, in lhs order.
func commonFields(lhs, rhs *record.Header) []string {
	var common []string
	for _, name := range lhs.Names() {
		if rhs.IndexOf(name) >= 0 {
			common = append(common, name)
		}
	}
	return common
}

// rowsAgree reports whether two rows hold equal values for every shared
// field name.
func rowsAgree(lrow, rrow []Value, lhead, rhead *record.Header, common []string) bool {
	for _, name := range common {
		if !valuesEqual(lrow[lhead.IndexOf(name)], rrow[rhead.IndexOf(name)]) {
			return false
		}
	}
	return true
}

// mergeRows builds an output row in header order, preferring LHS bindings;
// a nil RHS row null-fills the RHS-only fields.
func mergeRows(lrow, rrow []Value, lhead, rhead, header *record.Header) ([]Value, error) {
	out := make([]Value, 0, header.Len())
	for _, f := range header.Fields() {
		if i := lhead.IndexOf(f.Name); i >= 0 {
			out = append(out, lrow[i])
			continue
		}
		i := rhead.IndexOf(f.Name)
		if i < 0 {
			return nil, headerFieldMissing(f, lhead, rhead)
		}
		if rrow == nil {
			out = append(out, nil)
			continue
		}
		out = append(out, rrow[i])
	}
	return out, nil
}

func headerFieldMissing(f record.Field, lhead, rhead *record.Header) error {
	return fmt.Errorf("field '%s' missing from both %s and %s", f.Name, lhead, rhead)
}
