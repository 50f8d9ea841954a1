// Package expr defines the expression family flat operators carry:
// variables, literals, parameters, property lookups, comparisons, boolean
// connectives and aggregators. Expressions are data; evaluation belongs to
// the execution backend.
package expr

import (
	"fmt"
	"strings"
)

// Expr is any expression a flat operator may reference.
type Expr interface {
	String() string
}

// Var references a bound field by name.
type Var struct {
	Name string
}

func (v Var) String() string { return v.Name }

// Param references a query parameter supplied by the session.
type Param struct {
	Name string
}

func (p Param) String() string { return "$" + p.Name }

// Lit is a literal value.
type Lit struct {
	Value any
}

func (l Lit) String() string {
	if s, ok := l.Value.(string); ok {
		return fmt.Sprintf("'%s'", s)
	}
	if l.Value == nil {
		return "NULL"
	}
	return fmt.Sprintf("%v", l.Value)
}

// True returns the canonical true literal. The planner elides filters whose
// predicate is exactly this literal.
func True() Lit { return Lit{Value: true} }

// False returns the false literal.
func False() Lit { return Lit{Value: false} }

// IsTrueLit reports whether e is the literal boolean true.
func IsTrueLit(e Expr) bool {
	l, ok := e.(Lit)
	if !ok {
		return false
	}
	b, ok := l.Value.(bool)
	return ok && b
}

// Property accesses a property of an entity-valued expression.
type Property struct {
	Subject Expr
	Key     string
}

func (p Property) String() string { return fmt.Sprintf("%s.%s", p.Subject, p.Key) }

// ListLit is a literal list of expressions.
type ListLit struct {
	Elems []Expr
}

func (l ListLit) String() string {
	parts := make([]string, len(l.Elems))
	for i, e := range l.Elems {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// CmpOp enumerates comparison operators.
type CmpOp int

const (
	OpEQ CmpOp = iota
	OpNEQ
	OpGT
	OpLT
	OpGTE
	OpLTE
)

// String returns the operator symbol.
func (op CmpOp) String() string {
	switch op {
	case OpEQ:
		return "="
	case OpNEQ:
		return "<>"
	case OpGT:
		return ">"
	case OpLT:
		return "<"
	case OpGTE:
		return ">="
	case OpLTE:
		return "<="
	default:
		return "?"
	}
}

// Comparison compares two expressions.
type Comparison struct {
	Op    CmpOp
	Left  Expr
	Right Expr
}

func (c Comparison) String() string {
	return fmt.Sprintf("%s %s %s", c.Left, c.Op, c.Right)
}

// And is boolean conjunction.
type And struct {
	Left, Right Expr
}

func (a And) String() string { return fmt.Sprintf("(%s AND %s)", a.Left, a.Right) }

// Or is boolean disjunction.
type Or struct {
	Left, Right Expr
}

func (o Or) String() string { return fmt.Sprintf("(%s OR %s)", o.Left, o.Right) }

// Not is boolean negation.
type Not struct {
	Expr Expr
}

func (n Not) String() string { return fmt.Sprintf("NOT %s", n.Expr) }

// HasLabel tests whether a node-valued expression carries a label.
type HasLabel struct {
	Subject Expr
	Label   string
}

func (h HasLabel) String() string { return fmt.Sprintf("%s:%s", h.Subject, h.Label) }
