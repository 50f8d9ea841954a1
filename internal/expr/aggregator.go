package expr

import "fmt"

// Aggregator is an expression computed per group by an aggregation operator.
type Aggregator interface {
	Expr
	aggregator()
}

// Count counts rows, or non-null values of Inner when set.
type Count struct {
	Inner    Expr // nil = count(*)
	Distinct bool
}

func (c Count) aggregator() {}

func (c Count) String() string {
	inner := "*"
	if c.Inner != nil {
		inner = c.Inner.String()
	}
	if c.Distinct {
		return fmt.Sprintf("count(DISTINCT %s)", inner)
	}
	return fmt.Sprintf("count(%s)", inner)
}

// Sum sums numeric values.
type Sum struct {
	Inner Expr
}

func (s Sum) aggregator()    {}
func (s Sum) String() string { return fmt.Sprintf("sum(%s)", s.Inner) }

// Min takes the minimum value.
type Min struct {
	Inner Expr
}

func (m Min) aggregator()    {}
func (m Min) String() string { return fmt.Sprintf("min(%s)", m.Inner) }

// Max takes the maximum value.
type Max struct {
	Inner Expr
}

func (m Max) aggregator()    {}
func (m Max) String() string { return fmt.Sprintf("max(%s)", m.Inner) }

// Avg averages numeric values.
type Avg struct {
	Inner Expr
}

func (a Avg) aggregator()    {}
func (a Avg) String() string { return fmt.Sprintf("avg(%s)", a.Inner) }

// Collect gathers values into a list.
type Collect struct {
	Inner    Expr
	Distinct bool
}

func (c Collect) aggregator() {}

func (c Collect) String() string {
	if c.Distinct {
		return fmt.Sprintf("collect(DISTINCT %s)", c.Inner)
	}
	return fmt.Sprintf("collect(%s)", c.Inner)
}
