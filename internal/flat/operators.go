// Package flat defines the flat operator plan: the backend-agnostic operator
// tree produced by logical planning and optimization, consumed read-only by
// physical planning. Each node carries its operands and the record header its
// output conforms to.
//
// The Operator interface is deliberately open rather than sealed: Go offers
// no compiler-enforced exhaustiveness over a closed sum, so the physical
// planner keeps an explicit unsupported-operator failure path for variants it
// does not recognize.
package flat

import (
	"fmt"
	"strings"

	"github.com/matthewbaird/graphplan/internal/expr"
	"github.com/matthewbaird/graphplan/internal/record"
)

// Operator is a node of the flat plan. Immutable once constructed.
type Operator interface {
	Header() *record.Header
	String() string
}

// Direction is the traversal direction of an expansion.
type Direction int

const (
	Outgoing Direction = iota
	Incoming
	Undirected
)

// String returns the arrow spelling of the direction.
func (d Direction) String() string {
	switch d {
	case Outgoing:
		return "-->"
	case Incoming:
		return "<--"
	case Undirected:
		return "--"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// Start seeds a plan from externally supplied input records bound to a
// source graph. It has no operand.
type Start struct {
	Graph Graph
	Head  *record.Header
}

func (op *Start) Header() *record.Header { return op.Head }
func (op *Start) String() string         { return fmt.Sprintf("Start(%s)", op.Graph.GraphName()) }

// SetSourceGraph re-binds the active source graph of its input.
type SetSourceGraph struct {
	Graph Graph
	In    Operator
	Head  *record.Header
}

func (op *SetSourceGraph) Header() *record.Header { return op.Head }
func (op *SetSourceGraph) String() string {
	return fmt.Sprintf("SetSourceGraph(%s)", op.Graph.GraphName())
}

// NodeScan emits one record per node of the bound source graph matching the
// variable's node type.
type NodeScan struct {
	Node record.Field
	In   Operator
	Head *record.Header
}

func (op *NodeScan) Header() *record.Header { return op.Head }
func (op *NodeScan) String() string         { return fmt.Sprintf("NodeScan(%s)", op.Node.Name) }

// RelationshipScan emits one record per relationship of the bound source
// graph matching the variable's relationship type.
type RelationshipScan struct {
	Relationship record.Field
	In           Operator
	Head         *record.Header
}

func (op *RelationshipScan) Header() *record.Header { return op.Head }
func (op *RelationshipScan) String() string {
	return fmt.Sprintf("RelationshipScan(%s)", op.Relationship.Name)
}

// Select projects a field subset and then restricts the set of in-scope
// named graphs. The two restrictions are independent and applied in
// sequence.
type Select struct {
	Fields []record.Field
	Graphs []string
	In     Operator
	Head   *record.Header
}

func (op *Select) Header() *record.Header { return op.Head }

func (op *Select) String() string {
	names := make([]string, len(op.Fields))
	for i, f := range op.Fields {
		names[i] = f.Name
	}
	return fmt.Sprintf("Select(%s)", strings.Join(names, ", "))
}

// RemoveAliases strips alias bindings no longer needed downstream. Dependent
// lists the bindings that still have consumers.
type RemoveAliases struct {
	Dependent []record.Field
	In        Operator
	Head      *record.Header
}

func (op *RemoveAliases) Header() *record.Header { return op.Head }
func (op *RemoveAliases) String() string         { return "RemoveAliases" }

// Alias binds an expression result under a new name without changing
// cardinality.
type Alias struct {
	Expr  expr.Expr
	Alias record.Field
	In    Operator
	Head  *record.Header
}

func (op *Alias) Header() *record.Header { return op.Head }
func (op *Alias) String() string         { return fmt.Sprintf("Alias(%s AS %s)", op.Expr, op.Alias.Name) }

// Unwind expands each input record into one output record per element of a
// list-valued expression.
type Unwind struct {
	List expr.Expr
	Item record.Field
	In   Operator
	Head *record.Header
}

func (op *Unwind) Header() *record.Header { return op.Head }
func (op *Unwind) String() string         { return fmt.Sprintf("Unwind(%s AS %s)", op.List, op.Item.Name) }

// Project adds a computed expression as a new field.
type Project struct {
	Expr  expr.Expr
	Field record.Field
	In    Operator
	Head  *record.Header
}

func (op *Project) Header() *record.Header { return op.Head }
func (op *Project) String() string         { return fmt.Sprintf("Project(%s)", op.Expr) }

// Filter keeps records satisfying a predicate. A literal true predicate is
// elided entirely during physical planning.
type Filter struct {
	Predicate expr.Expr
	In        Operator
	Head      *record.Header
}

func (op *Filter) Header() *record.Header { return op.Head }
func (op *Filter) String() string         { return fmt.Sprintf("Filter(%s)", op.Predicate) }

// Distinct de-duplicates on a field subset.
type Distinct struct {
	Fields []record.Field
	In     Operator
	Head   *record.Header
}

func (op *Distinct) Header() *record.Header { return op.Head }
func (op *Distinct) String() string         { return "Distinct" }

// AggregateItem is one aggregation output: the aggregator and the field it
// is bound to.
type AggregateItem struct {
	Field record.Field
	Agg   expr.Aggregator
}

// Aggregate groups by a field subset and computes aggregations per group.
type Aggregate struct {
	Group        []record.Field
	Aggregations []AggregateItem
	In           Operator
	Head         *record.Header
}

func (op *Aggregate) Header() *record.Header { return op.Head }

func (op *Aggregate) String() string {
	aggs := make([]string, len(op.Aggregations))
	for i, a := range op.Aggregations {
		aggs[i] = fmt.Sprintf("%s AS %s", a.Agg, a.Field.Name)
	}
	return fmt.Sprintf("Aggregate(%s)", strings.Join(aggs, ", "))
}

// SortItem is one ordering key.
type SortItem struct {
	Expr       expr.Expr
	Descending bool
}

// OrderBy sorts records by the given keys.
type OrderBy struct {
	SortItems []SortItem
	In        Operator
	Head      *record.Header
}

func (op *OrderBy) Header() *record.Header { return op.Head }
func (op *OrderBy) String() string         { return "OrderBy" }

// Skip drops the first records, the count given by an expression.
type Skip struct {
	Expr expr.Expr
	In   Operator
	Head *record.Header
}

func (op *Skip) Header() *record.Header { return op.Head }
func (op *Skip) String() string         { return fmt.Sprintf("Skip(%s)", op.Expr) }

// Limit keeps at most the first records, the count given by an expression.
type Limit struct {
	Expr expr.Expr
	In   Operator
	Head *record.Header
}

func (op *Limit) Header() *record.Header { return op.Head }
func (op *Limit) String() string         { return fmt.Sprintf("Limit(%s)", op.Expr) }

// CartesianProduct combines two inputs without a join condition.
type CartesianProduct struct {
	LHS  Operator
	RHS  Operator
	Head *record.Header
}

func (op *CartesianProduct) Header() *record.Header { return op.Head }
func (op *CartesianProduct) String() string         { return "CartesianProduct" }

// ValueJoin combines two inputs on a list of comparison predicates whose
// left sides evaluate in LHS scope and right sides in RHS scope.
type ValueJoin struct {
	LHS        Operator
	RHS        Operator
	Predicates []expr.Comparison
	Head       *record.Header
}

func (op *ValueJoin) Header() *record.Header { return op.Head }

func (op *ValueJoin) String() string {
	preds := make([]string, len(op.Predicates))
	for i, p := range op.Predicates {
		preds[i] = p.String()
	}
	return fmt.Sprintf("ValueJoin(%s)", strings.Join(preds, ", "))
}

// Optional attaches matching RHS records to LHS records, preserving every
// LHS record; unmatched LHS records carry null-filled RHS fields.
type Optional struct {
	LHS  Operator
	RHS  Operator
	Head *record.Header
}

func (op *Optional) Header() *record.Header { return op.Head }
func (op *Optional) String() string         { return "Optional" }

// ExistsSubQuery tags each LHS record with a boolean recording whether at
// least one RHS record matches, without duplicating LHS records.
type ExistsSubQuery struct {
	LHS    Operator
	RHS    Operator
	Target record.Field
	Head   *record.Header
}

func (op *ExistsSubQuery) Header() *record.Header { return op.Head }
func (op *ExistsSubQuery) String() string {
	return fmt.Sprintf("ExistsSubQuery(%s)", op.Target.Name)
}

// ProjectGraph switches the active named graph context to an external graph
// or materializes a new pattern graph.
type ProjectGraph struct {
	Graph Graph
	In    Operator
	Head  *record.Header
}

func (op *ProjectGraph) Header() *record.Header { return op.Head }
func (op *ProjectGraph) String() string {
	return fmt.Sprintf("ProjectGraph(%s)", op.Graph.GraphName())
}

// Expand traverses from already-bound source nodes over a freshly scanned
// relationship to newly bound target nodes. Graph binds the relationship
// scan and must be external.
type Expand struct {
	Source       record.Field
	Relationship record.Field
	Target       record.Field
	Direction    Direction
	Graph        Graph
	SourceOp     Operator
	TargetOp     Operator
	RelHeader    *record.Header
	Head         *record.Header
}

func (op *Expand) Header() *record.Header { return op.Head }

func (op *Expand) String() string {
	return fmt.Sprintf("Expand((%s)-[%s]%s(%s))",
		op.Source.Name, op.Relationship.Name, op.Direction, op.Target.Name)
}

// ExpandInto traverses between two endpoints that are both already bound in
// the input; only the connecting relationship is newly scanned. Graph binds
// the relationship scan and must be external.
type ExpandInto struct {
	Source       record.Field
	Relationship record.Field
	Target       record.Field
	Direction    Direction
	Graph        Graph
	In           Operator
	RelHeader    *record.Header
	Head         *record.Header
}

func (op *ExpandInto) Header() *record.Header { return op.Head }

func (op *ExpandInto) String() string {
	return fmt.Sprintf("ExpandInto((%s)-[%s]%s(%s))",
		op.Source.Name, op.Relationship.Name, op.Direction, op.Target.Name)
}

// BoundedVarExpand enumerates paths between an inclusive lower and upper hop
// bound: an endpoint seed, a relationship-path accumulator and a target scan,
// composed by the backend. ExpandIntoMode distinguishes a pre-bound target
// from an unbound one.
type BoundedVarExpand struct {
	Source         record.Field
	EdgeList       record.Field
	Target         record.Field
	Direction      Direction
	Lower          int
	Upper          int
	SourceOp       Operator
	RelationshipOp Operator
	TargetOp       Operator
	ExpandIntoMode bool
	Head           *record.Header
}

func (op *BoundedVarExpand) Header() *record.Header { return op.Head }

func (op *BoundedVarExpand) String() string {
	return fmt.Sprintf("BoundedVarExpand((%s)-[%s*%d..%d]%s(%s))",
		op.Source.Name, op.EdgeList.Name, op.Lower, op.Upper, op.Direction, op.Target.Name)
}
