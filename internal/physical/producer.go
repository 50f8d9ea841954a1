// Package physical lowers flat operator plans into backend-native physical
// operator trees through the Producer contract. The planner is a pure
// combinator over that contract: it never inspects a physical operator
// beyond its record header, which is what keeps it backend-portable.
package physical

import (
	"github.com/matthewbaird/graphplan/internal/expr"
	"github.com/matthewbaird/graphplan/internal/flat"
	"github.com/matthewbaird/graphplan/internal/record"
)

// Operator is the planner's view of a backend physical operator: opaque
// except for its record header.
type Operator interface {
	Header() *record.Header
}

// Producer is the backend contract: one factory method per physical operator
// kind, generic over the backend's operator type O and its records-table
// type R. Graph arguments stay at the logical level (flat.ExternalGraph) so
// backends resolve them against their own catalog.
//
// Every method must preserve the record header contract: the returned
// operator's output conforms to the header supplied by the corresponding
// flat node. A new execution backend is added by implementing this
// interface, with zero changes to the planner.
type Producer[O Operator, R any] interface {
	// Sources.
	PlanStart(graph flat.ExternalGraph, records R, header *record.Header) (O, error)
	PlanStartFromUnit(graph flat.ExternalGraph, header *record.Header) (O, error)
	PlanEmptyRecords(header *record.Header) (O, error)
	PlanSetSourceGraph(in O, graph flat.ExternalGraph, header *record.Header) (O, error)

	// Scans.
	PlanNodeScan(in O, node record.Field, header *record.Header) (O, error)
	PlanRelationshipScan(in O, relationship record.Field, header *record.Header) (O, error)

	// Field and graph selection.
	PlanSelectFields(in O, fields []record.Field, header *record.Header) (O, error)
	PlanSelectGraphs(in O, graphs []string) (O, error)
	PlanRemoveAliases(in O, dependent []record.Field, header *record.Header) (O, error)

	// Row-wise operators.
	PlanAlias(in O, e expr.Expr, alias record.Field, header *record.Header) (O, error)
	PlanUnwind(in O, list expr.Expr, item record.Field, header *record.Header) (O, error)
	PlanProject(in O, e expr.Expr, field record.Field, header *record.Header) (O, error)
	PlanFilter(in O, predicate expr.Expr, header *record.Header) (O, error)

	// Grouping and ordering.
	PlanDistinct(in O, fields []record.Field) (O, error)
	PlanAggregate(in O, group []record.Field, aggregations []flat.AggregateItem, header *record.Header) (O, error)
	PlanOrderBy(in O, sortItems []flat.SortItem, header *record.Header) (O, error)
	PlanSkip(in O, e expr.Expr, header *record.Header) (O, error)
	PlanLimit(in O, e expr.Expr, header *record.Header) (O, error)

	// Joins.
	PlanCartesianProduct(lhs, rhs O, header *record.Header) (O, error)
	PlanValueJoin(lhs, rhs O, predicates []expr.Comparison, header *record.Header) (O, error)
	PlanOptional(lhs, rhs O, header *record.Header) (O, error)
	PlanExistsSubQuery(lhs, rhs O, target record.Field, header *record.Header) (O, error)
	PlanUnion(lhs, rhs O) (O, error)

	// Graph projection.
	PlanProjectExternalGraph(in O, graph flat.ExternalGraph) (O, error)
	PlanProjectPatternGraph(in O, graph flat.PatternGraph) (O, error)

	// Expansion. removeSelfRelationships discards rows whose relationship
	// would reconnect an entity to itself a second time; the planner sets it
	// on the reverse leg of an undirected expand only.
	PlanExpandSource(sources, relationships, targets O,
		source, relationship, target record.Field,
		direction flat.Direction, removeSelfRelationships bool,
		header *record.Header) (O, error)
	PlanExpandInto(in, relationships O,
		source, relationship, target record.Field,
		direction flat.Direction, header *record.Header) (O, error)
	PlanBoundedVarExpand(sources, relationships, targets O,
		source, edgeList, target record.Field,
		direction flat.Direction, lower, upper int, expandInto bool,
		header *record.Header) (O, error)
}
