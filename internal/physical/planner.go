package physical

import (
	"fmt"

	"github.com/matthewbaird/graphplan/internal/expr"
	"github.com/matthewbaird/graphplan/internal/flat"
	"github.com/matthewbaird/graphplan/internal/record"
)

// Planner translates flat operator plans into physical operator trees by
// walking the plan bottom-up and issuing Producer calls. Planning is
// single-threaded, synchronous and deterministic: identical input yields a
// structurally identical physical plan. Recursion depth follows the flat
// tree; goroutine stacks grow on demand, so no explicit work stack is
// needed.
type Planner[O Operator, R any] struct {
	producer Producer[O, R]
}

// New creates a planner over the given producer.
func New[O Operator, R any](producer Producer[O, R]) *Planner[O, R] {
	return &Planner[O, R]{producer: producer}
}

// Process converts a flat plan into the root physical operator, creating
// exactly one physical operator chain per flat node. Identical sub-plans are
// not deduplicated; repeated planning of the same sub-tree replans it.
func (p *Planner[O, R]) Process(op flat.Operator, ctx *Context[R]) (O, error) {
	var zero O

	switch op := op.(type) {
	case *flat.Start:
		g, ok := op.Graph.(flat.ExternalGraph)
		if !ok {
			return zero, externalGraphRequired(op, op.Graph)
		}
		return p.producer.PlanStart(g, ctx.InputRecords, op.Head)

	case *flat.SetSourceGraph:
		g, ok := op.Graph.(flat.ExternalGraph)
		if !ok {
			return zero, externalGraphRequired(op, op.Graph)
		}
		in, err := p.Process(op.In, ctx)
		if err != nil {
			return zero, err
		}
		return p.producer.PlanSetSourceGraph(in, g, op.Head)

	case *flat.NodeScan:
		in, err := p.Process(op.In, ctx)
		if err != nil {
			return zero, err
		}
		return p.producer.PlanNodeScan(in, op.Node, op.Head)

	case *flat.RelationshipScan:
		in, err := p.Process(op.In, ctx)
		if err != nil {
			return zero, err
		}
		return p.producer.PlanRelationshipScan(in, op.Relationship, op.Head)

	case *flat.Select:
		// Field projection and graph restriction are independent
		// operations applied in sequence.
		in, err := p.Process(op.In, ctx)
		if err != nil {
			return zero, err
		}
		selected, err := p.producer.PlanSelectFields(in, op.Fields, op.Head)
		if err != nil {
			return zero, err
		}
		return p.producer.PlanSelectGraphs(selected, op.Graphs)

	case *flat.RemoveAliases:
		in, err := p.Process(op.In, ctx)
		if err != nil {
			return zero, err
		}
		return p.producer.PlanRemoveAliases(in, op.Dependent, op.Head)

	case *flat.Alias:
		in, err := p.Process(op.In, ctx)
		if err != nil {
			return zero, err
		}
		return p.producer.PlanAlias(in, op.Expr, op.Alias, op.Head)

	case *flat.Unwind:
		in, err := p.Process(op.In, ctx)
		if err != nil {
			return zero, err
		}
		return p.producer.PlanUnwind(in, op.List, op.Item, op.Head)

	case *flat.Project:
		in, err := p.Process(op.In, ctx)
		if err != nil {
			return zero, err
		}
		return p.producer.PlanProject(in, op.Expr, op.Field, op.Head)

	case *flat.Filter:
		// A literal true predicate is a pure bypass: no physical
		// operator is emitted and the input plan is returned as-is.
		if expr.IsTrueLit(op.Predicate) {
			return p.Process(op.In, ctx)
		}
		in, err := p.Process(op.In, ctx)
		if err != nil {
			return zero, err
		}
		return p.producer.PlanFilter(in, op.Predicate, op.Head)

	case *flat.Distinct:
		in, err := p.Process(op.In, ctx)
		if err != nil {
			return zero, err
		}
		return p.producer.PlanDistinct(in, op.Fields)

	case *flat.Aggregate:
		in, err := p.Process(op.In, ctx)
		if err != nil {
			return zero, err
		}
		return p.producer.PlanAggregate(in, op.Group, op.Aggregations, op.Head)

	case *flat.OrderBy:
		in, err := p.Process(op.In, ctx)
		if err != nil {
			return zero, err
		}
		return p.producer.PlanOrderBy(in, op.SortItems, op.Head)

	case *flat.Skip:
		in, err := p.Process(op.In, ctx)
		if err != nil {
			return zero, err
		}
		return p.producer.PlanSkip(in, op.Expr, op.Head)

	case *flat.Limit:
		in, err := p.Process(op.In, ctx)
		if err != nil {
			return zero, err
		}
		return p.producer.PlanLimit(in, op.Expr, op.Head)

	case *flat.CartesianProduct:
		lhs, rhs, err := p.processBoth(op.LHS, op.RHS, ctx)
		if err != nil {
			return zero, err
		}
		return p.producer.PlanCartesianProduct(lhs, rhs, op.Head)

	case *flat.ValueJoin:
		lhs, rhs, err := p.processBoth(op.LHS, op.RHS, ctx)
		if err != nil {
			return zero, err
		}
		return p.producer.PlanValueJoin(lhs, rhs, op.Predicates, op.Head)

	case *flat.Optional:
		lhs, rhs, err := p.processBoth(op.LHS, op.RHS, ctx)
		if err != nil {
			return zero, err
		}
		return p.producer.PlanOptional(lhs, rhs, op.Head)

	case *flat.ExistsSubQuery:
		lhs, rhs, err := p.processBoth(op.LHS, op.RHS, ctx)
		if err != nil {
			return zero, err
		}
		return p.producer.PlanExistsSubQuery(lhs, rhs, op.Target, op.Head)

	case *flat.ProjectGraph:
		in, err := p.Process(op.In, ctx)
		if err != nil {
			return zero, err
		}
		switch g := op.Graph.(type) {
		case flat.ExternalGraph:
			return p.producer.PlanProjectExternalGraph(in, g)
		case flat.PatternGraph:
			return p.producer.PlanProjectPatternGraph(in, g)
		default:
			return zero, fmt.Errorf("unrecognized graph reference %T at %s", op.Graph, op)
		}

	case *flat.Expand:
		return p.planExpand(op, ctx)

	case *flat.ExpandInto:
		return p.planExpandInto(op, ctx)

	case *flat.BoundedVarExpand:
		sources, err := p.Process(op.SourceOp, ctx)
		if err != nil {
			return zero, err
		}
		relationships, err := p.Process(op.RelationshipOp, ctx)
		if err != nil {
			return zero, err
		}
		targets, err := p.Process(op.TargetOp, ctx)
		if err != nil {
			return zero, err
		}
		return p.producer.PlanBoundedVarExpand(sources, relationships, targets,
			op.Source, op.EdgeList, op.Target,
			op.Direction, op.Lower, op.Upper, op.ExpandIntoMode, op.Head)

	default:
		return zero, unsupportedOperator(op)
	}
}

// planExpand lowers a fixed-hop expansion: compose the already-planned
// source scan with a fresh relationship scan, seeded from an empty start
// bound to the relationship's graph, and the target scan. An undirected
// expansion is the union of the two directed legs, with self-relationships
// suppressed on the reverse leg so a self-loop contributes a single row.
func (p *Planner[O, R]) planExpand(op *flat.Expand, ctx *Context[R]) (O, error) {
	var zero O

	g, ok := op.Graph.(flat.ExternalGraph)
	if !ok {
		return zero, externalGraphRequired(op, op.Graph)
	}

	sources, err := p.Process(op.SourceOp, ctx)
	if err != nil {
		return zero, err
	}
	targets, err := p.Process(op.TargetOp, ctx)
	if err != nil {
		return zero, err
	}
	relationships, err := p.planRelationships(g, op.Relationship, op.RelHeader)
	if err != nil {
		return zero, err
	}

	if op.Direction != flat.Undirected {
		return p.producer.PlanExpandSource(sources, relationships, targets,
			op.Source, op.Relationship, op.Target, op.Direction, false, op.Head)
	}

	forward, err := p.producer.PlanExpandSource(sources, relationships, targets,
		op.Source, op.Relationship, op.Target, flat.Outgoing, false, op.Head)
	if err != nil {
		return zero, err
	}
	reverse, err := p.producer.PlanExpandSource(sources, relationships, targets,
		op.Source, op.Relationship, op.Target, flat.Incoming, true, op.Head)
	if err != nil {
		return zero, err
	}
	return p.producer.PlanUnion(forward, reverse)
}

// planExpandInto lowers an expansion whose endpoints are both bound: only
// the connecting relationship is scanned and joined against the existing
// endpoints. The undirected form is the union of both directions with no
// self-relationship suppression, since pre-bound endpoints carry no
// duplication risk.
func (p *Planner[O, R]) planExpandInto(op *flat.ExpandInto, ctx *Context[R]) (O, error) {
	var zero O

	g, ok := op.Graph.(flat.ExternalGraph)
	if !ok {
		return zero, externalGraphRequired(op, op.Graph)
	}

	in, err := p.Process(op.In, ctx)
	if err != nil {
		return zero, err
	}
	relationships, err := p.planRelationships(g, op.Relationship, op.RelHeader)
	if err != nil {
		return zero, err
	}

	if op.Direction != flat.Undirected {
		return p.producer.PlanExpandInto(in, relationships,
			op.Source, op.Relationship, op.Target, op.Direction, op.Head)
	}

	forward, err := p.producer.PlanExpandInto(in, relationships,
		op.Source, op.Relationship, op.Target, flat.Outgoing, op.Head)
	if err != nil {
		return zero, err
	}
	reverse, err := p.producer.PlanExpandInto(in, relationships,
		op.Source, op.Relationship, op.Target, flat.Incoming, op.Head)
	if err != nil {
		return zero, err
	}
	return p.producer.PlanUnion(forward, reverse)
}

// planRelationships scans the relationships of g from an empty seed.
func (p *Planner[O, R]) planRelationships(g flat.ExternalGraph, relationship record.Field, header *record.Header) (O, error) {
	var zero O
	seed, err := p.producer.PlanStartFromUnit(g, record.Empty())
	if err != nil {
		return zero, err
	}
	return p.producer.PlanRelationshipScan(seed, relationship, header)
}

func (p *Planner[O, R]) processBoth(lhsOp, rhsOp flat.Operator, ctx *Context[R]) (O, O, error) {
	var zero O
	lhs, err := p.Process(lhsOp, ctx)
	if err != nil {
		return zero, zero, err
	}
	rhs, err := p.Process(rhsOp, ctx)
	if err != nil {
		return zero, zero, err
	}
	return lhs, rhs, nil
}
