package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/matthewbaird/graphplan/internal/expr"
	"github.com/matthewbaird/graphplan/internal/flat"
	"github.com/matthewbaird/graphplan/internal/record"
)

// patternBuilder constructs a flat plan for a demo pattern against a graph.
type patternBuilder func(graph flat.ExternalGraph) flat.Operator

// patterns are the built-in demo patterns, keyed by name.
var patterns = map[string]struct {
	describe string
	build    patternBuilder
}{
	"nodes": {
		describe: "MATCH (n) RETURN n",
		build:    buildNodes,
	},
	"expand": {
		describe: "MATCH (a)-[r]->(b) RETURN a, r, b",
		build: func(g flat.ExternalGraph) flat.Operator {
			return buildExpand(g, flat.Outgoing)
		},
	},
	"undirected": {
		describe: "MATCH (a)-[r]-(b) RETURN a, r, b",
		build: func(g flat.ExternalGraph) flat.Operator {
			return buildExpand(g, flat.Undirected)
		},
	},
	"paths": {
		describe: "MATCH (a)-[rs*1..3]->(b) RETURN a, rs, b",
		build:    buildPaths,
	},
	"degrees": {
		describe: "MATCH (a)-[r]->(b) RETURN a, count(r) ORDER BY count DESC",
		build:    buildDegrees,
	},
}

func patternNames() []string {
	names := make([]string, 0, len(patterns))
	for name := range patterns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func buildPattern(name string, graph flat.ExternalGraph) (flat.Operator, error) {
	p, ok := patterns[name]
	if !ok {
		return nil, fmt.Errorf("unknown pattern '%s' (available: %s)", name, strings.Join(patternNames(), ", "))
	}
	return p.build(graph), nil
}

func nodeField(name string) record.Field {
	return record.Field{Name: name, Type: record.NodeType()}
}

func relField(name string) record.Field {
	return record.Field{Name: name, Type: record.RelationshipType()}
}

func nodeScan(graph flat.ExternalGraph, f record.Field) flat.Operator {
	return &flat.NodeScan{
		Node: f,
		In:   &flat.Start{Graph: graph, Head: record.Empty()},
		Head: record.MustHeader(f),
	}
}

func buildNodes(graph flat.ExternalGraph) flat.Operator {
	return nodeScan(graph, nodeField("n"))
}

func expandOp(graph flat.ExternalGraph, direction flat.Direction) *flat.Expand {
	a, r, b := nodeField("a"), relField("r"), nodeField("b")
	return &flat.Expand{
		Source:       a,
		Relationship: r,
		Target:       b,
		Direction:    direction,
		Graph:        graph,
		SourceOp:     nodeScan(graph, a),
		TargetOp:     nodeScan(graph, b),
		RelHeader:    record.MustHeader(r),
		Head:         record.MustHeader(a, r, b),
	}
}

func buildExpand(graph flat.ExternalGraph, direction flat.Direction) flat.Operator {
	return expandOp(graph, direction)
}

func buildPaths(graph flat.ExternalGraph) flat.Operator {
	a, b := nodeField("a"), nodeField("b")
	rs := record.Field{Name: "rs", Type: record.ListOf(record.RelationshipType())}
	return &flat.BoundedVarExpand{
		Source:         a,
		EdgeList:       rs,
		Target:         b,
		Direction:      flat.Outgoing,
		Lower:          1,
		Upper:          3,
		SourceOp:       nodeScan(graph, a),
		RelationshipOp: relScan(graph, relField("r")),
		TargetOp:       nodeScan(graph, b),
		Head:           record.MustHeader(a, rs, b),
	}
}

func relScan(graph flat.ExternalGraph, f record.Field) flat.Operator {
	return &flat.RelationshipScan{
		Relationship: f,
		In:           &flat.Start{Graph: graph, Head: record.Empty()},
		Head:         record.MustHeader(f),
	}
}

func buildDegrees(graph flat.ExternalGraph) flat.Operator {
	a := nodeField("a")
	count := record.Field{Name: "degree", Type: record.Integer()}
	aggregate := &flat.Aggregate{
		Group: []record.Field{a},
		Aggregations: []flat.AggregateItem{
			{Field: count, Agg: expr.Count{Inner: expr.Var{Name: "r"}}},
		},
		In:   expandOp(graph, flat.Outgoing),
		Head: record.MustHeader(a, count),
	}
	return &flat.OrderBy{
		SortItems: []flat.SortItem{{Expr: expr.Var{Name: "degree"}, Descending: true}},
		In:        aggregate,
		Head:      record.MustHeader(a, count),
	}
}
