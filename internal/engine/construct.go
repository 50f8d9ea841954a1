package engine

import (
	"fmt"

	"github.com/matthewbaird/graphplan/internal/flat"
	"github.com/matthewbaird/graphplan/internal/record"
)

// materializePatternGraph builds a new graph from construction clauses, one
// pass over the input records, and binds it as the active graph. The input
// table passes through unchanged. Entities cloned from a bound base are
// de-duplicated on the base entity, so a node appearing in many records is
// copied once.
func materializePatternGraph(st *state, graph flat.PatternGraph) (*state, error) {
	ng := NewGraph(graph.Name)
	copies := make(map[int64]*Node)
	head := st.table.Header()

	for _, row := range st.table.Rows() {
		bound := make(map[string]*Node)

		for _, clause := range graph.Clauses {
			switch c := clause.(type) {
			case flat.ConstructNode:
				if err := checkLabels(graph.Schema, c.Labels); err != nil {
					return nil, err
				}
				var n *Node
				if c.Base != nil {
					i := head.IndexOf(c.Base.Name)
					if i < 0 {
						return nil, fmt.Errorf("construct base '%s' not bound in %s", c.Base.Name, head)
					}
					base, ok := row[i].(*Node)
					if !ok {
						return nil, nonNodeBinding(*c.Base, row[i])
					}
					n = cloneNode(ng, copies, base, c.Labels)
				} else {
					n = ng.AddNode(c.Labels, make(map[string]Value))
				}
				bound[c.Var.Name] = n

			case flat.ConstructRelationship:
				if err := checkRelType(graph.Schema, c.RelType); err != nil {
					return nil, err
				}
				src, err := resolveConstructed(ng, copies, bound, row, head, c.Source.Name)
				if err != nil {
					return nil, err
				}
				tgt, err := resolveConstructed(ng, copies, bound, row, head, c.Target.Name)
				if err != nil {
					return nil, err
				}
				ng.AddRelationship(c.RelType, src, tgt, make(map[string]Value))

			default:
				return nil, fmt.Errorf("unsupported construct clause %s (%T)", clause, clause)
			}
		}
	}

	graphs := copyGraphs(st.graphs)
	graphs[graph.Name] = ng
	return &state{table: st.table, graphs: graphs, ambient: ng}, nil
}

// resolveConstructed finds the node a construct clause endpoint refers to:
// a node constructed earlier for this record, or a bound node copied into
// the new graph on first use.
func resolveConstructed(ng *Graph, copies map[int64]*Node, bound map[string]*Node, row []Value, head *record.Header, name string) (*Node, error) {
	if n, ok := bound[name]; ok {
		return n, nil
	}
	i := head.IndexOf(name)
	if i < 0 {
		return nil, fmt.Errorf("construct endpoint '%s' is not bound", name)
	}
	base, ok := row[i].(*Node)
	if !ok {
		return nil, fmt.Errorf("construct endpoint '%s' bound to non-node value %s", name, FormatValue(row[i]))
	}
	return cloneNode(ng, copies, base, nil), nil
}

func cloneNode(ng *Graph, copies map[int64]*Node, base *Node, extraLabels []string) *Node {
	if n, ok := copies[base.ID]; ok {
		return n
	}
	labels := append(append([]string(nil), base.Labels...), extraLabels...)
	props := make(map[string]Value, len(base.Props))
	for k, v := range base.Props {
		props[k] = v
	}
	n := ng.AddNode(labels, props)
	copies[base.ID] = n
	return n
}

// checkLabels enforces the pattern graph's target schema when it declares
// labels.
func checkLabels(schema flat.GraphSchema, labels []string) error {
	if len(schema.Labels) == 0 {
		return nil
	}
	for _, l := range labels {
		if !containsString(schema.Labels, l) {
			return fmt.Errorf("label '%s' not declared by the target schema", l)
		}
	}
	return nil
}

func checkRelType(schema flat.GraphSchema, relType string) error {
	if len(schema.RelTypes) == 0 {
		return nil
	}
	if !containsString(schema.RelTypes, relType) {
		return fmt.Errorf("relationship type '%s' not declared by the target schema", relType)
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
