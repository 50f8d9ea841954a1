package engine

import (
	"fmt"

	"github.com/matthewbaird/graphplan/internal/flat"
	"github.com/matthewbaird/graphplan/internal/record"
)

// PlanExpandSource composes source-scan ⋈ relationship-scan ⋈ target-scan
// into a single traversal from bound source nodes to newly bound targets.
// With removeSelfRelationships set, rows whose relationship connects a node
// to itself are discarded; the planner requests this on the reverse leg of
// an undirected expansion so a self-loop contributes a single row to the
// union of the two legs.
func (e *Engine) PlanExpandSource(sources, relationships, targets *Operator,
	source, relationship, target record.Field,
	direction flat.Direction, removeSelfRelationships bool,
	header *record.Header) (*Operator, error) {

	detail := fmt.Sprintf("(%s)-[%s]%s(%s)", source.Name, relationship.Name, direction, target.Name)
	if removeSelfRelationships {
		detail += " suppress self-relationships"
	}
	return newOp("ExpandSource", detail, header, func(r *run, inputs []*state) (*state, error) {
		src, rels, tgts := inputs[0], inputs[1], inputs[2]

		srcIdx, err := requireField(src.table.Header(), source)
		if err != nil {
			return nil, err
		}
		relIdx, err := requireField(rels.table.Header(), relationship)
		if err != nil {
			return nil, err
		}
		tgtIdx, err := requireField(tgts.table.Header(), target)
		if err != nil {
			return nil, err
		}

		concat, err := src.table.Header().Concat(rels.table.Header())
		if err != nil {
			return nil, err
		}
		concat, err = concat.Concat(tgts.table.Header())
		if err != nil {
			return nil, err
		}

		out := NewTable(header)
		for _, srow := range src.table.Rows() {
			srcNode, ok := srow[srcIdx].(*Node)
			if !ok {
				return nil, nonNodeBinding(source, srow[srcIdx])
			}
			for _, rrow := range rels.table.Rows() {
				rel, ok := rrow[relIdx].(*Relationship)
				if !ok {
					return nil, nonRelationshipBinding(relationship, rrow[relIdx])
				}
				if removeSelfRelationships && rel.IsLoop() {
					continue
				}
				from, to := endpoints(rel, direction)
				if from != srcNode.ID {
					continue
				}
				for _, trow := range tgts.table.Rows() {
					tgtNode, ok := trow[tgtIdx].(*Node)
					if !ok {
						return nil, nonNodeBinding(target, trow[tgtIdx])
					}
					if tgtNode.ID != to {
						continue
					}
					row := append(append(append([]Value(nil), srow...), rrow...), trow...)
					conformed, err := conform(row, concat, header)
					if err != nil {
						return nil, err
					}
					if err := out.Append(conformed); err != nil {
						return nil, err
					}
				}
			}
		}
		return mergeScopes(mergeScopes(src, rels, out), tgts, out), nil
	}, sources, relationships, targets), nil
}

// PlanExpandInto joins a freshly scanned relationship against two endpoints
// that are both already bound in the input. No self-relationship suppression
// applies: pre-bound endpoints carry no duplication risk, so an undirected
// pattern over a self-loop legitimately matches once per direction.
func (e *Engine) PlanExpandInto(in, relationships *Operator,
	source, relationship, target record.Field,
	direction flat.Direction, header *record.Header) (*Operator, error) {

	detail := fmt.Sprintf("(%s)-[%s]%s(%s)", source.Name, relationship.Name, direction, target.Name)
	return newOp("ExpandInto", detail, header, func(r *run, inputs []*state) (*state, error) {
		st, rels := inputs[0], inputs[1]

		srcIdx, err := requireField(st.table.Header(), source)
		if err != nil {
			return nil, err
		}
		tgtIdx, err := requireField(st.table.Header(), target)
		if err != nil {
			return nil, err
		}
		relIdx, err := requireField(rels.table.Header(), relationship)
		if err != nil {
			return nil, err
		}

		concat, err := st.table.Header().Concat(rels.table.Header())
		if err != nil {
			return nil, err
		}

		out := NewTable(header)
		for _, row := range st.table.Rows() {
			srcNode, ok := row[srcIdx].(*Node)
			if !ok {
				return nil, nonNodeBinding(source, row[srcIdx])
			}
			tgtNode, ok := row[tgtIdx].(*Node)
			if !ok {
				return nil, nonNodeBinding(target, row[tgtIdx])
			}
			for _, rrow := range rels.table.Rows() {
				rel, ok := rrow[relIdx].(*Relationship)
				if !ok {
					return nil, nonRelationshipBinding(relationship, rrow[relIdx])
				}
				from, to := endpoints(rel, direction)
				if from != srcNode.ID || to != tgtNode.ID {
					continue
				}
				combined := append(append([]Value(nil), row...), rrow...)
				conformed, err := conform(combined, concat, header)
				if err != nil {
					return nil, err
				}
				if err := out.Append(conformed); err != nil {
					return nil, err
				}
			}
		}
		return mergeScopes(st, rels, out), nil
	}, in, relationships), nil
}

// PlanBoundedVarExpand enumerates relationship paths whose hop count lies in
// the inclusive [lower, upper] range, extending from each bound source node
// over the accumulated relationship set. Relationships are unique within a
// path. In expand-into mode the target is read from the source records;
// otherwise path ends join against the target scan.
func (e *Engine) PlanBoundedVarExpand(sources, relationships, targets *Operator,
	source, edgeList, target record.Field,
	direction flat.Direction, lower, upper int, expandInto bool,
	header *record.Header) (*Operator, error) {

	detail := fmt.Sprintf("(%s)-[%s*%d..%d]%s(%s)", source.Name, edgeList.Name, lower, upper, direction, target.Name)
	if expandInto {
		detail += " into"
	}
	return newOp("BoundedVarExpand", detail, header, func(r *run, inputs []*state) (*state, error) {
		src, rels, tgts := inputs[0], inputs[1], inputs[2]

		srcIdx, err := requireField(src.table.Header(), source)
		if err != nil {
			return nil, err
		}
		candidates, err := relationshipValues(rels.table)
		if err != nil {
			return nil, err
		}

		var concat *record.Header
		if expandInto {
			concat, err = src.table.Header().Append(edgeList)
		} else {
			concat, err = src.table.Header().Append(edgeList)
			if err == nil {
				concat, err = concat.Concat(tgts.table.Header())
			}
		}
		if err != nil {
			return nil, err
		}

		tgtIdx := -1
		if expandInto {
			tgtIdx, err = requireField(src.table.Header(), target)
			if err != nil {
				return nil, err
			}
		} else {
			tgtIdx, err = requireField(tgts.table.Header(), target)
			if err != nil {
				return nil, err
			}
		}

		out := NewTable(header)
		emit := func(srow []Value, end int64, edges []*Relationship) error {
			list := make([]Value, len(edges))
			for i, rel := range edges {
				list[i] = rel
			}
			if expandInto {
				bound, ok := srow[tgtIdx].(*Node)
				if !ok {
					return nonNodeBinding(target, srow[tgtIdx])
				}
				if bound.ID != end {
					return nil
				}
				row := append(append([]Value(nil), srow...), Value(list))
				conformed, err := conform(row, concat, header)
				if err != nil {
					return err
				}
				return out.Append(conformed)
			}
			for _, trow := range tgts.table.Rows() {
				tgtNode, ok := trow[tgtIdx].(*Node)
				if !ok {
					return nonNodeBinding(target, trow[tgtIdx])
				}
				if tgtNode.ID != end {
					continue
				}
				row := append(append(append([]Value(nil), srow...), Value(list)), trow...)
				conformed, err := conform(row, concat, header)
				if err != nil {
					return err
				}
				if err := out.Append(conformed); err != nil {
					return err
				}
			}
			return nil
		}

		for _, srow := range src.table.Rows() {
			srcNode, ok := srow[srcIdx].(*Node)
			if !ok {
				return nil, nonNodeBinding(source, srow[srcIdx])
			}
			if err := expandPaths(srcNode.ID, candidates, direction, lower, upper, func(end int64, edges []*Relationship) error {
				return emit(srow, end, edges)
			}); err != nil {
				return nil, err
			}
		}
		return mergeScopes(mergeScopes(src, rels, out), tgts, out), nil
	}, sources, relationships, targets), nil
}

// path is one partial traversal during bounded expansion.
type path struct {
	end   int64
	edges []*Relationship
}

func (p path) uses(rel *Relationship) bool {
	for _, e := range p.edges {
		if e.ID == rel.ID {
			return true
		}
	}
	return false
}

// expandPaths enumerates relationship-unique paths of length lower..upper
// from start, invoking emit for each.
func expandPaths(start int64, candidates []*Relationship, direction flat.Direction, lower, upper int, emit func(end int64, edges []*Relationship) error) error {
	frontier := []path{{end: start}}
	if lower == 0 {
		if err := emit(start, nil); err != nil {
			return err
		}
	}
	for hop := 1; hop <= upper; hop++ {
		var next []path
		for _, p := range frontier {
			for _, rel := range candidates {
				if p.uses(rel) {
					continue
				}
				for _, end := range extensions(rel, p.end, direction) {
					np := path{end: end, edges: append(append([]*Relationship(nil), p.edges...), rel)}
					if hop >= lower {
						if err := emit(np.end, np.edges); err != nil {
							return err
						}
					}
					next = append(next, np)
				}
			}
		}
		frontier = next
	}
	return nil
}

// extensions lists the nodes a relationship can extend a path ending at
// from to, honoring direction. An undirected self-loop extends once, not
// twice.
func extensions(rel *Relationship, from int64, direction flat.Direction) []int64 {
	switch direction {
	case flat.Outgoing:
		if rel.StartID == from {
			return []int64{rel.EndID}
		}
	case flat.Incoming:
		if rel.EndID == from {
			return []int64{rel.StartID}
		}
	case flat.Undirected:
		if rel.IsLoop() {
			if rel.StartID == from {
				return []int64{from}
			}
			return nil
		}
		if rel.StartID == from {
			return []int64{rel.EndID}
		}
		if rel.EndID == from {
			return []int64{rel.StartID}
		}
	}
	return nil
}

// endpoints resolves the (from, to) node IDs of a relationship under a
// fixed traversal direction.
func endpoints(rel *Relationship, direction flat.Direction) (int64, int64) {
	if direction == flat.Incoming {
		return rel.EndID, rel.StartID
	}
	return rel.StartID, rel.EndID
}

// relationshipValues extracts the relationship column of a scan table.
func relationshipValues(t *Table) ([]*Relationship, error) {
	idx := -1
	for i, f := range t.Header().Fields() {
		if f.Type.Kind == record.KindRelationship {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("no relationship field in %s", t.Header())
	}
	rels := make([]*Relationship, 0, t.Len())
	for _, row := range t.Rows() {
		rel, ok := row[idx].(*Relationship)
		if !ok {
			return nil, fmt.Errorf("non-relationship value %s in relationship column", FormatValue(row[idx]))
		}
		rels = append(rels, rel)
	}
	return rels, nil
}

func requireField(head *record.Header, f record.Field) (int, error) {
	i := head.IndexOf(f.Name)
	if i < 0 {
		return -1, fmt.Errorf("field '%s' not bound in %s", f.Name, head)
	}
	return i, nil
}

func nonNodeBinding(f record.Field, v Value) error {
	return fmt.Errorf("field '%s' bound to non-node value %s", f.Name, FormatValue(v))
}

func nonRelationshipBinding(f record.Field, v Value) error {
	return fmt.Errorf("field '%s' bound to non-relationship value %s", f.Name, FormatValue(v))
}
