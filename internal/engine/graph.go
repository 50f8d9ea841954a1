// Package engine is the reference execution backend: an in-memory tabular
// engine implementing the physical.Producer contract over property graphs.
// It exists so plans can be executed and the planning rules observed
// end-to-end; production backends implement the same contract against their
// own storage.
package engine

import "sort"

// Value is a runtime value: nil, bool, int64, float64, string, []Value,
// *Node or *Relationship.
type Value = any

// Node is a labelled property-graph node.
type Node struct {
	ID     int64
	Labels []string
	Props  map[string]Value
}

// HasLabel reports whether the node carries the given label.
func (n *Node) HasLabel(label string) bool {
	for _, l := range n.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// HasLabels reports whether the node carries every given label.
func (n *Node) HasLabels(labels []string) bool {
	for _, l := range labels {
		if !n.HasLabel(l) {
			return false
		}
	}
	return true
}

// Relationship is a typed, directed property-graph relationship.
type Relationship struct {
	ID      int64
	StartID int64
	EndID   int64
	Type    string
	Props   map[string]Value
}

// IsLoop reports whether the relationship connects a node to itself.
func (r *Relationship) IsLoop() bool {
	return r.StartID == r.EndID
}

// Graph is an in-memory property graph.
type Graph struct {
	Name          string
	Nodes         []*Node
	Relationships []*Relationship

	nodeByID map[int64]*Node
	nextID   int64
}

// NewGraph creates an empty graph.
func NewGraph(name string) *Graph {
	return &Graph{Name: name, nodeByID: make(map[int64]*Node)}
}

// AddNode inserts a node with a fresh ID and returns it.
func (g *Graph) AddNode(labels []string, props map[string]Value) *Node {
	n := &Node{ID: g.allocID(), Labels: labels, Props: props}
	g.insertNode(n)
	return n
}

// AddRelationship inserts a relationship with a fresh ID and returns it.
func (g *Graph) AddRelationship(relType string, start, end *Node, props map[string]Value) *Relationship {
	r := &Relationship{
		ID:      g.allocID(),
		StartID: start.ID,
		EndID:   end.ID,
		Type:    relType,
		Props:   props,
	}
	g.Relationships = append(g.Relationships, r)
	return r
}

// InsertNode adds a node with a caller-assigned ID, as loaded from an
// external source.
func (g *Graph) InsertNode(n *Node) {
	g.insertNode(n)
	if n.ID >= g.nextID {
		g.nextID = n.ID + 1
	}
}

// InsertRelationship adds a relationship with a caller-assigned ID.
func (g *Graph) InsertRelationship(r *Relationship) {
	g.Relationships = append(g.Relationships, r)
	if r.ID >= g.nextID {
		g.nextID = r.ID + 1
	}
}

// NodeByID returns the node with the given ID, or nil.
func (g *Graph) NodeByID(id int64) *Node {
	return g.nodeByID[id]
}

// Labels returns the distinct labels present in the graph, sorted.
func (g *Graph) Labels() []string {
	seen := make(map[string]bool)
	for _, n := range g.Nodes {
		for _, l := range n.Labels {
			seen[l] = true
		}
	}
	labels := make([]string, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

func (g *Graph) insertNode(n *Node) {
	if g.nodeByID == nil {
		g.nodeByID = make(map[int64]*Node)
	}
	g.Nodes = append(g.Nodes, n)
	g.nodeByID[n.ID] = n
}

func (g *Graph) allocID() int64 {
	id := g.nextID
	g.nextID++
	return id
}
