package flat

import (
	"fmt"
	"strings"

	"github.com/matthewbaird/graphplan/internal/record"
)

// Graph is a reference to the graph a graph-touching operator runs against.
// It is either an ExternalGraph resolved from the catalog or a PatternGraph
// under construction inside the query. Operator boundaries that bind a
// concrete source graph (start, set-source-graph, expand) accept external
// graphs only.
type Graph interface {
	GraphName() string
	String() string
}

// ExternalGraph references a previously catalogued graph by qualified name.
type ExternalGraph struct {
	Name string // qualified name, e.g. "session.friends"
	URI  string
}

func (g ExternalGraph) GraphName() string { return g.Name }

func (g ExternalGraph) String() string {
	return fmt.Sprintf("external graph %s", g.Name)
}

// GraphSchema declares the labels and relationship types a pattern graph
// may contain.
type GraphSchema struct {
	Labels   []string
	RelTypes []string
}

// PatternGraph references an in-query graph materialized from construction
// clauses against a target schema.
type PatternGraph struct {
	Name    string
	Schema  GraphSchema
	Clauses []ConstructClause
}

func (g PatternGraph) GraphName() string { return g.Name }

func (g PatternGraph) String() string {
	return fmt.Sprintf("pattern graph %s", g.Name)
}

// ConstructClause is one construction step of a pattern graph.
type ConstructClause interface {
	String() string
}

// ConstructNode creates a node per input record, bound to Var. When Base is
// set the node clones the labels and properties of the entity bound there;
// Labels are added on top.
type ConstructNode struct {
	Var    record.Field
	Labels []string
	Base   *record.Field
}

func (c ConstructNode) String() string {
	s := "(" + c.Var.Name
	if len(c.Labels) > 0 {
		s += ":" + strings.Join(c.Labels, ":")
	}
	if c.Base != nil {
		s += " COPY OF " + c.Base.Name
	}
	return s + ")"
}

// ConstructRelationship creates a relationship per input record between the
// entities bound at Source and Target.
type ConstructRelationship struct {
	Var     record.Field
	RelType string
	Source  record.Field
	Target  record.Field
}

func (c ConstructRelationship) String() string {
	return fmt.Sprintf("(%s)-[%s:%s]->(%s)", c.Source.Name, c.Var.Name, c.RelType, c.Target.Name)
}
