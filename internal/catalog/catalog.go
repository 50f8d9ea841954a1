// Package catalog maps qualified graph names to backend graphs. The planner
// consumes the catalog only through external graph references; backends
// resolve those references here.
package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// Catalog registers backend graphs of type G under qualified
// "namespace.name" keys.
type Catalog[G any] struct {
	graphs map[string]G
}

// New creates an empty catalog.
func New[G any]() *Catalog[G] {
	return &Catalog[G]{graphs: make(map[string]G)}
}

// Register adds a graph under the given qualified name, replacing any
// previous registration.
func (c *Catalog[G]) Register(qualifiedName string, graph G) error {
	if !strings.Contains(qualifiedName, ".") {
		return fmt.Errorf("graph name '%s' is not qualified (want namespace.name)", qualifiedName)
	}
	c.graphs[qualifiedName] = graph
	return nil
}

// Resolve returns the graph registered under the qualified name.
func (c *Catalog[G]) Resolve(qualifiedName string) (G, error) {
	g, ok := c.graphs[qualifiedName]
	if !ok {
		var zero G
		return zero, fmt.Errorf("unknown graph '%s'", qualifiedName)
	}
	return g, nil
}

// Names returns all registered qualified names, sorted.
func (c *Catalog[G]) Names() []string {
	names := make([]string, 0, len(c.graphs))
	for name := range c.graphs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
