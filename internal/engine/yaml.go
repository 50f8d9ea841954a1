package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// graphDoc is the YAML graph fixture format.
type graphDoc struct {
	Name          string    `yaml:"name"`
	Nodes         []nodeDoc `yaml:"nodes"`
	Relationships []relDoc  `yaml:"relationships"`
}

type nodeDoc struct {
	ID     int64          `yaml:"id"`
	Labels []string       `yaml:"labels"`
	Props  map[string]any `yaml:"props"`
}

type relDoc struct {
	ID    int64          `yaml:"id"`
	Type  string         `yaml:"type"`
	Start int64          `yaml:"start"`
	End   int64          `yaml:"end"`
	Props map[string]any `yaml:"props"`
}

// ParseGraphYAML decodes a property graph from its YAML document form.
func ParseGraphYAML(data []byte) (*Graph, error) {
	var doc graphDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding graph document: %w", err)
	}
	if doc.Name == "" {
		return nil, fmt.Errorf("graph document missing a name")
	}

	g := NewGraph(doc.Name)
	for _, n := range doc.Nodes {
		g.InsertNode(&Node{ID: n.ID, Labels: n.Labels, Props: normalizeProps(n.Props)})
	}
	for _, r := range doc.Relationships {
		if g.NodeByID(r.Start) == nil || g.NodeByID(r.End) == nil {
			return nil, fmt.Errorf("relationship %d references unknown node (%d)-(%d)", r.ID, r.Start, r.End)
		}
		g.InsertRelationship(&Relationship{
			ID:      r.ID,
			StartID: r.Start,
			EndID:   r.End,
			Type:    r.Type,
			Props:   normalizeProps(r.Props),
		})
	}
	return g, nil
}

// LoadGraphYAMLFile reads a YAML graph fixture from disk.
func LoadGraphYAMLFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading graph fixture: %w", err)
	}
	return ParseGraphYAML(data)
}

func normalizeProps(props map[string]any) map[string]Value {
	out := make(map[string]Value, len(props))
	for k, v := range props {
		out[k] = normalizeDeep(v)
	}
	return out
}

func normalizeDeep(v any) Value {
	if list, ok := v.([]any); ok {
		elems := make([]Value, len(list))
		for i, e := range list {
			elems[i] = normalizeDeep(e)
		}
		return elems
	}
	return normalize(v)
}
