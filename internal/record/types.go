// Package record defines record headers: the ordered, named, typed field
// schemas that describe a stream of records flowing between operators.
package record

import (
	"fmt"
	"strings"
)

// Kind enumerates the value kinds a field may carry.
type Kind int

const (
	KindAny Kind = iota
	KindNode
	KindRelationship
	KindBoolean
	KindInteger
	KindFloat
	KindString
	KindList
)

// String returns the type-name spelling used in header rendering.
func (k Kind) String() string {
	switch k {
	case KindAny:
		return "ANY"
	case KindNode:
		return "NODE"
	case KindRelationship:
		return "RELATIONSHIP"
	case KindBoolean:
		return "BOOLEAN"
	case KindInteger:
		return "INTEGER"
	case KindFloat:
		return "FLOAT"
	case KindString:
		return "STRING"
	case KindList:
		return "LIST"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(k))
	}
}

// Type is a field's declared value type. Node types may constrain the labels
// an entity must carry; relationship types may constrain the relationship
// type to one of a set of alternatives.
type Type struct {
	Kind     Kind
	Labels   []string // for KindNode: required labels (all must be present)
	RelTypes []string // for KindRelationship: allowed types (any may match)
	Elem     *Type    // for KindList: element type, nil = ANY
}

// NodeType declares a node-valued type constrained to the given labels.
func NodeType(labels ...string) Type {
	return Type{Kind: KindNode, Labels: labels}
}

// RelationshipType declares a relationship-valued type restricted to the
// given relationship types. No types means any relationship matches.
func RelationshipType(relTypes ...string) Type {
	return Type{Kind: KindRelationship, RelTypes: relTypes}
}

// ListOf declares a list type with the given element type.
func ListOf(elem Type) Type {
	e := elem
	return Type{Kind: KindList, Elem: &e}
}

// Scalar type constructors.
func Boolean() Type { return Type{Kind: KindBoolean} }
func Integer() Type { return Type{Kind: KindInteger} }
func Float() Type   { return Type{Kind: KindFloat} }
func String() Type  { return Type{Kind: KindString} }
func Any() Type     { return Type{Kind: KindAny} }

// String renders the type, including label and relationship-type constraints.
func (t Type) String() string {
	switch t.Kind {
	case KindNode:
		if len(t.Labels) > 0 {
			return fmt.Sprintf("NODE(:%s)", strings.Join(t.Labels, ":"))
		}
		return "NODE"
	case KindRelationship:
		if len(t.RelTypes) > 0 {
			return fmt.Sprintf("RELATIONSHIP[%s]", strings.Join(t.RelTypes, "|"))
		}
		return "RELATIONSHIP"
	case KindList:
		if t.Elem != nil {
			return fmt.Sprintf("LIST<%s>", t.Elem)
		}
		return "LIST<ANY>"
	default:
		return t.Kind.String()
	}
}
