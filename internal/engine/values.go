package engine

import (
	"golang.org/x/text/collate"
)

// normalize maps Go literals into the engine's value domain: all integers
// widen to int64, float32 to float64.
func normalize(v any) Value {
	switch v := v.(type) {
	case int:
		return int64(v)
	case int32:
		return int64(v)
	case float32:
		return float64(v)
	default:
		return v
	}
}

// numeric extracts a float64 from an int64 or float64 value.
func numeric(v Value) (float64, bool) {
	switch v := v.(type) {
	case int64:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

// valuesEqual reports value equality. Entities compare by ID, numbers
// numerically across int64/float64, lists element-wise. Null equals nothing,
// including null.
func valuesEqual(a, b Value) bool {
	if a == nil || b == nil {
		return false
	}
	if an, ok := a.(*Node); ok {
		bn, ok := b.(*Node)
		return ok && an.ID == bn.ID
	}
	if ar, ok := a.(*Relationship); ok {
		br, ok := b.(*Relationship)
		return ok && ar.ID == br.ID
	}
	if al, ok := a.([]Value); ok {
		bl, ok := b.([]Value)
		if !ok || len(al) != len(bl) {
			return false
		}
		for i := range al {
			if !valuesEqual(al[i], bl[i]) {
				return false
			}
		}
		return true
	}
	if af, ok := numeric(a); ok {
		bf, ok := numeric(b)
		return ok && af == bf
	}
	return a == b
}

// typeRank orders values of different types for sorting: null, bool,
// number, string, node, relationship, list.
func typeRank(v Value) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case int64, float64:
		return 2
	case string:
		return 3
	case *Node:
		return 4
	case *Relationship:
		return 5
	case []Value:
		return 6
	default:
		return 7
	}
}

// compareValues orders two values: -1, 0 or 1. Strings collate with the
// given collator; mixed types order by type rank.
func compareValues(a, b Value, coll *collate.Collator) int {
	ra, rb := typeRank(a), typeRank(b)
	if ra != rb {
		return sign(ra - rb)
	}
	switch av := a.(type) {
	case nil:
		return 0
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	case int64, float64:
		af, _ := numeric(a)
		bf, _ := numeric(b)
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	case string:
		return coll.CompareString(av, b.(string))
	case *Node:
		return sign64(av.ID - b.(*Node).ID)
	case *Relationship:
		return sign64(av.ID - b.(*Relationship).ID)
	case []Value:
		bv := b.([]Value)
		for i := 0; i < len(av) && i < len(bv); i++ {
			if c := compareValues(av[i], bv[i], coll); c != 0 {
				return c
			}
		}
		return sign(len(av) - len(bv))
	default:
		return 0
	}
}

// truthy reports whether a value is the boolean true; null and non-boolean
// values are not truthy.
func truthy(v Value) bool {
	b, ok := v.(bool)
	return ok && b
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

func sign64(n int64) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
