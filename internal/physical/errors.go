package physical

import (
	"errors"
	"fmt"

	"github.com/matthewbaird/graphplan/internal/flat"
)

// Both error kinds are fatal to the compilation: there is no retry and no
// partial plan.
var (
	// ErrUnsupportedOperator reports a flat-operator variant the planner
	// does not recognize; it signals an incomplete planner/backend pairing.
	ErrUnsupportedOperator = errors.New("unsupported flat operator")

	// ErrExternalGraphRequired reports a pattern-graph reference at a
	// boundary that structurally requires an external graph; it signals a
	// bug in the upstream logical planner, not a user data error.
	ErrExternalGraphRequired = errors.New("external graph required")
)

func unsupportedOperator(op flat.Operator) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedOperator, op)
}

func externalGraphRequired(op flat.Operator, g flat.Graph) error {
	return fmt.Errorf("%w at %s, got %s", ErrExternalGraphRequired, op, g)
}
