package physical

import "github.com/matthewbaird/graphplan/internal/session"

// Context carries the state of one planning invocation: the active session
// and the externally supplied input records used to seed operators that have
// no predecessor. It is passed explicitly through the recursion; nothing is
// looked up ambiently.
type Context[R any] struct {
	Session      *session.Session
	InputRecords R
}

// NewContext builds a planning context.
func NewContext[R any](sess *session.Session, inputRecords R) *Context[R] {
	return &Context[R]{Session: sess, InputRecords: inputRecords}
}
