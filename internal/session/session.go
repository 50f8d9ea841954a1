// Package session manages planning session lifecycle.
package session

import (
	"time"

	"github.com/google/uuid"
)

// Session holds per-invocation planning state: identity, query parameters
// and the namespace unqualified graph names resolve against.
type Session struct {
	ID         string         `json:"id"`
	Namespace  string         `json:"namespace"`
	Parameters map[string]any `json:"parameters"`
	CreatedAt  time.Time      `json:"created_at"`
}

// New creates a session in the given namespace.
func New(namespace string) *Session {
	return &Session{
		ID:         uuid.New().String(),
		Namespace:  namespace,
		Parameters: make(map[string]any),
		CreatedAt:  time.Now(),
	}
}

// SetParameter binds a query parameter.
func (s *Session) SetParameter(name string, value any) {
	s.Parameters[name] = value
}

// Parameter returns a bound query parameter.
func (s *Session) Parameter(name string) (any, bool) {
	v, ok := s.Parameters[name]
	return v, ok
}

// Qualify resolves a bare graph name against the session namespace.
func (s *Session) Qualify(name string) string {
	return s.Namespace + "." + name
}
