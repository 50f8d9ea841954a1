package session

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	s := New("demo")

	assert.Equal(t, "demo", s.Namespace)
	assert.NotEmpty(t, s.ID)
	assert.False(t, s.CreatedAt.IsZero())
}

func TestNew_UniqueIDs(t *testing.T) {
	assert.NotEqual(t, New("demo").ID, New("demo").ID)
}

func TestSession_Parameters(t *testing.T) {
	s := New("demo")

	_, ok := s.Parameter("limit")
	require.False(t, ok)

	s.SetParameter("limit", 10)
	v, ok := s.Parameter("limit")
	require.True(t, ok)
	assert.Equal(t, 10, v)
}

func TestSession_Qualify(t *testing.T) {
	s := New("demo")

	qualified := s.Qualify("people")

	assert.Equal(t, "demo.people", qualified)
	assert.True(t, strings.HasPrefix(qualified, s.Namespace+"."))
}
