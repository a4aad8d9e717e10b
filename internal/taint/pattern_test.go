package taint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchPathExact(t *testing.T) {
	t.Parallel()
	kind, ok := matchPath([]string{"db", "query"}, []string{"db", "query"}, MatchExact)
	assert.True(t, ok)
	assert.Equal(t, MatchExact, kind)
}

func TestMatchPathHeuristicFallback(t *testing.T) {
	t.Parallel()
	kind, ok := matchPath([]string{"el", "innerHTML"}, []string{"x", "innerHTML"}, MatchExact)
	assert.True(t, ok)
	assert.Equal(t, MatchHeuristic, kind)
}

func TestMatchPathWildcardSuffix(t *testing.T) {
	t.Parallel()
	kind, ok := matchPath([]string{"req", "query", "id"}, []string{"req", "query"}, MatchWildcardSuffix)
	assert.True(t, ok)
	assert.Equal(t, MatchWildcardSuffix, kind)

	_, ok = matchPath([]string{"request", "query", "id"}, []string{"req", "query"}, MatchWildcardSuffix)
	assert.False(t, ok)
}

func TestMatchPathNoMatch(t *testing.T) {
	t.Parallel()
	_, ok := matchPath([]string{"foo", "bar"}, []string{"db", "query"}, MatchExact)
	assert.False(t, ok)
}

func TestMatchPathEmptyInputs(t *testing.T) {
	t.Parallel()
	_, ok := matchPath(nil, []string{"db", "query"}, MatchExact)
	assert.False(t, ok)
	_, ok = matchPath([]string{"db", "query"}, nil, MatchExact)
	assert.False(t, ok)
}
