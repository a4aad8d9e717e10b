package taint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kzn-tools/kaizen/internal/config"
	"github.com/kzn-tools/kaizen/internal/taint"
)

func TestMatchSinkDefaults(t *testing.T) {
	t.Parallel()
	r := taint.NewRegistry(config.TaintConfig{})

	pat, kind, ok := r.MatchSink([]string{"db", "query"})
	require.True(t, ok)
	assert.Equal(t, taint.SqlInjection, pat.Category)
	assert.Equal(t, taint.MatchExact, kind)
}

func TestMatchSinkUnknownPathFails(t *testing.T) {
	t.Parallel()
	r := taint.NewRegistry(config.TaintConfig{})

	_, _, ok := r.MatchSink([]string{"totally", "unrelated"})
	assert.False(t, ok)
}

func TestMatchSourceWildcard(t *testing.T) {
	t.Parallel()
	r := taint.NewRegistry(config.TaintConfig{})

	_, kind, ok := r.MatchSource([]string{"req", "body", "name"}, false)
	require.True(t, ok)
	assert.Equal(t, taint.MatchWildcardSuffix, kind)
}

func TestMatchSanitizerExactClearsCategory(t *testing.T) {
	t.Parallel()
	r := taint.NewRegistry(config.TaintConfig{})

	pat, kind, ok := r.MatchSanitizer([]string{"encodeURIComponent"})
	require.True(t, ok)
	assert.Equal(t, taint.MatchExact, kind)
	_ = pat
}

func TestAdditionalSinkConfiguration(t *testing.T) {
	t.Parallel()
	r := taint.NewRegistry(config.TaintConfig{AdditionalSinks: []string{"myOrm.rawQuery"}})

	_, kind, ok := r.MatchSink([]string{"myOrm", "rawQuery"})
	require.True(t, ok)
	assert.Equal(t, taint.MatchExact, kind)
}
