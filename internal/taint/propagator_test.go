package taint_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kzn-tools/kaizen/internal/config"
	"github.com/kzn-tools/kaizen/internal/parsing"
	"github.com/kzn-tools/kaizen/internal/taint"
)

func parseJS(t *testing.T, source string) *parsing.ParsedFile {
	t.Helper()
	file, err := parsing.Parse(context.Background(), "test.js", parsing.JavaScript, []byte(source))
	require.NoError(t, err)
	t.Cleanup(file.Close)
	return file
}

func TestPropagateFindsDirectFlow(t *testing.T) {
	t.Parallel()
	file := parseJS(t, `function handler(req) {
  db.query(req.query.id);
}`)
	registry := taint.NewRegistry(config.TaintConfig{})
	graph := taint.BuildGraph(file, registry)
	findings := taint.Propagate(graph)

	require.Len(t, findings, 1)
	assert.Equal(t, taint.SqlInjection, findings[0].Category)
	assert.Equal(t, taint.ConfidenceHigh, findings[0].Confidence)
}

func TestPropagateExactSanitizerClearsTaint(t *testing.T) {
	t.Parallel()
	file := parseJS(t, `function handler(req) {
  db.query(encodeURIComponent(req.query.id));
}`)
	registry := taint.NewRegistry(config.TaintConfig{})
	graph := taint.BuildGraph(file, registry)
	findings := taint.Propagate(graph)

	assert.Empty(t, findings)
}

func TestPropagateNoSourceMeansNoFinding(t *testing.T) {
	t.Parallel()
	file := parseJS(t, `db.query("SELECT 1");`)
	registry := taint.NewRegistry(config.TaintConfig{})
	graph := taint.BuildGraph(file, registry)
	findings := taint.Propagate(graph)

	assert.Empty(t, findings)
}
