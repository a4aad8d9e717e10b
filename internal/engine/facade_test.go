package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kzn-tools/kaizen/internal/config"
	"github.com/kzn-tools/kaizen/internal/diagnostic"
	"github.com/kzn-tools/kaizen/internal/engine"
	"github.com/kzn-tools/kaizen/internal/parsing"
	"github.com/kzn-tools/kaizen/internal/tier"
)

func mustParse(t *testing.T, source string) *parsing.ParsedFile {
	t.Helper()
	file, err := parsing.Parse(context.Background(), "handler.js", parsing.JavaScript, []byte(source))
	require.NoError(t, err)
	t.Cleanup(file.Close)
	return file
}

func TestAnalyzeFindsSQLInjection(t *testing.T) {
	t.Parallel()
	file := mustParse(t, `function handler(req) {
  db.query(req.query.id);
}`)
	eng := engine.New()
	diags := engine.Analyze(context.Background(), eng, file, config.Default(), tier.Free)

	var found bool
	for _, d := range diags {
		if d.RuleID == "S001" {
			found = true
		}
	}
	assert.True(t, found, "expected S001 sql-injection diagnostic, got %+v", diags)
}

func TestAnalyzeRespectsSuppressionComment(t *testing.T) {
	t.Parallel()
	file := mustParse(t, `function handler(req) {
  db.query(req.query.id); // kaizen-disable-line S001
}`)
	eng := engine.New()
	diags := engine.Analyze(context.Background(), eng, file, config.Default(), tier.Free)

	for _, d := range diags {
		assert.NotEqual(t, "S001", d.RuleID)
	}
}

func TestAnalyzeFatalParseErrorShortCircuits(t *testing.T) {
	t.Parallel()
	file := mustParse(t, "{{{{")
	eng := engine.New()
	diags := engine.Analyze(context.Background(), eng, file, config.Default(), tier.Free)

	require.Len(t, diags, 1)
	assert.Equal(t, diagnostic.IDParseError, diags[0].RuleID)
}

func TestAnalyzeHonorsMinSeverityFilter(t *testing.T) {
	t.Parallel()
	file := mustParse(t, `var x = 1;`)
	eng := engine.New()
	cfg := config.Default()
	rc := cfg.Rules()
	rc.MinSeverity = "error"
	cfg.SetRulesConfig(rc)

	diags := engine.Analyze(context.Background(), eng, file, cfg, tier.Free)
	for _, d := range diags {
		assert.Equal(t, diagnostic.Error, d.Severity)
	}
}

func TestAnalyzeDisabledRuleIsSkipped(t *testing.T) {
	t.Parallel()
	file := mustParse(t, `var x = 1;`)
	eng := engine.New()
	cfg := config.Default()
	rc := cfg.Rules()
	rc.Disabled = []string{"Q030"}
	cfg.SetRulesConfig(rc)

	diags := engine.Analyze(context.Background(), eng, file, cfg, tier.Free)
	for _, d := range diags {
		assert.NotEqual(t, "Q030", d.RuleID)
	}
}
