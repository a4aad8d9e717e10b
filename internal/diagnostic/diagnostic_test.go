package diagnostic_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/kzn-tools/kaizen/internal/diagnostic"
)

func TestSeverityMeets(t *testing.T) {
	t.Parallel()
	testCases := []struct {
		name     string
		severity diagnostic.Severity
		min      diagnostic.Severity
		expected bool
	}{
		{"error meets hint", diagnostic.Error, diagnostic.Hint, true},
		{"hint does not meet error", diagnostic.Hint, diagnostic.Error, false},
		{"warning meets warning", diagnostic.Warning, diagnostic.Warning, true},
		{"info does not meet warning", diagnostic.Info, diagnostic.Warning, false},
	}
	for _, tc := range testCases {
		tt := tc
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, tt.severity.Meets(tt.min))
		})
	}
}

func TestParseSeverityDefaultsToHint(t *testing.T) {
	t.Parallel()
	assert.Equal(t, diagnostic.Error, diagnostic.ParseSeverity("error"))
	assert.Equal(t, diagnostic.Hint, diagnostic.ParseSeverity("not-a-severity"))
}

func TestDowngrade(t *testing.T) {
	t.Parallel()
	assert.Equal(t, diagnostic.Medium, diagnostic.Downgrade(diagnostic.High))
	assert.Equal(t, diagnostic.Low, diagnostic.Downgrade(diagnostic.Medium))
	assert.Equal(t, diagnostic.Low, diagnostic.Downgrade(diagnostic.Low))
}

func TestMin(t *testing.T) {
	t.Parallel()
	assert.Equal(t, diagnostic.Low, diagnostic.Min(diagnostic.High, diagnostic.Low))
	assert.Equal(t, diagnostic.Medium, diagnostic.Min(diagnostic.Medium, diagnostic.High))
}

func TestSortOrdersByFileLineColumnThenRule(t *testing.T) {
	t.Parallel()
	diags := []diagnostic.Diagnostic{
		{File: "b.js", Range: diagnostic.Range{Start: diagnostic.Position{Line: 1, Column: 1}}, RuleID: "Q001"},
		{File: "a.js", Range: diagnostic.Range{Start: diagnostic.Position{Line: 5, Column: 1}}, RuleID: "Q001"},
		{File: "a.js", Range: diagnostic.Range{Start: diagnostic.Position{Line: 2, Column: 3}}, RuleID: "S001"},
		{File: "a.js", Range: diagnostic.Range{Start: diagnostic.Position{Line: 2, Column: 3}}, RuleID: "Q001"},
	}
	diagnostic.Sort(diags)

	want := []diagnostic.Diagnostic{
		{File: "a.js", Range: diagnostic.Range{Start: diagnostic.Position{Line: 2, Column: 3}}, RuleID: "Q001"},
		{File: "a.js", Range: diagnostic.Range{Start: diagnostic.Position{Line: 2, Column: 3}}, RuleID: "S001"},
		{File: "a.js", Range: diagnostic.Range{Start: diagnostic.Position{Line: 5, Column: 1}}, RuleID: "Q001"},
		{File: "b.js", Range: diagnostic.Range{Start: diagnostic.Position{Line: 1, Column: 1}}, RuleID: "Q001"},
	}
	if diff := cmp.Diff(want, diags); diff != "" {
		t.Errorf("Sort() mismatch (-want +got):\n%s", diff)
	}
}
