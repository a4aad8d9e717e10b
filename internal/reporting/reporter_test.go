package reporting_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kzn-tools/kaizen/internal/diagnostic"
	"github.com/kzn-tools/kaizen/internal/reporting"
)

func sampleDiagnostics() []diagnostic.Diagnostic {
	return []diagnostic.Diagnostic{
		{
			RuleID:   "Q001",
			Severity: diagnostic.Warning,
			Message:  "'x' is declared but never read",
			File:     "a.js",
			Range:    diagnostic.Range{Start: diagnostic.Position{Line: 1, Column: 1}},
		},
	}
}

func TestJSONReporterEmitsOneArray(t *testing.T) {
	t.Parallel()
	out := filepath.Join(t.TempDir(), "out.json")

	r, err := reporting.New("json", out)
	require.NoError(t, err)
	require.NoError(t, r.WriteFile("a.js", sampleDiagnostics()))
	require.NoError(t, r.Close())

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var decoded []diagnostic.Diagnostic
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded, 1)
	assert.Equal(t, "Q001", decoded[0].RuleID)
}

func TestNDJSONReporterEmitsOneObjectPerDiagnostic(t *testing.T) {
	t.Parallel()
	out := filepath.Join(t.TempDir(), "out.ndjson")

	r, err := reporting.New("ndjson", out)
	require.NoError(t, err)
	require.NoError(t, r.WriteFile("a.js", sampleDiagnostics()))
	require.NoError(t, r.WriteFile("b.js", nil))
	require.NoError(t, r.Close())

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var decoded diagnostic.Diagnostic
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "Q001", decoded.RuleID)
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	t.Parallel()
	_, err := reporting.New("xml", "")
	assert.Error(t, err)
}
