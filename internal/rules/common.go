package rules

import (
	"github.com/kzn-tools/kaizen/internal/diagnostic"
	"github.com/kzn-tools/kaizen/internal/parsing"
)

// ToDiagRange converts a parsing.Range (the parser's coordinate type)
// into a diagnostic.Range (the diagnostic model's coordinate type).
// Exported so quality/security rule subpackages can build diagnostics
// without importing internal/parsing themselves.
func ToDiagRange(r parsing.Range) diagnostic.Range {
	return diagnostic.Range{
		Start: diagnostic.Position{Line: r.Start.Line, Column: r.Start.Column},
		End:   diagnostic.Position{Line: r.End.Line, Column: r.End.Column},
	}
}

// Diag builds a Diagnostic with the fields a rule decides; RuleID,
// RuleName, Category, and Severity are filled in by RunAll.
func Diag(file string, r parsing.Range, message, suggestion string, confidence diagnostic.Confidence) diagnostic.Diagnostic {
	return diagnostic.Diagnostic{
		Message:    message,
		Suggestion: suggestion,
		Confidence: confidence,
		File:       file,
		Range:      ToDiagRange(r),
	}
}
