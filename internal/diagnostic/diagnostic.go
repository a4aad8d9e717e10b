// Package diagnostic defines the uniform description of rule findings,
// fixes, and suppression used across the engine. Diagnostics are value
// types: once a rule emits one, it is never mutated, only filtered,
// severity-overridden, or dropped by the engine's dispatch pipeline.
package diagnostic

import (
	"fmt"
	"sort"
)

// Category groups a rule by the kind of concern it addresses. The
// prefix letter of a rule's identifier always matches its category.
type Category string

const (
	Quality  Category = "Quality"
	Security Category = "Security"
)

// Severity is the emitted importance of a diagnostic.
type Severity string

const (
	Error   Severity = "error"
	Warning Severity = "warning"
	Info    Severity = "info"
	Hint    Severity = "hint"
)

// severityRank orders severities from most to least important so that
// minimum-severity filtering and lossless comparisons are cheap.
var severityRank = map[Severity]int{
	Error:   3,
	Warning: 2,
	Info:    1,
	Hint:    0,
}

// ParseSeverity converts a lower-case severity name into a Severity,
// defaulting to Hint (the least restrictive floor) for unknown input.
func ParseSeverity(s string) Severity {
	switch Severity(s) {
	case Error, Warning, Info, Hint:
		return Severity(s)
	default:
		return Hint
	}
}

// Meets reports whether this severity is at least as important as min.
func (s Severity) Meets(min Severity) bool {
	return severityRank[s] >= severityRank[min]
}

// Confidence is the ordinal likelihood that a diagnostic is a true
// positive.
type Confidence string

const (
	High   Confidence = "high"
	Medium Confidence = "medium"
	Low    Confidence = "low"
)

var confidenceRank = map[Confidence]int{
	High:   2,
	Medium: 1,
	Low:    0,
}

// ParseConfidence converts a lower-case confidence name into a
// Confidence, defaulting to Low.
func ParseConfidence(s string) Confidence {
	switch Confidence(s) {
	case High, Medium, Low:
		return Confidence(s)
	default:
		return Low
	}
}

// Meets reports whether this confidence is at least as strong as min.
func (c Confidence) Meets(min Confidence) bool {
	return confidenceRank[c] >= confidenceRank[min]
}

// Min returns the lower of the two confidences, used when combining
// confidence along a taint witness path (§4.7: "minimum confidence
// along the path").
func Min(a, b Confidence) Confidence {
	if confidenceRank[a] <= confidenceRank[b] {
		return a
	}
	return b
}

// Downgrade lowers a confidence by one notch, floored at Low. Used
// when a heuristic sanitizer was crossed on a taint witness path.
func Downgrade(c Confidence) Confidence {
	switch c {
	case High:
		return Medium
	case Medium:
		return Low
	default:
		return Low
	}
}

// Position is a 1-based UTF-16 line/column location, matching the
// editor-protocol convention ParsedFile.span_to_location produces.
type Position struct {
	Line   int
	Column int
}

// Range is a half-open-in-spirit, inclusive-in-representation source
// range: Start through End, both inclusive endpoints expressed as
// Positions, matching spec.md's (start_line, start_column, end_line,
// end_column) tuple.
type Range struct {
	Start Position
	End   Position
}

// TextEdit is one ordered span-replacement edit against the analyzed
// file's original text.
type TextEdit struct {
	Range       Range
	Replacement string
}

// Fix is a machine-applicable remediation: one or more TextEdits
// against the same file. Fixes are never applied by the engine; they
// are descriptors only (spec.md §1).
type Fix struct {
	Edits []TextEdit
}

// RelatedRange is a secondary location attached to a diagnostic, e.g.
// the source location of a taint origin.
type RelatedRange struct {
	Range Range
	Label string
}

// Diagnostic is the immutable record emitted by a rule.
type Diagnostic struct {
	RuleID     string
	RuleName   string
	Category   Category
	Severity   Severity
	Confidence Confidence
	Message    string
	Suggestion string
	Fix        *Fix
	File       string
	Range      Range
	Related    []RelatedRange
}

// String renders a diagnostic the way the CLI's "pretty" reporter
// formats a single line, useful for logging and test failure output.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s [%s] %s", d.File, d.Range.Start.Line, d.Range.Start.Column, d.Severity, d.RuleID, d.Message)
}

// Sentinel diagnostic identifiers emitted directly by the engine
// rather than by a rule (spec.md §7).
const (
	IDParseError         = "parse-error"
	IDInternalLimit       = "internal-analysis-limit"
	IDRuleInternalError   = "rule-internal-error"
	IDAnalysisCancelled   = "analysis-cancelled"
)

// Less reports whether d sorts before o under spec.md §4.1's ordering
// contract: (filename, start_line, start_column, rule_id).
func Less(d, o Diagnostic) bool {
	if d.File != o.File {
		return d.File < o.File
	}
	if d.Range.Start.Line != o.Range.Start.Line {
		return d.Range.Start.Line < o.Range.Start.Line
	}
	if d.Range.Start.Column != o.Range.Start.Column {
		return d.Range.Start.Column < o.Range.Start.Column
	}
	return d.RuleID < o.RuleID
}

// Sort orders diagnostics in place per the §4.1 ordering contract.
func Sort(diagnostics []Diagnostic) {
	sort.SliceStable(diagnostics, func(i, j int) bool {
		return Less(diagnostics[i], diagnostics[j])
	})
}
