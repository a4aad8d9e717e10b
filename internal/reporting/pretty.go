package reporting

import (
	"fmt"
	"io"

	"github.com/kzn-tools/kaizen/internal/diagnostic"
)

// ANSI color codes, matching the palette
// internal/observability/logger.go's colorMap already hand-rolls for
// log levels, reused here for diagnostic severities instead.
const (
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiCyan   = "\x1b[36m"
	ansiWhite  = "\x1b[37m"
	ansiBold   = "\x1b[1m"
	ansiReset  = "\x1b[0m"
)

// prettyReporter renders a human-readable, colorized line per
// diagnostic.
type prettyReporter struct {
	w          io.WriteCloser
	total      int
	bySeverity map[diagnostic.Severity]int
}

func newPrettyReporter(w io.WriteCloser) *prettyReporter {
	return &prettyReporter{w: w, bySeverity: map[diagnostic.Severity]int{}}
}

func severityColor(s diagnostic.Severity) string {
	switch s {
	case diagnostic.Error:
		return ansiBold + ansiRed
	case diagnostic.Warning:
		return ansiYellow
	case diagnostic.Info:
		return ansiCyan
	default:
		return ansiWhite
	}
}

func (r *prettyReporter) WriteFile(filename string, diagnostics []diagnostic.Diagnostic) error {
	for _, d := range diagnostics {
		r.total++
		r.bySeverity[d.Severity]++
		if _, err := fmt.Fprintf(r.w, "%s:%d:%d %s%s%s [%s] %s\n",
			d.File, d.Range.Start.Line, d.Range.Start.Column,
			severityColor(d.Severity), d.Severity, ansiReset, d.RuleID, d.Message); err != nil {
			return err
		}
		if d.Suggestion != "" {
			if _, err := fmt.Fprintf(r.w, "  suggestion: %s\n", d.Suggestion); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *prettyReporter) Close() error {
	_, err := fmt.Fprintf(r.w, "\n%d issue(s): %d error, %d warning, %d info, %d hint\n",
		r.total, r.bySeverity[diagnostic.Error], r.bySeverity[diagnostic.Warning],
		r.bySeverity[diagnostic.Info], r.bySeverity[diagnostic.Hint])
	if closeErr := r.w.Close(); err == nil {
		err = closeErr
	}
	return err
}
