// Package suppress parses in-source suppression markers and answers
// "is position P suppressed for rule R". Modeled as a sparse mapping
// from line number to a small set, never as AST attachments, so that
// fixes can be round-tripped without disturbing suppression state
// (spec.md §9 Design Notes).
package suppress

import (
	"bufio"
	"strings"
)

const (
	lineMarker     = "kaizen-disable-line"
	nextLineMarker = "kaizen-disable-next-line"
)

// all is the sentinel stored in a line's rule set meaning "every rule
// is suppressed on this line" (an empty rule list in the marker).
const all = "*"

// Index answers suppression queries built from a single file's source
// text. It is immutable after construction.
type Index struct {
	byLine map[int]map[string]bool
}

// Build scans source line by line for `// kaizen-disable-line` and
// `// kaizen-disable-next-line` markers and returns the resulting
// Index. Markers are recognized only as `//` line comments; there is
// no block-comment form (spec.md §6, bit-exact).
func Build(source []byte) *Index {
	idx := &Index{byLine: make(map[int]map[string]bool)}

	scanner := bufio.NewScanner(strings.NewReader(string(source)))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	lines := make([]string, 0, 256)
	for scanner.Scan() {
		lineNo++
		lines = append(lines, scanner.Text())
	}

	isBlank := func(n int) bool {
		if n < 1 || n > len(lines) {
			return false
		}
		return strings.TrimSpace(lines[n-1]) == ""
	}

	for i, text := range lines {
		line := i + 1
		directive, ruleIDs, ok := parseDirective(text)
		if !ok {
			continue
		}

		target := line
		if directive == nextLineMarker {
			target = line + 1
			for isBlank(target) {
				target++
			}
		}

		idx.add(target, ruleIDs)
	}

	return idx
}

// parseDirective finds a `//` comment on the line containing one of
// the two recognized prefixes, and returns the directive keyword and
// the (possibly empty) parsed rule identifier list.
func parseDirective(line string) (directive string, ruleIDs []string, ok bool) {
	commentIdx := strings.Index(line, "//")
	if commentIdx == -1 {
		return "", nil, false
	}
	comment := strings.TrimSpace(line[commentIdx+2:])

	switch {
	case strings.HasPrefix(comment, nextLineMarker):
		rest := strings.TrimSpace(comment[len(nextLineMarker):])
		return nextLineMarker, parseRuleIDs(rest), true
	case strings.HasPrefix(comment, lineMarker):
		rest := strings.TrimSpace(comment[len(lineMarker):])
		return lineMarker, parseRuleIDs(rest), true
	default:
		return "", nil, false
	}
}

// parseRuleIDs splits a comma-separated rule identifier/name list,
// trimming whitespace and dropping empty entries. An empty result
// means "all rules".
func parseRuleIDs(rest string) []string {
	rest = strings.TrimPrefix(rest, ":")
	if rest == "" {
		return nil
	}
	parts := strings.Split(rest, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (idx *Index) add(line int, ruleIDs []string) {
	set, ok := idx.byLine[line]
	if !ok {
		set = make(map[string]bool)
		idx.byLine[line] = set
	}
	if len(ruleIDs) == 0 {
		set[all] = true
		return
	}
	for _, id := range ruleIDs {
		set[id] = true
	}
}

// IsSuppressed reports whether the diagnostic identified by ruleID or
// ruleName on the given line is suppressed, per spec.md §4.10: a
// diagnostic is dropped iff its primary line's entry contains "*" or
// the rule's identifier or display name.
func (idx *Index) IsSuppressed(line int, ruleID, ruleName string) bool {
	set, ok := idx.byLine[line]
	if !ok {
		return false
	}
	if set[all] {
		return true
	}
	return set[ruleID] || set[ruleName]
}

// Empty reports whether the index has no markers at all.
func (idx *Index) Empty() bool {
	return len(idx.byLine) == 0
}
