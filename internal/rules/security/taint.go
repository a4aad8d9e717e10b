package security

import (
	"fmt"
	"strings"

	"github.com/kzn-tools/kaizen/internal/diagnostic"
	"github.com/kzn-tools/kaizen/internal/rules"
	"github.com/kzn-tools/kaizen/internal/taint"
	"github.com/kzn-tools/kaizen/internal/tier"
)

// taintRule reports every Finding the taint propagator confirmed for
// one Category, translating its witness path into a Diagnostic with
// Related ranges for the source and each intermediate node (spec.md §4.7's "witness
// path" requirement). When sinkPaths is non-nil, only findings whose
// sink's dotted property path is in the set are reported; this lets
// two rules split one Category by sink identity (S005 vs S022) without
// double-reporting the same Finding under both rule IDs.
type taintRule struct {
	id        string
	name      string
	category  taint.Category
	sinkPaths map[string]bool
}

func (r taintRule) ID() string                          { return r.id }
func (r taintRule) Name() string                        { return r.name }
func (taintRule) Category() rules.Category              { return rules.Security }
func (taintRule) DefaultSeverity() diagnostic.Severity  { return diagnostic.Error }
func (taintRule) MinTier() tier.Tier                    { return tier.Free }

func (r taintRule) Run(ctx *rules.Context) []diagnostic.Diagnostic {
	var out []diagnostic.Diagnostic
	for _, f := range ctx.Findings {
		if f.Category != r.category {
			continue
		}
		if r.sinkPaths != nil && !r.sinkPaths[strings.Join(f.Sink.Path, ".")] {
			continue
		}
		d := rules.Diag(ctx.File.Filename, f.Sink.Range,
			fmt.Sprintf("tainted value from %q reaches a %s sink here", describeSource(f.Source), r.name),
			"validate or sanitize the value before it reaches this sink",
			confidenceFor(f.Confidence))
		for _, n := range f.Path[:len(f.Path)-1] {
			d.Related = append(d.Related, diagnostic.RelatedRange{
				Range: rules.ToDiagRange(n.Range),
				Label: "taint flows through here",
			})
		}
		out = append(out, d)
	}
	return out
}

func describeSource(n taint.Node) string {
	if len(n.Path) > 0 {
		s := n.Path[0]
		for _, p := range n.Path[1:] {
			s += "." + p
		}
		return s
	}
	return "an untrusted input"
}

func confidenceFor(c taint.FindingConfidence) diagnostic.Confidence {
	switch c {
	case taint.ConfidenceHigh:
		return diagnostic.High
	case taint.ConfidenceMedium:
		return diagnostic.Medium
	default:
		return diagnostic.Low
	}
}
