// Package rules implements the Rule Registry described in spec.md
// §4.2: a fixed catalog of Quality and Security rules, each gated by
// activation tier, category toggle, and an explicit disable list, run
// over one file's parsed tree, semantic artifacts, and taint findings
// to produce diagnostics. Grounded on
// original_source/crates/kaizen-core/src/rules/mod.rs's
// register/should_run/run_all shape.
package rules

import (
	"fmt"
	"sort"

	"github.com/kzn-tools/kaizen/internal/config"
	"github.com/kzn-tools/kaizen/internal/diagnostic"
	"github.com/kzn-tools/kaizen/internal/parsing"
	"github.com/kzn-tools/kaizen/internal/semantic"
	"github.com/kzn-tools/kaizen/internal/taint"
	"github.com/kzn-tools/kaizen/internal/tier"
)

// Category is the broad grouping a rule belongs to, independently
// toggleable via configuration (spec.md §4.2).
type Category string

const (
	Quality  Category = "Quality"
	Security Category = "Security"
)

// Context bundles everything a Rule needs to inspect one file.
type Context struct {
	File      *parsing.ParsedFile
	Artifacts *semantic.Artifacts
	Graph     *taint.Graph
	Findings  []taint.Finding
	Config    config.Interface
}

// Rule is one named, independently gated check.
type Rule interface {
	ID() string
	Name() string
	Category() Category
	DefaultSeverity() diagnostic.Severity
	MinTier() tier.Tier
	Run(ctx *Context) []diagnostic.Diagnostic
}

// Registry holds the fixed rule catalog and applies the tier,
// category, and disabled-set filters of spec.md §4.2 at run time.
type Registry struct {
	rules []Rule
}

// NewRegistry builds the full catalog: every Quality rule plus the
// Security catalog (spec-mandated and supplemental), in a fixed,
// deterministic order.
func NewRegistry(quality, security []Rule) *Registry {
	r := &Registry{}
	r.rules = append(r.rules, quality...)
	r.rules = append(r.rules, security...)
	return r
}

// All returns the full registered catalog, independent of filtering.
func (r *Registry) All() []Rule { return r.rules }

// ShouldRun applies spec.md §4.2's filter chain: tier gating, the
// category toggle, then the explicit disabled-rule-ID set.
func ShouldRun(rule Rule, activeTier tier.Tier, rc config.RulesConfig) bool {
	if !activeTier.Meets(rule.MinTier()) {
		return false
	}
	switch rule.Category() {
	case Quality:
		if !rc.QualityEnabled {
			return false
		}
	case Security:
		if !rc.SecurityEnabled {
			return false
		}
	}
	for _, id := range rc.Disabled {
		if id == rule.ID() {
			return false
		}
	}
	return true
}

// EffectiveSeverity applies a configuration-supplied per-rule severity
// override, falling back to the rule's default.
func EffectiveSeverity(rule Rule, rc config.RulesConfig) diagnostic.Severity {
	if s, ok := rc.Severity[rule.ID()]; ok {
		return diagnostic.ParseSeverity(s)
	}
	return rule.DefaultSeverity()
}

// RunAll runs every rule that ShouldRun admits, stamping each
// resulting diagnostic with the rule's effective severity, then
// returns the combined, unsorted slice — ordering and suppression
// filtering are the engine facade's job (spec.md §4.1). A panic inside
// one rule's Run is recovered per spec.md §7: only that rule's
// contribution is discarded, the resulting rule-internal-error
// diagnostic is stamped with the panicking rule's own ID, and every
// other rule still runs.
func RunAll(registry *Registry, ctx *Context, activeTier tier.Tier, rc config.RulesConfig) []diagnostic.Diagnostic {
	var out []diagnostic.Diagnostic
	ordered := make([]Rule, len(registry.rules))
	copy(ordered, registry.rules)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ID() < ordered[j].ID() })

	for _, rule := range ordered {
		if !ShouldRun(rule, activeTier, rc) {
			continue
		}
		severity := EffectiveSeverity(rule, rc)
		diags, ruleErr := runRuleSafely(rule, ctx)
		if ruleErr != nil {
			out = append(out, diagnostic.Diagnostic{
				RuleID:   rule.ID(),
				RuleName: rule.Name(),
				Category: diagnostic.Category(rule.Category()),
				Severity: diagnostic.Error,
				Message:  fmt.Sprintf("internal error in rule %s: %v", rule.ID(), ruleErr),
				File:     ctx.File.Filename,
			})
			continue
		}
		for _, d := range diags {
			d.RuleID = rule.ID()
			d.RuleName = rule.Name()
			d.Category = diagnostic.Category(rule.Category())
			d.Severity = severity
			out = append(out, d)
		}
	}
	return out
}

// runRuleSafely isolates one rule's Run call so a panic in its logic
// cannot abort the rest of the catalog or the surrounding pipeline.
func runRuleSafely(rule Rule, ctx *Context) (diags []diagnostic.Diagnostic, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return rule.Run(ctx), nil
}
