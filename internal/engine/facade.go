// Package engine implements the engine facade of spec.md §4.1: a
// pure, per-file Analyze function with no shared mutable state, plus
// a cross-file concurrent Driver (spec.md §5 explicitly delegates
// cross-file parallelism to "an external driver").
package engine

import (
	"context"
	"fmt"

	"github.com/kzn-tools/kaizen/internal/config"
	"github.com/kzn-tools/kaizen/internal/diagnostic"
	"github.com/kzn-tools/kaizen/internal/parsing"
	"github.com/kzn-tools/kaizen/internal/rules"
	"github.com/kzn-tools/kaizen/internal/rules/quality"
	"github.com/kzn-tools/kaizen/internal/rules/security"
	"github.com/kzn-tools/kaizen/internal/semantic"
	"github.com/kzn-tools/kaizen/internal/suppress"
	"github.com/kzn-tools/kaizen/internal/taint"
	"github.com/kzn-tools/kaizen/internal/tier"
)

// Engine owns the immutable, file-independent state shared read-only
// across concurrent Analyze calls: the rule catalog and the disposable
// catalog (spec.md §5). The taint registry depends on each call's
// configuration and is built inside Analyze.
type Engine struct {
	rules      *rules.Registry
	disposable *semantic.DisposableCatalog
}

// New builds an Engine with the built-in rule and disposable catalogs.
// Neither depends on configuration, so callers build one Engine per
// Analyze-call batch (typically once per `kaizen scan` invocation) and
// reuse it.
func New() *Engine {
	return &Engine{
		rules:      rules.NewRegistry(quality.All(), security.All()),
		disposable: semantic.DefaultDisposableCatalog(),
	}
}

// Analyze runs the full per-file pipeline of spec.md §4.1 against one
// already-parsed file: build semantic artifacts, build the taint Data
// Flow Graph and run the propagator, run every admitted rule, apply
// severity overrides, filter by minimum severity/confidence and
// suppression comments, then return the diagnostics in §4.1's sorted
// order. Analyze touches no state shared with any concurrent call:
// the Engine's rule and disposable catalogs are read-only, and the
// taint registry and a file's ParsedFile/Artifacts/Graph are
// exclusively owned by this call.
func Analyze(ctx context.Context, eng *Engine, file *parsing.ParsedFile, cfg config.Interface, activeTier tier.Tier) []diagnostic.Diagnostic {
	if file.HasFatalError() {
		return []diagnostic.Diagnostic{{
			RuleID:   diagnostic.IDParseError,
			Severity: diagnostic.Error,
			Message:  "source could not be parsed; no rules were run for this file",
			File:     file.Filename,
		}}
	}

	select {
	case <-ctx.Done():
		return []diagnostic.Diagnostic{{
			RuleID:   diagnostic.IDAnalysisCancelled,
			Severity: diagnostic.Info,
			Message:  "analysis was cancelled before it completed",
			File:     file.Filename,
		}}
	default:
	}

	rc := cfg.Rules()

	diags := runRulesSafely(eng, file, cfg, rc, activeTier)

	for _, pe := range file.Errors {
		diags = append(diags, diagnostic.Diagnostic{
			RuleID:   diagnostic.IDParseError,
			Severity: diagnostic.Warning,
			Message:  pe.Message,
			File:     file.Filename,
			Range:    rules.ToDiagRange(pe.Range),
		})
	}
	minSeverity := diagnostic.ParseSeverity(rc.MinSeverity)
	minConfidence := diagnostic.ParseConfidence(rc.MinConfidence)
	suppressions := suppress.Build(file.Source)

	out := diags[:0]
	for _, d := range diags {
		if !d.Severity.Meets(minSeverity) {
			continue
		}
		if d.Confidence != "" && !d.Confidence.Meets(minConfidence) {
			continue
		}
		if suppressions.IsSuppressed(d.Range.Start.Line, d.RuleID, d.RuleName) {
			continue
		}
		out = append(out, d)
	}

	diagnostic.Sort(out)
	return out
}

// runRulesSafely builds the semantic/taint artifacts and runs every
// admitted rule. A panic inside one rule is recovered by rules.RunAll
// for that rule alone; a panic anywhere else here (e.g. while building
// the artifacts or the taint graph) is recovered into a single
// rule-internal-error diagnostic that replaces this file's output,
// per spec.md §7, rather than crashing the caller.
func runRulesSafely(eng *Engine, file *parsing.ParsedFile, cfg config.Interface, rc config.RulesConfig, activeTier tier.Tier) (out []diagnostic.Diagnostic) {
	defer func() {
		if r := recover(); r != nil {
			out = []diagnostic.Diagnostic{{
				RuleID:   diagnostic.IDRuleInternalError,
				Severity: diagnostic.Error,
				Message:  fmt.Sprintf("internal analysis error: %v", r),
				File:     file.Filename,
			}}
		}
	}()

	artifacts := semantic.Build(file, eng.disposable)
	for _, limit := range artifacts.Limits {
		out = append(out, diagnostic.Diagnostic{
			RuleID:   diagnostic.IDInternalLimit,
			Severity: diagnostic.Info,
			Message:  "analysis of this function was skipped after exceeding an internal complexity limit",
			File:     file.Filename,
			Range:    rules.ToDiagRange(limit),
		})
	}

	registry := taint.NewRegistry(rc.Taint)
	graph := taint.BuildGraph(file, registry)
	findings := taint.Propagate(graph)

	rctx := &rules.Context{
		File:      file,
		Artifacts: artifacts,
		Graph:     graph,
		Findings:  findings,
		Config:    cfg,
	}
	out = append(out, rules.RunAll(eng.rules, rctx, activeTier, rc)...)
	return out
}
