package quality

import (
	"fmt"

	"github.com/kzn-tools/kaizen/internal/diagnostic"
	"github.com/kzn-tools/kaizen/internal/rules"
	"github.com/kzn-tools/kaizen/internal/semantic"
	"github.com/kzn-tools/kaizen/internal/tier"
)

// unreachableCodeRule flags any CFG block marked unreachable by the
// semantic builder's forward DFS from each function's entry block.
type unreachableCodeRule struct{}

func (unreachableCodeRule) ID() string                          { return "Q004" }
func (unreachableCodeRule) Name() string                        { return "no-unreachable-code" }
func (unreachableCodeRule) Category() rules.Category              { return rules.Quality }
func (unreachableCodeRule) DefaultSeverity() diagnostic.Severity { return diagnostic.Warning }
func (unreachableCodeRule) MinTier() tier.Tier                   { return tier.Free }

func (unreachableCodeRule) Run(ctx *rules.Context) []diagnostic.Diagnostic {
	var out []diagnostic.Diagnostic
	for _, cfg := range ctx.Artifacts.CFGs {
		for _, b := range cfg.Blocks {
			if b.ID == cfg.Entry || b.Reachable {
				continue
			}
			out = append(out, rules.Diag(ctx.File.Filename, b.Range,
				"this code can never execute",
				"remove the unreachable statement, or check the preceding control flow",
				diagnostic.High))
		}
	}
	return out
}

// maxCyclomaticRule flags functions whose cyclomatic complexity
// (branch-count-derived, CFG edges - nodes + 2 for a single connected
// function graph) exceeds a fixed threshold.
type maxCyclomaticRule struct{}

const cyclomaticThreshold = 12

func (maxCyclomaticRule) ID() string                          { return "Q010" }
func (maxCyclomaticRule) Name() string                        { return "max-cyclomatic-complexity" }
func (maxCyclomaticRule) Category() rules.Category              { return rules.Quality }
func (maxCyclomaticRule) DefaultSeverity() diagnostic.Severity { return diagnostic.Warning }
func (maxCyclomaticRule) MinTier() tier.Tier                   { return tier.Free }

func (maxCyclomaticRule) Run(ctx *rules.Context) []diagnostic.Diagnostic {
	var out []diagnostic.Diagnostic
	for _, cfg := range ctx.Artifacts.CFGs {
		edges := 0
		for _, b := range cfg.Blocks {
			edges += len(b.Successors)
		}
		complexity := edges - len(cfg.Blocks) + 2
		if complexity > cyclomaticThreshold {
			out = append(out, rules.Diag(ctx.File.Filename, cfg.FunctionRange,
				fmt.Sprintf("function has cyclomatic complexity %d, exceeding the threshold of %d", complexity, cyclomaticThreshold),
				"split the function into smaller, single-purpose functions",
				diagnostic.Medium))
		}
	}
	return out
}

// maxNestingRule flags statement blocks nested more than a fixed
// depth within a function, measuring depth as the number of enclosing
// block scopes in the scope tree rather than walking the raw AST.
type maxNestingRule struct{}

const nestingThreshold = 4

func (maxNestingRule) ID() string                          { return "Q011" }
func (maxNestingRule) Name() string                        { return "max-nesting-depth" }
func (maxNestingRule) Category() rules.Category              { return rules.Quality }
func (maxNestingRule) DefaultSeverity() diagnostic.Severity { return diagnostic.Warning }
func (maxNestingRule) MinTier() tier.Tier                   { return tier.Free }

func (maxNestingRule) Run(ctx *rules.Context) []diagnostic.Diagnostic {
	var out []diagnostic.Diagnostic
	for _, scope := range ctx.Artifacts.Scopes.All() {
		if scope.Kind != semantic.ScopeBlock {
			continue
		}
		depth := blockNestingDepth(ctx.Artifacts.Scopes, scope.ID)
		if depth > nestingThreshold {
			out = append(out, rules.Diag(ctx.File.Filename, scope.Range,
				fmt.Sprintf("block is nested %d levels deep, exceeding the threshold of %d", depth, nestingThreshold),
				"extract the innermost block into a named helper function",
				diagnostic.Medium))
		}
	}
	return out
}

func blockNestingDepth(tree *semantic.ScopeTree, id semantic.ScopeID) int {
	depth := 0
	for _, anc := range tree.Ancestors(id) {
		if tree.Get(anc).Kind == semantic.ScopeBlock {
			depth++
		}
	}
	return depth
}
