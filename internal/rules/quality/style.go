package quality

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kzn-tools/kaizen/internal/diagnostic"
	"github.com/kzn-tools/kaizen/internal/rules"
	"github.com/kzn-tools/kaizen/internal/semantic"
	"github.com/kzn-tools/kaizen/internal/tier"
)

// suggestOptionalChainRule flags a guard of the shape `a && a.b` that
// could be written `a?.b`.
type suggestOptionalChainRule struct{}

func (suggestOptionalChainRule) ID() string                          { return "Q022" }
func (suggestOptionalChainRule) Name() string                        { return "suggest-optional-chain" }
func (suggestOptionalChainRule) Category() rules.Category              { return rules.Quality }
func (suggestOptionalChainRule) DefaultSeverity() diagnostic.Severity { return diagnostic.Hint }
func (suggestOptionalChainRule) MinTier() tier.Tier                   { return tier.Free }

func (suggestOptionalChainRule) Run(ctx *rules.Context) []diagnostic.Diagnostic {
	var out []diagnostic.Diagnostic
	source := ctx.File.Source
	walkAST(ctx.File.Root, func(n *sitter.Node) {
		if n.Type() != "binary_expression" {
			return
		}
		op := n.ChildByFieldName("operator")
		if op == nil || content(op, source) != "&&" {
			return
		}
		left := n.ChildByFieldName("left")
		right := n.ChildByFieldName("right")
		if left == nil || right == nil {
			return
		}
		leftName := content(left, source)
		if right.Type() == "member_expression" && strings.HasPrefix(content(right, source), leftName+".") {
			out = append(out, rules.Diag(ctx.File.Filename, ctx.File.NodeRange(n),
				"this null-guard can be written with optional chaining",
				"replace `"+leftName+" && "+content(right, source)+"` with `"+leftName+"?."+strings.TrimPrefix(content(right, source), leftName+".")+"`",
				diagnostic.Medium))
		}
	})
	return out
}

// suggestNullishDefaultRule flags `a || defaultValue` used in a
// default-value position, which silently also triggers on falsy
// values like 0 or "" — `??` is almost always the intended operator.
type suggestNullishDefaultRule struct{}

func (suggestNullishDefaultRule) ID() string                          { return "Q023" }
func (suggestNullishDefaultRule) Name() string                        { return "suggest-nullish-default" }
func (suggestNullishDefaultRule) Category() rules.Category              { return rules.Quality }
func (suggestNullishDefaultRule) DefaultSeverity() diagnostic.Severity { return diagnostic.Hint }
func (suggestNullishDefaultRule) MinTier() tier.Tier                   { return tier.Free }

func (suggestNullishDefaultRule) Run(ctx *rules.Context) []diagnostic.Diagnostic {
	var out []diagnostic.Diagnostic
	source := ctx.File.Source
	walkAST(ctx.File.Root, func(n *sitter.Node) {
		if n.Type() != "binary_expression" {
			return
		}
		op := n.ChildByFieldName("operator")
		if op == nil || content(op, source) != "||" {
			return
		}
		right := n.ChildByFieldName("right")
		if right == nil {
			return
		}
		switch right.Type() {
		case "number", "string", "false":
			out = append(out, rules.Diag(ctx.File.Filename, ctx.File.NodeRange(n),
				"`||` falls through on any falsy value, not just null/undefined",
				"use `??` if only null/undefined should trigger the default",
				diagnostic.Low))
		}
	})
	return out
}

// disallowLegacyBindingRule flags `var`, preferring block-scoped
// let/const.
type disallowLegacyBindingRule struct{}

func (disallowLegacyBindingRule) ID() string                          { return "Q030" }
func (disallowLegacyBindingRule) Name() string                        { return "no-var" }
func (disallowLegacyBindingRule) Category() rules.Category              { return rules.Quality }
func (disallowLegacyBindingRule) DefaultSeverity() diagnostic.Severity { return diagnostic.Warning }
func (disallowLegacyBindingRule) MinTier() tier.Tier                   { return tier.Free }

func (disallowLegacyBindingRule) Run(ctx *rules.Context) []diagnostic.Diagnostic {
	var out []diagnostic.Diagnostic
	walkAST(ctx.File.Root, func(n *sitter.Node) {
		if n.Type() != "variable_declaration" {
			return
		}
		if n.Child(0) != nil && n.Child(0).Type() == "var" {
			out = append(out, rules.Diag(ctx.File.Filename, ctx.File.NodeRange(n),
				"`var` has function scope and is hoisted; prefer `let` or `const`",
				"replace `var` with `let` (or `const` if never reassigned)",
				diagnostic.High))
		}
	})
	return out
}

// preferImmutableBindingRule flags a mutable binding (`var` or `let`)
// that the Symbol Table recorded as never reassigned after its
// initializer, which could have been `const`. spec.md's worked
// scenario 2 requires `var x = 1;` to produce both Q030
// (disallowLegacyBindingRule) and Q031 on the same declaration, so
// this must not gate on `let` alone.
type preferImmutableBindingRule struct{}

func (preferImmutableBindingRule) ID() string                          { return "Q031" }
func (preferImmutableBindingRule) Name() string                        { return "prefer-const" }
func (preferImmutableBindingRule) Category() rules.Category              { return rules.Quality }
func (preferImmutableBindingRule) DefaultSeverity() diagnostic.Severity { return diagnostic.Hint }
func (preferImmutableBindingRule) MinTier() tier.Tier                   { return tier.Free }

func (preferImmutableBindingRule) Run(ctx *rules.Context) []diagnostic.Diagnostic {
	var out []diagnostic.Diagnostic
	for _, sym := range ctx.Artifacts.Symbols.All() {
		if sym.DeclarationKind != semantic.DeclLet && sym.DeclarationKind != semantic.DeclVar {
			continue
		}
		if sym.Writes == 0 {
			out = append(out, rules.Diag(ctx.File.Filename, sym.Range,
				"\""+sym.Name+"\" is never reassigned after initialization",
				"declare it with `const` instead of `let`",
				diagnostic.Medium))
		}
	}
	return out
}

// disallowConsoleRule flags console.* calls left in non-test source.
type disallowConsoleRule struct{}

func (disallowConsoleRule) ID() string                          { return "Q032" }
func (disallowConsoleRule) Name() string                        { return "no-console" }
func (disallowConsoleRule) Category() rules.Category              { return rules.Quality }
func (disallowConsoleRule) DefaultSeverity() diagnostic.Severity { return diagnostic.Info }
func (disallowConsoleRule) MinTier() tier.Tier                   { return tier.Free }

func (disallowConsoleRule) Run(ctx *rules.Context) []diagnostic.Diagnostic {
	var out []diagnostic.Diagnostic
	source := ctx.File.Source
	walkAST(ctx.File.Root, func(n *sitter.Node) {
		if n.Type() != "call_expression" {
			return
		}
		callee := n.ChildByFieldName("function")
		path := flattenCallPath(callee, source)
		if len(path) == 2 && path[0] == "console" {
			out = append(out, rules.Diag(ctx.File.Filename, ctx.File.NodeRange(n),
				"console."+path[1]+" left in source",
				"remove the console call, or route it through the project logger",
				diagnostic.High))
		}
	})
	return out
}

// strictEqualityRule flags `==`/`!=`, which perform type coercion.
type strictEqualityRule struct{}

func (strictEqualityRule) ID() string                          { return "Q033" }
func (strictEqualityRule) Name() string                        { return "strict-equality" }
func (strictEqualityRule) Category() rules.Category              { return rules.Quality }
func (strictEqualityRule) DefaultSeverity() diagnostic.Severity { return diagnostic.Warning }
func (strictEqualityRule) MinTier() tier.Tier                   { return tier.Free }

func (strictEqualityRule) Run(ctx *rules.Context) []diagnostic.Diagnostic {
	var out []diagnostic.Diagnostic
	source := ctx.File.Source
	walkAST(ctx.File.Root, func(n *sitter.Node) {
		if n.Type() != "binary_expression" {
			return
		}
		op := n.ChildByFieldName("operator")
		if op == nil {
			return
		}
		text := content(op, source)
		if text != "==" && text != "!=" {
			return
		}
		out = append(out, rules.Diag(ctx.File.Filename, ctx.File.NodeRange(n),
			"`"+text+"` performs implicit type coercion",
			"use `"+text+"="+"` for strict comparison",
			diagnostic.High))
	})
	return out
}

// disallowDynamicEvalRule flags `eval(...)` and `new Function(...)`,
// which both execute a runtime string as code.
type disallowDynamicEvalRule struct{}

func (disallowDynamicEvalRule) ID() string                          { return "Q034" }
func (disallowDynamicEvalRule) Name() string                        { return "no-eval" }
func (disallowDynamicEvalRule) Category() rules.Category              { return rules.Quality }
func (disallowDynamicEvalRule) DefaultSeverity() diagnostic.Severity { return diagnostic.Warning }
func (disallowDynamicEvalRule) MinTier() tier.Tier                   { return tier.Free }

func (disallowDynamicEvalRule) Run(ctx *rules.Context) []diagnostic.Diagnostic {
	var out []diagnostic.Diagnostic
	source := ctx.File.Source
	walkAST(ctx.File.Root, func(n *sitter.Node) {
		switch n.Type() {
		case "call_expression":
			path := flattenCallPath(n.ChildByFieldName("function"), source)
			if len(path) == 1 && path[0] == "eval" {
				out = append(out, rules.Diag(ctx.File.Filename, ctx.File.NodeRange(n),
					"`eval` executes arbitrary code at runtime",
					"replace with explicit logic; avoid dynamic code execution",
					diagnostic.High))
			}
		case "new_expression":
			ctor := n.ChildByFieldName("constructor")
			path := flattenCallPath(ctor, source)
			if len(path) == 1 && path[0] == "Function" {
				out = append(out, rules.Diag(ctx.File.Filename, ctx.File.NodeRange(n),
					"`new Function(...)` compiles arbitrary code at runtime, like `eval`",
					"replace with an explicit function definition",
					diagnostic.High))
			}
		}
	})
	return out
}
