package quality

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kzn-tools/kaizen/internal/diagnostic"
	"github.com/kzn-tools/kaizen/internal/parsing"
	"github.com/kzn-tools/kaizen/internal/rules"
	"github.com/kzn-tools/kaizen/internal/tier"
)

// preferScopedResourceRule flags every disposable-producing call (per
// the DisposableCatalog, spec.md §3) in a function body that contains
// no call whose final name is close, release, end, or destroy — a
// coarse, intra-function heuristic: how the result is bound and
// whether a try/finally surrounds it are not checked, grounded on the
// teacher's prefer-scoped-resource intent described in
// original_source's quality rule catalog.
type preferScopedResourceRule struct{}

func (preferScopedResourceRule) ID() string                          { return "Q020" }
func (preferScopedResourceRule) Name() string                        { return "prefer-scoped-resource" }
func (preferScopedResourceRule) Category() rules.Category              { return rules.Quality }
func (preferScopedResourceRule) DefaultSeverity() diagnostic.Severity { return diagnostic.Info }
func (preferScopedResourceRule) MinTier() tier.Tier                   { return tier.Pro }

func (preferScopedResourceRule) Run(ctx *rules.Context) []diagnostic.Diagnostic {
	var out []diagnostic.Diagnostic
	source := ctx.File.Source
	for _, cfg := range ctx.Artifacts.CFGs {
		fnNode := nodeAt(ctx.File.Root, cfg.FunctionRange)
		if fnNode == nil {
			continue
		}
		var releaseCalls []string
		var acquisitions []*sitter.Node
		walkAST(fnNode, func(n *sitter.Node) {
			if n.Type() != "call_expression" {
				return
			}
			callee := n.ChildByFieldName("function")
			path := flattenCallPath(callee, source)
			if path == nil {
				return
			}
			if _, ok := ctx.Artifacts.Disposables.Match(path); ok {
				acquisitions = append(acquisitions, n)
			}
			last := path[len(path)-1]
			if last == "close" || last == "release" || last == "end" || last == "destroy" {
				releaseCalls = append(releaseCalls, last)
			}
		})
		if len(acquisitions) > 0 && len(releaseCalls) == 0 {
			for _, n := range acquisitions {
				out = append(out, rules.Diag(ctx.File.Filename, ctx.File.NodeRange(n),
					"acquired resource is never explicitly released in this function",
					"release the resource in a try/finally block, or scope it with `using`",
					diagnostic.Low))
			}
		}
	}
	return out
}

// unhandledAsyncRule flags a call to an async-returning expression
// (heuristically: an expression-statement call whose final callee name
// is one of the common async verbs in isAsyncLooking, such as `fetch`;
// other names, e.g. `axios(...)`, are not matched) that is neither
// awaited nor chained with `.catch(`, risking an unhandled promise
// rejection.
type unhandledAsyncRule struct{}

func (unhandledAsyncRule) ID() string                          { return "Q021" }
func (unhandledAsyncRule) Name() string                        { return "no-unhandled-async" }
func (unhandledAsyncRule) Category() rules.Category              { return rules.Quality }
func (unhandledAsyncRule) DefaultSeverity() diagnostic.Severity { return diagnostic.Warning }
func (unhandledAsyncRule) MinTier() tier.Tier                   { return tier.Free }

func (unhandledAsyncRule) Run(ctx *rules.Context) []diagnostic.Diagnostic {
	var out []diagnostic.Diagnostic
	source := ctx.File.Source
	walkAST(ctx.File.Root, func(n *sitter.Node) {
		if n.Type() != "expression_statement" {
			return
		}
		expr := n.Child(0)
		if expr == nil || expr.Type() != "call_expression" {
			return
		}
		callee := expr.ChildByFieldName("function")
		path := flattenCallPath(callee, source)
		if path == nil {
			return
		}
		last := path[len(path)-1]
		if !isAsyncLooking(last) {
			return
		}
		if last == "catch" || last == "then" {
			return
		}
		out = append(out, rules.Diag(ctx.File.Filename, ctx.File.NodeRange(n),
			"async call result is discarded without awaiting or handling a rejection",
			"add `await`, or chain `.catch(...)` to handle a possible rejection",
			diagnostic.Low))
	})
	return out
}

func isAsyncLooking(name string) bool {
	switch name {
	case "fetch", "query", "save", "send", "write", "readFile", "writeFile", "connect", "request":
		return true
	default:
		return false
	}
}

func nodeAt(root *sitter.Node, r parsing.Range) *sitter.Node {
	var found *sitter.Node
	walkAST(root, func(n *sitter.Node) {
		if n.IsNamed() && (n.Type() == "function_declaration" || n.Type() == "function" ||
			n.Type() == "arrow_function" || n.Type() == "method_definition" || n.Type() == "generator_function_declaration") {
			if int(n.StartPoint().Row)+1 == r.Start.Line {
				found = n
			}
		}
	})
	return found
}

func flattenCallPath(n *sitter.Node, source []byte) []string {
	if n == nil {
		return nil
	}
	var path []string
	current := n
	for current != nil {
		switch current.Type() {
		case "identifier", "property_identifier":
			return append([]string{content(current, source)}, path...)
		case "member_expression":
			object := current.ChildByFieldName("object")
			property := current.ChildByFieldName("property")
			if object == nil || property == nil {
				return nil
			}
			path = append([]string{content(property, source)}, path...)
			current = object
		default:
			return nil
		}
	}
	return nil
}
