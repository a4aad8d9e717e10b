// Package quality implements the 15 Quality-category rules of
// spec.md §4.2's default catalog, grounded on the teacher's
// internal/analysis/static/javascript walker for AST traversal idiom
// and on original_source/crates/kaizen-core/src/rules/quality/*.rs for
// rule semantics the distilled spec.md left implicit.
package quality

import "github.com/kzn-tools/kaizen/internal/rules"

// All returns the fixed Quality rule catalog in a stable order.
func All() []rules.Rule {
	return []rules.Rule{
		unusedBindingRule{},
		writeOnlyBindingRule{},
		unusedImportRule{},
		unreachableCodeRule{},
		maxCyclomaticRule{},
		maxNestingRule{},
		preferScopedResourceRule{},
		unhandledAsyncRule{},
		suggestOptionalChainRule{},
		suggestNullishDefaultRule{},
		disallowLegacyBindingRule{},
		preferImmutableBindingRule{},
		disallowConsoleRule{},
		strictEqualityRule{},
		disallowDynamicEvalRule{},
	}
}
