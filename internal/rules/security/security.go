// Package security implements the spec-mandated and supplemental
// Security-category rules of spec.md §4.2 and SPEC_FULL.md §7,
// grounded on original_source/crates/kaizen-core/src/rules/security/
// and the teacher's internal/analysis/static/javascript taint walker
// for which call shapes count as sinks/sources/sanitizers.
package security

import "github.com/kzn-tools/kaizen/internal/rules"

// codeInjectionCoreSinks are the eval-family sinks spec.md's
// mandated "code-injection" rule (S005) covers. S022 covers the
// remaining CodeInjection-category sinks (the deserialization-shaped
// ones) by sink path, so the two rules partition one taint Category
// without either double-reporting the same Finding.
var codeInjectionCoreSinks = map[string]bool{
	"eval":        true,
	"Function":    true,
	"setTimeout":  true,
	"setInterval": true,
}

// unsafeDeserializationSinks are the CodeInjection-category sinks
// SPEC_FULL.md's S022 names explicitly: deserializers/sandboxed-eval
// entry points the spec-mandated 7-rule catalog does not already cover
// by name.
var unsafeDeserializationSinks = map[string]bool{
	"vm.runInNewContext":        true,
	"vm.runInContext":           true,
	"yaml.load":                 true,
	"node-serialize.unserialize": true,
}

// All returns the fixed Security rule catalog: the 7 spec-mandated
// rules (4 taint-flow, 3 AST-pattern) plus the 3 supplemental rules original_source
// carries that spec.md's distillation dropped.
func All() []rules.Rule {
	return []rules.Rule{
		taintRule{id: "S001", name: "no-sql-injection", category: "SqlInjection"},
		taintRule{id: "S002", name: "no-xss", category: "Xss"},
		taintRule{id: "S003", name: "no-command-injection", category: "CommandInjection"},
		taintRule{id: "S005", name: "no-code-injection", category: "CodeInjection", sinkPaths: codeInjectionCoreSinks},
		taintRule{id: "S020", name: "no-prototype-pollution", category: "PrototypePollution"},
		hardcodedSecretRule{},
		weakHashRule{},
		insecureRandomnessRule{},
		unsafeRegexRule{},
		taintRule{id: "S022", name: "no-unsafe-deserialization", category: "CodeInjection", sinkPaths: unsafeDeserializationSinks},
	}
}
