package quality

import (
	"fmt"

	"github.com/kzn-tools/kaizen/internal/diagnostic"
	"github.com/kzn-tools/kaizen/internal/rules"
	"github.com/kzn-tools/kaizen/internal/semantic"
	"github.com/kzn-tools/kaizen/internal/tier"
)

// unusedBindingRule flags a declared, non-exported binding that is
// never read, grounded on original_source's unused_binding.rs which
// walks the Symbol Table rather than the AST directly.
type unusedBindingRule struct{}

func (unusedBindingRule) ID() string                           { return "Q001" }
func (unusedBindingRule) Name() string                         { return "no-unused-binding" }
func (unusedBindingRule) Category() rules.Category              { return rules.Quality }
func (unusedBindingRule) DefaultSeverity() diagnostic.Severity  { return diagnostic.Warning }
func (unusedBindingRule) MinTier() tier.Tier                    { return tier.Free }

func (unusedBindingRule) Run(ctx *rules.Context) []diagnostic.Diagnostic {
	var out []diagnostic.Diagnostic
	for _, sym := range ctx.Artifacts.Symbols.All() {
		if sym.Exported || sym.Underscored {
			continue
		}
		if sym.Kind == semantic.SymImport || sym.Kind == semantic.SymParameter {
			continue // handled by Q003 and left alone respectively
		}
		if sym.Reads == 0 {
			out = append(out, diagnostic.Diagnostic{
				Message:    fmt.Sprintf("%q is declared but never read", sym.Name),
				Suggestion: "remove the unused binding, or prefix it with _ to mark it intentional",
				Confidence: diagnostic.High,
				File:       ctx.File.Filename,
				Range:      rules.ToDiagRange(sym.Range),
			})
		}
	}
	return out
}

// writeOnlyBindingRule flags a declared, non-exported binding that is
// only ever assigned and never read back (reads==0, writes>=1),
// spec.md:140's write-only variant. unusedBindingRule fires on
// reads==0 alone, so such a binding is reported by both rules.
type writeOnlyBindingRule struct{}

func (writeOnlyBindingRule) ID() string                          { return "Q002" }
func (writeOnlyBindingRule) Name() string                        { return "no-write-only-binding" }
func (writeOnlyBindingRule) Category() rules.Category              { return rules.Quality }
func (writeOnlyBindingRule) DefaultSeverity() diagnostic.Severity { return diagnostic.Warning }
func (writeOnlyBindingRule) MinTier() tier.Tier                   { return tier.Free }

func (writeOnlyBindingRule) Run(ctx *rules.Context) []diagnostic.Diagnostic {
	var out []diagnostic.Diagnostic
	for _, sym := range ctx.Artifacts.Symbols.All() {
		if sym.Exported || sym.Underscored {
			continue
		}
		if sym.Kind == semantic.SymImport || sym.Kind == semantic.SymParameter {
			continue
		}
		if sym.Reads == 0 && sym.Writes >= 1 {
			out = append(out, diagnostic.Diagnostic{
				Message:    fmt.Sprintf("%q is assigned but its value is never read", sym.Name),
				Suggestion: "remove the write-only binding, or read the value it holds",
				Confidence: diagnostic.Medium,
				File:       ctx.File.Filename,
				Range:      rules.ToDiagRange(sym.Range),
			})
		}
	}
	return out
}

// unusedImportRule flags an imported binding that is never read.
type unusedImportRule struct{}

func (unusedImportRule) ID() string                          { return "Q003" }
func (unusedImportRule) Name() string                        { return "no-unused-import" }
func (unusedImportRule) Category() rules.Category             { return rules.Quality }
func (unusedImportRule) DefaultSeverity() diagnostic.Severity { return diagnostic.Warning }
func (unusedImportRule) MinTier() tier.Tier                   { return tier.Free }

func (unusedImportRule) Run(ctx *rules.Context) []diagnostic.Diagnostic {
	var out []diagnostic.Diagnostic
	for _, sym := range ctx.Artifacts.Symbols.All() {
		if sym.Kind != semantic.SymImport || sym.Underscored {
			continue
		}
		if sym.Reads == 0 {
			out = append(out, diagnostic.Diagnostic{
				Message:    fmt.Sprintf("imported name %q is never used", sym.Name),
				Suggestion: "remove the unused import",
				Confidence: diagnostic.High,
				File:       ctx.File.Filename,
				Range:      rules.ToDiagRange(sym.Range),
			})
		}
	}
	return out
}
