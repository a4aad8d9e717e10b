package semantic

import "github.com/kzn-tools/kaizen/internal/parsing"

// SymbolID is a stable handle into a SymbolTable's arena.
type SymbolID int

// SymbolKind classifies what a declared name represents, per spec.md
// §3 Symbol.
type SymbolKind int

const (
	SymConst SymbolKind = iota
	SymMutableBinding
	SymFunctionScoped
	SymParameter
	SymImport
	SymClass
	SymFunctionDecl
	SymTypeAlias
)

// DeclarationKind is the originating syntactic binding form.
type DeclarationKind int

const (
	DeclVar DeclarationKind = iota
	DeclLet
	DeclConst
	DeclFunction
	DeclClass
	DeclParameter
	DeclImport
)

// Symbol is one declared name within a Scope.
type Symbol struct {
	ID              SymbolID
	Name            string
	Kind            SymbolKind
	DeclarationKind DeclarationKind
	Scope           ScopeID
	Range           parsing.Range
	Exported        bool
	Underscored     bool

	Uses   []parsing.Range
	Writes int
	Reads  int
}

// SymbolTable owns all Symbols discovered by Builder, addressed by
// SymbolID across the Scope Tree.
type SymbolTable struct {
	arena []Symbol
	// freeReferences are reads that resolved to no declared symbol,
	// attributed to the root scope per spec.md §3.
	freeReferences []parsing.Range
}

func newSymbolTable() *SymbolTable {
	return &SymbolTable{}
}

func (st *SymbolTable) declare(name string, kind SymbolKind, declKind DeclarationKind, scope ScopeID, r parsing.Range) SymbolID {
	id := SymbolID(len(st.arena))
	st.arena = append(st.arena, Symbol{
		ID:              id,
		Name:            name,
		Kind:            kind,
		DeclarationKind: declKind,
		Scope:           scope,
		Range:           r,
		Underscored:     len(name) > 0 && name[0] == '_',
	})
	return id
}

// Get returns the Symbol for id.
func (st *SymbolTable) Get(id SymbolID) *Symbol { return &st.arena[id] }

// All returns every declared symbol, in declaration order.
func (st *SymbolTable) All() []Symbol { return st.arena }

// FreeReferences returns use-sites that never resolved to a declared
// symbol.
func (st *SymbolTable) FreeReferences() []parsing.Range { return st.freeReferences }

func (st *SymbolTable) addRead(id SymbolID, r parsing.Range) {
	sym := &st.arena[id]
	sym.Reads++
	sym.Uses = append(sym.Uses, r)
}

func (st *SymbolTable) addWrite(id SymbolID) {
	st.arena[id].Writes++
}

func (st *SymbolTable) markExported(id SymbolID) {
	st.arena[id].Exported = true
}
