// Package semantic builds the Scope Tree, Symbol Table, Control-Flow
// Graph, and Disposable Catalog lookups the engine's rules consume.
//
// Cross-references between scopes, symbols, and CFG blocks are integer
// handles into arenas owned by a single builder pass, never pointers —
// the same "arena + stable indices" shape
// original_source/crates/kaizen-core/src/semantic/scope.rs realizes
// with id_arena::Arena<T> + Id<T>, translated here into plain Go
// slices owned by each table, indexed by those handles, since Go's
// standard library and this pack's dependency surface offer no
// ready-made arena type (see DESIGN.md).
package semantic

import "github.com/kzn-tools/kaizen/internal/parsing"

// ScopeID is a stable handle into a ScopeTree's arena.
type ScopeID int

// ScopeKind classifies the lexical region a Scope represents.
type ScopeKind int

const (
	ScopeGlobal ScopeKind = iota
	ScopeModule
	ScopeFunction
	ScopeArrowFunction
	ScopeBlock
	ScopeFor
	ScopeWhile
	ScopeSwitch
	ScopeTry
	ScopeCatch
	ScopeClass
)

// Scope is one node of the Scope Tree.
type Scope struct {
	ID       ScopeID
	Kind     ScopeKind
	Parent   ScopeID // -1 for the root
	HasParent bool
	Children []ScopeID
	Range    parsing.Range

	// bindings maps a declared name to its Symbol, split by hoisting
	// class: block-scoped kinds (let/const/class/import) live directly
	// in the scope that declares them; function-scoped kinds (var) are
	// bound only in the enclosing function (or global) scope.
	bindings map[string]SymbolID
}

// ScopeTree is a rooted tree of lexical scopes built by Builder.
type ScopeTree struct {
	arena []Scope
	root  ScopeID
}

func newScopeTree() *ScopeTree {
	return &ScopeTree{root: -1}
}

func (t *ScopeTree) createScope(kind ScopeKind, parent ScopeID, r parsing.Range) ScopeID {
	id := ScopeID(len(t.arena))
	s := Scope{
		ID:       id,
		Kind:     kind,
		Parent:   parent,
		HasParent: parent >= 0,
		Range:    r,
		bindings: make(map[string]SymbolID),
	}
	t.arena = append(t.arena, s)
	if parent >= 0 {
		t.arena[parent].Children = append(t.arena[parent].Children, id)
	}
	if t.root < 0 {
		t.root = id
	}
	return id
}

// Root returns the unique global scope's ID.
func (t *ScopeTree) Root() ScopeID { return t.root }

// All returns every Scope in creation order.
func (t *ScopeTree) All() []Scope { return t.arena }

// Get returns the Scope for id.
func (t *ScopeTree) Get(id ScopeID) *Scope { return &t.arena[id] }

// Ancestors returns id's scope chain, innermost first, including id
// itself.
func (t *ScopeTree) Ancestors(id ScopeID) []ScopeID {
	var out []ScopeID
	cur := id
	for {
		out = append(out, cur)
		s := t.arena[cur]
		if !s.HasParent {
			break
		}
		cur = s.Parent
	}
	return out
}

// IsDescendantOf reports whether scope is scope itself or a transitive
// child of ancestor.
func (t *ScopeTree) IsDescendantOf(scope, ancestor ScopeID) bool {
	for _, s := range t.Ancestors(scope) {
		if s == ancestor {
			return true
		}
	}
	return false
}

// Lookup performs upward scope-chain resolution of name starting at
// scope, returning the first bound SymbolID found.
func (t *ScopeTree) Lookup(scope ScopeID, name string) (SymbolID, bool) {
	for _, s := range t.Ancestors(scope) {
		if id, ok := t.arena[s].bindings[name]; ok {
			return id, true
		}
	}
	return -1, false
}

// declare binds name to sym within scope. The last declaration of a
// name in a scope wins, whatever its kind.
func (t *ScopeTree) declare(scope ScopeID, name string, sym SymbolID) {
	t.arena[scope].bindings[name] = sym
}

// functionScopeOf walks upward from scope to find the nearest
// enclosing function (or the global scope if none), used to hoist
// function-scoped (var) declarations.
func (t *ScopeTree) functionScopeOf(scope ScopeID) ScopeID {
	for _, s := range t.Ancestors(scope) {
		k := t.arena[s].Kind
		if k == ScopeFunction || k == ScopeArrowFunction || k == ScopeGlobal || k == ScopeModule {
			return s
		}
	}
	return t.root
}
