package semantic

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kzn-tools/kaizen/internal/parsing"
)

// Artifacts bundles the semantic layer's output for a single file:
// the Scope Tree, Symbol Table, one CFG per function, and the
// Disposable Catalog lookup used by prefer-scoped-resource.
type Artifacts struct {
	Scopes      *ScopeTree
	Symbols     *SymbolTable
	CFGs        []*CFG
	Disposables *DisposableCatalog
	// Limits records the range of each function whose BuildCFG call
	// returned an error: analysis continues for everything else, and the
	// engine emits one internal-analysis-limit diagnostic per entry.
	Limits []parsing.Range
}

// Build performs the single-pass Scope & Symbol Builder walk described
// in spec.md §4.3, then runs the CFG Builder (§4.4) per function
// found along the way.
func Build(file *parsing.ParsedFile, disposables *DisposableCatalog) *Artifacts {
	b := &builder{
		file:    file,
		scopes:  newScopeTree(),
		symbols: newSymbolTable(),
	}
	global := b.scopes.createScope(ScopeGlobal, -1, file.NodeRange(file.Root))
	b.walk(file.Root, global)

	art := &Artifacts{
		Scopes:      b.scopes,
		Symbols:     b.symbols,
		Disposables: disposables,
		Limits:      b.limits,
	}
	for _, fn := range b.functionNodes {
		cfg, err := BuildCFG(file, fn)
		if err != nil {
			art.Limits = append(art.Limits, file.NodeRange(fn))
			continue
		}
		art.CFGs = append(art.CFGs, cfg)
	}
	return art
}

type builder struct {
	file    *parsing.ParsedFile
	scopes  *ScopeTree
	symbols *SymbolTable

	functionNodes []*sitter.Node
	limits        []parsing.Range
}

func (b *builder) src(n *sitter.Node) string {
	return n.Content(b.file.Source)
}

func (b *builder) rangeOf(n *sitter.Node) parsing.Range {
	return b.file.NodeRange(n)
}

// scopeKindFor reports the ScopeKind a node introduces, and whether it
// introduces one at all.
func scopeKindFor(t string) (ScopeKind, bool) {
	switch t {
	case "function_declaration", "function", "generator_function_declaration", "generator_function", "method_definition":
		return ScopeFunction, true
	case "arrow_function":
		return ScopeArrowFunction, true
	case "statement_block":
		return ScopeBlock, true
	case "for_statement", "for_in_statement":
		return ScopeFor, true
	case "while_statement", "do_statement":
		return ScopeWhile, true
	case "switch_statement":
		return ScopeSwitch, true
	case "try_statement":
		return ScopeTry, true
	case "catch_clause":
		return ScopeCatch, true
	case "class_declaration", "class":
		return ScopeClass, true
	default:
		return 0, false
	}
}

func (b *builder) walk(n *sitter.Node, scope ScopeID) {
	if n == nil {
		return
	}

	switch n.Type() {
	case "function_declaration", "generator_function_declaration":
		b.declareFunction(n, scope)
		b.functionNodes = append(b.functionNodes, n)
		b.walkFunctionBody(n, scope)
		return
	case "function", "generator_function", "arrow_function", "method_definition":
		if !n.IsNamed() {
			return // the anonymous `function` keyword token shares this type name
		}
		b.functionNodes = append(b.functionNodes, n)
		b.walkFunctionBody(n, scope)
		return
	case "lexical_declaration":
		b.declareLexical(n, scope)
		return
	case "variable_declaration":
		b.declareVar(n, scope)
		return
	case "class_declaration":
		b.declareClass(n, scope)
		return
	case "import_statement":
		b.declareImports(n, scope)
		return
	case "export_statement":
		b.handleExport(n, scope)
		return
	case "assignment_expression":
		b.handleAssignment(n, scope)
		return
	case "identifier":
		b.handleIdentifierRead(n, scope)
	}

	childScope := scope
	if kind, ok := scopeKindFor(n.Type()); ok && n.Type() != "function_declaration" {
		childScope = b.scopes.createScope(kind, scope, b.rangeOf(n))
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		b.walk(n.Child(i), childScope)
	}
}

// walkFunctionBody pushes a function/arrow scope, declares its
// parameters inside it, and walks its body under that scope.
func (b *builder) walkFunctionBody(n *sitter.Node, parent ScopeID) {
	kind := ScopeFunction
	if n.Type() == "arrow_function" {
		kind = ScopeArrowFunction
	}
	fnScope := b.scopes.createScope(kind, parent, b.rangeOf(n))

	params := n.ChildByFieldName("parameters")
	if params == nil {
		// Arrow functions with a single bare parameter have no
		// "parameters" field; the lone identifier child is the param.
		if n.Type() == "arrow_function" {
			for i := 0; i < int(n.ChildCount()); i++ {
				c := n.Child(i)
				if c.Type() == "identifier" {
					b.declareParam(c, fnScope)
					break
				}
			}
		}
	} else {
		for i := 0; i < int(params.ChildCount()); i++ {
			b.declareParamPattern(params.Child(i), fnScope)
		}
	}

	name := n.ChildByFieldName("name")
	body := n.ChildByFieldName("body")
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c == name || (params != nil && c == params) {
			continue
		}
		if c == body {
			b.walk(c, fnScope)
			continue
		}
		b.walk(c, fnScope)
	}
}

func (b *builder) declareParamPattern(n *sitter.Node, scope ScopeID) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "identifier":
		b.declareParam(n, scope)
	case "assignment_pattern":
		left := n.ChildByFieldName("left")
		b.declareParamPattern(left, scope)
	case "rest_pattern":
		for i := 0; i < int(n.ChildCount()); i++ {
			b.declareParamPattern(n.Child(i), scope)
		}
	case "object_pattern":
		for i := 0; i < int(n.ChildCount()); i++ {
			c := n.Child(i)
			switch c.Type() {
			case "shorthand_property_identifier_pattern":
				b.declareParam(c, scope)
			case "pair_pattern":
				val := c.ChildByFieldName("value")
				b.declareParamPattern(val, scope)
			case "rest_pattern":
				b.declareParamPattern(c, scope)
			}
		}
	case "array_pattern":
		for i := 0; i < int(n.ChildCount()); i++ {
			b.declareParamPattern(n.Child(i), scope)
		}
	}
}

func (b *builder) declareParam(n *sitter.Node, scope ScopeID) {
	name := b.src(n)
	sym := b.symbols.declare(name, SymParameter, DeclParameter, scope, b.rangeOf(n))
	b.scopes.declare(scope, name, sym)
}

func (b *builder) declareFunction(n *sitter.Node, scope ScopeID) {
	name := n.ChildByFieldName("name")
	if name == nil {
		return
	}
	sym := b.symbols.declare(b.src(name), SymFunctionDecl, DeclFunction, scope, b.rangeOf(name))
	b.scopes.declare(scope, b.src(name), sym)
}

// declareClass declares the class's own name symbol in its enclosing
// scope, then walks the heritage clause and class body under a fresh
// ScopeClass, skipping the name child so it is not also counted as a
// read (mirroring walkFunctionBody's name/params skip).
func (b *builder) declareClass(n *sitter.Node, scope ScopeID) {
	name := n.ChildByFieldName("name")
	if name != nil {
		sym := b.symbols.declare(b.src(name), SymClass, DeclClass, scope, b.rangeOf(name))
		b.scopes.declare(scope, b.src(name), sym)
	}

	classScope := b.scopes.createScope(ScopeClass, scope, b.rangeOf(n))
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c == name {
			continue
		}
		b.walk(c, classScope)
	}
}

// declareLexical handles `let`/`const` declarations, which are
// block-scoped: bound directly to the innermost scope.
func (b *builder) declareLexical(n *sitter.Node, scope ScopeID) {
	isConst := false
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == "const" {
			isConst = true
			break
		}
	}
	kind := SymMutableBinding
	declKind := DeclLet
	if isConst {
		kind = SymConst
		declKind = DeclConst
	}
	b.declareDeclarators(n, scope, scope, kind, declKind)
}

// declareVar handles `var` declarations, which are function-scoped:
// hoisted to the nearest enclosing function (or global).
func (b *builder) declareVar(n *sitter.Node, scope ScopeID) {
	target := b.scopes.functionScopeOf(scope)
	b.declareDeclarators(n, scope, target, SymFunctionScoped, DeclVar)
}

func (b *builder) declareDeclarators(n *sitter.Node, walkScope, bindScope ScopeID, kind SymbolKind, declKind DeclarationKind) {
	for i := 0; i < int(n.ChildCount()); i++ {
		d := n.Child(i)
		if d.Type() != "variable_declarator" {
			continue
		}
		name := d.ChildByFieldName("name")
		value := d.ChildByFieldName("value")
		if name != nil {
			b.bindPattern(name, bindScope, kind, declKind)
		}
		if value != nil {
			b.walk(value, walkScope)
		}
	}
}

// bindPattern declares every identifier introduced by a (possibly
// destructuring) binding pattern.
func (b *builder) bindPattern(n *sitter.Node, scope ScopeID, kind SymbolKind, declKind DeclarationKind) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "identifier":
		sym := b.symbols.declare(b.src(n), kind, declKind, scope, b.rangeOf(n))
		b.scopes.declare(scope, b.src(n), sym)
	case "assignment_pattern":
		b.bindPattern(n.ChildByFieldName("left"), scope, kind, declKind)
	case "rest_pattern", "array_pattern":
		for i := 0; i < int(n.ChildCount()); i++ {
			b.bindPattern(n.Child(i), scope, kind, declKind)
		}
	case "object_pattern":
		for i := 0; i < int(n.ChildCount()); i++ {
			c := n.Child(i)
			switch c.Type() {
			case "shorthand_property_identifier_pattern":
				b.bindPattern(c, scope, kind, declKind)
			case "pair_pattern":
				b.bindPattern(c.ChildByFieldName("value"), scope, kind, declKind)
			case "rest_pattern":
				b.bindPattern(c, scope, kind, declKind)
			}
		}
	}
}

func (b *builder) declareImports(n *sitter.Node, scope ScopeID) {
	target := b.scopes.root
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch c.Type() {
		case "import_clause":
			b.declareImportClause(c, target)
		}
	}
}

func (b *builder) declareImportClause(n *sitter.Node, scope ScopeID) {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch c.Type() {
		case "identifier":
			sym := b.symbols.declare(b.src(c), SymImport, DeclImport, scope, b.rangeOf(c))
			b.scopes.declare(scope, b.src(c), sym)
		case "namespace_import":
			for j := 0; j < int(c.ChildCount()); j++ {
				if c.Child(j).Type() == "identifier" {
					name := c.Child(j)
					sym := b.symbols.declare(b.src(name), SymImport, DeclImport, scope, b.rangeOf(name))
					b.scopes.declare(scope, b.src(name), sym)
				}
			}
		case "named_imports":
			for j := 0; j < int(c.ChildCount()); j++ {
				spec := c.Child(j)
				if spec.Type() != "import_specifier" {
					continue
				}
				local := spec.ChildByFieldName("alias")
				if local == nil {
					local = spec.ChildByFieldName("name")
				}
				if local != nil {
					sym := b.symbols.declare(b.src(local), SymImport, DeclImport, scope, b.rangeOf(local))
					b.scopes.declare(scope, b.src(local), sym)
				}
			}
		}
	}
}

func (b *builder) handleExport(n *sitter.Node, scope ScopeID) {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		b.walk(c, scope)
		name := b.exportedName(c)
		if name == "" {
			continue
		}
		if sym, ok := b.scopes.Lookup(scope, name); ok {
			b.symbols.markExported(sym)
		}
	}
}

func (b *builder) exportedName(n *sitter.Node) string {
	switch n.Type() {
	case "function_declaration", "class_declaration":
		if name := n.ChildByFieldName("name"); name != nil {
			return b.src(name)
		}
	}
	return ""
}

// handleAssignment records a write against the resolved symbol of a
// simple identifier target, then walks the right-hand side itself
// (and the left side when it isn't a plain identifier, e.g. a member
// expression or destructuring pattern) since this case no longer
// falls through to the generic child recursion.
func (b *builder) handleAssignment(n *sitter.Node, scope ScopeID) {
	left := n.ChildByFieldName("left")
	right := n.ChildByFieldName("right")
	if left != nil && left.Type() == "identifier" {
		if sym, ok := b.scopes.Lookup(scope, b.src(left)); ok {
			b.symbols.addWrite(sym)
		}
	} else if left != nil {
		b.walk(left, scope)
	}
	if right != nil {
		b.walk(right, scope)
	}
}

// handleIdentifierRead attributes an identifier use-site to its
// resolved symbol, or to the free-reference list if unresolved.
func (b *builder) handleIdentifierRead(n *sitter.Node, scope ScopeID) {
	name := b.src(n)
	if sym, ok := b.scopes.Lookup(scope, name); ok {
		b.symbols.addRead(sym, b.rangeOf(n))
		return
	}
	b.symbols.freeReferences = append(b.symbols.freeReferences, b.rangeOf(n))
}
