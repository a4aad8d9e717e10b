package semantic

import (
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kzn-tools/kaizen/internal/parsing"
)

// BlockID is a stable handle into a CFG's block arena.
type BlockID int

// Terminator classifies how control leaves a basic block, per
// spec.md §3 Control-Flow Graph.
type Terminator int

const (
	TermFallthrough Terminator = iota
	TermTrue
	TermFalse
	TermSwitchCase
	TermThrow
	TermBreak
	TermContinue
	TermReturn
	TermImplicitEnd
)

// Block is one basic block: the statement range it covers, its
// terminator kind, and its successor blocks.
type Block struct {
	ID          BlockID
	Range       parsing.Range
	Terminator  Terminator
	Successors  []BlockID
	Reachable   bool
}

// CFG is the per-function control-flow graph spec.md §4.4 describes.
type CFG struct {
	FunctionRange parsing.Range
	Blocks        []Block
	Entry         BlockID
	Exits         []BlockID

	file *parsing.ParsedFile
}

func (g *CFG) newBlock(r parsing.Range) BlockID {
	id := BlockID(len(g.Blocks))
	g.Blocks = append(g.Blocks, Block{ID: id, Range: r, Terminator: TermImplicitEnd})
	return id
}

func (g *CFG) link(from, to BlockID) {
	g.Blocks[from].Successors = append(g.Blocks[from].Successors, to)
}

// ReachableFromEntry reports whether block is reachable by following
// successor edges from the function's entry block.
func (g *CFG) ReachableFromEntry(block BlockID) bool {
	visited := make(map[BlockID]bool)
	var walk func(BlockID)
	found := false
	walk = func(b BlockID) {
		if visited[b] {
			return
		}
		visited[b] = true
		if b == block {
			found = true
		}
		for _, s := range g.Blocks[b].Successors {
			walk(s)
		}
	}
	walk(g.Entry)
	return found
}

// Dominates reports whether every path from Entry to b passes through
// a. Computed by removing a (other than when a==b) and checking
// whether b is still reachable: a dominates b when it is not.
func (g *CFG) Dominates(a, b BlockID) bool {
	if a == b {
		return true
	}
	visited := make(map[BlockID]bool)
	visited[a] = true
	var walk func(BlockID) bool
	walk = func(cur BlockID) bool {
		if cur == b {
			return true
		}
		if visited[cur] {
			return false
		}
		visited[cur] = true
		for _, s := range g.Blocks[cur].Successors {
			if walk(s) {
				return true
			}
		}
		return false
	}
	return !walk(g.Entry)
}

// BlockAt returns the block whose range contains position p, or -1 if
// none does.
func (g *CFG) BlockAt(p parsing.Position) BlockID {
	for _, b := range g.Blocks {
		if within(p, b.Range) {
			return b.ID
		}
	}
	return -1
}

func within(p parsing.Position, r parsing.Range) bool {
	after := p.Line > r.Start.Line || (p.Line == r.Start.Line && p.Column >= r.Start.Column)
	before := p.Line < r.End.Line || (p.Line == r.End.Line && p.Column <= r.End.Column)
	return after && before
}

// loopLabels tracks the break/continue target blocks of enclosing
// loops and switch statements, keyed by an optional label.
type loopLabels struct {
	breakTo    BlockID
	continueTo BlockID
}

type cfgBuilder struct {
	file   *parsing.ParsedFile
	g      *CFG
	loops  []loopLabels
}

// BuildCFG constructs the control-flow graph for a single function
// node (function_declaration, function, arrow_function, or
// method_definition). Statement types the builder has no case for are
// treated as straight-line code in the current block, so BuildCFG
// never fails and its error result is always nil.
func BuildCFG(file *parsing.ParsedFile, fn *sitter.Node) (*CFG, error) {
	body := fn.ChildByFieldName("body")
	g := &CFG{FunctionRange: file.NodeRange(fn), file: file}
	entry := g.newBlock(file.NodeRange(fn))
	g.Entry = entry

	b := &cfgBuilder{file: file, g: g}

	if body == nil {
		g.Exits = append(g.Exits, entry)
		markReachable(g)
		return g, nil
	}

	var stmts []*sitter.Node
	if body.Type() == "statement_block" {
		for i := 0; i < int(body.ChildCount()); i++ {
			c := body.Child(i)
			if c.Type() != "{" && c.Type() != "}" {
				stmts = append(stmts, c)
			}
		}
	} else {
		// Arrow function with an expression body: a single implicit
		// return.
		stmts = []*sitter.Node{body}
	}

	last, exits, err := b.buildSequence(stmts, entry)
	if err != nil {
		return nil, err
	}
	if last >= 0 {
		exits = append(exits, last)
	}
	if len(exits) == 0 {
		exits = []BlockID{entry}
	}
	g.Exits = exits
	markReachable(g)
	return g, nil
}

func markReachable(g *CFG) {
	for i := range g.Blocks {
		g.Blocks[i].Reachable = g.ReachableFromEntry(BlockID(i))
	}
}

// buildSequence links a list of sibling statements into the CFG
// starting from cur, returning the block statements should fall
// through into next (or -1 if the sequence always diverges) plus any
// additional dangling exit blocks produced by nested constructs
// (e.g. both arms of an if with no else).
func (b *cfgBuilder) buildSequence(stmts []*sitter.Node, cur BlockID) (BlockID, []BlockID, error) {
	var danglingExits []BlockID
	for _, s := range stmts {
		next, exits, err := b.buildStatement(s, cur)
		if err != nil {
			return -1, nil, err
		}
		danglingExits = append(danglingExits, exits...)
		if next < 0 {
			// Statement diverges (return/throw/break/continue): nothing
			// after it in this sequence is reachable via fallthrough.
			return -1, danglingExits, nil
		}
		cur = next
	}
	return cur, danglingExits, nil
}

// buildStatement links one statement starting at cur, returning the
// block subsequent statements fall through from (-1 if this statement
// diverges) and any dangling exit blocks from nested branches that
// the caller must merge at the function's end.
func (b *cfgBuilder) buildStatement(s *sitter.Node, cur BlockID) (BlockID, []BlockID, error) {
	switch s.Type() {
	case "if_statement":
		return b.buildIf(s, cur)
	case "while_statement":
		return b.buildWhile(s, cur)
	case "do_statement":
		return b.buildDoWhile(s, cur)
	case "for_statement", "for_in_statement":
		return b.buildFor(s, cur)
	case "switch_statement":
		return b.buildSwitch(s, cur)
	case "try_statement":
		return b.buildTry(s, cur)
	case "return_statement":
		b.g.Blocks[cur].Terminator = TermReturn
		return -1, nil, nil
	case "throw_statement":
		b.g.Blocks[cur].Terminator = TermThrow
		return -1, nil, nil
	case "break_statement":
		b.g.Blocks[cur].Terminator = TermBreak
		if len(b.loops) > 0 {
			b.g.link(cur, b.loops[len(b.loops)-1].breakTo)
		}
		return -1, nil, nil
	case "continue_statement":
		b.g.Blocks[cur].Terminator = TermContinue
		if len(b.loops) > 0 {
			b.g.link(cur, b.loops[len(b.loops)-1].continueTo)
		}
		return -1, nil, nil
	case "statement_block":
		var inner []*sitter.Node
		for i := 0; i < int(s.ChildCount()); i++ {
			c := s.Child(i)
			if c.Type() != "{" && c.Type() != "}" {
				inner = append(inner, c)
			}
		}
		return b.buildSequence(inner, cur)
	case "labeled_statement":
		body := s.ChildByFieldName("body")
		if body != nil {
			return b.buildStatement(body, cur)
		}
		return cur, nil, nil
	default:
		// Straight-line statement: stays within the current block.
		return cur, nil, nil
	}
}

func (b *cfgBuilder) buildIf(s *sitter.Node, cur BlockID) (BlockID, []BlockID, error) {
	cons := s.ChildByFieldName("consequence")
	alt := s.ChildByFieldName("alternative")

	b.g.Blocks[cur].Terminator = TermTrue

	thenBlock := b.g.newBlock(b.file.NodeRange(cons))
	b.g.link(cur, thenBlock)
	thenNext, thenExits, err := b.buildStatement(cons, thenBlock)
	if err != nil {
		return -1, nil, err
	}

	var elseNext BlockID = cur
	var elseExits []BlockID
	if alt != nil {
		elseBody := alt
		if elseBody.Type() == "else_clause" {
			if c := elseBody.Child(1); c != nil {
				elseBody = c
			}
		}
		elseBlock := b.g.newBlock(b.file.NodeRange(elseBody))
		b.g.link(cur, elseBlock)
		elseNext, elseExits, err = b.buildStatement(elseBody, elseBlock)
		if err != nil {
			return -1, nil, err
		}
	}

	joinNeeded := thenNext >= 0 || (alt != nil && elseNext >= 0) || alt == nil
	if !joinNeeded {
		return -1, append(thenExits, elseExits...), nil
	}

	join := b.g.newBlock(b.file.NodeRange(s))
	if thenNext >= 0 {
		b.g.link(thenNext, join)
	}
	if alt == nil {
		b.g.link(cur, join)
	} else if elseNext >= 0 {
		b.g.link(elseNext, join)
	}
	return join, append(thenExits, elseExits...), nil
}

func (b *cfgBuilder) buildWhile(s *sitter.Node, cur BlockID) (BlockID, []BlockID, error) {
	body := s.ChildByFieldName("body")
	cond := b.g.newBlock(b.file.NodeRange(s))
	b.g.link(cur, cond)
	b.g.Blocks[cond].Terminator = TermTrue

	after := b.g.newBlock(b.file.NodeRange(s))
	b.loops = append(b.loops, loopLabels{breakTo: after, continueTo: cond})

	bodyBlock := b.g.newBlock(b.file.NodeRange(body))
	b.g.link(cond, bodyBlock)
	bodyNext, exits, err := b.buildStatement(body, bodyBlock)
	b.loops = b.loops[:len(b.loops)-1]
	if err != nil {
		return -1, nil, err
	}
	if bodyNext >= 0 {
		b.g.link(bodyNext, cond)
	}
	b.g.link(cond, after)
	return after, exits, nil
}

func (b *cfgBuilder) buildDoWhile(s *sitter.Node, cur BlockID) (BlockID, []BlockID, error) {
	body := s.ChildByFieldName("body")
	bodyBlock := b.g.newBlock(b.file.NodeRange(body))
	b.g.link(cur, bodyBlock)

	after := b.g.newBlock(b.file.NodeRange(s))
	cond := b.g.newBlock(b.file.NodeRange(s))
	b.loops = append(b.loops, loopLabels{breakTo: after, continueTo: cond})
	bodyNext, exits, err := b.buildStatement(body, bodyBlock)
	b.loops = b.loops[:len(b.loops)-1]
	if err != nil {
		return -1, nil, err
	}
	if bodyNext >= 0 {
		b.g.link(bodyNext, cond)
	}
	b.g.Blocks[cond].Terminator = TermTrue
	b.g.link(cond, bodyBlock)
	b.g.link(cond, after)
	return after, exits, nil
}

func (b *cfgBuilder) buildFor(s *sitter.Node, cur BlockID) (BlockID, []BlockID, error) {
	body := s.ChildByFieldName("body")
	cond := b.g.newBlock(b.file.NodeRange(s))
	b.g.link(cur, cond)
	b.g.Blocks[cond].Terminator = TermTrue

	after := b.g.newBlock(b.file.NodeRange(s))
	b.loops = append(b.loops, loopLabels{breakTo: after, continueTo: cond})

	bodyBlock := b.g.newBlock(b.file.NodeRange(body))
	b.g.link(cond, bodyBlock)
	bodyNext, exits, err := b.buildStatement(body, bodyBlock)
	b.loops = b.loops[:len(b.loops)-1]
	if err != nil {
		return -1, nil, err
	}
	if bodyNext >= 0 {
		b.g.link(bodyNext, cond)
	}
	b.g.link(cond, after)
	return after, exits, nil
}

func (b *cfgBuilder) buildSwitch(s *sitter.Node, cur BlockID) (BlockID, []BlockID, error) {
	body := s.ChildByFieldName("body")
	if body == nil {
		return cur, nil, nil
	}

	after := b.g.newBlock(b.file.NodeRange(s))
	b.loops = append(b.loops, loopLabels{breakTo: after, continueTo: after})
	defer func() { b.loops = b.loops[:len(b.loops)-1] }()

	var cases []*sitter.Node
	for i := 0; i < int(body.ChildCount()); i++ {
		c := body.Child(i)
		if c.Type() == "switch_case" || c.Type() == "switch_default" {
			cases = append(cases, c)
		}
	}

	var danglingExits []BlockID
	prevFallsThrough := false
	var prevBlock BlockID = -1
	for _, c := range cases {
		caseBlock := b.g.newBlock(b.file.NodeRange(c))
		b.g.Blocks[cur].Terminator = TermSwitchCase
		b.g.link(cur, caseBlock)
		if prevFallsThrough {
			b.g.link(prevBlock, caseBlock)
		}

		var body []*sitter.Node
		for i := 0; i < int(c.ChildCount()); i++ {
			cc := c.Child(i)
			if cc.Type() != ":" {
				body = append(body, cc)
			}
		}
		next, exits, err := b.buildSequence(body, caseBlock)
		if err != nil {
			return -1, nil, err
		}
		danglingExits = append(danglingExits, exits...)
		if next >= 0 {
			b.g.link(next, after)
			prevFallsThrough = false
		} else {
			prevFallsThrough = true
		}
		prevBlock = caseBlock
	}
	b.g.link(cur, after) // no case matched
	return after, danglingExits, nil
}

func (b *cfgBuilder) buildTry(s *sitter.Node, cur BlockID) (BlockID, []BlockID, error) {
	body := s.ChildByFieldName("body")
	handler := s.ChildByFieldName("handler")
	finalizer := s.ChildByFieldName("finalizer")

	tryBlock := b.g.newBlock(b.file.NodeRange(body))
	b.g.link(cur, tryBlock)
	tryNext, tryExits, err := b.buildStatement(body, tryBlock)
	if err != nil {
		return -1, nil, err
	}

	var catchNext BlockID = -1
	var catchExits []BlockID
	if handler != nil {
		catchBlock := b.g.newBlock(b.file.NodeRange(handler))
		b.g.link(tryBlock, catchBlock) // any statement in try may throw
		catchBody := handler.ChildByFieldName("body")
		catchNext, catchExits, err = b.buildStatement(catchBody, catchBlock)
		if err != nil {
			return -1, nil, err
		}
	}

	join := b.g.newBlock(b.file.NodeRange(s))
	linked := false
	if tryNext >= 0 {
		b.g.link(tryNext, join)
		linked = true
	}
	if catchNext >= 0 {
		b.g.link(catchNext, join)
		linked = true
	}

	allExits := append(tryExits, catchExits...)

	if finalizer != nil {
		finBlock := b.g.newBlock(b.file.NodeRange(finalizer))
		b.g.link(join, finBlock)
		finBody := finalizer.ChildByFieldName("body")
		finNext, finExits, err := b.buildStatement(finBody, finBlock)
		if err != nil {
			return -1, nil, err
		}
		allExits = append(allExits, finExits...)
		return finNext, allExits, nil
	}

	if !linked {
		return -1, allExits, nil
	}
	return join, allExits, nil
}

// String aids debugging and test failure messages.
func (t Terminator) String() string {
	names := [...]string{"fallthrough", "true", "false", "switch-case", "throw", "break", "continue", "return", "implicit-end"}
	if int(t) < len(names) {
		return names[t]
	}
	return fmt.Sprintf("terminator(%d)", t)
}
