package quality

import sitter "github.com/smacker/go-tree-sitter"

// walkAST visits every node of the tree rooted at n, depth-first,
// calling visit on each. Mirrors the teacher's walker.go traversal
// shape without carrying its taint-specific state.
func walkAST(n *sitter.Node, visit func(*sitter.Node)) {
	if n == nil {
		return
	}
	visit(n)
	for i := 0; i < int(n.ChildCount()); i++ {
		walkAST(n.Child(i), visit)
	}
}

func content(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	return n.Content(source)
}
