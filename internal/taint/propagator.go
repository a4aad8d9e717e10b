package taint

// Propagate runs the reverse-search algorithm of spec.md §4.7 over
// graph: for every sink node, walk backward through Inputs edges
// looking for a source node of the same category. An exact-matched
// sanitizer of that category is a dead end (the search does not continue
// past it); a heuristic-matched sanitizer does not block the search but
// downgrades the eventual finding's confidence by one notch. Among
// multiple witness paths to the same sink, the shortest (fewest edges)
// wins; ties break by the order of each node's Inputs edges, which is
// itself deterministic because BuildGraph walks the AST depth-first in
// source order.
func Propagate(graph *Graph) []Finding {
	var findings []Finding
	for _, sinkID := range graph.Sinks() {
		sink := graph.Get(sinkID)
		if w := searchFromSink(graph, sink); w != nil {
			findings = append(findings, *w)
		}
	}
	return findings
}

type frame struct {
	node       NodeID
	path       []NodeID
	downgrades int
	visited    map[NodeID]bool
}

// searchFromSink performs a breadth-first reverse search from sink
// across Inputs edges, returning the shortest witness path to a source
// of sink's category, or nil if none exists.
func searchFromSink(graph *Graph, sink *Node) *Finding {
	if sink.Category == "" {
		return nil
	}
	start := frame{node: sink.ID, path: []NodeID{sink.ID}, visited: map[NodeID]bool{sink.ID: true}}
	queue := []frame{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		node := graph.Get(cur.node)

		for _, in := range node.Inputs {
			// A negative input is the placeholder for an argument that
			// produced no graph node (e.g. a literal).
			if in < 0 || cur.visited[in] {
				continue
			}
			inNode := graph.Get(in)

			if inNode.Kind == NodeSanitizer && categoryApplies(inNode.Category, sink.Category) {
				if inNode.Match != MatchHeuristic {
					// Exact (or wildcard/call) sanitizer match: dead end,
					// this branch of the search stops here.
					continue
				}
				// Heuristic sanitizer: continue past it, but count a
				// downgrade for the eventual finding's confidence.
				next := extend(cur, in)
				next.downgrades++
				queue = append(queue, next)
				continue
			}

			if inNode.Kind == NodeSource && categoryApplies(inNode.Category, sink.Category) {
				found := extend(cur, in)
				return buildFinding(graph, sink, found)
			}

			queue = append(queue, extend(cur, in))
		}
	}
	return nil
}

func categoryApplies(patternCategory, targetCategory Category) bool {
	return patternCategory == "" || patternCategory == targetCategory
}

func extend(cur frame, next NodeID) frame {
	visited := make(map[NodeID]bool, len(cur.visited)+1)
	for k := range cur.visited {
		visited[k] = true
	}
	visited[next] = true
	path := make([]NodeID, len(cur.path)+1)
	copy(path, cur.path)
	path[len(cur.path)] = next
	return frame{node: next, path: path, downgrades: cur.downgrades, visited: visited}
}

func buildFinding(graph *Graph, sink *Node, f frame) *Finding {
	// spec.md §4.7: confidence is the minimum confidence along the
	// whole witness path, not just the sink's own Match kind — a
	// heuristically-matched source or intermediate node caps the
	// finding's confidence exactly as a heuristically-matched sink does.
	confidence := confidenceFromMatch(sink.Match)
	for _, id := range f.path {
		if c := confidenceFromMatch(graph.Get(id).Match); c < confidence {
			confidence = c
		}
	}
	for i := 0; i < f.downgrades; i++ {
		confidence = confidence.Downgrade()
	}

	// f.path is sink..source order (reverse search); flip to
	// source..sink for the reported witness.
	path := make([]Node, len(f.path))
	for i, id := range f.path {
		path[len(f.path)-1-i] = *graph.Get(id)
	}

	return &Finding{
		Category:   sink.Category,
		Source:     path[0],
		Sink:       *sink,
		Path:       path,
		Confidence: confidence,
	}
}

func confidenceFromMatch(k MatchKind) FindingConfidence {
	switch k {
	case MatchExact, MatchWildcardSuffix, MatchCall:
		return ConfidenceHigh
	default:
		return ConfidenceMedium
	}
}
