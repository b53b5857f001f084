package transform

import "github.com/matzehuels/taskflow/pkg/dag"

// CriticalPath returns one longest chain of dependent tasks, measured in
// edges, running from a start node (no incoming edges) to an end node (no
// outgoing edges). An empty graph yields nil; a graph without edges yields
// its first node.
//
// # Tie-breaking
//
// When several chains share the maximum length, the winner is the first one
// a depth-first walk would discover: start nodes are tried in insertion
// order and successors in edge insertion order, and a later chain only
// replaces the current best if it is strictly longer. Callers should not
// depend on which of several equally long chains is returned.
//
// # Algorithm
//
// The longest continuation from every node is memoized, which gives the same
// answer as exhaustive search in O(V + E). A node already on the current
// walk is skipped, so a graph that erroneously contains a cycle still
// terminates.
func CriticalPath(g *dag.DAG) []string {
	type tail struct {
		next   string // "" at an end node
		length int    // nodes from here to the end, inclusive
	}

	memo := make(map[string]tail, g.NodeCount())
	onPath := make(map[string]bool)

	var walk func(id string) int
	walk = func(id string) int {
		if t, ok := memo[id]; ok {
			return t.length
		}
		onPath[id] = true
		best := tail{length: 1}
		for _, child := range g.Children(id) {
			if onPath[child] {
				continue
			}
			if l := walk(child) + 1; l > best.length {
				best = tail{next: child, length: l}
			}
		}
		delete(onPath, id)
		memo[id] = best
		return best.length
	}

	start, bestLen := "", 0
	for _, n := range g.Sources() {
		if l := walk(n.ID); l > bestLen {
			start, bestLen = n.ID, l
		}
	}
	if start == "" {
		return nil
	}

	path := make([]string, 0, bestLen)
	for id := start; id != ""; id = memo[id].next {
		path = append(path, id)
	}
	return path
}
