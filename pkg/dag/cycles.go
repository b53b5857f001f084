package dag

// HasCycle reports whether the directed graph formed by edges contains a
// cycle. Nodes are discovered from the edges themselves, so the check works
// against any edge set, including one whose node set has just shrunk.
//
// Detection is a depth-first search with white/gray/black colouring started
// from every node in first-appearance order: a cycle exists iff the search
// reaches a node that is still gray (on the current stack). Disconnected
// components are each searched. Runs in O(V+E).
func HasCycle(edges []Edge) bool {
	const (
		white = iota
		gray
		black
	)

	adj := make(map[string][]string)
	var order []string
	seen := make(map[string]bool)
	visit := func(id string) {
		if !seen[id] {
			seen[id] = true
			order = append(order, id)
		}
	}
	for _, e := range edges {
		visit(e.From)
		visit(e.To)
		adj[e.From] = append(adj[e.From], e.To)
	}

	color := make(map[string]int, len(order))
	var dfs func(id string) bool
	dfs = func(id string) bool {
		color[id] = gray
		for _, next := range adj[id] {
			switch color[next] {
			case gray:
				return true
			case white:
				if dfs(next) {
					return true
				}
			}
		}
		color[id] = black
		return false
	}

	for _, id := range order {
		if color[id] == white && dfs(id) {
			return true
		}
	}
	return false
}
