package transform

import "github.com/matzehuels/taskflow/pkg/dag"

// RedundantEdges reports edges implied by other paths. An edge (u, v) is
// redundant when u reaches v through at least one intermediate node: with
// A→B, B→C and A→C present, A→C is redundant. The graph is not modified;
// redundant dependencies are legal and only surfaced as a hint.
//
// # Algorithm
//
// Full reachability is computed by DFS from every node, then each edge is
// checked against the successors of its source.
//
// # Performance
//
// O(V·(V+E)) time and O(V²) space for the reachability matrix.
func RedundantEdges(g *dag.DAG) []dag.Edge {
	ids := g.NodeIDs()
	if len(ids) == 0 {
		return nil
	}

	index := dag.PosMap(ids)
	adjacency := make([][]int, len(ids))
	for _, e := range g.Edges() {
		src, okS := index[e.From]
		dst, okD := index[e.To]
		if okS && okD {
			adjacency[src] = append(adjacency[src], dst)
		}
	}

	reachable := computeReachability(adjacency)

	var redundant []dag.Edge
	for _, e := range g.Edges() {
		src, dst := index[e.From], index[e.To]
		for _, via := range adjacency[src] {
			if via != dst && reachable[via][dst] {
				redundant = append(redundant, e)
				break
			}
		}
	}
	return redundant
}

func computeReachability(adjacency [][]int) [][]bool {
	n := len(adjacency)
	reachable := make([][]bool, n)
	for i := range reachable {
		reachable[i] = make([]bool, n)
	}

	var dfs func(source, current int)
	dfs = func(source, current int) {
		if reachable[source][current] {
			return
		}
		reachable[source][current] = true
		for _, next := range adjacency[current] {
			dfs(source, next)
		}
	}

	for i := range reachable {
		dfs(i, i)
	}
	return reachable
}
