package transform

import "github.com/matzehuels/taskflow/pkg/dag"

// BreakCycles removes back edges until the graph is acyclic and returns the
// removed edges in discovery order.
//
// Task data coming from an upstream store is not guaranteed to be acyclic.
// BreakCycles runs a white/gray/black depth-first search, first from the
// source nodes and then from any node left unvisited (nodes only reachable
// through a cycle), both in insertion order, so the same input always loses
// the same edges. An edge pointing at a gray node closes a cycle and is
// dropped.
func BreakCycles(g *dag.DAG) []dag.Edge {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int)
	var backEdges []dag.Edge

	outgoing := make(map[string][]dag.Edge)
	for _, e := range g.Edges() {
		outgoing[e.From] = append(outgoing[e.From], e)
	}

	var dfs func(node string)
	dfs = func(node string) {
		color[node] = gray
		for _, e := range outgoing[node] {
			switch color[e.To] {
			case white:
				dfs(e.To)
			case gray:
				backEdges = append(backEdges, e)
			}
		}
		color[node] = black
	}

	for _, n := range g.Sources() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}
	for _, n := range g.Nodes() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}

	for _, e := range backEdges {
		g.RemoveEdge(e.ID)
	}
	return backEdges
}
