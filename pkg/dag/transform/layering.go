package transform

import "github.com/matzehuels/taskflow/pkg/dag"

// AssignLevels returns the level of every node: 0 for a node without
// predecessors, otherwise one more than the highest level among its
// predecessors. The level is the length of the longest dependency chain
// leading into the node.
//
// # Algorithm
//
// Levels are computed by memoized recursion over Parents. A per-call
// in-progress set guards against a graph that erroneously contains a cycle:
// a node reached again while its own level is still being computed counts as
// level 0 rather than recursing forever. The guard bounds runtime only; the
// acyclic invariant is enforced by [dag.Validate] before edges are committed.
//
// # Performance
//
// O(V + E) time and O(V) space.
func AssignLevels(g *dag.DAG) map[string]int {
	levels := make(map[string]int, g.NodeCount())
	inProgress := make(map[string]bool)

	var level func(id string) int
	level = func(id string) int {
		if l, ok := levels[id]; ok {
			return l
		}
		if inProgress[id] {
			return 0
		}
		inProgress[id] = true
		l := 0
		for _, p := range g.Parents(id) {
			if pl := level(p) + 1; pl > l {
				l = pl
			}
		}
		delete(inProgress, id)
		levels[id] = l
		return l
	}

	for _, id := range g.NodeIDs() {
		level(id)
	}
	return levels
}

// GroupByLevel buckets node IDs by level. Index i holds the nodes of level i
// in graph insertion order; every bucket up to the maximum level is present,
// even if empty.
func GroupByLevel(g *dag.DAG, levels map[string]int) [][]string {
	maxLevel := -1
	for _, l := range levels {
		maxLevel = max(maxLevel, l)
	}
	groups := make([][]string, maxLevel+1)
	for _, id := range g.NodeIDs() {
		l, ok := levels[id]
		if !ok {
			continue
		}
		groups[l] = append(groups[l], id)
	}
	return groups
}
