// Package transform provides algorithms that derive state from a task
// dependency graph.
//
// # Levels
//
// [AssignLevels] gives each node the length of the longest dependency chain
// leading into it. Roots are level 0 and every node sits strictly above all
// of its predecessors. [GroupByLevel] buckets nodes per level in insertion
// order; the layout package turns those buckets into coordinates.
//
// # Critical Path
//
// [CriticalPath] returns one longest chain from a start task to an end
// task. Ties go to the first chain discovered in start-node order.
//
// # Redundant Dependencies
//
// [RedundantEdges] reports edges already implied by a longer route. If
// A→B, B→C and A→C all exist, A→C is redundant. Nothing is removed.
//
// # Cycle Breaking
//
// [BreakCycles] removes back edges from a graph built from untrusted task
// data. Graphs edited through the session package never need it, since every
// committed edge has already been validated.
//
// # Usage
//
//	levels := transform.AssignLevels(g)
//	path := transform.CriticalPath(g)
//	for _, e := range transform.RedundantEdges(g) {
//	    fmt.Println("redundant:", e.From, "→", e.To)
//	}
package transform
