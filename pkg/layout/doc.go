// Package layout positions task nodes for drawing.
//
// A [Strategy] turns a *dag.DAG and [Options] into a [Layout]: a top-left
// position and attachment sides for every node, plus the unchanged edge
// list. Two strategies are provided:
//
//   - [Leveled]: each node's rank is its dependency level (longest chain from
//     a root); nodes within a rank keep insertion order. No external engine.
//   - [Layered]: the Graphviz dot engine ranks the graph, reduces crossings
//     and assigns coordinates. Better for dense graphs.
//
// Select one by name with [ByName], and wrap it in [Cached] to reuse results
// across runs:
//
//	s, _ := layout.ByName("layered")
//	s = layout.Cached{Inner: s, Cache: fileCache}
//	l, err := s.Compute(ctx, g, layout.DefaultOptions())
//
// Both strategies are idempotent. Attachment sides depend only on the
// [Direction]: left-to-right flow attaches incoming edges on the left and
// outgoing edges on the right.
package layout
