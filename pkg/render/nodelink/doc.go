// Package nodelink draws task graphs as node-link diagrams with Graphviz.
//
// [ToDOT] produces DOT source: one box per task, one arrow per dependency,
// the critical path in red and, optionally, one cluster per section. Edge
// labels carry the dependency kind (SS, FF, SF) and lag when they differ
// from the finish-to-start, zero-lag default.
//
//	dot := nodelink.ToDOT(g, nodelink.Options{CriticalPath: transform.CriticalPath(g)})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [RenderSVG] uses github.com/goccy/go-graphviz, which embeds Graphviz, so
// no external binaries are needed.
package nodelink
