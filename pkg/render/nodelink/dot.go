package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/taskflow/pkg/dag"
	"github.com/matzehuels/taskflow/pkg/graph"
	"github.com/matzehuels/taskflow/pkg/layout"
)

// Options configures node-link diagram generation.
type Options struct {
	// Direction sets rankdir. Empty means left to right.
	Direction layout.Direction

	// CriticalPath is drawn in red. Edges between consecutive path nodes are
	// highlighted too.
	CriticalPath []string

	// Detailed adds the task name and scheduling metadata to node labels.
	Detailed bool

	// Sections groups nodes into one cluster per section.
	Sections bool
}

const criticalColor = "#d7263d"

// ToDOT converts a task graph to Graphviz DOT. Edge labels show the
// dependency kind when it is not finish-to-start, and the lag when it is
// non-zero.
func ToDOT(g *dag.DAG, opts Options) string {
	dir, err := layout.ParseDirection(string(opts.Direction))
	if err != nil {
		dir = layout.LeftToRight
	}
	onPath := make(map[string]bool, len(opts.CriticalPath))
	for _, id := range opts.CriticalPath {
		onPath[id] = true
	}
	pathEdge := make(map[[2]string]bool, len(opts.CriticalPath))
	for i := 1; i < len(opts.CriticalPath); i++ {
		pathEdge[[2]string{opts.CriticalPath[i-1], opts.CriticalPath[i]}] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", dir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontsize=10];\n")
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	writeNode := func(indent string, n *dag.Node) {
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(*n, opts.Detailed))}
		if onPath[n.ID] {
			attrs = append(attrs, fmt.Sprintf("color=%q", criticalColor), "penwidth=2")
		}
		fmt.Fprintf(&buf, "%s%q [%s];\n", indent, n.ID, strings.Join(attrs, ", "))
	}

	if opts.Sections {
		bySection := make(map[string][]*dag.Node)
		var unsectioned []*dag.Node
		for _, n := range g.Nodes() {
			if n.Section == "" {
				unsectioned = append(unsectioned, n)
				continue
			}
			bySection[n.Section] = append(bySection[n.Section], n)
		}
		for i, sec := range sectionOrder(g, bySection) {
			fmt.Fprintf(&buf, "  subgraph cluster_%d {\n", i)
			fmt.Fprintf(&buf, "    label=%q;\n", sec)
			buf.WriteString("    style=\"rounded,dashed\";\n")
			for _, n := range bySection[sec] {
				writeNode("    ", n)
			}
			buf.WriteString("  }\n")
		}
		for _, n := range unsectioned {
			writeNode("  ", n)
		}
	} else {
		for _, n := range g.Nodes() {
			writeNode("  ", n)
		}
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		var attrs []string
		if l := edgeLabel(e); l != "" {
			attrs = append(attrs, fmt.Sprintf("label=%q", l))
		}
		if pathEdge[[2]string{e.From, e.To}] {
			attrs = append(attrs, fmt.Sprintf("color=%q", criticalColor), "penwidth=2")
		}
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
		} else {
			fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.From, e.To, strings.Join(attrs, ", "))
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// sectionOrder lists used sections: declared ones first in declaration
// order, then undeclared ones in order of first appearance.
func sectionOrder(g *dag.DAG, used map[string][]*dag.Node) []string {
	var order []string
	seen := make(map[string]bool)
	for _, s := range graph.SectionIDs(g) {
		if len(used[s]) > 0 && !seen[s] {
			order = append(order, s)
			seen[s] = true
		}
	}
	for _, n := range g.Nodes() {
		if n.Section != "" && !seen[n.Section] {
			order = append(order, n.Section)
			seen[n.Section] = true
		}
	}
	return order
}

func edgeLabel(e dag.Edge) string {
	var parts []string
	if e.Type != "" && e.Type != dag.FinishToStart {
		parts = append(parts, e.Type.Short())
	}
	if e.Lag != 0 {
		parts = append(parts, fmt.Sprintf("%+dd", e.Lag))
	}
	return strings.Join(parts, " ")
}

func fmtLabel(n dag.Node, detailed bool) string {
	if !detailed {
		return n.ID
	}
	head := n.ID
	if name, ok := n.Meta[graph.MetaName].(string); ok && name != "" {
		head = name + " (" + n.ID + ")"
	}
	var parts []string
	for _, k := range slices.Sorted(maps.Keys(n.Meta)) {
		if k == graph.MetaName {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Meta[k]))
	}
	if len(parts) == 0 {
		return head
	}
	return head + "\n" + strings.Join(parts, "\n")
}

// RenderSVG renders DOT source to SVG with the embedded Graphviz engine.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a
// pixel-sized one so the SVG scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
