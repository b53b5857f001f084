package layout

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/taskflow/pkg/dag"
	"github.com/matzehuels/taskflow/pkg/dag/transform"
	"github.com/matzehuels/taskflow/pkg/errors"
)

// pointsPerInch converts between pixel options and Graphviz inch units.
const pointsPerInch = 72.0

// Layered delegates ranking, crossing reduction and coordinate assignment to
// the Graphviz dot engine. Nodes are fixed-size boxes; positions read back
// from Graphviz are centres in a bottom-left origin and are converted to
// top-left corners in a top-left origin.
//
// Graphviz is embedded (WebAssembly), so no external binary is needed.
type Layered struct{}

func (Layered) Name() string { return StrategyLayered }

func (Layered) Compute(ctx context.Context, g *dag.DAG, opts Options) (Layout, error) {
	if err := opts.Validate(); err != nil {
		return Layout{}, err
	}
	dir, _ := ParseDirection(string(opts.Direction))
	in, out := dir.Sides()

	l := Layout{
		Strategy:  StrategyLayered,
		Direction: dir,
		Nodes:     make([]PlacedNode, 0, g.NodeCount()),
		Edges:     g.Edges(),
	}
	if g.NodeCount() == 0 {
		return l, nil
	}

	ids := g.NodeIDs()
	dot := rankGraph(g, ids, dir, opts)

	rendered, err := runDot(ctx, dot)
	if err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeLayout, err, "graphviz layout")
	}
	centres, height, err := parsePositions(rendered)
	if err != nil {
		return Layout{}, errors.Wrap(errors.ErrCodeLayout, err, "read graphviz positions")
	}

	levels := transform.AssignLevels(g)
	for i, id := range ids {
		c, ok := centres[dotName(i)]
		if !ok {
			return Layout{}, errors.New(errors.ErrCodeLayout, "graphviz returned no position for %q", id)
		}
		l.Nodes = append(l.Nodes, PlacedNode{
			ID:       id,
			Level:    levels[id],
			X:        c.X - opts.NodeWidth/2,
			Y:        (height - c.Y) - opts.NodeHeight/2,
			Width:    opts.NodeWidth,
			Height:   opts.NodeHeight,
			Incoming: in,
			Outgoing: out,
		})
	}
	l.fitBounds()
	return l, nil
}

// dotName is the Graphviz identifier of the i-th node. Task IDs are free
// text, so they never reach the DOT source.
func dotName(i int) string { return "n" + strconv.Itoa(i) }

// rankGraph writes the DOT input for the dot engine.
func rankGraph(g *dag.DAG, ids []string, dir Direction, opts Options) []byte {
	idx := dag.PosMap(ids)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", dir)
	fmt.Fprintf(&buf, "  ranksep=%s;\n", inches(opts.RankSpacing))
	fmt.Fprintf(&buf, "  nodesep=%s;\n", inches(opts.NodeSpacing))
	buf.WriteString("  ordering=out;\n")
	fmt.Fprintf(&buf, "  node [shape=box, fixedsize=true, label=\"\", width=%s, height=%s];\n",
		inches(opts.NodeWidth), inches(opts.NodeHeight))
	for i := range ids {
		fmt.Fprintf(&buf, "  %s;\n", dotName(i))
	}
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %s -> %s;\n", dotName(idx[e.From]), dotName(idx[e.To]))
	}
	buf.WriteString("}\n")
	return buf.Bytes()
}

func inches(px float64) string {
	return strconv.FormatFloat(px/pointsPerInch, 'f', 4, 64)
}

func runDot(ctx context.Context, dot []byte) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	graph, err := graphviz.ParseBytes(dot)
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer graph.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	bbRe      = regexp.MustCompile(`bb="([-0-9.]+),([-0-9.]+),([-0-9.]+),([-0-9.]+)"`)
	nodeStmRe = regexp.MustCompile(`(?ms)^\s*(n[0-9]+)\s+\[(.*?)\];`)
	posRe     = regexp.MustCompile(`\bpos="([-0-9.]+),([-0-9.]+)"`)
)

// parsePositions extracts node centres and the bounding-box height from
// laid-out DOT. Coordinates are in points with the origin at bottom-left.
func parsePositions(out []byte) (map[string]Point, float64, error) {
	bb := bbRe.FindSubmatch(out)
	if bb == nil {
		return nil, 0, fmt.Errorf("missing bounding box")
	}
	height, err := strconv.ParseFloat(string(bb[4]), 64)
	if err != nil {
		return nil, 0, fmt.Errorf("bounding box: %w", err)
	}

	centres := make(map[string]Point)
	for _, m := range nodeStmRe.FindAllSubmatch(out, -1) {
		pos := posRe.FindSubmatch(m[2])
		if pos == nil {
			continue
		}
		x, errX := strconv.ParseFloat(string(pos[1]), 64)
		y, errY := strconv.ParseFloat(string(pos[2]), 64)
		if errX != nil || errY != nil {
			return nil, 0, fmt.Errorf("node %s: bad pos %q", m[1], m[2])
		}
		centres[string(m[1])] = Point{X: x, Y: y}
	}
	return centres, height, nil
}
