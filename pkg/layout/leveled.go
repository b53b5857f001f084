package layout

import (
	"context"

	"github.com/matzehuels/taskflow/pkg/dag"
	"github.com/matzehuels/taskflow/pkg/dag/transform"
)

// Leveled places every node by its dependency level without any external
// layout engine. In left-to-right flow a node at level L and index i within
// that level sits at
//
//	x = L * (NodeWidth + RankSpacing)
//	y = i * (NodeHeight + NodeSpacing)
//
// Nodes within a level keep graph insertion order. Top-to-bottom swaps the
// axes; right-to-left and bottom-to-top mirror the rank axis so roots sit at
// the far end.
type Leveled struct{}

func (Leveled) Name() string { return StrategyLeveled }

func (Leveled) Compute(_ context.Context, g *dag.DAG, opts Options) (Layout, error) {
	if err := opts.Validate(); err != nil {
		return Layout{}, err
	}
	dir, _ := ParseDirection(string(opts.Direction))
	in, out := dir.Sides()

	levels := transform.AssignLevels(g)
	groups := transform.GroupByLevel(g, levels)
	maxLevel := len(groups) - 1

	l := Layout{
		Strategy:  StrategyLeveled,
		Direction: dir,
		Nodes:     make([]PlacedNode, 0, g.NodeCount()),
		Edges:     g.Edges(),
	}

	index := make(map[string]int, g.NodeCount())
	for _, ids := range groups {
		for i, id := range ids {
			index[id] = i
		}
	}

	for _, id := range g.NodeIDs() {
		lvl := levels[id]
		rank := lvl
		if dir == RightToLeft || dir == BottomToTop {
			rank = maxLevel - lvl
		}

		var x, y float64
		if dir.horizontal() {
			x = float64(rank) * (opts.NodeWidth + opts.RankSpacing)
			y = float64(index[id]) * (opts.NodeHeight + opts.NodeSpacing)
		} else {
			x = float64(index[id]) * (opts.NodeWidth + opts.NodeSpacing)
			y = float64(rank) * (opts.NodeHeight + opts.RankSpacing)
		}

		l.Nodes = append(l.Nodes, PlacedNode{
			ID:       id,
			Level:    lvl,
			X:        x,
			Y:        y,
			Width:    opts.NodeWidth,
			Height:   opts.NodeHeight,
			Incoming: in,
			Outgoing: out,
		})
	}
	l.fitBounds()
	return l, nil
}
