package layout

import (
	"context"
	"strings"

	"github.com/matzehuels/taskflow/pkg/dag"
	"github.com/matzehuels/taskflow/pkg/errors"
)

// Direction is the flow of dependencies across the drawing.
type Direction string

const (
	TopToBottom Direction = "TB"
	BottomToTop Direction = "BT"
	LeftToRight Direction = "LR"
	RightToLeft Direction = "RL"
)

// ParseDirection accepts TB, BT, LR or RL in any case. Empty input yields
// [LeftToRight].
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToUpper(strings.TrimSpace(s))); d {
	case "":
		return LeftToRight, nil
	case TopToBottom, BottomToTop, LeftToRight, RightToLeft:
		return d, nil
	}
	return "", errors.New(errors.ErrCodeInvalidDirection, "unknown layout direction %q (want TB, BT, LR or RL)", s)
}

// Side names the edge of a node box where connectors attach.
type Side string

const (
	Top    Side = "top"
	Bottom Side = "bottom"
	Left   Side = "left"
	Right  Side = "right"
)

// Sides returns where incoming and outgoing edges attach for this direction.
// Left-to-right puts incoming edges on the left and outgoing on the right.
func (d Direction) Sides() (incoming, outgoing Side) {
	switch d {
	case TopToBottom:
		return Top, Bottom
	case BottomToTop:
		return Bottom, Top
	case RightToLeft:
		return Right, Left
	default:
		return Left, Right
	}
}

// horizontal reports whether ranks advance along the x axis.
func (d Direction) horizontal() bool {
	return d == LeftToRight || d == RightToLeft || d == ""
}

// Options configures node geometry and spacing, in pixels.
type Options struct {
	NodeWidth   float64   `json:"node_width" toml:"node_width"`
	NodeHeight  float64   `json:"node_height" toml:"node_height"`
	RankSpacing float64   `json:"rank_spacing" toml:"rank_spacing"`
	NodeSpacing float64   `json:"node_spacing" toml:"node_spacing"`
	Direction   Direction `json:"direction" toml:"direction"`
}

// DefaultOptions returns the geometry used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		NodeWidth:   180,
		NodeHeight:  60,
		RankSpacing: 80,
		NodeSpacing: 40,
		Direction:   LeftToRight,
	}
}

// Validate rejects non-positive node sizes, negative spacing and unknown
// directions.
func (o Options) Validate() error {
	if o.NodeWidth <= 0 || o.NodeHeight <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "node size must be positive, got %gx%g", o.NodeWidth, o.NodeHeight)
	}
	if o.RankSpacing < 0 || o.NodeSpacing < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "spacing must not be negative")
	}
	if _, err := ParseDirection(string(o.Direction)); err != nil {
		return err
	}
	return nil
}

// PlacedNode is a node with its computed box. X and Y are the top-left
// corner.
type PlacedNode struct {
	ID       string  `json:"id"`
	Level    int     `json:"level"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Incoming Side    `json:"incoming"`
	Outgoing Side    `json:"outgoing"`
}

// Point is a top-left position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Layout is the output of a [Strategy]: one placed node per graph node in
// insertion order, plus the graph's edges unchanged.
type Layout struct {
	Strategy  string       `json:"strategy"`
	Direction Direction    `json:"direction"`
	Nodes     []PlacedNode `json:"nodes"`
	Edges     []dag.Edge   `json:"edges"`
	Width     float64      `json:"width"`
	Height    float64      `json:"height"`
}

// Positions returns the {nodeID -> top-left} map.
func (l Layout) Positions() map[string]Point {
	m := make(map[string]Point, len(l.Nodes))
	for _, n := range l.Nodes {
		m[n.ID] = Point{X: n.X, Y: n.Y}
	}
	return m
}

// Node returns the placed node with the given ID.
func (l Layout) Node(id string) (PlacedNode, bool) {
	for _, n := range l.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return PlacedNode{}, false
}

// fitBounds sets Width and Height to the bounding box of all nodes.
func (l *Layout) fitBounds() {
	l.Width, l.Height = 0, 0
	for _, n := range l.Nodes {
		l.Width = max(l.Width, n.X+n.Width)
		l.Height = max(l.Height, n.Y+n.Height)
	}
}

// Strategy computes node positions for a graph. Implementations must be
// idempotent: an unchanged graph and options always give the same layout.
type Strategy interface {
	Name() string
	Compute(ctx context.Context, g *dag.DAG, opts Options) (Layout, error)
}

// Strategy names accepted by [ByName].
const (
	StrategyLeveled = "leveled"
	StrategyLayered = "layered"
)

// ByName returns the strategy registered under name. Empty selects
// [StrategyLeveled].
func ByName(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", StrategyLeveled:
		return Leveled{}, nil
	case StrategyLayered:
		return Layered{}, nil
	}
	return nil, errors.New(errors.ErrCodeInvalidStrategy, "unknown layout strategy %q (want %s or %s)", name, StrategyLeveled, StrategyLayered)
}
