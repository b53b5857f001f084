package layout

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/taskflow/pkg/dag"
)

func TestRankGraph(t *testing.T) {
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: `say "hi"`})
	_ = g.AddNode(dag.Node{ID: "b"})
	_, _ = g.AddEdge(dag.Edge{From: `say "hi"`, To: "b"})

	opts := Options{NodeWidth: 144, NodeHeight: 72, RankSpacing: 36, NodeSpacing: 18, Direction: TopToBottom}
	dot := string(rankGraph(g, g.NodeIDs(), TopToBottom, opts))

	for _, want := range []string{
		"rankdir=TB;",
		"ranksep=0.5000;",
		"nodesep=0.2500;",
		"width=2.0000, height=1.0000",
		"n0 -> n1;",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "say") {
		t.Error("task IDs must not leak into DOT")
	}
}

func TestParsePositions(t *testing.T) {
	out := []byte(`digraph G {
	graph [bb="0,0,252,216",
		nodesep=0.25
	];
	node [label="", shape=box];
	n0	[height=1,
		pos="54,180",
		width=1.5];
	n1	[height=1,
		pos="54,36",
		width=1.5];
	n0 -> n1	[pos="e,54,72.1 54,143.7 54,124.67 54,100.02 54,82.129"];
}
`)
	centres, height, err := parsePositions(out)
	if err != nil {
		t.Fatal(err)
	}
	if height != 216 {
		t.Errorf("height = %g", height)
	}
	if len(centres) != 2 {
		t.Fatalf("centres = %v", centres)
	}
	if centres["n0"] != (Point{54, 180}) || centres["n1"] != (Point{54, 36}) {
		t.Errorf("centres = %v", centres)
	}
}

func TestParsePositionsMissingBB(t *testing.T) {
	if _, _, err := parsePositions([]byte("digraph G { n0 [pos=\"1,2\"]; }")); err == nil {
		t.Error("expected error")
	}
}

func TestLayeredLeftToRight(t *testing.T) {
	g := diamond(t)
	opts := DefaultOptions()
	l, err := Layered{}.Compute(context.Background(), g, opts)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if len(l.Nodes) != 4 {
		t.Fatalf("got %d nodes", len(l.Nodes))
	}

	pos := l.Positions()
	// Ranks advance left to right.
	if !(pos["A"].X < pos["B"].X && pos["B"].X < pos["D"].X) {
		t.Errorf("ranks not left-to-right: %v", pos)
	}
	if pos["B"].X != pos["C"].X {
		t.Errorf("B and C should share a rank: %v %v", pos["B"], pos["C"])
	}
	for _, n := range l.Nodes {
		if n.Incoming != Left || n.Outgoing != Right {
			t.Errorf("%s sides = %s/%s", n.ID, n.Incoming, n.Outgoing)
		}
		if n.Width != opts.NodeWidth || n.Height != opts.NodeHeight {
			t.Errorf("%s size = %gx%g", n.ID, n.Width, n.Height)
		}
	}

	again, err := Layered{}.Compute(context.Background(), g, opts)
	if err != nil {
		t.Fatal(err)
	}
	for id, p := range again.Positions() {
		if pos[id] != p {
			t.Errorf("not idempotent: %s %v vs %v", id, pos[id], p)
		}
	}
}

func TestLayeredTopToBottom(t *testing.T) {
	opts := DefaultOptions()
	opts.Direction = TopToBottom
	l, err := Layered{}.Compute(context.Background(), diamond(t), opts)
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	pos := l.Positions()
	if !(pos["A"].Y < pos["B"].Y && pos["B"].Y < pos["D"].Y) {
		t.Errorf("ranks not top-to-bottom: %v", pos)
	}
}

func TestLayeredEmpty(t *testing.T) {
	l, err := Layered{}.Compute(context.Background(), dag.New(nil), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Nodes) != 0 {
		t.Errorf("nodes = %v", l.Nodes)
	}
}
