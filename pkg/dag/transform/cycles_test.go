package transform

import (
	"testing"

	"github.com/matzehuels/taskflow/pkg/dag"
)

func TestBreakCycles_NoCycles(t *testing.T) {
	g := dag.New(nil)
	g.AddNode(dag.Node{ID: "a"})
	g.AddNode(dag.Node{ID: "b"})
	g.AddNode(dag.Node{ID: "c"})
	mustEdge(g, dag.Edge{From: "a", To: "b"})
	mustEdge(g, dag.Edge{From: "b", To: "c"})

	removed := len(BreakCycles(g))

	if removed != 0 {
		t.Errorf("BreakCycles() removed %d edges, want 0", removed)
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
	}
}

func TestBreakCycles_SimpleCycle(t *testing.T) {
	g := dag.New(nil)
	g.AddNode(dag.Node{ID: "a"})
	g.AddNode(dag.Node{ID: "b"})
	mustEdge(g, dag.Edge{From: "a", To: "b"})
	mustEdge(g, dag.Edge{From: "b", To: "a"})

	removed := len(BreakCycles(g))

	if removed != 1 {
		t.Errorf("BreakCycles() removed %d edges, want 1", removed)
	}
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
}

func TestBreakCycles_TriangleCycle(t *testing.T) {
	g := dag.New(nil)
	g.AddNode(dag.Node{ID: "a"})
	g.AddNode(dag.Node{ID: "b"})
	g.AddNode(dag.Node{ID: "c"})
	mustEdge(g, dag.Edge{From: "a", To: "b"})
	mustEdge(g, dag.Edge{From: "b", To: "c"})
	mustEdge(g, dag.Edge{From: "c", To: "a"})

	removed := len(BreakCycles(g))

	if removed != 1 {
		t.Errorf("BreakCycles() removed %d edges, want 1", removed)
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
	}
}

func TestBreakCycles_MultipleCycles(t *testing.T) {
	// Two separate cycles: a↔b and c↔d
	g := dag.New(nil)
	g.AddNode(dag.Node{ID: "a"})
	g.AddNode(dag.Node{ID: "b"})
	g.AddNode(dag.Node{ID: "c"})
	g.AddNode(dag.Node{ID: "d"})
	mustEdge(g, dag.Edge{From: "a", To: "b"})
	mustEdge(g, dag.Edge{From: "b", To: "a"})
	mustEdge(g, dag.Edge{From: "c", To: "d"})
	mustEdge(g, dag.Edge{From: "d", To: "c"})

	removed := len(BreakCycles(g))

	if removed != 2 {
		t.Errorf("BreakCycles() removed %d edges, want 2", removed)
	}
	if g.EdgeCount() != 2 {
		t.Errorf("EdgeCount() = %d, want 2", g.EdgeCount())
	}
}

func TestBreakCycles_SelfLoop(t *testing.T) {
	g := dag.New(nil)
	g.AddNode(dag.Node{ID: "a"})
	mustEdge(g, dag.Edge{From: "a", To: "a"})

	removed := len(BreakCycles(g))

	if removed != 1 {
		t.Errorf("BreakCycles() removed %d edges, want 1", removed)
	}
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount() = %d, want 0", g.EdgeCount())
	}
}

func TestBreakCycles_DiamondNoCycle(t *testing.T) {
	//   a
	//  / \
	// b   c
	//  \ /
	//   d
	g := dag.New(nil)
	g.AddNode(dag.Node{ID: "a"})
	g.AddNode(dag.Node{ID: "b"})
	g.AddNode(dag.Node{ID: "c"})
	g.AddNode(dag.Node{ID: "d"})
	mustEdge(g, dag.Edge{From: "a", To: "b"})
	mustEdge(g, dag.Edge{From: "a", To: "c"})
	mustEdge(g, dag.Edge{From: "b", To: "d"})
	mustEdge(g, dag.Edge{From: "c", To: "d"})

	removed := len(BreakCycles(g))

	if removed != 0 {
		t.Errorf("BreakCycles() removed %d edges, want 0", removed)
	}
	if g.EdgeCount() != 4 {
		t.Errorf("EdgeCount() = %d, want 4", g.EdgeCount())
	}
}

func TestBreakCycles_ResultIsAcyclic(t *testing.T) {
	// Complex graph with cycle
	g := dag.New(nil)
	g.AddNode(dag.Node{ID: "a"})
	g.AddNode(dag.Node{ID: "b"})
	g.AddNode(dag.Node{ID: "c"})
	g.AddNode(dag.Node{ID: "d"})
	mustEdge(g, dag.Edge{From: "a", To: "b"})
	mustEdge(g, dag.Edge{From: "b", To: "c"})
	mustEdge(g, dag.Edge{From: "c", To: "d"})
	mustEdge(g, dag.Edge{From: "d", To: "b"}) // back-edge creating cycle

	BreakCycles(g)

	// Run again - should find no more cycles
	removed := len(BreakCycles(g))
	if removed != 0 {
		t.Errorf("Graph still has cycles after BreakCycles()")
	}
}

func TestBreakCycles_EmptyGraph(t *testing.T) {
	g := dag.New(nil)

	removed := len(BreakCycles(g))

	if removed != 0 {
		t.Errorf("BreakCycles() removed %d edges, want 0", removed)
	}
}

func TestBreakCycles_SingleNode(t *testing.T) {
	g := dag.New(nil)
	g.AddNode(dag.Node{ID: "a"})

	removed := len(BreakCycles(g))

	if removed != 0 {
		t.Errorf("BreakCycles() removed %d edges, want 0", removed)
	}
}

func TestBreakCycles_Deterministic(t *testing.T) {
	build := func() *dag.DAG {
		g := dag.New(nil)
		for _, id := range []string{"a", "b", "c"} {
			g.AddNode(dag.Node{ID: id})
		}
		mustEdge(g, dag.Edge{ID: "ab", From: "a", To: "b"})
		mustEdge(g, dag.Edge{ID: "bc", From: "b", To: "c"})
		mustEdge(g, dag.Edge{ID: "ca", From: "c", To: "a"})
		return g
	}

	first := BreakCycles(build())
	second := BreakCycles(build())
	if len(first) != 1 || len(second) != 1 || first[0].ID != second[0].ID {
		t.Errorf("BreakCycles() not deterministic: %v vs %v", first, second)
	}
	if first[0].ID != "ca" {
		t.Errorf("removed %s, want ca (first back edge from a)", first[0].ID)
	}
}

func mustEdge(g *dag.DAG, e dag.Edge) {
	if _, err := g.AddEdge(e); err != nil {
		panic(err)
	}
}
