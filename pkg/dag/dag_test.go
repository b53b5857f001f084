package dag

import (
	"errors"
	"slices"
	"testing"
)

func diamond(t *testing.T) *DAG {
	t.Helper()
	g := New(nil)
	for _, id := range []string{"A", "B", "C", "D"} {
		if err := g.AddNode(Node{ID: id}); err != nil {
			t.Fatalf("AddNode(%s): %v", id, err)
		}
	}
	for _, e := range []Edge{
		{ID: "ab", From: "A", To: "B"},
		{ID: "ac", From: "A", To: "C"},
		{ID: "bd", From: "B", To: "D"},
		{ID: "cd", From: "C", To: "D"},
	} {
		if _, err := g.AddEdge(e); err != nil {
			t.Fatalf("AddEdge(%s): %v", e.ID, err)
		}
	}
	return g
}

func TestAddNode(t *testing.T) {
	g := New(nil)
	if err := g.AddNode(Node{ID: ""}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddNode(empty) = %v, want ErrInvalidNodeID", err)
	}
	if err := g.AddNode(Node{ID: "a"}); err != nil {
		t.Fatalf("AddNode(a) = %v", err)
	}
	if err := g.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("AddNode(dup) = %v, want ErrDuplicateNodeID", err)
	}
	n, _ := g.Node("a")
	if n.Meta == nil {
		t.Error("Meta should be initialized")
	}
}

func TestAddEdgeDefaults(t *testing.T) {
	g := New(nil)
	_ = g.AddNode(Node{ID: "a"})
	_ = g.AddNode(Node{ID: "b"})

	e, err := g.AddEdge(Edge{From: "a", To: "b"})
	if err != nil {
		t.Fatalf("AddEdge() error: %v", err)
	}
	if e.ID == "" {
		t.Error("AddEdge() should assign an ID")
	}
	if e.Type != FinishToStart {
		t.Errorf("Type = %q, want %q", e.Type, FinishToStart)
	}
}

func TestAddEdgeUnknownEndpoints(t *testing.T) {
	g := New(nil)
	_ = g.AddNode(Node{ID: "a"})

	if _, err := g.AddEdge(Edge{From: "x", To: "a"}); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("unknown source: got %v", err)
	}
	if _, err := g.AddEdge(Edge{From: "a", To: "x"}); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("unknown target: got %v", err)
	}
}

func TestAddEdgeDuplicateID(t *testing.T) {
	g := diamond(t)
	if _, err := g.AddEdge(Edge{ID: "ab", From: "B", To: "C"}); !errors.Is(err, ErrDuplicateEdgeID) {
		t.Errorf("AddEdge(dup id) = %v, want ErrDuplicateEdgeID", err)
	}
}

func TestRemoveEdge(t *testing.T) {
	g := diamond(t)

	e, ok := g.RemoveEdge("bd")
	if !ok || e.From != "B" || e.To != "D" {
		t.Fatalf("RemoveEdge(bd) = %+v, %v", e, ok)
	}
	if g.EdgeCount() != 3 {
		t.Errorf("EdgeCount() = %d, want 3", g.EdgeCount())
	}
	if slices.Contains(g.Children("B"), "D") {
		t.Error("B should no longer point at D")
	}
	if slices.Contains(g.Parents("D"), "B") {
		t.Error("D should no longer have B as parent")
	}
	if _, ok := g.RemoveEdge("bd"); ok {
		t.Error("second RemoveEdge(bd) should report false")
	}
}

func TestRemoveNodeDropsDanglingEdges(t *testing.T) {
	g := diamond(t)

	removed := g.RemoveNode("B")
	if len(removed) != 2 {
		t.Fatalf("removed %d edges, want 2", len(removed))
	}
	if g.NodeCount() != 3 || g.EdgeCount() != 2 {
		t.Errorf("graph = %d nodes / %d edges, want 3 / 2", g.NodeCount(), g.EdgeCount())
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	if got := g.NodeIDs(); !slices.Equal(got, []string{"A", "C", "D"}) {
		t.Errorf("NodeIDs() = %v", got)
	}
}

func TestSetEdgeTypeAndLag(t *testing.T) {
	g := diamond(t)

	e, err := g.SetEdgeType("ab", StartToStart)
	if err != nil || e.Type != StartToStart {
		t.Fatalf("SetEdgeType() = %+v, %v", e, err)
	}
	if _, err := g.SetEdgeType("ab", "bogus"); !errors.Is(err, ErrInvalidDependencyType) {
		t.Errorf("SetEdgeType(bogus) = %v", err)
	}
	if _, err := g.SetEdgeType("zz", StartToStart); !errors.Is(err, ErrEdgeNotFound) {
		t.Errorf("SetEdgeType(zz) = %v", err)
	}

	e, err = g.SetEdgeLag("ab", -2)
	if err != nil || e.Lag != -2 {
		t.Fatalf("SetEdgeLag() = %+v, %v", e, err)
	}
}

func TestSourcesSinksInsertionOrder(t *testing.T) {
	g := New(nil)
	for _, id := range []string{"z", "y", "x", "w"} {
		_ = g.AddNode(Node{ID: id})
	}
	_, _ = g.AddEdge(Edge{From: "z", To: "x"})
	_, _ = g.AddEdge(Edge{From: "y", To: "x"})

	var sources, sinks []string
	for _, n := range g.Sources() {
		sources = append(sources, n.ID)
	}
	for _, n := range g.Sinks() {
		sinks = append(sinks, n.ID)
	}
	if !slices.Equal(sources, []string{"z", "y", "w"}) {
		t.Errorf("Sources() = %v", sources)
	}
	if !slices.Equal(sinks, []string{"x", "w"}) {
		t.Errorf("Sinks() = %v", sinks)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g := diamond(t)
	c := g.Clone()

	c.RemoveEdge("ab")
	_ = c.AddNode(Node{ID: "E"})

	if g.EdgeCount() != 4 || g.NodeCount() != 4 {
		t.Error("mutating the clone changed the original")
	}
	if e, ok := c.Edge("ac"); !ok || e.From != "A" {
		t.Error("clone should keep edge IDs")
	}
}

func TestValidate(t *testing.T) {
	g := diamond(t)
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	_, _ = g.AddEdge(Edge{From: "D", To: "A"})
	if err := g.Validate(); !errors.Is(err, ErrGraphHasCycle) {
		t.Errorf("Validate() = %v, want ErrGraphHasCycle", err)
	}
}

func TestEdgeBetween(t *testing.T) {
	g := diamond(t)
	if e, ok := g.EdgeBetween("A", "C"); !ok || e.ID != "ac" {
		t.Errorf("EdgeBetween(A,C) = %+v, %v", e, ok)
	}
	if _, ok := g.EdgeBetween("C", "A"); ok {
		t.Error("EdgeBetween(C,A) should not exist")
	}
}
