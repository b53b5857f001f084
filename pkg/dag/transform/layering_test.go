package transform

import (
	"maps"
	"slices"
	"testing"

	"github.com/matzehuels/taskflow/pkg/dag"
)

func buildGraph(nodes []string, edges [][2]string) *dag.DAG {
	g := dag.New(nil)
	for _, id := range nodes {
		g.AddNode(dag.Node{ID: id})
	}
	for _, e := range edges {
		mustEdge(g, dag.Edge{ID: e[0] + "-" + e[1], From: e[0], To: e[1]})
	}
	return g
}

func TestAssignLevels_Diamond(t *testing.T) {
	g := buildGraph([]string{"A", "B", "C", "D"}, [][2]string{
		{"A", "B"}, {"A", "C"}, {"B", "D"}, {"C", "D"},
	})

	got := AssignLevels(g)
	want := map[string]int{"A": 0, "B": 1, "C": 1, "D": 2}
	if !maps.Equal(got, want) {
		t.Errorf("AssignLevels() = %v, want %v", got, want)
	}
}

func TestAssignLevels_LongestChainWins(t *testing.T) {
	// a → b → c → d, plus shortcut a → d
	g := buildGraph([]string{"a", "b", "c", "d"}, [][2]string{
		{"a", "b"}, {"b", "c"}, {"c", "d"}, {"a", "d"},
	})

	if got := AssignLevels(g)["d"]; got != 3 {
		t.Errorf("level(d) = %d, want 3", got)
	}
}

func TestAssignLevels_Properties(t *testing.T) {
	g := buildGraph([]string{"p", "q", "r", "s", "t", "u"}, [][2]string{
		{"p", "r"}, {"q", "r"}, {"r", "s"}, {"q", "t"}, {"t", "s"},
	})

	levels := AssignLevels(g)
	for _, n := range g.Nodes() {
		parents := g.Parents(n.ID)
		if len(parents) == 0 && levels[n.ID] != 0 {
			t.Errorf("root %s has level %d", n.ID, levels[n.ID])
		}
		for _, p := range parents {
			if levels[n.ID] <= levels[p] {
				t.Errorf("level(%s)=%d not above level(%s)=%d", n.ID, levels[n.ID], p, levels[p])
			}
		}
	}

	again := AssignLevels(g)
	if !maps.Equal(levels, again) {
		t.Errorf("AssignLevels() not deterministic: %v vs %v", levels, again)
	}
}

func TestAssignLevels_CycleTerminates(t *testing.T) {
	g := buildGraph([]string{"a", "b", "c"}, [][2]string{
		{"a", "b"}, {"b", "c"}, {"c", "a"},
	})

	levels := AssignLevels(g)
	if len(levels) != 3 {
		t.Fatalf("got %d levels, want 3", len(levels))
	}
}

func TestGroupByLevel(t *testing.T) {
	g := buildGraph([]string{"C", "A", "B", "D"}, [][2]string{
		{"A", "B"}, {"A", "C"}, {"B", "D"}, {"C", "D"},
	})

	groups := GroupByLevel(g, AssignLevels(g))
	want := [][]string{{"A"}, {"C", "B"}, {"D"}}
	if len(groups) != len(want) {
		t.Fatalf("GroupByLevel() = %v, want %v", groups, want)
	}
	for i := range want {
		if !slices.Equal(groups[i], want[i]) {
			t.Errorf("level %d = %v, want %v", i, groups[i], want[i])
		}
	}
}

func TestGroupByLevel_Empty(t *testing.T) {
	g := dag.New(nil)
	if groups := GroupByLevel(g, AssignLevels(g)); len(groups) != 0 {
		t.Errorf("GroupByLevel(empty) = %v", groups)
	}
}
