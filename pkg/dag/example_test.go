package dag_test

import (
	"fmt"

	"github.com/matzehuels/taskflow/pkg/dag"
)

func ExampleDAG_basic() {
	// design → build → ship
	g := dag.New(nil)
	_ = g.AddNode(dag.Node{ID: "design"})
	_ = g.AddNode(dag.Node{ID: "build"})
	_ = g.AddNode(dag.Node{ID: "ship"})
	_, _ = g.AddEdge(dag.Edge{ID: "e1", From: "design", To: "build"})
	_, _ = g.AddEdge(dag.Edge{ID: "e2", From: "build", To: "ship"})

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Children of design:", g.Children("design"))
	// Output:
	// Nodes: 3
	// Edges: 2
	// Children of design: [build]
}

func ExampleValidate() {
	edges := []dag.Edge{
		{From: "a", To: "b"},
		{From: "b", To: "c"},
	}

	fmt.Println(dag.Validate("c", "a", edges).Reason)
	fmt.Println(dag.Validate("a", "a", edges).Reason)
	fmt.Println(dag.Validate("a", "b", edges).Reason)
	fmt.Println(dag.Validate("a", "c", edges).Valid)
	// Output:
	// would create a cycle
	// self-dependency
	// duplicate dependency
	// true
}

func ExampleDependencyType_Next() {
	t := dag.FinishToStart
	for range 4 {
		t = t.Next()
		fmt.Println(t.Short())
	}
	// Output:
	// SS
	// FF
	// SF
	// FS
}
