package graph_test

import (
	"fmt"

	"github.com/matzehuels/taskflow/pkg/graph"
)

func ExampleBuild() {
	tasks := []graph.Task{
		{ID: "plan"},
		{ID: "build", Dependencies: []string{"plan"}},
		{ID: "ship", Dependencies: []string{"build", "legal"}},
	}
	g, report := graph.Build(tasks, nil)

	fmt.Println("nodes:", g.NodeIDs())
	for _, d := range graph.Dependencies(g) {
		fmt.Printf("%s -> %s (%s)\n", d.FromTaskID, d.ToTaskID, d.Type)
	}
	fmt.Println("missing:", len(report.MissingDependencies))
	// Output:
	// nodes: [plan build ship]
	// plan -> build (finish-to-start)
	// build -> ship (finish-to-start)
	// missing: 1
}
