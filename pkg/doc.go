// Package pkg provides the core libraries of taskflow, a dependency graph
// engine for project tasks.
//
// # Overview
//
// Taskflow takes task records from an external store (ID, predecessor list,
// scheduling payload), builds a directed acyclic graph from them, keeps the
// graph acyclic while dependencies are edited, finds its critical path and
// lays it out for drawing. The pkg directory is organized into these areas:
//
//  1. [dag] - Graph model, dependency validation and cycle detection
//  2. [graph] - External task/dependency shapes and the graph builder
//  3. [layout] - Layout strategies (leveled, layered via Graphviz)
//  4. [session] - Editing sessions and their persistence
//  5. [render/nodelink] - DOT and SVG export
//
// # Architecture
//
// The typical data flow:
//
//	Task store records
//	         ↓
//	    [graph] package (Build: tasks → DAG, report of dropped dependencies)
//	         ↓
//	    [session] package (Connect / Retype / Disconnect, critical path)
//	         ↓
//	    [layout] package (node positions and connector sides)
//	         ↓
//	    JSON layout, DOT or SVG output
//
// # Quick Start
//
//	tasks := []graph.Task{
//	    {ID: "design"},
//	    {ID: "build", Dependencies: []string{"design"}},
//	    {ID: "ship", Dependencies: []string{"build"}},
//	}
//	s, report, err := session.FromTasks(ctx, tasks, nil)
//	if err != nil {
//	    return err
//	}
//	out, _ := s.Connect(ctx, "ship", "design")
//	fmt.Println(out.Rejected) // would create a cycle
//	fmt.Println(s.CriticalPath())
//
// # Main Packages
//
// [dag] - Insertion-ordered DAG of task nodes and typed dependency edges.
// [dag.Validate] is the single gate every proposed edge passes through; it
// rejects self-dependencies, duplicates and cycles.
//
// [dag/transform] - Leveling, critical path, cycle repair for malformed
// input and the redundant-dependency report.
//
// [layout] - The [layout.Strategy] interface with the leveled strategy
// (column per longest-predecessor depth) and the layered strategy (Graphviz
// dot ranking and crossing reduction). [layout.Cached] memoizes either one.
//
// [session] - A session owns one graph and exposes the edge mutation API.
// Stores persist session snapshots in memory, on disk, in Redis or in
// MongoDB.
//
// ## Infrastructure
//
// [cache] - Byte cache (null, file, Redis) with content-hash keys.
//
// [config] - taskflow.toml loading and validation.
//
// [errors] - Coded errors shared by all packages.
//
// [observability] - Hooks for metrics and tracing with no-op defaults.
//
// [retry] - Retries for transient failures when dialing stores.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/session/...            # Specific package
//	go test -run Example ./pkg/...       # Examples only
//
// [dag]: https://pkg.go.dev/github.com/matzehuels/taskflow/pkg/dag
// [dag/transform]: https://pkg.go.dev/github.com/matzehuels/taskflow/pkg/dag/transform
// [graph]: https://pkg.go.dev/github.com/matzehuels/taskflow/pkg/graph
// [layout]: https://pkg.go.dev/github.com/matzehuels/taskflow/pkg/layout
// [session]: https://pkg.go.dev/github.com/matzehuels/taskflow/pkg/session
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/taskflow/pkg/render/nodelink
// [cache]: https://pkg.go.dev/github.com/matzehuels/taskflow/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/taskflow/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/taskflow/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/taskflow/pkg/observability
// [retry]: https://pkg.go.dev/github.com/matzehuels/taskflow/pkg/retry
package pkg
