// Package dag provides the task dependency graph behind the workflow view.
//
// # Overview
//
// Tasks are nodes; dependencies are typed, directed edges meaning "From must
// come before To". The graph must stay acyclic at all times, must never hold
// a self-loop, and holds at most one edge per ordered (From, To) pair.
//
// # Basic Usage
//
// Create a graph with [New], add tasks with [DAG.AddNode], and gate every new
// dependency through [Validate] before committing it with [DAG.AddEdge]:
//
//	g := dag.New(nil)
//	g.AddNode(dag.Node{ID: "design"})
//	g.AddNode(dag.Node{ID: "build"})
//	if v := dag.Validate("design", "build", g.Edges()); v.Valid {
//	    g.AddEdge(dag.Edge{From: "design", To: "build"})
//	}
//
// [DAG.AddEdge] only checks that both endpoints exist. Acyclicity is the
// caller's job; the session package funnels all mutations through [Validate]
// so the invariant is enforced in one place.
//
// # Dependency Types
//
// Each edge carries a [DependencyType] (FS, SS, FF, SF) and a signed Lag in
// days. Both are payload: they are stored and round-tripped but no algorithm
// here reads them. [DependencyType.Next] walks the fixed retype cycle.
//
// # Cycle Detection
//
// [HasCycle] works on a bare edge slice so it can be run against a candidate
// edge set before anything is committed. It is O(V+E) and handles
// disconnected components.
//
// # Ordering
//
// Nodes keep insertion order. [DAG.Nodes], [DAG.Sources] and [DAG.Sinks]
// return that order, and downstream algorithms use it as their tie-breaker.
//
// # Concurrency
//
// DAG instances are not safe for concurrent use.
//
// # Related Packages
//
// The [transform] subpackage computes levels, the critical path, redundant
// edges, and repairs cyclic input.
//
// [transform]: github.com/matzehuels/taskflow/pkg/dag/transform
package dag
