// Package graph converts between the task store's flat task list and the
// dependency graph, and serializes graphs for persistence.
//
// # Building
//
// [Build] turns []Task into a *dag.DAG: one node per task in input order and
// one finish-to-start edge per (predecessor, task) pair. Dependencies that
// name unknown tasks are omitted and listed in the [BuildReport]:
//
//	g, report := graph.Build(doc.Tasks, doc.Sections)
//	if !report.Empty() {
//	    logger.Warn("task data", "missing", len(report.MissingDependencies))
//	}
//
// [Dependencies] goes the other way, producing the {fromTaskId, toTaskId,
// type} records delivered to dependency-change listeners.
//
// # Serialization
//
// [Graph] is the node-link snapshot format used by session stores. It keeps
// edge IDs, types and lag, which the task list cannot express. Use
// [FromDAG]/[ToDAG] to convert.
//
// [Document] is the JSON task file read by the CLI; see [ReadDocumentFile].
package graph
