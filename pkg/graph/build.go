package graph

import "github.com/matzehuels/taskflow/pkg/dag"

// BuildReport lists what [Build] left out. Omissions are data-quality
// findings about the upstream store, not failures.
type BuildReport struct {
	// MissingDependencies are (predecessor, task) pairs whose predecessor ID
	// does not name any task in the input.
	MissingDependencies []Dependency
	// SkippedDependencies are self-references and repeated predecessors.
	SkippedDependencies []Dependency
	// SkippedTasks are task IDs that were empty or already seen.
	SkippedTasks []string
}

// Empty reports whether nothing was omitted.
func (r BuildReport) Empty() bool {
	return len(r.MissingDependencies) == 0 && len(r.SkippedDependencies) == 0 && len(r.SkippedTasks) == 0
}

// Build converts a flat task list into a dependency graph. Every task becomes
// a node in input order; every (predecessor, task) pair found in a task's
// Dependencies becomes one finish-to-start edge. Sections are recorded as a
// grouping hint only.
//
// Build never fails. A dependency on an unknown task is silently omitted and
// listed in the report, as are self-references, repeated predecessors and
// tasks with an empty or duplicate ID.
//
// Build does not check for cycles: task data can describe one, and callers
// that need the acyclic invariant run transform.BreakCycles on the result.
func Build(tasks []Task, sections []Section) (*dag.DAG, BuildReport) {
	var report BuildReport
	g := dag.New(nil)

	if len(sections) > 0 {
		ids := make([]string, 0, len(sections))
		for _, s := range sections {
			ids = append(ids, s.ID)
		}
		g.Meta()[metaSections] = ids
	}

	kept := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if err := g.AddNode(dag.Node{ID: t.ID, Section: t.Section, Meta: taskMeta(t)}); err != nil {
			report.SkippedTasks = append(report.SkippedTasks, t.ID)
			continue
		}
		kept = append(kept, t)
	}

	for _, t := range kept {
		seen := make(map[string]bool, len(t.Dependencies))
		for _, pred := range t.Dependencies {
			dep := Dependency{FromTaskID: pred, ToTaskID: t.ID, Type: dag.FinishToStart}
			if _, ok := g.Node(pred); !ok {
				report.MissingDependencies = append(report.MissingDependencies, dep)
				continue
			}
			if pred == t.ID || seen[pred] {
				report.SkippedDependencies = append(report.SkippedDependencies, dep)
				continue
			}
			seen[pred] = true
			_, _ = g.AddEdge(dag.Edge{From: pred, To: t.ID, Type: dag.FinishToStart})
		}
	}
	return g, report
}

func taskMeta(t Task) dag.Metadata {
	m := dag.Metadata{}
	if t.Name != "" {
		m[MetaName] = t.Name
	}
	if t.StartDate != "" {
		m[MetaStartDate] = t.StartDate
	}
	if t.Duration != 0 {
		m[MetaDuration] = t.Duration
	}
	if t.Progress != 0 {
		m[MetaProgress] = t.Progress
	}
	if t.Priority != "" {
		m[MetaPriority] = t.Priority
	}
	if t.Status != "" {
		m[MetaStatus] = t.Status
	}
	return m
}

// Dependencies converts the current edge list to the external
// {fromTaskId, toTaskId, type} shape, in edge insertion order.
func Dependencies(g *dag.DAG) []Dependency {
	edges := g.Edges()
	out := make([]Dependency, 0, len(edges))
	for _, e := range edges {
		out = append(out, Dependency{FromTaskID: e.From, ToTaskID: e.To, Type: e.Type})
	}
	return out
}
