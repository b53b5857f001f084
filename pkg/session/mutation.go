package session

import (
	"context"
	"slices"

	"github.com/matzehuels/taskflow/pkg/dag"
	errs "github.com/matzehuels/taskflow/pkg/errors"
	"github.com/matzehuels/taskflow/pkg/graph"
	"github.com/matzehuels/taskflow/pkg/observability"
)

// Connect adds a finish-to-start dependency source→target if it passes
// validation. A rejection (self-dependency, duplicate, cycle) is returned as
// an Outcome, not an error; errors are reserved for unknown task IDs.
func (s *Session) Connect(ctx context.Context, source, target string) (Outcome, error) {
	if err := s.requireNode(source); err != nil {
		return Outcome{}, err
	}
	if err := s.requireNode(target); err != nil {
		return Outcome{}, err
	}

	v := dag.Validate(source, target, s.g.Edges())
	observability.Session().OnMutation(ctx, "connect", source, target, string(v.Reason))
	if !v.Valid {
		s.logger.Debug("connect rejected", "source", source, "target", target, "reason", v.Reason)
		return Outcome{Rejected: v.Reason}, nil
	}

	e, err := s.g.AddEdge(dag.Edge{From: source, To: target, Type: dag.FinishToStart})
	if err != nil {
		return Outcome{}, errs.Wrap(errs.ErrCodeInternal, err, "commit dependency")
	}
	s.logger.Info("dependency added", "source", source, "target", target, "edge", e.ID)
	s.afterEdgeChange(ctx)
	return Outcome{Edge: e}, nil
}

// Retype advances an edge to the next dependency kind in the cycle
// finish-to-start, start-to-start, finish-to-finish, start-to-finish. The
// endpoints are revalidated against the remaining edges before committing.
func (s *Session) Retype(ctx context.Context, edgeID string) (Outcome, error) {
	e, err := s.requireEdge(edgeID)
	if err != nil {
		return Outcome{}, err
	}

	others := slices.DeleteFunc(s.g.Edges(), func(x dag.Edge) bool { return x.ID == edgeID })
	v := dag.Validate(e.From, e.To, others)
	observability.Session().OnMutation(ctx, "retype", e.From, e.To, string(v.Reason))
	if !v.Valid {
		s.logger.Debug("retype rejected", "edge", edgeID, "reason", v.Reason)
		return Outcome{Rejected: v.Reason}, nil
	}

	e, err = s.g.SetEdgeType(edgeID, e.Type.Next())
	if err != nil {
		return Outcome{}, errs.Wrap(errs.ErrCodeInternal, err, "retype dependency")
	}
	s.logger.Info("dependency retyped", "source", e.From, "target", e.To, "edge", e.ID, "type", e.Type)
	s.afterEdgeChange(ctx)
	return Outcome{Edge: e}, nil
}

// Disconnect removes an edge. Removal cannot create a cycle, so it is never
// rejected.
func (s *Session) Disconnect(ctx context.Context, edgeID string) (dag.Edge, error) {
	e, ok := s.g.RemoveEdge(edgeID)
	if !ok {
		return dag.Edge{}, errs.New(errs.ErrCodeEdgeNotFound, "dependency %q not found", edgeID)
	}
	observability.Session().OnMutation(ctx, "disconnect", e.From, e.To, "")
	s.logger.Info("dependency removed", "source", e.From, "target", e.To, "edge", e.ID)
	s.afterEdgeChange(ctx)
	return e, nil
}

// SetLag changes an edge's lag in days. Lag is payload only: it affects
// neither validity, the layout nor the critical path, so nothing is
// recomputed and listeners are not notified.
func (s *Session) SetLag(ctx context.Context, edgeID string, lag int) (dag.Edge, error) {
	if _, err := s.requireEdge(edgeID); err != nil {
		return dag.Edge{}, err
	}
	e, err := s.g.SetEdgeLag(edgeID, lag)
	if err != nil {
		return dag.Edge{}, errs.Wrap(errs.ErrCodeInternal, err, "set lag")
	}
	observability.Session().OnMutation(ctx, "lag", e.From, e.To, "")
	s.logger.Debug("lag changed", "edge", e.ID, "lag", lag)
	return e, nil
}

// PruneNodes removes tasks deleted from the task store together with every
// edge touching them, then refreshes derived state. Unknown IDs are ignored.
// The removed edges are returned.
func (s *Session) PruneNodes(ctx context.Context, ids ...string) ([]dag.Edge, error) {
	var removed []dag.Edge
	nodesGone := false
	for _, id := range ids {
		if _, ok := s.g.Node(id); !ok {
			continue
		}
		removed = append(removed, s.g.RemoveNode(id)...)
		nodesGone = true
	}
	if !nodesGone {
		return nil, nil
	}
	s.logger.Info("tasks pruned", "tasks", len(ids), "dependencies", len(removed))
	if err := s.refreshAfterNodeChange(ctx, len(removed) > 0); err != nil {
		return removed, err
	}
	return removed, nil
}

// SyncTasks reconciles the node set with the task store. Tasks no longer
// present are pruned with their edges; new tasks are appended. Existing edges
// whose endpoints survive are kept. Dependency pairs listed by the store that
// the graph lacks are added when they pass validation and reported otherwise.
func (s *Session) SyncTasks(ctx context.Context, tasks []graph.Task, sections []graph.Section) (graph.BuildReport, error) {
	incoming, report := graph.Build(tasks, sections)

	var gone []string
	for _, id := range s.g.NodeIDs() {
		if _, ok := incoming.Node(id); !ok {
			gone = append(gone, id)
		}
	}
	edgesChanged := false
	for _, id := range gone {
		if len(s.g.RemoveNode(id)) > 0 {
			edgesChanged = true
		}
	}

	for _, n := range incoming.Nodes() {
		if existing, ok := s.g.Node(n.ID); ok {
			existing.Section = n.Section
			existing.Meta = n.Meta
			continue
		}
		_ = s.g.AddNode(dag.Node{ID: n.ID, Section: n.Section, Meta: n.Meta})
	}
	for k, v := range incoming.Meta() {
		s.g.Meta()[k] = v
	}

	for _, e := range incoming.Edges() {
		if _, ok := s.g.EdgeBetween(e.From, e.To); ok {
			continue
		}
		if v := dag.Validate(e.From, e.To, s.g.Edges()); !v.Valid {
			report.SkippedDependencies = append(report.SkippedDependencies,
				graph.Dependency{FromTaskID: e.From, ToTaskID: e.To, Type: e.Type})
			s.logger.Warn("store dependency rejected", "source", e.From, "target", e.To, "reason", v.Reason)
			continue
		}
		_, _ = s.g.AddEdge(dag.Edge{From: e.From, To: e.To, Type: e.Type})
		edgesChanged = true
	}

	s.logger.Info("tasks synced", "tasks", s.g.NodeCount(), "removed", len(gone), "dependencies", s.g.EdgeCount())
	return report, s.refreshAfterNodeChange(ctx, edgesChanged)
}

// refreshAfterNodeChange recomputes derived state after the node set
// changed. The layout is always recomputed since new nodes need positions.
func (s *Session) refreshAfterNodeChange(ctx context.Context, edgesChanged bool) error {
	s.recomputeCriticalPath(ctx)
	err := s.relayout(ctx)
	if edgesChanged {
		s.notify()
	}
	return err
}
