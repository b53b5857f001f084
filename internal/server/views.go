package server

import (
	"time"

	"github.com/matzehuels/taskflow/pkg/dag"
	"github.com/matzehuels/taskflow/pkg/graph"
	"github.com/matzehuels/taskflow/pkg/layout"
	"github.com/matzehuels/taskflow/pkg/session"
)

type errorView struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type rejectionView struct {
	Rejected string `json:"rejected"`
}

type edgeView struct {
	ID     string             `json:"id"`
	Source string             `json:"source"`
	Target string             `json:"target"`
	Type   dag.DependencyType `json:"type"`
	Lag    int                `json:"lag"`
}

func newEdgeView(e dag.Edge) edgeView {
	return edgeView{ID: e.ID, Source: e.From, Target: e.To, Type: e.Type, Lag: e.Lag}
}

func newEdgeViews(edges []dag.Edge) []edgeView {
	out := make([]edgeView, 0, len(edges))
	for _, e := range edges {
		out = append(out, newEdgeView(e))
	}
	return out
}

type reportView struct {
	MissingDependencies []graph.Dependency `json:"missingDependencies"`
	SkippedDependencies []graph.Dependency `json:"skippedDependencies"`
	SkippedTasks        []string           `json:"skippedTasks"`
}

func newReportView(r graph.BuildReport) *reportView {
	return &reportView{
		MissingDependencies: nonNil(r.MissingDependencies),
		SkippedDependencies: nonNil(r.SkippedDependencies),
		SkippedTasks:        nonNil(r.SkippedTasks),
	}
}

type sessionView struct {
	ID           string                  `json:"id"`
	CreatedAt    time.Time               `json:"createdAt"`
	Strategy     string                  `json:"strategy"`
	AutoLayout   bool                    `json:"autoLayout"`
	LayoutStale  bool                    `json:"layoutStale"`
	Positions    map[string]layout.Point `json:"positions"`
	Layout       layout.Layout           `json:"layout"`
	Edges        []edgeView              `json:"edges"`
	CriticalPath []string                `json:"criticalPath"`
	Report       *reportView             `json:"report,omitempty"`
}

func newSessionView(s *session.Session) sessionView {
	l := s.Layout()
	return sessionView{
		ID:           s.ID(),
		CreatedAt:    s.CreatedAt(),
		Strategy:     s.Strategy().Name(),
		AutoLayout:   s.AutoLayout(),
		LayoutStale:  s.LayoutStale(),
		Positions:    l.Positions(),
		Layout:       l,
		Edges:        newEdgeViews(s.Edges()),
		CriticalPath: nonNil(s.CriticalPath()),
	}
}
