package session

import (
	"context"
	"time"

	"github.com/matzehuels/taskflow/pkg/graph"
	"github.com/matzehuels/taskflow/pkg/layout"
)

// Snapshot is the persisted form of a session. The graph keeps edge IDs,
// types and lag, so a restored session behaves exactly like the original.
type Snapshot struct {
	ID         string         `json:"id" bson:"_id"`
	Graph      graph.Graph    `json:"graph" bson:"graph"`
	Strategy   string         `json:"strategy" bson:"strategy"`
	Options    layout.Options `json:"options" bson:"options"`
	AutoLayout bool           `json:"auto_layout" bson:"auto_layout"`

	// Layout is kept only for manual-layout sessions, whose positions must
	// survive until the next explicit relayout.
	Layout      *layout.Layout `json:"layout,omitempty" bson:"layout,omitempty"`
	LayoutStale bool           `json:"layout_stale,omitempty" bson:"layout_stale,omitempty"`

	CreatedAt  time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at" bson:"updated_at"`
	ExpiresAt  time.Time      `json:"expires_at,omitzero" bson:"expires_at,omitempty"`
}

// IsExpired reports whether the snapshot carries an expiry in the past.
func (s *Snapshot) IsExpired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Snapshot captures the session's graph and settings. The critical path is
// recomputed on restore, and so is the layout unless auto-layout is off.
func (s *Session) Snapshot() *Snapshot {
	snap := &Snapshot{
		ID:         s.id,
		Graph:      graph.FromDAG(s.g),
		Strategy:   s.strategy.Name(),
		Options:    s.opts,
		AutoLayout: s.auto,
		CreatedAt:  s.createdAt,
		UpdatedAt:  time.Now().UTC(),
	}
	if !s.auto {
		l := s.current
		snap.Layout = &l
		snap.LayoutStale = s.stale
	}
	return snap
}

// Restore reopens a session from a snapshot. Options passed here override
// the snapshot's settings; this is how callers inject a logger or wrap the
// strategy with a cache.
func Restore(ctx context.Context, snap *Snapshot, opts ...Option) (*Session, error) {
	g, err := graph.ToDAG(snap.Graph)
	if err != nil {
		return nil, err
	}
	strategy, err := layout.ByName(snap.Strategy)
	if err != nil {
		return nil, err
	}
	base := []Option{
		WithID(snap.ID),
		WithStrategy(strategy),
		WithLayoutOptions(snap.Options),
		WithAutoLayout(snap.AutoLayout),
		withCreatedAt(snap.CreatedAt),
	}
	if snap.Layout != nil {
		base = append(base, withLayout(*snap.Layout, snap.LayoutStale))
	}
	return New(ctx, g, append(base, opts...)...)
}
