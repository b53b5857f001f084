package session

import (
	"context"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/taskflow/pkg/dag"
	"github.com/matzehuels/taskflow/pkg/dag/transform"
	errs "github.com/matzehuels/taskflow/pkg/errors"
	"github.com/matzehuels/taskflow/pkg/graph"
	"github.com/matzehuels/taskflow/pkg/layout"
	"github.com/matzehuels/taskflow/pkg/observability"
)

// Outcome is the result of a validated mutation. Exactly one of Edge and
// Rejected is meaningful: a rejected mutation leaves the graph unchanged.
type Outcome struct {
	Edge     dag.Edge
	Rejected dag.Reason
}

// Accepted reports whether the mutation was committed.
func (o Outcome) Accepted() bool { return o.Rejected == "" }

// Listener receives the full, current dependency list after every committed
// change to the edge set.
type Listener func(deps []graph.Dependency)

// Session owns one task dependency graph and is its only mutation surface.
// Every edge it commits has passed [dag.Validate], so the graph is acyclic
// at all times. After each committed mutation the critical path is
// recomputed, and the layout too when auto-layout is on.
//
// A Session is not safe for concurrent use; callers serialize access.
type Session struct {
	id        string
	g         *dag.DAG
	strategy  layout.Strategy
	opts      layout.Options
	auto      bool
	logger    *log.Logger
	createdAt time.Time

	current   layout.Layout
	stale     bool
	restored  bool
	critical  []string
	listeners []listener
	nextID    int
}

type listener struct {
	id int
	fn Listener
}

// Option configures a Session.
type Option func(*Session)

// WithID sets the session ID. By default a random UUID is used.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// WithLogger sets the logger. Nil keeps log.Default().
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStrategy sets the layout strategy. The default is [layout.Leveled].
func WithStrategy(st layout.Strategy) Option {
	return func(s *Session) {
		if st != nil {
			s.strategy = st
		}
	}
}

// WithLayoutOptions sets node geometry and direction.
func WithLayoutOptions(o layout.Options) Option {
	return func(s *Session) { s.opts = o }
}

// WithAutoLayout sets whether edge mutations recompute the layout. The
// default is on.
func WithAutoLayout(on bool) Option {
	return func(s *Session) { s.auto = on }
}

func withCreatedAt(t time.Time) Option {
	return func(s *Session) { s.createdAt = t }
}

// withLayout seeds the current layout so a manual-layout session keeps the
// positions it was saved with.
func withLayout(l layout.Layout, stale bool) Option {
	return func(s *Session) {
		s.current = l
		s.stale = stale
		s.restored = true
	}
}

// New creates a session that takes ownership of g. If g contains a cycle
// (malformed upstream data) the back edges are removed and logged. The
// initial layout and critical path are computed before New returns.
func New(ctx context.Context, g *dag.DAG, opts ...Option) (*Session, error) {
	if g == nil {
		g = dag.New(nil)
	}
	s := &Session{
		id:        uuid.NewString(),
		g:         g,
		strategy:  layout.Leveled{},
		opts:      layout.DefaultOptions(),
		auto:      true,
		logger:    log.Default(),
		createdAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.opts.Validate(); err != nil {
		return nil, err
	}

	broken := transform.BreakCycles(g)
	for _, e := range broken {
		s.logger.Warn("dropped cyclic dependency", "source", e.From, "target", e.To, "edge", e.ID)
	}

	s.recomputeCriticalPath(ctx)
	if s.restored && !s.auto {
		s.stale = s.stale || len(broken) > 0
		return s, nil
	}
	if err := s.relayout(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// FromTasks builds the graph from the task store's records and opens a
// session on it. The report lists dependencies that could not be turned
// into edges.
func FromTasks(ctx context.Context, tasks []graph.Task, sections []graph.Section, opts ...Option) (*Session, graph.BuildReport, error) {
	g, report := graph.Build(tasks, sections)
	s, err := New(ctx, g, opts...)
	if err != nil {
		return nil, report, err
	}
	if !report.Empty() {
		s.logger.Warn("incomplete task data",
			"missing", len(report.MissingDependencies),
			"skipped", len(report.SkippedDependencies),
			"bad_tasks", len(report.SkippedTasks))
	}
	return s, report, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// CreatedAt returns when the session was first opened.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Graph returns a copy of the current graph.
func (s *Session) Graph() *dag.DAG { return s.g.Clone() }

// Edges returns the current edges in insertion order.
func (s *Session) Edges() []dag.Edge { return s.g.Edges() }

// Dependencies returns the current edges in the external shape.
func (s *Session) Dependencies() []graph.Dependency { return graph.Dependencies(s.g) }

// CriticalPath returns the most recently computed critical path.
func (s *Session) CriticalPath() []string { return slices.Clone(s.critical) }

// Layout returns the most recently computed layout. When auto-layout is off
// it may predate the latest edge mutations; see [Session.LayoutStale].
func (s *Session) Layout() layout.Layout { return s.current }

// LayoutStale reports whether edges changed since the layout was computed.
func (s *Session) LayoutStale() bool { return s.stale }

// AutoLayout reports whether edge mutations recompute the layout.
func (s *Session) AutoLayout() bool { return s.auto }

// Strategy returns the layout strategy in use.
func (s *Session) Strategy() layout.Strategy { return s.strategy }

// LayoutOptions returns the node geometry and direction in use.
func (s *Session) LayoutOptions() layout.Options { return s.opts }

// OnDependencyChange registers fn to be called after every committed change
// to the edge set. The returned function unregisters it.
func (s *Session) OnDependencyChange(fn Listener) (cancel func()) {
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listener{id: id, fn: fn})
	return func() {
		s.listeners = slices.DeleteFunc(s.listeners, func(l listener) bool { return l.id == id })
	}
}

// SetAutoLayout turns auto-layout on or off. Turning it on brings a stale
// layout up to date immediately.
func (s *Session) SetAutoLayout(ctx context.Context, on bool) error {
	s.auto = on
	s.logger.Debug("auto-layout", "enabled", on)
	if on && s.stale {
		return s.relayout(ctx)
	}
	return nil
}

// Relayout recomputes the layout regardless of the auto-layout setting.
func (s *Session) Relayout(ctx context.Context) error {
	return s.relayout(ctx)
}

func (s *Session) relayout(ctx context.Context) error {
	start := time.Now()
	l, err := s.strategy.Compute(ctx, s.g, s.opts)
	observability.Session().OnLayout(ctx, s.strategy.Name(), s.g.NodeCount(), time.Since(start), err)
	if err != nil {
		s.stale = true
		return err
	}
	s.current = l
	s.stale = false
	s.logger.Debug("layout computed", "strategy", s.strategy.Name(), "nodes", len(l.Nodes), "elapsed", time.Since(start))
	return nil
}

func (s *Session) recomputeCriticalPath(ctx context.Context) {
	s.critical = transform.CriticalPath(s.g)
	observability.Session().OnCriticalPath(ctx, len(s.critical))
}

// afterEdgeChange refreshes derived state and notifies listeners. A layout
// failure is logged and leaves the layout stale; the mutation itself stays
// committed.
func (s *Session) afterEdgeChange(ctx context.Context) {
	s.recomputeCriticalPath(ctx)
	if s.auto {
		if err := s.relayout(ctx); err != nil {
			s.logger.Error("layout failed", "strategy", s.strategy.Name(), "err", err)
		}
	} else {
		s.stale = true
	}
	s.notify()
}

func (s *Session) notify() {
	if len(s.listeners) == 0 {
		return
	}
	deps := graph.Dependencies(s.g)
	for _, l := range slices.Clone(s.listeners) {
		l.fn(slices.Clone(deps))
	}
}

func (s *Session) requireNode(id string) error {
	if _, ok := s.g.Node(id); !ok {
		return errs.New(errs.ErrCodeNodeNotFound, "task %q not found", id)
	}
	return nil
}

func (s *Session) requireEdge(id string) (dag.Edge, error) {
	e, ok := s.g.Edge(id)
	if !ok {
		return dag.Edge{}, errs.New(errs.ErrCodeEdgeNotFound, "dependency %q not found", id)
	}
	return e, nil
}
