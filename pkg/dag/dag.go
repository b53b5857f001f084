package dag

import (
	"errors"
	"fmt"
	"slices"

	"github.com/google/uuid"
)

var (
	// ErrInvalidNodeID is returned by [DAG.AddNode] when the node ID is empty.
	// All tasks must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [DAG.AddNode] when a node with the same
	// ID already exists in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [DAG.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [DAG.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrDuplicateEdgeID is returned by [DAG.AddEdge] when the edge carries an
	// ID that is already in use.
	ErrDuplicateEdgeID = errors.New("duplicate edge ID")

	// ErrEdgeNotFound is returned by edge lookups and updates when no edge
	// has the requested ID.
	ErrEdgeNotFound = errors.New("edge not found")

	// ErrInvalidEdgeEndpoint is returned by [DAG.Validate] when an edge
	// references a node that doesn't exist. This indicates graph corruption.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")

	// ErrGraphHasCycle is returned by [DAG.Validate] when a cycle is detected.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Metadata stores arbitrary key-value pairs attached to nodes or the graph.
// Task scheduling attributes (start date, duration, progress, priority,
// status) live here: they travel with the node but no graph algorithm reads
// them. Metadata maps are never nil after being added to a DAG.
type Metadata map[string]any

// Node is a task vertex. Section is a grouping hint for presentation only and
// never constrains edges.
type Node struct {
	ID      string
	Section string
	Meta    Metadata
}

// Edge is a directed dependency: From must finish (or start, per Type)
// before To. Lag is a signed day offset carried as payload.
type Edge struct {
	ID   string
	From string
	To   string
	Type DependencyType
	Lag  int
}

// NewEdgeID returns a fresh opaque edge identifier.
func NewEdgeID() string { return uuid.NewString() }

// DAG is the task dependency graph. Nodes keep their insertion order, which
// is the tie-breaker for every ordering decision made by layout and
// critical-path analysis, so results are deterministic for a given input.
//
// The zero value is not usable - use New to create a valid DAG instance.
// DAG is not safe for concurrent use without external synchronization.
type DAG struct {
	nodes    map[string]*Node
	order    []string
	edges    []Edge
	outgoing map[string][]string // nodeID -> successor IDs
	incoming map[string][]string // nodeID -> predecessor IDs
	meta     Metadata
}

// New creates an empty DAG with optional graph-level metadata.
func New(meta Metadata) *DAG {
	if meta == nil {
		meta = Metadata{}
	}
	return &DAG{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		meta:     meta,
	}
}

// Meta returns the graph-level metadata map.
func (d *DAG) Meta() Metadata { return d.meta }

// AddNode appends a node to the graph. Returns ErrInvalidNodeID if the ID is
// empty, or ErrDuplicateNodeID if the ID is already present.
func (d *DAG) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := d.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	node := &n
	d.nodes[node.ID] = node
	d.order = append(d.order, node.ID)
	return nil
}

// RemoveNode deletes a node together with every edge touching it and returns
// the removed edges. Unknown IDs are ignored.
func (d *DAG) RemoveNode(id string) []Edge {
	if _, ok := d.nodes[id]; !ok {
		return nil
	}
	var removed []Edge
	for _, e := range d.edges {
		if e.From == id || e.To == id {
			removed = append(removed, e)
		}
	}
	for _, e := range removed {
		d.RemoveEdge(e.ID)
	}
	delete(d.nodes, id)
	delete(d.outgoing, id)
	delete(d.incoming, id)
	d.order = slices.DeleteFunc(d.order, func(s string) bool { return s == id })
	return removed
}

// AddEdge adds a directed edge between two existing nodes and returns it with
// its ID and Type filled in. An empty ID is replaced by [NewEdgeID]; an empty
// Type defaults to [FinishToStart].
//
// AddEdge checks endpoints only. Self-loops, duplicates and cycles are the
// business of [Validate]; callers gate edges through it before committing.
func (d *DAG) AddEdge(e Edge) (Edge, error) {
	if _, ok := d.nodes[e.From]; !ok {
		return Edge{}, fmt.Errorf("%w: %q", ErrUnknownSourceNode, e.From)
	}
	if _, ok := d.nodes[e.To]; !ok {
		return Edge{}, fmt.Errorf("%w: %q", ErrUnknownTargetNode, e.To)
	}
	if e.ID == "" {
		e.ID = NewEdgeID()
	} else if d.edgeIndex(e.ID) >= 0 {
		return Edge{}, fmt.Errorf("%w: %q", ErrDuplicateEdgeID, e.ID)
	}
	if e.Type == "" {
		e.Type = FinishToStart
	}
	d.edges = append(d.edges, e)
	d.outgoing[e.From] = append(d.outgoing[e.From], e.To)
	d.incoming[e.To] = append(d.incoming[e.To], e.From)
	return e, nil
}

// RemoveEdge removes the edge with the given ID and returns it.
// The boolean is false if no such edge exists.
func (d *DAG) RemoveEdge(id string) (Edge, bool) {
	i := d.edgeIndex(id)
	if i < 0 {
		return Edge{}, false
	}
	e := d.edges[i]
	d.edges = slices.Delete(d.edges, i, i+1)
	d.outgoing[e.From] = removeFirst(d.outgoing[e.From], e.To)
	d.incoming[e.To] = removeFirst(d.incoming[e.To], e.From)
	return e, true
}

func removeFirst(ids []string, id string) []string {
	if i := slices.Index(ids, id); i >= 0 {
		return slices.Delete(ids, i, i+1)
	}
	return ids
}

func (d *DAG) edgeIndex(id string) int {
	return slices.IndexFunc(d.edges, func(e Edge) bool { return e.ID == id })
}

// Edge returns the edge with the given ID.
func (d *DAG) Edge(id string) (Edge, bool) {
	if i := d.edgeIndex(id); i >= 0 {
		return d.edges[i], true
	}
	return Edge{}, false
}

// EdgeBetween returns the first edge from→to, if any.
func (d *DAG) EdgeBetween(from, to string) (Edge, bool) {
	for _, e := range d.edges {
		if e.From == from && e.To == to {
			return e, true
		}
	}
	return Edge{}, false
}

// SetEdgeType changes the dependency kind of an edge in place.
func (d *DAG) SetEdgeType(id string, t DependencyType) (Edge, error) {
	i := d.edgeIndex(id)
	if i < 0 {
		return Edge{}, fmt.Errorf("%w: %q", ErrEdgeNotFound, id)
	}
	if !t.Valid() {
		return Edge{}, fmt.Errorf("%w: %q", ErrInvalidDependencyType, t)
	}
	d.edges[i].Type = t
	return d.edges[i], nil
}

// SetEdgeLag changes the lag of an edge in place.
func (d *DAG) SetEdgeLag(id string, lag int) (Edge, error) {
	i := d.edgeIndex(id)
	if i < 0 {
		return Edge{}, fmt.Errorf("%w: %q", ErrEdgeNotFound, id)
	}
	d.edges[i].Lag = lag
	return d.edges[i], nil
}

// Nodes returns all nodes in insertion order. The returned slice contains
// pointers to the actual node structs, so modifications affect the graph.
func (d *DAG) Nodes() []*Node {
	nodes := make([]*Node, 0, len(d.order))
	for _, id := range d.order {
		nodes = append(nodes, d.nodes[id])
	}
	return nodes
}

// NodeIDs returns all node IDs in insertion order.
func (d *DAG) NodeIDs() []string { return slices.Clone(d.order) }

// Edges returns a copy of all edges in insertion order.
func (d *DAG) Edges() []Edge { return slices.Clone(d.edges) }

// NodeCount returns the number of nodes in the graph.
func (d *DAG) NodeCount() int { return len(d.nodes) }

// EdgeCount returns the number of edges in the graph.
func (d *DAG) EdgeCount() int { return len(d.edges) }

// Children returns the successors of a node in edge insertion order.
// The returned slice should not be modified.
func (d *DAG) Children(id string) []string { return d.outgoing[id] }

// Parents returns the predecessors of a node in edge insertion order.
// The returned slice should not be modified.
func (d *DAG) Parents(id string) []string { return d.incoming[id] }

// OutDegree returns the number of outgoing edges from the node.
func (d *DAG) OutDegree(id string) int { return len(d.outgoing[id]) }

// InDegree returns the number of incoming edges to the node.
func (d *DAG) InDegree(id string) int { return len(d.incoming[id]) }

// Node returns the node with the given ID and true, or nil and false if not found.
func (d *DAG) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// Sources returns nodes with no incoming edges, in insertion order.
func (d *DAG) Sources() []*Node {
	var sources []*Node
	for _, id := range d.order {
		if len(d.incoming[id]) == 0 {
			sources = append(sources, d.nodes[id])
		}
	}
	return sources
}

// Sinks returns nodes with no outgoing edges, in insertion order.
func (d *DAG) Sinks() []*Node {
	var sinks []*Node
	for _, id := range d.order {
		if len(d.outgoing[id]) == 0 {
			sinks = append(sinks, d.nodes[id])
		}
	}
	return sinks
}

// Clone returns a deep copy of the graph structure. Metadata maps are copied
// one level deep.
func (d *DAG) Clone() *DAG {
	c := New(copyMeta(d.meta))
	for _, n := range d.Nodes() {
		_ = c.AddNode(Node{ID: n.ID, Section: n.Section, Meta: copyMeta(n.Meta)})
	}
	for _, e := range d.edges {
		_, _ = c.AddEdge(e)
	}
	return c
}

func copyMeta(m Metadata) Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Validate checks graph integrity: every edge must reference existing nodes
// and the edge set must be acyclic. Returns ErrInvalidEdgeEndpoint or
// ErrGraphHasCycle respectively.
func (d *DAG) Validate() error {
	for _, e := range d.edges {
		_, okS := d.nodes[e.From]
		_, okD := d.nodes[e.To]
		if !okS || !okD {
			return ErrInvalidEdgeEndpoint
		}
	}
	if HasCycle(d.edges) {
		return ErrGraphHasCycle
	}
	return nil
}

// PosMap creates a position lookup map from a slice of node IDs.
func PosMap(ids []string) map[string]int {
	m := make(map[string]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}
