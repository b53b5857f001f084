package graph

import (
	"fmt"
	"maps"

	"github.com/matzehuels/taskflow/pkg/dag"
)

// Metadata keys under which task scheduling attributes are carried on
// dag.Node.Meta.
const (
	MetaName      = "name"
	MetaStartDate = "start_date"
	MetaDuration  = "duration"
	MetaProgress  = "progress"
	MetaPriority  = "priority"
	MetaStatus    = "status"
)

// metaSections is the graph-level metadata key holding section IDs in order.
const metaSections = "sections"

// =============================================================================
// External Shapes - what the task store hands over and gets back
// =============================================================================

// Task is a task as exposed by the task store. Only ID, Dependencies and
// Section matter to the graph; the rest is display payload.
type Task struct {
	ID           string   `json:"id" bson:"id"`
	Name         string   `json:"name,omitempty" bson:"name,omitempty"`
	Dependencies []string `json:"dependencies,omitempty" bson:"dependencies,omitempty"`
	Section      string   `json:"section,omitempty" bson:"section,omitempty"`
	StartDate    string   `json:"startDate,omitempty" bson:"start_date,omitempty"`
	Duration     int      `json:"duration,omitempty" bson:"duration,omitempty"`
	Progress     int      `json:"progress,omitempty" bson:"progress,omitempty"`
	Priority     string   `json:"priority,omitempty" bson:"priority,omitempty"`
	Status       string   `json:"status,omitempty" bson:"status,omitempty"`
}

// Section is a grouping hint. It never constrains dependencies.
type Section struct {
	ID   string `json:"id" bson:"id"`
	Name string `json:"name,omitempty" bson:"name,omitempty"`
}

// Document is the task file format read by the CLI and accepted by the
// server when a session is created.
type Document struct {
	Tasks    []Task    `json:"tasks"`
	Sections []Section `json:"sections,omitempty"`
}

// Dependency is the shape delivered to dependency-change listeners.
type Dependency struct {
	FromTaskID string             `json:"fromTaskId"`
	ToTaskID   string             `json:"toTaskId"`
	Type       dag.DependencyType `json:"type"`
}

// =============================================================================
// Graph - serialization of a live DAG, edge identity included
// =============================================================================

// Graph is the serialized form of a dag.DAG. Unlike [Document] it preserves
// edge IDs, types and lag, so a session can be saved and restored exactly.
type Graph struct {
	Nodes    []Node   `json:"nodes" bson:"nodes"`
	Edges    []Edge   `json:"edges" bson:"edges"`
	Sections []string `json:"sections,omitempty" bson:"sections,omitempty"`
}

// Node is a serialized task node.
type Node struct {
	ID      string         `json:"id" bson:"id"`
	Section string         `json:"section,omitempty" bson:"section,omitempty"`
	Meta    map[string]any `json:"meta,omitempty" bson:"meta,omitempty"`
}

// Edge is a serialized dependency edge.
type Edge struct {
	ID   string             `json:"id" bson:"id"`
	From string             `json:"from" bson:"from"`
	To   string             `json:"to" bson:"to"`
	Type dag.DependencyType `json:"type" bson:"type"`
	Lag  int                `json:"lag,omitempty" bson:"lag,omitempty"`
}

// FromDAG converts a DAG to its serialization format. Nodes and edges keep
// graph insertion order so a round trip reproduces identical layouts.
func FromDAG(g *dag.DAG) Graph {
	out := Graph{
		Nodes:    make([]Node, 0, g.NodeCount()),
		Edges:    make([]Edge, 0, g.EdgeCount()),
		Sections: SectionIDs(g),
	}
	for _, n := range g.Nodes() {
		out.Nodes = append(out.Nodes, Node{ID: n.ID, Section: n.Section, Meta: copyMeta(n.Meta)})
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, Edge{ID: e.ID, From: e.From, To: e.To, Type: e.Type, Lag: e.Lag})
	}
	return out
}

// ToDAG converts a Graph back to a DAG. Structural errors (duplicate node,
// unknown endpoint, duplicate edge ID) are returned; acyclicity is checked
// with [dag.DAG.Validate].
func ToDAG(gj Graph) (*dag.DAG, error) {
	d := dag.New(nil)
	if len(gj.Sections) > 0 {
		d.Meta()[metaSections] = append([]string(nil), gj.Sections...)
	}

	for _, nj := range gj.Nodes {
		if err := d.AddNode(dag.Node{ID: nj.ID, Section: nj.Section, Meta: copyMeta(nj.Meta)}); err != nil {
			return nil, fmt.Errorf("add node %s: %w", nj.ID, err)
		}
	}
	for _, ej := range gj.Edges {
		t := ej.Type
		if t != "" && !t.Valid() {
			return nil, fmt.Errorf("edge %s: %w: %q", ej.ID, dag.ErrInvalidDependencyType, t)
		}
		if _, err := d.AddEdge(dag.Edge{ID: ej.ID, From: ej.From, To: ej.To, Type: t, Lag: ej.Lag}); err != nil {
			return nil, fmt.Errorf("add edge %s→%s: %w", ej.From, ej.To, err)
		}
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// SectionIDs returns the section IDs recorded on the graph by [Build].
func SectionIDs(g *dag.DAG) []string {
	ids, _ := g.Meta()[metaSections].([]string)
	return append([]string(nil), ids...)
}

// copyMeta creates a shallow copy of metadata to avoid mutation.
func copyMeta(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	return maps.Clone(m)
}
