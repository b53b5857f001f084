package layout

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/taskflow/pkg/cache"
	"github.com/matzehuels/taskflow/pkg/dag"
	"github.com/matzehuels/taskflow/pkg/observability"
)

// Cached memoizes an inner strategy in a [cache.Cache]. The key covers what
// positions depend on: node IDs in insertion order, edge endpoints in
// insertion order, the strategy name and the options. Edge IDs are freshly
// generated each time tasks are built, so they stay out of the key and a hit
// carries the current graph's edges.
//
// Cache failures degrade to computing the layout; they are never returned.
type Cached struct {
	Inner Strategy
	Cache cache.Cache
	TTL   time.Duration
}

func (c Cached) Name() string { return c.Inner.Name() }

func (c Cached) Compute(ctx context.Context, g *dag.DAG, opts Options) (Layout, error) {
	key, ok := c.key(g, opts)
	if ok {
		if data, hit, err := c.Cache.Get(ctx, key); err == nil && hit {
			var l Layout
			if json.Unmarshal(data, &l) == nil && len(l.Nodes) == g.NodeCount() {
				observability.Cache().OnCacheHit(ctx, "layout")
				l.Edges = g.Edges()
				return l, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "layout")
	}

	l, err := c.Inner.Compute(ctx, g, opts)
	if err != nil {
		return Layout{}, err
	}
	if ok {
		if data, err := json.Marshal(l); err == nil {
			if c.Cache.Set(ctx, key, data, c.TTL) == nil {
				observability.Cache().OnCacheSet(ctx, "layout", len(data))
			}
		}
	}
	return l, nil
}

// shape is the part of a graph that positions depend on.
type shape struct {
	Nodes []string    `json:"nodes"`
	Edges [][2]string `json:"edges"`
}

func (c Cached) key(g *dag.DAG, opts Options) (string, bool) {
	if c.Cache == nil {
		return "", false
	}
	sh := shape{Nodes: g.NodeIDs()}
	for _, e := range g.Edges() {
		sh.Edges = append(sh.Edges, [2]string{e.From, e.To})
	}
	data, err := json.Marshal(sh)
	if err != nil {
		return "", false
	}
	return cache.LayoutKey(cache.Hash(data), c.Inner.Name(), opts), true
}
