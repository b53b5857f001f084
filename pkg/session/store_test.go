package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/taskflow/pkg/dag"
	"github.com/matzehuels/taskflow/pkg/graph"
	"github.com/matzehuels/taskflow/pkg/layout"
	"github.com/matzehuels/taskflow/pkg/observability"
)

func testSnapshot(id string) *Snapshot {
	return &Snapshot{
		ID: id,
		Graph: graph.Graph{
			Nodes: []graph.Node{{ID: "a"}, {ID: "b"}},
			Edges: []graph.Edge{{ID: "e1", From: "a", To: "b", Type: dag.FinishToStart, Lag: 1}},
		},
		Strategy:   layout.StrategyLeveled,
		Options:    layout.DefaultOptions(),
		AutoLayout: true,
		CreatedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func testStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	got, err := store.Get(ctx, "missing")
	if err != nil || got != nil {
		t.Fatalf("Get(missing) = %v, %v; want nil, nil", got, err)
	}

	if err := store.Set(ctx, testSnapshot("s1")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err = store.Get(ctx, "s1")
	if err != nil || got == nil {
		t.Fatalf("Get(s1) = %v, %v", got, err)
	}
	if len(got.Graph.Edges) != 1 || got.Graph.Edges[0].Lag != 1 {
		t.Errorf("graph = %+v", got.Graph)
	}
	if !got.CreatedAt.Equal(testSnapshot("s1").CreatedAt) {
		t.Errorf("CreatedAt = %v", got.CreatedAt)
	}

	got.Graph.Nodes = nil
	again, _ := store.Get(ctx, "s1")
	if len(again.Graph.Nodes) != 2 {
		t.Error("store shares state with callers")
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got, _ := store.Get(ctx, "s1"); got != nil {
		t.Error("deleted session still returned")
	}
	if err := store.Delete(ctx, "s1"); err != nil {
		t.Errorf("Delete(missing) = %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemoryStore(time.Hour))
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	testStore(t, s)
}

func TestFileStoreRejectsTraversal(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), 0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(context.Background(), "../escape"); err == nil {
		t.Error("path traversal accepted")
	}
	if err := s.Set(context.Background(), testSnapshot("a/b")); err == nil {
		t.Error("slash in ID accepted")
	}
}

func TestFileStoreCleanup(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir, 0)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := s.Set(ctx, testSnapshot("keep")); err != nil {
		t.Fatal(err)
	}

	expired := testSnapshot("old")
	expired.ExpiresAt = time.Now().Add(-time.Hour)
	data := []byte(`{"id":"old","graph":{"nodes":[],"edges":[]},"expires_at":"` + expired.ExpiresAt.Format(time.RFC3339) + `"}`)
	if err := os.WriteFile(filepath.Join(dir, "old.json"), data, 0o600); err != nil {
		t.Fatal(err)
	}

	if err := s.Cleanup(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "old.json")); !os.IsNotExist(err) {
		t.Error("expired session not removed")
	}
	if got, _ := s.Get(ctx, "keep"); got == nil {
		t.Error("live session removed")
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	m := NewMemoryStore(time.Nanosecond)
	ctx := context.Background()
	if err := m.Set(ctx, testSnapshot("s")); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if got, _ := m.Get(ctx, "s"); got != nil {
		t.Error("expired session returned")
	}
	if m.Len() != 0 {
		t.Error("expired session not evicted")
	}
}

func TestRedisStoreKey(t *testing.T) {
	s := newRedisStore(nil, RedisConfig{})
	if got := s.key("abc"); got != "taskflow:session:abc" {
		t.Errorf("key = %q", got)
	}
	s = newRedisStore(nil, RedisConfig{Prefix: "x:"})
	if got := s.key("abc"); got != "x:abc" {
		t.Errorf("key = %q", got)
	}
}

func TestMongoHelpers(t *testing.T) {
	f := idFilter("s1")
	if len(f) != 1 || f[0].Key != "_id" || f[0].Value != "s1" {
		t.Errorf("idFilter = %v", f)
	}
	idx := expiryIndex()
	if idx.Options == nil || idx.Options.ExpireAfterSeconds == nil || *idx.Options.ExpireAfterSeconds != 0 {
		t.Error("expiry index must expire at expires_at")
	}
}

type recordingStoreHooks struct {
	observability.NoopStoreHooks
	loads, saves int
}

func (r *recordingStoreHooks) OnLoad(context.Context, string, string, time.Duration, error) { r.loads++ }
func (r *recordingStoreHooks) OnSave(context.Context, string, string, time.Duration, error) { r.saves++ }

func TestInstrument(t *testing.T) {
	hooks := &recordingStoreHooks{}
	observability.SetStoreHooks(hooks)
	defer observability.Reset()

	s := Instrument(NewMemoryStore(0), "memory")
	ctx := context.Background()
	_ = s.Set(ctx, testSnapshot("x"))
	_, _ = s.Get(ctx, "x")
	_, _ = s.Get(ctx, "y")

	if hooks.saves != 1 || hooks.loads != 2 {
		t.Errorf("saves=%d loads=%d", hooks.saves, hooks.loads)
	}
	if err := s.Delete(ctx, "x"); err != nil {
		t.Error(err)
	}
}
