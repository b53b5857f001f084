package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/taskflow/pkg/dag"
	"github.com/matzehuels/taskflow/pkg/layout"
	"github.com/matzehuels/taskflow/pkg/session"
)

func newTestServer(t *testing.T) (*httptest.Server, *session.MemoryStore) {
	t.Helper()
	store := session.NewMemoryStore(0)
	srv, err := New(Options{
		Store:      store,
		Logger:     log.New(io.Discard),
		AutoLayout: true,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, store
}

func do(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, data
}

const diamond = `{"tasks": [
  {"id": "A"},
  {"id": "B", "dependencies": ["A"]},
  {"id": "C", "dependencies": ["A"]},
  {"id": "D", "dependencies": ["B", "C", "ghost"]}
]}`

func createDiamond(t *testing.T, ts *httptest.Server) sessionView {
	t.Helper()
	resp, body := do(t, http.MethodPost, ts.URL+"/sessions", diamond)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", resp.StatusCode, body)
	}
	var view sessionView
	if err := json.Unmarshal(body, &view); err != nil {
		t.Fatal(err)
	}
	return view
}

func findEdge(edges []edgeView, from, to string) (edgeView, bool) {
	for _, e := range edges {
		if e.Source == from && e.Target == to {
			return e, true
		}
	}
	return edgeView{}, false
}

func TestCreateSession(t *testing.T) {
	ts, store := newTestServer(t)
	view := createDiamond(t, ts)

	if view.ID == "" {
		t.Fatal("missing session id")
	}
	if store.Len() != 1 {
		t.Errorf("store has %d sessions, want 1", store.Len())
	}
	if len(view.Edges) != 4 {
		t.Errorf("edges = %d, want 4", len(view.Edges))
	}
	if got := strings.Join(view.CriticalPath, ","); got != "A,B,D" {
		t.Errorf("critical path = %s", got)
	}
	if view.Report == nil || len(view.Report.MissingDependencies) != 1 {
		t.Errorf("report = %+v", view.Report)
	}
	if view.Positions["D"].X <= view.Positions["A"].X {
		t.Errorf("D should be right of A: %+v", view.Positions)
	}
	if view.Strategy != layout.StrategyLeveled {
		t.Errorf("strategy = %s", view.Strategy)
	}
}

func TestCreateSessionBadInput(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"InvalidJSON", `{"tasks": [`},
		{"UnknownField", `{"tasks": [], "bogus": 1}`},
		{"BadTaskID", `{"tasks": [{"id": " padded"}]}`},
		{"BadStrategy", `{"tasks": [], "strategy": "spiral"}`},
		{"BadDirection", `{"tasks": [], "direction": "up"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := do(t, http.MethodPost, ts.URL+"/sessions", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, body = %s", resp.StatusCode, body)
			}
			var ev errorView
			if err := json.Unmarshal(body, &ev); err != nil || ev.Error == "" {
				t.Errorf("error body = %s", body)
			}
		})
	}
}

func TestConnect(t *testing.T) {
	ts, _ := newTestServer(t)
	view := createDiamond(t, ts)
	base := ts.URL + "/sessions/" + view.ID

	resp, body := do(t, http.MethodPost, base+"/edges", connectRequest{Source: "D", Target: "A"})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("cycle status = %d, body = %s", resp.StatusCode, body)
	}
	var rej rejectionView
	_ = json.Unmarshal(body, &rej)
	if rej.Rejected != string(dag.ReasonCycle) {
		t.Errorf("rejected = %q", rej.Rejected)
	}

	resp, body = do(t, http.MethodPost, base+"/edges", connectRequest{Source: "B", Target: "C"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("connect status = %d, body = %s", resp.StatusCode, body)
	}
	var e edgeView
	_ = json.Unmarshal(body, &e)
	if e.Type != dag.FinishToStart || e.ID == "" {
		t.Errorf("edge = %+v", e)
	}

	_, body = do(t, http.MethodGet, base, nil)
	var after sessionView
	_ = json.Unmarshal(body, &after)
	if got := strings.Join(after.CriticalPath, ","); got != "A,B,C,D" {
		t.Errorf("critical path after connect = %s", got)
	}
	if len(after.Edges) != 5 {
		t.Errorf("edges = %d, want 5", len(after.Edges))
	}

	resp, _ = do(t, http.MethodPost, base+"/edges", connectRequest{Source: "A", Target: "nope"})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown task status = %d", resp.StatusCode)
	}
}

func TestEdgeMutations(t *testing.T) {
	ts, _ := newTestServer(t)
	view := createDiamond(t, ts)
	base := ts.URL + "/sessions/" + view.ID
	ab, ok := findEdge(view.Edges, "A", "B")
	if !ok {
		t.Fatal("edge A→B missing")
	}

	resp, body := do(t, http.MethodPost, base+"/edges/"+ab.ID+"/retype", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("retype status = %d, body = %s", resp.StatusCode, body)
	}
	var e edgeView
	_ = json.Unmarshal(body, &e)
	if e.Type != dag.StartToStart {
		t.Errorf("retyped = %s, want start-to-start", e.Type)
	}

	resp, body = do(t, http.MethodPatch, base+"/edges/"+ab.ID, map[string]int{"lag": -3})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("lag status = %d, body = %s", resp.StatusCode, body)
	}
	_ = json.Unmarshal(body, &e)
	if e.Lag != -3 {
		t.Errorf("lag = %d", e.Lag)
	}

	resp, _ = do(t, http.MethodPatch, base+"/edges/"+ab.ID, `{}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing lag status = %d", resp.StatusCode)
	}

	resp, _ = do(t, http.MethodDelete, base+"/edges/"+ab.ID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("disconnect status = %d", resp.StatusCode)
	}
	resp, _ = do(t, http.MethodDelete, base+"/edges/"+ab.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second disconnect status = %d", resp.StatusCode)
	}

	_, body = do(t, http.MethodGet, base+"/critical-path", nil)
	var cp map[string][]string
	_ = json.Unmarshal(body, &cp)
	if got := strings.Join(cp["criticalPath"], ","); got != "A,C,D" {
		t.Errorf("critical path = %s", got)
	}
}

func TestAutoLayoutAndRelayout(t *testing.T) {
	ts, _ := newTestServer(t)
	view := createDiamond(t, ts)
	base := ts.URL + "/sessions/" + view.ID

	resp, body := do(t, http.MethodPut, base+"/auto-layout", autoLayoutRequest{Enabled: false})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("auto-layout status = %d, body = %s", resp.StatusCode, body)
	}

	do(t, http.MethodPost, base+"/edges", connectRequest{Source: "B", Target: "C"})

	_, body = do(t, http.MethodGet, base, nil)
	var got sessionView
	_ = json.Unmarshal(body, &got)
	if got.AutoLayout || !got.LayoutStale {
		t.Errorf("auto=%v stale=%v, want manual and stale", got.AutoLayout, got.LayoutStale)
	}

	resp, body = do(t, http.MethodPost, base+"/layout", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("relayout status = %d, body = %s", resp.StatusCode, body)
	}
	_ = json.Unmarshal(body, &got)
	if got.LayoutStale {
		t.Error("layout still stale after relayout")
	}
	if got.Positions["C"].X <= got.Positions["B"].X {
		t.Errorf("C should move right of B: %+v", got.Positions)
	}
}

func TestSyncAndPrune(t *testing.T) {
	ts, _ := newTestServer(t)
	view := createDiamond(t, ts)
	base := ts.URL + "/sessions/" + view.ID

	sync := `{"tasks": [
  {"id": "A"},
  {"id": "B", "dependencies": ["A"]},
  {"id": "E", "dependencies": ["B"]}
]}`
	resp, body := do(t, http.MethodPut, base+"/tasks", sync)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("sync status = %d, body = %s", resp.StatusCode, body)
	}
	var got sessionView
	_ = json.Unmarshal(body, &got)
	if strings.Join(got.CriticalPath, ",") != "A,B,E" {
		t.Errorf("critical path = %v", got.CriticalPath)
	}

	resp, body = do(t, http.MethodPost, base+"/prune", pruneRequest{IDs: []string{"B"}})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("prune status = %d, body = %s", resp.StatusCode, body)
	}
	var pruned map[string][]edgeView
	_ = json.Unmarshal(body, &pruned)
	if len(pruned["removedEdges"]) != 2 {
		t.Errorf("removed = %+v", pruned)
	}

	_, body = do(t, http.MethodGet, base+"/dependencies", nil)
	var deps []map[string]any
	_ = json.Unmarshal(body, &deps)
	if len(deps) != 0 {
		t.Errorf("dependencies = %v", deps)
	}
}

func TestDOT(t *testing.T) {
	ts, _ := newTestServer(t)
	view := createDiamond(t, ts)
	base := ts.URL + "/sessions/" + view.ID

	resp, body := do(t, http.MethodGet, base+"/dot", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dot status = %d", resp.StatusCode)
	}
	if !strings.HasPrefix(string(body), "digraph") || !strings.Contains(string(body), "rankdir=LR") {
		t.Errorf("dot = %s", body)
	}

	resp, _ = do(t, http.MethodGet, base+"/dot?format=pdf", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("pdf status = %d", resp.StatusCode)
	}
}

func TestSessionLifecycle(t *testing.T) {
	ts, store := newTestServer(t)
	view := createDiamond(t, ts)
	base := ts.URL + "/sessions/" + view.ID

	resp, _ := do(t, http.MethodDelete, base, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	if store.Len() != 0 {
		t.Errorf("store has %d sessions", store.Len())
	}

	resp, body := do(t, http.MethodGet, base, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("get deleted status = %d, body = %s", resp.StatusCode, body)
	}
	var ev errorView
	_ = json.Unmarshal(body, &ev)
	if ev.Code != "SESSION_NOT_FOUND" {
		t.Errorf("code = %s", ev.Code)
	}
}

func TestHealthAndVersion(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, body := do(t, http.MethodGet, ts.URL+"/healthz", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "ok") {
		t.Errorf("healthz = %d %s", resp.StatusCode, body)
	}
	resp, body = do(t, http.MethodGet, ts.URL+"/version", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "version") {
		t.Errorf("version = %d %s", resp.StatusCode, body)
	}
}

func TestNewRequiresStore(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Error("expected error without store")
	}
	if _, err := New(Options{Store: session.NewMemoryStore(0), Strategy: "spiral"}); err == nil {
		t.Error("expected error for unknown strategy")
	}
}
