package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AiDave71/Bannerlord.LauncherManager/catalog"
	"github.com/AiDave71/Bannerlord.LauncherManager/config"
	"github.com/AiDave71/Bannerlord.LauncherManager/depgraph"
	"github.com/AiDave71/Bannerlord.LauncherManager/order"
	"github.com/AiDave71/Bannerlord.LauncherManager/snapshot"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func testConfig() *config.Config {
	return &config.Config{
		Graph: config.GraphConfig{IncludeNative: true, IncludeOptional: true},
		Order: config.OrderConfig{CyclePolicy: "lenient"},
		Server: config.ServerConfig{
			Port:      config.DefaultServerPort,
			RateLimit: 1000,
			RateBurst: 1000,
		},
	}
}

func testCatalog() *catalog.Catalog {
	return catalog.New([]catalog.Module{
		{ID: "Native", Name: "Native", IsNative: true},
		{ID: "Harmony", Name: "Harmony", Required: []catalog.ModuleRef{{ID: "Native"}}},
		{ID: "Tweaks", Name: "Tweaks", Required: []catalog.ModuleRef{{ID: "Harmony"}}},
	})
}

func allSelected(cat *catalog.Catalog) catalog.Selection {
	selection := make(catalog.Selection, cat.Len())
	for _, id := range cat.IDs() {
		selection[id] = true
	}
	return selection
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	store, err := snapshot.NewFileStore(
		filepath.Join(t.TempDir(), "snapshots.json"), 5, testLogger())
	require.NoError(t, err)

	cat := testCatalog()
	srv := NewServer(testConfig(), cat, allSelected(cat), store, testLogger())
	go srv.Run()
	t.Cleanup(srv.cancel)

	mux := http.NewServeMux()
	srv.registerRoutes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	return srv, ts
}

func getJSON(t *testing.T, url string, v interface{}) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp
}

func postJSON(t *testing.T, url string, body interface{}, v interface{}) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp
}

func TestHandleHealth(t *testing.T) {
	_, ts := newTestServer(t)

	var health map[string]interface{}
	resp := getJSON(t, ts.URL+"/health", &health)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, float64(3), health["modules"])
}

func TestHandleGraph(t *testing.T) {
	_, ts := newTestServer(t)

	var graph depgraph.Graph
	resp := getJSON(t, ts.URL+"/api/graph", &graph)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, graph.Nodes, 3)
	assert.False(t, graph.HasCircularDependencies)
}

func TestHandleTree(t *testing.T) {
	_, ts := newTestServer(t)

	var tree depgraph.ModuleTree
	resp := getJSON(t, ts.URL+"/api/tree/Harmony", &tree)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Harmony", tree.ModuleID)
	assert.Equal(t, 1, tree.TotalDependencies)

	resp = getJSON(t, ts.URL+"/api/tree/Missing", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHandleValidate(t *testing.T) {
	_, ts := newTestServer(t)

	var result struct {
		Issues []depgraph.Issue `json:"issues"`
		Valid  bool             `json:"valid"`
	}
	resp := getJSON(t, ts.URL+"/api/validate", &result)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Issues)
}

func TestHandleAnalyze(t *testing.T) {
	_, ts := newTestServer(t)

	var result order.Result
	resp := postJSON(t, ts.URL+"/api/order/analyze", analyzeRequest{
		CurrentOrder: []string{"Tweaks", "Harmony", "Native"},
		Synthesize:   true,
	}, &result)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, result.HasIssues)
	assert.Equal(t, []string{"Native", "Harmony", "Tweaks"}, result.OptimizedOrder)
}

func TestHandleSynthesize(t *testing.T) {
	_, ts := newTestServer(t)

	var result order.SynthesisResult
	resp := getJSON(t, ts.URL+"/api/order/synthesize", &result)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"Native", "Harmony", "Tweaks"}, result.Order)
}

func TestHandleExport(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/export?format=dot")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body bytes.Buffer
	_, err = body.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(body.String(), "digraph"))

	resp, err = http.Get(ts.URL + "/api/export?format=svg")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSnapshotEndpoints(t *testing.T) {
	_, ts := newTestServer(t)

	// Save
	var saved snapshot.Snapshot
	resp := postJSON(t, ts.URL+"/api/snapshots", saveSnapshotRequest{
		ModuleOrder:  []string{"Native", "Harmony"},
		EnabledState: map[string]bool{"Native": true, "Harmony": true},
		Description:  "test",
	}, &saved)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, saved.ID)

	// List
	var listing struct {
		Snapshots []snapshot.Snapshot `json:"snapshots"`
	}
	resp = getJSON(t, ts.URL+"/api/snapshots", &listing)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, listing.Snapshots, 1)

	// Compare
	var diff snapshot.DiffResult
	resp = postJSON(t, ts.URL+"/api/snapshots/"+saved.ID+"/compare", compareRequest{
		CurrentOrder:   []string{"Harmony", "Native"},
		CurrentEnabled: map[string]bool{"Native": true, "Harmony": true},
	}, &diff)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, diff.PositionChanges, 2)

	// Delete
	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/snapshots/"+saved.ID, nil)
	require.NoError(t, err)
	delResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	delResp.Body.Close()
	assert.Equal(t, http.StatusOK, delResp.StatusCode)

	// Missing snapshot is a 404
	resp = getJSON(t, ts.URL+"/api/snapshots/"+saved.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Server.RateLimit = 1
	cfg.Server.RateBurst = 2

	cat := testCatalog()
	srv := NewServer(cfg, cat, allSelected(cat), nil, testLogger())
	go srv.Run()
	t.Cleanup(srv.cancel)

	mux := http.NewServeMux()
	srv.registerRoutes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	limited := false
	for i := 0; i < 5; i++ {
		resp, err := http.Get(ts.URL + "/health")
		require.NoError(t, err)
		resp.Body.Close()
		if resp.StatusCode == http.StatusTooManyRequests {
			limited = true
		}
	}
	assert.True(t, limited, "burst exhaustion returns 429")
}

func TestSnapshotsNotConfigured(t *testing.T) {
	cat := testCatalog()
	srv := NewServer(testConfig(), cat, allSelected(cat), nil, testLogger())
	go srv.Run()
	t.Cleanup(srv.cancel)

	mux := http.NewServeMux()
	srv.registerRoutes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	resp, err := http.Get(ts.URL + "/api/snapshots")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotImplemented, resp.StatusCode)
}

func TestWebSocketGraphPush(t *testing.T) {
	srv, ts := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Initial graph arrives on connect
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg graphUpdateMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "graph_update", msg.Type)
	require.NotNil(t, msg.Graph)
	assert.Len(t, msg.Graph.Nodes, 3)

	// A catalog update pushes a fresh graph
	updated := catalog.New([]catalog.Module{
		{ID: "Native", Name: "Native", IsNative: true},
	})
	srv.UpdateCatalog(updated, catalog.Selection{"Native": true})

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Len(t, msg.Graph.Nodes, 1)
}
