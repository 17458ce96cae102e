package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AiDave71/Bannerlord.LauncherManager/depgraph"
	"github.com/AiDave71/Bannerlord.LauncherManager/errors"
	"github.com/AiDave71/Bannerlord.LauncherManager/export"
	"github.com/AiDave71/Bannerlord.LauncherManager/order"
	"github.com/AiDave71/Bannerlord.LauncherManager/version"
)

func (s *Server) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			parsed, err := url.Parse(origin)
			if err != nil {
				return false
			}
			for _, allowed := range s.allowedOrigins {
				if strings.HasPrefix(origin, allowed) {
					return true
				}
				if allowedURL, err := url.Parse(allowed); err == nil &&
					parsed.Hostname() == allowedURL.Hostname() {
					return true
				}
			}
			return false
		},
	}
}

// HandleWebSocket upgrades the connection and registers a graph push client
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := s.upgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Errorw("WebSocket upgrade failed", "error", err.Error())
		return
	}

	client := &Client{
		server: s,
		conn:   conn,
		send:   make(chan *depgraph.Graph, 16),
		id:     fmt.Sprintf("%s_%d", r.RemoteAddr, time.Now().UnixNano()),
	}

	s.register <- client

	s.wg.Add(2)
	go func() {
		defer s.wg.Done()
		client.readPump()
	}()
	go func() {
		defer s.wg.Done()
		client.writePump()
	}()
}

// HandleHealth reports server liveness plus build and client info
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	versionInfo := version.Get()
	s.mu.RLock()
	clientCount := len(s.clients)
	moduleCount := s.cat.Len()
	s.mu.RUnlock()

	health := map[string]interface{}{
		"status":     "ok",
		"version":    versionInfo.Version,
		"commit":     versionInfo.CommitHash,
		"build_time": versionInfo.BuildTime,
		"clients":    clientCount,
		"modules":    moduleCount,
	}
	writeJSON(w, http.StatusOK, health)
}

// HandleGraph serves the current dependency graph
func (s *Server) HandleGraph(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, s.Graph())
}

// HandleTree serves the dependency and dependent trees for one module
// (GET /api/tree/{id})
func (s *Server) HandleTree(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	parts := extractPathParts(r.URL.Path, "/api/tree/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, "Module id required")
		return
	}
	moduleID := parts[0]

	cat, selection := s.catalogState()
	tree, err := depgraph.NewTreeBuilder(cat, selection, s.logger).Build(moduleID)
	if err != nil {
		if errors.IsNotFound(err) {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Module %q not found", moduleID))
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

// HandleValidate serves selection validation findings
func (s *Server) HandleValidate(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	cat, selection := s.catalogState()
	issues := depgraph.Validate(cat, selection)
	if issues == nil {
		issues = []depgraph.Issue{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"issues": issues,
		"valid":  len(issues) == 0,
	})
}

type analyzeRequest struct {
	CurrentOrder []string `json:"current_order"`
	Synthesize   bool     `json:"synthesize"`
}

// HandleAnalyze grades a load order (POST /api/order/analyze)
func (s *Server) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}
	var req analyzeRequest
	if err := readJSON(w, r, &req); err != nil {
		return
	}

	cat, selection := s.catalogState()
	analyzer := order.NewAnalyzer(cat, s.logger)
	result := analyzer.Analyze(req.CurrentOrder, selection, order.AnalyzeOptions{
		Synthesize:  req.Synthesize,
		CyclePolicy: s.cyclePolicy,
	})
	writeJSON(w, http.StatusOK, result)
}

// HandleSynthesize serves a freshly synthesized load order
func (s *Server) HandleSynthesize(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	cat, selection := s.catalogState()
	synth := order.NewSynthesizer(cat, s.logger, s.cyclePolicy)
	writeJSON(w, http.StatusOK, synth.Synthesize(selection))
}

// HandleExport serves the graph in an interchange format
// (GET /api/export?format=dot)
func (s *Server) HandleExport(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	format := export.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = export.FormatJSON
	}

	out, err := export.Render(s.Graph(), format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	contentType := "text/plain; charset=utf-8"
	if format == export.FormatJSON {
		contentType = "application/json"
	} else if format == export.FormatCSV {
		contentType = "text/csv"
	}
	w.Header().Set("Content-Type", contentType)
	w.Write([]byte(out))
}

type saveSnapshotRequest struct {
	ModuleOrder  []string        `json:"module_order"`
	EnabledState map[string]bool `json:"enabled_state"`
	Description  string          `json:"description"`
}

// HandleSnapshots lists snapshots (GET) or saves a new one (POST)
func (s *Server) HandleSnapshots(w http.ResponseWriter, r *http.Request) {
	if s.snapshots == nil {
		writeError(w, http.StatusNotImplemented, "Snapshot store not configured")
		return
	}

	switch r.Method {
	case http.MethodGet:
		snaps, err := s.snapshots.List()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"snapshots": snaps})
	case http.MethodPost:
		var req saveSnapshotRequest
		if err := readJSON(w, r, &req); err != nil {
			return
		}
		snap, err := s.snapshots.Save(req.ModuleOrder, req.EnabledState, req.Description)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, snap)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

type compareRequest struct {
	CurrentOrder   []string        `json:"current_order"`
	CurrentEnabled map[string]bool `json:"current_enabled"`
}

// HandleSnapshot serves one snapshot: GET and DELETE on /api/snapshots/{id},
// POST on /api/snapshots/{id}/compare
func (s *Server) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	if s.snapshots == nil {
		writeError(w, http.StatusNotImplemented, "Snapshot store not configured")
		return
	}

	parts := extractPathParts(r.URL.Path, "/api/snapshots/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, "Snapshot id required")
		return
	}
	id := parts[0]

	if len(parts) > 1 && parts[1] == "compare" {
		if !requireMethod(w, r, http.MethodPost) {
			return
		}
		var req compareRequest
		if err := readJSON(w, r, &req); err != nil {
			return
		}
		diff, err := s.snapshots.Compare(id, req.CurrentOrder, req.CurrentEnabled)
		if err != nil {
			s.writeSnapshotError(w, id, err)
			return
		}
		writeJSON(w, http.StatusOK, diff)
		return
	}

	switch r.Method {
	case http.MethodGet:
		snap, err := s.snapshots.Get(id)
		if err != nil {
			s.writeSnapshotError(w, id, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	case http.MethodDelete:
		if err := s.snapshots.Delete(id); err != nil {
			s.writeSnapshotError(w, id, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *Server) writeSnapshotError(w http.ResponseWriter, id string, err error) {
	if errors.IsNotFound(err) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Snapshot %q not found", id))
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}
