// Package server exposes the dependency graph engine over HTTP and pushes
// graph updates to WebSocket clients whenever the catalog changes.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/AiDave71/Bannerlord.LauncherManager/catalog"
	"github.com/AiDave71/Bannerlord.LauncherManager/config"
	"github.com/AiDave71/Bannerlord.LauncherManager/depgraph"
	"github.com/AiDave71/Bannerlord.LauncherManager/errors"
	"github.com/AiDave71/Bannerlord.LauncherManager/order"
	"github.com/AiDave71/Bannerlord.LauncherManager/snapshot"
)

// Server is the hub: it owns the current catalog state, the connected
// WebSocket clients, and the HTTP listener. All client channel sends happen
// on the hub goroutine; handlers only post to the register, unregister, and
// broadcast channels.
type Server struct {
	mu        sync.RWMutex
	cat       *catalog.Catalog
	selection catalog.Selection
	lastGraph *depgraph.Graph

	buildOpts      depgraph.BuildOptions
	cyclePolicy    order.CyclePolicy
	allowedOrigins []string
	snapshots      snapshot.Store

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *depgraph.Graph

	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	httpServer *http.Server
	limiter    *ipLimiter
	logger     *zap.SugaredLogger
}

// NewServer creates a server over the given catalog state. The snapshot
// store may be nil, which disables the snapshot endpoints.
func NewServer(cfg *config.Config, cat *catalog.Catalog, selection catalog.Selection, snapshots snapshot.Store, logger *zap.SugaredLogger) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cat:       cat,
		selection: selection,
		buildOpts: depgraph.BuildOptions{
			IncludeNative:   cfg.Graph.IncludeNative,
			IncludeOptional: cfg.Graph.IncludeOptional,
			SelectedOnly:    cfg.Graph.SelectedOnly,
		},
		cyclePolicy:    order.CyclePolicy(cfg.Order.CyclePolicy),
		allowedOrigins: cfg.Server.AllowedOrigins,
		snapshots:      snapshots,

		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *depgraph.Graph, 16),
		ctx:        ctx,
		cancel:     cancel,
		limiter:    newIPLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst),
		logger:     logger.Named("server"),
	}
	s.rebuildGraphLocked()
	return s
}

// Run starts the hub event loop and blocks until Shutdown
func (s *Server) Run() {
	for {
		select {
		case <-s.ctx.Done():
			s.logger.Debugw("Server hub stopping")
			return
		case client := <-s.register:
			s.handleClientRegister(client)
		case client := <-s.unregister:
			s.handleClientUnregister(client)
		case g := <-s.broadcast:
			s.handleBroadcast(g)
		}
	}
}

// ListenAndServe registers routes and serves HTTP on the configured port.
// Blocks until the listener fails or Shutdown is called.
func (s *Server) ListenAndServe(port int) error {
	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.Run()
	}()

	s.logger.Infow("Server listening", "port", port)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return errors.Wrap(err, "http server")
}

// Shutdown stops the listener, disconnects all clients, and waits for the
// hub to drain
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	s.cancel()
	s.wg.Wait()

	s.mu.Lock()
	for client := range s.clients {
		close(client.send)
		delete(s.clients, client)
	}
	s.mu.Unlock()

	return errors.Wrap(err, "shutdown http server")
}

// UpdateCatalog swaps in a new catalog and selection, rebuilds the graph,
// and pushes it to every connected client. This is the catalog watcher's
// reload callback.
func (s *Server) UpdateCatalog(cat *catalog.Catalog, selection catalog.Selection) {
	s.mu.Lock()
	s.cat = cat
	s.selection = selection
	s.rebuildGraphLocked()
	g := s.lastGraph
	s.mu.Unlock()

	select {
	case s.broadcast <- g:
	case <-s.ctx.Done():
	default:
		s.logger.Warnw("Broadcast queue full, dropping graph update")
	}
}

func (s *Server) rebuildGraphLocked() {
	builder := depgraph.NewBuilder(s.logger)
	s.lastGraph = builder.Build(s.cat, s.selection, s.buildOpts)
}

// Graph returns the most recently built graph
func (s *Server) Graph() *depgraph.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastGraph
}

func (s *Server) catalogState() (*catalog.Catalog, catalog.Selection) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cat, s.selection
}

func (s *Server) handleClientRegister(client *Client) {
	s.mu.Lock()
	s.clients[client] = true
	count := len(s.clients)
	g := s.lastGraph
	s.mu.Unlock()

	s.logger.Infow("Client connected", "client_id", client.id, "clients", count)

	// New clients get the current graph immediately
	select {
	case client.send <- g:
	default:
	}
}

func (s *Server) handleClientUnregister(client *Client) {
	s.mu.Lock()
	if _, ok := s.clients[client]; ok {
		delete(s.clients, client)
		close(client.send)
	}
	count := len(s.clients)
	s.mu.Unlock()

	s.logger.Infow("Client disconnected", "client_id", client.id, "clients", count)
}

func (s *Server) handleBroadcast(g *depgraph.Graph) {
	s.mu.RLock()
	clients := make([]*Client, 0, len(s.clients))
	for client := range s.clients {
		clients = append(clients, client)
	}
	s.mu.RUnlock()

	sent := 0
	for _, client := range clients {
		select {
		case client.send <- g:
			sent++
		default:
			// Channel full, client is too slow; it will catch up on the
			// next broadcast
		}
	}
	s.logger.Debugw("Broadcast graph update", "clients", len(clients), "sent", sent)
}
