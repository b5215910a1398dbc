// Package server implements the WebSocket feed listener and the per-connection
// handler: handshake, full snapshot replay, inbound command processing and
// outbound tick delivery.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/nsesim/marketfeed/internal/engine"
	"github.com/nsesim/marketfeed/internal/hub"
	"github.com/nsesim/marketfeed/internal/store"
	"github.com/nsesim/marketfeed/internal/version"
)

// Server accepts feed connections and hands each one to a connection handler.
type Server struct {
	cfg    Config
	st     store.Store
	hub    *hub.Hub
	eng    *engine.Engine
	logger *slog.Logger

	upgrader websocket.Upgrader
	mux      *http.ServeMux
	httpSrv  *http.Server

	// Live connections. The http.Server does not close or wait for hijacked
	// connections on Shutdown, so Stop tears these down itself.
	connMu sync.Mutex
	conns  map[*conn]struct{}

	wg sync.WaitGroup
}

// New creates a feed server. eng may be nil; it is only consulted for the
// health report.
func New(cfg Config, st store.Store, h *hub.Hub, eng *engine.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:    cfg,
		st:     st,
		hub:    h,
		eng:    eng,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Dev feed: any origin may connect.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		conns: make(map[*conn]struct{}),
	}

	s.mux = http.NewServeMux()
	s.mux.HandleFunc(cfg.WSPath, s.handleWS)
	s.mux.HandleFunc("/healthz", s.handleHealthz)

	return s
}

// Handler returns the HTTP handler serving the feed and health endpoints.
// Tests mount it on httptest servers.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start begins listening. Non-blocking; listener errors are logged.
func (s *Server) Start(ctx context.Context) error {
	s.httpSrv = &http.Server{
		Addr:    s.cfg.Addr,
		Handler: s.mux,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("listener error", "error", err)
		}
	}()

	s.logger.Info("feed server started",
		"addr", s.cfg.Addr,
		"ws_path", s.cfg.WSPath,
	)
	return nil
}

// Stop shuts the listener down, then closes every live feed connection.
// Upgraded connections are hijacked, so http.Server.Shutdown leaves them
// open; without the explicit teardown their handlers would leak.
func (s *Server) Stop(ctx context.Context) error {
	var err error
	if s.httpSrv != nil {
		err = s.httpSrv.Shutdown(ctx)
	}

	s.connMu.Lock()
	open := make([]*conn, 0, len(s.conns))
	for c := range s.conns {
		open = append(open, c)
	}
	s.connMu.Unlock()
	for _, c := range open {
		c.teardown()
	}

	if s.httpSrv != nil {
		s.httpSrv.Close()
	}
	s.wg.Wait()
	s.logger.Info("feed server stopped")
	return err
}

// handleWS upgrades the request and runs the connection handler to
// completion.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	s.wg.Add(1)
	defer s.wg.Done()

	c := newConn(s.cfg, ws, s.st, s.hub, s.logger)
	s.connMu.Lock()
	s.conns[c] = struct{}{}
	s.connMu.Unlock()

	c.run()

	s.connMu.Lock()
	delete(s.conns, c)
	s.connMu.Unlock()
}

// handleHealthz reports liveness and feed counters.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	report := map[string]any{
		"status":  "ok",
		"version": version.Version,
		"hub":     s.hub.Stats(),
	}
	if s.eng != nil {
		report["engine"] = s.eng.Stats()
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(report)
}
