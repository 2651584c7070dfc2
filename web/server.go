package web

import (
	"context"
	_ "embed"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/thejezzi/conway/logging"
)

// indexHTML is the embedded single-page viewer.
//
//go:embed index.html
var indexHTML []byte

// Server serves the viewer page and upgrades /ws connections into hub
// clients.
type Server struct {
	hub        *Hub
	logger     *slog.Logger
	httpServer *http.Server
	listener   net.Listener
	mu         sync.Mutex
	addr       string
}

// NewServer wraps a hub in an HTTP server. The hub must be running before
// clients connect.
func NewServer(hub *Hub, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{hub: hub, logger: logger}
}

// Addr returns the address the server is listening on, or the empty string
// before ListenAndServe has bound its listener.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// ListenAndServe binds addr and blocks until ctx is cancelled or the server
// fails. Clean shutdown returns nil.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/ws", s.handleSocket)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "[ListenAndServe] failed to listen on: %+v", addr)
	}

	s.mu.Lock()
	s.listener = ln
	s.addr = ln.Addr().String()
	s.httpServer = &http.Server{Handler: mux}
	s.mu.Unlock()

	// Graceful shutdown when the context is cancelled.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	s.logger.Info("serving simulation", "addr", s.Addr())
	err = s.httpServer.Serve(ln)
	if err == http.ErrServerClosed {
		return nil
	}
	return errors.Wrap(err, "[ListenAndServe] server failed")
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// handleSocket upgrades the connection and hands it to the hub with one
// goroutine per pump.
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	c := &client{hub: s.hub, conn: conn, send: make(chan []byte, 256)}
	c.hub.Register <- c

	go c.writePump()
	go c.readPump()
}
