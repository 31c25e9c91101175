package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/muurk/polfunbox/internal/app"
	"github.com/muurk/polfunbox/internal/logging"
	"go.uber.org/zap"
)

const (
	// RemotePath is the WebSocket endpoint.
	RemotePath = "/remote"

	// HealthPath is the liveness endpoint.
	HealthPath = "/healthz"

	// DefaultPort is the port the bridge listens on without configuration.
	DefaultPort = 8765

	shutdownTimeout = 5 * time.Second
)

// Config holds the bridge configuration.
type Config struct {
	Host string
	Port int
}

// Addr is the listen address.
func (c Config) Addr() string {
	port := c.Port
	if port == 0 {
		port = DefaultPort
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}

// Server is the remote bridge.
type Server struct {
	config   Config
	remote   Remote
	upgrader websocket.Upgrader
	mux      *http.ServeMux

	httpServer *http.Server
	listener   net.Listener

	wg      sync.WaitGroup
	mu      sync.Mutex
	clients map[string]*client
	closed  bool
}

// New creates a Server that forwards input to remote.
func New(config Config, remote Remote) *Server {
	s := &Server{
		config:  config,
		remote:  remote,
		clients: make(map[string]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Remotes are companion apps and host shells, not web pages.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	s.mux = http.NewServeMux()
	s.mux.HandleFunc(RemotePath, s.handleRemote)
	s.mux.HandleFunc(HealthPath, s.handleHealth)
	return s
}

// Handler returns the bridge's HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start listens on the configured address and serves until ctx is done,
// then shuts down.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.httpServer = &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	logging.Info("Remote bridge listening",
		zap.String("addr", ln.Addr().String()),
		zap.String("path", RemotePath),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Addr returns the address Serve is listening on, or nil before it starts.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Notify sends a controller notification to every connected remote. It
// never blocks; a remote that is not reading loses the message.
func (s *Server) Notify(ev app.HostEvent) {
	data, err := encodeHostEvent(ev)
	if err != nil {
		logging.Warn("Not forwarding host event", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		c.queue(data)
	}
}

// ActiveConnections returns the number of connected remotes.
func (s *Server) ActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Shutdown stops accepting remotes, closes the connected ones and waits
// for their goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down remote bridge")

	s.mu.Lock()
	s.closed = true
	srv := s.httpServer
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	// A stalled peer can hold its close write for writeWait; the lock
	// is not held meanwhile.
	for _, c := range clients {
		logging.Debug("Closing remote", zap.String("conn_id", c.id), zap.String("remote_addr", c.remoteAddr))
		c.closeConn(websocket.CloseGoingAway, "shutting down")
	}

	var err error
	if srv != nil {
		if serr := srv.Shutdown(ctx); serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			err = serr
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("All remotes disconnected")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, leaving remotes behind")
		if err == nil {
			err = ctx.Err()
		}
	}
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":      "ok",
		"connections": s.ActiveConnections(),
	})
}

func (s *Server) handleRemote(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	closed := s.closed
	if !closed {
		s.wg.Add(1)
	}
	s.mu.Unlock()
	if closed {
		http.Error(w, "bridge is shutting down", http.StatusServiceUnavailable)
		return
	}
	defer s.wg.Done()

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	c := newClient(uuid.NewString(), r.RemoteAddr, ws)
	if !s.register(c) {
		c.closeConn(websocket.CloseGoingAway, "shutting down")
		_ = ws.Close()
		return
	}
	defer s.unregister(c)

	s.serveClient(r.Context(), c)
}

func (s *Server) register(c *client) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.clients[c.id] = c
	logging.Info("Remote connected",
		zap.String("conn_id", c.id),
		zap.String("remote_addr", c.remoteAddr),
		zap.Int("connections", len(s.clients)),
	)
	return true
}

func (s *Server) unregister(c *client) {
	s.mu.Lock()
	delete(s.clients, c.id)
	n := len(s.clients)
	s.mu.Unlock()
	logging.Info("Remote disconnected",
		zap.String("conn_id", c.id),
		zap.String("remote_addr", c.remoteAddr),
		zap.Int("connections", n),
	)
}

// handleMessage decodes one text frame. Errors are logged; the connection
// stays open.
func (s *Server) handleMessage(ctx context.Context, c *client, data []byte) {
	logging.LogBridgeMessage(c.remoteAddr, "received", data)

	var msg inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		logging.Warn("Ignoring malformed bridge message",
			zap.String("conn_id", c.id),
			zap.Error(err),
		)
		logging.LogRawBytes("Malformed bridge payload", data)
		return
	}

	switch msg.Type {
	case TypeKey, TypeTVEvent:
		events, err := keyEvents(msg)
		if err != nil {
			logging.Warn("Ignoring key message", zap.String("conn_id", c.id), zap.Error(err))
			return
		}
		for _, ev := range events {
			s.remote.Key(ev)
		}

	case TypeBackPressed:
		s.remote.Back()

	case TypeGetDeviceInfo:
		ctx, cancel := context.WithTimeout(ctx, writeWait)
		defer cancel()
		info, err := s.remote.DeviceInfo(ctx)
		if err != nil {
			logging.Warn("Device info unavailable", zap.Error(err))
			return
		}
		info.Type = TypeDeviceInfo
		data, err := json.Marshal(info)
		if err != nil {
			logging.Error("Failed to encode device info", zap.Error(err))
			return
		}
		c.queue(data)

	case TypeLog:
		logging.Info("Remote log", zap.String("conn_id", c.id), zap.String("message", msg.Message))

	default:
		logging.Warn("Unknown bridge message type",
			zap.String("conn_id", c.id),
			zap.String("type", msg.Type),
		)
	}
}
