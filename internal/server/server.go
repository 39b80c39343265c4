package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"tickerfeed/internal/store"
)

const (
	writeWait      = 10 * time.Second
	shutdownWait   = 5 * time.Second
	maxMessageSize = 4096
)

// Emitter delivers client events to the application.
type Emitter interface {
	Emit(ctx context.Context, name string, payload json.RawMessage) error
}

// Inbound is a client message naming an event and its payload.
type Inbound struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// Outbound is a frame pushed to clients: either a state snapshot or the
// error of a rejected event.
type Outbound struct {
	State *store.State `json:"state,omitempty"`
	Event string       `json:"event,omitempty"`
	Error string       `json:"error,omitempty"`
}

// Server exposes the shared state over HTTP and websocket, and forwards
// websocket events to the bus.
type Server struct {
	logger   *slog.Logger
	store    *store.Memory
	bus      Emitter
	upgrader websocket.Upgrader
	mux      *http.ServeMux
}

// NewServer creates a new Server.
func NewServer(logger *slog.Logger, st *store.Memory, bus Emitter) *Server {
	s := &Server{
		logger: logger,
		store:  st,
		bus:    bus,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		mux: http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /tickers", s.handleTickers)
	s.mux.HandleFunc("GET /ws", s.handleWS)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:     s,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server: listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWait)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("Server: stopped")
	return nil
}

func (s *Server) handleTickers(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.store.State()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Server: websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	updates, unsubscribe := s.store.Subscribe()
	defer unsubscribe()

	out := make(chan Outbound, 8)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		s.writeLoop(ctx, conn, updates, out)
		// Unblocks readLoop once nothing can be written anymore.
		conn.Close()
	}()

	s.logger.Info("Server: websocket client connected", "remote", r.RemoteAddr)
	s.readLoop(ctx, conn, out, writerDone)

	cancel()
	<-writerDone
	s.logger.Info("Server: websocket client disconnected", "remote", r.RemoteAddr)
}

// readLoop forwards client events to the bus until the connection fails.
func (s *Server) readLoop(ctx context.Context, conn *websocket.Conn, out chan<- Outbound, writerDone <-chan struct{}) {
	for {
		var msg Inbound
		if err := conn.ReadJSON(&msg); err != nil {
			var (
				syntaxErr *json.SyntaxError
				typeErr   *json.UnmarshalTypeError
			)
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				s.reply(out, writerDone, Outbound{Error: "malformed message"})
				continue
			}
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Debug("Server: websocket read failed", "error", err)
			}
			return
		}

		if err := s.bus.Emit(ctx, msg.Event, msg.Payload); err != nil {
			s.logger.Warn("Server: event rejected", "event", msg.Event, "error", err)
			s.reply(out, writerDone, Outbound{Event: msg.Event, Error: err.Error()})
		}
	}
}

func (s *Server) reply(out chan<- Outbound, writerDone <-chan struct{}, msg Outbound) {
	select {
	case out <- msg:
	case <-writerDone:
	}
}

// writeLoop pushes the current state, then every state change and reply.
func (s *Server) writeLoop(ctx context.Context, conn *websocket.Conn, updates <-chan store.State, out <-chan Outbound) {
	write := func(msg Outbound) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			s.logger.Debug("Server: websocket write failed", "error", err)
			return false
		}
		return true
	}

	initial := s.store.State()
	if !write(Outbound{State: &initial}) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return
		case state, ok := <-updates:
			if !ok {
				return
			}
			if !write(Outbound{State: &state}) {
				return
			}
		case msg := <-out:
			if !write(msg) {
				return
			}
		}
	}
}
