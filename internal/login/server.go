package login

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/udisondev/realmd/internal/config"
	"github.com/udisondev/realmd/internal/constants"
	"github.com/udisondev/realmd/internal/metrics"
	"github.com/udisondev/realmd/internal/protocol"
)

// ServerOption is a functional option for Server configuration.
type ServerOption func(*Server)

// WithSessionManager sets a custom SessionManager (useful for testing with shared SessionManager).
func WithSessionManager(sm *SessionManager) ServerOption {
	return func(s *Server) {
		s.sessionManager = sm
	}
}

// Server is the auth server that accepts client connections on port 3724.
type Server struct {
	cfg            config.AuthServer
	sessionManager *SessionManager

	sendPool *BytePool
	readPool *BytePool
	handler  *Handler

	listener net.Listener
	mu       sync.Mutex
}

// NewServer creates a new auth server.
func NewServer(cfg config.AuthServer, accounts AccountStore, realms RealmSnapshotter, opts ...ServerOption) *Server {
	s := &Server{
		cfg:            cfg,
		sessionManager: NewSessionManager(),
		sendPool:       NewBytePool(constants.DefaultSendBufSize),
		readPool:       NewBytePool(constants.DefaultReadBufSize),
	}

	// Применяем опции
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	s.handler = NewHandler(accounts, realms, s.sessionManager, cfg)
	return s
}

// SessionManager возвращает реестр сессий (для janitor и тестов).
func (s *Server) SessionManager() *SessionManager {
	return s.sessionManager
}

// Addr возвращает адрес, на котором слушает сервер.
// Возвращает nil если сервер ещё не запущен.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Close закрывает listener и останавливает сервер.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

// Run begins listening for client connections.
// Создаёт listener на cfg.BindAddress:cfg.Port и запускает accept loop.
func (s *Server) Run(ctx context.Context) error {
	addr := s.cfg.Address()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	return s.Serve(ctx, ln)
}

// Serve принимает готовый listener и запускает accept loop.
// Блокируется, пока ctx не отменён и все соединения не закрыты.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	var wg sync.WaitGroup
	wg.Go(func() {
		slog.Info("auth server started", "address", ln.Addr())
		acceptLoop(ctx, &wg, s, ln)
	})

	wg.Wait()
	slog.Info("auth server stopped")

	return nil
}

// RunJanitor periodically drops sessions idle for longer than ttl.
func (s *Server) RunJanitor(ctx context.Context, interval, ttl time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.sessionManager.CleanExpired(ttl); n > 0 {
				slog.Debug("expired sessions removed", "count", n, "remaining", s.sessionManager.Count())
			}
		}
	}
}

func acceptLoop(
	ctx context.Context,
	wg *sync.WaitGroup,
	srv *Server,
	ln net.Listener,
) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			conn, err := ln.Accept()
			if err != nil {
				if errors.Is(err, net.ErrClosed) {
					return
				}
				slog.Error("Failed to accept new connection", "error", err)
				continue
			}
			wg.Go(func() {
				handleConnection(ctx, srv, conn)
			})
		}
	}
}

func handleConnection(ctx context.Context, srv *Server, conn net.Conn) {
	done := make(chan struct{})
	defer close(done)
	defer conn.Close()

	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	metrics.AcceptedConnections.Inc()
	metrics.ActiveConnections.Inc()
	defer metrics.ActiveConnections.Dec()

	client, err := NewClient(conn)
	if err != nil {
		slog.Error("failed to create client", "err", err, "remote", conn.RemoteAddr())
		return
	}

	slog.Debug("new connection", "client", client.IP(), "conn", client.ID())

	readBuf := srv.readPool.Get(constants.DefaultReadBufSize)
	defer srv.readPool.Put(readBuf)
	frames := protocol.NewFrameReader(conn, readBuf)

	for {
		if ctx.Err() != nil {
			return
		}

		ok, err := handleFrame(ctx, srv, client, frames)
		if err != nil {
			logConnectionError(client, err, ok)
		}
		if !ok {
			return
		}
	}
}

// handleFrame reads one frame, runs it through the handler and writes the reply.
// Returns ok=false when the connection must be closed.
func handleFrame(
	ctx context.Context,
	srv *Server,
	cli *Client,
	frames *protocol.FrameReader,
) (bool, error) {
	if srv.cfg.IdleTimeout > 0 {
		if err := cli.conn.SetReadDeadline(time.Now().Add(srv.cfg.IdleTimeout)); err != nil {
			return false, fmt.Errorf("set read deadline: %w", err)
		}
	}

	frame, err := frames.Next()
	if err != nil {
		return false, fmt.Errorf("read frame: %w", err)
	}

	reply, ok, handleErr := srv.handler.HandleFrame(ctx, cli, frame)

	if reply != nil {
		buf := srv.sendPool.Encode(reply)
		_, err := cli.conn.Write(buf)
		srv.sendPool.Put(buf)
		if err != nil {
			return false, fmt.Errorf("write %s reply: %w", reply.Opcode(), err)
		}
	}

	if handleErr != nil {
		return ok, fmt.Errorf("handle %s: %w", frame.Opcode(), handleErr)
	}
	return ok, nil
}

func logConnectionError(client *Client, err error, open bool) {
	reason := errorReason(err)
	attrs := []any{"client", client.IP(), "conn", client.ID(), "account", client.Account(), "reason", reason, "err", err}

	if !open {
		metrics.ConnectionErrors.WithLabelValues(reason).Inc()
	}

	switch {
	case reason == "disconnected" && errors.Is(err, io.EOF):
		slog.Debug("client disconnected", attrs...)
	case reason == "disconnected", reason == "idle_timeout":
		slog.Debug("connection closed", attrs...)
	case isSecurityEvent(err):
		// уже залогировано в handler с "security"
		slog.Debug("connection closed", attrs...)
	case reason == "internal":
		slog.Error("connection failed", attrs...)
	default:
		slog.Info("frame rejected", append(attrs, "closing", !open)...)
	}
}
