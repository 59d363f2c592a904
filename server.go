package rfc2217

import (
	"context"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"
)

// Server owns one listening TCP socket and, at most, one active client
// session. Create with New, bring it up with Start, tear it down with
// Stop, and release it with Close.
type Server struct {
	cfg    Config
	logger *zap.Logger

	mu       sync.Mutex
	listener net.Listener
	sess     *session
	running  bool
	quit     chan struct{}
	wg       sync.WaitGroup
}

// New allocates a Server from cfg. The listener is not opened until
// Start is called.
func New(cfg Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{cfg: cfg, logger: logger}, nil
}

// Start opens the listening socket and spawns the accept loop in its own
// goroutine; it returns as soon as the listener is bound. Calling Start
// twice without an intervening Stop is a state-misuse error.
func (srv *Server) Start(ctx context.Context) error {
	srv.mu.Lock()
	if srv.running {
		srv.mu.Unlock()
		return ErrAlreadyRunning
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", srv.cfg.Port))
	if err != nil {
		srv.mu.Unlock()
		return fmt.Errorf("rfc2217: listen on port %d: %w", srv.cfg.Port, err)
	}

	srv.listener = ln
	srv.quit = make(chan struct{})
	srv.running = true
	srv.mu.Unlock()

	srv.logger.Info("rfc2217 server listening", zap.String("addr", ln.Addr().String()))

	srv.wg.Add(1)
	go srv.acceptLoop(ctx)
	return nil
}

// acceptLoop binds the single-client invariant: it accepts one
// connection, runs its receive loop to completion, closes the socket, and
// only then accepts the next one.
func (srv *Server) acceptLoop(ctx context.Context) {
	defer srv.wg.Done()

	for {
		conn, err := srv.listener.Accept()
		if err != nil {
			select {
			case <-srv.quit:
				return
			default:
				srv.logger.Error("accept failed, shutting down", zap.Error(err))
				return
			}
		}

		sess := newSession(srv, conn)
		srv.mu.Lock()
		srv.sess = sess
		srv.mu.Unlock()

		done := make(chan struct{})
		go func() {
			defer close(done)
			sess.receiveLoop(ctx)
		}()
		<-done

		_ = conn.Close()
		srv.mu.Lock()
		srv.sess = nil
		srv.mu.Unlock()

		select {
		case <-srv.quit:
			return
		default:
		}
	}
}

// Addr returns the listener's bound address, or nil if the server has not
// been successfully started (or has since been stopped). Chiefly useful
// in tests that start on port 0 and need the OS-assigned port.
func (srv *Server) Addr() net.Addr {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if srv.listener == nil {
		return nil
	}
	return srv.listener.Addr()
}

// SendData transmits data to the currently connected client. It fails
// with ErrNotRunning if the server has not been started and ErrNoClient
// if it is running but no client is currently connected.
func (srv *Server) SendData(data []byte) error {
	srv.mu.Lock()
	running := srv.running
	sess := srv.sess
	srv.mu.Unlock()

	if !running {
		return ErrNotRunning
	}
	if sess == nil {
		return ErrNoClient
	}
	return sess.sendApplicationData(data)
}

// Stop requests shutdown of the accept loop (and, transitively, the
// current receive loop by closing its socket) and waits for both to
// exit. It is safe to call even with no client currently connected.
func (srv *Server) Stop() error {
	srv.mu.Lock()
	if !srv.running {
		srv.mu.Unlock()
		return ErrNotRunning
	}
	close(srv.quit)
	ln := srv.listener
	sess := srv.sess
	srv.mu.Unlock()

	if ln != nil {
		_ = ln.Close()
	}
	if sess != nil {
		_ = sess.conn.Close()
	}

	srv.wg.Wait()

	srv.mu.Lock()
	srv.running = false
	srv.listener = nil
	srv.mu.Unlock()
	return nil
}

// Close releases the Server. Callers must Stop it first; Close does not
// itself stop a running server.
func (srv *Server) Close() error {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	srv.sess = nil
	return nil
}
