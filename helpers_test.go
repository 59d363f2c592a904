package rfc2217

import (
	"bytes"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"
)

// fakeConn is a minimal net.Conn that records everything written to it.
// Tests that only need to observe the server's outbound bytes (not drive
// a real accept/connect round trip) use this instead of a real socket.
type fakeConn struct {
	mu     sync.Mutex
	out    bytes.Buffer
	closed bool
}

func (c *fakeConn) Read(b []byte) (int, error)  { return 0, net.ErrClosed }
func (c *fakeConn) Write(b []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.out.Write(b)
}
func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
func (c *fakeConn) LocalAddr() net.Addr                { return dummyAddr{} }
func (c *fakeConn) RemoteAddr() net.Addr               { return dummyAddr{} }
func (c *fakeConn) SetDeadline(t time.Time) error      { return nil }
func (c *fakeConn) SetReadDeadline(t time.Time) error   { return nil }
func (c *fakeConn) SetWriteDeadline(t time.Time) error  { return nil }

func (c *fakeConn) written() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.out.Bytes()...)
}

type dummyAddr struct{}

func (dummyAddr) Network() string { return "fake" }
func (dummyAddr) String() string  { return "fake" }

// newTestSession builds a session wired to a fakeConn and a Config the
// caller can further populate before exercising the session.
func newTestSession(cfg Config) (*session, *fakeConn) {
	srv := &Server{cfg: cfg, logger: zap.NewNop()}
	conn := &fakeConn{}
	sess := newSession(srv, conn)
	return sess, conn
}
