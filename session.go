package rfc2217

import (
	"context"
	"net"
	"sync"

	"go.uber.org/zap"
)

// session holds everything scoped to the lifetime of one accepted client:
// the parser state, the option table, and the send mutex guarding this
// session's socket. A fresh session is built for every connection so a
// new client always starts from clean initial states.
type session struct {
	server *Server
	conn   net.Conn
	logger *zap.Logger

	sendMu sync.Mutex

	options []*optionEntry
	rfc2217 bool

	mode       parserMode
	collecting bool
	subopt     []byte
	pendingCmd CommandCode
}

func newSession(srv *Server, conn net.Conn) *session {
	s := &session{
		server: srv,
		conn:   conn,
		logger: srv.logger,
		mode:   modeNormal,
		subopt: make([]byte, 0, suboptionBufferSize),
	}
	s.options = newSessionOptions(s)
	return s
}

// markRFC2217 fires OnClientConnected exactly once per session, the first
// time either side of the Com-Port option becomes active.
func (s *session) markRFC2217() {
	if s.rfc2217 {
		return
	}
	s.rfc2217 = true
	s.logger.Debug("client confirmed as rfc2217")
	if cb := s.server.cfg.OnClientConnected; cb != nil {
		cb()
	}
}

// sendApplicationData transmits host-sourced data through the send path.
// A literal 0xFF byte in the stream is indistinguishable from an IAC
// unless both ends have negotiated BINARY, so it is doubled whenever
// we-BINARY is not yet active; once negotiated, raw bytes pass through
// unescaped.
func (s *session) sendApplicationData(data []byte) error {
	if weBinaryActive(s.options) {
		return s.send(data)
	}

	escaped := make([]byte, 0, len(data))
	for _, b := range data {
		if b == byte(IAC) {
			escaped = append(escaped, byte(IAC))
		}
		escaped = append(escaped, b)
	}
	return s.send(escaped)
}

// send writes buf to this session's socket under the send mutex, with a
// retry loop over short writes. Transport errors on the send path are
// logged and dropped without closing the socket: the receive loop will
// observe the peer error and end the session on its own.
func (s *session) send(buf []byte) error {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	for len(buf) > 0 {
		n, err := s.conn.Write(buf)
		if err != nil {
			s.logger.Warn("send failed", zap.Error(err))
			return err
		}
		buf = buf[n:]
	}
	return nil
}

// receiveLoop feeds incoming bytes to the parser until EOF or a
// non-retryable error, then fires OnClientDisconnected. Startup is
// passive, matching the original source: no initial WILL/WONT/DO/DONT is
// sent for REQUESTED entries at session start, regardless of role.
func (s *session) receiveLoop(ctx context.Context) {
	stopWatch := make(chan struct{})
	defer close(stopWatch)
	go func() {
		select {
		case <-ctx.Done():
			_ = s.conn.Close()
		case <-stopWatch:
		}
	}()

	buf := make([]byte, rxBufferSize)
	for {
		n, err := s.conn.Read(buf)
		if n > 0 {
			s.feed(buf[:n])
		}
		if err != nil {
			break
		}
	}

	s.logger.Info("client disconnected")
	if cb := s.server.cfg.OnClientDisconnected; cb != nil {
		cb()
	}
}
