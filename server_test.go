package rfc2217

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"
)

func dialServer(t *testing.T, srv *Server) net.Conn {
	t.Helper()
	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("dial server: %v", err)
	}
	return conn
}

func TestServerLifecycleHandshakeAndData(t *testing.T) {
	var mu sync.Mutex
	connected := false
	var received []byte

	cfg := Config{
		Port: 0,
		OnClientConnected: func() {
			mu.Lock()
			connected = true
			mu.Unlock()
		},
		OnDataReceived: func(data []byte) {
			mu.Lock()
			received = append(received, data...)
			mu.Unlock()
		},
	}

	srv, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer srv.Stop()

	conn := dialServer(t, srv)
	defer conn.Close()

	if _, err := conn.Write([]byte{byte(IAC), byte(DO), byte(ComPortOption)}); err != nil {
		t.Fatalf("write handshake: %v", err)
	}
	if _, err := conn.Write([]byte("hello")); err != nil {
		t.Fatalf("write data: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		ok := connected && string(received) == "hello"
		mu.Unlock()
		if ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for connected=%v received=%q", connected, received)
}

func TestServerSendDataRequiresStart(t *testing.T) {
	srv, err := New(Config{Port: 0}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := srv.SendData([]byte("x")); err != ErrNotRunning {
		t.Fatalf("SendData before Start: got %v, want ErrNotRunning", err)
	}
}

func TestServerSendDataRequiresClient(t *testing.T) {
	srv, err := New(Config{Port: 0}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer srv.Stop()

	if err := srv.SendData([]byte("x")); err != ErrNoClient {
		t.Fatalf("SendData with no client: got %v, want ErrNoClient", err)
	}
}

func TestServerStartTwiceFails(t *testing.T) {
	srv, err := New(Config{Port: 0}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer srv.Stop()

	if err := srv.Start(context.Background()); err != ErrAlreadyRunning {
		t.Fatalf("second Start: got %v, want ErrAlreadyRunning", err)
	}
}

func TestServerSendDataRoundTrip(t *testing.T) {
	srv, err := New(Config{Port: 0}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer srv.Stop()

	conn := dialServer(t, srv)
	defer conn.Close()

	// Give the accept loop a moment to register the session.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if srv.SendData([]byte("ping")) == nil {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	buf := make([]byte, 4)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(buf[:n]) != "ping" {
		t.Fatalf("got %q, want %q", buf[:n], "ping")
	}
}

func TestServerDisconnectFiresCallback(t *testing.T) {
	var mu sync.Mutex
	disconnected := false

	cfg := Config{
		Port: 0,
		OnClientDisconnected: func() {
			mu.Lock()
			disconnected = true
			mu.Unlock()
		},
	}
	srv, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer srv.Stop()

	conn := dialServer(t, srv)
	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		ok := disconnected
		mu.Unlock()
		if ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("OnClientDisconnected did not fire")
}
