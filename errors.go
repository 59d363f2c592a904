package rfc2217

import "errors"

// Sentinel errors returned by the public lifecycle API. They correspond to
// the CONFIG/STATE error classes of the original C API's negative return
// codes.
var (
	// ErrAlreadyRunning is returned by Start when called on a server that is
	// already accepting connections.
	ErrAlreadyRunning = errors.New("rfc2217: server already running")

	// ErrNotRunning is returned by Stop and SendData when the server is not
	// running: never started, or already stopped.
	ErrNotRunning = errors.New("rfc2217: server not running")

	// ErrNoClient is returned by SendData when no client is currently
	// connected.
	ErrNoClient = errors.New("rfc2217: no client connected")
)
