// Package rfc2217 implements a Telnet Com-Port-Control (RFC 2217) server.
//
// It lets a remote Telnet client drive a local virtual serial port over a
// plain TCP connection through the Com-Port-Option Telnet subnegotiation.
// Baud rate, control lines (DTR/RTS/break, flow control) and buffer purges
// are forwarded to host-supplied callbacks; data size, parity and stop size
// requests are acknowledged by echoing the requested value, with no
// callback. The package itself never touches a real UART; callers wire it
// to whatever transport backs the serial port.
//
// At most one client is served at a time. A second connection simply waits
// behind the listener's backlog until the first disconnects.
package rfc2217
