package rfc2217

// CommandCode represents a Telnet command byte (RFC 854).
type CommandCode byte

// Telnet commands, https://tools.ietf.org/html/rfc854
const (
	SE   CommandCode = 240
	SB   CommandCode = 250
	WILL CommandCode = 251
	WONT CommandCode = 252
	DO   CommandCode = 253
	DONT CommandCode = 254
	IAC  CommandCode = 255
)

// OptionCode represents a Telnet option code.
type OptionCode byte

// Telnet options relevant to RFC 2217, https://www.iana.org/assignments/telnet-options
const (
	BinaryTransmission OptionCode = 0
	Echo               OptionCode = 1
	SuppressGoAhead    OptionCode = 3
	ComPortOption      OptionCode = 0x2C
)

// Client-to-server Com-Port-Option sub-commands.
const (
	subSignature          byte = 0x00
	subSetBaudrate        byte = 0x01
	subSetDatasize        byte = 0x02
	subSetParity          byte = 0x03
	subSetStopsize        byte = 0x04
	subSetControl         byte = 0x05
	subNotifyLinestate    byte = 0x06
	subNotifyModemstate   byte = 0x07
	subFlowcontrolSuspend byte = 0x08
	subFlowcontrolResume  byte = 0x09
	subSetLinestateMask   byte = 0x0A
	subSetModemstateMask  byte = 0x0B
	subPurgeData          byte = 0x0C
)

// Server-to-client Com-Port-Option reply sub-commands.
const (
	subServerSetBaudrate       byte = 0x65
	subServerSetDatasize       byte = 0x66
	subServerSetParity         byte = 0x67
	subServerSetStopsize       byte = 0x68
	subServerSetControl        byte = 0x69
	subServerNotifyLinestate   byte = 0x6A
	subServerNotifyModemstate  byte = 0x6B
	subServerSetLinestateMask  byte = 0x6E
	subServerSetModemstateMask byte = 0x6F
	subServerPurgeData         byte = 0x70
)

// suboptionBufferSize is the capacity of the accumulator used while
// collecting a subnegotiation payload. 16 bytes is enough for every
// currently-defined Com-Port subnegotiation; a larger bound is harmless.
const suboptionBufferSize = 16

// rxBufferSize is the minimum-sized staging buffer for a single receive
// call on the client socket.
const rxBufferSize = 128
