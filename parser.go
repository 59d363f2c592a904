package rfc2217

import (
	"bytes"

	"go.uber.org/zap"
)

// parserMode is the Telnet byte-stream recognizer state (RFC 854): plain
// data, just after an IAC escape, or mid-negotiation awaiting an option
// code.
type parserMode int

const (
	modeNormal parserMode = iota
	modeGotIAC
	modeNegotiate
)

// feed partitions buf into application data (delivered to
// OnDataReceived) and protocol events (dispatched to the option engine
// and the Com-Port-Option handler). It is a pure state machine: no I/O
// happens here beyond the callback invocations and whatever negotiation
// replies they trigger through sess.send.
func (s *session) feed(buf []byte) {
	// Fast path: plain data, no Telnet escape anywhere in this chunk.
	if s.mode == modeNormal && !s.collecting && bytes.IndexByte(buf, byte(IAC)) < 0 {
		s.deliverData(buf)
		return
	}

	for _, c := range buf {
		switch s.mode {
		case modeNormal:
			s.stepNormal(c)
		case modeGotIAC:
			s.stepGotIAC(c)
		case modeNegotiate:
			s.negotiateOption(s.pendingCmd, OptionCode(c))
			s.mode = modeNormal
		}
	}
}

func (s *session) stepNormal(c byte) {
	if CommandCode(c) == IAC {
		s.mode = modeGotIAC
		return
	}
	if s.collecting {
		s.appendSuboption(c)
		return
	}
	s.deliverData([]byte{c})
}

func (s *session) stepGotIAC(c byte) {
	switch CommandCode(c) {
	case IAC:
		// Literal 0xFF byte, escaped.
		if s.collecting {
			s.appendSuboption(c)
		} else {
			s.deliverData([]byte{c})
		}
		s.mode = modeNormal
	case SB:
		s.subopt = s.subopt[:0]
		s.collecting = true
		s.mode = modeNormal
	case SE:
		s.processSubnegotiation(s.subopt)
		s.subopt = s.subopt[:0]
		s.collecting = false
		s.mode = modeNormal
	case WILL, WONT, DO, DONT:
		s.pendingCmd = CommandCode(c)
		s.mode = modeNegotiate
	default:
		s.logger.Debug("ignoring unrecognized telnet command", zap.Uint8("command", c))
		s.mode = modeNormal
	}
}

// appendSuboption appends to the bounded subnegotiation accumulator.
// Overflow drops the in-progress subnegotiation and stops collecting, so
// the bytes that follow up to the next IAC are handled as plain data; no
// reply is ever sent for a discarded subnegotiation.
func (s *session) appendSuboption(c byte) {
	if len(s.subopt) >= suboptionBufferSize {
		s.logger.Warn("suboption buffer overflow, dropping subnegotiation")
		s.collecting = false
		s.subopt = s.subopt[:0]
		return
	}
	s.subopt = append(s.subopt, c)
}

// deliverData hands bytes to the host callback, if any.
func (s *session) deliverData(b []byte) {
	if cb := s.server.cfg.OnDataReceived; cb != nil {
		cb(b)
	}
}
