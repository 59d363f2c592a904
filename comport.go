package rfc2217

import (
	"encoding/binary"

	"go.uber.org/zap"
)

// sendNegotiation writes a three-byte Telnet option command: IAC <cmd> <opt>.
func (s *session) sendNegotiation(cmd CommandCode, opt OptionCode) {
	if err := s.send([]byte{byte(IAC), byte(cmd), byte(opt)}); err != nil {
		s.logger.Warn("failed to send negotiation", zap.Error(err))
	}
}

// sendSubnegotiation frames and sends a Com-Port-Option reply:
// IAC SB COM-PORT-OPTION <serverSubCommand> <payload, IAC-doubled> IAC SE.
// The framing IAC bytes are never doubled.
func (s *session) sendSubnegotiation(serverSubCommand byte, payload []byte) {
	buf := make([]byte, 0, len(payload)*2+6)
	buf = append(buf, byte(IAC), byte(SB), byte(ComPortOption), serverSubCommand)
	for _, b := range payload {
		if b == byte(IAC) {
			buf = append(buf, byte(IAC))
		}
		buf = append(buf, b)
	}
	buf = append(buf, byte(IAC), byte(SE))
	if err := s.send(buf); err != nil {
		s.logger.Warn("failed to send subnegotiation", zap.Error(err))
	}
}

// processSubnegotiation decodes a captured IAC SB ... IAC SE payload (IAC
// already un-doubled by the parser) and reacts to RFC 2217 Com-Port-Option
// sub-commands. Any malformed or unrecognized payload is discarded with a
// trace log; no partial reply is ever emitted for it.
func (s *session) processSubnegotiation(payload []byte) {
	if len(payload) < 2 {
		s.logger.Debug("short subnegotiation payload, ignoring")
		return
	}
	if OptionCode(payload[0]) != ComPortOption {
		s.logger.Debug("unknown subnegotiation option, ignoring", zap.Uint8("option", payload[0]))
		return
	}

	subCommand := payload[1]
	params := payload[2:]

	switch subCommand {
	case subSignature:
		// A client-initiated, empty signature query is answered with the
		// configured signature string; a non-empty payload is the client
		// reporting its own signature, which is merely logged.
		if len(params) == 0 {
			s.sendSubnegotiation(subSignature, []byte(s.server.cfg.Signature))
		} else {
			s.logger.Debug("client signature", zap.ByteString("signature", params))
		}

	case subSetBaudrate:
		if len(params) != 4 {
			s.logger.Debug("malformed SET-BAUDRATE payload")
			return
		}
		requested := binary.BigEndian.Uint32(params)
		accepted := requested
		if cb := s.server.cfg.OnBaudrate; cb != nil {
			accepted = cb(requested)
		}
		var out [4]byte
		binary.BigEndian.PutUint32(out[:], accepted)
		s.sendSubnegotiation(subServerSetBaudrate, out[:])

	case subSetDatasize:
		if len(params) != 1 {
			s.logger.Debug("malformed SET-DATASIZE payload")
			return
		}
		s.sendSubnegotiation(subServerSetDatasize, params)

	case subSetParity:
		if len(params) != 1 {
			s.logger.Debug("malformed SET-PARITY payload")
			return
		}
		s.sendSubnegotiation(subServerSetParity, params)

	case subSetStopsize:
		if len(params) != 1 {
			s.logger.Debug("malformed SET-STOPSIZE payload")
			return
		}
		s.sendSubnegotiation(subServerSetStopsize, params)

	case subSetControl:
		if len(params) != 1 {
			s.logger.Debug("malformed SET-CONTROL payload")
			return
		}
		requested := Control(params[0])
		accepted := requested
		if cb := s.server.cfg.OnControl; cb != nil {
			accepted = cb(requested)
		}
		s.sendSubnegotiation(subServerSetControl, []byte{byte(accepted)})

	case subNotifyLinestate:
		if len(params) != 1 {
			s.logger.Debug("malformed NOTIFY-LINESTATE payload")
			return
		}
		s.sendSubnegotiation(subServerNotifyLinestate, params)

	case subNotifyModemstate:
		if len(params) != 1 {
			s.logger.Debug("malformed NOTIFY-MODEMSTATE payload")
			return
		}
		s.sendSubnegotiation(subServerNotifyModemstate, params)

	case subFlowcontrolSuspend, subFlowcontrolResume:
		// Not supported; no reply required.

	case subSetLinestateMask:
		if len(params) != 1 {
			s.logger.Debug("malformed SET-LINESTATE-MASK payload")
			return
		}
		s.sendSubnegotiation(subServerSetLinestateMask, params)

	case subSetModemstateMask:
		if len(params) != 1 {
			s.logger.Debug("malformed SET-MODEMSTATE-MASK payload")
			return
		}
		s.sendSubnegotiation(subServerSetModemstateMask, params)

	case subPurgeData:
		if len(params) != 1 {
			s.logger.Debug("malformed PURGE-DATA payload")
			return
		}
		requested := Purge(params[0])
		performed := requested
		if cb := s.server.cfg.OnPurge; cb != nil {
			performed = cb(requested)
		}
		s.sendSubnegotiation(subServerPurgeData, []byte{byte(performed)})

	default:
		s.logger.Debug("unsupported com-port subnegotiation", zap.Uint8("subCommand", subCommand))
	}
}
