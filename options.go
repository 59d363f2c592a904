package rfc2217

// role distinguishes which side of a negotiated option a table entry
// tracks: role we means we are the subject of WILL/WONT (and the peer
// acks with DO/DONT); role they means the peer is the subject of
// WILL/WONT and we ack with DO/DONT.
type role int

const (
	roleWe role = iota
	roleThey
)

// optionState is a per-(option,role) negotiation state.
type optionState int

const (
	stateRequested optionState = iota
	stateActive
	stateInactive
	stateReallyInactive
)

// optionEntry is one row of the table-driven negotiation engine: one
// option code, tracked independently for the we- or they- role. The same
// option code may appear twice in a session's table, once per role.
type optionEntry struct {
	code  OptionCode
	label string
	role  role

	sendYes CommandCode
	sendNo  CommandCode
	ackYes  CommandCode
	ackNo   CommandCode

	state  optionState
	active bool

	// onActivation fires every time this entry transitions into the
	// active state (REQUESTED->ACTIVE or INACTIVE->ACTIVE).
	onActivation func(sess *session)
}

// newOptionEntry builds a table row. For role=we, sendYes/sendNo are
// WILL/WONT and ackYes/ackNo are DO/DONT, since we are the subject of the
// option; role=they swaps the directions, since the peer is the subject.
func newOptionEntry(code OptionCode, label string, r role, initial optionState, onActivation func(*session)) *optionEntry {
	e := &optionEntry{code: code, label: label, role: r, state: initial, onActivation: onActivation}
	if r == roleWe {
		e.sendYes, e.sendNo, e.ackYes, e.ackNo = WILL, WONT, DO, DONT
	} else {
		e.sendYes, e.sendNo, e.ackYes, e.ackNo = DO, DONT, WILL, WONT
	}
	return e
}

// newSessionOptions builds the per-session option table with its initial
// states. It is rebuilt from scratch for every new client so that no state
// lingers across sessions.
func newSessionOptions(sess *session) []*optionEntry {
	onComPortActive := func(s *session) { s.markRFC2217() }
	return []*optionEntry{
		newOptionEntry(Echo, "we-ECHO", roleWe, stateRequested, nil),
		newOptionEntry(SuppressGoAhead, "we-SGA", roleWe, stateRequested, nil),
		newOptionEntry(SuppressGoAhead, "they-SGA", roleThey, stateInactive, nil),
		newOptionEntry(BinaryTransmission, "we-BINARY", roleWe, stateInactive, nil),
		newOptionEntry(BinaryTransmission, "they-BINARY", roleThey, stateRequested, nil),
		newOptionEntry(ComPortOption, "we-RFC2217", roleWe, stateRequested, onComPortActive),
		newOptionEntry(ComPortOption, "they-RFC2217", roleThey, stateInactive, onComPortActive),
	}
}

// weBinaryActive reports whether the we-BINARY entry is currently active,
// used by the send path to decide whether outgoing application data needs
// IAC doubling.
func weBinaryActive(entries []*optionEntry) bool {
	for _, e := range entries {
		if e.code == BinaryTransmission && e.role == roleWe {
			return e.active
		}
	}
	return false
}

// processIncoming applies an incoming ack/nak command byte to one table
// entry's REQUESTED/ACTIVE/INACTIVE/REALLY_INACTIVE state. A nak from
// ACTIVE or an ack from INACTIVE triggers a negotiation reply announcing
// the new state change; an ack reaching ACTIVE (from either REQUESTED or
// INACTIVE) fires onActivation.
func (e *optionEntry) processIncoming(sess *session, command CommandCode) {
	switch {
	case command == e.ackYes:
		switch e.state {
		case stateRequested:
			e.state = stateActive
			e.active = true
			if e.onActivation != nil {
				e.onActivation(sess)
			}
		case stateActive:
			// no-op
		case stateInactive:
			e.state = stateActive
			sess.sendNegotiation(e.sendYes, e.code)
			e.active = true
			if e.onActivation != nil {
				e.onActivation(sess)
			}
		case stateReallyInactive:
			sess.sendNegotiation(e.sendNo, e.code)
		}
	case command == e.ackNo:
		switch e.state {
		case stateRequested:
			e.state = stateInactive
			e.active = false
		case stateActive:
			e.state = stateInactive
			sess.sendNegotiation(e.sendNo, e.code)
			e.active = false
		case stateInactive, stateReallyInactive:
			// no-op
		}
	}
}

// negotiateOption dispatches an incoming (command, option) pair to every
// matching table entry (role determined by the command's direction), or
// replies with a polite refusal if no entry has that option in that role.
func (sess *session) negotiateOption(command CommandCode, opt OptionCode) {
	var matchRole role
	switch command {
	case WILL, WONT:
		matchRole = roleThey
	case DO, DONT:
		matchRole = roleWe
	default:
		return
	}

	known := false
	for _, e := range sess.options {
		if e.code == opt && e.role == matchRole {
			e.processIncoming(sess, command)
			known = true
		}
	}
	if known {
		return
	}

	switch command {
	case WILL:
		sess.sendNegotiation(DONT, opt)
	case DO:
		sess.sendNegotiation(WONT, opt)
		// WONT/DONT from an unknown peer-driven option require no reply.
	}
}
