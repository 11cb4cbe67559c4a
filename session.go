package hc05

import (
	"fmt"
	"strings"
)

// SessionState tracks where a session is in the AT-mode lifecycle.
type SessionState int

const (
	StateDisconnected SessionState = iota
	StateChannelOpen
	StateATConfirmed
	StateFaulted
)

func (s SessionState) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateChannelOpen:
		return "channel open"
	case StateATConfirmed:
		return "AT confirmed"
	case StateFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// Session drives the AT query/set protocol over a confirmed channel. It
// borrows the channel rather than owning it conceptually, but closing the
// session closes the channel so no exit path leaks the OS handle.
//
// Sessions are strictly sequential: one command is in flight at a time and a
// new send never happens before the previous response window has closed. The
// HC-05 is not pipelined. Concurrent use is not supported.
type Session struct {
	ch    *Channel
	state SessionState
}

// NewSession wraps an open channel. The session starts in StateChannelOpen;
// call Confirm before issuing queries.
func NewSession(ch *Channel) *Session {
	return &Session{ch: ch, state: StateChannelOpen}
}

// State returns the session's current lifecycle state.
func (s *Session) State() SessionState {
	return s.state
}

// BaudRate returns the rate of the underlying channel.
func (s *Session) BaudRate() int {
	return s.ch.BaudRate()
}

// Path returns the device path of the underlying channel.
func (s *Session) Path() string {
	return s.ch.Path()
}

// SetTrace installs a wire tap on the underlying channel.
func (s *Session) SetTrace(fn TraceFunc) {
	s.ch.SetTrace(fn)
}

// Confirm performs a full AT round-trip and transitions the session to
// StateATConfirmed when the module acknowledges.
func (s *Session) Confirm() error {
	if s.state == StateDisconnected || s.state == StateFaulted {
		return fmt.Errorf("cannot confirm AT mode: session is %s", s.state)
	}
	raw, err := s.exchange("AT")
	if err != nil {
		return err
	}
	if !strings.Contains(string(raw), "OK") {
		return &ProtocolError{Kind: ProtocolMalformed, Command: "AT", Response: raw}
	}
	s.state = StateATConfirmed
	return nil
}

// Query reads the current value of one configuration field.
func (s *Session) Query(f Field) (string, error) {
	if s.state != StateATConfirmed {
		return "", fmt.Errorf("%w (state: %s)", ErrNotConfirmed, s.state)
	}
	spec := fieldSpecs[f]
	raw, err := s.exchange(spec.queryCmd)
	if err != nil {
		return "", err
	}
	return parseQueryReply(spec.queryCmd, spec.replyPrefix, raw)
}

// Set validates value against the field's domain, then transmits the set
// command and waits for the module's acknowledgement. On a ValidationError
// nothing has been sent.
func (s *Session) Set(f Field, value string) error {
	if err := Validate(f, value); err != nil {
		return err
	}
	if s.state != StateATConfirmed {
		return fmt.Errorf("%w (state: %s)", ErrNotConfirmed, s.state)
	}
	spec := fieldSpecs[f]
	cmd := fmt.Sprintf(spec.setFmt, value)
	raw, err := s.exchange(cmd)
	if err != nil {
		return err
	}
	if !replyAcknowledged(raw) {
		return &ProtocolError{Kind: ProtocolMalformed, Command: cmd, Response: raw}
	}
	return nil
}

// QueryAll reads every known field in order. It stops at the first failure,
// returning the fields read so far alongside the error; callers that want to
// continue past failures run per-field queries under a retry policy instead.
func (s *Session) QueryAll() (*ModuleConfig, error) {
	config := NewModuleConfig()
	for _, f := range Fields() {
		value, err := s.Query(f)
		if err != nil {
			return config, fmt.Errorf("query %s: %w", f, err)
		}
		config.Set(f, value)
	}
	return config, nil
}

// Close releases the underlying channel. Safe to call multiple times.
func (s *Session) Close() error {
	s.state = StateDisconnected
	return s.ch.Close()
}

// exchange sends one command line and collects the response window. The
// receive always completes (with bytes or a timeout) before exchange returns,
// which is what keeps sessions strictly request/response.
func (s *Session) exchange(cmd string) ([]byte, error) {
	if err := s.ch.Send([]byte(cmd + "\r\n")); err != nil {
		s.state = StateFaulted
		return nil, err
	}
	raw, err := s.ch.Receive(s.ch.ReadTimeout())
	if err != nil {
		s.state = StateFaulted
		return nil, err
	}
	if len(raw) == 0 {
		return nil, &ProtocolError{Kind: ProtocolTimeout, Command: cmd}
	}
	return raw, nil
}

// parseQueryReply parses the +FIELD:value / OK response grammar. The value
// line and the final OK must both be present; an ERROR token anywhere makes
// the reply malformed.
func parseQueryReply(cmd, prefix string, raw []byte) (string, error) {
	malformed := &ProtocolError{Kind: ProtocolMalformed, Command: cmd, Response: raw}

	if !replyAcknowledged(raw) {
		return "", malformed
	}
	for _, line := range replyLines(raw) {
		if strings.HasPrefix(line, prefix) {
			value := strings.TrimPrefix(line, prefix)
			return strings.Trim(value, `"`), nil
		}
	}
	return "", malformed
}

// replyAcknowledged reports whether the response ends in a clean OK.
func replyAcknowledged(raw []byte) bool {
	lines := replyLines(raw)
	if len(lines) == 0 {
		return false
	}
	for _, line := range lines {
		if strings.HasPrefix(line, "ERROR") {
			return false
		}
	}
	return lines[len(lines)-1] == "OK"
}

func replyLines(raw []byte) []string {
	var lines []string
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimRight(line, "\r")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
