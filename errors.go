package hc05

import (
	"errors"
	"fmt"
)

// Predefined error types for robust error handling
var (
	ErrDeviceNotFound   = errors.New("serial device not found")
	ErrPermissionDenied = errors.New("permission denied accessing serial device")
	ErrDeviceInUse      = errors.New("serial device already in use")
	ErrChannelClosed    = errors.New("serial channel is closed")
	ErrInvalidBaudRate  = errors.New("invalid baud rate")
	ErrInvalidConfig    = errors.New("invalid channel configuration")
	ErrNotConfirmed     = errors.New("session has not confirmed AT mode")

	// Probe errors
	ErrProbeExhausted = errors.New("no candidate baud rate produced an AT response")

	// USB-related errors
	ErrUSBInfoNotAvailable  = errors.New("USB device information not available")
	ErrUSBResetNotAvailable = errors.New("usbreset utility not available")
)

// ProtocolErrorKind distinguishes the two recoverable wire-level failures.
type ProtocolErrorKind int

const (
	// ProtocolTimeout means no bytes arrived within the response window.
	ProtocolTimeout ProtocolErrorKind = iota
	// ProtocolMalformed means bytes arrived but did not match the expected
	// response grammar (ERROR token, garbled line, missing terminator).
	ProtocolMalformed
)

func (k ProtocolErrorKind) String() string {
	switch k {
	case ProtocolTimeout:
		return "timeout"
	case ProtocolMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// ProtocolError reports a failed AT command exchange. It carries the command
// that was sent and whatever raw bytes came back for diagnostic display.
type ProtocolError struct {
	Kind     ProtocolErrorKind
	Command  string
	Response []byte
}

func (e *ProtocolError) Error() string {
	if e.Kind == ProtocolTimeout {
		return fmt.Sprintf("no response to %q within timeout", e.Command)
	}
	return fmt.Sprintf("malformed response to %q: %q", e.Command, e.Response)
}

// IsTimeout reports whether err is a ProtocolError of kind ProtocolTimeout.
func IsTimeout(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe) && pe.Kind == ProtocolTimeout
}

// IsMalformed reports whether err is a ProtocolError of kind ProtocolMalformed.
func IsMalformed(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe) && pe.Kind == ProtocolMalformed
}

// ValidationError reports a value rejected before transmission. It indicates
// operator input error, never a device or protocol failure, and no bytes have
// been written to the wire when it is returned.
type ValidationError struct {
	Field  Field
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s value %q: %s", e.Field, e.Value, e.Reason)
}
