package hc05

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Field identifies one persistent HC-05 configuration setting. The set is
// closed: every field carries its AT command tokens, its default, and a typed
// validator, so domain checks happen in one place before anything reaches the
// wire.
type Field int

const (
	FieldName Field = iota
	FieldPin
	FieldUART
	FieldRole
	FieldCMode

	fieldCount
)

func (f Field) String() string {
	switch f {
	case FieldName:
		return "name"
	case FieldPin:
		return "pin"
	case FieldUART:
		return "uart"
	case FieldRole:
		return "role"
	case FieldCMode:
		return "cmode"
	default:
		return fmt.Sprintf("field(%d)", int(f))
	}
}

// FieldByName resolves an operator-supplied field name.
func FieldByName(name string) (Field, bool) {
	for f := Field(0); f < fieldCount; f++ {
		if f.String() == strings.ToLower(strings.TrimSpace(name)) {
			return f, true
		}
	}
	return 0, false
}

// Fields returns every known field in query order.
func Fields() []Field {
	fields := make([]Field, 0, fieldCount)
	for f := Field(0); f < fieldCount; f++ {
		fields = append(fields, f)
	}
	return fields
}

// fieldSpec carries the firmware-specific command tokens for one field.
// Tokens follow the HC-05 2.0 AT command reference; note the PSWD/PIN
// asymmetry: the password is set with AT+PSWD= but reported as +PIN:.
type fieldSpec struct {
	queryCmd     string
	setFmt       string
	replyPrefix  string
	defaultValue string
	description  string
	validate     func(string) string // returns a reason, empty when valid
}

var fieldSpecs = [fieldCount]fieldSpec{
	FieldName: {
		queryCmd:     "AT+NAME?",
		setFmt:       "AT+NAME=%s",
		replyPrefix:  "+NAME:",
		defaultValue: "HC-05",
		description:  "Bluetooth device name",
		validate:     validateName,
	},
	FieldPin: {
		queryCmd:     "AT+PSWD?",
		setFmt:       "AT+PSWD=%s",
		replyPrefix:  "+PIN:",
		defaultValue: "1234",
		description:  "pairing PIN (4 digits)",
		validate:     validatePin,
	},
	FieldUART: {
		queryCmd:     "AT+UART?",
		setFmt:       "AT+UART=%s",
		replyPrefix:  "+UART:",
		defaultValue: "9600,0,0",
		description:  "data-mode UART as baud,stop,parity",
		validate:     validateUART,
	},
	FieldRole: {
		queryCmd:     "AT+ROLE?",
		setFmt:       "AT+ROLE=%s",
		replyPrefix:  "+ROLE:",
		defaultValue: "0",
		description:  "role (0=slave, 1=master, 2=slave-loop)",
		validate:     enumValidator("0", "1", "2"),
	},
	FieldCMode: {
		queryCmd:     "AT+CMOD?",
		setFmt:       "AT+CMOD=%s",
		replyPrefix:  "+CMOD:",
		defaultValue: "0",
		description:  "connect mode (0=bound address, 1=any, 2=slave-loop)",
		validate:     enumValidator("0", "1", "2"),
	},
}

// Default returns the library-defined default value for a field.
func Default(f Field) string {
	return fieldSpecs[f].defaultValue
}

// Describe returns a short operator-facing description of a field.
func Describe(f Field) string {
	return fieldSpecs[f].description
}

// Validate checks a candidate value against the field's domain. A non-nil
// result is always a *ValidationError and means nothing may be transmitted.
func Validate(f Field, value string) error {
	if f < 0 || f >= fieldCount {
		return &ValidationError{Field: f, Value: value, Reason: "unknown field"}
	}
	if reason := fieldSpecs[f].validate(value); reason != "" {
		return &ValidationError{Field: f, Value: value, Reason: reason}
	}
	return nil
}

func validateName(v string) string {
	if v == "" {
		return "must not be empty"
	}
	if len(v) > 32 {
		return "must be at most 32 characters"
	}
	if strings.ContainsAny(v, "\r\n,") {
		return "must not contain line breaks or commas"
	}
	return ""
}

func validatePin(v string) string {
	if len(v) != 4 {
		return "must be exactly 4 digits"
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return "must be exactly 4 digits"
		}
	}
	return ""
}

func validateUART(v string) string {
	parts := strings.Split(v, ",")
	if len(parts) != 3 {
		return "must be baud,stop,parity"
	}
	baud, err := strconv.Atoi(parts[0])
	if err != nil || !isSupportedBaudRate(baud) {
		return fmt.Sprintf("baud must be one of %v", supportedBaudRates)
	}
	if parts[1] != "0" && parts[1] != "1" {
		return "stop bits must be 0 (one) or 1 (two)"
	}
	if parts[2] != "0" && parts[2] != "1" && parts[2] != "2" {
		return "parity must be 0 (none), 1 (odd) or 2 (even)"
	}
	return ""
}

func enumValidator(allowed ...string) func(string) string {
	return func(v string) string {
		for _, a := range allowed {
			if v == a {
				return ""
			}
		}
		return fmt.Sprintf("must be one of %s", strings.Join(allowed, ", "))
	}
}

// ModuleConfig maps fields to the values read from (or acknowledged by) a
// module. A field that was never read, or whose read was skipped, is absent
// rather than defaulted, so reporting never claims success for a skipped step.
type ModuleConfig struct {
	values map[Field]string
}

// NewModuleConfig returns an empty configuration snapshot.
func NewModuleConfig() *ModuleConfig {
	return &ModuleConfig{values: make(map[Field]string)}
}

// Value returns the recorded value for a field and whether one is present.
func (m *ModuleConfig) Value(f Field) (string, bool) {
	v, ok := m.values[f]
	return v, ok
}

// Set records a value actually observed on the device.
func (m *ModuleConfig) Set(f Field, value string) {
	m.values[f] = value
}

// Len returns the number of fields present.
func (m *ModuleConfig) Len() int {
	return len(m.values)
}

// Present returns the fields that hold a value, in query order.
func (m *ModuleConfig) Present() []Field {
	fields := make([]Field, 0, len(m.values))
	for f := range m.values {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })
	return fields
}
