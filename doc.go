// Package hc05 discovers, probes, and reconfigures HC-05 Bluetooth serial
// modules attached to a host's serial ports.
//
// The HC-05 exposes a plain-text AT command set over UART, but only when its
// command mode is entered at the right baud rate, and its half-duplex,
// timing-sensitive interface makes every exchange unreliable. This package
// owns that complexity: candidate-rate probing, AT-mode confirmation, the
// query/set response grammar, domain validation of settings before they reach
// the wire, and bounded retry with an operator-controlled skip.
//
// # Port Discovery
//
// List candidate serial ports with their USB metadata:
//
//	ports, err := hc05.ListPorts()
//	for _, p := range ports {
//	    fmt.Println(p.Label())
//	}
//
// # Finding the Baud Rate
//
// The module's AT-mode rate is unknown up front, so it is found by trial:
//
//	prober := hc05.NewProber()
//	session, report, err := prober.Probe("/dev/ttyUSB0")
//	for _, a := range report.Attempts {
//	    fmt.Printf("%6d baud: %-12s % X\n", a.BaudRate, a.Outcome, a.Raw)
//	}
//	if err != nil {
//	    // hc05.ErrProbeExhausted: no candidate worked
//	}
//	defer session.Close()
//
// A successful probe hands back a Session already confirmed in AT mode that
// owns the winning channel.
//
// # Querying and Setting Configuration
//
// Configuration fields form a closed set with typed domains; values outside a
// field's domain are rejected before any byte is transmitted:
//
//	name, err := session.Query(hc05.FieldName)
//	err = session.Set(hc05.FieldPin, "4321")
//
//	if verr := new(hc05.ValidationError); errors.As(err, &verr) {
//	    // operator input error, nothing was sent
//	}
//
// # Retry and Skip
//
// Every protocol step can be governed by a retry policy. When attempts run
// out, the policy asks a pluggable Resolver - typically an operator prompt -
// whether to retry from scratch or skip the step:
//
//	policy := hc05.Policy{MaxAttempts: 3, Resolver: promptResolver}
//	result := policy.Run("query name", func() error {
//	    _, err := session.Query(hc05.FieldName)
//	    return err
//	})
//	// result.Outcome is OutcomeSuccess, OutcomeSkipped, or OutcomeFailed
//
// A skipped query leaves the field absent from the ModuleConfig; a skipped set
// leaves the module untouched. Reporting never claims success for a skipped
// step.
//
// # Error Handling
//
// Channel-level failures map onto sentinels (ErrDeviceNotFound,
// ErrPermissionDenied, ErrDeviceInUse); wire-level failures are ProtocolError
// values split into timeout and malformed kinds. Use errors.Is and errors.As:
//
//	if errors.Is(err, hc05.ErrDeviceInUse) { ... }
//	if hc05.IsTimeout(err) { ... }
//
// # Concurrency
//
// The package is deliberately single-flow: a Channel holds the OS handle
// exclusively, a Session issues strictly sequential request/response
// exchanges, and all waiting is bounded blocking with explicit timeouts.
package hc05
