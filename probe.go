package hc05

import (
	"bytes"
	"time"
)

// ProbeOutcome classifies the bytes seen during one baud rate trial.
type ProbeOutcome int

const (
	// ProbeNoResponse means the response window elapsed without a byte.
	ProbeNoResponse ProbeOutcome = iota
	// ProbeGarbage means bytes arrived but contained no OK token, which
	// usually indicates a wrong rate or partial UART sync.
	ProbeGarbage
	// ProbeOK means the module answered the AT probe coherently.
	ProbeOK
)

func (o ProbeOutcome) String() string {
	switch o {
	case ProbeNoResponse:
		return "no response"
	case ProbeGarbage:
		return "garbage"
	case ProbeOK:
		return "OK"
	default:
		return "unknown"
	}
}

// ProbeAttempt records one baud rate trial. Raw holds every byte seen during
// the attempt so partial or garbled responses can be shown to the operator;
// they are common and informative.
type ProbeAttempt struct {
	BaudRate int
	Raw      []byte
	Outcome  ProbeOutcome
	Err      error
}

// Report collects the attempts of one probe run, successful or not.
type Report struct {
	Attempts  []ProbeAttempt
	Confirmed bool
	BaudRate  int
}

// DefaultCandidates is the rate list tried when none is configured. 38400 is
// first because the HC-05 AT boot mode always runs at 38400; the rest covers
// modules whose mini-AT mode follows the data UART setting.
var DefaultCandidates = []int{38400, 9600, 19200, 57600, 115200}

// Prober walks an ordered list of candidate baud rates looking for one at
// which the module answers an AT probe. The first coherent answer wins; later
// candidates are never attempted.
type Prober struct {
	// Candidates is tried in order. Empty means DefaultCandidates.
	Candidates []int

	// ProbeTimeout bounds the wait for each candidate's response.
	ProbeTimeout time.Duration

	// SettleDelay is how long to hold off after opening the port before
	// sending the probe. The HC-05 ignores bytes that arrive during its
	// AT boot window, so this is a protocol requirement, not tuning.
	SettleDelay time.Duration

	// Trace, when set, is installed on every channel the prober opens, the
	// winning one included.
	Trace TraceFunc

	// open is swapped out by tests.
	open func(path string, rate int, timeout time.Duration) (*Channel, error)
}

// NewProber returns a prober with the default candidate list and timing.
func NewProber() *Prober {
	return &Prober{
		ProbeTimeout: time.Second,
		SettleDelay:  time.Second,
	}
}

func (p *Prober) candidates() []int {
	if len(p.Candidates) > 0 {
		return p.Candidates
	}
	return DefaultCandidates
}

func (p *Prober) openChannel(path string, rate int) (*Channel, error) {
	timeout := p.ProbeTimeout
	if timeout <= 0 {
		timeout = time.Second
	}
	if p.open != nil {
		return p.open(path, rate, timeout)
	}
	return Open(path, WithBaudRate(rate), WithReadTimeout(timeout))
}

// Probe tries each candidate rate in order. On success it returns a session
// already in StateATConfirmed that owns the winning channel. On exhaustion it
// returns ErrProbeExhausted. The report is returned in both cases; every
// attempt's raw bytes are in it.
func (p *Prober) Probe(path string) (*Session, *Report, error) {
	report := &Report{}

	for _, rate := range p.candidates() {
		ch, err := p.openChannel(path, rate)
		if err != nil {
			// Fatal for this open attempt only; the next candidate
			// gets its own try.
			report.Attempts = append(report.Attempts, ProbeAttempt{BaudRate: rate, Err: err})
			continue
		}
		if p.Trace != nil {
			ch.SetTrace(p.Trace)
		}

		attempt, ok := p.probeOnce(ch, rate)
		report.Attempts = append(report.Attempts, attempt)
		if !ok {
			_ = ch.Close()
			continue
		}

		report.Confirmed = true
		report.BaudRate = rate
		session := NewSession(ch)
		session.state = StateATConfirmed
		return session, report, nil
	}

	return nil, report, ErrProbeExhausted
}

// probeOnce sends the bare AT probe on an open channel and classifies the
// answer. The probe carries no line terminator: during the boot window the
// module must not see its native line characters.
func (p *Prober) probeOnce(ch *Channel, rate int) (ProbeAttempt, bool) {
	attempt := ProbeAttempt{BaudRate: rate}

	if p.SettleDelay > 0 {
		time.Sleep(p.SettleDelay)
	}

	if err := ch.Send([]byte("AT")); err != nil {
		attempt.Err = err
		return attempt, false
	}

	raw, err := ch.Receive(p.ProbeTimeout)
	attempt.Raw = raw
	if err != nil {
		attempt.Err = err
		return attempt, false
	}

	attempt.Outcome = classifyProbe(raw)
	return attempt, attempt.Outcome == ProbeOK
}

func classifyProbe(raw []byte) ProbeOutcome {
	switch {
	case len(raw) == 0:
		return ProbeNoResponse
	case bytes.Contains(raw, []byte("OK")):
		return ProbeOK
	default:
		return ProbeGarbage
	}
}
