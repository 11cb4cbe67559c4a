package hc05

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

// fakeOpener builds channels whose port only answers the AT probe at the
// given rate, with configurable noise at the wrong rates.
func fakeOpener(answerAt int, wrongRateNoise []byte, opened *[]int) func(string, int, time.Duration) (*Channel, error) {
	return func(path string, rate int, timeout time.Duration) (*Channel, error) {
		*opened = append(*opened, rate)
		port := &scriptPort{handler: func(cmd string) []byte {
			if cmd != "AT" {
				return nil
			}
			if rate == answerAt {
				return []byte("OK\r\n")
			}
			return wrongRateNoise
		}}
		cfg := DefaultConfig()
		cfg.BaudRate = rate
		cfg.ReadTimeout = timeout
		return newChannel(port, path, cfg), nil
	}
}

func testProber(open func(string, int, time.Duration) (*Channel, error), candidates ...int) *Prober {
	return &Prober{
		Candidates:   candidates,
		ProbeTimeout: 50 * time.Millisecond,
		SettleDelay:  0,
		open:         open,
	}
}

func TestProbeStopsAtFirstWorkingRate(t *testing.T) {
	var opened []int
	p := testProber(fakeOpener(38400, nil, &opened), 9600, 38400, 115200)

	session, report, err := p.Probe("/dev/ttyTEST")
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	defer session.Close()

	// 9600 sees nothing, 38400 answers, 115200 is never attempted.
	wantOpened := []int{9600, 38400}
	if len(opened) != len(wantOpened) || opened[0] != 9600 || opened[1] != 38400 {
		t.Errorf("opened rates %v, want %v", opened, wantOpened)
	}

	if !report.Confirmed || report.BaudRate != 38400 {
		t.Errorf("report = confirmed %v at %d, want confirmed at 38400", report.Confirmed, report.BaudRate)
	}
	if len(report.Attempts) != 2 {
		t.Fatalf("report has %d attempts, want 2", len(report.Attempts))
	}
	if report.Attempts[0].Outcome != ProbeNoResponse {
		t.Errorf("first attempt outcome = %s, want no response", report.Attempts[0].Outcome)
	}
	if report.Attempts[1].Outcome != ProbeOK {
		t.Errorf("second attempt outcome = %s, want OK", report.Attempts[1].Outcome)
	}

	if session.State() != StateATConfirmed {
		t.Errorf("session state = %s, want AT confirmed", session.State())
	}
	if session.BaudRate() != 38400 {
		t.Errorf("session baud = %d, want 38400", session.BaudRate())
	}
}

func TestProbeRecordsRawBytes(t *testing.T) {
	noise := []byte{0xf8, 0x00, 0x9c}
	var opened []int
	p := testProber(fakeOpener(115200, noise, &opened), 9600, 115200)

	session, report, err := p.Probe("/dev/ttyTEST")
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	defer session.Close()

	if report.Attempts[0].Outcome != ProbeGarbage {
		t.Errorf("wrong-rate attempt outcome = %s, want garbage", report.Attempts[0].Outcome)
	}
	if !bytes.Equal(report.Attempts[0].Raw, noise) {
		t.Errorf("raw bytes %X not preserved, want %X", report.Attempts[0].Raw, noise)
	}
	// Raw bytes are kept for the successful attempt too.
	if !bytes.Contains(report.Attempts[1].Raw, []byte("OK")) {
		t.Errorf("confirmed attempt raw = %X, expected recorded OK", report.Attempts[1].Raw)
	}
}

func TestProbeExhausted(t *testing.T) {
	var opened []int
	p := testProber(fakeOpener(0, nil, &opened), 9600, 38400, 115200)

	session, report, err := p.Probe("/dev/ttyTEST")
	if session != nil {
		t.Fatal("exhausted probe returned a session")
	}
	if !errors.Is(err, ErrProbeExhausted) {
		t.Fatalf("Probe = %v, want ErrProbeExhausted", err)
	}

	if report.Confirmed {
		t.Error("exhausted report claims confirmation")
	}
	if len(report.Attempts) != 3 {
		t.Errorf("report has %d attempts, want 3", len(report.Attempts))
	}
	if len(opened) != 3 {
		t.Errorf("opened %d channels, want 3", len(opened))
	}
}

func TestProbeContinuesPastOpenFailure(t *testing.T) {
	var opened []int
	inner := fakeOpener(38400, nil, &opened)
	open := func(path string, rate int, timeout time.Duration) (*Channel, error) {
		if rate == 9600 {
			opened = append(opened, rate)
			return nil, ErrDeviceInUse
		}
		return inner(path, rate, timeout)
	}
	p := testProber(open, 9600, 38400)

	session, report, err := p.Probe("/dev/ttyTEST")
	if err != nil {
		t.Fatalf("Probe failed: %v", err)
	}
	defer session.Close()

	if !errors.Is(report.Attempts[0].Err, ErrDeviceInUse) {
		t.Errorf("failed open not recorded: %v", report.Attempts[0].Err)
	}
	if !report.Confirmed || report.BaudRate != 38400 {
		t.Errorf("probe did not recover past the failed open")
	}
}

func TestProbeClassification(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want ProbeOutcome
	}{
		{"empty", nil, ProbeNoResponse},
		{"clean ok", []byte("OK\r\n"), ProbeOK},
		{"ok amid noise", []byte("\x00OK\r\n"), ProbeOK},
		{"framing garbage", []byte{0xfe, 0x7f}, ProbeGarbage},
		{"wrong-rate text", []byte("ERROR"), ProbeGarbage},
	}

	for _, tt := range tests {
		if got := classifyProbe(tt.raw); got != tt.want {
			t.Errorf("classifyProbe(%s) = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestDefaultCandidatesOrder(t *testing.T) {
	p := NewProber()
	rates := p.candidates()
	if rates[0] != 38400 {
		t.Errorf("first default candidate = %d, want 38400 (AT boot rate)", rates[0])
	}
	for _, rate := range rates {
		if !isSupportedBaudRate(rate) {
			t.Errorf("default candidate %d outside the HC-05 domain", rate)
		}
	}
}
