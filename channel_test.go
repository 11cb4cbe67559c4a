package hc05

import (
	"bytes"
	"errors"
	"testing"
	"time"
)

// scriptPort is a wirePort double. Writing a command queues whatever the
// handler returns; reads drain the queue and then time out (n=0), which is
// exactly how go.bug.st/serial reports an expired read timeout.
type scriptPort struct {
	handler func(cmd string) []byte
	pending []byte
	written bytes.Buffer
	calls   []string
	closed  bool
}

func (s *scriptPort) Write(p []byte) (int, error) {
	s.calls = append(s.calls, "send")
	s.written.Write(p)
	if s.handler != nil {
		s.pending = append(s.pending, s.handler(string(p))...)
	}
	return len(p), nil
}

func (s *scriptPort) Read(p []byte) (int, error) {
	if len(s.pending) == 0 {
		s.calls = append(s.calls, "timeout")
		return 0, nil
	}
	s.calls = append(s.calls, "recv")
	n := copy(p, s.pending)
	s.pending = s.pending[n:]
	return n, nil
}

func (s *scriptPort) Close() error {
	s.closed = true
	return nil
}

func (s *scriptPort) SetReadTimeout(time.Duration) error {
	return nil
}

func testChannel(port *scriptPort) *Channel {
	cfg := DefaultConfig()
	cfg.ReadTimeout = 100 * time.Millisecond
	return newChannel(port, "/dev/ttyTEST", cfg)
}

func TestReceiveFramesByTimeout(t *testing.T) {
	port := &scriptPort{handler: func(string) []byte { return []byte("OK\r\n") }}
	ch := testChannel(port)

	if err := ch.Send([]byte("AT")); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	got, err := ch.Receive(100 * time.Millisecond)
	if err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if string(got) != "OK\r\n" {
		t.Errorf("Receive = %q, want %q", got, "OK\r\n")
	}
}

func TestReceiveEmptyOnTimeout(t *testing.T) {
	port := &scriptPort{}
	ch := testChannel(port)

	got, err := ch.Receive(50 * time.Millisecond)
	if err != nil {
		t.Fatalf("Receive failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected empty response, got %q", got)
	}
}

func TestSendAfterClose(t *testing.T) {
	port := &scriptPort{}
	ch := testChannel(port)

	if err := ch.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !port.closed {
		t.Error("Close did not close the underlying port")
	}

	if err := ch.Send([]byte("AT")); !errors.Is(err, ErrChannelClosed) {
		t.Errorf("Send after close = %v, want ErrChannelClosed", err)
	}
	if _, err := ch.Receive(time.Millisecond); !errors.Is(err, ErrChannelClosed) {
		t.Errorf("Receive after close = %v, want ErrChannelClosed", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	port := &scriptPort{}
	ch := testChannel(port)

	if err := ch.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := ch.Close(); err != nil {
		t.Errorf("second Close = %v, want nil", err)
	}
}

func TestExclusiveHold(t *testing.T) {
	path := "/dev/ttyHOLD0"

	if err := claimPath(path); err != nil {
		t.Fatalf("first claim failed: %v", err)
	}
	if err := claimPath(path); !errors.Is(err, ErrDeviceInUse) {
		t.Errorf("second claim = %v, want ErrDeviceInUse", err)
	}

	releasePath(path)
	if err := claimPath(path); err != nil {
		t.Errorf("claim after release = %v, want nil", err)
	}
	releasePath(path)
}

func TestOpenNonExistentDevice(t *testing.T) {
	_, err := Open("/dev/nonexistent-hc05-test")
	if err == nil {
		t.Fatal("Expected error when opening non-existent device")
	}
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("Expected ErrDeviceNotFound, got %v", err)
	}

	// The failed open must not leave the path claimed.
	if err := claimPath("/dev/nonexistent-hc05-test"); err != nil {
		t.Errorf("path still claimed after failed open: %v", err)
	}
	releasePath("/dev/nonexistent-hc05-test")
}

func TestTraceSeesBothDirections(t *testing.T) {
	port := &scriptPort{handler: func(string) []byte { return []byte("OK\r\n") }}
	ch := testChannel(port)

	type tap struct {
		tx   bool
		data string
	}
	var taps []tap
	ch.SetTrace(func(tx bool, data []byte) {
		taps = append(taps, tap{tx: tx, data: string(data)})
	})

	if err := ch.Send([]byte("AT")); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if _, err := ch.Receive(50 * time.Millisecond); err != nil {
		t.Fatalf("Receive failed: %v", err)
	}

	want := []tap{{tx: true, data: "AT"}, {tx: false, data: "OK\r\n"}}
	if len(taps) != len(want) {
		t.Fatalf("trace fired %d times, want %d", len(taps), len(want))
	}
	for i, w := range want {
		if taps[i] != w {
			t.Errorf("trace[%d] = %+v, want %+v", i, taps[i], w)
		}
	}
}

func TestOpenRejectsInvalidOptions(t *testing.T) {
	if _, err := Open("/dev/ttyTEST", WithBaudRate(123456)); !errors.Is(err, ErrInvalidBaudRate) {
		t.Errorf("Open with bad baud = %v, want ErrInvalidBaudRate", err)
	}
}
