package hc05

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.bug.st/serial"
	"golang.org/x/sys/unix"
)

// interByteQuiet is the silence window that ends a response once at least one
// byte has arrived. The HC-05 has no length framing; a quiet gap is the only
// message boundary.
const interByteQuiet = 50 * time.Millisecond

// wirePort abstracts the subset of go.bug.st/serial.Port used by this package.
// Tests substitute scripted doubles for it.
type wirePort interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
	SetReadTimeout(d time.Duration) error
}

// TraceFunc observes raw wire traffic; tx is true for transmitted bytes.
// Traces fire while the channel lock is held, so a trace must not call back
// into the channel.
type TraceFunc func(tx bool, data []byte)

// Channel owns one open serial connection. It is the single holder of the OS
// handle for its lifetime; exactly one Channel may be open per device path in
// this process.
type Channel struct {
	mu     sync.Mutex
	port   wirePort
	config Config
	path   string
	closed bool
	trace  TraceFunc
}

// SetTrace installs a wire tap for every send and completed receive window.
// Pass nil to remove it.
func (c *Channel) SetTrace(fn TraceFunc) {
	c.mu.Lock()
	c.trace = fn
	c.mu.Unlock()
}

// heldPaths tracks device paths currently held by this process so a second
// Open on the same path fails fast instead of racing the OS.
var (
	heldMu    sync.Mutex
	heldPaths = make(map[string]struct{})
)

func claimPath(path string) error {
	heldMu.Lock()
	defer heldMu.Unlock()
	if _, held := heldPaths[path]; held {
		return ErrDeviceInUse
	}
	heldPaths[path] = struct{}{}
	return nil
}

func releasePath(path string) {
	heldMu.Lock()
	delete(heldPaths, path)
	heldMu.Unlock()
}

// Open opens a serial channel on the given device path.
func Open(path string, opts ...Option) (*Channel, error) {
	config := DefaultConfig()
	for _, opt := range opts {
		if err := opt(&config); err != nil {
			return nil, err
		}
	}

	if err := claimPath(path); err != nil {
		return nil, fmt.Errorf("%w: %s", err, path)
	}

	// Preflight the device node so permission problems surface as a clear
	// sentinel instead of a driver-specific open failure.
	if err := unix.Access(path, unix.R_OK|unix.W_OK); err != nil {
		if errors.Is(err, unix.EACCES) {
			releasePath(path)
			return nil, fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
		if errors.Is(err, unix.ENOENT) {
			releasePath(path)
			return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, path)
		}
		// Other access errors are left for serial.Open to classify.
	}

	mode := &serial.Mode{
		BaudRate: config.BaudRate,
		DataBits: config.DataBits,
		Parity:   toWireParity(config.Parity),
		StopBits: toWireStopBits(config.StopBits),
	}

	p, err := serial.Open(path, mode)
	if err != nil {
		releasePath(path)
		return nil, classifyOpenError(path, err)
	}

	if err := p.SetReadTimeout(config.ReadTimeout); err != nil {
		_ = p.Close()
		releasePath(path)
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", path, err)
	}

	return &Channel{port: p, config: config, path: path}, nil
}

// newChannel wraps an already-open wirePort. Used by tests to inject doubles;
// it does not claim the path registry.
func newChannel(port wirePort, path string, config Config) *Channel {
	return &Channel{port: port, config: config, path: path}
}

func toWireParity(p Parity) serial.Parity {
	switch p {
	case ParityOdd:
		return serial.OddParity
	case ParityEven:
		return serial.EvenParity
	default:
		return serial.NoParity
	}
}

func toWireStopBits(bits int) serial.StopBits {
	if bits == 2 {
		return serial.TwoStopBits
	}
	return serial.OneStopBit
}

// classifyOpenError maps driver open failures onto the package sentinels.
func classifyOpenError(path string, err error) error {
	var pe *serial.PortError
	if errors.As(err, &pe) {
		switch pe.Code() {
		case serial.PortNotFound:
			return fmt.Errorf("%w: %s", ErrDeviceNotFound, path)
		case serial.PortBusy:
			return fmt.Errorf("%w: %s", ErrDeviceInUse, path)
		case serial.PermissionDenied:
			return fmt.Errorf("%w: %s", ErrPermissionDenied, path)
		}
	}
	switch {
	case errors.Is(err, unix.ENOENT):
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, path)
	case errors.Is(err, unix.EBUSY):
		return fmt.Errorf("%w: %s", ErrDeviceInUse, path)
	case errors.Is(err, unix.EACCES):
		return fmt.Errorf("%w: %s", ErrPermissionDenied, path)
	}
	return fmt.Errorf("failed to open %s: %w", path, err)
}

// Path returns the device path this channel was opened on.
func (c *Channel) Path() string {
	return c.path
}

// BaudRate returns the rate the channel was opened at.
func (c *Channel) BaudRate() int {
	return c.config.BaudRate
}

// ReadTimeout returns the channel's configured response window.
func (c *Channel) ReadTimeout() time.Duration {
	return c.config.ReadTimeout
}

// Send writes raw bytes to the wire. It returns once the driver has accepted
// the whole payload.
func (c *Channel) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrChannelClosed
	}

	payload := data
	for len(data) > 0 {
		n, err := c.port.Write(data)
		if err != nil {
			return fmt.Errorf("write on %s: %w", c.path, err)
		}
		data = data[n:]
	}
	if c.trace != nil {
		c.trace(true, payload)
	}
	return nil
}

// Receive reads whatever bytes arrive within maxWait. It waits up to maxWait
// for the first byte, then keeps reading until the line goes quiet. An empty
// result with nil error means the window elapsed with no response; it never
// blocks past maxWait plus one quiet gap.
func (c *Channel) Receive(maxWait time.Duration) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrChannelClosed
	}

	if err := c.port.SetReadTimeout(maxWait); err != nil {
		return nil, fmt.Errorf("set read timeout on %s: %w", c.path, err)
	}

	var out []byte
	buf := make([]byte, 256)
	deadline := time.Now().Add(maxWait)
	for {
		n, err := c.port.Read(buf)
		if err != nil {
			return out, fmt.Errorf("read on %s: %w", c.path, err)
		}
		if n == 0 {
			// Read timeout expired: either no response at all or the
			// quiet gap after the last byte.
			return c.traceRX(out), nil
		}
		out = append(out, buf[:n]...)
		if time.Now().After(deadline) {
			return c.traceRX(out), nil
		}
		if err := c.port.SetReadTimeout(interByteQuiet); err != nil {
			return out, fmt.Errorf("set read timeout on %s: %w", c.path, err)
		}
	}
}

func (c *Channel) traceRX(out []byte) []byte {
	if c.trace != nil {
		c.trace(false, out)
	}
	return out
}

// Close releases the OS handle. It is safe to call multiple times; higher
// level operations close their channel on every exit path.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	releasePath(c.path)
	return c.port.Close()
}
