package hc05

import "time"

// Parity represents the parity mode
type Parity int

const (
	ParityNone Parity = iota
	ParityOdd
	ParityEven
)

// Config holds the configuration for a serial channel. One instance is built
// per open attempt; it is never mutated after Open.
type Config struct {
	BaudRate    int
	DataBits    int
	StopBits    int
	Parity      Parity
	ReadTimeout time.Duration
}

// Option is a functional option for configuring a serial channel
type Option func(*Config) error

// supportedBaudRates is the set of UART rates the HC-05 firmware family
// accepts, both for the host-side channel and for the module's AT+UART domain.
var supportedBaudRates = []int{
	4800, 9600, 19200, 38400, 57600, 115200, 230400, 460800, 921600, 1382400,
}

func isSupportedBaudRate(rate int) bool {
	for _, r := range supportedBaudRates {
		if r == rate {
			return true
		}
	}
	return false
}

// SupportedBaudRates returns the HC-05 baud rate domain in ascending order.
func SupportedBaudRates() []int {
	rates := make([]int, len(supportedBaudRates))
	copy(rates, supportedBaudRates)
	return rates
}

// DefaultConfig returns a configuration with sensible defaults.
// 38400 8N1 is what an HC-05 holding the KEY pin high boots its AT mode at.
func DefaultConfig() Config {
	return Config{
		BaudRate:    38400,
		DataBits:    8,
		StopBits:    1,
		Parity:      ParityNone,
		ReadTimeout: time.Second,
	}
}

// WithBaudRate sets the baud rate
func WithBaudRate(rate int) Option {
	return func(c *Config) error {
		if !isSupportedBaudRate(rate) {
			return ErrInvalidBaudRate
		}
		c.BaudRate = rate
		return nil
	}
}

// WithDataBits sets the number of data bits (5, 6, 7, or 8)
func WithDataBits(bits int) Option {
	return func(c *Config) error {
		if bits < 5 || bits > 8 {
			return ErrInvalidConfig
		}
		c.DataBits = bits
		return nil
	}
}

// WithStopBits sets the number of stop bits (1 or 2)
func WithStopBits(bits int) Option {
	return func(c *Config) error {
		if bits != 1 && bits != 2 {
			return ErrInvalidConfig
		}
		c.StopBits = bits
		return nil
	}
}

// WithParity sets the parity mode
func WithParity(parity Parity) Option {
	return func(c *Config) error {
		if parity < ParityNone || parity > ParityEven {
			return ErrInvalidConfig
		}
		c.Parity = parity
		return nil
	}
}

// WithReadTimeout sets how long Receive waits for the first response byte
func WithReadTimeout(d time.Duration) Option {
	return func(c *Config) error {
		if d <= 0 {
			return ErrInvalidConfig
		}
		c.ReadTimeout = d
		return nil
	}
}
