package fluke

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tsmultimeter/tsmeter-go/pkg/log"
	"github.com/tsmultimeter/tsmeter-go/pkg/meter"
)

// Defaults match the timing the Fluke 289 needs over the IR-USB cable.
const (
	DefaultBaudRate           = 115200
	DefaultSettleDelay        = 50 * time.Millisecond
	DefaultAckTimeout         = 5 * time.Second
	DefaultPayloadIdleTimeout = 750 * time.Millisecond
	DefaultReadBackoff        = 10 * time.Millisecond
	DefaultOpenSettleDelay    = 150 * time.Millisecond
	DefaultPortReadTimeout    = 100 * time.Millisecond
)

// Config configures a Device.
type Config struct {
	// Port is the serial port name ("/dev/ttyUSB0", "COM3"). Required.
	Port string

	// BaudRate of the serial link.
	BaudRate int

	// SettleDelay is the wait between writing a command and the first read.
	SettleDelay time.Duration

	// AckTimeout bounds the silence before the ack line arrives.
	AckTimeout time.Duration

	// PayloadIdleTimeout bounds the silence after the ack line before the
	// reply is treated as ack-only.
	PayloadIdleTimeout time.Duration

	// ReadBackoff is the sleep between reads that return no bytes.
	ReadBackoff time.Duration

	// OpenSettleDelay is the wait after opening the port before first use.
	OpenSettleDelay time.Duration

	// PortReadTimeout is how long a single port read blocks. It should be
	// well below PayloadIdleTimeout.
	PortReadTimeout time.Duration

	// Logger for operational messages. Nil uses slog.Default().
	Logger *slog.Logger

	// ProtocolLogger receives capture events. Nil disables capture.
	ProtocolLogger log.Logger

	// Open opens the port. Nil uses OpenSerial.
	Open OpenFunc
}

// DefaultConfig returns a Config with default timing and no port.
func DefaultConfig() Config {
	return Config{
		BaudRate:           DefaultBaudRate,
		SettleDelay:        DefaultSettleDelay,
		AckTimeout:         DefaultAckTimeout,
		PayloadIdleTimeout: DefaultPayloadIdleTimeout,
		ReadBackoff:        DefaultReadBackoff,
		OpenSettleDelay:    DefaultOpenSettleDelay,
		PortReadTimeout:    DefaultPortReadTimeout,
	}
}

// Validate checks the timing values. The port name is checked on Connect
// so a Device can be built before the port is known.
func (c Config) Validate() error {
	var errs []error
	if c.BaudRate <= 0 {
		errs = append(errs, fmt.Errorf("baud rate must be positive, got %d", c.BaudRate))
	}
	if c.AckTimeout <= 0 {
		errs = append(errs, errors.New("ack timeout must be positive"))
	}
	if c.PayloadIdleTimeout <= 0 {
		errs = append(errs, errors.New("payload idle timeout must be positive"))
	}
	if c.PayloadIdleTimeout >= c.AckTimeout {
		errs = append(errs, errors.New("payload idle timeout must be shorter than ack timeout"))
	}
	if c.SettleDelay < 0 || c.ReadBackoff < 0 || c.OpenSettleDelay < 0 || c.PortReadTimeout < 0 {
		errs = append(errs, errors.New("delays must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", meter.ErrConfig, errors.Join(errs...))
	}
	return nil
}

// Option adjusts a Config.
type Option func(*Config)

// WithConfig replaces the whole configuration, keeping the port name
// given to New when cfg.Port is empty.
func WithConfig(cfg Config) Option {
	return func(c *Config) {
		port := c.Port
		*c = cfg
		if c.Port == "" {
			c.Port = port
		}
	}
}

// WithBaudRate sets the baud rate.
func WithBaudRate(baud int) Option {
	return func(c *Config) { c.BaudRate = baud }
}

// WithTimeouts sets the ACK and payload-idle timeouts.
func WithTimeouts(ack, payloadIdle time.Duration) Option {
	return func(c *Config) {
		c.AckTimeout = ack
		c.PayloadIdleTimeout = payloadIdle
	}
}

// WithDelays sets the settle delay after writes, the backoff between empty
// reads and the settle delay after opening the port.
func WithDelays(settle, backoff, openSettle time.Duration) Option {
	return func(c *Config) {
		c.SettleDelay = settle
		c.ReadBackoff = backoff
		c.OpenSettleDelay = openSettle
	}
}

// WithPortReadTimeout sets how long one port read may block.
func WithPortReadTimeout(d time.Duration) Option {
	return func(c *Config) { c.PortReadTimeout = d }
}

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithProtocolLogger sets the capture logger.
func WithProtocolLogger(l log.Logger) Option {
	return func(c *Config) { c.ProtocolLogger = l }
}

// WithOpener replaces the port opener.
func WithOpener(open OpenFunc) Option {
	return func(c *Config) { c.Open = open }
}
