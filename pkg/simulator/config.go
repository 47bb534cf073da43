package simulator

import (
	"log/slog"
	"time"

	"github.com/tsmultimeter/tsmeter-go/pkg/log"
	"github.com/tsmultimeter/tsmeter-go/pkg/meter"
)

// Identity reported by every simulated device.
var Identity = meter.DeviceInfo{
	Model:           "MOCK-MULTIMETER",
	SoftwareVersion: "V1.0.0-MOCK",
	SerialNumber:    "MOCK123456",
}

// Latency holds the simulated processing time of each operation.
type Latency struct {
	Connect    time.Duration
	Disconnect time.Duration
	Identify   time.Duration
	Measure    time.Duration
	Reset      time.Duration
	Command    time.Duration
}

// DefaultLatency approximates a meter on a serial link.
func DefaultLatency() Latency {
	return Latency{
		Connect:    100 * time.Millisecond,
		Disconnect: 50 * time.Millisecond,
		Identify:   50 * time.Millisecond,
		Measure:    20 * time.Millisecond,
		Reset:      200 * time.Millisecond,
		Command:    30 * time.Millisecond,
	}
}

// Config configures a simulated Device.
type Config struct {
	// Seed for the random source. Zero picks a random seed.
	Seed uint64

	// Latency of each operation. Zero values disable the delay.
	Latency Latency

	// Profile, if set, is used instead of drawing one at random.
	Profile *Profile

	// Clock returns the current time. Nil uses time.Now.
	Clock func() time.Time

	// Logger for operational messages. Nil uses slog.Default().
	Logger *slog.Logger

	// ProtocolLogger receives capture events. Nil disables capture.
	ProtocolLogger log.Logger
}

// DefaultConfig returns a Config with default latency and a random seed.
func DefaultConfig() Config {
	return Config{Latency: DefaultLatency()}
}

// Option adjusts a Config.
type Option func(*Config)

// WithSeed makes the random source deterministic.
func WithSeed(seed uint64) Option {
	return func(c *Config) { c.Seed = seed }
}

// WithLatency sets the simulated latency.
func WithLatency(l Latency) Option {
	return func(c *Config) { c.Latency = l }
}

// WithoutLatency removes every simulated delay.
func WithoutLatency() Option {
	return func(c *Config) { c.Latency = Latency{} }
}

// WithProfile pins the waveform instead of drawing one on connect and reset.
func WithProfile(p Profile) Option {
	return func(c *Config) { c.Profile = &p }
}

// WithClock replaces the time source.
func WithClock(clock func() time.Time) Option {
	return func(c *Config) { c.Clock = clock }
}

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithProtocolLogger sets the capture logger.
func WithProtocolLogger(l log.Logger) Option {
	return func(c *Config) { c.ProtocolLogger = l }
}
