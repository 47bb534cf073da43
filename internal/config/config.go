// Package config loads the tsmeter runtime configuration.
//
// Values come from three layers, later layers winning: built-in defaults,
// an optional YAML file, and TSMETER_* environment variables (optionally
// seeded from a .env file). Command-line flags are applied by the caller
// on top of the result.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tsmultimeter/tsmeter-go/pkg/fluke"
	"github.com/tsmultimeter/tsmeter-go/pkg/meter"
	"github.com/tsmultimeter/tsmeter-go/pkg/simulator"
)

// Config is the complete runtime configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Serial    SerialConfig    `yaml:"serial"`
	Simulator SimulatorConfig `yaml:"simulator"`
	Log       LogConfig       `yaml:"log"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// ServerConfig configures the HTTP boundary.
type ServerConfig struct {
	Listen          string        `yaml:"listen"`
	CORSOrigin      string        `yaml:"cors_origin"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// Advertise announces the API over mDNS as _tsmeter._tcp.
	Advertise    bool   `yaml:"advertise"`
	InstanceName string `yaml:"instance_name"`
}

// SerialConfig holds the Fluke transport timing.
type SerialConfig struct {
	BaudRate           int           `yaml:"baud_rate"`
	SettleDelay        time.Duration `yaml:"settle_delay"`
	AckTimeout         time.Duration `yaml:"ack_timeout"`
	PayloadIdleTimeout time.Duration `yaml:"payload_idle_timeout"`
	ReadBackoff        time.Duration `yaml:"read_backoff"`
	OpenSettleDelay    time.Duration `yaml:"open_settle_delay"`
	PortReadTimeout    time.Duration `yaml:"port_read_timeout"`
}

// SimulatorConfig configures Mock devices.
type SimulatorConfig struct {
	// Seed for every simulated device. Zero draws a random seed per device.
	Seed uint64 `yaml:"seed"`

	// Latency enables the simulated operation delays.
	Latency bool `yaml:"latency"`
}

// LogConfig configures operational and protocol logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`

	// ProtocolLog is a .tlog capture path. Empty disables capture.
	ProtocolLog string `yaml:"protocol_log"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
	Runtime bool   `yaml:"runtime"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Listen:          "127.0.0.1:3030",
			CORSOrigin:      "*",
			ShutdownTimeout: 5 * time.Second,
			InstanceName:    "tsmeter",
		},
		Serial: SerialConfig{
			BaudRate:           fluke.DefaultBaudRate,
			SettleDelay:        fluke.DefaultSettleDelay,
			AckTimeout:         fluke.DefaultAckTimeout,
			PayloadIdleTimeout: fluke.DefaultPayloadIdleTimeout,
			ReadBackoff:        fluke.DefaultReadBackoff,
			OpenSettleDelay:    fluke.DefaultOpenSettleDelay,
			PortReadTimeout:    fluke.DefaultPortReadTimeout,
		},
		Simulator: SimulatorConfig{
			Latency: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// path is non-empty), the .env file at envFile (if it exists) and the
// process environment.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", meter.ErrConfig, path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", meter.ErrConfig, path, err)
		}
	}

	if envFile != "" {
		// godotenv never overrides variables already set in the process.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: load %s: %v", meter.ErrConfig, envFile, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Environment variable names.
const (
	EnvListen             = "TSMETER_LISTEN"
	EnvBaud               = "TSMETER_BAUD"
	EnvAckTimeout         = "TSMETER_ACK_TIMEOUT"
	EnvPayloadIdleTimeout = "TSMETER_PAYLOAD_IDLE_TIMEOUT"
	EnvLogLevel           = "TSMETER_LOG_LEVEL"
	EnvLogFormat          = "TSMETER_LOG_FORMAT"
	EnvProtocolLog        = "TSMETER_PROTOCOL_LOG"
	EnvSimSeed            = "TSMETER_SIM_SEED"
	EnvMetrics            = "TSMETER_METRICS"
	EnvAdvertise          = "TSMETER_ADVERTISE"
)

// ApplyEnv overrides fields from environment variables read through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) {
		if v, ok := lookup(name); ok && v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %v", name, err))
				return
			}
			*dst = d
		}
	}
	boolean := func(name string, dst *bool) {
		if v, ok := lookup(name); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %v", name, err))
				return
			}
			*dst = b
		}
	}

	str(EnvListen, &c.Server.Listen)
	str(EnvLogLevel, &c.Log.Level)
	str(EnvLogFormat, &c.Log.Format)
	str(EnvProtocolLog, &c.Log.ProtocolLog)
	dur(EnvAckTimeout, &c.Serial.AckTimeout)
	dur(EnvPayloadIdleTimeout, &c.Serial.PayloadIdleTimeout)
	boolean(EnvMetrics, &c.Metrics.Enabled)
	boolean(EnvAdvertise, &c.Server.Advertise)

	if v, ok := lookup(EnvBaud); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %v", EnvBaud, err))
		} else {
			c.Serial.BaudRate = n
		}
	}
	if v, ok := lookup(EnvSimSeed); ok && v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %v", EnvSimSeed, err))
		} else {
			c.Simulator.Seed = n
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", meter.ErrConfig, errors.Join(errs...))
	}
	return nil
}

// Validate checks the configuration for values no component can run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Listen == "" {
		errs = append(errs, errors.New("server.listen is required"))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path))
	}
	if err := c.FlukeConfig().Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", meter.ErrConfig, errors.Join(errs...))
	}
	return nil
}

// FlukeConfig returns the serial settings as a fluke.Config without a port.
func (c *Config) FlukeConfig() fluke.Config {
	fc := fluke.DefaultConfig()
	fc.BaudRate = c.Serial.BaudRate
	fc.SettleDelay = c.Serial.SettleDelay
	fc.AckTimeout = c.Serial.AckTimeout
	fc.PayloadIdleTimeout = c.Serial.PayloadIdleTimeout
	fc.ReadBackoff = c.Serial.ReadBackoff
	fc.OpenSettleDelay = c.Serial.OpenSettleDelay
	fc.PortReadTimeout = c.Serial.PortReadTimeout
	return fc
}

// FlukeOptions returns the options every Fluke device is built with.
func (c *Config) FlukeOptions() []fluke.Option {
	return []fluke.Option{fluke.WithConfig(c.FlukeConfig())}
}

// SimulatorOptions returns the options every simulated device is built with.
func (c *Config) SimulatorOptions() []simulator.Option {
	opts := []simulator.Option{simulator.WithSeed(c.Simulator.Seed)}
	if !c.Simulator.Latency {
		opts = append(opts, simulator.WithoutLatency())
	}
	return opts
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}
