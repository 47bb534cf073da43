// Command tsmeter-server exposes connected multimeters over a JSON HTTP API.
//
// It offers:
//   - REST API to connect, read, reset and disconnect instruments
//   - Serial port enumeration
//   - Prometheus metrics
//   - Optional CBOR protocol capture and mDNS advertisement
//
// Usage:
//
//	tsmeter-server [flags]
//
// Flags:
//
//	-config string        YAML configuration file
//	-env-file string      .env file with TSMETER_* overrides (default ".env")
//	-listen string        HTTP listen address (default "127.0.0.1:3030")
//	-log-level string     Log level: debug, info, warn, error (default "info")
//	-log-format string    Log format: text, json (default "text")
//	-protocol-log string  Write a protocol capture (.tlog) to this path
//	-sim-seed uint        Seed for simulated devices (0 = random)
//	-advertise            Announce the API over mDNS
//
// Examples:
//
//	# Serve on the default address
//	tsmeter-server
//
//	# Capture every serial exchange for later inspection with tsmeter-log
//	tsmeter-server -protocol-log /tmp/bench.tlog -log-level debug
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/tsmultimeter/tsmeter-go/internal/config"
	"github.com/tsmultimeter/tsmeter-go/pkg/fluke"
	"github.com/tsmultimeter/tsmeter-go/pkg/log"
	"github.com/tsmultimeter/tsmeter-go/pkg/metrics"
	"github.com/tsmultimeter/tsmeter-go/pkg/session"
	"github.com/tsmultimeter/tsmeter-go/pkg/simulator"
)

// Version information - set at build time via ldflags
var (
	Version   = "0.1.0"
	BuildDate = "dev"
	GitCommit = "unknown"
)

var (
	configFile  = flag.String("config", "", "YAML configuration file")
	envFile     = flag.String("env-file", ".env", ".env file with TSMETER_* overrides")
	listen      = flag.String("listen", "", "HTTP listen address (overrides config)")
	logLevel    = flag.String("log-level", "", "Log level: debug, info, warn, error")
	logFormat   = flag.String("log-format", "", "Log format: text, json")
	protocolLog = flag.String("protocol-log", "", "Write a protocol capture (.tlog) to this path")
	simSeed     = flag.Uint64("sim-seed", 0, "Seed for simulated devices (0 = random)")
	advertise   = flag.Bool("advertise", false, "Announce the API over mDNS")
	showVersion = flag.Bool("version", false, "Show version information")
)

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	if *showVersion {
		fmt.Printf("tsmeter-server %s (built %s, commit %s)\n", Version, BuildDate, GitCommit)
		return 0
	}

	cfg, err := config.Load(*configFile, *envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger := setupLogging(os.Stderr, cfg.Log)
	slog.SetDefault(logger)

	plog, closeCapture, err := setupCapture(cfg.Log.ProtocolLog, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer closeCapture()

	var m *metrics.Metrics
	var observer session.Observer
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics.Runtime)
		observer = m
	}

	mgr := session.NewManager(session.Options{
		Factory: session.DeviceFactory{
			Fluke: append(cfg.FlukeOptions(),
				fluke.WithLogger(logger),
				fluke.WithProtocolLogger(plog)),
			Simulator: append(cfg.SimulatorOptions(),
				simulator.WithLogger(logger),
				simulator.WithProtocolLogger(plog)),
		}.New,
		Logger:         logger,
		ProtocolLogger: plog,
		Observer:       observer,
	})

	srv := NewServer(ServerConfig{
		Listen:      cfg.Server.Listen,
		CORSOrigin:  cfg.Server.CORSOrigin,
		MetricsPath: cfg.Metrics.Path,
		Version:     Version,
	}, mgr, m, fluke.ListPortDetails, logger)

	ln, err := net.Listen("tcp", cfg.Server.Listen)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: listen on %s: %v\n", cfg.Server.Listen, err)
		return 1
	}

	if cfg.Server.Advertise {
		adv, err := Advertise(cfg.Server.InstanceName, ln.Addr(), Version)
		if err != nil {
			logger.Warn("mDNS advertisement failed", "error", err)
		} else {
			defer adv.Shutdown()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	logger.Info("Starting tsmeter server", "addr", ln.Addr().String(), "version", Version)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			return 1
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP shutdown incomplete", "error", err)
	}
	if err := mgr.Close(shutdownCtx); err != nil {
		logger.Warn("Some devices did not disconnect cleanly", "error", err)
	}
	return 0
}

// applyFlags overrides configuration with flags given on the command line.
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "listen":
			cfg.Server.Listen = *listen
		case "log-level":
			cfg.Log.Level = *logLevel
		case "log-format":
			cfg.Log.Format = *logFormat
		case "protocol-log":
			cfg.Log.ProtocolLog = *protocolLog
		case "sim-seed":
			cfg.Simulator.Seed = *simSeed
		case "advertise":
			cfg.Server.Advertise = *advertise
		}
	})
}

func setupLogging(w io.Writer, cfg config.LogConfig) *slog.Logger {
	level, _ := config.ParseLevel(cfg.Level)
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// setupCapture opens the protocol capture file. At debug level every event
// is mirrored to the operational log as well.
func setupCapture(path string, logger *slog.Logger) (log.Logger, func(), error) {
	var loggers []log.Logger
	closeFn := func() {}

	if path != "" {
		fl, err := log.NewFileLogger(path)
		if err != nil {
			return nil, closeFn, fmt.Errorf("open protocol log: %w", err)
		}
		logger.Info("Protocol capture enabled", "path", fl.Path())
		loggers = append(loggers, fl)
		closeFn = func() {
			if n := fl.Dropped(); n > 0 {
				logger.Warn("Protocol capture dropped events", "count", n)
			}
			fl.Close()
		}
	}
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		loggers = append(loggers, log.NewSlogAdapter(logger))
	}

	switch len(loggers) {
	case 0:
		return nil, closeFn, nil
	case 1:
		return loggers[0], closeFn, nil
	}
	return log.NewMultiLogger(loggers...), closeFn, nil
}
