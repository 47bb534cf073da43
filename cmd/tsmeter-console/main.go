// Command tsmeter-console is an interactive bench console for multimeters.
//
// It drives the same session manager as tsmeter-server, without HTTP:
// connect a meter, take readings, watch a live value, send raw commands
// and print the serial traffic as it happens.
//
// Usage:
//
//	tsmeter-console [flags]
//
// Flags:
//
//	-config string        YAML configuration file
//	-env-file string      .env file with TSMETER_* overrides (default ".env")
//	-log-level string     Log level: debug, info, warn, error (default "warn")
//	-protocol-log string  Write a protocol capture (.tlog) to this path
//	-sim-seed uint        Seed for simulated devices (0 = random)
//	-connect string       Connect on startup, as type[:port] (e.g. Mock, Fluke289:/dev/ttyUSB0)
//
// Examples:
//
//	# Try the console against the simulator
//	tsmeter-console -connect Mock
//
//	# Bench session on a real meter with a capture for tsmeter-log
//	tsmeter-console -connect Fluke289:/dev/ttyUSB0 -protocol-log bench.tlog
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/tsmultimeter/tsmeter-go/cmd/tsmeter-console/interactive"
	"github.com/tsmultimeter/tsmeter-go/internal/config"
	"github.com/tsmultimeter/tsmeter-go/pkg/fluke"
	"github.com/tsmultimeter/tsmeter-go/pkg/log"
	"github.com/tsmultimeter/tsmeter-go/pkg/session"
	"github.com/tsmultimeter/tsmeter-go/pkg/simulator"
)

var (
	configFile  = flag.String("config", "", "YAML configuration file")
	envFile     = flag.String("env-file", ".env", ".env file with TSMETER_* overrides")
	logLevel    = flag.String("log-level", "warn", "Log level: debug, info, warn, error")
	protocolLog = flag.String("protocol-log", "", "Write a protocol capture (.tlog) to this path")
	simSeed     = flag.Uint64("sim-seed", 0, "Seed for simulated devices (0 = random)")
	connectArg  = flag.String("connect", "", "Connect on startup, as type[:port]")
)

func main() {
	os.Exit(run())
}

func run() int {
	flag.Parse()

	cfg, err := config.Load(*configFile, *envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "protocol-log":
			cfg.Log.ProtocolLog = *protocolLog
		case "sim-seed":
			cfg.Simulator.Seed = *simSeed
		}
	})

	rl, err := interactive.NewReadline()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// The console prints its own output; logs default to warnings only.
	logger := newLogger(rl.Stderr(), *logLevel)
	slog.SetDefault(logger)

	trace := interactive.NewTrace(rl.Stdout())
	var plog log.Logger = trace
	if cfg.Log.ProtocolLog != "" {
		fl, err := log.NewFileLogger(cfg.Log.ProtocolLog)
		if err != nil {
			rl.Close()
			fmt.Fprintf(os.Stderr, "Error: open protocol log: %v\n", err)
			return 1
		}
		defer fl.Close()
		plog = log.NewMultiLogger(fl, trace)
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
	})

	console := interactive.New(rl, mgr, fluke.ListPortDetails, trace)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer cancel()

	if *connectArg != "" {
		typ, port, _ := strings.Cut(*connectArg, ":")
		console.Execute(ctx, "connect "+typ+" "+port)
	}

	console.Run(ctx, cancel)

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer closeCancel()
	if err := mgr.Close(closeCtx); err != nil {
		logger.Warn("Some devices did not disconnect cleanly", "error", err)
	}
	return 0
}

func newLogger(w io.Writer, level string) *slog.Logger {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		lvl = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}
