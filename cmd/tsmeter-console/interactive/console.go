// Package interactive provides the interactive bench console for tsmeter.
package interactive

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"

	"github.com/tsmultimeter/tsmeter-go/pkg/fluke"
	"github.com/tsmultimeter/tsmeter-go/pkg/meter"
	"github.com/tsmultimeter/tsmeter-go/pkg/session"
)

// Sessions is the part of session.Manager the console drives.
type Sessions interface {
	Connect(ctx context.Context, deviceType meter.DeviceType, port string) (session.ConnectResult, error)
	Disconnect(ctx context.Context, id string) (string, error)
	Measurement(ctx context.Context, id string) (meter.Measurement, error)
	Status(id string) (session.Status, error)
	Reset(ctx context.Context, id string) (string, error)
	SendCommand(ctx context.Context, id, command string) (string, error)
	List() []session.Status
}

// PortLister enumerates serial ports.
type PortLister func() ([]fluke.PortInfo, error)

// DefaultWatchInterval is the polling interval of watch without an argument.
const DefaultWatchInterval = time.Second

// Console handles interactive mode for tsmeter-console.
type Console struct {
	sessions Sessions
	ports    PortLister
	trace    *Trace
	rl       *readline.Instance
	out      io.Writer

	// current is the session commands act on when no ID is given.
	current string

	// Background watch
	watchMu     sync.Mutex
	watchCancel context.CancelFunc
	watchDone   chan struct{}
	watchID     string
}

// NewReadline creates the terminal line editor. Create it before the
// session manager so operational logs can go through its Stderr.
func NewReadline() (*readline.Instance, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "tsmeter> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		AutoComplete:    completer(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return rl, nil
}

// New creates a console on the terminal rl. trace may be nil.
func New(rl *readline.Instance, sessions Sessions, ports PortLister, trace *Trace) *Console {
	c := newConsole(sessions, ports, rl.Stdout(), trace)
	c.rl = rl
	return c
}

// newConsole creates a console writing to out without a terminal.
func newConsole(sessions Sessions, ports PortLister, out io.Writer, trace *Trace) *Console {
	out = &syncWriter{w: out}
	if trace == nil {
		trace = NewTrace(out)
	}
	return &Console{
		sessions: sessions,
		ports:    ports,
		out:      out,
		trace:    trace,
	}
}

func completer() *readline.PrefixCompleter {
	types := make([]readline.PrefixCompleterInterface, 0, len(meter.DeviceTypes()))
	for _, t := range meter.DeviceTypes() {
		types = append(types, readline.PcItem(t.String()))
	}
	return readline.NewPrefixCompleter(
		readline.PcItem("connect", types...),
		readline.PcItem("use"),
		readline.PcItem("list"),
		readline.PcItem("ports"),
		readline.PcItem("status"),
		readline.PcItem("measure"),
		readline.PcItem("watch", readline.PcItem("stop")),
		readline.PcItem("reset"),
		readline.PcItem("raw", readline.PcItem("ID"), readline.PcItem("QM"), readline.PcItem("RI")),
		readline.PcItem("disconnect"),
		readline.PcItem("trace", readline.PcItem("on"), readline.PcItem("off")),
		readline.PcItem("help"),
		readline.PcItem("quit"),
	)
}

// Run starts the interactive command loop.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()
	defer c.stopWatch()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}

		if c.Execute(ctx, line) {
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}
	}
}

// Execute runs one command line. It reports whether the console should exit.
func (c *Console) Execute(ctx context.Context, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}

	parts := strings.Fields(input)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "?":
		c.printHelp()

	case "connect", "c":
		c.cmdConnect(ctx, args)

	case "use":
		c.cmdUse(args)

	case "list", "ls":
		c.cmdList()

	case "ports":
		c.cmdPorts()

	case "status", "s":
		c.cmdStatus(args)

	case "measure", "m":
		c.cmdMeasure(ctx, args)

	case "watch", "w":
		c.cmdWatch(ctx, args)

	case "reset":
		c.cmdReset(ctx, args)

	case "raw", "r":
		c.cmdRaw(ctx, args)

	case "disconnect", "d":
		c.cmdDisconnect(ctx, args)

	case "trace":
		c.cmdTrace(args)

	case "quit", "exit", "q":
		return true

	default:
		fmt.Fprintf(c.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, `
tsmeter Console Commands:
  Sessions:
    connect <type> [port]  - Connect a meter (Fluke289, Fluke287, Mock)
    use <id>               - Make a session the current one
    list                   - List connected sessions
    ports                  - List serial ports
    disconnect [id]        - Disconnect a session

  Readings:
    status [id]            - Show session details
    measure [id]           - Take one reading
    watch [interval]       - Print readings in the background (watch stop ends it)
    reset [id]             - Reset the instrument
    raw <command>          - Send a raw command to the current session

  Diagnostics:
    trace on|off           - Print serial traffic as it happens

  General:
    help                   - Show this help
    quit                   - Exit console

  Commands act on the current session unless an ID is given.`)
}

// refresh redraws the prompt after background output.
func (c *Console) refresh() {
	if c.rl != nil {
		c.rl.Refresh()
	}
}

// syncWriter serializes writes from the prompt and the watch goroutine.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
