// Command tsmeter-log views and analyzes protocol capture files.
//
// Capture files are written by tsmeter-server and tsmeter-console when run
// with the -protocol-log flag.
//
// Usage:
//
//	tsmeter-log <command> [flags] <file.tlog>
//
// Commands:
//
//	view     View capture file in human-readable format
//	export   Export capture file to JSONL or CSV
//	filter   Filter capture file and write to new file
//	stats    Show statistics about the capture file
//
// Examples:
//
//	# View all events
//	tsmeter-log view bench.tlog
//
//	# View only what went over the serial line, as hex
//	tsmeter-log view -layer transport -hex bench.tlog
//
//	# Export the QM responses of one session to CSV
//	tsmeter-log export -format csv -session device_0001 -command QM bench.tlog
//
//	# Keep only one session's events
//	tsmeter-log filter -session device_0002 -o device_0002.tlog bench.tlog
//
//	# Show statistics
//	tsmeter-log stats bench.tlog
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tsmultimeter/tsmeter-go/cmd/tsmeter-log/commands"
)

const usage = `tsmeter-log - tsmeter Protocol Capture Analyzer

Usage:
  tsmeter-log <command> [flags] <file.tlog>

Commands:
  view     View capture file in human-readable format
  export   Export capture file to JSONL or CSV
  filter   Filter capture file and write to new file
  stats    Show statistics about the capture file

Use "tsmeter-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "view":
		err = runView(args)
	case "export":
		err = runExport(args)
	case "filter":
		err = runFilter(args)
	case "stats":
		err = runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newFlagSet creates a flag set with the shared usage header.
func newFlagSet(name, summary string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "tsmeter-log %s - %s\n\nUsage:\n  tsmeter-log %s [flags] <file.tlog>\n\nFlags:\n", name, summary, name)
		fs.PrintDefaults()
	}
	return fs
}

// filterFlags registers the event selection flags on fs.
func filterFlags(fs *flag.FlagSet) *commands.FilterOptions {
	opts := &commands.FilterOptions{}
	fs.StringVar(&opts.ConnID, "conn-id", "", "Filter by connection ID")
	fs.StringVar(&opts.SessionID, "session", "", "Filter by session ID (device_0001)")
	fs.StringVar(&opts.DeviceType, "device-type", "", "Filter by device type (Fluke289, Fluke287, Mock)")
	fs.StringVar(&opts.Port, "port", "", "Filter by serial port")
	fs.StringVar(&opts.Command, "command", "", "Filter messages by command (ID, QM, RI)")
	fs.StringVar(&opts.TimeStart, "time-start", "", "Filter by start time (RFC3339)")
	fs.StringVar(&opts.TimeEnd, "time-end", "", "Filter by end time (RFC3339)")
	fs.StringVar(&opts.Layer, "layer", "", "Filter by layer (transport, wire, session)")
	fs.StringVar(&opts.Direction, "direction", "", "Filter by direction (in, out)")
	fs.StringVar(&opts.Category, "category", "", "Filter by category (message, state, error)")
	return opts
}

// inputPath returns the single positional argument.
func inputPath(fs *flag.FlagSet) (string, error) {
	if fs.NArg() < 1 {
		fs.Usage()
		return "", fmt.Errorf("log file path required")
	}
	return fs.Arg(0), nil
}

func runView(args []string) error {
	fs := newFlagSet("view", "View capture file in human-readable format")
	filterOpts := filterFlags(fs)
	hexFrames := fs.Bool("hex", false, "Print frame bytes as hex")
	fs.Parse(args)

	path, err := inputPath(fs)
	if err != nil {
		return err
	}
	filter, err := filterOpts.Build()
	if err != nil {
		return err
	}
	return commands.RunView(path, commands.ViewOptions{Filter: filter, Hex: *hexFrames}, os.Stdout)
}

func runExport(args []string) error {
	fs := newFlagSet("export", "Export capture file to JSONL or CSV")
	filterOpts := filterFlags(fs)
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")
	fs.Parse(args)

	path, err := inputPath(fs)
	if err != nil {
		return err
	}
	filter, err := filterOpts.Build()
	if err != nil {
		return err
	}
	return commands.RunExport(path, *format, *output, filter)
}

func runFilter(args []string) error {
	fs := newFlagSet("filter", "Filter capture file and write to new file")
	filterOpts := filterFlags(fs)
	output := fs.String("o", "", "Output file (required)")
	fs.Parse(args)

	path, err := inputPath(fs)
	if err != nil {
		return err
	}
	if *output == "" {
		fs.Usage()
		return fmt.Errorf("output file (-o) required")
	}
	filter, err := filterOpts.Build()
	if err != nil {
		return err
	}

	n, err := commands.RunFilter(path, *output, filter)
	if err != nil {
		return err
	}
	fmt.Printf("Filtered %d events to %s\n", n, *output)
	return nil
}

func runStats(args []string) error {
	fs := newFlagSet("stats", "Show statistics about the capture file")
	fs.Parse(args)

	path, err := inputPath(fs)
	if err != nil {
		return err
	}
	return commands.RunStats(path, os.Stdout)
}
