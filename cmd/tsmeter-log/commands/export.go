package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/tsmultimeter/tsmeter-go/pkg/log"
)

// RunExport exports the events of path matching filter as jsonl or csv.
// An empty output writes to stdout.
func RunExport(path, format, output string, filter log.Filter) error {
	switch format {
	case "jsonl", "csv":
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if format == "csv" {
		return exportCSV(reader, w)
	}
	return exportJSONL(reader, w)
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
}

var csvHeader = []string{
	"timestamp", "connection_id", "session_id", "device_type", "port",
	"direction", "layer", "category", "type", "command", "ack", "payload", "round_trip_ms",
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return cw.Error()
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		var eventType, command, ack, payload, rt string
		switch {
		case event.Frame != nil:
			eventType = "frame"
			payload = log.Printable(event.Frame.Data)
		case event.Message != nil:
			eventType = event.Message.Type.String()
			command = event.Message.Command
			payload = event.Message.Payload
			if event.Message.Ack != nil {
				ack = event.Message.Ack.String()
			}
			if event.Message.RoundTrip != nil {
				rt = strconv.FormatFloat(float64(event.Message.RoundTrip.Microseconds())/1000, 'f', 3, 64)
			}
		case event.StateChange != nil:
			eventType = "state"
			payload = event.StateChange.OldState + "->" + event.StateChange.NewState
		case event.Error != nil:
			eventType = "error"
			payload = event.Error.Message
		default:
			eventType = "unknown"
		}

		row := []string{
			event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
			event.ConnectionID,
			event.SessionID,
			event.DeviceType,
			event.Port,
			event.Direction.String(),
			event.Layer.String(),
			event.Category.String(),
			eventType,
			command,
			ack,
			payload,
			rt,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
}
