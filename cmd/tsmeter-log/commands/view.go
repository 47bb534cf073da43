// Package commands implements the tsmeter-log CLI commands.
package commands

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/tsmultimeter/tsmeter-go/pkg/log"
)

// ViewOptions controls the view command.
type ViewOptions struct {
	Filter log.Filter

	// Hex prints frame bytes as hex instead of escaped text.
	Hex bool
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event, hexFrames bool) {
	// Header line: timestamp [conn:id] [session] DIRECTION LAYER Type
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	connID := shortenConnID(event.ConnectionID)

	var typeLabel string
	switch {
	case event.Frame != nil:
		typeLabel = "Frame"
	case event.Message != nil:
		typeLabel = event.Message.Type.String()
	case event.StateChange != nil:
		typeLabel = "State"
	case event.Error != nil:
		typeLabel = "Error"
	default:
		typeLabel = "Unknown"
	}

	fmt.Fprintf(w, "%s [conn:%s]", ts, connID)
	if event.SessionID != "" {
		fmt.Fprintf(w, " [%s]", event.SessionID)
	}
	fmt.Fprintf(w, " %-3s %s %s\n", event.Direction.String(), event.Layer.String(), typeLabel)

	if event.DeviceType != "" || event.Port != "" {
		fmt.Fprintf(w, "  Device: %s", event.DeviceType)
		if event.Port != "" {
			fmt.Fprintf(w, " on %s", event.Port)
		}
		fmt.Fprintln(w)
	}

	switch {
	case event.Frame != nil:
		formatFrameDetails(w, event.Frame, hexFrames)
	case event.Message != nil:
		formatMessageDetails(w, event.Message)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenConnID returns the first 8 characters of the connection ID.
func shortenConnID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatFrameDetails(w io.Writer, frame *log.FrameEvent, hexFrames bool) {
	fmt.Fprintf(w, "  Size: %d bytes\n", frame.Size)
	if len(frame.Data) == 0 {
		return
	}
	if hexFrames {
		fmt.Fprintf(w, "  Data: %s", hex.EncodeToString(frame.Data))
	} else {
		fmt.Fprintf(w, "  Data: %s", log.Printable(frame.Data))
	}
	if frame.Truncated {
		fmt.Fprintf(w, " (truncated)")
	}
	fmt.Fprintln(w)
}

func formatMessageDetails(w io.Writer, msg *log.MessageEvent) {
	fmt.Fprintf(w, "  Command: %s\n", msg.Command)
	if msg.Type != log.MessageTypeResponse {
		return
	}
	if msg.Ack != nil {
		fmt.Fprintf(w, "  Ack: %s (%d)\n", msg.Ack.String(), *msg.Ack)
	}
	if msg.Payload != "" {
		fmt.Fprintf(w, "  Payload: %s\n", msg.Payload)
	}
	if msg.AckOnly {
		fmt.Fprintln(w, "  Ack only (payload idle timeout)")
	}
	if msg.RoundTrip != nil {
		fmt.Fprintf(w, "  Duration: %s\n", formatDuration(*msg.RoundTrip))
	}
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s\n", sc.Entity.String())
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer.String())
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Kind != "" {
		fmt.Fprintf(w, "  Kind: %s\n", err.Kind)
	}
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// ParseLayerFlag parses a layer name (case-insensitive).
func ParseLayerFlag(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "transport":
		return log.LayerTransport, nil
	case "wire":
		return log.LayerWire, nil
	case "session":
		return log.LayerSession, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be transport, wire, or session)", s)
	}
}

// ParseDirectionFlag parses a direction name (case-insensitive).
func ParseDirectionFlag(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in or out)", s)
	}
}

// ParseCategoryFlag parses a category name (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "message":
		return log.CategoryMessage, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be message, state, or error)", s)
	}
}

// RunView prints every matching event in path to output.
func RunView(path string, opts ViewOptions, output io.Writer) error {
	reader, err := log.NewFilteredReader(path, opts.Filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(output, event, opts.Hex)
	}
}
