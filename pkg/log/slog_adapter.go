package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes capture events to an slog.Logger at Debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event as a single "protocol" record.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("conn_id", event.ConnectionID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	if event.DeviceType != "" {
		attrs = append(attrs, slog.String("device_type", event.DeviceType))
	}
	if event.Port != "" {
		attrs = append(attrs, slog.String("port", event.Port))
	}
	if event.SessionID != "" {
		attrs = append(attrs, slog.String("session_id", event.SessionID))
	}

	switch {
	case event.Frame != nil:
		attrs = append(attrs,
			slog.Int("frame_size", event.Frame.Size),
			slog.String("frame", Printable(event.Frame.Data)),
			slog.Bool("truncated", event.Frame.Truncated),
		)
	case event.Message != nil:
		attrs = append(attrs,
			slog.String("msg_type", event.Message.Type.String()),
			slog.String("command", event.Message.Command),
		)
		if event.Message.Ack != nil {
			attrs = append(attrs, slog.String("ack", event.Message.Ack.String()))
		}
		if event.Message.Payload != "" {
			attrs = append(attrs, slog.String("payload", event.Message.Payload))
		}
		if event.Message.AckOnly {
			attrs = append(attrs, slog.Bool("ack_only", true))
		}
		if event.Message.RoundTrip != nil {
			attrs = append(attrs, slog.Duration("round_trip", *event.Message.RoundTrip))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
		if event.Error.Kind != "" {
			attrs = append(attrs, slog.String("error_kind", event.Error.Kind))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "protocol", attrs...)
}

// Printable renders serial bytes with control characters escaped, so a
// frame like "0\r3.3,VDC\r" stays on one log line.
func Printable(data []byte) string {
	out := make([]byte, 0, len(data))
	for _, c := range data {
		switch {
		case c == '\r':
			out = append(out, '\\', 'r')
		case c == '\n':
			out = append(out, '\\', 'n')
		case c < 0x20 || c >= 0x7f:
			const hex = "0123456789abcdef"
			out = append(out, '\\', 'x', hex[c>>4], hex[c&0x0f])
		default:
			out = append(out, c)
		}
	}
	return string(out)
}

var _ Logger = (*SlogAdapter)(nil)
