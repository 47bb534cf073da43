package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/tsmultimeter/tsmeter-go/pkg/wire"
)

func logOne(t *testing.T, event Event) map[string]any {
	t.Helper()
	var buf bytes.Buffer
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	NewSlogAdapter(slog.New(handler)).Log(event)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output %q: %v", buf.String(), err)
	}
	return entry
}

func TestSlogAdapterLogsFrameEvent(t *testing.T) {
	entry := logOne(t, Event{
		Timestamp:    time.Now(),
		ConnectionID: "conn-123",
		Direction:    DirectionIn,
		Layer:        LayerTransport,
		Port:         "COM3",
		Frame:        &FrameEvent{Size: 4, Data: []byte("0\r\x01\r")},
	})

	if entry["msg"] != "protocol" {
		t.Errorf("msg: got %v, want %q", entry["msg"], "protocol")
	}
	if entry["conn_id"] != "conn-123" {
		t.Errorf("conn_id: got %v", entry["conn_id"])
	}
	if entry["port"] != "COM3" {
		t.Errorf("port: got %v", entry["port"])
	}
	if entry["frame"] != `0\r\x01\r` {
		t.Errorf("frame: got %v", entry["frame"])
	}
	if entry["frame_size"] != float64(4) {
		t.Errorf("frame_size: got %v", entry["frame_size"])
	}
}

func TestSlogAdapterLogsMessageEvent(t *testing.T) {
	ack := wire.AckSyntaxError
	entry := logOne(t, Event{
		Direction: DirectionIn,
		Layer:     LayerWire,
		SessionID: "device_0003",
		Message:   &MessageEvent{Type: MessageTypeResponse, Command: "XX", Ack: &ack},
	})

	if entry["msg_type"] != "RESPONSE" {
		t.Errorf("msg_type: got %v", entry["msg_type"])
	}
	if entry["ack"] != "SYNTAX_ERROR" {
		t.Errorf("ack: got %v", entry["ack"])
	}
	if entry["session_id"] != "device_0003" {
		t.Errorf("session_id: got %v", entry["session_id"])
	}
}

func TestSlogAdapterLogsErrorEvent(t *testing.T) {
	entry := logOne(t, Event{
		Category: CategoryError,
		Error:    &ErrorEventData{Layer: LayerTransport, Message: "timeout", Kind: "timeout", Context: "QM"},
	})
	if entry["error_kind"] != "timeout" || entry["error_context"] != "QM" {
		t.Errorf("error attrs: got %v", entry)
	}
}

func TestPrintable(t *testing.T) {
	if got := Printable([]byte("0\r\n\x7f")); got != `0\r\n\x7f` {
		t.Errorf("Printable = %q", got)
	}
}
