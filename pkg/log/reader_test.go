package log

import (
	"testing"
	"time"
)

func TestFilteredReader(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	events := []Event{
		{Timestamp: base, ConnectionID: "c1", SessionID: "device_0001", Direction: DirectionOut, Layer: LayerTransport,
			Frame: &FrameEvent{Size: 3, Data: []byte("ID\r")}},
		{Timestamp: base.Add(time.Second), ConnectionID: "c1", SessionID: "device_0001", Direction: DirectionIn, Layer: LayerWire,
			Message: &MessageEvent{Type: MessageTypeResponse, Command: "ID"}},
		{Timestamp: base.Add(2 * time.Second), ConnectionID: "c2", SessionID: "device_0002", Direction: DirectionIn, Layer: LayerWire,
			Message: &MessageEvent{Type: MessageTypeResponse, Command: "QM"}},
		{Timestamp: base.Add(3 * time.Second), ConnectionID: "c2", SessionID: "device_0002", Layer: LayerSession, Category: CategoryState,
			StateChange: &StateChangeEvent{Entity: StateEntitySession, NewState: "removed"}},
	}
	path := createTestLogFile(t, events)

	wireLayer := LayerWire
	state := CategoryState
	out := DirectionOut
	start := base.Add(time.Second)
	end := base.Add(3 * time.Second)

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"All", Filter{}, 4},
		{"Connection", Filter{ConnectionID: "c1"}, 2},
		{"Session", Filter{SessionID: "device_0002"}, 2},
		{"Layer", Filter{Layer: &wireLayer}, 2},
		{"Category", Filter{Category: &state}, 1},
		{"Direction", Filter{Direction: &out}, 1},
		{"Command", Filter{Command: "QM"}, 1},
		{"TimeWindow", Filter{TimeStart: &start, TimeEnd: &end}, 2},
		{"NoMatch", Filter{Port: "/dev/none"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadAll(path, tt.filter)
			if err != nil {
				t.Fatalf("ReadAll failed: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d events, want %d", len(got), tt.want)
			}
		})
	}
}

func TestReaderMissingFile(t *testing.T) {
	if _, err := NewReader("/nonexistent/capture.tlog"); err == nil {
		t.Error("expected error for missing file")
	}
}
