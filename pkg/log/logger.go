package log

import "sync"

// Logger receives protocol capture events.
// Pass nil or NoopLogger to disable capture.
type Logger interface {
	// Log records a protocol event. Implementations must be thread-safe
	// and should return quickly; the caller may hold a device lock.
	Log(event Event)
}

// NoopLogger discards all events. It is usable as a zero value.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// MemoryLogger keeps events in memory, mainly so tests can assert on
// captured traffic.
type MemoryLogger struct {
	mu     sync.Mutex
	events []Event
	limit  int
}

// NewMemoryLogger creates a MemoryLogger holding at most limit events.
// A limit of zero or less keeps everything.
func NewMemoryLogger(limit int) *MemoryLogger {
	return &MemoryLogger{limit: limit}
}

// Log appends the event, dropping the oldest one when full.
func (m *MemoryLogger) Log(event Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	if m.limit > 0 && len(m.events) > m.limit {
		m.events = m.events[len(m.events)-m.limit:]
	}
}

// Events returns a copy of the recorded events.
func (m *MemoryLogger) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

// Reset discards all recorded events.
func (m *MemoryLogger) Reset() {
	m.mu.Lock()
	m.events = nil
	m.mu.Unlock()
}

// Compile-time interface satisfaction checks.
var (
	_ Logger = NoopLogger{}
	_ Logger = (*MemoryLogger)(nil)
)
