package log

import (
	"time"

	"github.com/tsmultimeter/tsmeter-go/pkg/wire"
)

// Event is one protocol capture record.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// ConnectionID identifies one open transport (UUID). A reconnect gets a
	// new ID even for the same session.
	ConnectionID string `cbor:"2,keyasint"`

	// Direction indicates data flow relative to the host.
	Direction Direction `cbor:"3,keyasint"`

	// Layer where the event was captured.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"5,keyasint"`

	// DeviceType is the meter device type name ("Fluke289", "Mock").
	DeviceType string `cbor:"6,keyasint,omitempty"`

	// Port is the serial port name (empty for the simulator).
	Port string `cbor:"7,keyasint,omitempty"`

	// SessionID is the manager's identifier (populated once assigned).
	SessionID string `cbor:"8,keyasint,omitempty"`

	// Type-specific payload (one of these will be set).
	Frame       *FrameEvent       `cbor:"10,keyasint,omitempty"` // Transport layer
	Message     *MessageEvent     `cbor:"11,keyasint,omitempty"` // Wire layer (decoded)
	StateChange *StateChangeEvent `cbor:"12,keyasint,omitempty"` // Connection/session state
	Error       *ErrorEventData   `cbor:"13,keyasint,omitempty"` // Errors at any layer
}

// Direction indicates the direction of data flow.
type Direction uint8

const (
	// DirectionIn indicates data received from the instrument.
	DirectionIn Direction = 0
	// DirectionOut indicates data sent to the instrument.
	DirectionOut Direction = 1
)

// String returns the direction name.
func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "IN"
	case DirectionOut:
		return "OUT"
	default:
		return "UNKNOWN"
	}
}

// Layer indicates which layer captured the event.
type Layer uint8

const (
	// LayerTransport is the serial byte stream.
	LayerTransport Layer = 0
	// LayerWire is the decoded command/response layer.
	LayerWire Layer = 1
	// LayerSession is the session manager.
	LayerSession Layer = 2
)

// String returns the layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerWire:
		return "WIRE"
	case LayerSession:
		return "SESSION"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryMessage indicates a command or response.
	CategoryMessage Category = 0
	// CategoryState indicates a state change.
	CategoryState Category = 1
	// CategoryError indicates an error event.
	CategoryError Category = 2
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryMessage:
		return "MESSAGE"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// FrameEvent captures raw bytes at the transport layer.
type FrameEvent struct {
	// Size is the number of bytes written or read.
	Size int `cbor:"1,keyasint"`

	// Data is the raw bytes (may be truncated for large reads).
	Data []byte `cbor:"2,keyasint,omitempty"`

	// Truncated indicates if Data was truncated.
	Truncated bool `cbor:"3,keyasint,omitempty"`
}

// MessageEvent captures a command or its decoded response.
type MessageEvent struct {
	// Type distinguishes command from response.
	Type MessageType `cbor:"1,keyasint"`

	// Command is the command text without terminator.
	Command string `cbor:"2,keyasint"`

	// For responses: the acknowledgement digit, if one could be parsed.
	Ack *wire.Ack `cbor:"3,keyasint,omitempty"`

	// For responses: the normalized payload after the ack digit.
	Payload string `cbor:"4,keyasint,omitempty"`

	// For responses: whether the read ended on the payload-idle timeout.
	AckOnly bool `cbor:"5,keyasint,omitempty"`

	// RoundTrip is the time from write to complete response (response only).
	RoundTrip *time.Duration `cbor:"6,keyasint,omitempty"`
}

// MessageType distinguishes command from response.
type MessageType uint8

const (
	// MessageTypeCommand indicates a command sent to the instrument.
	MessageTypeCommand MessageType = 0
	// MessageTypeResponse indicates a response from the instrument.
	MessageTypeResponse MessageType = 1
)

// String returns the message type name.
func (m MessageType) String() string {
	switch m {
	case MessageTypeCommand:
		return "COMMAND"
	case MessageTypeResponse:
		return "RESPONSE"
	default:
		return "UNKNOWN"
	}
}

// StateChangeEvent captures connection and session lifecycle events.
type StateChangeEvent struct {
	// Entity being changed.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the previous state (may be empty).
	OldState string `cbor:"2,keyasint,omitempty"`

	// NewState is the new state.
	NewState string `cbor:"3,keyasint"`

	// Reason for the change (if available).
	Reason string `cbor:"4,keyasint,omitempty"`
}

// StateEntity indicates what entity changed state.
type StateEntity uint8

const (
	// StateEntityConnection indicates a transport open/close.
	StateEntityConnection StateEntity = 0
	// StateEntitySession indicates a manager session being added or removed.
	StateEntitySession StateEntity = 1
)

// String returns the state entity name.
func (s StateEntity) String() string {
	switch s {
	case StateEntityConnection:
		return "CONNECTION"
	case StateEntitySession:
		return "SESSION"
	default:
		return "UNKNOWN"
	}
}

// ErrorEventData captures errors at any layer.
type ErrorEventData struct {
	// Layer where the error occurred.
	Layer Layer `cbor:"1,keyasint"`

	// Message is the error message.
	Message string `cbor:"2,keyasint"`

	// Kind is the error class ("timeout", "parse", ...).
	Kind string `cbor:"3,keyasint,omitempty"`

	// Context describes what operation was being performed.
	Context string `cbor:"4,keyasint,omitempty"`
}
