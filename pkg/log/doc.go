// Package log provides protocol capture for tsmeter.
//
// This package defines the Logger interface and Event types for recording
// every exchange with an instrument: the raw bytes written to and read from
// the serial port, the decoded acknowledgement and payload, and session
// lifecycle changes. It is separate from operational logging (slog); a
// capture is a complete machine-readable trace for debugging a meter that
// misbehaves, not a measurement history.
//
// # Basic Usage
//
//	// For development: log to console via slog
//	opts = append(opts, fluke.WithProtocolLogger(log.NewSlogAdapter(slog.Default())))
//
//	// For bench sessions: write a binary capture
//	fl, _ := log.NewFileLogger("bench.tlog")
//
//	// Both: use MultiLogger
//	logger := log.NewMultiLogger(log.NewSlogAdapter(slog.Default()), fl)
//
// # Event Types
//
// Events are captured at three layers:
//   - Transport: raw bytes on the serial port (FrameEvent)
//   - Wire: command and decoded response (MessageEvent)
//   - Session: connect/identify/disconnect transitions (StateChangeEvent)
//
// Errors at any layer use ErrorEventData.
//
// # File Format
//
// Capture files are a stream of CBOR-encoded events with a .tlog extension.
// The tsmeter-log tool views, filters, exports and summarizes them.
package log
