// Package fluke drives Fluke 287 and 289 multimeters over a serial port.
//
// A [Device] owns one serial connection and serializes every command
// exchange on it. Each exchange writes the command with a trailing carriage
// return, waits a short settle delay, then accumulates the reply until two
// carriage returns have arrived (ack line plus payload line).
//
// # Timeouts
//
// Two independent timeouts, both measured from the last byte received:
//   - AckTimeout applies before any carriage return was seen. Expiry means
//     the meter is not answering and the exchange fails with meter.ErrTimeout.
//   - PayloadIdleTimeout applies after exactly one carriage return. Expiry
//     means no payload is coming and the ack-only reply is returned.
//
// Both are configurable through [Config] and functional options.
//
// # Connection
//
// Ports are opened at 115200 baud 8N1 without flow control. DTR and RTS are
// asserted and the buffers cleared on a best-effort basis; failures are
// logged and do not abort the connect.
package fluke
