// Package session multiplexes connected instruments behind stable
// identifiers.
//
// A [Manager] owns every connected meter.Device. Connect builds the device
// through the [Factory], connects and identifies it, and only then assigns
// an identifier of the form device_NNNN from a counter that starts at 1 and
// is never reused. Every other operation resolves the identifier and
// forwards the call.
//
// # Locking
//
// The session table has one mutex, held only to look up, insert or remove
// an entry and never across a device exchange. Each entry has its own mutex
// held for one forwarded call, so two sessions work in parallel while calls
// on one session run one at a time.
package session
