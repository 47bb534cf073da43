package meter

import "context"

// Device is the contract shared by the Fluke transport and the simulator.
//
// Connect and Disconnect are idempotent. IsConnected never blocks and never
// performs I/O. All other methods require a connected device and fail with
// ErrConnection otherwise. Methods that touch the transport are mutually
// exclusive on one instance: no two protocol exchanges ever interleave.
type Device interface {
	// Type returns the device type this instance was built for.
	Type() DeviceType

	// Connect opens the transport. Calling it on a connected device is a no-op.
	Connect(ctx context.Context) error

	// Disconnect releases the transport. Calling it on a closed device is a no-op.
	Disconnect(ctx context.Context) error

	// IsConnected reports the current connection state.
	IsConnected() bool

	// Identify queries model, software version and serial number.
	Identify(ctx context.Context) (DeviceInfo, error)

	// Measurement returns the reading currently on the display.
	Measurement(ctx context.Context) (Measurement, error)

	// Reset returns the instrument to its default state.
	Reset(ctx context.Context) error

	// SendCommand sends an arbitrary command and returns the normalized
	// response text without interpreting it.
	SendCommand(ctx context.Context, command string) (string, error)
}
