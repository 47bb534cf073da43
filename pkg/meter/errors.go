package meter

import (
	"context"
	"errors"
)

// Error classes. Every failure returned by a Device or the session manager
// wraps exactly one of these.
var (
	// ErrConnection means the device is not connected or the transport is unavailable.
	ErrConnection = errors.New("connection error")

	// ErrTimeout means the instrument did not answer within the ACK window.
	ErrTimeout = errors.New("timeout")

	// ErrParse means the response was malformed or contained an unknown token.
	ErrParse = errors.New("parse error")

	// ErrDevice means the instrument reported an execution or no-data error.
	ErrDevice = errors.New("device error")

	// ErrInvalidCommand means the instrument rejected the command syntax.
	ErrInvalidCommand = errors.New("invalid command")

	// ErrConfig means required setup, such as a port name, is missing.
	ErrConfig = errors.New("configuration error")

	// ErrNotFound means no session exists under the given identifier.
	ErrNotFound = errors.New("not found")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrConnection, "connection"},
	{ErrTimeout, "timeout"},
	{ErrParse, "parse"},
	{ErrDevice, "device"},
	{ErrInvalidCommand, "invalid_command"},
	{ErrConfig, "config"},
	{ErrNotFound, "not_found"},
}

// Kind returns a short, stable name for the error class of err.
// It returns "" for nil and "internal" for errors outside the taxonomy.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "canceled"
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "internal"
}
