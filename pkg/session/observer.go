package session

import (
	"time"

	"github.com/tsmultimeter/tsmeter-go/pkg/meter"
)

// Observer is notified of session activity. pkg/metrics provides the
// Prometheus implementation.
type Observer interface {
	// SessionOpened is called after a session is added to the table.
	SessionOpened(id string, deviceType meter.DeviceType)

	// SessionClosed is called after a session is removed from the table.
	SessionClosed(id string, deviceType meter.DeviceType)

	// OperationDone is called after every forwarded device call.
	OperationDone(op string, deviceType meter.DeviceType, elapsed time.Duration, err error)

	// MeasurementTaken is called with every successful reading.
	MeasurementTaken(id string, deviceType meter.DeviceType, m meter.Measurement)
}

type nopObserver struct{}

func (nopObserver) SessionOpened(string, meter.DeviceType)                         {}
func (nopObserver) SessionClosed(string, meter.DeviceType)                         {}
func (nopObserver) OperationDone(string, meter.DeviceType, time.Duration, error)   {}
func (nopObserver) MeasurementTaken(string, meter.DeviceType, meter.Measurement)   {}
