package session

import (
	"fmt"

	"github.com/tsmultimeter/tsmeter-go/pkg/fluke"
	"github.com/tsmultimeter/tsmeter-go/pkg/meter"
	"github.com/tsmultimeter/tsmeter-go/pkg/simulator"
)

// Factory builds an unconnected device for a device type and port.
type Factory func(deviceType meter.DeviceType, port string) (meter.Device, error)

// DeviceFactory is the standard Factory: Fluke models get a serial
// transport, Mock gets the simulator. The option slices are applied to
// every device built.
type DeviceFactory struct {
	Fluke     []fluke.Option
	Simulator []simulator.Option
}

// New builds the device for deviceType.
func (f DeviceFactory) New(deviceType meter.DeviceType, port string) (meter.Device, error) {
	switch deviceType {
	case meter.DeviceTypeFluke289, meter.DeviceTypeFluke287:
		return fluke.New(deviceType, port, f.Fluke...), nil
	case meter.DeviceTypeMock:
		return simulator.New(f.Simulator...), nil
	default:
		return nil, fmt.Errorf("%w: unsupported device type %s", meter.ErrConfig, deviceType)
	}
}
