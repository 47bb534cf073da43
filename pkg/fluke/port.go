package fluke

import (
	"fmt"
	"sort"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"

	"github.com/tsmultimeter/tsmeter-go/pkg/meter"
)

// Port is the part of serial.Port the device uses. Tests substitute a fake.
type Port interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Drain() error
	Close() error
	SetReadTimeout(t time.Duration) error
	SetDTR(dtr bool) error
	SetRTS(rts bool) error
	ResetInputBuffer() error
	ResetOutputBuffer() error
}

// OpenFunc opens the named port with the given mode.
type OpenFunc func(name string, mode *serial.Mode) (Port, error)

// OpenSerial opens a real serial port.
func OpenSerial(name string, mode *serial.Mode) (Port, error) {
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListPorts returns the names of the serial ports the OS reports, sorted.
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("%w: list ports: %v", meter.ErrConnection, err)
	}
	if ports == nil {
		ports = []string{}
	}
	sort.Strings(ports)
	return ports, nil
}

// PortInfo describes one serial port.
type PortInfo struct {
	Name         string `json:"name"`
	IsUSB        bool   `json:"is_usb"`
	VID          string `json:"vid,omitempty"`
	PID          string `json:"pid,omitempty"`
	SerialNumber string `json:"serial_number,omitempty"`
	Product      string `json:"product,omitempty"`
}

// ListPortDetails returns the OS port list with USB details where known.
// The Fluke IR-USB cable shows up as a USB serial adapter.
func ListPortDetails() ([]PortInfo, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("%w: list ports: %v", meter.ErrConnection, err)
	}
	out := make([]PortInfo, 0, len(details))
	for _, d := range details {
		out = append(out, PortInfo{
			Name:         d.Name,
			IsUSB:        d.IsUSB,
			VID:          d.VID,
			PID:          d.PID,
			SerialNumber: d.SerialNumber,
			Product:      d.Product,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
