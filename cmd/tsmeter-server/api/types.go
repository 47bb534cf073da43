// Package api provides the HTTP handlers of the tsmeter server.
package api

import (
	"context"

	"github.com/tsmultimeter/tsmeter-go/pkg/fluke"
	"github.com/tsmultimeter/tsmeter-go/pkg/meter"
	"github.com/tsmultimeter/tsmeter-go/pkg/session"
)

// Sessions is the part of session.Manager the handlers use.
type Sessions interface {
	Connect(ctx context.Context, deviceType meter.DeviceType, port string) (session.ConnectResult, error)
	Disconnect(ctx context.Context, id string) (string, error)
	Measurement(ctx context.Context, id string) (meter.Measurement, error)
	Status(id string) (session.Status, error)
	Reset(ctx context.Context, id string) (string, error)
	SendCommand(ctx context.Context, id, command string) (string, error)
	List() []session.Status
}

// PortLister enumerates serial ports.
type PortLister func() ([]fluke.PortInfo, error)

// ConnectRequest is the request body for POST /api/v1/devices.
type ConnectRequest struct {
	DeviceType string `json:"device_type"`
	Port       string `json:"port,omitempty"`
}

// CommandRequest is the request body for POST /api/v1/devices/:id/command.
type CommandRequest struct {
	Command string `json:"command"`
}

// CommandResponse carries the raw reply to a command.
type CommandResponse struct {
	ID       string `json:"id"`
	Command  string `json:"command"`
	Response string `json:"response"`
}

// MessageResponse carries a human-readable result.
type MessageResponse struct {
	Message string `json:"message"`
}

// MeasurementResponse is the response for GET /api/v1/devices/:id/measurement.
type MeasurementResponse struct {
	ID string `json:"id"`
	meter.Measurement
}

// DeviceListResponse is the response for GET /api/v1/devices.
type DeviceListResponse struct {
	Devices []session.Status `json:"devices"`
	Total   int              `json:"total"`
}

// PortListResponse is the response for GET /api/v1/ports.
type PortListResponse struct {
	Ports []fluke.PortInfo `json:"ports"`
	Total int              `json:"total"`
}

// ErrorResponse is a standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Details string `json:"details,omitempty"`
}
