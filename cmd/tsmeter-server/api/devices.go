package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/tsmultimeter/tsmeter-go/pkg/meter"
)

const devicesPrefix = "/api/v1/devices/"

// DevicesAPI handles the session endpoints.
type DevicesAPI struct {
	sessions Sessions
	logger   *slog.Logger
}

// NewDevicesAPI creates a new devices API handler.
func NewDevicesAPI(sessions Sessions, logger *slog.Logger) *DevicesAPI {
	if logger == nil {
		logger = slog.Default()
	}
	return &DevicesAPI{sessions: sessions, logger: logger}
}

// HandleDevices handles GET and POST /api/v1/devices.
func (a *DevicesAPI) HandleDevices(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		list := a.sessions.List()
		writeJSONResponse(w, http.StatusOK, DeviceListResponse{Devices: list, Total: len(list)})
	case http.MethodPost:
		a.handleConnect(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleDeviceByID handles /api/v1/devices/:id and its sub-resources.
func (a *DevicesAPI) HandleDeviceByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, devicesPrefix)
	id, action, _ := strings.Cut(path, "/")
	if id == "" {
		writeJSONError(w, http.StatusNotFound, "Device ID is required", "")
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		a.handleStatus(w, r, id)
	case action == "" && r.Method == http.MethodDelete,
		action == "disconnect" && r.Method == http.MethodPost:
		a.handleDisconnect(w, r, id)
	case action == "measurement" && r.Method == http.MethodGet:
		a.handleMeasurement(w, r, id)
	case action == "reset" && r.Method == http.MethodPost:
		a.handleReset(w, r, id)
	case action == "command" && r.Method == http.MethodPost:
		a.handleCommand(w, r, id)
	case action == "" || action == "disconnect" || action == "measurement" ||
		action == "reset" || action == "command":
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	default:
		http.NotFound(w, r)
	}
}

func (a *DevicesAPI) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req ConnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	deviceType, err := meter.ParseDeviceType(req.DeviceType)
	if err != nil {
		writeError(w, err)
		return
	}

	res, err := a.sessions.Connect(r.Context(), deviceType, req.Port)
	if err != nil {
		a.logger.Warn("Connect request failed", "device_type", req.DeviceType, "port", req.Port, "error", err)
		writeError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusCreated, res)
}

func (a *DevicesAPI) handleStatus(w http.ResponseWriter, _ *http.Request, id string) {
	st, err := a.sessions.Status(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, st)
}

func (a *DevicesAPI) handleDisconnect(w http.ResponseWriter, r *http.Request, id string) {
	msg, err := a.sessions.Disconnect(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, MessageResponse{Message: msg})
}

func (a *DevicesAPI) handleMeasurement(w http.ResponseWriter, r *http.Request, id string) {
	m, err := a.sessions.Measurement(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, MeasurementResponse{ID: id, Measurement: m})
}

func (a *DevicesAPI) handleReset(w http.ResponseWriter, r *http.Request, id string) {
	msg, err := a.sessions.Reset(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, MessageResponse{Message: msg})
}

func (a *DevicesAPI) handleCommand(w http.ResponseWriter, r *http.Request, id string) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if strings.TrimSpace(req.Command) == "" {
		writeJSONError(w, http.StatusBadRequest, "Command is required", "")
		return
	}

	resp, err := a.sessions.SendCommand(r.Context(), id, req.Command)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, CommandResponse{ID: id, Command: req.Command, Response: resp})
}
