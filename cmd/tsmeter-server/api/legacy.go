package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tsmultimeter/tsmeter-go/pkg/meter"
)

// LegacyAPI serves the unversioned routes the desktop frontend was built
// against. Every reply is HTTP 200 with a {"success": bool} envelope;
// failures carry the error text in "error".
type LegacyAPI struct {
	sessions Sessions
	ports    PortLister
}

// NewLegacyAPI creates the legacy handlers.
func NewLegacyAPI(sessions Sessions, ports PortLister) *LegacyAPI {
	return &LegacyAPI{sessions: sessions, ports: ports}
}

type legacyConnectRequest struct {
	DeviceType string  `json:"device_type"`
	Port       *string `json:"port"`
}

func legacyOK(w http.ResponseWriter, key string, value any) {
	writeJSONResponse(w, http.StatusOK, map[string]any{"success": true, key: value})
}

func legacyFail(w http.ResponseWriter, err error) {
	writeJSONResponse(w, http.StatusOK, map[string]any{"success": false, "error": err.Error()})
}

// HandleConnect handles POST /connect. A missing device_type means Mock.
func (a *LegacyAPI) HandleConnect(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodPost:
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req legacyConnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}
	if req.DeviceType == "" {
		req.DeviceType = meter.DeviceTypeMock.String()
	}
	deviceType, err := meter.ParseDeviceType(req.DeviceType)
	if err != nil {
		legacyFail(w, err)
		return
	}
	var port string
	if req.Port != nil {
		port = *req.Port
	}

	res, err := a.sessions.Connect(r.Context(), deviceType, port)
	if err != nil {
		legacyFail(w, err)
		return
	}
	legacyOK(w, "device", res)
}

// HandleDisconnect handles POST /disconnect/:id.
func (a *LegacyAPI) HandleDisconnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	msg, err := a.sessions.Disconnect(r.Context(), strings.TrimPrefix(r.URL.Path, "/disconnect/"))
	if err != nil {
		legacyFail(w, err)
		return
	}
	legacyOK(w, "message", msg)
}

// HandleMeasurement handles GET /measurement/:id.
func (a *LegacyAPI) HandleMeasurement(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	m, err := a.sessions.Measurement(r.Context(), strings.TrimPrefix(r.URL.Path, "/measurement/"))
	if err != nil {
		legacyFail(w, err)
		return
	}
	legacyOK(w, "data", m)
}

// HandleStatus handles GET /status.
func (a *LegacyAPI) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	legacyOK(w, "devices", a.sessions.List())
}

// HandlePorts handles GET /ports. Only port names are returned.
func (a *LegacyAPI) HandlePorts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ports, err := a.ports()
	if err != nil {
		legacyFail(w, err)
		return
	}
	names := make([]string, len(ports))
	for i, p := range ports {
		names[i] = p.Name
	}
	legacyOK(w, "ports", names)
}
