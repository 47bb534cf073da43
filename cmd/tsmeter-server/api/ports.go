package api

import (
	"net/http"
)

// PortsAPI handles serial port enumeration.
type PortsAPI struct {
	list PortLister
}

// NewPortsAPI creates a ports handler backed by list.
func NewPortsAPI(list PortLister) *PortsAPI {
	return &PortsAPI{list: list}
}

// HandleList handles GET /api/v1/ports.
func (a *PortsAPI) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ports, err := a.list()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, PortListResponse{Ports: ports, Total: len(ports)})
}
