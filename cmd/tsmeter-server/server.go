package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/tsmultimeter/tsmeter-go/cmd/tsmeter-server/api"
	"github.com/tsmultimeter/tsmeter-go/pkg/metrics"
	"github.com/tsmultimeter/tsmeter-go/pkg/session"
)

// ServerConfig holds configuration for the HTTP server.
type ServerConfig struct {
	Listen      string
	CORSOrigin  string
	MetricsPath string
	Version     string
}

// Server is the HTTP boundary in front of the session manager.
type Server struct {
	config    ServerConfig
	mux       *http.ServeMux
	server    *http.Server
	sessions  *session.Manager
	metrics   *metrics.Metrics
	logger    *slog.Logger
	devices   *api.DevicesAPI
	ports     *api.PortsAPI
	legacy    *api.LegacyAPI
	startedAt time.Time
}

// NewServer creates a new server. m may be nil to disable /metrics.
func NewServer(cfg ServerConfig, mgr *session.Manager, m *metrics.Metrics, ports api.PortLister, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		config:    cfg,
		mux:       http.NewServeMux(),
		sessions:  mgr,
		metrics:   m,
		logger:    logger,
		devices:   api.NewDevicesAPI(mgr, logger),
		ports:     api.NewPortsAPI(ports),
		legacy:    api.NewLegacyAPI(mgr, ports),
		startedAt: time.Now(),
	}

	s.registerRoutes()

	s.server = &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// registerRoutes sets up all HTTP routes.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/api/v1/health", s.handleHealth)
	s.mux.HandleFunc("/api/v1/devices", s.devices.HandleDevices)
	s.mux.HandleFunc("/api/v1/devices/", s.devices.HandleDeviceByID)
	s.mux.HandleFunc("/api/v1/ports", s.ports.HandleList)

	// Unversioned routes used by the desktop frontend.
	s.mux.HandleFunc("/connect", s.legacy.HandleConnect)
	s.mux.HandleFunc("/disconnect/", s.legacy.HandleDisconnect)
	s.mux.HandleFunc("/measurement/", s.legacy.HandleMeasurement)
	s.mux.HandleFunc("/status", s.legacy.HandleStatus)
	s.mux.HandleFunc("/ports", s.legacy.HandlePorts)

	if s.metrics != nil && s.config.MetricsPath != "" {
		s.mux.Handle(s.config.MetricsPath, s.metrics.Handler())
	}
}

// Handler returns the mux wrapped with CORS and request logging.
func (s *Server) Handler() http.Handler {
	return s.withCORS(s.withRequestLog(s.mux))
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	version := s.config.Version
	if version == "" {
		version = "dev"
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  version,
		"sessions": s.sessions.Len(),
		"uptime":   time.Since(s.startedAt).Round(time.Second).String(),
	})
}

func (s *Server) withCORS(next http.Handler) http.Handler {
	origin := s.config.CORSOrigin
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin != "" {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Accept")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start))
	})
}

// Serve accepts connections on l until Shutdown.
func (s *Server) Serve(l net.Listener) error {
	return s.server.Serve(l)
}

// ListenAndServe starts the HTTP server on the configured address.
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
