package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/tsmultimeter/tsmeter-go/pkg/log"
	"github.com/tsmultimeter/tsmeter-go/pkg/meter"
)

// IDPrefix is the prefix of every session identifier.
const IDPrefix = "device_"

// Operation names reported to the Observer.
const (
	OpConnect     = "connect"
	OpIdentify    = "identify"
	OpDisconnect  = "disconnect"
	OpMeasurement = "measurement"
	OpReset       = "reset"
	OpCommand     = "command"
)

// ConnectResult describes a newly created session.
type ConnectResult struct {
	ID         string           `json:"id"`
	DeviceType meter.DeviceType `json:"device_type"`
	Info       meter.DeviceInfo `json:"info"`
}

// Status is a snapshot of one session.
type Status struct {
	ID          string           `json:"id"`
	DeviceType  meter.DeviceType `json:"device_type"`
	Info        meter.DeviceInfo `json:"info"`
	Connected   bool             `json:"connected"`
	Port        string           `json:"port,omitempty"`
	ConnectedAt time.Time        `json:"connected_at"`
}

// sessionTagger is implemented by devices that label capture events with
// the session identifier.
type sessionTagger interface {
	SetSessionID(id string)
}

type entry struct {
	id          string
	seq         uint64
	deviceType  meter.DeviceType
	port        string
	info        meter.DeviceInfo
	connectedAt time.Time

	// mu serializes forwarded calls on this session.
	mu     sync.Mutex
	device meter.Device
}

// Options configures a Manager.
type Options struct {
	// Factory builds devices. Defaults to DeviceFactory{}.New.
	Factory Factory

	// Logger receives operational logs. Defaults to slog.Default().
	Logger *slog.Logger

	// ProtocolLogger receives session state events.
	ProtocolLogger log.Logger

	// Observer receives activity notifications (metrics).
	Observer Observer
}

// Manager owns the connected devices.
type Manager struct {
	factory  Factory
	logger   *slog.Logger
	plog     log.Logger
	observer Observer

	mu       sync.Mutex
	sessions map[string]*entry
	counter  uint64
	closed   bool
}

// NewManager creates an empty Manager.
func NewManager(opts Options) *Manager {
	m := &Manager{
		factory:  opts.Factory,
		logger:   opts.Logger,
		plog:     opts.ProtocolLogger,
		observer: opts.Observer,
		sessions: make(map[string]*entry),
	}
	if m.factory == nil {
		m.factory = DeviceFactory{}.New
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.observer == nil {
		m.observer = nopObserver{}
	}
	return m
}

// ErrClosed is returned by Connect after Close.
var ErrClosed = errors.New("session manager closed")

// Connect creates a device, connects it and reads its identity. The session
// is added only when all three succeed; on an identify failure the device
// is disconnected again and no identifier is consumed.
func (m *Manager) Connect(ctx context.Context, deviceType meter.DeviceType, port string) (ConnectResult, error) {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return ConnectResult{}, ErrClosed
	}

	dev, err := m.factory(deviceType, port)
	if err != nil {
		return ConnectResult{}, err
	}

	start := time.Now()
	err = dev.Connect(ctx)
	m.observer.OperationDone(OpConnect, deviceType, time.Since(start), err)
	if err != nil {
		m.logger.Warn("Connect failed", "device_type", deviceType.String(), "port", port, "error", err)
		return ConnectResult{}, err
	}

	start = time.Now()
	info, err := dev.Identify(ctx)
	m.observer.OperationDone(OpIdentify, deviceType, time.Since(start), err)
	if err != nil {
		m.logger.Warn("Identify failed, releasing device", "device_type", deviceType.String(), "port", port, "error", err)
		if derr := dev.Disconnect(context.WithoutCancel(ctx)); derr != nil {
			m.logger.Warn("Release after failed identify", "error", derr)
		}
		return ConnectResult{}, err
	}

	e := &entry{
		deviceType:  deviceType,
		port:        port,
		info:        info,
		connectedAt: time.Now(),
		device:      dev,
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		_ = dev.Disconnect(context.WithoutCancel(ctx))
		return ConnectResult{}, ErrClosed
	}
	m.counter++
	e.seq = m.counter
	e.id = fmt.Sprintf("%s%04d", IDPrefix, e.seq)
	m.sessions[e.id] = e
	m.mu.Unlock()

	if t, ok := dev.(sessionTagger); ok {
		t.SetSessionID(e.id)
	}

	m.logger.Info("Session opened",
		"session_id", e.id,
		"device_type", deviceType.String(),
		"model", info.Model,
		"serial_number", info.SerialNumber)
	m.emitState(e, "", "open")
	m.observer.SessionOpened(e.id, deviceType)

	return ConnectResult{ID: e.id, DeviceType: deviceType, Info: info}, nil
}

// Disconnect removes the session and disconnects its device. The session is
// gone even when the device reports an error.
//
// Device errors from every method are returned as the device produced them.
func (m *Manager) Disconnect(ctx context.Context, id string) (string, error) {
	m.mu.Lock()
	e, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return "", notFound(id)
	}

	m.emitState(e, "open", "closed")

	// A call already holding e.mu finishes and reports before the close.
	e.mu.Lock()
	start := time.Now()
	err := e.device.Disconnect(ctx)
	e.mu.Unlock()
	m.observer.OperationDone(OpDisconnect, e.deviceType, time.Since(start), err)
	m.observer.SessionClosed(e.id, e.deviceType)

	if err != nil {
		m.logger.Warn("Disconnect reported an error", "session_id", id, "error", err)
		return "", err
	}
	m.logger.Info("Session closed", "session_id", id)
	return fmt.Sprintf("Disconnected device %s", id), nil
}

// Measurement reads the current value of the session's device.
func (m *Manager) Measurement(ctx context.Context, id string) (meter.Measurement, error) {
	var reading meter.Measurement
	err := m.forward(ctx, id, OpMeasurement, func(ctx context.Context, e *entry) error {
		var err error
		reading, err = e.device.Measurement(ctx)
		if err == nil {
			m.observer.MeasurementTaken(e.id, e.deviceType, reading)
		}
		return err
	})
	return reading, err
}

// Status returns a snapshot of the session. It does not talk to the device.
func (m *Manager) Status(id string) (Status, error) {
	m.mu.Lock()
	e, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return Status{}, notFound(id)
	}
	return e.status(), nil
}

// Reset resets the session's device.
func (m *Manager) Reset(ctx context.Context, id string) (string, error) {
	err := m.forward(ctx, id, OpReset, func(ctx context.Context, e *entry) error {
		return e.device.Reset(ctx)
	})
	if err != nil {
		return "", err
	}
	return "Device reset successfully", nil
}

// SendCommand forwards a raw command and returns the device's reply.
func (m *Manager) SendCommand(ctx context.Context, id, command string) (string, error) {
	var resp string
	err := m.forward(ctx, id, OpCommand, func(ctx context.Context, e *entry) error {
		var err error
		resp, err = e.device.SendCommand(ctx, command)
		return err
	})
	return resp, err
}

// List returns every session in creation order.
func (m *Manager) List() []Status {
	m.mu.Lock()
	entries := make([]*entry, 0, len(m.sessions))
	for _, e := range m.sessions {
		entries = append(entries, e)
	}
	m.mu.Unlock()

	slices.SortFunc(entries, func(a, b *entry) int {
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})

	out := make([]Status, len(entries))
	for i, e := range entries {
		out[i] = e.status()
	}
	return out
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close disconnects every session and refuses further connects.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	var errs []error
	for _, id := range ids {
		if _, err := m.Disconnect(ctx, id); err != nil && !errors.Is(err, meter.ErrNotFound) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// forward resolves id and runs fn under the session lock.
func (m *Manager) forward(ctx context.Context, id, op string, fn func(context.Context, *entry) error) error {
	m.mu.Lock()
	e, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok {
		return notFound(id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	err := fn(ctx, e)
	m.observer.OperationDone(op, e.deviceType, time.Since(start), err)
	if err != nil {
		m.logger.Debug("Device call failed", "session_id", id, "op", op, "error", err)
	}
	return err
}

func (e *entry) status() Status {
	return Status{
		ID:          e.id,
		DeviceType:  e.deviceType,
		Info:        e.info,
		Connected:   e.device.IsConnected(),
		Port:        e.port,
		ConnectedAt: e.connectedAt,
	}
}

func (m *Manager) emitState(e *entry, from, to string) {
	if m.plog == nil {
		return
	}
	m.plog.Log(log.Event{
		Timestamp:  time.Now(),
		SessionID:  e.id,
		DeviceType: e.deviceType.String(),
		Port:       e.port,
		Layer:      log.LayerSession,
		Category:   log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntitySession,
			OldState: from,
			NewState: to,
		},
	})
}

func notFound(id string) error {
	return fmt.Errorf("%w: device %s", meter.ErrNotFound, id)
}
