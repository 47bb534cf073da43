package simulator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/tsmultimeter/tsmeter-go/pkg/log"
	"github.com/tsmultimeter/tsmeter-go/pkg/meter"
	"github.com/tsmultimeter/tsmeter-go/pkg/wire"
)

// Device is a simulated multimeter.
type Device struct {
	cfg    Config
	clock  func() time.Time
	logger *slog.Logger

	// mu guards everything below and is held for one whole operation,
	// simulated latency included.
	mu        sync.Mutex
	rng       *rand.Rand
	profile   Profile
	startedAt time.Time
	count     uint64
	connID    string

	connected atomic.Bool
	sessionID atomic.Value // string
}

// New creates a disconnected simulated device.
func New(opts ...Option) *Device {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Device{
		cfg:    cfg,
		clock:  clock,
		logger: logger.With("device_type", meter.DeviceTypeMock.String()),
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Type returns meter.DeviceTypeMock.
func (d *Device) Type() meter.DeviceType {
	return meter.DeviceTypeMock
}

// SetSessionID tags capture events with the manager's session identifier.
func (d *Device) SetSessionID(id string) {
	d.sessionID.Store(id)
}

// IsConnected reports whether the generator is armed. It never blocks.
func (d *Device) IsConnected() bool {
	return d.connected.Load()
}

// Profile returns the active waveform. It is the zero Profile while
// disconnected.
func (d *Device) Profile() Profile {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.profile
}

// MeasurementCount returns the readings generated since connect or reset.
func (d *Device) MeasurementCount() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.count
}

// Connect arms the generator with a new profile. It is a no-op when
// already connected.
func (d *Device) Connect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected.Load() {
		return nil
	}
	if err := sleep(ctx, d.cfg.Latency.Connect); err != nil {
		return err
	}

	d.arm()
	d.connID = uuid.NewString()
	d.connected.Store(true)

	d.logger.Info("Connected to mock device", "profile", d.profile.String())
	d.emitState("disconnected", "connected")
	return nil
}

// Disconnect stops the generator.
func (d *Device) Disconnect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.connected.Load() {
		return nil
	}
	// Disconnect always succeeds, so a canceled context only skips the delay.
	_ = sleep(ctx, d.cfg.Latency.Disconnect)

	d.connected.Store(false)
	d.profile = Profile{}
	d.startedAt = time.Time{}

	d.logger.Info("Disconnected from mock device")
	d.emitState("connected", "disconnected")
	return nil
}

// Identify returns the fixed mock identity.
func (d *Device) Identify(ctx context.Context) (meter.DeviceInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ready(ctx, d.cfg.Latency.Identify); err != nil {
		return meter.DeviceInfo{}, err
	}
	d.trace(wire.CmdIdentify, wire.EncodeResponse(wire.AckSuccess, wire.EncodeIdentification(Identity)))
	return Identity, nil
}

// Measurement returns the next sample of the active profile.
func (d *Device) Measurement(ctx context.Context) (meter.Measurement, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ready(ctx, d.cfg.Latency.Measure); err != nil {
		return meter.Measurement{}, err
	}
	m := d.generate()
	d.logger.Debug("Mock measurement", "count", d.count, "value", m.Value, "unit", m.Unit.String())
	if payload, err := wire.EncodeMeasurement(m); err == nil {
		d.trace(wire.CmdQueryMeasurement, wire.EncodeResponse(wire.AckSuccess, payload))
	}
	return m, nil
}

// Reset draws a new profile and restarts the clock.
func (d *Device) Reset(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ready(ctx, d.cfg.Latency.Reset); err != nil {
		return err
	}
	d.arm()
	d.logger.Info("Mock device reset", "profile", d.profile.String())
	d.trace(wire.CmdResetInstrument, wire.EncodeResponse(wire.AckSuccess, ""))
	return nil
}

// SendCommand answers the Fluke raw command set. The reply is normalized
// exactly as the serial transport normalizes real instrument output.
func (d *Device) SendCommand(ctx context.Context, command string) (string, error) {
	command = strings.Trim(command, " \r\n")
	if command == "" {
		return "", fmt.Errorf("%w: empty command", meter.ErrInvalidCommand)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ready(ctx, d.cfg.Latency.Command); err != nil {
		return "", err
	}

	var raw string
	switch wire.CanonicalCommand(command) {
	case wire.CmdIdentify:
		raw = wire.EncodeResponse(wire.AckSuccess, wire.EncodeIdentification(Identity))
	case wire.CmdQueryMeasurement:
		payload, err := wire.EncodeMeasurement(d.generate())
		if err != nil {
			return "", err
		}
		raw = wire.EncodeResponse(wire.AckSuccess, payload)
	case wire.CmdResetInstrument:
		d.arm()
		raw = wire.EncodeResponse(wire.AckSuccess, "")
	case wire.CmdResetMeterProperties, wire.CmdDefaultSetup:
		raw = wire.EncodeResponse(wire.AckSuccess, "")
	default:
		raw = wire.EncodeResponse(wire.AckSyntaxError, "")
	}

	d.trace(command, raw)
	return wire.Normalize(raw), nil
}

// ready checks the connection and waits out the simulated latency.
// The caller holds d.mu.
func (d *Device) ready(ctx context.Context, latency time.Duration) error {
	if !d.connected.Load() {
		return fmt.Errorf("%w: not connected", meter.ErrConnection)
	}
	return sleep(ctx, latency)
}

// arm picks a profile and restarts the clock. The caller holds d.mu.
func (d *Device) arm() {
	if d.cfg.Profile != nil {
		d.profile = *d.cfg.Profile
	} else {
		d.profile = RandomProfile(d.rng)
	}
	d.startedAt = d.clock()
	d.count = 0
}

// generate produces one reading. The caller holds d.mu.
func (d *Device) generate() meter.Measurement {
	d.count++
	now := d.clock()
	return meter.Measurement{
		Value:     d.profile.Sample(now.Sub(d.startedAt), d.rng),
		Unit:      d.profile.Unit(),
		State:     meter.StateNormal,
		Attribute: meter.AttributeNone,
		Timestamp: &now,
	}
}

func (d *Device) emit(e log.Event) {
	if d.cfg.ProtocolLogger == nil {
		return
	}
	e.Timestamp = d.clock()
	e.ConnectionID = d.connID
	e.DeviceType = meter.DeviceTypeMock.String()
	if id, ok := d.sessionID.Load().(string); ok {
		e.SessionID = id
	}
	d.cfg.ProtocolLogger.Log(e)
}

// trace records a simulated exchange the way the serial transport records
// a real one.
func (d *Device) trace(command, raw string) {
	if d.cfg.ProtocolLogger == nil {
		return
	}
	d.emit(log.Event{
		Direction: log.DirectionOut,
		Layer:     log.LayerTransport,
		Frame:     &log.FrameEvent{Size: len(command) + 1, Data: wire.Frame(command)},
	})
	d.emit(log.Event{
		Direction: log.DirectionIn,
		Layer:     log.LayerTransport,
		Frame:     &log.FrameEvent{Size: len(raw), Data: []byte(raw)},
	})

	resp := wire.Normalize(raw)
	msg := &log.MessageEvent{
		Type:    log.MessageTypeResponse,
		Command: command,
		Payload: wire.Payload(resp),
	}
	if ack, err := wire.ParseAck(resp); err == nil {
		msg.Ack = &ack
	}
	d.emit(log.Event{Direction: log.DirectionIn, Layer: log.LayerWire, Message: msg})
}

func (d *Device) emitState(from, to string) {
	d.emit(log.Event{
		Layer:    log.LayerTransport,
		Category: log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityConnection,
			OldState: from,
			NewState: to,
		},
	})
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

var _ meter.Device = (*Device)(nil)
