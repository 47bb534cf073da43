package fluke

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.bug.st/serial"

	"github.com/tsmultimeter/tsmeter-go/pkg/log"
	"github.com/tsmultimeter/tsmeter-go/pkg/meter"
	"github.com/tsmultimeter/tsmeter-go/pkg/wire"
)

// readBufferSize is the size of one port read.
const readBufferSize = 1024

// Device is a Fluke 287/289 on a serial port.
type Device struct {
	cfg        Config
	deviceType meter.DeviceType
	logger     *slog.Logger

	// mu guards port and connID and is held for one full command exchange.
	mu     sync.Mutex
	port   Port
	connID string

	connected atomic.Bool
	sessionID atomic.Value // string
}

// New creates a Device for the given Fluke model on the named port.
// It does not touch the port until Connect.
func New(deviceType meter.DeviceType, port string, opts ...Option) *Device {
	cfg := DefaultConfig()
	cfg.Port = port
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Open == nil {
		cfg.Open = OpenSerial
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Device{
		cfg:        cfg,
		deviceType: deviceType,
		logger:     logger.With("device_type", deviceType.String(), "port", port),
	}
}

// Type returns the Fluke model this device was created for.
func (d *Device) Type() meter.DeviceType {
	return d.deviceType
}

// PortName returns the configured serial port.
func (d *Device) PortName() string {
	return d.cfg.Port
}

// SetSessionID tags capture events with the manager's session identifier.
func (d *Device) SetSessionID(id string) {
	d.sessionID.Store(id)
}

// IsConnected reports whether the port is open. It never blocks.
func (d *Device) IsConnected() bool {
	return d.connected.Load()
}

// Connect opens and configures the serial port. It is a no-op when the
// port is already open.
func (d *Device) Connect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.port != nil {
		return nil
	}
	if d.cfg.Port == "" {
		return fmt.Errorf("%w: no port specified", meter.ErrConfig)
	}
	if err := d.cfg.Validate(); err != nil {
		return err
	}

	mode := &serial.Mode{
		BaudRate: d.cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := d.cfg.Open(d.cfg.Port, mode)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", meter.ErrConnection, d.cfg.Port, err)
	}
	if err := port.SetReadTimeout(d.cfg.PortReadTimeout); err != nil {
		port.Close()
		return fmt.Errorf("%w: set read timeout on %s: %v", meter.ErrConnection, d.cfg.Port, err)
	}

	if err := port.SetDTR(true); err != nil {
		d.logger.Warn("Failed to assert DTR line", "error", err)
	}
	if err := port.SetRTS(true); err != nil {
		d.logger.Warn("Failed to assert RTS line", "error", err)
	}
	if err := errors.Join(port.ResetInputBuffer(), port.ResetOutputBuffer()); err != nil {
		d.logger.Warn("Failed to clear serial buffers", "error", err)
	}

	if err := sleep(ctx, d.cfg.OpenSettleDelay); err != nil {
		port.Close()
		return err
	}

	d.port = port
	d.connID = uuid.NewString()
	d.connected.Store(true)

	d.logger.Info("Connected to Fluke device")
	d.emitState("disconnected", "connected", "")
	return nil
}

// Disconnect closes the port. It always succeeds; a close failure is logged.
func (d *Device) Disconnect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.port == nil {
		return nil
	}
	if err := d.port.Close(); err != nil {
		d.logger.Warn("Error closing serial port", "error", err)
	}
	d.port = nil
	d.connected.Store(false)

	d.logger.Info("Disconnected from Fluke device")
	d.emitState("connected", "disconnected", "")
	return nil
}

// Identify sends ID and decodes model, software version and serial number.
func (d *Device) Identify(ctx context.Context) (meter.DeviceInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	resp, err := d.exchange(ctx, wire.CmdIdentify)
	if err != nil {
		return meter.DeviceInfo{}, err
	}
	if err := wire.CheckAck(resp); err != nil {
		return meter.DeviceInfo{}, err
	}
	return wire.ParseIdentification(wire.Payload(resp))
}

// Measurement sends QM and decodes the primary reading.
func (d *Device) Measurement(ctx context.Context) (meter.Measurement, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	resp, err := d.exchange(ctx, wire.CmdQueryMeasurement)
	if err != nil {
		return meter.Measurement{}, err
	}
	if err := wire.CheckAck(resp); err != nil {
		return meter.Measurement{}, err
	}
	return wire.ParseMeasurement(wire.Payload(resp), time.Now())
}

// Reset sends RI. Only the acknowledgement is checked.
func (d *Device) Reset(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	resp, err := d.exchange(ctx, wire.CmdResetInstrument)
	if err != nil {
		return err
	}
	return wire.CheckAck(resp)
}

// SendCommand sends command verbatim and returns the normalized reply,
// ack digit included. A non-success ack is not an error here.
func (d *Device) SendCommand(ctx context.Context, command string) (string, error) {
	command = strings.Trim(command, " \r\n")
	if command == "" {
		return "", fmt.Errorf("%w: empty command", meter.ErrInvalidCommand)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	return d.exchange(ctx, command)
}

// exchange runs one write/read cycle. The caller holds d.mu.
//
// ctx is honored only until the frame is written. After that the read runs
// to completion or to AckTimeout, so a reply is never left on the port for
// the next command to pick up.
func (d *Device) exchange(ctx context.Context, command string) (string, error) {
	if d.port == nil {
		return "", fmt.Errorf("%w: not connected", meter.ErrConnection)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := d.port.ResetInputBuffer(); err != nil {
		d.logger.Debug("Failed to clear stale input", "error", err)
	}
	ctx = context.WithoutCancel(ctx)

	frame := wire.Frame(command)
	d.logger.Debug("Sending command", "command", command)
	d.emitFrame(log.DirectionOut, frame)
	d.emitMessage(&log.MessageEvent{Type: log.MessageTypeCommand, Command: command}, log.DirectionOut)

	start := time.Now()
	if _, err := d.port.Write(frame); err != nil {
		return "", d.fail(command, fmt.Errorf("%w: write %s: %v", meter.ErrConnection, command, err))
	}
	if err := d.port.Drain(); err != nil {
		return "", d.fail(command, fmt.Errorf("%w: flush %s: %v", meter.ErrConnection, command, err))
	}

	if err := sleep(ctx, d.cfg.SettleDelay); err != nil {
		return "", d.fail(command, err)
	}

	raw, ackOnly, err := d.readResponse(ctx, command)
	if err != nil {
		return "", d.fail(command, err)
	}
	if len(raw) == 0 {
		return "", d.fail(command, fmt.Errorf("%w: no response to %s", meter.ErrTimeout, command))
	}

	resp := wire.Normalize(string(raw))
	if resp == "" {
		return "", d.fail(command, fmt.Errorf("%w: missing ACK", meter.ErrParse))
	}

	rt := time.Since(start)
	msg := &log.MessageEvent{
		Type:      log.MessageTypeResponse,
		Command:   command,
		Payload:   wire.Payload(resp),
		AckOnly:   ackOnly,
		RoundTrip: &rt,
	}
	if ack, err := wire.ParseAck(resp); err == nil {
		msg.Ack = &ack
	}
	d.emitMessage(msg, log.DirectionIn)

	return resp, nil
}

// readResponse accumulates bytes until the frame is complete or one of the
// two timeouts fires. ackOnly reports that the payload-idle timeout ended
// the read after a single terminator.
func (d *Device) readResponse(ctx context.Context, command string) (raw []byte, ackOnly bool, err error) {
	buf := make([]byte, readBufferSize)
	terminators := 0
	lastActivity := time.Now()

	for {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}

		n, err := d.port.Read(buf)
		if err != nil {
			return nil, false, fmt.Errorf("%w: read %s: %v", meter.ErrConnection, command, err)
		}

		if n > 0 {
			chunk := buf[:n]
			d.emitFrame(log.DirectionIn, chunk)
			raw = append(raw, chunk...)
			terminators += wire.CountTerminators(chunk)
			lastActivity = time.Now()
			if terminators >= wire.FrameLines {
				return raw, false, nil
			}
			continue
		}

		idle := time.Since(lastActivity)
		switch {
		case terminators == 0 && idle > d.cfg.AckTimeout:
			d.logger.Warn("Timeout before ACK", "command", command, "idle", idle)
			return nil, false, fmt.Errorf("%w: no ACK for %s within %v", meter.ErrTimeout, command, d.cfg.AckTimeout)
		case terminators > 0 && idle > d.cfg.PayloadIdleTimeout:
			return raw, true, nil
		}

		if err := sleep(ctx, d.cfg.ReadBackoff); err != nil {
			return nil, false, err
		}
	}
}

// sleep waits for d or until ctx is done.
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
