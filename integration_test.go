package tsmeter_test

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.bug.st/serial"

	"github.com/tsmultimeter/tsmeter-go/pkg/fluke"
	"github.com/tsmultimeter/tsmeter-go/pkg/log"
	"github.com/tsmultimeter/tsmeter-go/pkg/meter"
	"github.com/tsmultimeter/tsmeter-go/pkg/metrics"
	"github.com/tsmultimeter/tsmeter-go/pkg/session"
	"github.com/tsmultimeter/tsmeter-go/pkg/simulator"
	"github.com/tsmultimeter/tsmeter-go/pkg/wire"
)

// benchPort is a serial line with a simulated meter on the far end. The
// meter's replies are re-framed the way a Fluke sends them.
type benchPort struct {
	sim *simulator.Device

	mu      sync.Mutex
	partial string
	pending []byte
	closed  bool
}

func newBenchPort(sim *simulator.Device) *benchPort {
	return &benchPort{sim: sim}
}

func (p *benchPort) Read(b []byte) (int, error) {
	p.mu.Lock()
	if len(p.pending) == 0 {
		p.mu.Unlock()
		time.Sleep(time.Millisecond)
		return 0, nil
	}
	n := copy(b, p.pending)
	p.pending = p.pending[n:]
	p.mu.Unlock()
	return n, nil
}

func (p *benchPort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.partial += string(b)
	for {
		i := strings.IndexByte(p.partial, '\r')
		if i < 0 {
			return len(b), nil
		}
		cmd := p.partial[:i]
		p.partial = p.partial[i+1:]

		resp, err := p.sim.SendCommand(context.Background(), cmd)
		if err != nil {
			continue
		}
		ack, err := wire.ParseAck(resp)
		if err != nil {
			continue
		}
		p.pending = append(p.pending, wire.EncodeResponse(ack, wire.Payload(resp))...)
	}
}

func (p *benchPort) Drain() error                       { return nil }
func (p *benchPort) SetReadTimeout(time.Duration) error { return nil }
func (p *benchPort) SetDTR(bool) error                  { return nil }
func (p *benchPort) SetRTS(bool) error                  { return nil }
func (p *benchPort) ResetInputBuffer() error            { return nil }
func (p *benchPort) ResetOutputBuffer() error           { return nil }

func (p *benchPort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// benchSetup wires a manager whose Fluke sessions talk to simulated meters
// and whose capture goes to a file.
type benchSetup struct {
	mgr     *session.Manager
	metrics *metrics.Metrics
	capture string
	closeFn func()
}

func newBench(t *testing.T) *benchSetup {
	t.Helper()

	path := filepath.Join(t.TempDir(), "bench"+log.Extension)
	fl, err := log.NewFileLogger(path)
	if err != nil {
		t.Fatalf("Failed to create capture: %v", err)
	}

	pinned := simulator.Profile{Kind: simulator.ProfileVoltageSine, Offset: 3.3}
	open := func(name string, mode *serial.Mode) (fluke.Port, error) {
		if mode.BaudRate != fluke.DefaultBaudRate {
			t.Errorf("Expected baud %d, got %d", fluke.DefaultBaudRate, mode.BaudRate)
		}
		sim := simulator.New(simulator.WithoutLatency(), simulator.WithProfile(pinned))
		if err := sim.Connect(context.Background()); err != nil {
			return nil, err
		}
		return newBenchPort(sim), nil
	}

	m := metrics.New(false)
	mgr := session.NewManager(session.Options{
		Factory: session.DeviceFactory{
			Fluke: []fluke.Option{
				fluke.WithOpener(open),
				fluke.WithTimeouts(time.Second, 50*time.Millisecond),
				fluke.WithDelays(0, time.Millisecond, 0),
				fluke.WithPortReadTimeout(time.Millisecond),
				fluke.WithProtocolLogger(fl),
			},
			Simulator: []simulator.Option{
				simulator.WithoutLatency(),
				simulator.WithProfile(pinned),
				simulator.WithProtocolLogger(fl),
			},
		}.New,
		ProtocolLogger: fl,
		Observer:       m,
	})

	b := &benchSetup{mgr: mgr, metrics: m, capture: path}
	var once sync.Once
	b.closeFn = func() {
		once.Do(func() {
			mgr.Close(context.Background())
			fl.Close()
		})
	}
	t.Cleanup(b.closeFn)
	return b
}

// TestE2E_FlukeSession runs a whole Fluke session over the serial framing.
func TestE2E_FlukeSession(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	b := newBench(t)

	res, err := b.mgr.Connect(ctx, meter.DeviceTypeFluke289, "/dev/ttyBENCH")
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	if res.ID != "device_0001" {
		t.Errorf("Expected device_0001, got %s", res.ID)
	}
	if res.Info != simulator.Identity {
		t.Errorf("Expected identity %+v, got %+v", simulator.Identity, res.Info)
	}

	st, err := b.mgr.Status(res.ID)
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if st.Port != "/dev/ttyBENCH" || !st.Connected {
		t.Errorf("Unexpected status: %+v", st)
	}

	m, err := b.mgr.Measurement(ctx, res.ID)
	if err != nil {
		t.Fatalf("Measurement failed: %v", err)
	}
	if m.Value != 3.3 || m.Unit != meter.UnitVoltDc || m.State != meter.StateNormal {
		t.Errorf("Unexpected measurement: %+v", m)
	}
	if m.Timestamp == nil {
		t.Error("Expected capture timestamp")
	}

	raw, err := b.mgr.SendCommand(ctx, res.ID, "QM")
	if err != nil {
		t.Fatalf("SendCommand failed: %v", err)
	}
	if raw != "03.300000,VDC,NORMAL,NONE" {
		t.Errorf("Expected normalized reply, got %q", raw)
	}

	raw, err = b.mgr.SendCommand(ctx, res.ID, "XYZ")
	if err != nil {
		t.Fatalf("SendCommand failed: %v", err)
	}
	if raw != "1" {
		t.Errorf("Expected syntax error ack, got %q", raw)
	}

	msg, err := b.mgr.Reset(ctx, res.ID)
	if err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if msg != "Device reset successfully" {
		t.Errorf("Unexpected reset message %q", msg)
	}

	if _, err := b.mgr.Disconnect(ctx, res.ID); err != nil {
		t.Fatalf("Disconnect failed: %v", err)
	}
	if _, err := b.mgr.Measurement(ctx, res.ID); !errorsIsNotFound(err) {
		t.Errorf("Expected not found after disconnect, got %v", err)
	}

	if got := testutil.ToFloat64(b.metrics.Operations.WithLabelValues(session.OpMeasurement, "Fluke289", "ok")); got != 1 {
		t.Errorf("Expected 1 measurement, got %v", got)
	}
	if got := testutil.ToFloat64(b.metrics.ActiveSessions.WithLabelValues("Fluke289")); got != 0 {
		t.Errorf("Expected no active sessions, got %v", got)
	}

	b.closeFn()
	events, err := log.ReadAll(b.capture, log.Filter{})
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	var states []string
	var resetAckOnly bool
	for _, e := range events {
		if e.StateChange != nil && e.StateChange.Entity == log.StateEntitySession {
			states = append(states, e.StateChange.NewState)
			if e.SessionID != res.ID {
				t.Errorf("Expected session event for %s, got %q", res.ID, e.SessionID)
			}
		}
		if e.Message != nil && e.Message.Command == wire.CmdResetInstrument && e.Message.Type == log.MessageTypeResponse {
			resetAckOnly = e.Message.AckOnly
		}
	}
	if strings.Join(states, ",") != "open,closed" {
		t.Errorf("Expected open,closed session states, got %v", states)
	}
	if !resetAckOnly {
		t.Error("Expected RI response to be captured as ack-only")
	}
}

// TestE2E_ConcurrentSessions drives a Fluke and a Mock session from several
// goroutines and checks exchanges never interleave on the line.
func TestE2E_ConcurrentSessions(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()
	b := newBench(t)

	fl, err := b.mgr.Connect(ctx, meter.DeviceTypeFluke287, "/dev/ttyBENCH")
	if err != nil {
		t.Fatalf("Connect Fluke failed: %v", err)
	}
	mock, err := b.mgr.Connect(ctx, meter.DeviceTypeMock, "")
	if err != nil {
		t.Fatalf("Connect Mock failed: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 64)
	for i := 0; i < 4; i++ {
		for _, id := range []string{fl.ID, mock.ID} {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				for j := 0; j < 5; j++ {
					if _, err := b.mgr.Measurement(ctx, id); err != nil {
						errs <- err
						return
					}
				}
			}(id)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("Measurement failed: %v", err)
	}

	list := b.mgr.List()
	if len(list) != 2 || list[0].ID != fl.ID || list[1].ID != mock.ID {
		t.Fatalf("Unexpected session list: %+v", list)
	}

	b.closeFn()
	events, err := log.ReadAll(b.capture, log.Filter{DeviceType: "Fluke287"})
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}

	// Per connection, a command frame is always followed by reply bytes
	// before the next command goes out.
	lastOut := map[string]bool{}
	outs := 0
	for _, e := range events {
		if e.Frame == nil {
			continue
		}
		if e.Direction == log.DirectionOut {
			if lastOut[e.ConnectionID] {
				t.Fatalf("Two commands in a row on connection %s", e.ConnectionID)
			}
			lastOut[e.ConnectionID] = true
			outs++
		} else {
			lastOut[e.ConnectionID] = false
		}
	}
	// ID on connect plus twenty readings.
	if outs != 21 {
		t.Errorf("Expected 21 commands on the line, got %d", outs)
	}
}

func errorsIsNotFound(err error) bool {
	return meter.Kind(err) == "not_found"
}
