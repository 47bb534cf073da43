package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tsmultimeter/tsmeter-go/pkg/log"
	"github.com/tsmultimeter/tsmeter-go/pkg/meter"
	"github.com/tsmultimeter/tsmeter-go/pkg/meter/mocks"
	"github.com/tsmultimeter/tsmeter-go/pkg/simulator"
)

var testInfo = meter.DeviceInfo{Model: "FLUKE 289", SoftwareVersion: "V1.16", SerialNumber: "95930123"}

// queueFactory hands out prepared devices in order.
func queueFactory(devices ...meter.Device) Factory {
	var mu sync.Mutex
	return func(meter.DeviceType, string) (meter.Device, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(devices) == 0 {
			return nil, errors.New("no more devices")
		}
		d := devices[0]
		devices = devices[1:]
		return d, nil
	}
}

// healthyMock returns a mock that connects and identifies.
func healthyMock(t *testing.T) *mocks.MockDevice {
	d := mocks.NewMockDevice(t)
	d.EXPECT().Connect(mock.Anything).Return(nil)
	d.EXPECT().Identify(mock.Anything).Return(testInfo, nil)
	return d
}

func simManager() *Manager {
	return NewManager(Options{
		Factory: DeviceFactory{Simulator: []simulator.Option{simulator.WithoutLatency(), simulator.WithSeed(11)}}.New,
	})
}

func TestConnect_Mock(t *testing.T) {
	m := simManager()
	res, err := m.Connect(context.Background(), meter.DeviceTypeMock, "")
	require.NoError(t, err)

	assert.Equal(t, "device_0001", res.ID)
	assert.Equal(t, meter.DeviceTypeMock, res.DeviceType)
	assert.Equal(t, "MOCK-MULTIMETER", res.Info.Model)

	st, err := m.Status(res.ID)
	require.NoError(t, err)
	assert.True(t, st.Connected)
	assert.Equal(t, res.Info, st.Info)

	reading, err := m.Measurement(context.Background(), res.ID)
	require.NoError(t, err)
	assert.NotNil(t, reading.Timestamp)
}

func TestConnect_IDsNeverReused(t *testing.T) {
	m := simManager()
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		res, err := m.Connect(ctx, meter.DeviceTypeMock, "")
		require.NoError(t, err)
		ids = append(ids, res.ID)
	}
	assert.Equal(t, []string{"device_0001", "device_0002", "device_0003"}, ids)

	_, err := m.Disconnect(ctx, "device_0003")
	require.NoError(t, err)

	res, err := m.Connect(ctx, meter.DeviceTypeMock, "")
	require.NoError(t, err)
	assert.Equal(t, "device_0004", res.ID)
}

func TestConnect_ConnectFailure(t *testing.T) {
	dev := mocks.NewMockDevice(t)
	dev.EXPECT().Connect(mock.Anything).Return(errors.Join(meter.ErrConnection, errors.New("port busy")))

	m := NewManager(Options{Factory: queueFactory(dev)})
	_, err := m.Connect(context.Background(), meter.DeviceTypeFluke289, "/dev/ttyUSB0")

	assert.ErrorIs(t, err, meter.ErrConnection)
	assert.Equal(t, "connection error\nport busy", err.Error())
	assert.Equal(t, 0, m.Len())
}

func TestConnect_IdentifyFailureReleasesDevice(t *testing.T) {
	bad := mocks.NewMockDevice(t)
	bad.EXPECT().Connect(mock.Anything).Return(nil)
	bad.EXPECT().Identify(mock.Anything).Return(meter.DeviceInfo{}, meter.ErrTimeout)
	bad.EXPECT().Disconnect(mock.Anything).Return(nil).Once()

	good := healthyMock(t)

	m := NewManager(Options{Factory: queueFactory(bad, good)})
	_, err := m.Connect(context.Background(), meter.DeviceTypeFluke289, "/dev/ttyUSB0")
	assert.ErrorIs(t, err, meter.ErrTimeout)
	assert.Empty(t, m.List())

	res, err := m.Connect(context.Background(), meter.DeviceTypeFluke289, "/dev/ttyUSB0")
	require.NoError(t, err)
	assert.Equal(t, "device_0001", res.ID, "failed connect must not consume an id")
}

func TestConnect_UnsupportedType(t *testing.T) {
	m := NewManager(Options{})
	_, err := m.Connect(context.Background(), meter.DeviceType(42), "")
	assert.ErrorIs(t, err, meter.ErrConfig)
}

func TestConnect_FlukeWithoutPort(t *testing.T) {
	m := NewManager(Options{})
	_, err := m.Connect(context.Background(), meter.DeviceTypeFluke287, "")
	assert.ErrorIs(t, err, meter.ErrConfig)
	assert.Equal(t, 0, m.Len())
}

func TestUnknownSession(t *testing.T) {
	m := simManager()
	ctx := context.Background()

	_, err := m.Measurement(ctx, "device_9999")
	assert.ErrorIs(t, err, meter.ErrNotFound)
	_, err = m.Status("device_9999")
	assert.ErrorIs(t, err, meter.ErrNotFound)
	_, err = m.Reset(ctx, "device_9999")
	assert.ErrorIs(t, err, meter.ErrNotFound)
	_, err = m.SendCommand(ctx, "device_9999", "ID")
	assert.ErrorIs(t, err, meter.ErrNotFound)
	_, err = m.Disconnect(ctx, "device_9999")
	assert.ErrorIs(t, err, meter.ErrNotFound)
}

func TestDisconnect_RemovesSession(t *testing.T) {
	m := simManager()
	ctx := context.Background()
	res, err := m.Connect(ctx, meter.DeviceTypeMock, "")
	require.NoError(t, err)

	msg, err := m.Disconnect(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, "Disconnected device device_0001", msg)

	_, err = m.Measurement(ctx, res.ID)
	assert.ErrorIs(t, err, meter.ErrNotFound)
	_, err = m.Disconnect(ctx, res.ID)
	assert.ErrorIs(t, err, meter.ErrNotFound)
}

func TestDisconnect_ErrorStillRemoves(t *testing.T) {
	dev := healthyMock(t)
	dev.EXPECT().Disconnect(mock.Anything).Return(meter.ErrConnection)

	m := NewManager(Options{Factory: queueFactory(dev)})
	res, err := m.Connect(context.Background(), meter.DeviceTypeFluke289, "COM3")
	require.NoError(t, err)

	_, err = m.Disconnect(context.Background(), res.ID)
	assert.Equal(t, meter.ErrConnection, err, "device errors pass through unchanged")

	_, err = m.Status(res.ID)
	assert.ErrorIs(t, err, meter.ErrNotFound)
}

func TestForwardedCalls(t *testing.T) {
	dev := healthyMock(t)
	reading := meter.Measurement{Value: 230.1, Unit: meter.UnitVoltAc}
	dev.EXPECT().Measurement(mock.Anything).Return(reading, nil)
	dev.EXPECT().Reset(mock.Anything).Return(nil)
	dev.EXPECT().SendCommand(mock.Anything, "QM").Return("0230.1,VAC,NORMAL,NONE", nil)
	dev.EXPECT().IsConnected().Return(true)

	m := NewManager(Options{Factory: queueFactory(dev)})
	ctx := context.Background()
	res, err := m.Connect(ctx, meter.DeviceTypeFluke289, "COM3")
	require.NoError(t, err)

	got, err := m.Measurement(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, reading, got)

	msg, err := m.Reset(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, "Device reset successfully", msg)

	resp, err := m.SendCommand(ctx, res.ID, "QM")
	require.NoError(t, err)
	assert.Equal(t, "0230.1,VAC,NORMAL,NONE", resp)

	st, err := m.Status(res.ID)
	require.NoError(t, err)
	assert.Equal(t, Status{
		ID:          res.ID,
		DeviceType:  meter.DeviceTypeFluke289,
		Info:        testInfo,
		Connected:   true,
		Port:        "COM3",
		ConnectedAt: st.ConnectedAt,
	}, st)
}

func TestForwardedErrorsKeepClass(t *testing.T) {
	dev := healthyMock(t)
	dev.EXPECT().Measurement(mock.Anything).Return(meter.Measurement{}, errors.Join(meter.ErrDevice, errors.New("no data available")))

	m := NewManager(Options{Factory: queueFactory(dev)})
	res, err := m.Connect(context.Background(), meter.DeviceTypeFluke289, "COM3")
	require.NoError(t, err)

	_, err = m.Measurement(context.Background(), res.ID)
	assert.ErrorIs(t, err, meter.ErrDevice)
	assert.Equal(t, 1, m.Len(), "failed calls keep the session")
}

func TestCallsOnOneSessionAreSerialized(t *testing.T) {
	var active, peak atomic.Int32
	dev := healthyMock(t)
	dev.EXPECT().Measurement(mock.Anything).RunAndReturn(func(context.Context) (meter.Measurement, error) {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		active.Add(-1)
		return meter.Measurement{}, nil
	})

	m := NewManager(Options{Factory: queueFactory(dev)})
	res, err := m.Connect(context.Background(), meter.DeviceTypeFluke289, "COM3")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Measurement(context.Background(), res.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), peak.Load())
}

func TestSessionsRunInParallel(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})

	slow := healthyMock(t)
	slow.EXPECT().Measurement(mock.Anything).RunAndReturn(func(context.Context) (meter.Measurement, error) {
		close(entered)
		<-release
		return meter.Measurement{}, nil
	})
	fast := healthyMock(t)
	fast.EXPECT().Measurement(mock.Anything).Return(meter.Measurement{Value: 1}, nil)

	m := NewManager(Options{Factory: queueFactory(slow, fast)})
	ctx := context.Background()
	a, err := m.Connect(ctx, meter.DeviceTypeFluke289, "COM3")
	require.NoError(t, err)
	b, err := m.Connect(ctx, meter.DeviceTypeFluke287, "COM4")
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = m.Measurement(ctx, a.ID)
	}()
	<-entered

	got, err := m.Measurement(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, got.Value)

	// The table stays usable while a device call is in flight.
	assert.Equal(t, 2, m.Len())

	close(release)
	<-done
}

func TestList_CreationOrder(t *testing.T) {
	m := simManager()
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		_, err := m.Connect(ctx, meter.DeviceTypeMock, "")
		require.NoError(t, err)
	}
	_, err := m.Disconnect(ctx, "device_0005")
	require.NoError(t, err)

	list := m.List()
	require.Len(t, list, 11)
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].ID, list[i].ID)
	}
	assert.Equal(t, "device_0012", list[10].ID)
}

func TestClose(t *testing.T) {
	m := simManager()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := m.Connect(ctx, meter.DeviceTypeMock, "")
		require.NoError(t, err)
	}

	require.NoError(t, m.Close(ctx))
	assert.Equal(t, 0, m.Len())

	_, err := m.Connect(ctx, meter.DeviceTypeMock, "")
	assert.ErrorIs(t, err, ErrClosed)
}

type recordingObserver struct {
	mu       sync.Mutex
	opened   []string
	closed   []string
	ops      []string
	readings int
	order    []string
}

func (r *recordingObserver) SessionOpened(id string, _ meter.DeviceType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opened = append(r.opened, id)
}

func (r *recordingObserver) SessionClosed(id string, _ meter.DeviceType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = append(r.closed, id)
	r.order = append(r.order, "closed")
}

func (r *recordingObserver) OperationDone(op string, _ meter.DeviceType, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		op += ":" + meter.Kind(err)
	}
	r.ops = append(r.ops, op)
}

func (r *recordingObserver) MeasurementTaken(string, meter.DeviceType, meter.Measurement) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.readings++
	r.order = append(r.order, "reading")
}

func TestObserverAndCapture(t *testing.T) {
	obs := &recordingObserver{}
	mem := log.NewMemoryLogger(0)
	m := NewManager(Options{
		Factory:        DeviceFactory{Simulator: []simulator.Option{simulator.WithoutLatency(), simulator.WithProtocolLogger(mem)}}.New,
		Observer:       obs,
		ProtocolLogger: mem,
	})
	ctx := context.Background()

	res, err := m.Connect(ctx, meter.DeviceTypeMock, "")
	require.NoError(t, err)
	_, err = m.Measurement(ctx, res.ID)
	require.NoError(t, err)
	_, err = m.Measurement(ctx, "device_0042")
	require.Error(t, err)
	_, err = m.Disconnect(ctx, res.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"device_0001"}, obs.opened)
	assert.Equal(t, []string{"device_0001"}, obs.closed)
	assert.Equal(t, []string{OpConnect, OpIdentify, OpMeasurement, OpDisconnect}, obs.ops)
	assert.Equal(t, 1, obs.readings)

	var sessionStates []string
	tagged := 0
	for _, e := range mem.Events() {
		if e.Layer == log.LayerSession && e.StateChange != nil {
			sessionStates = append(sessionStates, e.StateChange.NewState)
		}
		if e.Message != nil && e.SessionID == res.ID {
			tagged++
		}
	}
	assert.Equal(t, []string{"open", "closed"}, sessionStates)
	assert.Positive(t, tagged, "device traffic carries the session id")
}

func TestDisconnect_InFlightReadingReportedBeforeClose(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})

	dev := healthyMock(t)
	dev.EXPECT().Measurement(mock.Anything).RunAndReturn(func(context.Context) (meter.Measurement, error) {
		close(entered)
		<-release
		return meter.Measurement{Value: 1.5, Unit: meter.UnitVoltDc}, nil
	})
	dev.EXPECT().Disconnect(mock.Anything).Return(nil)

	obs := &recordingObserver{}
	m := NewManager(Options{Factory: queueFactory(dev), Observer: obs})
	ctx := context.Background()
	res, err := m.Connect(ctx, meter.DeviceTypeFluke289, "COM3")
	require.NoError(t, err)

	measured := make(chan error, 1)
	go func() {
		_, err := m.Measurement(ctx, res.ID)
		measured <- err
	}()
	<-entered

	disconnected := make(chan error, 1)
	go func() {
		_, err := m.Disconnect(ctx, res.ID)
		disconnected <- err
	}()
	require.Eventually(t, func() bool { return m.Len() == 0 }, time.Second, time.Millisecond)

	close(release)
	require.NoError(t, <-measured)
	require.NoError(t, <-disconnected)

	obs.mu.Lock()
	defer obs.mu.Unlock()
	assert.Equal(t, []string{"reading", "closed"}, obs.order)
}
