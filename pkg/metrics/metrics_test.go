package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tsmultimeter/tsmeter-go/pkg/meter"
	"github.com/tsmultimeter/tsmeter-go/pkg/session"
	"github.com/tsmultimeter/tsmeter-go/pkg/simulator"
)

var _ session.Observer = (*Metrics)(nil)

func TestSessionGauges(t *testing.T) {
	m := New(false)
	m.SessionOpened("device_0001", meter.DeviceTypeMock)
	m.SessionOpened("device_0002", meter.DeviceTypeMock)
	m.SessionClosed("device_0001", meter.DeviceTypeMock)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveSessions.WithLabelValues("Mock")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SessionsTotal.WithLabelValues("Mock")))
}

func TestOperationDone(t *testing.T) {
	m := New(false)
	m.OperationDone("measurement", meter.DeviceTypeFluke289, 20*time.Millisecond, nil)
	m.OperationDone("measurement", meter.DeviceTypeFluke289, time.Second, meter.ErrTimeout)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("measurement", "Fluke289", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("measurement", "Fluke289", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues("measurement", "timeout")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Duration))
}

func TestLastReadingFollowsUnit(t *testing.T) {
	m := New(false)
	m.MeasurementTaken("device_0001", meter.DeviceTypeMock, meter.Measurement{Value: 5, Unit: meter.UnitVoltDc})
	m.MeasurementTaken("device_0001", meter.DeviceTypeMock, meter.Measurement{Value: 12, Unit: meter.UnitOhm})

	assert.Equal(t, 1, testutil.CollectAndCount(m.LastReading))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.LastReading.WithLabelValues("device_0001", "Ohm")))

	m.SessionClosed("device_0001", meter.DeviceTypeMock)
	assert.Equal(t, 0, testutil.CollectAndCount(m.LastReading))
}

func TestWiredToManager(t *testing.T) {
	m := New(false)
	mgr := session.NewManager(session.Options{
		Factory:  session.DeviceFactory{Simulator: []simulator.Option{simulator.WithoutLatency()}}.New,
		Observer: m,
	})
	ctx := context.Background()
	res, err := mgr.Connect(ctx, meter.DeviceTypeMock, "")
	require.NoError(t, err)
	_, err = mgr.Measurement(ctx, res.ID)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveSessions.WithLabelValues("Mock")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Operations.WithLabelValues("measurement", "Mock", "ok")))

	assert.Equal(t, 1, testutil.CollectAndCount(m.LastReading))

	require.NoError(t, mgr.Close(ctx))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ActiveSessions.WithLabelValues("Mock")))
	assert.Equal(t, 0, testutil.CollectAndCount(m.LastReading), "closed sessions leave no reading behind")
}

func TestHandler(t *testing.T) {
	m := New(true)
	m.SessionOpened("device_0001", meter.DeviceTypeMock)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `tsmeter_active_sessions{device_type="Mock"} 1`), body)
	assert.Contains(t, body, "go_goroutines")
}
