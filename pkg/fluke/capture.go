package fluke

import (
	"time"

	"github.com/tsmultimeter/tsmeter-go/pkg/log"
	"github.com/tsmultimeter/tsmeter-go/pkg/meter"
)

// MaxLogFrameDataSize is the maximum number of bytes kept in a captured frame.
const MaxLogFrameDataSize = 4096

func (d *Device) emit(e log.Event) {
	if d.cfg.ProtocolLogger == nil {
		return
	}
	e.Timestamp = time.Now()
	e.ConnectionID = d.connID
	e.DeviceType = d.deviceType.String()
	e.Port = d.cfg.Port
	if id, ok := d.sessionID.Load().(string); ok {
		e.SessionID = id
	}
	d.cfg.ProtocolLogger.Log(e)
}

func (d *Device) emitFrame(dir log.Direction, data []byte) {
	if d.cfg.ProtocolLogger == nil {
		return
	}
	fe := &log.FrameEvent{Size: len(data)}
	if len(data) > MaxLogFrameDataSize {
		fe.Data = append([]byte(nil), data[:MaxLogFrameDataSize]...)
		fe.Truncated = true
	} else {
		fe.Data = append([]byte(nil), data...)
	}
	d.emit(log.Event{
		Direction: dir,
		Layer:     log.LayerTransport,
		Category:  log.CategoryMessage,
		Frame:     fe,
	})
}

func (d *Device) emitMessage(msg *log.MessageEvent, dir log.Direction) {
	d.emit(log.Event{
		Direction: dir,
		Layer:     log.LayerWire,
		Category:  log.CategoryMessage,
		Message:   msg,
	})
}

func (d *Device) emitState(from, to, reason string) {
	d.emit(log.Event{
		Layer:    log.LayerTransport,
		Category: log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityConnection,
			OldState: from,
			NewState: to,
			Reason:   reason,
		},
	})
}

// fail records err as a capture event and returns it unchanged.
func (d *Device) fail(command string, err error) error {
	d.emit(log.Event{
		Layer:    log.LayerTransport,
		Category: log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   log.LayerTransport,
			Message: err.Error(),
			Kind:    meter.Kind(err),
			Context: command,
		},
	})
	return err
}
