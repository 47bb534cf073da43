package interactive

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/tsmultimeter/tsmeter-go/pkg/log"
)

// Trace is a capture logger that prints serial frames and errors while
// enabled. It starts disabled.
type Trace struct {
	w       io.Writer
	enabled atomic.Bool
}

// NewTrace creates a disabled Trace writing to w.
func NewTrace(w io.Writer) *Trace {
	return &Trace{w: w}
}

// SetEnabled switches printing on or off.
func (t *Trace) SetEnabled(on bool) {
	t.enabled.Store(on)
}

// Enabled reports whether events are printed.
func (t *Trace) Enabled() bool {
	return t.enabled.Load()
}

// Log prints transport frames, session changes and errors.
func (t *Trace) Log(event log.Event) {
	if !t.enabled.Load() {
		return
	}

	who := event.SessionID
	if who == "" {
		who = event.DeviceType
	}

	switch {
	case event.Frame != nil:
		arrow := "<<"
		if event.Direction == log.DirectionOut {
			arrow = ">>"
		}
		fmt.Fprintf(t.w, "  %s %s %s\n", who, arrow, log.Printable(event.Frame.Data))
	case event.StateChange != nil:
		fmt.Fprintf(t.w, "  %s %s: %s -> %s\n", who, event.StateChange.Entity, event.StateChange.OldState, event.StateChange.NewState)
	case event.Error != nil:
		fmt.Fprintf(t.w, "  %s !! %s\n", who, event.Error.Message)
	}
}

var _ log.Logger = (*Trace)(nil)
