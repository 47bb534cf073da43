package interactive

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tsmultimeter/tsmeter-go/pkg/meter"
)

// target returns the session named in args or the current one.
func (c *Console) target(args []string) (string, bool) {
	if len(args) > 0 {
		return args[0], true
	}
	if c.current == "" {
		fmt.Fprintln(c.out, "No current session (connect or use one first)")
		return "", false
	}
	return c.current, true
}

func (c *Console) printError(err error) {
	if kind := meter.Kind(err); kind != "" && kind != "internal" {
		fmt.Fprintf(c.out, "Error (%s): %v\n", kind, err)
		return
	}
	fmt.Fprintf(c.out, "Error: %v\n", err)
}

// cmdConnect connects a meter and makes it the current session.
func (c *Console) cmdConnect(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.out, "Usage: connect <type> [port]")
		fmt.Fprintln(c.out, "  Types: Fluke289, Fluke287, Mock")
		return
	}

	deviceType, err := meter.ParseDeviceType(args[0])
	if err != nil {
		c.printError(err)
		return
	}
	var port string
	if len(args) > 1 {
		port = args[1]
	}
	if deviceType.IsSerial() && port == "" {
		fmt.Fprintf(c.out, "%s needs a serial port (see 'ports')\n", deviceType)
		return
	}

	res, err := c.sessions.Connect(ctx, deviceType, port)
	if err != nil {
		c.printError(err)
		return
	}
	c.current = res.ID
	fmt.Fprintf(c.out, "Connected %s: %s (software %s, serial %s)\n",
		res.ID, res.Info.Model, res.Info.SoftwareVersion, res.Info.SerialNumber)
}

// cmdUse changes the current session.
func (c *Console) cmdUse(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.out, "Usage: use <id>")
		return
	}
	if _, err := c.sessions.Status(args[0]); err != nil {
		c.printError(err)
		return
	}
	c.current = args[0]
	fmt.Fprintf(c.out, "Current session: %s\n", c.current)
}

// cmdList shows every connected session.
func (c *Console) cmdList() {
	list := c.sessions.List()
	if len(list) == 0 {
		fmt.Fprintln(c.out, "No sessions")
		return
	}

	fmt.Fprintln(c.out, "\nSessions:")
	fmt.Fprintln(c.out, "-------------------------------------------")
	for _, s := range list {
		marker := " "
		if s.ID == c.current {
			marker = "*"
		}
		where := s.Port
		if where == "" {
			where = "-"
		}
		fmt.Fprintf(c.out, "%s %-12s %-9s %-14s %s\n", marker, s.ID, s.DeviceType, where, s.Info.Model)
	}
}

// cmdPorts lists serial ports.
func (c *Console) cmdPorts() {
	ports, err := c.ports()
	if err != nil {
		c.printError(err)
		return
	}
	if len(ports) == 0 {
		fmt.Fprintln(c.out, "No serial ports found")
		return
	}
	for _, p := range ports {
		if p.IsUSB {
			fmt.Fprintf(c.out, "  %-20s USB %s:%s %s\n", p.Name, p.VID, p.PID, p.Product)
		} else {
			fmt.Fprintf(c.out, "  %s\n", p.Name)
		}
	}
}

// cmdStatus shows one session.
func (c *Console) cmdStatus(args []string) {
	id, ok := c.target(args)
	if !ok {
		return
	}
	st, err := c.sessions.Status(id)
	if err != nil {
		c.printError(err)
		return
	}

	fmt.Fprintln(c.out, "\nSession Status")
	fmt.Fprintln(c.out, "-------------------------------------------")
	fmt.Fprintf(c.out, "  Session ID:     %s\n", st.ID)
	fmt.Fprintf(c.out, "  Device Type:    %s\n", st.DeviceType)
	if st.Port != "" {
		fmt.Fprintf(c.out, "  Port:           %s\n", st.Port)
	}
	fmt.Fprintf(c.out, "  Model:          %s\n", st.Info.Model)
	fmt.Fprintf(c.out, "  Software:       %s\n", st.Info.SoftwareVersion)
	fmt.Fprintf(c.out, "  Serial Number:  %s\n", st.Info.SerialNumber)
	fmt.Fprintf(c.out, "  Connected:      %v\n", st.Connected)
	fmt.Fprintf(c.out, "  Since:          %s\n", st.ConnectedAt.Format(time.RFC3339))
}

// cmdMeasure takes one reading.
func (c *Console) cmdMeasure(ctx context.Context, args []string) {
	id, ok := c.target(args)
	if !ok {
		return
	}
	m, err := c.sessions.Measurement(ctx, id)
	if err != nil {
		c.printError(err)
		return
	}
	fmt.Fprintf(c.out, "%s: %s\n", id, m)
}

// cmdReset resets the instrument.
func (c *Console) cmdReset(ctx context.Context, args []string) {
	id, ok := c.target(args)
	if !ok {
		return
	}
	msg, err := c.sessions.Reset(ctx, id)
	if err != nil {
		c.printError(err)
		return
	}
	fmt.Fprintln(c.out, msg)
}

// cmdRaw sends a command line verbatim to the current session.
func (c *Console) cmdRaw(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.out, "Usage: raw <command>")
		fmt.Fprintln(c.out, "  Examples: raw ID, raw QM, raw RI")
		return
	}
	id, ok := c.target(nil)
	if !ok {
		return
	}
	command := strings.Join(args, " ")
	resp, err := c.sessions.SendCommand(ctx, id, command)
	if err != nil {
		c.printError(err)
		return
	}
	fmt.Fprintf(c.out, "%s -> %q\n", command, resp)
}

// cmdDisconnect removes a session.
func (c *Console) cmdDisconnect(ctx context.Context, args []string) {
	id, ok := c.target(args)
	if !ok {
		return
	}
	if id == c.watching() {
		c.stopWatch()
	}
	msg, err := c.sessions.Disconnect(ctx, id)
	// The session is gone whether or not the device closed cleanly.
	if id == c.current {
		c.current = ""
	}
	if err != nil {
		c.printError(err)
		return
	}
	fmt.Fprintln(c.out, msg)
}

// cmdTrace switches the serial trace.
func (c *Console) cmdTrace(args []string) {
	if len(args) < 1 {
		state := "off"
		if c.trace.Enabled() {
			state = "on"
		}
		fmt.Fprintf(c.out, "Trace is %s\n", state)
		return
	}
	switch strings.ToLower(args[0]) {
	case "on":
		c.trace.SetEnabled(true)
		fmt.Fprintln(c.out, "Trace on")
	case "off":
		c.trace.SetEnabled(false)
		fmt.Fprintln(c.out, "Trace off")
	default:
		fmt.Fprintln(c.out, "Usage: trace on|off")
	}
}
