package wire

import "strings"

// Commands understood by the Fluke 287/289.
const (
	// CmdIdentify returns model, software version and serial number.
	CmdIdentify = "ID"

	// CmdQueryMeasurement returns the primary display reading.
	CmdQueryMeasurement = "QM"

	// CmdResetInstrument resets the meter.
	CmdResetInstrument = "RI"

	// CmdResetMeterProperties restores meter properties to factory values.
	CmdResetMeterProperties = "RMP"

	// CmdDefaultSetup restores the default setup.
	CmdDefaultSetup = "DS"
)

// CanonicalCommand trims surrounding whitespace and upper-cases a command
// typed by a user. The instrument itself is case-sensitive.
func CanonicalCommand(command string) string {
	return strings.ToUpper(strings.TrimSpace(command))
}
