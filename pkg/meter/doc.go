// Package meter defines the shared vocabulary of the tsmeter driver.
//
// Everything that talks to an instrument, real or simulated, speaks in the
// types declared here: the [Device] contract, the [Measurement] and
// [DeviceInfo] records it produces, and the closed enumerations for
// [DeviceType], [Unit], [MeasurementState] and [MeasurementAttribute].
//
// # Enumerations
//
// All enumerations serialize by name ("VoltDc", "Overload", "Fluke289")
// rather than by numeric code, so JSON clients stay compatible when new
// values are appended. Wire tokens used by the instrument ("VDC", "OL")
// live in package wire; this package only knows canonical names.
//
// # Errors
//
// Failures are classified with the sentinel errors in errors.go and wrapped
// with context using fmt.Errorf("%w: ..."). Callers test the class with
// errors.Is and render the message text unchanged.
package meter
