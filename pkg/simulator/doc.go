// Package simulator provides a multimeter that needs no hardware.
//
// A [Device] satisfies meter.Device and answers the same raw command
// vocabulary as a Fluke 289 (ID, QM, RI, RMP, DS), so callers using only
// the raw-command path cannot tell it from the real instrument.
//
// On connect the device draws one [Profile] at random: a sine-wave voltage
// or current, a slowly drifting temperature, a triangular resistance sweep,
// or a modulated frequency. Each reading is a deterministic function of the
// time since connect plus bounded uniform noise. Reset draws a new profile
// and restarts the clock.
//
// The random source belongs to the instance and can be seeded with
// [WithSeed]; together with [WithClock] tests can assert exact sequences.
package simulator
