package simulator

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/tsmultimeter/tsmeter-go/pkg/meter"
)

// ProfileKind selects the waveform a Profile generates.
type ProfileKind uint8

const (
	ProfileVoltageSine ProfileKind = iota
	ProfileTemperatureDrift
	ProfileResistanceSweep
	ProfileFrequencyPulse
	ProfileCurrentSine

	profileKindCount
)

// String returns the profile kind name.
func (k ProfileKind) String() string {
	switch k {
	case ProfileVoltageSine:
		return "VoltageSine"
	case ProfileTemperatureDrift:
		return "TemperatureDrift"
	case ProfileResistanceSweep:
		return "ResistanceSweep"
	case ProfileFrequencyPulse:
		return "FrequencyPulse"
	case ProfileCurrentSine:
		return "CurrentSine"
	default:
		return "Unknown"
	}
}

// Temperature readings are clamped to the meter's thermocouple range.
const (
	minCelsius = -40.0
	maxCelsius = 150.0
)

// Shortest periods the generator will use, in seconds.
const (
	minDriftPeriod = 60.0
	minSweepPeriod = 5.0
)

// Profile is one parameterized waveform. Which fields apply depends on Kind:
//   - VoltageSine, CurrentSine: Offset + Amplitude*sin(2*pi*FrequencyHz*t)
//   - FrequencyPulse: same shape around Offset, never below zero
//   - TemperatureDrift: Offset + Amplitude*sin(2*pi*t/PeriodSec)
//   - ResistanceSweep: triangle between Min and Max over PeriodSec
//
// Noise bounds the uniform noise added to every sample.
type Profile struct {
	Kind        ProfileKind
	Offset      float64
	Amplitude   float64
	FrequencyHz float64
	PeriodSec   float64
	Min         float64
	Max         float64
	Noise       float64
}

// RandomProfile draws a profile kind and its parameters from rng.
func RandomProfile(rng *rand.Rand) Profile {
	uniform := func(lo, hi float64) float64 { return lo + rng.Float64()*(hi-lo) }

	switch ProfileKind(rng.IntN(int(profileKindCount))) {
	case ProfileVoltageSine:
		return Profile{
			Kind:        ProfileVoltageSine,
			Offset:      uniform(0.5, 12.0),
			Amplitude:   uniform(0.25, 3.5),
			FrequencyHz: uniform(0.05, 0.5),
			Noise:       uniform(0.002, 0.025),
		}
	case ProfileTemperatureDrift:
		return Profile{
			Kind:      ProfileTemperatureDrift,
			Offset:    uniform(18.0, 35.0),
			Amplitude: uniform(1.0, 6.0),
			PeriodSec: uniform(180.0, 420.0),
			Noise:     uniform(0.05, 0.25),
		}
	case ProfileResistanceSweep:
		return Profile{
			Kind:      ProfileResistanceSweep,
			Min:       uniform(10.0, 500.0),
			Max:       uniform(5000.0, 50000.0),
			PeriodSec: uniform(8.0, 20.0),
			Noise:     uniform(0.5, 25.0),
		}
	case ProfileFrequencyPulse:
		return Profile{
			Kind:        ProfileFrequencyPulse,
			Offset:      uniform(800.0, 1200.0),
			Amplitude:   uniform(50.0, 250.0),
			FrequencyHz: uniform(0.2, 2.0),
			Noise:       uniform(1.0, 20.0),
		}
	default:
		return Profile{
			Kind:        ProfileCurrentSine,
			Offset:      uniform(0.2, 2.0),
			Amplitude:   uniform(0.1, 0.8),
			FrequencyHz: uniform(0.1, 0.7),
			Noise:       uniform(0.001, 0.02),
		}
	}
}

// Unit returns the unit readings of this profile carry.
func (p Profile) Unit() meter.Unit {
	switch p.Kind {
	case ProfileVoltageSine:
		return meter.UnitVoltDc
	case ProfileTemperatureDrift:
		return meter.UnitCelsius
	case ProfileResistanceSweep:
		return meter.UnitOhm
	case ProfileFrequencyPulse:
		return meter.UnitHertz
	case ProfileCurrentSine:
		return meter.UnitAmpDc
	default:
		return meter.UnitNone
	}
}

// Sample returns the value at elapsed time since the profile started.
func (p Profile) Sample(elapsed time.Duration, rng *rand.Rand) float64 {
	t := elapsed.Seconds()
	noise := (rng.Float64()*2 - 1) * p.Noise

	switch p.Kind {
	case ProfileVoltageSine:
		return p.Offset + p.Amplitude*math.Sin(2*math.Pi*p.FrequencyHz*t) + noise
	case ProfileTemperatureDrift:
		phase := 2 * math.Pi * t / math.Max(p.PeriodSec, minDriftPeriod)
		return clamp(p.Offset+p.Amplitude*math.Sin(phase)+noise, minCelsius, maxCelsius)
	case ProfileResistanceSweep:
		return p.triangle(t) + noise
	case ProfileFrequencyPulse:
		return math.Max(0, p.Offset+p.Amplitude*math.Sin(2*math.Pi*p.FrequencyHz*t)+noise)
	case ProfileCurrentSine:
		return math.Max(0, p.Offset+p.Amplitude*math.Sin(2*math.Pi*p.FrequencyHz*t)+noise)
	default:
		return 0
	}
}

// triangle ramps Min to Max over the first half period and back.
func (p Profile) triangle(t float64) float64 {
	period := math.Max(p.PeriodSec, minSweepPeriod)
	phase := math.Mod(t/period, 1)
	span := p.Max - p.Min
	if phase < 0.5 {
		return p.Min + span*phase*2
	}
	return p.Max - span*(phase-0.5)*2
}

// Bounds returns the closed range every Sample of this profile falls in,
// noise included.
func (p Profile) Bounds() (lo, hi float64) {
	switch p.Kind {
	case ProfileVoltageSine:
		return p.Offset - p.Amplitude - p.Noise, p.Offset + p.Amplitude + p.Noise
	case ProfileTemperatureDrift:
		return clamp(p.Offset-p.Amplitude-p.Noise, minCelsius, maxCelsius),
			clamp(p.Offset+p.Amplitude+p.Noise, minCelsius, maxCelsius)
	case ProfileResistanceSweep:
		return p.Min - p.Noise, p.Max + p.Noise
	case ProfileFrequencyPulse, ProfileCurrentSine:
		return math.Max(0, p.Offset-p.Amplitude-p.Noise), p.Offset + p.Amplitude + p.Noise
	default:
		return 0, 0
	}
}

// String describes the profile for logs.
func (p Profile) String() string {
	switch p.Kind {
	case ProfileResistanceSweep:
		return fmt.Sprintf("%s(min=%.1f max=%.1f period=%.1fs noise=%.3f)", p.Kind, p.Min, p.Max, p.PeriodSec, p.Noise)
	case ProfileTemperatureDrift:
		return fmt.Sprintf("%s(base=%.2f swing=%.2f period=%.0fs noise=%.3f)", p.Kind, p.Offset, p.Amplitude, p.PeriodSec, p.Noise)
	default:
		return fmt.Sprintf("%s(offset=%.3f amp=%.3f freq=%.3fHz noise=%.3f)", p.Kind, p.Offset, p.Amplitude, p.FrequencyHz, p.Noise)
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
