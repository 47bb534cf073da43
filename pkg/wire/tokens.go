package wire

import (
	"fmt"

	"github.com/tsmultimeter/tsmeter-go/pkg/meter"
)

var unitTokens = map[meter.Unit]string{
	meter.UnitNone:         "NONE",
	meter.UnitVoltDc:       "VDC",
	meter.UnitVoltAc:       "VAC",
	meter.UnitAmpDc:        "ADC",
	meter.UnitAmpAc:        "AAC",
	meter.UnitVoltAcPlusDc: "VAC_PLUS_DC",
	meter.UnitAmpAcPlusDc:  "AAC_PLUS_DC",
	meter.UnitVolt:         "V",
	meter.UnitAmp:          "A",
	meter.UnitOhm:          "OHM",
	meter.UnitSiemens:      "S",
	meter.UnitHertz:        "Hz",
	meter.UnitSecond:       "SEC",
	meter.UnitFarad:        "F",
	meter.UnitCelsius:      "CEL",
	meter.UnitFahrenheit:   "FAR",
	meter.UnitPercent:      "PCT",
	meter.UnitDecibelM:     "dBm",
	meter.UnitDecibelV:     "dBV",
	meter.UnitDecibel:      "dB",
	meter.UnitCrestFactor:  "CREST_FACTOR",
}

var stateTokens = map[meter.MeasurementState]string{
	meter.StateNormal:           "NORMAL",
	meter.StateInvalid:          "INVALID",
	meter.StateBlank:            "BLANK",
	meter.StateOverload:         "OL",
	meter.StateOverloadNegative: "OL_MINUS",
	meter.StateOpenThermocouple: "OPEN_TC",
	meter.StateDischarge:        "DISCHARGE",
}

var attributeTokens = map[meter.MeasurementAttribute]string{
	meter.AttributeNone:          "NONE",
	meter.AttributeOpenCircuit:   "OPEN_CIRCUIT",
	meter.AttributeShortCircuit:  "SHORT_CIRCUIT",
	meter.AttributeGlitchCircuit: "GLITCH_CIRCUIT",
	meter.AttributeGoodDiode:     "GOOD_DIODE",
	meter.AttributeLowOhms:       "LEO_OHMS",
	meter.AttributeNegativeEdge:  "NEGATIVE_EDGE",
	meter.AttributePositiveEdge:  "POSITIVE_EDGE",
	meter.AttributeHighCurrent:   "HIGH_CURRENT",
}

// Reverse lookups, built once.
var (
	unitByToken      = invert(unitTokens)
	stateByToken     = invert(stateTokens)
	attributeByToken = invert(attributeTokens)
)

func invert[K comparable](m map[K]string) map[string]K {
	out := make(map[string]K, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// DecodeUnit maps a wire token to a unit. Tokens are case-sensitive
// ("Hz" and "dBm" are mixed case on the wire).
func DecodeUnit(token string) (meter.Unit, error) {
	u, ok := unitByToken[token]
	if !ok {
		return 0, fmt.Errorf("%w: unknown unit: %s", meter.ErrParse, token)
	}
	return u, nil
}

// EncodeUnit returns the wire token for a unit.
func EncodeUnit(u meter.Unit) (string, error) {
	tok, ok := unitTokens[u]
	if !ok {
		return "", fmt.Errorf("%w: no wire token for unit %d", meter.ErrParse, uint8(u))
	}
	return tok, nil
}

// DecodeState maps a wire token to a measurement state.
func DecodeState(token string) (meter.MeasurementState, error) {
	s, ok := stateByToken[token]
	if !ok {
		return 0, fmt.Errorf("%w: unknown state: %s", meter.ErrParse, token)
	}
	return s, nil
}

// EncodeState returns the wire token for a measurement state.
func EncodeState(s meter.MeasurementState) (string, error) {
	tok, ok := stateTokens[s]
	if !ok {
		return "", fmt.Errorf("%w: no wire token for state %d", meter.ErrParse, uint8(s))
	}
	return tok, nil
}

// DecodeAttribute maps a wire token to a measurement attribute.
func DecodeAttribute(token string) (meter.MeasurementAttribute, error) {
	a, ok := attributeByToken[token]
	if !ok {
		return 0, fmt.Errorf("%w: unknown attribute: %s", meter.ErrParse, token)
	}
	return a, nil
}

// EncodeAttribute returns the wire token for a measurement attribute.
func EncodeAttribute(a meter.MeasurementAttribute) (string, error) {
	tok, ok := attributeTokens[a]
	if !ok {
		return "", fmt.Errorf("%w: no wire token for attribute %d", meter.ErrParse, uint8(a))
	}
	return tok, nil
}
