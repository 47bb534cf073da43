package meter

import (
	"fmt"
	"strings"
	"time"
)

// DeviceType selects which device implementation the factory builds.
type DeviceType uint8

const (
	// DeviceTypeFluke289 is a Fluke 289 on a serial port.
	DeviceTypeFluke289 DeviceType = 0

	// DeviceTypeFluke287 is a Fluke 287 on a serial port. It shares the
	// Fluke 289 protocol; only the identification string differs.
	DeviceTypeFluke287 DeviceType = 1

	// DeviceTypeMock is the in-process signal generator.
	DeviceTypeMock DeviceType = 2
)

// String returns the device type name.
func (t DeviceType) String() string {
	switch t {
	case DeviceTypeFluke289:
		return "Fluke289"
	case DeviceTypeFluke287:
		return "Fluke287"
	case DeviceTypeMock:
		return "Mock"
	default:
		return "Unknown"
	}
}

// IsSerial reports whether the device type needs a serial port.
func (t DeviceType) IsSerial() bool {
	return t == DeviceTypeFluke289 || t == DeviceTypeFluke287
}

// DeviceTypes lists every supported device type.
func DeviceTypes() []DeviceType {
	return []DeviceType{DeviceTypeFluke289, DeviceTypeFluke287, DeviceTypeMock}
}

// ParseDeviceType returns the device type with the given name.
// Matching ignores case so "mock" and "FLUKE289" are accepted.
func ParseDeviceType(s string) (DeviceType, error) {
	for _, t := range DeviceTypes() {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: invalid device type %q", ErrConfig, s)
}

// MarshalText implements encoding.TextMarshaler.
func (t DeviceType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *DeviceType) UnmarshalText(b []byte) error {
	v, err := ParseDeviceType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Unit is the measurement unit reported by the instrument.
type Unit uint8

const (
	UnitNone Unit = iota
	UnitVoltDc
	UnitVoltAc
	UnitAmpDc
	UnitAmpAc
	UnitVoltAcPlusDc
	UnitAmpAcPlusDc
	UnitVolt
	UnitAmp
	UnitOhm
	UnitSiemens
	UnitHertz
	UnitSecond
	UnitFarad
	UnitCelsius
	UnitFahrenheit
	UnitPercent
	UnitDecibelM
	UnitDecibelV
	UnitDecibel
	UnitCrestFactor
)

var unitNames = [...]string{
	UnitNone:         "None",
	UnitVoltDc:       "VoltDc",
	UnitVoltAc:       "VoltAc",
	UnitAmpDc:        "AmpDc",
	UnitAmpAc:        "AmpAc",
	UnitVoltAcPlusDc: "VoltAcPlusDc",
	UnitAmpAcPlusDc:  "AmpAcPlusDc",
	UnitVolt:         "Volt",
	UnitAmp:          "Amp",
	UnitOhm:          "Ohm",
	UnitSiemens:      "Siemens",
	UnitHertz:        "Hertz",
	UnitSecond:       "Second",
	UnitFarad:        "Farad",
	UnitCelsius:      "Celsius",
	UnitFahrenheit:   "Fahrenheit",
	UnitPercent:      "Percent",
	UnitDecibelM:     "DecibelM",
	UnitDecibelV:     "DecibelV",
	UnitDecibel:      "Decibel",
	UnitCrestFactor:  "CrestFactor",
}

// Units lists every unit in declaration order.
func Units() []Unit {
	out := make([]Unit, len(unitNames))
	for i := range unitNames {
		out[i] = Unit(i)
	}
	return out
}

// String returns the unit name.
func (u Unit) String() string {
	if int(u) < len(unitNames) {
		return unitNames[u]
	}
	return "Unknown"
}

// ParseUnit returns the unit with the given canonical name.
func ParseUnit(s string) (Unit, error) {
	for i, name := range unitNames {
		if name == s {
			return Unit(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown unit name %q", ErrParse, s)
}

// MarshalText implements encoding.TextMarshaler.
func (u Unit) MarshalText() ([]byte, error) {
	if int(u) >= len(unitNames) {
		return nil, fmt.Errorf("unit %d out of range", uint8(u))
	}
	return []byte(unitNames[u]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *Unit) UnmarshalText(b []byte) error {
	v, err := ParseUnit(string(b))
	if err != nil {
		return err
	}
	*u = v
	return nil
}

// MeasurementState qualifies a reading (normal, overload, open thermocouple...).
type MeasurementState uint8

const (
	StateNormal MeasurementState = iota
	StateInvalid
	StateBlank
	StateOverload
	StateOverloadNegative
	StateOpenThermocouple
	StateDischarge
)

var stateNames = [...]string{
	StateNormal:           "Normal",
	StateInvalid:          "Invalid",
	StateBlank:            "Blank",
	StateOverload:         "Overload",
	StateOverloadNegative: "OverloadNegative",
	StateOpenThermocouple: "OpenThermocouple",
	StateDischarge:        "Discharge",
}

// MeasurementStates lists every state in declaration order.
func MeasurementStates() []MeasurementState {
	out := make([]MeasurementState, len(stateNames))
	for i := range stateNames {
		out[i] = MeasurementState(i)
	}
	return out
}

// String returns the state name.
func (s MeasurementState) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}

// ParseMeasurementState returns the state with the given canonical name.
func ParseMeasurementState(s string) (MeasurementState, error) {
	for i, name := range stateNames {
		if name == s {
			return MeasurementState(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown state name %q", ErrParse, s)
}

// MarshalText implements encoding.TextMarshaler.
func (s MeasurementState) MarshalText() ([]byte, error) {
	if int(s) >= len(stateNames) {
		return nil, fmt.Errorf("state %d out of range", uint8(s))
	}
	return []byte(stateNames[s]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *MeasurementState) UnmarshalText(b []byte) error {
	v, err := ParseMeasurementState(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// MeasurementAttribute carries the extra flag the meter attaches to a reading.
type MeasurementAttribute uint8

const (
	AttributeNone MeasurementAttribute = iota
	AttributeOpenCircuit
	AttributeShortCircuit
	AttributeGlitchCircuit
	AttributeGoodDiode
	AttributeLowOhms
	AttributeNegativeEdge
	AttributePositiveEdge
	AttributeHighCurrent
)

var attributeNames = [...]string{
	AttributeNone:          "None",
	AttributeOpenCircuit:   "OpenCircuit",
	AttributeShortCircuit:  "ShortCircuit",
	AttributeGlitchCircuit: "GlitchCircuit",
	AttributeGoodDiode:     "GoodDiode",
	AttributeLowOhms:       "LowOhms",
	AttributeNegativeEdge:  "NegativeEdge",
	AttributePositiveEdge:  "PositiveEdge",
	AttributeHighCurrent:   "HighCurrent",
}

// MeasurementAttributes lists every attribute in declaration order.
func MeasurementAttributes() []MeasurementAttribute {
	out := make([]MeasurementAttribute, len(attributeNames))
	for i := range attributeNames {
		out[i] = MeasurementAttribute(i)
	}
	return out
}

// String returns the attribute name.
func (a MeasurementAttribute) String() string {
	if int(a) < len(attributeNames) {
		return attributeNames[a]
	}
	return "Unknown"
}

// ParseMeasurementAttribute returns the attribute with the given canonical name.
func ParseMeasurementAttribute(s string) (MeasurementAttribute, error) {
	for i, name := range attributeNames {
		if name == s {
			return MeasurementAttribute(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown attribute name %q", ErrParse, s)
}

// MarshalText implements encoding.TextMarshaler.
func (a MeasurementAttribute) MarshalText() ([]byte, error) {
	if int(a) >= len(attributeNames) {
		return nil, fmt.Errorf("attribute %d out of range", uint8(a))
	}
	return []byte(attributeNames[a]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *MeasurementAttribute) UnmarshalText(b []byte) error {
	v, err := ParseMeasurementAttribute(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Measurement is one reading. It is built once and never modified.
type Measurement struct {
	Value     float64              `json:"value"`
	Unit      Unit                 `json:"unit"`
	State     MeasurementState     `json:"state"`
	Attribute MeasurementAttribute `json:"attribute"`

	// Timestamp is the capture time, not a value taken from the wire.
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// String formats the measurement for consoles and logs.
func (m Measurement) String() string {
	s := fmt.Sprintf("%g %s", m.Value, m.Unit)
	if m.State != StateNormal {
		s += " [" + m.State.String() + "]"
	}
	if m.Attribute != AttributeNone {
		s += " (" + m.Attribute.String() + ")"
	}
	return s
}

// DeviceInfo is the identification returned by the instrument.
type DeviceInfo struct {
	Model           string `json:"model"`
	SerialNumber    string `json:"serial_number"`
	SoftwareVersion string `json:"software_version"`
}
