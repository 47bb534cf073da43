package wire

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tsmultimeter/tsmeter-go/pkg/meter"
)

// ParseIdentification decodes an ID payload ("FLUKE 289,V1.00,95081087").
// Fields are trimmed; anything past the third field is ignored.
func ParseIdentification(payload string) (meter.DeviceInfo, error) {
	if payload == "" {
		return meter.DeviceInfo{}, fmt.Errorf("%w: identification payload missing", meter.ErrParse)
	}
	parts := strings.Split(payload, ",")
	if len(parts) < 3 {
		return meter.DeviceInfo{}, fmt.Errorf("%w: invalid identification response: %q", meter.ErrParse, payload)
	}
	return meter.DeviceInfo{
		Model:           strings.TrimSpace(parts[0]),
		SoftwareVersion: strings.TrimSpace(parts[1]),
		SerialNumber:    strings.TrimSpace(parts[2]),
	}, nil
}

// EncodeIdentification builds the ID payload for info.
func EncodeIdentification(info meter.DeviceInfo) string {
	return info.Model + "," + info.SoftwareVersion + "," + info.SerialNumber
}

// ParseMeasurement decodes a QM payload ("3.300000,VDC,NORMAL,NONE").
// The timestamp is set to capturedAt; the wire carries none.
func ParseMeasurement(payload string, capturedAt time.Time) (meter.Measurement, error) {
	if payload == "" {
		return meter.Measurement{}, fmt.Errorf("%w: measurement payload missing", meter.ErrParse)
	}
	parts := strings.Split(payload, ",")
	if len(parts) < 4 {
		return meter.Measurement{}, fmt.Errorf("%w: invalid measurement response format: %q", meter.ErrParse, payload)
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return meter.Measurement{}, fmt.Errorf("%w: invalid measurement value: %s", meter.ErrParse, parts[0])
	}
	unit, err := DecodeUnit(strings.TrimSpace(parts[1]))
	if err != nil {
		return meter.Measurement{}, err
	}
	state, err := DecodeState(strings.TrimSpace(parts[2]))
	if err != nil {
		return meter.Measurement{}, err
	}
	attr, err := DecodeAttribute(strings.TrimSpace(parts[3]))
	if err != nil {
		return meter.Measurement{}, err
	}

	ts := capturedAt
	return meter.Measurement{
		Value:     value,
		Unit:      unit,
		State:     state,
		Attribute: attr,
		Timestamp: &ts,
	}, nil
}

// EncodeMeasurement builds the QM payload for m with six decimal places,
// the precision the instrument uses.
func EncodeMeasurement(m meter.Measurement) (string, error) {
	unit, err := EncodeUnit(m.Unit)
	if err != nil {
		return "", err
	}
	state, err := EncodeState(m.State)
	if err != nil {
		return "", err
	}
	attr, err := EncodeAttribute(m.Attribute)
	if err != nil {
		return "", err
	}
	return strconv.FormatFloat(m.Value, 'f', 6, 64) + "," + unit + "," + state + "," + attr, nil
}
