package wire

import (
	"errors"
	"testing"
	"time"

	"github.com/tsmultimeter/tsmeter-go/pkg/meter"
)

func TestParseAck(t *testing.T) {
	tests := []struct {
		name     string
		response string
		wantErr  error
	}{
		{"Success", "0", nil},
		{"SuccessWithPayload", "03.3,VDC,NORMAL,NONE", nil},
		{"SyntaxError", "1", meter.ErrInvalidCommand},
		{"ExecutionError", "2", meter.ErrDevice},
		{"NoData", "5", meter.ErrDevice},
		{"UnknownCode", "7", meter.ErrParse},
		{"Letter", "X", meter.ErrParse},
		{"Empty", "", meter.ErrParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckAck(tt.response)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("CheckAck(%q) = %v, want nil", tt.response, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CheckAck(%q) = %v, want %v", tt.response, err, tt.wantErr)
			}
		})
	}
}

func TestAckMessages(t *testing.T) {
	tests := []struct {
		response string
		want     string
	}{
		{"1", "invalid command: syntax error"},
		{"2", "device error: execution error"},
		{"5", "device error: no data available"},
		{"9", "parse error: unknown ACK code: 9"},
		{"", "parse error: empty response"},
	}
	for _, tt := range tests {
		err := CheckAck(tt.response)
		if err == nil || err.Error() != tt.want {
			t.Errorf("CheckAck(%q) = %v, want %q", tt.response, err, tt.want)
		}
	}
}

func TestAckString(t *testing.T) {
	if AckNoData.String() != "NO_DATA" {
		t.Errorf("AckNoData.String() = %q", AckNoData.String())
	}
	if !AckSuccess.IsSuccess() || AckSyntaxError.IsSuccess() {
		t.Error("IsSuccess mismatch")
	}
	if AckNoData.Byte() != '5' {
		t.Errorf("AckNoData.Byte() = %q, want '5'", AckNoData.Byte())
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"AckAndPayload", "0\r3.300000,VDC,NORMAL,NONE\r", "03.300000,VDC,NORMAL,NONE"},
		{"AckOnly", "0\r", "0"},
		{"LineFeeds", "0\r\nFLUKE 289,V1.00,95081087\r\n", "0\nFLUKE 289,V1.00,95081087"},
		{"EmptySegments", "\r\r0\r\rX\r", "0X"},
		{"Empty", "", ""},
		{"OnlyTerminators", "\r\r", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.raw); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestFrame(t *testing.T) {
	if got := string(Frame("QM")); got != "QM\r" {
		t.Errorf("Frame(QM) = %q", got)
	}
	if got := CountTerminators([]byte("0\rabc\r")); got != 2 {
		t.Errorf("CountTerminators = %d, want 2", got)
	}
	if got := EncodeResponse(AckSuccess, ""); got != "0\r" {
		t.Errorf("EncodeResponse ack-only = %q", got)
	}
	if got := EncodeResponse(AckSyntaxError, ""); got != "1\r" {
		t.Errorf("EncodeResponse syntax error = %q", got)
	}
	if got := EncodeResponse(AckSuccess, "X"); got != "0\rX\r" {
		t.Errorf("EncodeResponse with payload = %q", got)
	}
}

func TestParseIdentification(t *testing.T) {
	t.Run("Fluke289", func(t *testing.T) {
		resp := Normalize("0\rFLUKE 289,V1.00,95081087\r")
		if err := CheckAck(resp); err != nil {
			t.Fatalf("CheckAck failed: %v", err)
		}
		info, err := ParseIdentification(Payload(resp))
		if err != nil {
			t.Fatalf("ParseIdentification failed: %v", err)
		}
		want := meter.DeviceInfo{Model: "FLUKE 289", SoftwareVersion: "V1.00", SerialNumber: "95081087"}
		if info != want {
			t.Errorf("ParseIdentification = %+v, want %+v", info, want)
		}
	})

	t.Run("TrimsFields", func(t *testing.T) {
		info, err := ParseIdentification(" FLUKE 287 , V2.10 , 123 ")
		if err != nil {
			t.Fatalf("ParseIdentification failed: %v", err)
		}
		if info.Model != "FLUKE 287" || info.SoftwareVersion != "V2.10" || info.SerialNumber != "123" {
			t.Errorf("ParseIdentification = %+v", info)
		}
	})

	t.Run("TooFewFields", func(t *testing.T) {
		_, err := ParseIdentification("FLUKE 289,V1.00")
		if !errors.Is(err, meter.ErrParse) {
			t.Errorf("error = %v, want ErrParse", err)
		}
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := ParseIdentification("")
		if !errors.Is(err, meter.ErrParse) {
			t.Errorf("error = %v, want ErrParse", err)
		}
	})
}

func TestParseMeasurement(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("VoltDc", func(t *testing.T) {
		resp := Normalize("0\r3.300000,VDC,NORMAL,NONE\r")
		m, err := ParseMeasurement(Payload(resp), now)
		if err != nil {
			t.Fatalf("ParseMeasurement failed: %v", err)
		}
		if m.Value != 3.3 || m.Unit != meter.UnitVoltDc || m.State != meter.StateNormal || m.Attribute != meter.AttributeNone {
			t.Errorf("ParseMeasurement = %+v", m)
		}
		if m.Timestamp == nil || !m.Timestamp.Equal(now) {
			t.Errorf("Timestamp = %v, want %v", m.Timestamp, now)
		}
	})

	t.Run("ExtraFieldsIgnored", func(t *testing.T) {
		m, err := ParseMeasurement("-1.5E+1,CEL,OPEN_TC,NONE,extra", now)
		if err != nil {
			t.Fatalf("ParseMeasurement failed: %v", err)
		}
		if m.Value != -15 || m.Unit != meter.UnitCelsius || m.State != meter.StateOpenThermocouple {
			t.Errorf("ParseMeasurement = %+v", m)
		}
	})

	errCases := []struct {
		name    string
		payload string
		msg     string
	}{
		{"TooFewFields", "3.3,VDC,NORMAL", ""},
		{"BadValue", "abc,VDC,NORMAL,NONE", "parse error: invalid measurement value: abc"},
		{"UnknownUnit", "3.3,VOLTS,NORMAL,NONE", "parse error: unknown unit: VOLTS"},
		{"UnknownState", "3.3,VDC,WEIRD,NONE", "parse error: unknown state: WEIRD"},
		{"UnknownAttribute", "3.3,VDC,NORMAL,SPARKLY", "parse error: unknown attribute: SPARKLY"},
		{"Empty", "", ""},
	}
	for _, tt := range errCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMeasurement(tt.payload, now)
			if !errors.Is(err, meter.ErrParse) {
				t.Fatalf("error = %v, want ErrParse", err)
			}
			if tt.msg != "" && err.Error() != tt.msg {
				t.Errorf("error = %q, want %q", err.Error(), tt.msg)
			}
		})
	}
}

func TestTokensRoundTrip(t *testing.T) {
	for _, u := range meter.Units() {
		tok, err := EncodeUnit(u)
		if err != nil {
			t.Fatalf("EncodeUnit(%v) failed: %v", u, err)
		}
		got, err := DecodeUnit(tok)
		if err != nil || got != u {
			t.Errorf("DecodeUnit(%q) = %v, %v; want %v", tok, got, err, u)
		}
	}
	for _, s := range meter.MeasurementStates() {
		tok, err := EncodeState(s)
		if err != nil {
			t.Fatalf("EncodeState(%v) failed: %v", s, err)
		}
		got, err := DecodeState(tok)
		if err != nil || got != s {
			t.Errorf("DecodeState(%q) = %v, %v; want %v", tok, got, err, s)
		}
	}
	for _, a := range meter.MeasurementAttributes() {
		tok, err := EncodeAttribute(a)
		if err != nil {
			t.Fatalf("EncodeAttribute(%v) failed: %v", a, err)
		}
		got, err := DecodeAttribute(tok)
		if err != nil || got != a {
			t.Errorf("DecodeAttribute(%q) = %v, %v; want %v", tok, got, err, a)
		}
	}
}

func TestTokensCaseSensitive(t *testing.T) {
	for _, tok := range []string{"hz", "HZ", "vdc", "DBM", "ol", "leo_ohms"} {
		_, errU := DecodeUnit(tok)
		_, errS := DecodeState(tok)
		_, errA := DecodeAttribute(tok)
		if !errors.Is(errU, meter.ErrParse) || !errors.Is(errS, meter.ErrParse) || !errors.Is(errA, meter.ErrParse) {
			t.Errorf("token %q decoded unexpectedly", tok)
		}
	}
}

func TestEncodeMeasurement(t *testing.T) {
	m := meter.Measurement{Value: 3.3, Unit: meter.UnitVoltDc, State: meter.StateNormal, Attribute: meter.AttributeNone}
	got, err := EncodeMeasurement(m)
	if err != nil {
		t.Fatalf("EncodeMeasurement failed: %v", err)
	}
	if got != "3.300000,VDC,NORMAL,NONE" {
		t.Errorf("EncodeMeasurement = %q", got)
	}

	back, err := ParseMeasurement(got, time.Now())
	if err != nil {
		t.Fatalf("ParseMeasurement failed: %v", err)
	}
	if back.Value != m.Value || back.Unit != m.Unit {
		t.Errorf("round trip = %+v, want %+v", back, m)
	}

	if _, err := EncodeMeasurement(meter.Measurement{Unit: meter.Unit(200)}); !errors.Is(err, meter.ErrParse) {
		t.Errorf("EncodeMeasurement out-of-range unit error = %v", err)
	}
}

func TestCanonicalCommand(t *testing.T) {
	if got := CanonicalCommand("  qm "); got != "QM" {
		t.Errorf("CanonicalCommand = %q", got)
	}
}
