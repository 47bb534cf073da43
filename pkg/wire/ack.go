package wire

import (
	"fmt"

	"github.com/tsmultimeter/tsmeter-go/pkg/meter"
)

// Ack is the status digit that leads every instrument response.
type Ack uint8

const (
	// AckSuccess indicates the command was accepted.
	AckSuccess Ack = 0

	// AckSyntaxError indicates the command was not understood.
	AckSyntaxError Ack = 1

	// AckExecutionError indicates the command could not be executed in the
	// current meter state.
	AckExecutionError Ack = 2

	// AckNoData indicates there is nothing to report (e.g. no reading yet).
	AckNoData Ack = 5
)

// String returns the ack name.
func (a Ack) String() string {
	switch a {
	case AckSuccess:
		return "SUCCESS"
	case AckSyntaxError:
		return "SYNTAX_ERROR"
	case AckExecutionError:
		return "EXECUTION_ERROR"
	case AckNoData:
		return "NO_DATA"
	default:
		return "UNKNOWN"
	}
}

// IsSuccess returns true if the ack indicates success.
func (a Ack) IsSuccess() bool {
	return a == AckSuccess
}

// Byte returns the wire digit for the ack.
func (a Ack) Byte() byte {
	return '0' + byte(a)
}

// Err converts a non-success ack into its error class.
func (a Ack) Err() error {
	switch a {
	case AckSuccess:
		return nil
	case AckSyntaxError:
		return fmt.Errorf("%w: syntax error", meter.ErrInvalidCommand)
	case AckExecutionError:
		return fmt.Errorf("%w: execution error", meter.ErrDevice)
	case AckNoData:
		return fmt.Errorf("%w: no data available", meter.ErrDevice)
	default:
		return fmt.Errorf("%w: unknown ACK code: %c", meter.ErrParse, a.Byte())
	}
}

// ParseAck reads the status digit at the start of a normalized response.
func ParseAck(response string) (Ack, error) {
	if response == "" {
		return 0, fmt.Errorf("%w: empty response", meter.ErrParse)
	}
	switch c := response[0]; c {
	case '0', '1', '2', '5':
		return Ack(c - '0'), nil
	default:
		return 0, fmt.Errorf("%w: unknown ACK code: %c", meter.ErrParse, c)
	}
}

// CheckAck returns nil if the response starts with a success digit, and the
// matching error class otherwise.
func CheckAck(response string) error {
	ack, err := ParseAck(response)
	if err != nil {
		return err
	}
	return ack.Err()
}

// Payload returns the text after the status digit of a normalized response.
func Payload(response string) string {
	if len(response) <= 1 {
		return ""
	}
	return response[1:]
}
