package wire

import "strings"

// Terminator ends every command and every response line.
const Terminator = '\r'

// FrameLines is the number of terminators that complete a query response:
// one after the ack digit and one after the payload.
const FrameLines = 2

// Frame returns the bytes to write for a command.
func Frame(command string) []byte {
	b := make([]byte, 0, len(command)+1)
	b = append(b, command...)
	return append(b, Terminator)
}

// CountTerminators returns the number of carriage returns in p.
func CountTerminators(p []byte) int {
	n := 0
	for _, c := range p {
		if c == Terminator {
			n++
		}
	}
	return n
}

// Normalize joins the non-empty lines of a raw response so the status digit
// is immediately followed by the payload. Trailing line feeds are dropped.
func Normalize(raw string) string {
	var sb strings.Builder
	sb.Grow(len(raw))
	for _, line := range strings.Split(raw, string(Terminator)) {
		line = strings.TrimRight(line, "\n")
		if line == "" {
			continue
		}
		sb.WriteString(line)
	}
	return sb.String()
}

// EncodeResponse builds the raw reply an instrument would send for the
// given ack and payload. An empty payload yields an ack-only reply.
func EncodeResponse(ack Ack, payload string) string {
	var sb strings.Builder
	sb.WriteByte(ack.Byte())
	sb.WriteByte(Terminator)
	if payload != "" {
		sb.WriteString(payload)
		sb.WriteByte(Terminator)
	}
	return sb.String()
}
