// Package wire implements the Fluke 28x serial line protocol codec.
//
// The codec is pure: it never performs I/O and holds no state. Transport
// code writes [Frame] output to the port, accumulates the reply, runs it
// through [Normalize], then hands the result to [CheckAck],
// [ParseIdentification] or [ParseMeasurement].
//
// # Response Format
//
// Every command is terminated by a carriage return. The instrument answers
// with an acknowledgement line holding a single status digit, followed for
// queries by a payload line:
//
//	ID<CR>  ->  0<CR>FLUKE 289,V1.00,95081087<CR>
//	QM<CR>  ->  0<CR>3.300000,VDC,NORMAL,NONE<CR>
//	RI<CR>  ->  0<CR>
//
// Normalization drops the terminators, so "0<CR>3.3,VDC,...<CR>" becomes
// "03.3,VDC,...": the first byte is the status digit and the rest is the
// payload.
//
// # Tokens
//
// Units, states and attributes travel as fixed tokens ("VDC", "OL",
// "LEO_OHMS"). Each token maps to exactly one meter enumeration value and
// unknown tokens are parse failures.
package wire
