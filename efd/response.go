package efd

import "strings"

// ResponseKind classifies a decoded frame.
type ResponseKind uint8

const (
	// NoResponse means nothing was received before the read timed out.
	NoResponse ResponseKind = iota
	// Success is the reserved "A0" frame.
	Success
	// DeviceError is the reserved "A2" frame.
	DeviceError
	// Parsed is a well formed data frame.
	Parsed
	// Malformed is a frame that failed structural or checksum validation.
	Malformed
)

func (k ResponseKind) String() string {
	switch k {
	case NoResponse:
		return "NoResponse"
	case Success:
		return "Success"
	case DeviceError:
		return "DeviceError"
	case Parsed:
		return "Parsed"
	case Malformed:
		return "Malformed"
	default:
		return "Unknown"
	}
}

// Response is the outcome of decoding one received frame.
type Response struct {
	Kind ResponseKind

	// Code is the opcode region of a Parsed frame, padding included.
	Code string

	// Data is the payload of a Parsed frame with surrounding spaces removed.
	Data string

	// Err names the violated rule of a Malformed frame.
	Err error

	// Raw holds the received bytes. It is nil for NoResponse.
	Raw []byte
}

// Command resolves Code against the command table.
func (r Response) Command() (Command, bool) {
	if r.Kind != Parsed {
		return 0, false
	}

	return LookupOpcode(r.Code)
}

// StatusCode returns the trimmed status or opcode carried by the frame:
// "A0" for Success, "A2" for DeviceError, the trimmed Code for Parsed and
// "" otherwise.
func (r Response) StatusCode() string {
	switch r.Kind {
	case Success:
		return "A0"
	case DeviceError:
		return "A2"
	case Parsed:
		return strings.TrimSpace(r.Code)
	default:
		return ""
	}
}
