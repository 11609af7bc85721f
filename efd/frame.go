package efd

import (
	"bytes"
	"fmt"
	"strings"
)

// Encode builds the wire frame for cmd carrying payload:
//
//	[STX][LEN(2)][OPCODE(4)][PAYLOAD][CHECKSUM(2)][ETX]
//
// LEN is len(OPCODE+PAYLOAD) as two uppercase hex digits and the checksum
// covers LEN+OPCODE+PAYLOAD.
func Encode(cmd Command, payload string) ([]byte, error) {
	if !cmd.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCommand, uint8(cmd))
	}
	if len(payload) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d bytes, max %d", ErrPayloadTooLong, len(payload), MaxPayloadSize)
	}
	for i := 0; i < len(payload); i++ {
		if payload[i] > 0x7F {
			return nil, fmt.Errorf("%w: byte 0x%02X at %d", ErrNonASCIIPayload, payload[i], i)
		}
	}

	bodyLen := OpcodeSize + len(payload)
	frame := make([]byte, 0, 1+lengthFieldSize+bodyLen+checksumSize+1)

	frame = append(frame, STX)
	frame = fmt.Appendf(frame, "%02X", bodyLen)
	frame = append(frame, opcodes[cmd][:]...)
	frame = append(frame, payload...)

	// checksum covers everything after STX
	frame = appendChecksum(frame, frame[1:])

	frame = append(frame, ETX)

	return frame, nil
}

// Decode validates a received frame and classifies it.
//
// The reserved SuccessFrame and ErrorFrame are matched before any structural
// check. Any other frame must be at least MinFrameSize bytes, delimited by
// STX/ETX and carry a matching checksum, otherwise the Response is Malformed
// and Err names the violated rule.
func Decode(raw []byte) Response {
	if len(raw) == 0 {
		return Response{Kind: NoResponse}
	}

	resp := Response{Raw: bytes.Clone(raw)}

	switch {
	case bytes.Equal(raw, SuccessFrame):
		resp.Kind = Success
		return resp
	case bytes.Equal(raw, ErrorFrame):
		resp.Kind = DeviceError
		return resp
	}

	if len(raw) < MinFrameSize {
		resp.Kind = Malformed
		resp.Err = fmt.Errorf("%w: got %d bytes, want at least %d", ErrFrameTooShort, len(raw), MinFrameSize)

		return resp
	}

	if raw[0] != STX || raw[len(raw)-1] != ETX {
		resp.Kind = Malformed
		resp.Err = fmt.Errorf("%w: first=0x%02X last=0x%02X", ErrFrameDelimiter, raw[0], raw[len(raw)-1])

		return resp
	}

	csStart := len(raw) - 1 - checksumSize
	received := string(raw[csStart : len(raw)-1])
	computed := Checksum(raw[1:csStart])
	if received != computed {
		resp.Kind = Malformed
		resp.Err = fmt.Errorf("%w: wire=%q, computed=%q", ErrChecksumMismatch, received, computed)

		return resp
	}

	codeStart := 1 + lengthFieldSize
	codeEnd := min(codeStart+OpcodeSize, csStart)

	resp.Kind = Parsed
	resp.Code = string(raw[codeStart:codeEnd])
	resp.Data = strings.TrimSpace(string(raw[codeEnd:csStart]))

	return resp
}
