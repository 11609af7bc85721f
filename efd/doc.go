// Package efd implements the framing layer of the Nordson EFD dispenser serial protocol.
//
// # Protocol Overview
//
// The dispenser speaks a half-duplex, ASCII framed protocol. A data frame on the wire is:
//
//	[STX][LEN(2)][OPCODE(4)][PAYLOAD(0..N)][CHECKSUM(2)][ETX]
//
// Where:
//   - STX = Start of Text (0x02)
//   - ETX = End of Text (0x03)
//   - LEN = byte count of OPCODE+PAYLOAD as two uppercase hex characters
//   - OPCODE = 4 ASCII bytes, space padded, e.g. "CH  "
//   - CHECKSUM = two uppercase hex characters computed over LEN+OPCODE+PAYLOAD
//
// The instrument answers a write command with one of two reserved frames,
// [SuccessFrame] ("A0") or [ErrorFrame] ("A2").
//
// # Command Builders
//
// Use the New* functions to validate arguments and build a [Request]:
//
//	req, err := efd.NewMemoryChange(5)
//	frame := req.Frame() // "\x0207CH  00539\x03"
//
// Arguments outside the instrument's range fail with a [*ValidationError] and no
// frame is built.
//
// # Response Decoding
//
// [Decode] classifies a received frame without returning an error, because garbled
// replies are an expected operating condition on a serial link:
//
//	resp := efd.Decode(raw)
//	switch resp.Kind {
//	case efd.Success, efd.DeviceError:
//	case efd.Parsed:
//	    fmt.Println(resp.Code, resp.Data)
//	case efd.Malformed:
//	    fmt.Println(resp.Err)
//	}
//
// The ENQ/ACK/NAK/EOT line control that wraps every write command lives in the
// dispenser package.
package efd
