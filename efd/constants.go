package efd

// Control characters exchanged on the wire.
const (
	// STX (Start of Text) opens a data frame.
	STX byte = 0x02

	// ETX (End of Text) closes a data frame.
	ETX byte = 0x03

	// EOT (End of Transmission) ends a transaction after the instrument replied.
	EOT byte = 0x04

	// ENQ (Enquiry) asks the instrument for permission to send a frame.
	ENQ byte = 0x05

	// ACK (Acknowledge) grants the ENQ.
	ACK byte = 0x06

	// NAK (Negative Acknowledge) refuses the ENQ, or rejects an unexpected reply.
	NAK byte = 0x15
)

// Frame layout constants.
const (
	// OpcodeSize is the fixed size of the opcode field.
	OpcodeSize = 4

	// lengthFieldSize is the size of the ASCII hex length field.
	lengthFieldSize = 2

	// checksumSize is the size of the ASCII hex checksum field.
	checksumSize = 2

	// MinFrameSize is the shortest byte sequence Decode will slice into.
	// STX(1) + LEN(2) + CODE(2) + CHECKSUM(2) + ETX(1)
	MinFrameSize = 8

	// MaxBodySize is the largest OPCODE+PAYLOAD the 2-digit hex length field can express.
	MaxBodySize = 0xFF

	// MaxPayloadSize is the largest payload that fits in one frame.
	MaxPayloadSize = MaxBodySize - OpcodeSize

	// MaxFrameSize is the size of the longest possible frame.
	MaxFrameSize = 1 + lengthFieldSize + MaxBodySize + checksumSize + 1
)

// Reserved response frames. They are compared byte for byte before any generic decoding.
var (
	// SuccessFrame is the instrument's "A0" reply: command received and executed.
	SuccessFrame = []byte{STX, '0', '2', 'A', '0', '2', 'D', ETX}

	// ErrorFrame is the instrument's "A2" reply: command rejected.
	ErrorFrame = []byte{STX, '0', '2', 'A', '2', '2', 'B', ETX}
)
