package efd

import "fmt"

// checksumBase is added to the negated byte sum before truncation.
const checksumBase = 0xFFFF

// Checksum computes the two character frame checksum over data.
//
// Every byte is subtracted from a zero accumulator, then checksumBase+acc+1 is
// rendered as uppercase hex and the last two digits are kept. Only the low 8 bits
// survive the truncation, so the result is always two uppercase hex characters.
// Checksum(nil) is "00".
func Checksum(data []byte) string {
	acc := 0
	for _, b := range data {
		acc -= int(b)
	}

	return fmt.Sprintf("%02X", uint8(checksumBase+acc+1)) //nolint:gosec // low byte is the checksum
}

// appendChecksum appends the checksum of data to dst.
func appendChecksum(dst []byte, data []byte) []byte {
	return append(dst, Checksum(data)...)
}
