package efd

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("efd: invalid argument")

	// ErrUnknownCommand indicates a Command value outside the command table.
	ErrUnknownCommand = errors.New("efd: unknown command")

	// ErrPayloadTooLong indicates that opcode+payload does not fit the 2-digit length field.
	ErrPayloadTooLong = errors.New("efd: payload too long")

	// ErrNonASCIIPayload indicates a payload byte outside 7-bit ASCII.
	ErrNonASCIIPayload = errors.New("efd: payload is not ASCII")
)

// Reasons attached to a Malformed Response.
var (
	// ErrFrameTooShort indicates fewer than MinFrameSize bytes were received.
	ErrFrameTooShort = errors.New("efd: frame too short")

	// ErrFrameDelimiter indicates a missing STX at the start or ETX at the end.
	ErrFrameDelimiter = errors.New("efd: missing frame delimiter")

	// ErrChecksumMismatch indicates the received checksum differs from the computed one.
	ErrChecksumMismatch = errors.New("efd: checksum mismatch")
)

// ValidationError reports a builder argument outside the instrument's accepted range.
type ValidationError struct {
	// Field names the rejected argument.
	Field string
	// Value is the rejected value as given by the caller.
	Value any
	// Min and Max are the inclusive bounds of the accepted range.
	Min any
	Max any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("efd: %s %v out of range [%v, %v]", e.Field, e.Value, e.Min, e.Max)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// IsValidationError returns true if err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func checkRange[T int | float64](field string, v, lo, hi T) error {
	if v < lo || v > hi {
		return &ValidationError{Field: field, Value: v, Min: lo, Max: hi}
	}

	return nil
}
