package dispenser

import "errors"

var (
	// ErrTransport wraps every failure reported by the transport.
	ErrTransport = errors.New("dispenser: transport failure")

	// ErrNotOpen indicates a command was issued before Open or after Close.
	ErrNotOpen = errors.New("dispenser: not open")

	// ErrAlreadyOpen indicates Open was called on an open dispenser.
	ErrAlreadyOpen = errors.New("dispenser: already open")

	// ErrNilRequest indicates Execute was called without a request.
	ErrNilRequest = errors.New("dispenser: request is nil")

	// ErrConfigNil indicates New was called without a configuration.
	ErrConfigNil = errors.New("dispenser: config is nil")

	// ErrDuplicateName indicates a Group already holds a dispenser with that name.
	ErrDuplicateName = errors.New("dispenser: duplicate dispenser name")
)

// Transaction outcomes other than Succeeded, as returned by Transaction.Err.
var (
	ErrNotAcknowledged = errors.New("dispenser: enquiry not acknowledged")
	ErrDeviceError     = errors.New("dispenser: device reported an error")
	ErrUnexpectedReply = errors.New("dispenser: unexpected reply")
)
