package dispenser

import (
	"bytes"
	"fmt"
	"time"

	"github.com/afornelas/Nordson-EFD/efd"
	"github.com/afornelas/Nordson-EFD/logger"
)

// State is a step of the transaction handshake.
type State uint8

const (
	// Idle: nothing sent yet.
	Idle State = iota
	// AwaitingAck: ENQ sent, waiting for ACK.
	AwaitingAck
	// Transmitting: ACK received, sending the frame.
	Transmitting
	// AwaitingReply: frame sent, waiting for the A0/A2 reply.
	AwaitingReply
	// Done: the Outcome is set and the closing EOT or NAK was due.
	Done
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case AwaitingAck:
		return "AwaitingAck"
	case Transmitting:
		return "Transmitting"
	case AwaitingReply:
		return "AwaitingReply"
	case Done:
		return "Done"
	default:
		return "Unknown"
	}
}

// Outcome is the terminal result of a transaction.
type Outcome uint8

const (
	// NotAcknowledged: the ENQ was not answered with ACK; no frame was sent.
	NotAcknowledged Outcome = iota
	// Succeeded: the instrument replied with the A0 frame.
	Succeeded
	// DeviceError: the instrument replied with the A2 frame.
	DeviceError
	// UnexpectedReply: the reply was neither A0 nor A2 (including no reply).
	UnexpectedReply
)

func (o Outcome) String() string {
	switch o {
	case NotAcknowledged:
		return "NotAcknowledged"
	case Succeeded:
		return "Succeeded"
	case DeviceError:
		return "DeviceError"
	case UnexpectedReply:
		return "UnexpectedReply"
	default:
		return "Unknown"
	}
}

// Transaction records one ENQ/ACK/frame/reply exchange.
type Transaction struct {
	Request *efd.Request

	// Frame is the encoded request. It is sent only after an ACK.
	Frame []byte

	// State is the last handshake state reached. It is Done unless the
	// transaction was aborted by a transport failure.
	State State

	// Outcome is meaningful only when State is Done.
	Outcome Outcome

	// AckReply holds the bytes read in answer to ENQ.
	AckReply []byte

	// Reply is the decoded answer to Frame.
	Reply efd.Response

	Duration time.Duration
}

// Err returns nil for a Succeeded transaction, otherwise the sentinel error
// matching the outcome.
func (tx *Transaction) Err() error {
	if tx.State != Done {
		return fmt.Errorf("%w: aborted in state %s", ErrTransport, tx.State)
	}

	switch tx.Outcome {
	case Succeeded:
		return nil
	case DeviceError:
		return fmt.Errorf("%w: %s", ErrDeviceError, tx.Request)
	case NotAcknowledged:
		return fmt.Errorf("%w: reply % X", ErrNotAcknowledged, tx.AckReply)
	default:
		if tx.Reply.Kind == efd.Malformed {
			return fmt.Errorf("%w: %w", ErrUnexpectedReply, tx.Reply.Err)
		}

		return fmt.Errorf("%w: %s % X", ErrUnexpectedReply, tx.Reply.Kind, tx.Reply.Raw)
	}
}

var ackReply = []byte{efd.ACK}

// handshake runs single transactions over a transport.
//
// It is NOT goroutine-safe; the Dispenser holds its lock around run.
type handshake struct {
	transport   Transport
	readTimeout time.Duration
	logger      logger.Logger
}

// run performs one transaction for req:
//
//  1. Idle: send ENQ, read the one byte answer.
//  2. AwaitingAck: anything but ACK, including a timeout, ends the transaction as
//     NotAcknowledged after sending NAK. The frame is never sent.
//  3. Transmitting: send the frame.
//  4. AwaitingReply: read one frame. A0 ends as Succeeded and A2 as
//     DeviceError, both followed by EOT. Anything else ends as
//     UnexpectedReply followed by NAK.
//
// A transport failure aborts the transaction where it stands; the returned
// Transaction shows the state reached and the error wraps ErrTransport.
func (h *handshake) run(req *efd.Request) (*Transaction, error) {
	start := time.Now()
	tx := &Transaction{
		Request: req,
		Frame:   req.Frame(),
		State:   Idle,
	}
	defer func() { tx.Duration = time.Since(start) }()

	if err := h.transport.Write([]byte{efd.ENQ}); err != nil {
		return tx, transportError("send ENQ", err)
	}
	tx.State = AwaitingAck
	h.logger.Debug("dispenser: ENQ sent", "request", req.String())

	// ACK and NAK are single bytes without ETX, so the first byte decides.
	ack, err := h.transport.ReadN(1, h.readTimeout)
	tx.AckReply = ack
	if err != nil {
		return tx, transportError("read ACK", err)
	}

	if !bytes.Equal(ack, ackReply) {
		tx.State = Done
		tx.Outcome = NotAcknowledged
		h.logger.Warn("dispenser: NAK or no response to ENQ", "request", req.String(), "reply", fmt.Sprintf("% X", ack))

		if err := h.transport.Write([]byte{efd.NAK}); err != nil {
			return tx, transportError("send NAK", err)
		}

		return tx, nil
	}

	tx.State = Transmitting
	h.logger.Debug("dispenser: ACK received, sending frame", "frame", fmt.Sprintf("%q", tx.Frame))

	if err := h.transport.Write(tx.Frame); err != nil {
		return tx, transportError("send frame", err)
	}
	tx.State = AwaitingReply

	raw, err := h.transport.ReadUntil(efd.ETX, h.readTimeout)
	if err != nil {
		tx.Reply = efd.Decode(raw)
		return tx, transportError("read reply", err)
	}

	tx.Reply = efd.Decode(raw)
	tx.State = Done

	closing := efd.EOT
	switch tx.Reply.Kind {
	case efd.Success:
		tx.Outcome = Succeeded
		h.logger.Debug("dispenser: success (A0) received", "request", req.String())
	case efd.DeviceError:
		tx.Outcome = DeviceError
		h.logger.Warn("dispenser: error (A2) received", "request", req.String())
	default:
		tx.Outcome = UnexpectedReply
		closing = efd.NAK
		h.logger.Warn("dispenser: unexpected reply",
			"request", req.String(),
			"kind", tx.Reply.Kind.String(),
			"reply", fmt.Sprintf("%q", raw),
			"error", tx.Reply.Err,
		)
	}

	if err := h.transport.Write([]byte{closing}); err != nil {
		return tx, transportError("send closing byte", err)
	}

	return tx, nil
}

func transportError(step string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrTransport, step, err)
}
