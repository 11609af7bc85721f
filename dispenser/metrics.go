package dispenser

import (
	"sync/atomic"
)

// TransactionMetrics contains atomic counters for one dispenser.
// They are exported to Prometheus by Collector.
type TransactionMetrics struct {
	// TransactionCount indicates the number of transactions started.
	TransactionCount atomic.Uint64
	// SucceededCount indicates the number of A0 replies.
	SucceededCount atomic.Uint64
	// DeviceErrorCount indicates the number of A2 replies.
	DeviceErrorCount atomic.Uint64
	// UnexpectedReplyCount indicates the number of replies that were neither A0 nor A2.
	UnexpectedReplyCount atomic.Uint64
	// NotAcknowledgedCount indicates the number of ENQs not answered with ACK.
	NotAcknowledgedCount atomic.Uint64
	// TransportErrCount indicates the number of transactions aborted by the transport.
	TransportErrCount atomic.Uint64
	// ValidationErrCount indicates the number of commands rejected before any I/O.
	ValidationErrCount atomic.Uint64
}

func (m *TransactionMetrics) incTransactionCount() {
	m.TransactionCount.Add(1)
}

func (m *TransactionMetrics) incValidationErrCount() {
	m.ValidationErrCount.Add(1)
}

// record counts the result of a finished or aborted transaction.
func (m *TransactionMetrics) record(tx *Transaction, err error) {
	if err != nil || tx.State != Done {
		m.TransportErrCount.Add(1)
		return
	}

	switch tx.Outcome {
	case Succeeded:
		m.SucceededCount.Add(1)
	case DeviceError:
		m.DeviceErrorCount.Add(1)
	case UnexpectedReply:
		m.UnexpectedReplyCount.Add(1)
	case NotAcknowledged:
		m.NotAcknowledgedCount.Add(1)
	}
}
