package dispenser

import "sync/atomic"

// OpState is the lifecycle state of a Dispenser.
type OpState uint32

const (
	ClosedState OpState = iota
	ClosingState
	OpeningState
	OpenedState
)

func (s OpState) String() string {
	switch s {
	case ClosedState:
		return "Closed"
	case ClosingState:
		return "Closing"
	case OpeningState:
		return "Opening"
	case OpenedState:
		return "Opened"
	default:
		return "Unknown"
	}
}

// atomicOpState guards Open/Close transitions:
//
//	Closed -> Opening -> Opened -> Closing -> Closed
//	Opening -> Closed (open failed)
type atomicOpState struct {
	state atomic.Uint32
}

func (st *atomicOpState) Get() OpState {
	return OpState(st.state.Load())
}

func (st *atomicOpState) String() string {
	return st.Get().String()
}

func (st *atomicOpState) IsOpened() bool {
	return st.Get() == OpenedState
}

func (st *atomicOpState) toOpening() bool {
	return st.state.CompareAndSwap(uint32(ClosedState), uint32(OpeningState))
}

func (st *atomicOpState) toOpened() bool {
	return st.state.CompareAndSwap(uint32(OpeningState), uint32(OpenedState))
}

// openFailed returns an Opening dispenser to Closed.
func (st *atomicOpState) openFailed() bool {
	return st.state.CompareAndSwap(uint32(OpeningState), uint32(ClosedState))
}

func (st *atomicOpState) toClosing() bool {
	return st.state.CompareAndSwap(uint32(OpenedState), uint32(ClosingState))
}

func (st *atomicOpState) toClosed() bool {
	return st.state.CompareAndSwap(uint32(ClosingState), uint32(ClosedState))
}
