package dispenser

import (
	"bytes"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/afornelas/Nordson-EFD/efd"
	"github.com/afornelas/Nordson-EFD/logger"
)

type readResult struct {
	data []byte
	err  error
}

// fakeTransport replays scripted reads and records writes.
// Once the script is exhausted every read times out with no data.
type fakeTransport struct {
	mu sync.Mutex

	reads  []readResult
	writes [][]byte
	delims []byte
	counts []int

	// failWrite makes the n-th Write (1-based) fail with writeErr.
	failWrite int
	writeErr  error

	closed   bool
	closeErr error
}

func newFakeTransport(reads ...readResult) *fakeTransport {
	return &fakeTransport{reads: reads}
}

func (f *fakeTransport) Write(p []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.writes = append(f.writes, bytes.Clone(p))
	if f.failWrite == len(f.writes) {
		return f.writeErr
	}

	return nil
}

func (f *fakeTransport) ReadUntil(delim byte, _ time.Duration) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.delims = append(f.delims, delim)
	if len(f.reads) == 0 {
		return nil, nil
	}

	r := f.reads[0]
	f.reads = f.reads[1:]

	return r.data, r.err
}

// ReadN returns at most n bytes of the next scripted read and keeps the
// rest for the following one.
func (f *fakeTransport) ReadN(n int, _ time.Duration) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.counts = append(f.counts, n)
	if len(f.reads) == 0 {
		return nil, nil
	}

	r := f.reads[0]
	if len(r.data) > n {
		f.reads[0].data = r.data[n:]
		return r.data[:n], nil
	}
	f.reads = f.reads[1:]

	return r.data, r.err
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed = true

	return f.closeErr
}

func (f *fakeTransport) Writes() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.writes
}

func (f *fakeTransport) IsClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.closed
}

func reply(data []byte) readResult { return readResult{data: data} }

func ackRead() readResult { return reply([]byte{efd.ACK}) }

func newTestLogger() logger.Logger {
	return logger.NewSlogWriter(io.Discard, logger.DebugLevel, false, false)
}

func newTestConfig(t *testing.T, tr Transport, opts ...Option) *Config {
	t.Helper()

	opts = append([]Option{WithTransport(tr), WithLogger(newTestLogger())}, opts...)
	cfg, err := NewConfig("", opts...)
	require.NoError(t, err)

	return cfg
}

func newOpenDispenser(t *testing.T, tr Transport, opts ...Option) *Dispenser {
	t.Helper()

	d, err := New(newTestConfig(t, tr, opts...))
	require.NoError(t, err)
	require.NoError(t, d.Open())
	t.Cleanup(func() { _ = d.Close() })

	return d
}

// instrument simulates a dispenser on the remote end of a net.Conn.
type instrument struct {
	conn net.Conn

	// enqReply is written in answer to ENQ; only ACK is followed by a frame.
	enqReply byte

	// answer returns the frame sent back for a received request frame.
	answer func(frame []byte) []byte

	mu       sync.Mutex
	frames   [][]byte
	closings []byte
}

func newPipeInstrument(t *testing.T, answer func(frame []byte) []byte) (*ConnTransport, *instrument) {
	t.Helper()

	return newPipeInstrumentReplying(t, efd.ACK, answer)
}

func newPipeInstrumentReplying(t *testing.T, enqReply byte, answer func(frame []byte) []byte) (*ConnTransport, *instrument) {
	t.Helper()

	local, remote := net.Pipe()
	inst := &instrument{conn: remote, enqReply: enqReply, answer: answer}
	go inst.serve()

	t.Cleanup(func() {
		_ = local.Close()
		_ = remote.Close()
	})

	return NewConnTransport(local, time.Second), inst
}

func (inst *instrument) serve() {
	buf := make([]byte, 1)
	for {
		if _, err := io.ReadFull(inst.conn, buf); err != nil {
			return
		}

		switch buf[0] {
		case efd.ENQ:
			if _, err := inst.conn.Write([]byte{inst.enqReply}); err != nil {
				return
			}
			if inst.enqReply != efd.ACK {
				continue
			}

			frame, err := inst.readFrame()
			if err != nil {
				return
			}
			inst.mu.Lock()
			inst.frames = append(inst.frames, frame)
			inst.mu.Unlock()

			if _, err := inst.conn.Write(inst.answer(frame)); err != nil {
				return
			}
		case efd.EOT, efd.NAK:
			inst.mu.Lock()
			inst.closings = append(inst.closings, buf[0])
			inst.mu.Unlock()
		}
	}
}

func (inst *instrument) readFrame() ([]byte, error) {
	var frame []byte
	buf := make([]byte, 1)
	for {
		if _, err := io.ReadFull(inst.conn, buf); err != nil {
			return nil, err
		}
		frame = append(frame, buf[0])
		if buf[0] == efd.ETX {
			return frame, nil
		}
	}
}

func (inst *instrument) Frames() [][]byte {
	inst.mu.Lock()
	defer inst.mu.Unlock()

	return inst.frames
}

func (inst *instrument) Closings() []byte {
	inst.mu.Lock()
	defer inst.mu.Unlock()

	return bytes.Clone(inst.closings)
}

func alwaysSucceed([]byte) []byte { return bytes.Clone(efd.SuccessFrame) }
