package dispenser

import (
	"bufio"
	"errors"
	"net"
	"os"
	"time"

	"github.com/afornelas/Nordson-EFD/efd"
)

// Transport is the byte link to one dispenser.
//
// Transports are not goroutine-safe; a Dispenser serializes access.
type Transport interface {
	// Write transmits all of p.
	Write(p []byte) error

	// ReadUntil reads until delim has been received, the timeout expires or
	// efd.MaxFrameSize bytes have been read. An expired timeout is not an
	// error: the bytes received so far, possibly none, are returned.
	ReadUntil(delim byte, timeout time.Duration) ([]byte, error)

	// ReadN reads until n bytes have been received or the timeout expires.
	// Like ReadUntil, an expired timeout returns the bytes received so far.
	ReadN(n int, timeout time.Duration) ([]byte, error)

	// Close releases the link.
	Close() error
}

// ConnTransport is a Transport over a net.Conn, such as a TCP serial server.
// Read timeouts are implemented with read deadlines.
type ConnTransport struct {
	conn         net.Conn
	reader       *bufio.Reader
	writeTimeout time.Duration
}

var _ Transport = (*ConnTransport)(nil)

// NewConnTransport wraps conn. A positive writeTimeout bounds every Write.
func NewConnTransport(conn net.Conn, writeTimeout time.Duration) *ConnTransport {
	return &ConnTransport{
		conn:         conn,
		reader:       bufio.NewReader(conn),
		writeTimeout: writeTimeout,
	}
}

func (t *ConnTransport) Write(p []byte) error {
	if t.writeTimeout > 0 {
		if err := t.conn.SetWriteDeadline(time.Now().Add(t.writeTimeout)); err != nil {
			return err
		}
	}

	for written := 0; written < len(p); {
		n, err := t.conn.Write(p[written:])
		written += n

		if err != nil {
			return err
		}
	}

	return nil
}

func (t *ConnTransport) ReadUntil(delim byte, timeout time.Duration) ([]byte, error) {
	return t.read(efd.MaxFrameSize, timeout, func(b byte) bool { return b == delim })
}

func (t *ConnTransport) ReadN(n int, timeout time.Duration) ([]byte, error) {
	return t.read(min(n, efd.MaxFrameSize), timeout, nil)
}

// read collects up to limit bytes, stopping early once stop reports true.
func (t *ConnTransport) read(limit int, timeout time.Duration, stop func(byte) bool) ([]byte, error) {
	if err := t.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, err
	}

	var buf []byte
	for len(buf) < limit {
		b, err := t.reader.ReadByte()
		if err != nil {
			if isTimeout(err) {
				return buf, nil
			}

			return buf, err
		}

		buf = append(buf, b)
		if stop != nil && stop(b) {
			break
		}
	}

	return buf, nil
}

func (t *ConnTransport) Close() error {
	return t.conn.Close()
}

func isTimeout(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}
