package dispenser

import (
	"fmt"
	"time"

	"github.com/afornelas/Nordson-EFD/efd"
	"go.bug.st/serial"
)

// SerialTransport is a Transport over a local serial port.
type SerialTransport struct {
	port serial.Port
	name string
}

var _ Transport = (*SerialTransport)(nil)

// OpenSerial opens the named serial port with no parity and one stop bit.
func OpenSerial(name string, baudRate int, dataBits int) (*SerialTransport, error) {
	port, err := serial.Open(name, &serial.Mode{
		BaudRate: baudRate,
		DataBits: dataBits,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("dispenser: open serial port %s: %w", name, err)
	}

	return newSerialTransport(port, name), nil
}

func newSerialTransport(port serial.Port, name string) *SerialTransport {
	return &SerialTransport{port: port, name: name}
}

// Name returns the serial device name.
func (t *SerialTransport) Name() string { return t.name }

func (t *SerialTransport) Write(p []byte) error {
	for written := 0; written < len(p); {
		n, err := t.port.Write(p[written:])
		written += n

		if err != nil {
			return err
		}
	}

	return nil
}

// ReadUntil reads one byte at a time so that nothing past delim is consumed.
func (t *SerialTransport) ReadUntil(delim byte, timeout time.Duration) ([]byte, error) {
	return t.read(efd.MaxFrameSize, timeout, func(b byte) bool { return b == delim })
}

func (t *SerialTransport) ReadN(n int, timeout time.Duration) ([]byte, error) {
	return t.read(min(n, efd.MaxFrameSize), timeout, nil)
}

func (t *SerialTransport) read(limit int, timeout time.Duration, stop func(byte) bool) ([]byte, error) {
	deadline := time.Now().Add(timeout)
	one := make([]byte, 1)

	var buf []byte
	for len(buf) < limit {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return buf, nil
		}

		if err := t.port.SetReadTimeout(remaining); err != nil {
			return buf, err
		}

		n, err := t.port.Read(one)
		if err != nil {
			return buf, err
		}
		if n == 0 {
			// read timeout
			return buf, nil
		}

		buf = append(buf, one[0])
		if stop != nil && stop(one[0]) {
			break
		}
	}

	return buf, nil
}

func (t *SerialTransport) Close() error {
	return t.port.Close()
}
