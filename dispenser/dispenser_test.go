package dispenser

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/afornelas/Nordson-EFD/efd"
)

func TestNew_NilConfig(t *testing.T) {
	d, err := New(nil)
	require.ErrorIs(t, err, ErrConfigNil)
	assert.Nil(t, d)
}

func TestDispenser_OpenClose(t *testing.T) {
	tr := newFakeTransport()
	d, err := New(newTestConfig(t, tr, WithName("left")))
	require.NoError(t, err)

	assert.Equal(t, "left", d.Name())
	assert.Equal(t, ClosedState, d.State())
	assert.False(t, d.IsOpen())

	require.NoError(t, d.Open())
	assert.True(t, d.IsOpen())
	assert.Equal(t, OpenedState, d.State())

	err = d.Open()
	require.ErrorIs(t, err, ErrAlreadyOpen)

	require.NoError(t, d.Close())
	assert.True(t, tr.IsClosed())
	assert.Equal(t, ClosedState, d.State())

	// closing twice is a no-op
	require.NoError(t, d.Close())
}

func TestDispenser_CloseError(t *testing.T) {
	tr := newFakeTransport()
	tr.closeErr = errors.New("busy")
	d := newOpenDispenser(t, tr)

	err := d.Close()
	require.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, ClosedState, d.State())
}

func TestDispenser_OpenSerialFailure(t *testing.T) {
	cfg, err := NewConfig("/dev/does-not-exist-efd", WithLogger(newTestLogger()))
	require.NoError(t, err)

	d, err := New(cfg)
	require.NoError(t, err)

	err = d.Open()
	require.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, ClosedState, d.State())
}

func TestDispenser_OpenTCPFailure(t *testing.T) {
	cfg, err := NewConfig("tcp://127.0.0.1:1",
		WithConnectTimeout(200*time.Millisecond),
		WithLogger(newTestLogger()),
	)
	require.NoError(t, err)

	d, err := New(cfg)
	require.NoError(t, err)

	err = d.Open()
	require.ErrorIs(t, err, ErrTransport)
	assert.False(t, d.IsOpen())
}

func TestDispenser_ExecuteGuards(t *testing.T) {
	tr := newFakeTransport()
	d, err := New(newTestConfig(t, tr))
	require.NoError(t, err)

	_, err = d.Execute(context.Background(), nil)
	require.ErrorIs(t, err, ErrNilRequest)

	_, err = d.Dispense(context.Background())
	require.ErrorIs(t, err, ErrNotOpen)

	require.NoError(t, d.Open())
	t.Cleanup(func() { _ = d.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = d.Dispense(ctx)
	require.ErrorIs(t, err, context.Canceled)

	assert.Empty(t, tr.Writes())
	assert.Zero(t, d.GetMetrics().TransactionCount.Load())
}

func TestDispenser_ValidationErrorSendsNothing(t *testing.T) {
	tr := newFakeTransport()
	d := newOpenDispenser(t, tr)
	ctx := context.Background()

	_, err := d.MemoryChange(ctx, 400)
	require.True(t, efd.IsValidationError(err))

	_, err = d.SetPressure(ctx, -1)
	require.True(t, efd.IsValidationError(err))

	_, err = d.SetDispenseTime(ctx, 10)
	require.True(t, efd.IsValidationError(err))

	_, err = d.SetClock(ctx, efd.AM, 13, 0)
	require.True(t, efd.IsValidationError(err))

	assert.Empty(t, tr.Writes())
	assert.Equal(t, uint64(4), d.GetMetrics().ValidationErrCount.Load())
	assert.Zero(t, d.GetMetrics().TransactionCount.Load())
}

func TestDispenser_Commands(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		run     func(d *Dispenser) (*Transaction, error)
		payload string
		cmd     efd.Command
	}{
		{"memory change", func(d *Dispenser) (*Transaction, error) { return d.MemoryChange(ctx, 5) }, "005", efd.MemoryChange},
		{"timed mode", func(d *Dispenser) (*Transaction, error) { return d.TimedMode(ctx) }, "", efd.TimedMode},
		{"steady mode", func(d *Dispenser) (*Transaction, error) { return d.SteadyMode(ctx) }, "", efd.SteadyMode},
		{"toggle", func(d *Dispenser) (*Transaction, error) { return d.ToggleTimeSteady(ctx) }, "", efd.TimeSteadyToggle},
		{"pressure", func(d *Dispenser) (*Transaction, error) { return d.SetPressure(ctx, 450) }, "0450", efd.PressureSet},
		{"pressure in psi", func(d *Dispenser) (*Transaction, error) { return d.SetPressureIn(ctx, efd.PSI, 100) }, "0100", efd.PressureSet},
		{"vacuum", func(d *Dispenser) (*Transaction, error) { return d.SetVacuum(ctx, 12) }, "0012", efd.VacuumSet},
		{"dispense time", func(d *Dispenser) (*Transaction, error) { return d.SetDispenseTime(ctx, 0.5) }, "05000", efd.TimeSet},
		{"pressure unit", func(d *Dispenser) (*Transaction, error) { return d.SetPressureUnit(ctx, efd.KPA) }, "02", efd.PressureUnitSet},
		{"vacuum unit", func(d *Dispenser) (*Transaction, error) { return d.SetVacuumUnit(ctx, efd.Torr) }, "04", efd.VacuumUnitSet},
		{"clock", func(d *Dispenser) (*Transaction, error) { return d.SetClock(ctx, efd.PM, 3, 7) }, "H03M07AM1", efd.SetClock},
		{"date", func(d *Dispenser) (*Transaction, error) { return d.SetDate(ctx, 2, 29, 24) }, "M02D29Y24", efd.SetDate},
		{"dispense", func(d *Dispenser) (*Transaction, error) { return d.Dispense(ctx) }, "", efd.Dispense},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newFakeTransport(ackRead(), reply(efd.SuccessFrame))
			d := newOpenDispenser(t, tr)

			tx, err := tt.run(d)
			require.NoError(t, err)
			require.NoError(t, tx.Err())

			want, err := efd.Encode(tt.cmd, tt.payload)
			require.NoError(t, err)

			writes := tr.Writes()
			require.Len(t, writes, 3)
			assert.Equal(t, want, writes[1])
			assert.Equal(t, tt.cmd, tx.Request.Command)
		})
	}
}

func TestDispenser_Metrics(t *testing.T) {
	tr := newFakeTransport(
		ackRead(), reply(efd.SuccessFrame),
		ackRead(), reply(efd.ErrorFrame),
		reply([]byte{efd.NAK}),
		ackRead(), reply(nil),
		readResult{err: errors.New("unplugged")},
	)
	d := newOpenDispenser(t, tr)
	ctx := context.Background()

	for range 4 {
		_, err := d.Dispense(ctx)
		require.NoError(t, err)
	}
	_, err := d.Dispense(ctx)
	require.ErrorIs(t, err, ErrTransport)
	assert.True(t, IsTransportError(err))

	m := d.GetMetrics()
	assert.Equal(t, uint64(5), m.TransactionCount.Load())
	assert.Equal(t, uint64(1), m.SucceededCount.Load())
	assert.Equal(t, uint64(1), m.DeviceErrorCount.Load())
	assert.Equal(t, uint64(1), m.NotAcknowledgedCount.Load())
	assert.Equal(t, uint64(1), m.UnexpectedReplyCount.Load())
	assert.Equal(t, uint64(1), m.TransportErrCount.Load())
}

func TestDispenser_ReadResponse(t *testing.T) {
	tr := newFakeTransport(reply(efd.ErrorFrame), reply(nil))
	d := newOpenDispenser(t, tr)
	ctx := context.Background()

	resp, err := d.ReadResponse(ctx)
	require.NoError(t, err)
	assert.Equal(t, efd.DeviceError, resp.Kind)

	resp, err = d.ReadResponse(ctx)
	require.NoError(t, err)
	assert.Equal(t, efd.NoResponse, resp.Kind)

	assert.Equal(t, []byte{efd.ETX, efd.ETX}, tr.delims)
	assert.Empty(t, tr.Writes())
}

func TestDispenser_ReadResponseCommandFrame(t *testing.T) {
	frame, err := efd.Encode(efd.MemoryChange, "005")
	require.NoError(t, err)

	d := newOpenDispenser(t, newFakeTransport(reply(frame)))

	resp, err := d.ReadResponse(context.Background())
	require.NoError(t, err)
	require.Equal(t, efd.Parsed, resp.Kind)

	cmd, ok := resp.Command()
	require.True(t, ok)
	assert.Equal(t, efd.MemoryChange, cmd)
	assert.Equal(t, "005", resp.Data)
}

func TestDispenser_OverPipe(t *testing.T) {
	tr, inst := newPipeInstrument(t, alwaysSucceed)
	d := newOpenDispenser(t, tr, WithReadTimeout(time.Second))
	ctx := context.Background()

	tx, err := d.MemoryChange(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, Succeeded, tx.Outcome)
	assert.Equal(t, []byte("\x0207CH  00539\x03"), tx.Frame)

	require.Eventually(t, func() bool {
		return bytes.Equal(inst.Closings(), []byte{efd.EOT})
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, [][]byte{tx.Frame}, inst.Frames())
}

func TestDispenser_OverPipeDeviceError(t *testing.T) {
	answer := func(frame []byte) []byte {
		if bytes.Contains(frame, []byte("PS  ")) {
			return bytes.Clone(efd.ErrorFrame)
		}

		return bytes.Clone(efd.SuccessFrame)
	}
	tr, inst := newPipeInstrument(t, answer)
	d := newOpenDispenser(t, tr, WithReadTimeout(time.Second))
	ctx := context.Background()

	tx, err := d.SetPressure(ctx, 6895)
	require.NoError(t, err)
	assert.Equal(t, DeviceError, tx.Outcome)
	require.ErrorIs(t, tx.Err(), ErrDeviceError)

	tx, err = d.Dispense(ctx)
	require.NoError(t, err)
	assert.Equal(t, Succeeded, tx.Outcome)

	require.Eventually(t, func() bool {
		return len(inst.Closings()) == 2
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []byte{efd.EOT, efd.EOT}, inst.Closings())
}

func TestDispenser_ConcurrentCallersAreSerialized(t *testing.T) {
	tr, inst := newPipeInstrument(t, alwaysSucceed)
	d := newOpenDispenser(t, tr, WithReadTimeout(time.Second))
	ctx := context.Background()

	const callers = 8

	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tx, err := d.MemoryChange(ctx, i)
			assert.NoError(t, err)
			if tx != nil {
				assert.Equal(t, Succeeded, tx.Outcome)
			}
		}()
	}
	wg.Wait()

	assert.Len(t, inst.Frames(), callers)
	assert.Equal(t, uint64(callers), d.GetMetrics().SucceededCount.Load())
}
