package dispenser

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/afornelas/Nordson-EFD/efd"
	"github.com/afornelas/Nordson-EFD/logger"
)

// Dispenser is a client for one Nordson EFD dispenser.
//
// It is safe for concurrent use; transactions are serialized because the
// line is half-duplex.
type Dispenser struct {
	cfg    *Config
	logger logger.Logger

	opState atomicOpState

	// mu is held for the whole of a transaction and guards transport.
	mu        sync.Mutex
	transport Transport

	metrics TransactionMetrics
}

// New creates a Dispenser for cfg. Call Open before issuing commands.
func New(cfg *Config) (*Dispenser, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	return &Dispenser{
		cfg:    cfg,
		logger: cfg.logger.With("dispenser", cfg.name),
	}, nil
}

// Name returns the configured dispenser name.
func (d *Dispenser) Name() string { return d.cfg.name }

// Config returns the dispenser configuration.
func (d *Dispenser) Config() *Config { return d.cfg }

// GetLogger returns the logger of the dispenser.
func (d *Dispenser) GetLogger() logger.Logger { return d.logger }

// GetMetrics returns the transaction counters of the dispenser.
func (d *Dispenser) GetMetrics() *TransactionMetrics { return &d.metrics }

// State returns the lifecycle state.
func (d *Dispenser) State() OpState { return d.opState.Get() }

// IsOpen returns true if the dispenser accepts commands.
func (d *Dispenser) IsOpen() bool { return d.opState.IsOpened() }

// Open opens the transport: the injected one, a TCP serial server for
// tcp:// ports, or the local serial port.
func (d *Dispenser) Open() error {
	if !d.opState.toOpening() {
		return fmt.Errorf("%w: state %s", ErrAlreadyOpen, d.opState.String())
	}

	t, err := d.openTransport()
	if err != nil {
		d.opState.openFailed()
		d.logger.Error("dispenser: open failed", "port", d.cfg.port, "error", err)

		return err
	}

	d.mu.Lock()
	d.transport = t
	d.mu.Unlock()

	d.opState.toOpened()
	d.logger.Info("dispenser: opened", "port", d.cfg.port, "baudRate", d.cfg.baudRate)

	return nil
}

func (d *Dispenser) openTransport() (Transport, error) {
	if d.cfg.transport != nil {
		return d.cfg.transport, nil
	}

	if d.cfg.IsTCP() {
		addr := strings.TrimPrefix(d.cfg.port, tcpScheme)
		conn, err := net.DialTimeout("tcp", addr, d.cfg.connectTimeout)
		if err != nil {
			return nil, fmt.Errorf("%w: dial %s: %w", ErrTransport, addr, err)
		}

		return NewConnTransport(conn, d.cfg.writeTimeout), nil
	}

	t, err := OpenSerial(d.cfg.port, d.cfg.baudRate, d.cfg.dataBits)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	return t, nil
}

// Close waits for a running transaction to finish and closes the transport.
// Closing a closed dispenser is a no-op.
func (d *Dispenser) Close() error {
	if !d.opState.toClosing() {
		return nil
	}

	d.mu.Lock()
	var err error
	if d.transport != nil {
		err = d.transport.Close()
		d.transport = nil
	}
	d.mu.Unlock()

	d.opState.toClosed()
	d.logger.Info("dispenser: closed", "port", d.cfg.port)

	if err != nil {
		return fmt.Errorf("%w: close: %w", ErrTransport, err)
	}

	return nil
}

// Execute runs one transaction for req.
//
// The returned error is non-nil only when no transaction could run (nil
// request, closed dispenser, cancelled context) or the transport failed; in
// the latter case the partial Transaction is returned as well. Device level
// outcomes are reported through Transaction.Outcome and Transaction.Err.
func (d *Dispenser) Execute(ctx context.Context, req *efd.Request) (*Transaction, error) {
	if req == nil {
		return nil, ErrNilRequest
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	// re-check under the lock: Close may have run while we waited
	if !d.opState.IsOpened() || d.transport == nil {
		return nil, ErrNotOpen
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.metrics.incTransactionCount()

	h := handshake{
		transport:   d.transport,
		readTimeout: d.cfg.readTimeout,
		logger:      d.logger,
	}
	tx, err := h.run(req)
	d.metrics.record(tx, err)

	if err != nil {
		d.logger.Error("dispenser: transaction aborted",
			"request", req.String(),
			"state", tx.State.String(),
			"error", err,
		)

		return tx, err
	}

	d.logger.Debug("dispenser: transaction done",
		"request", req.String(),
		"outcome", tx.Outcome.String(),
		"duration", tx.Duration,
	)

	return tx, nil
}

// ReadResponse reads one frame outside of a transaction and decodes it.
// A read timeout yields a NoResponse result.
func (d *Dispenser) ReadResponse(ctx context.Context) (efd.Response, error) {
	if err := ctx.Err(); err != nil {
		return efd.Response{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.opState.IsOpened() || d.transport == nil {
		return efd.Response{}, ErrNotOpen
	}

	raw, err := d.transport.ReadUntil(efd.ETX, d.cfg.readTimeout)
	if err != nil {
		return efd.Decode(raw), transportError("read response", err)
	}

	resp := efd.Decode(raw)
	if cmd, ok := resp.Command(); ok {
		d.logger.Debug("dispenser: command frame read", "command", cmd.String(), "data", resp.Data)
	} else {
		d.logger.Debug("dispenser: response read", "kind", resp.Kind.String(), "code", resp.StatusCode())
	}

	return resp, nil
}

// build runs req, or counts err as a rejected command.
func (d *Dispenser) build(ctx context.Context, req *efd.Request, err error) (*Transaction, error) {
	if err != nil {
		d.metrics.incValidationErrCount()
		d.logger.Debug("dispenser: command rejected", "error", err)

		return nil, err
	}

	return d.Execute(ctx, req)
}

// MemoryChange selects memory location 0-399.
func (d *Dispenser) MemoryChange(ctx context.Context, location int) (*Transaction, error) {
	req, err := efd.NewMemoryChange(location)
	return d.build(ctx, req, err)
}

// TimedMode switches to Timed mode.
func (d *Dispenser) TimedMode(ctx context.Context) (*Transaction, error) {
	return d.Execute(ctx, efd.NewTimedMode())
}

// SteadyMode switches to Steady mode.
func (d *Dispenser) SteadyMode(ctx context.Context) (*Transaction, error) {
	return d.Execute(ctx, efd.NewSteadyMode())
}

// ToggleTimeSteady toggles between Timed and Steady modes.
func (d *Dispenser) ToggleTimeSteady(ctx context.Context) (*Transaction, error) {
	return d.Execute(ctx, efd.NewTimeSteadyToggle())
}

// SetPressure sets the pressure of the current memory location, 0-6895 unitless.
func (d *Dispenser) SetPressure(ctx context.Context, value int) (*Transaction, error) {
	req, err := efd.NewPressureSet(value)
	return d.build(ctx, req, err)
}

// SetPressureIn sets the pressure, checked against the maximum of unit.
func (d *Dispenser) SetPressureIn(ctx context.Context, unit efd.PressureUnit, value int) (*Transaction, error) {
	req, err := efd.NewPressureSetFor(unit, value)
	return d.build(ctx, req, err)
}

// SetVacuum sets the vacuum of the current memory location, 0-448 unitless.
func (d *Dispenser) SetVacuum(ctx context.Context, value int) (*Transaction, error) {
	req, err := efd.NewVacuumSet(value)
	return d.build(ctx, req, err)
}

// SetDispenseTime sets the dispense time in seconds, 0 to 9.9999.
func (d *Dispenser) SetDispenseTime(ctx context.Context, seconds float64) (*Transaction, error) {
	req, err := efd.NewTimeSet(seconds)
	return d.build(ctx, req, err)
}

// SetPressureUnit selects the pressure unit.
func (d *Dispenser) SetPressureUnit(ctx context.Context, unit efd.PressureUnit) (*Transaction, error) {
	req, err := efd.NewPressureUnitSet(unit)
	return d.build(ctx, req, err)
}

// SetVacuumUnit selects the vacuum unit.
func (d *Dispenser) SetVacuumUnit(ctx context.Context, unit efd.VacuumUnit) (*Transaction, error) {
	req, err := efd.NewVacuumUnitSet(unit)
	return d.build(ctx, req, err)
}

// SetClock sets the real time clock.
func (d *Dispenser) SetClock(ctx context.Context, format efd.HourFormat, hour, minute int) (*Transaction, error) {
	req, err := efd.NewSetClock(format, hour, minute)
	return d.build(ctx, req, err)
}

// SetDate sets the real time clock date; year is two digits.
func (d *Dispenser) SetDate(ctx context.Context, month, day, year int) (*Transaction, error) {
	req, err := efd.NewSetDate(month, day, year)
	return d.build(ctx, req, err)
}

// Dispense starts a dispense cycle, or ends one in Steady mode.
func (d *Dispenser) Dispense(ctx context.Context) (*Transaction, error) {
	return d.Execute(ctx, efd.NewDispense())
}

// IsTransportError returns true if err was caused by the transport.
func IsTransportError(err error) bool {
	return errors.Is(err, ErrTransport)
}
