// Package dispenser drives a Nordson EFD dispenser over a serial line.
//
// # Transactions
//
// Every write command is wrapped in a single-shot line-control exchange:
//
//	host -> ENQ
//	host <- ACK            (anything else: host sends NAK, NotAcknowledged)
//	host -> frame
//	host <- A0 / A2 / ...  (A0: Succeeded, A2: DeviceError, other: UnexpectedReply)
//	host -> EOT            (NAK after an unexpected reply)
//
// The exchange never retries: write commands are not idempotent (a repeated
// Dispense or TimeSteadyToggle changes the instrument state twice), so retry
// policy belongs to the caller.
//
// # Usage
//
//	cfg, err := dispenser.NewConfig("/dev/ttyUSB0", dispenser.WithReadTimeout(2*time.Second))
//	d, err := dispenser.New(cfg)
//	if err := d.Open(); err != nil { ... }
//	defer d.Close()
//
//	tx, err := d.SetPressure(ctx, 250)
//	if err != nil { ... }         // validation or transport failure
//	if err := tx.Err(); err != nil { ... } // NAK, A2 or unexpected reply
//
// # Concurrency
//
// The line is half-duplex, so a Dispenser runs one transaction at a time and
// serializes concurrent callers. Separate instruments are separate Dispensers
// with their own transports; a [Group] drives several of them in parallel.
package dispenser
