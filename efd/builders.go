package efd

import (
	"fmt"
	"math"
)

// Instrument ranges accepted by the builders.
const (
	MaxMemoryLocation = 399
	MaxPressure       = 6895
	MaxVacuum         = 448

	// MaxDispenseTime is the longest dispense time in seconds.
	MaxDispenseTime = 9.9999

	// dispenseTimeScale converts seconds into the 5-digit wire value.
	dispenseTimeScale = 10000
)

// Request is a validated command ready to be framed and sent.
// Build one with the New* functions.
type Request struct {
	Command Command
	Payload string
}

// Frame encodes the request. Requests returned by the builders always encode.
func (r *Request) Frame() []byte {
	frame, err := Encode(r.Command, r.Payload)
	if err != nil {
		panic(err)
	}

	return frame
}

func (r *Request) String() string {
	if r.Payload == "" {
		return r.Command.String()
	}

	return fmt.Sprintf("%s(%s)", r.Command, r.Payload)
}

func newRequest(cmd Command, payload string) *Request {
	return &Request{Command: cmd, Payload: payload}
}

// NewMemoryChange selects memory location 0-399. Payload: 3-digit location.
func NewMemoryChange(location int) (*Request, error) {
	if err := checkRange("memory location", location, 0, MaxMemoryLocation); err != nil {
		return nil, err
	}

	return newRequest(MemoryChange, fmt.Sprintf("%03d", location)), nil
}

// NewTimedMode switches the dispenser to Timed mode.
func NewTimedMode() *Request { return newRequest(TimedMode, "") }

// NewSteadyMode switches the dispenser to Steady mode.
func NewSteadyMode() *Request { return newRequest(SteadyMode, "") }

// NewTimeSteadyToggle toggles between Timed and Steady modes.
func NewTimeSteadyToggle() *Request { return newRequest(TimeSteadyToggle, "") }

// NewDispense starts a dispense cycle. In Steady mode a second Dispense ends it.
func NewDispense() *Request { return newRequest(Dispense, "") }

// NewPressureSet sets the pressure of the current memory location.
//
// The value is unitless and excludes the decimal point; its meaning depends on
// the pressure unit selected on the dispenser. Use NewPressureSetFor to check the
// value against a specific unit.
func NewPressureSet(value int) (*Request, error) {
	if err := checkRange("pressure", value, 0, MaxPressure); err != nil {
		return nil, err
	}

	return newRequest(PressureSet, fmt.Sprintf("%04d", value)), nil
}

// NewPressureSetFor is NewPressureSet with the upper bound of unit.
func NewPressureSetFor(unit PressureUnit, value int) (*Request, error) {
	if !unit.Valid() {
		return nil, &ValidationError{Field: "pressure unit", Value: unit, Min: PSI, Max: KPA}
	}
	if err := checkRange("pressure", value, 0, unit.MaxPressure()); err != nil {
		return nil, err
	}

	return newRequest(PressureSet, fmt.Sprintf("%04d", value)), nil
}

// NewVacuumSet sets the vacuum of the current memory location (0-448, unitless).
func NewVacuumSet(value int) (*Request, error) {
	if err := checkRange("vacuum", value, 0, MaxVacuum); err != nil {
		return nil, err
	}

	return newRequest(VacuumSet, fmt.Sprintf("%04d", value)), nil
}

// NewTimeSet sets the dispense time in seconds, 0.0000 to 9.9999.
// Payload: round(seconds*10000) as 5 digits.
func NewTimeSet(seconds float64) (*Request, error) {
	if math.IsNaN(seconds) {
		return nil, &ValidationError{Field: "dispense time", Value: seconds, Min: 0.0, Max: MaxDispenseTime}
	}
	if err := checkRange("dispense time", seconds, 0, MaxDispenseTime); err != nil {
		return nil, err
	}

	ticks := int(math.Round(seconds * dispenseTimeScale))

	return newRequest(TimeSet, fmt.Sprintf("%05d", ticks)), nil
}

// NewSetClock sets the real time clock.
// Hours are 1-12 for AM/PM and 0-23 for Hour24; minutes are 0-59.
// Payload: HhhMmmAMa where a is the format code.
func NewSetClock(format HourFormat, hour, minute int) (*Request, error) {
	var err error
	switch format {
	case AM, PM:
		err = checkRange("hour", hour, 1, 12)
	case Hour24:
		err = checkRange("hour", hour, 0, 23)
	default:
		return nil, &ValidationError{Field: "hour format", Value: format, Min: AM, Max: Hour24}
	}
	if err != nil {
		return nil, err
	}
	if err := checkRange("minute", minute, 0, 59); err != nil {
		return nil, err
	}

	return newRequest(SetClock, fmt.Sprintf("H%02dM%02dAM%d", hour, minute, int(format))), nil
}

// NewSetDate sets the real time clock date. Day is not checked against the
// month length. Payload: MmmDddYyy.
func NewSetDate(month, day, year int) (*Request, error) {
	if err := checkRange("month", month, 1, 12); err != nil {
		return nil, err
	}
	if err := checkRange("day", day, 1, 31); err != nil {
		return nil, err
	}
	if err := checkRange("year", year, 0, 99); err != nil {
		return nil, err
	}

	return newRequest(SetDate, fmt.Sprintf("M%02dD%02dY%02d", month, day, year)), nil
}

// NewPressureUnitSet selects the pressure unit. Payload: 2-digit unit code.
// See PressureUnit for the status of the codes.
func NewPressureUnitSet(unit PressureUnit) (*Request, error) {
	if !unit.Valid() {
		return nil, &ValidationError{Field: "pressure unit", Value: unit, Min: PSI, Max: KPA}
	}

	return newRequest(PressureUnitSet, fmt.Sprintf("%02d", int(unit))), nil
}

// NewVacuumUnitSet selects the vacuum unit. Payload: 2-digit unit code.
// See VacuumUnit for the status of the codes.
func NewVacuumUnitSet(unit VacuumUnit) (*Request, error) {
	if !unit.Valid() {
		return nil, &ValidationError{Field: "vacuum unit", Value: unit, Min: VacuumKPA, Max: Torr}
	}

	return newRequest(VacuumUnitSet, fmt.Sprintf("%02d", int(unit))), nil
}
