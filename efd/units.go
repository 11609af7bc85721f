package efd

// HourFormat is the clock format code sent with SetClock.
type HourFormat int

const (
	// AM is a 12-hour clock time before noon.
	AM HourFormat = 0
	// PM is a 12-hour clock time after noon.
	PM HourFormat = 1
	// Hour24 is a 24-hour clock time.
	Hour24 HourFormat = 2
)

func (f HourFormat) String() string {
	switch f {
	case AM:
		return "AM"
	case PM:
		return "PM"
	case Hour24:
		return "24h"
	default:
		return "unknown"
	}
}

// PressureUnit is the unit code sent with PressureUnitSet.
//
// The numeric codes are not confirmed against the dispenser documentation;
// check NewPressureUnitSet frames on a bench unit before using them in
// production.
type PressureUnit int

const (
	// PSI selects pounds per square inch.
	PSI PressureUnit = 0
	// BAR selects bar.
	BAR PressureUnit = 1
	// KPA selects kilopascal.
	KPA PressureUnit = 2
)

// Valid reports whether u is a known pressure unit.
func (u PressureUnit) Valid() bool {
	return u >= PSI && u <= KPA
}

// MaxPressure returns the largest PressureSet value accepted in unit u.
// psi values carry one decimal (100.0 psi), bar and kPa share the 6895 ceiling.
func (u PressureUnit) MaxPressure() int {
	if u == PSI {
		return 1000
	}

	return MaxPressure
}

func (u PressureUnit) String() string {
	switch u {
	case PSI:
		return "psi"
	case BAR:
		return "bar"
	case KPA:
		return "kPa"
	default:
		return "unknown"
	}
}

// VacuumUnit is the unit code sent with VacuumUnitSet.
//
// As with PressureUnit, the numeric codes are not confirmed against the
// dispenser documentation.
type VacuumUnit int

const (
	// VacuumKPA selects kilopascal.
	VacuumKPA VacuumUnit = 0
	// InchesH2O selects inches of water.
	InchesH2O VacuumUnit = 1
	// InchesHg selects inches of mercury.
	InchesHg VacuumUnit = 2
	// MMHg selects millimetres of mercury.
	MMHg VacuumUnit = 3
	// Torr selects torr.
	Torr VacuumUnit = 4
)

// Valid reports whether u is a known vacuum unit.
func (u VacuumUnit) Valid() bool {
	return u >= VacuumKPA && u <= Torr
}

func (u VacuumUnit) String() string {
	switch u {
	case VacuumKPA:
		return "kPa"
	case InchesH2O:
		return "inH2O"
	case InchesHg:
		return "inHg"
	case MMHg:
		return "mmHg"
	case Torr:
		return "Torr"
	default:
		return "unknown"
	}
}
