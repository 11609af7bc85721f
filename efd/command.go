package efd

// Command identifies a logical dispenser command.
//
// The set is closed: every Command declared here has an opcode, and values
// forged by conversion are rejected by Encode.
type Command uint8

const (
	// MemoryChange selects the active memory location (0-399).
	MemoryChange Command = iota
	// TimedMode switches the dispenser to Timed mode.
	TimedMode
	// SteadyMode switches the dispenser to Steady mode.
	SteadyMode
	// TimeSteadyToggle toggles between Timed and Steady modes.
	TimeSteadyToggle
	// PressureSet updates the pressure of the current memory location.
	PressureSet
	// VacuumSet updates the vacuum of the current memory location.
	VacuumSet
	// TimeSet updates the dispense time of the current memory location.
	TimeSet
	// PressureUnitSet selects the pressure unit.
	PressureUnitSet
	// VacuumUnitSet selects the vacuum unit.
	VacuumUnitSet
	// SetClock sets the real time clock.
	SetClock
	// SetDate sets the real time clock date.
	SetDate
	// Dispense starts a dispense cycle (or ends one in Steady mode).
	Dispense

	numCommands
)

var opcodes = [numCommands][OpcodeSize]byte{
	MemoryChange:     {'C', 'H', ' ', ' '},
	TimedMode:        {'T', 'T', ' ', ' '},
	SteadyMode:       {'M', 'T', ' ', ' '},
	TimeSteadyToggle: {'T', 'M', ' ', ' '},
	PressureSet:      {'P', 'S', ' ', ' '},
	VacuumSet:        {'V', 'S', ' ', ' '},
	TimeSet:          {'D', 'S', ' ', ' '},
	PressureUnitSet:  {'E', '6', ' ', ' '},
	VacuumUnitSet:    {'E', '7', ' ', ' '},
	SetClock:         {'E', 'B', ' ', ' '},
	SetDate:          {'E', 'C', ' ', ' '},
	Dispense:         {'D', 'I', ' ', ' '},
}

var commandNames = [numCommands]string{
	MemoryChange:     "MemoryChange",
	TimedMode:        "TimedMode",
	SteadyMode:       "SteadyMode",
	TimeSteadyToggle: "TimeSteadyToggle",
	PressureSet:      "PressureSet",
	VacuumSet:        "VacuumSet",
	TimeSet:          "TimeSet",
	PressureUnitSet:  "PressureUnitSet",
	VacuumUnitSet:    "VacuumUnitSet",
	SetClock:         "SetClock",
	SetDate:          "SetDate",
	Dispense:         "Dispense",
}

// Valid reports whether c is a declared command.
func (c Command) Valid() bool {
	return c < numCommands
}

// Opcode returns a copy of the 4-byte opcode of c, or nil if c is not valid.
func (c Command) Opcode() []byte {
	if !c.Valid() {
		return nil
	}

	op := opcodes[c]

	return op[:]
}

func (c Command) String() string {
	if !c.Valid() {
		return "Unknown"
	}

	return commandNames[c]
}

// Commands returns every declared command in opcode table order.
func Commands() []Command {
	cmds := make([]Command, numCommands)
	for i := range cmds {
		cmds[i] = Command(i)
	}

	return cmds
}

// LookupOpcode returns the command whose opcode equals code.
func LookupOpcode(code string) (Command, bool) {
	if len(code) != OpcodeSize {
		return 0, false
	}

	for c, op := range opcodes {
		if string(op[:]) == code {
			return Command(c), true
		}
	}

	return 0, false
}
