// Package trapcause enumerates the RISC-V exception and interrupt causes
// this emulator raises and the fatal/recoverable split.
package trapcause

// Kind identifies a trap cause. Exceptions and interrupts share the same
// numbering as the architectural cause values (interrupts are ORed with
// bit 63 by the trap unit before being written to *cause, not here).
type Kind uint64

// Exception causes, numbered per the RISC-V privileged spec.
const (
	InstructionAddressMisaligned Kind = 0
	InstructionAccessFault       Kind = 1
	IllegalInstruction           Kind = 2
	Breakpoint                   Kind = 3
	LoadAddressMisaligned        Kind = 4
	LoadAccessFault              Kind = 5
	StoreAMOAddressMisaligned    Kind = 6
	StoreAMOAccessFault          Kind = 7
	EnvironmentCallFromUMode     Kind = 8
	EnvironmentCallFromSMode     Kind = 9
	EnvironmentCallFromMMode     Kind = 11
	InstructionPageFault         Kind = 12
	LoadPageFault                Kind = 13
	StoreAMOPageFault            Kind = 15
)

// Interrupt causes (written with bit 63 set, matched against mie/mip
// bit position equal to the numeric value below).
const (
	SupervisorSoftware Kind = 1
	MachineSoftware     Kind = 3
	SupervisorTimer     Kind = 5
	MachineTimer        Kind = 7
	SupervisorExternal  Kind = 9
	MachineExternal     Kind = 11
)

var names = map[Kind]string{
	InstructionAddressMisaligned: "InstructionAddressMisaligned",
	InstructionAccessFault:       "InstructionAccessFault",
	IllegalInstruction:           "IllegalInstruction",
	Breakpoint:                   "Breakpoint",
	LoadAddressMisaligned:        "LoadAddressMisaligned",
	LoadAccessFault:              "LoadAccessFault",
	StoreAMOAddressMisaligned:    "StoreAMOAddressMisaligned",
	StoreAMOAccessFault:          "StoreAMOAccessFault",
	EnvironmentCallFromUMode:     "EnvironmentCallFromUMode",
	EnvironmentCallFromSMode:     "EnvironmentCallFromSMode",
	EnvironmentCallFromMMode:     "EnvironmentCallFromMMode",
	InstructionPageFault:         "InstructionPageFault",
	LoadPageFault:                "LoadPageFault",
	StoreAMOPageFault:            "StoreAMOPageFault",
}

func (k Kind) String() string {
	if n, ok := names[k]; ok {
		return n
	}
	return "Unknown"
}

// Exception is a synchronous trap raised by fetch, decode, execute, or
// address translation. It satisfies error so it can be returned and
// propagated to the execute boundary.
type Exception struct {
	Cause Kind
	Tval  uint64
}

func New(cause Kind) *Exception             { return &Exception{Cause: cause} }
func NewWithTval(cause Kind, tval uint64) *Exception {
	return &Exception{Cause: cause, Tval: tval}
}

func (e *Exception) Error() string { return e.Cause.String() }

// Fatal reports whether cause propagates to the host after the trap is
// taken.
func (k Kind) Fatal() bool {
	switch k {
	case InstructionAddressMisaligned, InstructionAccessFault,
		LoadAccessFault, StoreAMOAddressMisaligned, StoreAMOAccessFault:
		return true
	default:
		return false
	}
}
