package proc

// interruptsEnabled is the RFLAGS value pushed for the transition: all flags
// clear except the interrupt-enable bit.
const interruptsEnabled = 0x200

// EnterFrame is the register state for the one-way privilege transition:
// the values pushed before the interrupt return, in push order, plus the two
// argument registers handed to the process entry point.
type EnterFrame struct {
	StackSegment       uint64
	StackPointer       uintptr
	CPUFlags           uint64
	CodeSegment        uint64
	InstructionPointer uintptr

	// ArgsPtr and ArgsLen travel in the first two argument registers.
	ArgsPtr uintptr
	ArgsLen int
}

// UserContext performs the switch to user-mode execution. Enter is a one-way
// control transfer: in a real kernel it never returns control to the calling
// frame, and later kernel activity for the process arrives only through the
// external interrupt/syscall re-entry path. Host-side implementations (tests,
// tooling) may return, after which the kernel caller's frame is dead code for
// the spawned process.
type UserContext interface {
	Enter(EnterFrame)
}

// NopUserContext discards the transition. Useful for exercising the lifecycle
// without a user-mode runtime attached.
type NopUserContext struct{}

// Enter implements UserContext.
func (NopUserContext) Enter(EnterFrame) {}

// Compile-time interface check
var _ UserContext = NopUserContext{}
