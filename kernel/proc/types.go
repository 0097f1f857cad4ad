package proc

import (
	"github.com/xiaobingchan/TJU-cinea-os/kernel/alloc"
)

// Registers is the saved general-purpose register snapshot, captured on
// kernel entry and restored before returning to the process.
type Registers struct {
	R11 uint64
	R10 uint64
	R9  uint64
	R8  uint64
	RDI uint64
	RSI uint64
	RDX uint64
	RCX uint64
	RAX uint64
}

// StackFrame is the saved CPU execution context pushed by the hardware on
// interrupt entry and consumed by the interrupt return.
type StackFrame struct {
	InstructionPointer uintptr
	CodeSegment        uint64
	CPUFlags           uint64
	StackPointer       uintptr
	StackSegment       uint64
}

// ProcessData is the process-scoped state a child inherits by value from its
// parent at creation time: environment variables, working directory, and the
// optional authenticated user name (empty when unauthenticated).
type ProcessData struct {
	env  map[string]string
	dir  string
	user string
}

// NewProcessData returns process data with an empty environment.
func NewProcessData(dir, user string) ProcessData {
	return ProcessData{
		env:  make(map[string]string),
		dir:  dir,
		user: user,
	}
}

// clone deep-copies the data so parent and child never alias the same map.
func (d ProcessData) clone() ProcessData {
	env := make(map[string]string, len(d.env))
	for k, v := range d.env {
		env[k] = v
	}
	return ProcessData{env: env, dir: d.dir, user: d.user}
}

// Process is one process record. Records are owned by the Table; mutation
// goes through Kernel accessors, which take the table lock.
type Process struct {
	id         int
	codeAddr   uintptr
	stackAddr  uintptr
	entryPoint uintptr
	stackFrame StackFrame
	registers  Registers
	data       ProcessData
	parent     int
	heap       *alloc.Locked
}

// newRootProcess builds the slot-0 record every kernel boots with.
func newRootProcess() *Process {
	return &Process{
		data: NewProcessData("/", ""),
		heap: alloc.NewLocked(),
	}
}

// ID returns the process id.
func (p *Process) ID() int { return p.id }

// CodeAddr returns the base of the process's loaded image.
func (p *Process) CodeAddr() uintptr { return p.codeAddr }

// StackAddr returns the top-of-stack address, one page below the end of the
// code/stack region.
func (p *Process) StackAddr() uintptr { return p.stackAddr }

// EntryPoint returns the execution start, relative to CodeAddr.
func (p *Process) EntryPoint() uintptr { return p.entryPoint }

// Parent returns the id of the creating process.
func (p *Process) Parent() int { return p.parent }

// Heap returns the process's private heap allocator.
func (p *Process) Heap() *alloc.Locked { return p.heap }

// snapshot copies the record. The heap allocator is shared, not copied: it is
// the one piece of a record with reference semantics.
func (p *Process) snapshot() Process {
	s := *p
	s.data = p.data.clone()
	return s
}
