package proc

import (
	"fmt"
	"sync/atomic"

	"github.com/xiaobingchan/TJU-cinea-os/internal/layout"
	"github.com/xiaobingchan/TJU-cinea-os/internal/logger"
	"github.com/xiaobingchan/TJU-cinea-os/kernel/alloc"
	"github.com/xiaobingchan/TJU-cinea-os/kernel/image"
	"github.com/xiaobingchan/TJU-cinea-os/kernel/mem"
)

// argBufSize is the heap allocation that receives a spawned process's
// argument strings and rebuilt reference array.
const argBufSize = 1024

// argRefSize is the size of one argument reference: a pointer word and a
// length word.
const argRefSize = 16

// Memory is the view of the address space the lifecycle manager needs: the
// page-mapping boundary plus byte access for image loading and argument
// marshaling. *mem.AddressSpace satisfies it.
type Memory interface {
	mem.Mapper
	ReadAt(p []byte, addr uintptr) error
	WriteAt(p []byte, addr uintptr) error
	ReadU64(addr uintptr) (uint64, error)
	WriteU64(addr uintptr, v uint64) error
}

// UserAddr is a caller-supplied address, polymorphic between an offset into
// the current process's code region and an absolute address: values
// numerically below the code base are offsets rebased against it, values at
// or above it are taken as already absolute. This dual interpretation is the
// ABI convention for passing pointers across the user/kernel boundary and is
// preserved exactly.
type UserAddr uintptr

// regionCursor hands out address-space regions from a monotonically
// increasing cursor with atomic read-modify-write semantics, so concurrent
// takers never receive overlapping regions. Regions are never returned to a
// free pool, even after the owning process exits - a known limitation. The
// cursor is the single place to swap in a reclaiming region allocator later.
type regionCursor struct {
	next atomic.Uint64
}

func (c *regionCursor) init(base uintptr) {
	c.next.Store(uint64(base))
}

// take reserves size bytes and returns the region base.
func (c *regionCursor) take(size uintptr) uintptr {
	return uintptr(c.next.Add(uint64(size)) - uint64(size))
}

// Config assembles a Kernel's collaborators.
type Config struct {
	// Memory is the page-mapping boundary and byte-level address space.
	Memory Memory

	// User performs the privilege transition. Defaults to NopUserContext.
	User UserContext

	// UserCodeSelector and UserDataSelector are the segment selectors
	// pushed for the transition; they come from the externally owned GDT.
	UserCodeSelector uint64
	UserDataSelector uint64
}

// Kernel is the explicit execution context for the process/memory core: the
// process table, the current-process register, the region cursors, and the
// kernel-global heap allocator. Nothing in this package lives in package
// scope, so independent kernels can coexist.
type Kernel struct {
	mem   mem.Mapper
	space Memory
	user  UserContext

	userCode uint64
	userData uint64

	heap  *alloc.Locked // kernel-global allocator
	table *Table

	cur    atomic.Int64 // current-process id register
	nextID atomic.Int64 // doubles as the live-process counter

	codeCursor regionCursor
	heapCursor regionCursor
}

// New maps and initializes the kernel heap and boots a process table with
// the root process current. A mapping failure here is fatal to the caller:
// without a kernel heap nothing else can operate.
func New(cfg Config) (*Kernel, error) {
	if cfg.Memory == nil {
		return nil, fmt.Errorf("proc: config needs a Memory")
	}
	user := cfg.User
	if user == nil {
		user = NopUserContext{}
	}

	k := &Kernel{
		mem:      cfg.Memory,
		space:    cfg.Memory,
		user:     user,
		userCode: cfg.UserCodeSelector,
		userData: cfg.UserDataSelector,
		heap:     alloc.NewLocked(),
		table:    NewTable(),
	}
	k.nextID.Store(1)
	k.codeCursor.init(layout.ProcCodeBase)
	k.heapCursor.init(layout.ProcHeapBase)

	if err := k.mem.AllocPages(layout.KernelHeapBase, layout.KernelHeapSize); err != nil {
		return nil, fmt.Errorf("proc: kernel heap init: %w", err)
	}
	k.heap.Init(layout.KernelHeapBase, layout.KernelHeapSize)

	return k, nil
}

// Heap returns the kernel-global allocator.
func (k *Kernel) Heap() *alloc.Locked { return k.heap }

// Table returns the process table.
func (k *Kernel) Table() *Table { return k.table }

// ID returns the current process id.
func (k *Kernel) ID() int { return int(k.cur.Load()) }

// SetID sets the current process id. The external scheduler and interrupt
// path use this when restoring a process's context.
func (k *Kernel) SetID(id int) { k.cur.Store(int64(id)) }

// Live returns the live-process counter.
func (k *Kernel) Live() int { return int(k.nextID.Load()) }

// Create builds a process record from a binary image: carves the next
// code/stack region, loads the image, clones inherited state from the current
// process, initializes a default-sized private heap, and stores the record in
// the table. It returns the new process id.
//
// A malformed image fails before any region is consumed or any table state
// is touched.
func (k *Kernel) Create(bin []byte) (int, error) {
	img, err := image.Parse(bin)
	if err != nil {
		return 0, fmt.Errorf("create: %w", err)
	}

	id := int(k.nextID.Add(1) - 1)
	if id >= MaxProcs {
		k.nextID.Add(-1)
		return 0, fmt.Errorf("create: %w", ErrTableFull)
	}

	codeAddr := k.codeCursor.take(layout.MaxProcSize)
	stackAddr := codeAddr + layout.MaxProcSize - layout.PageSize
	logger.L.Debug("create process",
		"id", id, "code", fmt.Sprintf("%#x", codeAddr), "stack", fmt.Sprintf("%#x", stackAddr))

	if err := k.mem.AllocPages(codeAddr, layout.MaxProcSize); err != nil {
		k.nextID.Add(-1)
		return 0, fmt.Errorf("create: code region: %w", err)
	}
	for _, seg := range img.Segments {
		if err := k.space.WriteAt(seg.Data, codeAddr+seg.Addr); err != nil {
			k.nextID.Add(-1)
			return 0, fmt.Errorf("create: load segment at +%#x: %w", seg.Addr, err)
		}
	}

	parent, err := k.table.Snapshot(k.ID())
	if err != nil {
		k.nextID.Add(-1)
		return 0, fmt.Errorf("create: %w", err)
	}

	heapAddr := k.heapCursor.take(layout.DefaultHeapSize)
	if err := k.mem.AllocPages(heapAddr, layout.DefaultHeapSize); err != nil {
		k.nextID.Add(-1)
		return 0, fmt.Errorf("create: heap region: %w", err)
	}
	heap := alloc.NewLocked()
	heap.Init(heapAddr, layout.DefaultHeapSize)

	p := &Process{
		id:         id,
		codeAddr:   codeAddr,
		stackAddr:  stackAddr,
		entryPoint: img.Entry,
		stackFrame: parent.stackFrame,
		registers:  parent.registers,
		data:       parent.data, // parent is already a deep snapshot
		parent:     parent.id,
		heap:       heap,
	}

	k.table.mu.Lock()
	defer k.table.mu.Unlock()
	if err := k.table.put(p); err != nil {
		k.nextID.Add(-1)
		return 0, err
	}
	return id, nil
}

// Exec marshals the caller-supplied arguments into the target process's
// private heap, makes the target current, and performs the one-way privilege
// transition. Execution in this kernel context ends at the Enter call for the
// process's initial invocation; control comes back only through the external
// interrupt/syscall path.
func (k *Kernel) Exec(id int, argsPtr UserAddr, argsLen int) error {
	target, err := k.table.Snapshot(id)
	if err != nil {
		return fmt.Errorf("exec: %w", err)
	}

	// Argument buffers may be passed by offset inside the *current*
	// process's image, so rebase before reading.
	refBase := k.PtrFromAddr(argsPtr)

	args := make([][]byte, argsLen)
	for i := 0; i < argsLen; i++ {
		ptr, err := k.space.ReadU64(refBase + uintptr(i*argRefSize))
		if err != nil {
			return fmt.Errorf("exec: arg %d ref: %w", i, err)
		}
		n, err := k.space.ReadU64(refBase + uintptr(i*argRefSize) + 8)
		if err != nil {
			return fmt.Errorf("exec: arg %d len: %w", i, err)
		}
		buf := make([]byte, n)
		if err := k.space.ReadAt(buf, uintptr(ptr)); err != nil {
			return fmt.Errorf("exec: arg %d bytes: %w", i, err)
		}
		args[i] = buf
	}

	// Copy the strings, then a rebuilt reference array, into the target's
	// own heap so the pointers stay valid in its address space.
	cursor, err := target.heap.Alloc(argBufSize, 1)
	if err != nil {
		return fmt.Errorf("exec: arg buffer: %w", err)
	}
	refs := make([][2]uint64, argsLen)
	for i, a := range args {
		if err := k.space.WriteAt(a, cursor); err != nil {
			return fmt.Errorf("exec: copy arg %d: %w", i, err)
		}
		refs[i] = [2]uint64{uint64(cursor), uint64(len(a))}
		cursor += uintptr(len(a))
	}
	cursor = layout.AlignUp(cursor, 8)
	arrayPtr := cursor
	for i, r := range refs {
		if err := k.space.WriteU64(cursor, r[0]); err != nil {
			return fmt.Errorf("exec: write arg %d ref: %w", i, err)
		}
		if err := k.space.WriteU64(cursor+8, r[1]); err != nil {
			return fmt.Errorf("exec: write arg %d len: %w", i, err)
		}
		cursor += argRefSize
	}

	k.SetID(id)
	logger.L.Debug("enter user mode", "id", id,
		"rip", fmt.Sprintf("%#x", target.codeAddr+target.entryPoint))

	// Interrupts stay disabled from here until the pushed flags are
	// restored by the interrupt return inside Enter.
	k.user.Enter(EnterFrame{
		StackSegment:       k.userData,
		StackPointer:       target.stackAddr,
		CPUFlags:           interruptsEnabled,
		CodeSegment:        k.userCode,
		InstructionPointer: target.codeAddr + target.entryPoint,
		ArgsPtr:            arrayPtr,
		ArgsLen:            argsLen,
	})
	return nil
}

// Spawn creates a process from bin and immediately executes it.
func (k *Kernel) Spawn(bin []byte, argsPtr UserAddr, argsLen int) error {
	id, err := k.Create(bin)
	if err != nil {
		return err
	}
	return k.Exec(id, argsPtr, argsLen)
}

// Exit tears down the current process: releases its code region pages,
// decrements the live-process counter, and makes the parent current. The
// table slot itself is not cleared or reclaimed.
func (k *Kernel) Exit() {
	p, err := k.table.Snapshot(k.ID())
	if err != nil {
		logger.L.Error("exit with no current process", "id", k.ID())
		return
	}
	k.mem.FreePages(p.codeAddr, layout.MaxProcSize)
	k.nextID.Add(-1)
	// No scheduler exists; control reverts directly to the parent.
	k.SetID(p.parent)
}

// PtrFromAddr resolves a caller-supplied address against the current
// process's code base: an address below the base is an offset and is rebased,
// anything else is already absolute.
func (k *Kernel) PtrFromAddr(a UserAddr) uintptr {
	base := k.CodeAddr()
	if uintptr(a) < base {
		return base + uintptr(a)
	}
	return uintptr(a)
}

// AllocatorGrow extends the current process's heap: carves a fresh region
// from the heap cursor, maps it, and hands it to the process allocator as new
// free space.
func (k *Kernel) AllocatorGrow(size uintptr) error {
	heap := k.HeapAllocator()
	if heap == nil {
		return fmt.Errorf("grow: %w: id %d", ErrNoSuchProcess, k.ID())
	}
	addr := k.heapCursor.take(size)
	if err := k.mem.AllocPages(addr, size); err != nil {
		return fmt.Errorf("grow: %w", err)
	}
	heap.Grow(addr, size)
	return nil
}
