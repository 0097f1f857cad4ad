// Package proc owns the process table and the process lifecycle: creating a
// process from a binary image, transferring control to it in user mode, and
// tearing it down on exit.
//
// # Process Records
//
// Each process is described by a Process record: identity, the base of its
// loaded image, its stack top, entry point, saved CPU context, inherited
// environment/directory/user state, and an exclusively owned private heap
// allocator. Records live in a fixed-capacity Table guarded by a
// reader/writer lock.
//
// # Lifecycle
//
// A record moves through Created (image loaded, heap initialized, inserted
// into the table), Running (privilege transition performed), and Exited (code
// pages released, live counter decremented, current process reverted to the
// parent). There is no way back from Running inside this package: once
// control enters user mode, the kernel regains it only through the external
// interrupt/syscall path.
//
// # Execution Context
//
// All operations hang off a Kernel value rather than package-level state: the
// current-process register, the monotonic region cursors, the table, and the
// page-mapping boundary are fields of Kernel, so tests can run several
// kernels side by side deterministically.
//
// # Address Space Layout
//
// Code/stack regions and heap regions are carved from two independent,
// monotonically increasing cursors (see internal/layout for the bases).
// Regions are never returned to a free pool, even after exit. The leak is
// isolated inside regionCursor so a reclaiming allocator can be substituted
// without touching lifecycle logic.
package proc
