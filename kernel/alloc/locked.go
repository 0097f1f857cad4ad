package alloc

import (
	"runtime"
	"sync/atomic"
)

// SpinLock is a test-and-set spin lock. The kernel context has nothing to
// block on, so waiters busy-wait; critical sections here are short address
// arithmetic, never I/O.
type SpinLock struct {
	state atomic.Uint32
}

// Lock spins until the lock is acquired.
func (l *SpinLock) Lock() {
	for !l.state.CompareAndSwap(0, 1) {
		runtime.Gosched()
	}
}

// Unlock releases the lock.
func (l *SpinLock) Unlock() {
	l.state.Store(0)
}

// Locked gives one FreeList a safe shared-mutable contract: every operation
// holds the spin lock for its duration and releases it on every exit path, so
// no caller can observe a partially mutated list.
type Locked struct {
	mu    SpinLock
	inner FreeList
}

// NewLocked returns a Locked wrapper around a zero-value FreeList.
func NewLocked() *Locked {
	return &Locked{}
}

// Init establishes the managed region. See FreeList.Init for the
// double-initialization precondition.
func (l *Locked) Init(start, size uintptr) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.inner.Init(start, size)
}

// Alloc allocates size bytes at the given alignment.
func (l *Locked) Alloc(size, align uintptr) (uintptr, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner.Alloc(size, align)
}

// Dealloc frees a previously allocated range.
func (l *Locked) Dealloc(addr, size uintptr) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.inner.Dealloc(addr, size)
}

// Grow adds a freshly mapped region as free space.
func (l *Locked) Grow(start, size uintptr) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.inner.Grow(start, size)
}

// FreeSpace returns the sum of all free block sizes.
func (l *Locked) FreeSpace() uintptr {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inner.FreeSpace()
}
