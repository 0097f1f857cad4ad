package mem

import (
	"fmt"

	"github.com/xiaobingchan/TJU-cinea-os/internal/layout"
)

// FrameAllocator hands out fixed-size physical frames from a preallocated
// pool. Freed frames are pushed onto a stack and reused in LIFO order.
//
// The pool stands in for the boot-time physical memory map: capacity is fixed
// at construction and exhaustion is a hard error for the requesting operation.
type FrameAllocator struct {
	backing []byte
	free    []int
	release func() error
}

// NewFrameAllocator creates a pool of the given number of page-sized frames.
func NewFrameAllocator(frames int) (*FrameAllocator, error) {
	if frames <= 0 {
		return nil, fmt.Errorf("%w: %d frames", ErrBadPool, frames)
	}
	backing, release, err := newPool(frames * layout.PageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPool, err)
	}
	free := make([]int, frames)
	for i := range free {
		free[i] = frames - 1 - i // hand out low frames first
	}
	return &FrameAllocator{backing: backing, free: free, release: release}, nil
}

// Alloc pops a free frame and returns its index, or ErrOutOfFrames.
func (fa *FrameAllocator) Alloc() (int, error) {
	n := len(fa.free)
	if n == 0 {
		return 0, ErrOutOfFrames
	}
	idx := fa.free[n-1]
	fa.free = fa.free[:n-1]
	return idx, nil
}

// Free returns a frame to the pool. The frame contents are zeroed so a later
// mapping never observes a previous owner's bytes.
func (fa *FrameAllocator) Free(idx int) {
	frame := fa.frame(idx)
	for i := range frame {
		frame[i] = 0
	}
	fa.free = append(fa.free, idx)
}

// FreeFrames reports how many frames remain in the pool.
func (fa *FrameAllocator) FreeFrames() int {
	return len(fa.free)
}

// frame returns the backing bytes of one frame.
func (fa *FrameAllocator) frame(idx int) []byte {
	off := idx * layout.PageSize
	return fa.backing[off : off+layout.PageSize]
}

// Close releases the backing pool. The allocator must not be used afterwards.
func (fa *FrameAllocator) Close() error {
	if fa.release == nil {
		return nil
	}
	err := fa.release()
	fa.release = nil
	fa.backing = nil
	fa.free = nil
	return err
}
