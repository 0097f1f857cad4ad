package mem

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/xiaobingchan/TJU-cinea-os/internal/layout"
)

// Mapper is the page-mapping boundary consumed by the allocator and process
// lifecycle code. Implementations map whole pages; addr and size are rounded
// outward to page boundaries.
type Mapper interface {
	// AllocPages maps every page covering [addr, addr+size) to a freshly
	// obtained physical frame with read/write, user-accessible permissions.
	AllocPages(addr, size uintptr) error

	// FreePages unmaps every page covering [addr, addr+size), best effort.
	// Pages that are not mapped are silently skipped.
	FreePages(addr, size uintptr)
}

// AddressSpace is a sparse virtual address space backed by a FrameAllocator.
// It implements Mapper and supports byte-level access at virtual addresses.
type AddressSpace struct {
	mu     sync.RWMutex
	frames *FrameAllocator
	pages  map[uintptr]int // page base -> frame index
}

// NewAddressSpace creates an empty address space drawing frames from fa.
func NewAddressSpace(fa *FrameAllocator) *AddressSpace {
	return &AddressSpace{
		frames: fa,
		pages:  make(map[uintptr]int),
	}
}

// pageRange yields the page bases covering [addr, addr+size). A zero size
// still covers the page containing addr, matching the range-inclusive
// semantics of the mapping layer this stands in for.
func pageRange(addr, size uintptr) (first, last uintptr) {
	first = addr &^ uintptr(layout.PageMask)
	end := addr + size
	if size > 0 {
		end--
	}
	last = end &^ uintptr(layout.PageMask)
	return first, last
}

// AllocPages implements Mapper. On failure, pages mapped earlier in the range
// stay mapped; the caller treats the whole operation as fatal.
func (as *AddressSpace) AllocPages(addr, size uintptr) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	first, last := pageRange(addr, size)
	for page := first; ; page += layout.PageSize {
		if _, ok := as.pages[page]; ok {
			return fmt.Errorf("%w: page %#x", ErrAlreadyMapped, page)
		}
		idx, err := as.frames.Alloc()
		if err != nil {
			return fmt.Errorf("map page %#x: %w", page, err)
		}
		as.pages[page] = idx
		if page == last {
			break
		}
	}
	return nil
}

// FreePages implements Mapper.
func (as *AddressSpace) FreePages(addr, size uintptr) {
	as.mu.Lock()
	defer as.mu.Unlock()

	first, last := pageRange(addr, size)
	for page := first; ; page += layout.PageSize {
		if idx, ok := as.pages[page]; ok {
			as.frames.Free(idx)
			delete(as.pages, page)
		}
		if page == last {
			break
		}
	}
}

// Mapped reports whether the page containing addr is mapped.
func (as *AddressSpace) Mapped(addr uintptr) bool {
	as.mu.RLock()
	defer as.mu.RUnlock()
	_, ok := as.pages[addr&^uintptr(layout.PageMask)]
	return ok
}

// ReadAt fills p with the bytes at virtual address addr. The range may span
// pages; every touched page must be mapped.
func (as *AddressSpace) ReadAt(p []byte, addr uintptr) error {
	as.mu.RLock()
	defer as.mu.RUnlock()

	for len(p) > 0 {
		frame, off, err := as.locate(addr)
		if err != nil {
			return err
		}
		n := copy(p, frame[off:])
		p = p[n:]
		addr += uintptr(n)
	}
	return nil
}

// WriteAt copies p to virtual address addr. The range may span pages; every
// touched page must be mapped.
func (as *AddressSpace) WriteAt(p []byte, addr uintptr) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	for len(p) > 0 {
		frame, off, err := as.locate(addr)
		if err != nil {
			return err
		}
		n := copy(frame[off:], p)
		p = p[n:]
		addr += uintptr(n)
	}
	return nil
}

// ReadU64 reads a little-endian uint64 at addr.
func (as *AddressSpace) ReadU64(addr uintptr) (uint64, error) {
	var buf [8]byte
	if err := as.ReadAt(buf[:], addr); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// WriteU64 writes v little-endian at addr.
func (as *AddressSpace) WriteU64(addr uintptr, v uint64) error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	return as.WriteAt(buf[:], addr)
}

// locate resolves addr to its frame bytes and in-frame offset.
// Callers must hold as.mu.
func (as *AddressSpace) locate(addr uintptr) ([]byte, uintptr, error) {
	page := addr &^ uintptr(layout.PageMask)
	idx, ok := as.pages[page]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %#x", ErrNotMapped, addr)
	}
	return as.frames.frame(idx), addr & uintptr(layout.PageMask), nil
}

// Compile-time interface check
var _ Mapper = (*AddressSpace)(nil)
