package alloc

import "sort"

// block is one free region: start address and size in bytes.
type block struct {
	addr uintptr
	size uintptr
}

// FreeList is a first-fit free-list allocator over a virtual byte range.
// Blocks are kept sorted by address so adjacency checks during Dealloc are
// O(1) once the insertion point is known.
//
// FreeList is not safe for concurrent use; wrap it in Locked for shared
// access.
type FreeList struct {
	blocks []block
}

// Init establishes the managed region as a single free block.
//
// Init must not be called twice on a live allocator without an intervening
// Reset: the second region would be tracked alongside the first, and any
// overlap corrupts the list.
func (f *FreeList) Init(start, size uintptr) {
	f.insert(block{addr: start, size: size})
}

// Reset drops all tracked blocks, returning the allocator to its zero state.
func (f *FreeList) Reset() {
	f.blocks = f.blocks[:0]
}

// Grow adds a freshly mapped region as a new free block. The caller
// guarantees the region is otherwise unused and not already tracked.
func (f *FreeList) Grow(start, size uintptr) {
	if size == 0 {
		return
	}
	f.insert(block{addr: start, size: size})
}

// Alloc finds the first free block that can satisfy the request via a
// first-fit scan and carves the allocation out of it. The returned address is
// rounded up to the next multiple of align, so a block only qualifies if its
// size covers the request plus the rounding loss; a tightly-sized block can
// therefore fail a strongly-aligned request even when raw free space would
// suffice.
//
// Returns ErrNoSpace when no block is large enough. The surrounding system's
// policy is to grow the region and retry rather than treat this as fatal.
func (f *FreeList) Alloc(size, align uintptr) (uintptr, error) {
	if size == 0 {
		return 0, ErrBadSize
	}
	if align == 0 || align&(align-1) != 0 {
		return 0, ErrBadAlign
	}

	for i, b := range f.blocks {
		aligned := (b.addr + align - 1) &^ (align - 1)
		pad := aligned - b.addr
		if b.size < pad+size {
			continue
		}

		tail := b.size - pad - size
		switch {
		case pad == 0 && tail == 0:
			f.blocks = append(f.blocks[:i], f.blocks[i+1:]...)
		case pad == 0:
			f.blocks[i] = block{addr: aligned + size, size: tail}
		case tail == 0:
			f.blocks[i] = block{addr: b.addr, size: pad}
		default:
			// Keep the leading sliver in place and put the tail
			// remainder right after it.
			f.blocks[i] = block{addr: b.addr, size: pad}
			rest := block{addr: aligned + size, size: tail}
			f.blocks = append(f.blocks, block{})
			copy(f.blocks[i+2:], f.blocks[i+1:])
			f.blocks[i+1] = rest
		}
		return aligned, nil
	}
	return 0, ErrNoSpace
}

// Dealloc reinserts the freed range as a free block, merging it with an
// immediately adjacent free block on either side when contiguous.
func (f *FreeList) Dealloc(addr, size uintptr) {
	if size == 0 {
		return
	}
	f.insert(block{addr: addr, size: size})
}

// FreeSpace returns the sum of all free block sizes.
func (f *FreeList) FreeSpace() uintptr {
	var total uintptr
	for _, b := range f.blocks {
		total += b.size
	}
	return total
}

// Blocks returns the number of free blocks currently tracked.
func (f *FreeList) Blocks() int {
	return len(f.blocks)
}

// insert places b in address order and coalesces with its neighbors.
func (f *FreeList) insert(b block) {
	i := sort.Search(len(f.blocks), func(j int) bool {
		return f.blocks[j].addr > b.addr
	})

	// Merge with the predecessor when it ends exactly at b.
	if i > 0 && f.blocks[i-1].addr+f.blocks[i-1].size == b.addr {
		f.blocks[i-1].size += b.size
		// The grown predecessor may now touch the successor.
		if i < len(f.blocks) && f.blocks[i-1].addr+f.blocks[i-1].size == f.blocks[i].addr {
			f.blocks[i-1].size += f.blocks[i].size
			f.blocks = append(f.blocks[:i], f.blocks[i+1:]...)
		}
		return
	}

	// Merge with the successor when b ends exactly at it.
	if i < len(f.blocks) && b.addr+b.size == f.blocks[i].addr {
		f.blocks[i].addr = b.addr
		f.blocks[i].size += b.size
		return
	}

	f.blocks = append(f.blocks, block{})
	copy(f.blocks[i+1:], f.blocks[i:])
	f.blocks[i] = b
}
