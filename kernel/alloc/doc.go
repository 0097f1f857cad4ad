// Package alloc implements the kernel's general-purpose dynamic allocator and
// its spin-locked wrapper.
//
// # Overview
//
// FreeList is a first-fit allocator over an arbitrary virtual byte range. One
// instance backs the kernel's global heap; every process additionally embeds
// its own instance for its private heap. The allocator only performs address
// arithmetic - it never touches the managed memory, which belongs to the
// page-mapping layer.
//
// # Free List Discipline
//
// Free blocks are kept sorted by address. Allocation scans from the front and
// takes the first block whose size, after rounding the candidate address up
// to the requested alignment, still covers the request. Oversized blocks are
// split, leaving the remainder on the list. Deallocation reinserts the freed
// range and merges it with an immediately adjacent free block on either side,
// which bounds fragmentation and keeps free-space accounting exact.
//
// # Growth
//
// The allocator never maps memory itself. When a caller decides the managed
// region is too small it maps a fresh range and hands it over with Grow; the
// range must not overlap anything the allocator already tracks.
//
// # Locking
//
// Locked wraps one FreeList behind a spin lock, the only synchronization
// primitive in the core. Spinning is appropriate here: critical sections are
// short address arithmetic and never block.
package alloc
