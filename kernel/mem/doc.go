// Package mem provides the page-mapping boundary between the kernel core and
// physical memory.
//
// # Overview
//
// The core never inspects page tables directly; it asks a Mapper to map or
// unmap virtual ranges and reads and writes bytes through an AddressSpace.
// Physical frames come from a fixed-capacity FrameAllocator whose backing pool
// is an anonymous mmap region on unix and a plain byte slice elsewhere.
//
// # Mapper Interface
//
// The core abstraction is the Mapper interface:
//
//   - AllocPages(addr, size): map every page covering [addr, addr+size) to a
//     freshly obtained frame, read/write and user-accessible
//   - FreePages(addr, size): unmap a range, best effort; absent pages are
//     silently skipped and their frames returned to the pool
//
// # Address Spaces
//
// AddressSpace implements Mapper and additionally supports byte-level reads
// and writes at virtual addresses. Accesses may span page boundaries; pages
// are not physically contiguous, so all data movement goes through ReadAt and
// WriteAt rather than raw slicing.
//
// # Failure Model
//
// Frame exhaustion surfaces as ErrOutOfFrames, mapping an already-mapped page
// as ErrAlreadyMapped, and touching an unmapped address as ErrNotMapped. A
// failed AllocPages leaves earlier pages of the range mapped; callers treat
// the failure as fatal for the operation, so no rollback is attempted.
//
// # Thread Safety
//
// AddressSpace is safe for concurrent use. FrameAllocator is guarded by the
// address spaces that share it.
package mem
