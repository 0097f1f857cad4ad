// Package layout houses the fixed virtual address space layout of the kernel
// and its alignment helpers. The constants here are the single source of truth
// for where the kernel heap, process images, and process heaps live; higher
// level packages consume them rather than hard-coding addresses.
package layout

const (
	// PageSize is the size of one virtual page. Every mapped region is a
	// whole number of pages.
	PageSize = 4096

	// PageMask is the bitmask used for aligning to page boundaries (PageSize - 1).
	PageMask = PageSize - 1

	// KernelHeapBase is the virtual base of the kernel's own heap region.
	KernelHeapBase = 0x0001_0000_0000

	// KernelHeapSize is the fixed size of the kernel heap (40 MiB). The heap
	// is mapped once at boot and never grows.
	KernelHeapSize = 40 * 1024 * 1024

	// ProcCodeBase is the virtual base of the first process code/stack
	// region. Process images are laid out immediately above the kernel heap.
	ProcCodeBase = KernelHeapBase + KernelHeapSize

	// MaxProcSize is the size of the code/stack region reserved for each
	// process (10 MiB). The stack occupies the last page of the region.
	MaxProcSize = 10 << 20

	// ProcHeapBase is the virtual base of the first process heap region.
	// Process heaps are carved from an independent cursor so they never
	// collide with code regions.
	ProcHeapBase = 0x0002_0000_0000

	// DefaultHeapSize is the initial size of a process's private heap.
	DefaultHeapSize = 0x4000
)

// AlignUp returns n rounded up to the next multiple of align.
// align must be a power of two.
//
// Example:
//
//	AlignUp(1, 8)  = 8
//	AlignUp(8, 8)  = 8
//	AlignUp(9, 8)  = 16
func AlignUp(n, align uintptr) uintptr {
	return (n + align - 1) &^ (align - 1)
}

// AlignPage returns n rounded up to the next page boundary.
//
// Example:
//
//	AlignPage(1)    = 4096
//	AlignPage(4096) = 4096
//	AlignPage(4097) = 8192
func AlignPage(n uintptr) uintptr {
	return (n + PageMask) &^ PageMask
}
