package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Test_InitSingleBlock verifies a fresh region is tracked as one block.
func Test_InitSingleBlock(t *testing.T) {
	var f FreeList
	f.Init(0x10000, 0x4000)

	require.Equal(t, uintptr(0x4000), f.FreeSpace())
	require.Equal(t, 1, f.Blocks())
}

// Test_AllocDeallocRoundTrip verifies alloc followed by dealloc of the same
// size restores free space exactly.
func Test_AllocDeallocRoundTrip(t *testing.T) {
	cases := []struct {
		name  string
		size  uintptr
		align uintptr
	}{
		{"byte aligned", 100, 1},
		{"word aligned", 64, 8},
		{"cache line", 100, 64},
		{"page aligned", 4096, 4096},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var f FreeList
			f.Init(0x10000, 64*1024)
			before := f.FreeSpace()

			addr, err := f.Alloc(tc.size, tc.align)
			require.NoError(t, err)
			require.Zero(t, addr%tc.align, "misaligned address %#x", addr)

			f.Dealloc(addr, tc.size)
			require.Equal(t, before, f.FreeSpace())
		})
	}
}

// Test_FirstFit verifies the scan takes the first block large enough, not the
// best-fitting one.
func Test_FirstFit(t *testing.T) {
	var f FreeList
	// Three disjoint blocks, search order 64, 128, 32.
	f.Init(0x1000, 64)
	f.Grow(0x2000, 128)
	f.Grow(0x3000, 32)

	addr, err := f.Alloc(100, 1)
	require.NoError(t, err)
	require.Equal(t, uintptr(0x2000), addr, "must come from the 128-byte block")

	// 28-byte remainder stays behind the allocation.
	require.Equal(t, uintptr(64+28+32), f.FreeSpace())
	require.Equal(t, 3, f.Blocks())
}

// Test_GrowthAdditivity verifies Grow adds exactly its size to free space.
func Test_GrowthAdditivity(t *testing.T) {
	var f FreeList
	f.Init(0x10000, 0x1000)
	before := f.FreeSpace()

	f.Grow(0x40000, 0x2345)
	require.Equal(t, before+0x2345, f.FreeSpace())
}

// Test_AlignmentEnforcement verifies a block that is large enough only before
// alignment padding never satisfies the request.
func Test_AlignmentEnforcement(t *testing.T) {
	var f FreeList
	// 4096 usable bytes, but the start is 8 past a page boundary: a
	// page-aligned request pays 4088 bytes of padding and cannot fit.
	f.Init(0x1008, 4096)

	_, err := f.Alloc(4096, 4096)
	require.ErrorIs(t, err, ErrNoSpace)

	// With a page-aligned candidate available, the request falls through
	// to it instead of failing.
	f.Grow(0x10000, 4096)
	addr, err := f.Alloc(4096, 4096)
	require.NoError(t, err)
	require.Equal(t, uintptr(0x10000), addr)
}

// Test_FirstFitReusesFreedSlot is the end-to-end scenario: a freed hole near
// the front of the region is reused before untouched tail space.
func Test_FirstFitReusesFreedSlot(t *testing.T) {
	const base = uintptr(0x10000)
	var f FreeList
	f.Init(base, 64*1024)

	addrs := make([]uintptr, 10)
	for i := range addrs {
		addr, err := f.Alloc(1024, 1)
		require.NoError(t, err)
		addrs[i] = addr
	}
	// Sequential carving from the front.
	for i, addr := range addrs {
		require.Equal(t, base+uintptr(i)*1024, addr)
	}

	f.Dealloc(addrs[4], 1024)

	addr, err := f.Alloc(1024, 1)
	require.NoError(t, err)
	require.Equal(t, addrs[4], addr, "freed slot must be reused first")
}

// Test_DeallocCoalesces verifies adjacent free blocks merge back together.
func Test_DeallocCoalesces(t *testing.T) {
	var f FreeList
	f.Init(0x10000, 8192)

	a, err := f.Alloc(1024, 1)
	require.NoError(t, err)
	b, err := f.Alloc(1024, 1)
	require.NoError(t, err)
	c, err := f.Alloc(1024, 1)
	require.NoError(t, err)

	// Free the middle one first: no neighbor to merge with.
	f.Dealloc(b, 1024)
	require.Equal(t, 2, f.Blocks())

	// Freeing its neighbors merges everything back into one block.
	f.Dealloc(a, 1024)
	f.Dealloc(c, 1024)
	require.Equal(t, 1, f.Blocks())
	require.Equal(t, uintptr(8192), f.FreeSpace())
}

// Test_AllocExhaustion verifies ErrNoSpace when nothing fits.
func Test_AllocExhaustion(t *testing.T) {
	var f FreeList
	f.Init(0x10000, 512)

	_, err := f.Alloc(1024, 1)
	require.ErrorIs(t, err, ErrNoSpace)

	// The failed attempt must not disturb accounting.
	require.Equal(t, uintptr(512), f.FreeSpace())
}

// Test_AllocBadArgs verifies argument validation.
func Test_AllocBadArgs(t *testing.T) {
	var f FreeList
	f.Init(0x10000, 4096)

	_, err := f.Alloc(0, 1)
	require.ErrorIs(t, err, ErrBadSize)

	_, err = f.Alloc(16, 3)
	require.ErrorIs(t, err, ErrBadAlign)

	_, err = f.Alloc(16, 0)
	require.ErrorIs(t, err, ErrBadAlign)
}

// Test_ExactFitRemovesBlock verifies a perfectly sized block leaves nothing
// behind.
func Test_ExactFitRemovesBlock(t *testing.T) {
	var f FreeList
	f.Init(0x10000, 1024)

	addr, err := f.Alloc(1024, 1)
	require.NoError(t, err)
	require.Equal(t, uintptr(0x10000), addr)
	require.Zero(t, f.FreeSpace())
	require.Zero(t, f.Blocks())
}

// Test_PaddedAllocKeepsAccounting verifies an aligned allocation from an
// unaligned block reduces free space by exactly the requested size.
func Test_PaddedAllocKeepsAccounting(t *testing.T) {
	var f FreeList
	f.Init(0x10004, 1024)
	before := f.FreeSpace()

	addr, err := f.Alloc(64, 16)
	require.NoError(t, err)
	require.Zero(t, addr%16)
	require.Equal(t, before-64, f.FreeSpace())

	f.Dealloc(addr, 64)
	require.Equal(t, before, f.FreeSpace())
	require.Equal(t, 1, f.Blocks(), "padding sliver must merge back")
}

// Test_Reset verifies Reset returns the allocator to its zero state.
func Test_Reset(t *testing.T) {
	var f FreeList
	f.Init(0x10000, 4096)
	f.Reset()
	require.Zero(t, f.FreeSpace())

	f.Init(0x20000, 8192)
	require.Equal(t, uintptr(8192), f.FreeSpace())
}
