package alloc

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// Test_LockedBasicOps verifies the wrapper forwards to the inner allocator.
func Test_LockedBasicOps(t *testing.T) {
	l := NewLocked()
	l.Init(0x10000, 64*1024)

	addr, err := l.Alloc(4096, 8)
	require.NoError(t, err)
	require.Equal(t, uintptr(64*1024-4096), l.FreeSpace())

	l.Dealloc(addr, 4096)
	require.Equal(t, uintptr(64*1024), l.FreeSpace())

	l.Grow(0x40000, 4096)
	require.Equal(t, uintptr(64*1024+4096), l.FreeSpace())
}

// Test_LockedConcurrentAccounting hammers one allocator from many goroutines
// and verifies no operation was ever half-applied: once everything is freed,
// every byte is accounted for.
func Test_LockedConcurrentAccounting(t *testing.T) {
	const (
		workers = 8
		rounds  = 200
		size    = 256
	)

	l := NewLocked()
	l.Init(0x100000, 1<<20)
	before := l.FreeSpace()

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			held := make([]uintptr, 0, rounds)
			for i := 0; i < rounds; i++ {
				addr, err := l.Alloc(size, 8)
				if err != nil {
					return err
				}
				held = append(held, addr)
				// Free every other allocation immediately to mix
				// dealloc into the interleaving.
				if i%2 == 0 {
					l.Dealloc(addr, size)
					held = held[:len(held)-1]
				}
			}
			for _, addr := range held {
				l.Dealloc(addr, size)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.Equal(t, before, l.FreeSpace())
}

// Test_SpinLockExcludes verifies the lock serializes a critical section.
func Test_SpinLockExcludes(t *testing.T) {
	var lock SpinLock
	counter := 0

	var g errgroup.Group
	for w := 0; w < 16; w++ {
		g.Go(func() error {
			for i := 0; i < 1000; i++ {
				lock.Lock()
				counter++
				lock.Unlock()
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.Equal(t, 16*1000, counter)
}
