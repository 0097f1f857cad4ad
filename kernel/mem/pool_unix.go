//go:build unix

package mem

import "golang.org/x/sys/unix"

// newPool maps an anonymous region backing the frame pool. Keeping the pool
// out of the Go heap means frame contents never move and the pool can be
// released in one munmap.
func newPool(size int) ([]byte, func() error, error) {
	data, err := unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() error {
		if data == nil {
			return nil
		}
		return unix.Munmap(data)
	}
	return data, cleanup, nil
}
