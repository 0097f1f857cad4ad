//go:build !unix

package mem

// newPool allocates the frame pool on the Go heap for platforms without
// anonymous mmap support.
func newPool(size int) ([]byte, func() error, error) {
	return make([]byte, size), func() error { return nil }, nil
}
