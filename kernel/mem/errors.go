package mem

import "errors"

var (
	// ErrOutOfFrames indicates the physical frame pool is exhausted.
	ErrOutOfFrames = errors.New("mem: out of physical frames")

	// ErrAlreadyMapped indicates an attempt to map a page that is already mapped.
	ErrAlreadyMapped = errors.New("mem: page already mapped")

	// ErrNotMapped indicates an access to a virtual address with no mapped page.
	ErrNotMapped = errors.New("mem: address not mapped")

	// ErrBadPool indicates the frame pool could not be created.
	ErrBadPool = errors.New("mem: frame pool creation failed")
)
