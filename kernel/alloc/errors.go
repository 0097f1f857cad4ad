package alloc

import "errors"

var (
	// ErrNoSpace indicates that no free block large enough was found.
	// Callers grow the managed region and retry rather than failing outright.
	ErrNoSpace = errors.New("alloc: no free block large enough")

	// ErrBadAlign indicates a requested alignment that is not a power of two.
	ErrBadAlign = errors.New("alloc: alignment must be a power of two")

	// ErrBadSize indicates a zero-sized allocation request.
	ErrBadSize = errors.New("alloc: size must be positive")
)
