package proc

import "errors"

var (
	// ErrTableFull indicates every process table slot is taken.
	ErrTableFull = errors.New("proc: process table full")

	// ErrNoSuchProcess indicates a process id with no live table entry.
	ErrNoSuchProcess = errors.New("proc: no such process")
)
