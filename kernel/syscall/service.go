package syscall

import (
	"fmt"
	"io"
	"sync/atomic"
	"unicode/utf8"

	"github.com/xiaobingchan/TJU-cinea-os/internal/layout"
	"github.com/xiaobingchan/TJU-cinea-os/internal/logger"
	"github.com/xiaobingchan/TJU-cinea-os/kernel/proc"
)

// Clock is the timer facility Sleep delegates to.
type Clock interface {
	Sleep(seconds float64)
}

// Config assembles a Service's collaborators.
type Config struct {
	// Kernel is the process/memory core the services operate on.
	Kernel *proc.Kernel

	// Memory reads user-supplied buffers (log messages). Usually the same
	// value the kernel was built with.
	Memory proc.Memory

	// Clock backs the sleep call. Nil disables sleeping.
	Clock Clock

	// Console receives log-call output. Nil discards it.
	Console io.Writer

	// Images maps spawn selectors to built-in binary images.
	Images map[uint64][]byte
}

// Service holds the kernel-side handlers for the syscall boundary.
type Service struct {
	k       *proc.Kernel
	space   proc.Memory
	clock   Clock
	console io.Writer
	images  map[uint64][]byte

	// noSchedule suppresses interrupt-driven rescheduling while set. The
	// interrupt path consults it; this core only toggles it.
	noSchedule atomic.Bool
}

// New builds a Service.
func New(cfg Config) *Service {
	console := cfg.Console
	if console == nil {
		console = io.Discard
	}
	return &Service{
		k:       cfg.Kernel,
		space:   cfg.Memory,
		clock:   cfg.Clock,
		console: console,
		images:  cfg.Images,
	}
}

// Exit releases the current process's resources and propagates the exit code
// to the parent context.
func (s *Service) Exit(code ExitCode) ExitCode {
	s.k.Exit()
	return code
}

// Spawn resolves a built-in image selector and spawns it with the supplied
// argument buffer. An unknown selector reports OpenError, a failed spawn
// ExecError.
func (s *Service) Spawn(selector uint64, argsPtr proc.UserAddr, argsLen, argsCap int) ExitCode {
	bin, ok := s.images[selector]
	if !ok {
		logger.L.Warn("spawn: invalid selector", "selector", selector)
		return OpenError
	}
	_ = argsCap // capacity travels in the calling convention but only len is consumed
	if err := s.k.Spawn(bin, argsPtr, argsLen); err != nil {
		logger.L.Error("spawn failed", "selector", selector, "err", err)
		return ExecError
	}
	return Success
}

// Alloc carves size bytes at the given alignment from the calling process's
// private heap. When the heap's free space cannot cover the request, the heap
// region is first grown by a page-aligned amount; a failed growth is fatal
// for the call and surfaces as an error.
func (s *Service) Alloc(size, align uintptr) (uintptr, error) {
	heap := s.k.HeapAllocator()
	if heap == nil {
		return 0, fmt.Errorf("syscall: alloc: no current process heap")
	}
	if free := heap.FreeSpace(); free < size {
		grow := layout.AlignPage(size - free)
		if err := s.k.AllocatorGrow(grow); err != nil {
			return 0, fmt.Errorf("syscall: alloc: %w", err)
		}
	}
	ptr, err := heap.Alloc(size, align)
	if err != nil {
		// Alignment padding can defeat a fit even after growth; one
		// more page-aligned growth covers the worst-case padding.
		if err2 := s.k.AllocatorGrow(layout.AlignPage(size + align)); err2 != nil {
			return 0, fmt.Errorf("syscall: alloc: %w", err2)
		}
		ptr, err = heap.Alloc(size, align)
		if err != nil {
			return 0, fmt.Errorf("syscall: alloc: %w", err)
		}
	}
	return ptr, nil
}

// Free returns an allocation to the calling process's private heap. The
// alignment travels in the calling convention but only the size participates
// in free-space accounting.
func (s *Service) Free(ptr, size, align uintptr) {
	_ = align
	heap := s.k.HeapAllocator()
	if heap == nil {
		return
	}
	heap.Dealloc(ptr, size)
}

// Sleep delegates to the timer facility.
func (s *Service) Sleep(seconds float64) {
	if s.clock != nil {
		s.clock.Sleep(seconds)
	}
}

// Log writes a user-supplied message to the console. The message pointer may
// be an offset into the caller's image and is rebased before reading. Returns
// 0 on success and 1 when the buffer is not valid text.
func (s *Service) Log(msg proc.UserAddr, length int) int {
	addr := s.k.PtrFromAddr(msg)
	buf := make([]byte, length)
	if err := s.space.ReadAt(buf, addr); err != nil {
		logger.L.Error("log: unreadable message buffer", "addr", fmt.Sprintf("%#x", addr), "err", err)
		return 1
	}
	if !utf8.Valid(buf) {
		logger.L.Warn("log: invalid utf8 message")
		return 1
	}
	io.WriteString(s.console, string(buf))
	return 0
}

// StopSchedule raises the reschedule-suppression flag.
func (s *Service) StopSchedule() {
	s.noSchedule.Store(true)
}

// RestartSchedule clears the reschedule-suppression flag.
func (s *Service) RestartSchedule() {
	s.noSchedule.Store(false)
}

// NoSchedule reports whether rescheduling is currently suppressed.
func (s *Service) NoSchedule() bool {
	return s.noSchedule.Load()
}
