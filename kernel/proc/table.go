package proc

import (
	"fmt"
	"sync"
)

// MaxProcs is the process table capacity: the number of concurrently live
// processes, including the root process in slot 0.
const MaxProcs = 8

// Table is the fixed-capacity process table. The slot index is the storage
// address for a process id; ids beyond capacity are refused with ErrTableFull
// instead of indexing out of range.
//
// Reads may proceed concurrently; any write excludes all readers and other
// writers for its duration.
type Table struct {
	mu    sync.RWMutex
	slots [MaxProcs]*Process
}

// NewTable returns a table with the root process installed in slot 0.
func NewTable() *Table {
	t := &Table{}
	t.slots[0] = newRootProcess()
	return t
}

// get returns the record for id. Callers must hold t.mu.
func (t *Table) get(id int) (*Process, error) {
	if id < 0 || id >= MaxProcs || t.slots[id] == nil {
		return nil, fmt.Errorf("%w: id %d", ErrNoSuchProcess, id)
	}
	return t.slots[id], nil
}

// put stores proc at its id. Callers must hold t.mu for writing.
func (t *Table) put(p *Process) error {
	if p.id < 0 || p.id >= MaxProcs {
		return fmt.Errorf("%w: id %d exceeds capacity %d", ErrTableFull, p.id, MaxProcs)
	}
	t.slots[p.id] = p
	return nil
}

// Snapshot returns a copy of the record for id, for inspection without
// holding the table lock.
func (t *Table) Snapshot(id int) (Process, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, err := t.get(id)
	if err != nil {
		return Process{}, err
	}
	return p.snapshot(), nil
}
