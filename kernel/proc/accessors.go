package proc

import "github.com/xiaobingchan/TJU-cinea-os/kernel/alloc"

// Accessors for the current process's record. All table lookups implicitly
// use the current-process id; reads share the table lock, writes exclude it.

// Env returns the value of one environment variable of the current process.
func (k *Kernel) Env(key string) (string, bool) {
	k.table.mu.RLock()
	defer k.table.mu.RUnlock()
	p, err := k.table.get(k.ID())
	if err != nil {
		return "", false
	}
	v, ok := p.data.env[key]
	return v, ok
}

// Envs returns a copy of the current process's environment map.
func (k *Kernel) Envs() map[string]string {
	k.table.mu.RLock()
	defer k.table.mu.RUnlock()
	p, err := k.table.get(k.ID())
	if err != nil {
		return nil
	}
	env := make(map[string]string, len(p.data.env))
	for key, v := range p.data.env {
		env[key] = v
	}
	return env
}

// SetEnv sets one environment variable of the current process.
func (k *Kernel) SetEnv(key, val string) {
	k.table.mu.Lock()
	defer k.table.mu.Unlock()
	if p, err := k.table.get(k.ID()); err == nil {
		p.data.env[key] = val
	}
}

// Dir returns the current process's working directory.
func (k *Kernel) Dir() string {
	k.table.mu.RLock()
	defer k.table.mu.RUnlock()
	p, err := k.table.get(k.ID())
	if err != nil {
		return ""
	}
	return p.data.dir
}

// SetDir sets the current process's working directory.
func (k *Kernel) SetDir(dir string) {
	k.table.mu.Lock()
	defer k.table.mu.Unlock()
	if p, err := k.table.get(k.ID()); err == nil {
		p.data.dir = dir
	}
}

// User returns the current process's authenticated user name, empty when
// unauthenticated.
func (k *Kernel) User() string {
	k.table.mu.RLock()
	defer k.table.mu.RUnlock()
	p, err := k.table.get(k.ID())
	if err != nil {
		return ""
	}
	return p.data.user
}

// SetUser records the current process's authenticated user name.
func (k *Kernel) SetUser(user string) {
	k.table.mu.Lock()
	defer k.table.mu.Unlock()
	if p, err := k.table.get(k.ID()); err == nil {
		p.data.user = user
	}
}

// CodeAddr returns the current process's code base.
func (k *Kernel) CodeAddr() uintptr {
	k.table.mu.RLock()
	defer k.table.mu.RUnlock()
	p, err := k.table.get(k.ID())
	if err != nil {
		return 0
	}
	return p.codeAddr
}

// SetCodeAddr sets the current process's code base.
func (k *Kernel) SetCodeAddr(addr uintptr) {
	k.table.mu.Lock()
	defer k.table.mu.Unlock()
	if p, err := k.table.get(k.ID()); err == nil {
		p.codeAddr = addr
	}
}

// Registers returns the current process's saved register snapshot.
func (k *Kernel) Registers() Registers {
	k.table.mu.RLock()
	defer k.table.mu.RUnlock()
	p, err := k.table.get(k.ID())
	if err != nil {
		return Registers{}
	}
	return p.registers
}

// SetRegisters saves a register snapshot for the current process.
func (k *Kernel) SetRegisters(regs Registers) {
	k.table.mu.Lock()
	defer k.table.mu.Unlock()
	if p, err := k.table.get(k.ID()); err == nil {
		p.registers = regs
	}
}

// StackFrame returns the current process's saved interrupt stack frame.
func (k *Kernel) StackFrame() StackFrame {
	k.table.mu.RLock()
	defer k.table.mu.RUnlock()
	p, err := k.table.get(k.ID())
	if err != nil {
		return StackFrame{}
	}
	return p.stackFrame
}

// SetStackFrame saves an interrupt stack frame for the current process.
func (k *Kernel) SetStackFrame(sf StackFrame) {
	k.table.mu.Lock()
	defer k.table.mu.Unlock()
	if p, err := k.table.get(k.ID()); err == nil {
		p.stackFrame = sf
	}
}

// HeapAllocator returns the current process's private heap allocator, or nil
// when the current id has no live record.
func (k *Kernel) HeapAllocator() *alloc.Locked {
	k.table.mu.RLock()
	defer k.table.mu.RUnlock()
	p, err := k.table.get(k.ID())
	if err != nil {
		return nil
	}
	return p.heap
}
