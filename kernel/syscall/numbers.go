// Package syscall implements the kernel-side services behind the syscall
// boundary. Arguments arrive as numeric register values per the fixed calling
// convention; the dispatch stub that reads the registers and picks a call
// number lives outside this core.
package syscall

// Call numbers, as dispatched by the external syscall stub. Only a subset is
// served by this core; the file-oriented calls are handled by the filesystem
// layer.
const (
	CallExit   = 0x1
	CallSpawn  = 0x2
	CallRead   = 0x3
	CallWrite  = 0x4
	CallOpen   = 0x5
	CallClose  = 0x6
	CallInfo   = 0x7
	CallDup    = 0x8
	CallDelete = 0x9
	CallStop   = 0xA
	CallSleep  = 0xB
	CallLog    = 0xC
)
