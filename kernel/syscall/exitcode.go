package syscall

// ExitCode is the status a call or a process reports back across the
// boundary.
type ExitCode int

const (
	Success ExitCode = iota
	Failure
	OpenError
	ExecError
)

func (c ExitCode) String() string {
	switch c {
	case Success:
		return "success"
	case Failure:
		return "failure"
	case OpenError:
		return "open error"
	case ExecError:
		return "exec error"
	default:
		return "unknown"
	}
}
