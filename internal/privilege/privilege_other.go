//go:build !unix

package privilege

// There is no uid to drop outside unix; Geteuid reports a non-root id so
// Drop is a no-op.
func platformSyscalls() Syscalls {
	return Syscalls{
		Geteuid: func() int { return -1 },
	}
}
