//go:build unix

package privilege

import (
	"os"
	"syscall"
)

func platformSyscalls() Syscalls {
	return Syscalls{
		Geteuid:   os.Geteuid,
		Setuid:    syscall.Setuid,
		Setgid:    syscall.Setgid,
		LookupEnv: os.LookupEnv,
	}
}
