// Package privilege drops root privileges back to the invoking user.
package privilege

import (
	"fmt"
	"io"
	"runtime"
	"strconv"

	log "github.com/sirupsen/logrus"
)

// Syscalls are the process calls Dropper needs. Production code uses the
// platform implementation; tests substitute fakes.
type Syscalls struct {
	Geteuid   func() int
	Setuid    func(uid int) error
	Setgid    func(gid int) error
	LookupEnv func(key string) (string, bool)
}

// Dropper implements services.PrivilegeDropper.
type Dropper struct {
	sys    Syscalls
	goos   string
	logger *log.Entry
}

// New returns a Dropper backed by the real process.
func New(logger *log.Entry) *Dropper {
	return NewWithSyscalls(platformSyscalls(), logger)
}

func NewWithSyscalls(sys Syscalls, logger *log.Entry) *Dropper {
	if logger == nil {
		quiet := log.New()
		quiet.SetOutput(io.Discard)
		logger = log.NewEntry(quiet)
	}
	return &Dropper{sys: sys, goos: runtime.GOOS, logger: logger}
}

// Drop switches to the sudo caller's ids, or the platform's first regular
// user when the caller is unknown. It does nothing unless running as root.
// The group is changed first since setgid is no longer allowed once the
// uid is dropped.
func (d *Dropper) Drop() error {
	if d.sys.Geteuid == nil || d.sys.Geteuid() != 0 {
		return nil
	}

	uid, err := d.lookupID("SUDO_UID")
	if err != nil {
		return err
	}
	gid, err := d.lookupID("SUDO_GID")
	if err != nil {
		return err
	}

	if err := d.sys.Setgid(gid); err != nil {
		return fmt.Errorf("setgid %d: %w", gid, err)
	}
	if err := d.sys.Setuid(uid); err != nil {
		return fmt.Errorf("setuid %d: %w", uid, err)
	}

	d.logger.WithFields(log.Fields{
		"uid": uid,
		"gid": gid,
	}).Debug("dropped root privileges")
	return nil
}

func (d *Dropper) lookupID(key string) (int, error) {
	if d.sys.LookupEnv != nil {
		if raw, ok := d.sys.LookupEnv(key); ok && raw != "" {
			id, err := strconv.Atoi(raw)
			if err != nil {
				return 0, fmt.Errorf("parse %s=%q: %w", key, raw, err)
			}
			return id, nil
		}
	}
	return DefaultID(d.goos), nil
}

// DefaultID is the id of the first regular user account on goos.
func DefaultID(goos string) int {
	if goos == "darwin" {
		return 501
	}
	return 1000
}
