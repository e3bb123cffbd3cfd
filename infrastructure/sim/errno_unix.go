//go:build unix

package sim

import (
	"errors"

	"golang.org/x/sys/unix"
)

// osErrnoName returns the symbolic name of the OS errno inside err. The
// host's numbers are irrelevant; the profile supplies the job's.
func osErrnoName(err error) string {
	var errno unix.Errno
	if !errors.As(err, &errno) {
		return ""
	}
	return unix.ErrnoName(errno)
}
