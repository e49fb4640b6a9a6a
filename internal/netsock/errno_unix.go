//go:build unix

package netsock

import (
	"errors"
	"syscall"

	"golang.org/x/sys/unix"
)

func osError(err error) (code int, name string, ok bool) {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return 0, "", false
	}
	name = unix.ErrnoName(errno)
	if name == "" {
		name = errno.Error()
	}
	return int(errno), name, true
}

// socketCreationErrno reports whether err failed before any packet left the
// host: descriptor exhaustion or an unsupported address family.
func socketCreationErrno(err error) bool {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return false
	}
	switch errno {
	case unix.EMFILE, unix.ENFILE, unix.ENOBUFS, unix.EAFNOSUPPORT, unix.EPROTONOSUPPORT:
		return true
	}
	return false
}
