//go:build !unix

package netsock

import (
	"errors"
	"syscall"
)

func osError(err error) (code int, name string, ok bool) {
	var errno syscall.Errno
	if !errors.As(err, &errno) {
		return 0, "", false
	}
	return int(errno), errno.Error(), true
}

func socketCreationErrno(error) bool {
	return false
}
