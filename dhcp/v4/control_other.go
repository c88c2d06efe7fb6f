//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd

package v4

import (
	"errors"
	"syscall"
)

func controlBroadcast(string) func(network, address string, c syscall.RawConn) error {
	return func(string, string, syscall.RawConn) error {
		return errors.New("broadcast sockets are not supported on this platform")
	}
}
