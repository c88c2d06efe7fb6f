package v4

import (
	"syscall"

	"golang.org/x/sys/unix"
)

func controlBroadcast(iface string) func(network, address string, c syscall.RawConn) error {
	return func(network, address string, c syscall.RawConn) error {
		var opErr error
		err := c.Control(func(fd uintptr) {
			if opErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, 1); opErr != nil {
				return
			}
			if opErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); opErr != nil {
				return
			}
			if iface != "" {
				opErr = unix.BindToDevice(int(fd), iface)
			}
		})
		if err != nil {
			return err
		}
		return opErr
	}
}
