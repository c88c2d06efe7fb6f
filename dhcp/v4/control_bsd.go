//go:build darwin || freebsd || netbsd || openbsd

package v4

import (
	"fmt"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// Binding to a device is not available here, the interface name is only
// checked for existence.
func controlBroadcast(iface string) func(network, address string, c syscall.RawConn) error {
	return func(network, address string, c syscall.RawConn) error {
		if iface != "" {
			if _, err := net.InterfaceByName(iface); err != nil {
				return fmt.Errorf("unknown interface '%s': %w", iface, err)
			}
		}
		var opErr error
		err := c.Control(func(fd uintptr) {
			opErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_BROADCAST, 1)
		})
		if err != nil {
			return err
		}
		return opErr
	}
}
