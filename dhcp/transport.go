package dhcp

import (
	"fmt"

	v4 "github.com/cimnine/dhcp4c/dhcp/v4"
)

// Transport is a datagram endpoint able to broadcast. Poll, Next and Flush
// must not block.
type Transport interface {
	Open(port int) error
	Close() error
	Broadcast(payload []byte, port int) error
	// Poll returns the length of the current datagram, 0 if there is none.
	Poll() int
	// Next returns the datagram reported by Poll.
	Next() *v4.Packet
	// Flush discards the current datagram.
	Flush()
}

// TransportError reports a failure to bind or to send.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("dhcp: %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
