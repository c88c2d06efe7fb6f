package v4

import (
	"fmt"

	"github.com/insomniacslk/dhcp/dhcpv4"
)

// Encode builds an outbound client message. Requested address and server
// identifier are only added to a REQUEST and only when the lease carries them.
func Encode(mt dhcpv4.MessageType, tx *Transaction, lease *Lease, secs uint16) ([]byte, error) {
	if len(tx.HardwareAddr) != hlenEthernet {
		return nil, fmt.Errorf("hardware address '%s' is not an ethernet address", tx.HardwareAddr)
	}

	w := newWriter(maxMessageSize)

	w.byte(byte(dhcpv4.OpcodeBootRequest))
	w.byte(htypeEthernet)
	w.byte(hlenEthernet)
	w.byte(0) // hops
	w.uint32(tx.ID)
	w.uint16(secs)
	w.uint16(flagBroadcast)
	w.zeros(4 * 4) // ciaddr, yiaddr, siaddr, giaddr
	w.bytes(tx.HardwareAddr)
	w.zeros(chaddrSize - hlenEthernet)
	w.zeros(snameSize)
	w.zeros(fileSize)
	w.uint32(MagicCookie)

	w.option(optMessageType, byte(mt))

	clientID := make([]byte, 0, 1+hlenEthernet)
	clientID = append(clientID, htypeEthernet)
	clientID = append(clientID, tx.HardwareAddr...)
	w.option(optClientIdentifier, clientID...)

	w.option(optHostName, []byte(HostName(tx.HostName, tx.HardwareAddr))...)

	if mt == dhcpv4.MessageTypeRequest {
		if lease.LocalIP.IsSet() {
			w.option(optRequestedIP, lease.LocalIP[:]...)
		}
		if lease.ServerID.IsSet() {
			w.option(optServerIdentifier, lease.ServerID[:]...)
		}
	}

	w.option(optParameterRequest, requestedParameters...)
	w.byte(optEnd)

	return w.Bytes()
}

// HostName is the name announced to the server: the configured prefix
// followed by the last three octets of the hardware address.
func HostName(prefix string, hw []byte) string {
	if len(hw) < 3 {
		return prefix
	}
	tail := hw[len(hw)-3:]
	return fmt.Sprintf("%s%02X%02X%02X", prefix, tail[0], tail[1], tail[2])
}
