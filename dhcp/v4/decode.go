package v4

import (
	"encoding/binary"
	"errors"

	"github.com/insomniacslk/dhcp/dhcpv4"
)

var (
	// ErrRejected is returned for datagrams that are not a reply to the
	// current transaction.
	ErrRejected = errors.New("dhcp: reply rejected")

	// ErrMalformedOption describes a reply whose option stream ended
	// prematurely. Decode does not return it, it sets Reply.Truncated.
	ErrMalformedOption = errors.New("dhcp: malformed option")
)

// Reply is what Decode learned about an accepted datagram beyond the lease
// fields it wrote.
type Reply struct {
	Type          dhcpv4.MessageType
	TransactionID uint32
	// Truncated is set when option parsing stopped on a short or malformed
	// option. Everything decoded before that point is kept.
	Truncated bool
}

// Decode validates a server reply against the transaction and writes the
// learned values into lease. Rejected datagrams leave lease untouched.
func Decode(pkt *Packet, tx *Transaction, lease *Lease) (Reply, error) {
	var reply Reply

	if pkt == nil || len(pkt.Data) < HeaderSize {
		return reply, ErrRejected
	}
	if pkt.Src == nil || pkt.Src.Port != dhcpv4.ServerPort {
		return reply, ErrRejected
	}

	c := &cursor{data: pkt.Data}
	op, _ := c.readByte()
	if dhcpv4.OpcodeType(op) != dhcpv4.OpcodeBootReply {
		return reply, ErrRejected
	}
	c.discard(3) // htype, hlen, hops
	xidBytes, _ := c.read(4)
	xid := binary.BigEndian.Uint32(xidBytes)
	c.discard(2 + 2 + 4) // secs, flags, ciaddr
	yiaddr, _ := c.read(4)
	c.discard(4 + 4) // siaddr, giaddr
	chaddr, _ := c.read(chaddrSize)

	if !tx.owns(chaddr) || !tx.Accepts(xid) {
		return reply, ErrRejected
	}

	reply.TransactionID = xid
	copy(lease.LocalIP[:], yiaddr)

	c.discard(snameSize + fileSize)
	cookie, ok := c.read(4)
	if !ok || binary.BigEndian.Uint32(cookie) != MagicCookie {
		reply.Truncated = true
		return reply, nil
	}

	s := &decodeState{reply: &reply, lease: lease, src: AddrFrom(pkt.Src.IP)}
	reply.Truncated = !decodeOptions(c, s)

	return reply, nil
}

// decodeOptions walks the option stream until the end option or the end of
// the datagram. It returns false if it had to stop on a malformed option.
func decodeOptions(c *cursor, s *decodeState) bool {
	for c.remaining() > 0 {
		code, _ := c.readByte()
		switch code {
		case optPad:
			continue
		case optEnd:
			return true
		}

		length, ok := c.readByte()
		if !ok {
			return false
		}
		payload, ok := c.read(int(length))
		if !ok {
			return false
		}

		h, known := optionHandlers[code]
		if !known {
			continue
		}
		if len(payload) < h.minLen {
			return false
		}
		h.decode(s, payload)
	}
	return true
}
