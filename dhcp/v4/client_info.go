package v4

import (
	"bytes"
	"net"
)

// Addr is an IPv4 address as it appears on the wire. The zero value means unset.
type Addr [4]byte

func AddrFrom(ip net.IP) (a Addr) {
	if ip4 := ip.To4(); ip4 != nil {
		copy(a[:], ip4)
	}
	return a
}

func (a Addr) IsSet() bool {
	return a != Addr{}
}

func (a Addr) IP() net.IP {
	return net.IPv4(a[0], a[1], a[2], a[3]).To4()
}

func (a Addr) String() string {
	return a.IP().String()
}

// Lease holds the network parameters learned from a server. Durations are
// in milliseconds, so anything above about 49.7 days, an infinite lease
// included, is clamped to the largest uint32.
type Lease struct {
	LocalIP     Addr
	SubnetMask  Addr
	Gateway     Addr
	ServerID    Addr
	DNSServer   Addr
	LeaseTime   uint32
	RenewAfter  uint32
	RebindAfter uint32
}

func (l *Lease) Reset() {
	*l = Lease{}
}

// ResetTimes forgets the timing values so that only the ones carried by the
// next accepted reply count.
func (l *Lease) ResetTimes() {
	l.LeaseTime = 0
	l.RenewAfter = 0
	l.RebindAfter = 0
}

// Transaction correlates requests and replies of one lease attempt.
type Transaction struct {
	ID           uint32
	InitialID    uint32
	HardwareAddr net.HardwareAddr
	HostName     string
	StartedAt    uint32
}

// Accepts reports whether xid lies between the first and the current
// transaction id of this attempt.
func (t *Transaction) Accepts(xid uint32) bool {
	return xid >= t.InitialID && xid <= t.ID
}

func (t *Transaction) owns(chaddr []byte) bool {
	return len(t.HardwareAddr) == hlenEthernet && bytes.Equal(chaddr[:hlenEthernet], t.HardwareAddr)
}

// Packet is one received datagram together with its sender.
type Packet struct {
	Data []byte
	Src  *net.UDPAddr
}

func (p *Packet) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Data)
}
