package dhcp

import (
	"encoding/binary"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/insomniacslk/dhcp/dhcpv4"
	"github.com/stretchr/testify/require"

	v4 "github.com/cimnine/dhcp4c/dhcp/v4"
)

var testMAC = net.HardwareAddr{0xde, 0xad, 0xbe, 0xef, 0x00, 0x01}

type fakeClock struct {
	now uint32
}

func (c *fakeClock) Millis() uint32 {
	return c.now
}

func (c *fakeClock) advance(ms uint32) {
	c.now += ms
}

// fakeTransport keeps every broadcast and hands out queued datagrams. With
// a server attached it answers broadcasts right away.
type fakeTransport struct {
	mu       sync.Mutex
	server   *testServer
	openErr  error
	sendErr  error
	opened   int
	closed   int
	port     int
	sent     [][]byte
	received []*v4.Packet
}

func (f *fakeTransport) Open(port int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.openErr != nil {
		return f.openErr
	}
	f.opened++
	f.port = port
	f.received = nil
	return nil
}

func (f *fakeTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.closed++
	return nil
}

func (f *fakeTransport) Broadcast(payload []byte, port int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sendErr != nil {
		return f.sendErr
	}
	if port != dhcpv4.ServerPort {
		panic("broadcast to a port other than the server port")
	}
	f.sent = append(f.sent, append([]byte(nil), payload...))
	if f.server != nil {
		if pkt := f.server.handle(payload); pkt != nil {
			f.received = append(f.received, pkt)
		}
	}
	return nil
}

func (f *fakeTransport) Poll() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.received) == 0 {
		return 0
	}
	return f.received[0].Len()
}

func (f *fakeTransport) Next() *v4.Packet {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.received) == 0 {
		return nil
	}
	return f.received[0]
}

func (f *fakeTransport) Flush() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.received) > 0 {
		f.received = f.received[1:]
	}
}

func (f *fakeTransport) deliver(pkt *v4.Packet) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.received = append(f.received, pkt)
}

// answer lets the server reply to the last broadcast.
func (f *fakeTransport) answer(s *testServer) {
	f.mu.Lock()
	last := f.sent[len(f.sent)-1]
	f.mu.Unlock()

	if pkt := s.handle(last); pkt != nil {
		f.deliver(pkt)
	}
}

func (f *fakeTransport) lastSent(t *testing.T) *dhcpv4.DHCPv4 {
	f.mu.Lock()
	defer f.mu.Unlock()

	require.NotEmpty(t, f.sent)
	msg, err := dhcpv4.FromBytes(f.sent[len(f.sent)-1])
	require.NoError(t, err)
	return msg
}

func (f *fakeTransport) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.sent)
}

// testServer answers DISCOVER with OFFER and REQUEST with ACK or NAK.
type testServer struct {
	serverIP  net.IP
	yourIP    net.IP
	mask      net.IPMask
	router    net.IP
	dns       net.IP
	leaseTime time.Duration
	renewal   uint32
	rebinding uint32
	nak       bool
	requests  int
}

func newTestServer() *testServer {
	return &testServer{
		serverIP:  net.IPv4(192, 168, 1, 1),
		yourIP:    net.IPv4(192, 168, 1, 100),
		mask:      net.IPv4Mask(255, 255, 255, 0),
		router:    net.IPv4(192, 168, 1, 254),
		dns:       net.IPv4(9, 9, 9, 9),
		leaseTime: time.Hour,
	}
}

func (s *testServer) handle(payload []byte) *v4.Packet {
	req, err := dhcpv4.FromBytes(payload)
	if err != nil {
		return nil
	}

	var mt dhcpv4.MessageType
	switch req.MessageType() {
	case dhcpv4.MessageTypeDiscover:
		mt = dhcpv4.MessageTypeOffer
	case dhcpv4.MessageTypeRequest:
		s.requests++
		mt = dhcpv4.MessageTypeAck
		if s.nak {
			mt = dhcpv4.MessageTypeNak
		}
	default:
		return nil
	}

	reply, err := dhcpv4.NewReplyFromRequest(req)
	if err != nil {
		return nil
	}
	reply.UpdateOption(dhcpv4.OptMessageType(mt))
	reply.Options.Update(dhcpv4.OptServerIdentifier(s.serverIP))

	if mt != dhcpv4.MessageTypeNak {
		reply.YourIPAddr = s.yourIP
		reply.Options.Update(dhcpv4.OptSubnetMask(s.mask))
		if s.router != nil {
			reply.Options.Update(dhcpv4.OptRouter(s.router))
		}
		reply.Options.Update(dhcpv4.OptDNS(s.dns))
		if s.leaseTime > 0 {
			reply.Options.Update(dhcpv4.OptIPAddressLeaseTime(s.leaseTime))
		}
		if s.renewal > 0 {
			reply.Options.Update(dhcpv4.OptGeneric(dhcpv4.OptionRenewTimeValue, seconds(s.renewal)))
		}
		if s.rebinding > 0 {
			reply.Options.Update(dhcpv4.OptGeneric(dhcpv4.OptionRebindingTimeValue, seconds(s.rebinding)))
		}
	}

	return &v4.Packet{
		Data: reply.ToBytes(),
		Src:  &net.UDPAddr{IP: s.serverIP, Port: dhcpv4.ServerPort},
	}
}

func seconds(s uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, s)
	return b
}
