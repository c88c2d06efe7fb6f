package v4

import (
	"errors"
	"net"
	"sync"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/mdlayher/raw"
	"go.uber.org/zap"
)

// This is the aprox. minimal size of a DHCP packet
const MinPackSize = 14 + // ethernet header
	5*4 + // minimal IPv4 header size
	2*4 + // UDP header size
	HeaderSize

// RawTransport speaks DHCP on the link layer. It works on interfaces that do
// not carry an IPv4 address yet, where a UDP socket cannot be bound to the
// interface.
type RawTransport struct {
	iface net.Interface
	log   *zap.SugaredLogger

	conn  *raw.Conn
	port  int
	queue *packetQueue
	wg    sync.WaitGroup
}

func NewRawTransport(iface net.Interface, log *zap.SugaredLogger) *RawTransport {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &RawTransport{iface: iface, log: log, queue: newPacketQueue()}
}

func (t *RawTransport) Open(port int) error {
	if err := t.Close(); err != nil {
		return err
	}

	conn, err := raw.ListenPacket(&t.iface, uint16(layers.EthernetTypeIPv4), &raw.Config{})
	if err != nil {
		return err
	}

	t.conn = conn
	t.port = port
	t.queue.drain()
	t.wg.Add(1)
	go t.receive(conn, port)

	t.log.Debugf("Listening on '%s' for UDP port %d", t.iface.Name, port)
	return nil
}

func (t *RawTransport) Close() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.wg.Wait()
	t.conn = nil
	t.queue.drain()
	return err
}

func (t *RawTransport) Broadcast(payload []byte, port int) error {
	if t.conn == nil {
		return net.ErrClosed
	}

	udp := layers.UDP{ // RFC 768
		SrcPort: layers.UDPPort(t.port),
		DstPort: layers.UDPPort(port),
		// Length is fixed by the serializer,
		// Checksum is fixed by the serializer,
	}

	ip4 := layers.IPv4{ // RFC 760
		Version: 4,
		// HeaderLength is fixed by the serializer,
		TOS:      0x0,
		TTL:      0x80,
		Protocol: layers.IPProtocolUDP,
		// HeaderChecksum is fixed by the serializer,
		DstIP: net.IPv4bcast,
		SrcIP: net.IPv4zero,
	}

	eth := layers.Ethernet{ // IEEE 802.3
		DstMAC:       layers.EthernetBroadcast,
		SrcMAC:       t.iface.HardwareAddr,
		EthernetType: layers.EthernetTypeIPv4,
	}

	if err := udp.SetNetworkLayerForChecksum(&ip4); err != nil {
		return err
	}

	frame, err := serialize(&eth, &ip4, &udp, payload)
	if err != nil {
		return err
	}

	_, err = t.conn.WriteTo(frame, &raw.Addr{HardwareAddr: layers.EthernetBroadcast})
	return err
}

func (t *RawTransport) Poll() int {
	return t.queue.Poll()
}

func (t *RawTransport) Next() *Packet {
	return t.queue.Next()
}

func (t *RawTransport) Flush() {
	t.queue.Flush()
}

func (t *RawTransport) receive(conn *raw.Conn, port int) {
	defer t.wg.Done()

	buf := receiveBuffer()
	for {
		n, _, err := conn.ReadFrom(buf)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				t.log.Debugf("Stopped reading on '%s': %v", t.iface.Name, err)
			}
			return
		}

		pkt, ok := unwrapFrame(buf[:n], port)
		if !ok {
			continue
		}
		if !t.queue.offer(pkt) {
			t.log.Debugf("Dropping %d bytes from '%s', queue is full", pkt.Len(), pkt.Src)
		}
	}
}

// unwrapFrame extracts the UDP payload of an IPv4 frame addressed to port.
func unwrapFrame(frame []byte, port int) (*Packet, bool) {
	if len(frame) < MinPackSize {
		return nil, false
	}

	// PERF: explore Lazy or NoCopy decode options to make parsing faster
	pack := gopacket.NewPacket(frame, layers.LayerTypeEthernet, gopacket.Default)

	ip4Layer, ok := pack.Layer(layers.LayerTypeIPv4).(*layers.IPv4)
	if !ok || ip4Layer.Protocol != layers.IPProtocolUDP {
		return nil, false
	}

	udpLayer, ok := pack.Layer(layers.LayerTypeUDP).(*layers.UDP)
	if !ok || int(udpLayer.DstPort) != port {
		return nil, false
	}

	data := make([]byte, len(udpLayer.Payload))
	copy(data, udpLayer.Payload)

	return &Packet{
		Data: data,
		Src:  &net.UDPAddr{IP: ip4Layer.SrcIP, Port: int(udpLayer.SrcPort)},
	}, true
}

func serialize(eth *layers.Ethernet, ip4 *layers.IPv4, udp *layers.UDP, payload []byte) ([]byte, error) {
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{
		ComputeChecksums: true,
		FixLengths:       true,
	}

	if err := gopacket.SerializeLayers(buf, opts, eth, ip4, udp, gopacket.Payload(payload)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
