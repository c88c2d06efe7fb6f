package v4

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"go.uber.org/zap"
)

// UDPTransport broadcasts and receives DHCP datagrams through a regular UDP
// socket. It needs SO_BROADCAST and, when an interface is named, binding to
// that device.
type UDPTransport struct {
	iface string
	log   *zap.SugaredLogger

	conn  *net.UDPConn
	queue *packetQueue
	wg    sync.WaitGroup
}

func NewUDPTransport(iface string, log *zap.SugaredLogger) *UDPTransport {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &UDPTransport{iface: iface, log: log, queue: newPacketQueue()}
}

// Open binds the local port, releasing a previous binding first.
func (t *UDPTransport) Open(port int) error {
	if err := t.Close(); err != nil {
		return err
	}

	lc := net.ListenConfig{Control: controlBroadcast(t.iface)}
	pc, err := lc.ListenPacket(context.Background(), "udp4", fmt.Sprintf("0.0.0.0:%d", port))
	if err != nil {
		return err
	}

	t.conn = pc.(*net.UDPConn)
	t.queue.drain()
	t.wg.Add(1)
	go t.receive(t.conn)

	t.log.Debugf("Listening on '%s' (interface '%s')", t.conn.LocalAddr(), t.iface)
	return nil
}

func (t *UDPTransport) Close() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.wg.Wait()
	t.conn = nil
	t.queue.drain()
	return err
}

func (t *UDPTransport) Broadcast(payload []byte, port int) error {
	if t.conn == nil {
		return net.ErrClosed
	}
	_, err := t.conn.WriteToUDP(payload, &net.UDPAddr{IP: net.IPv4bcast, Port: port})
	return err
}

func (t *UDPTransport) Poll() int {
	return t.queue.Poll()
}

func (t *UDPTransport) Next() *Packet {
	return t.queue.Next()
}

func (t *UDPTransport) Flush() {
	t.queue.Flush()
}

func (t *UDPTransport) receive(conn *net.UDPConn) {
	defer t.wg.Done()

	buf := receiveBuffer()
	for {
		n, src, err := conn.ReadFromUDP(buf)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				t.log.Warnf("Error reading from '%s': %v", conn.LocalAddr(), err)
			}
			return
		}

		data := make([]byte, n)
		copy(data, buf[:n])
		if !t.queue.offer(&Packet{Data: data, Src: src}) {
			t.log.Debugf("Dropping %d bytes from '%s', queue is full", n, src)
		}
	}
}
