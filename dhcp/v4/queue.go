package v4

const (
	queueDepth = 16

	// maxDatagramSize covers a full ethernet frame.
	maxDatagramSize = 1500
)

// packetQueue hands datagrams from a receive goroutine to a caller that must
// never block. The datagram at the head stays current until it is flushed.
type packetQueue struct {
	ch      chan *Packet
	current *Packet
}

func newPacketQueue() *packetQueue {
	return &packetQueue{ch: make(chan *Packet, queueDepth)}
}

// offer drops the datagram when the queue is full.
func (q *packetQueue) offer(p *Packet) bool {
	select {
	case q.ch <- p:
		return true
	default:
		return false
	}
}

func (q *packetQueue) Poll() int {
	if q.current == nil {
		select {
		case p := <-q.ch:
			q.current = p
		default:
			return 0
		}
	}
	return q.current.Len()
}

func (q *packetQueue) Next() *Packet {
	if q.current == nil {
		q.Poll()
	}
	return q.current
}

func (q *packetQueue) Flush() {
	q.current = nil
}

// drain forgets everything received so far.
func (q *packetQueue) drain() {
	q.current = nil
	for {
		select {
		case <-q.ch:
		default:
			return
		}
	}
}

func receiveBuffer() []byte {
	return make([]byte, maxDatagramSize)
}
