package v4

import (
	"encoding/binary"
	"errors"
)

// ErrShortBuffer is returned when a message does not fit into the
// outbound buffer or an option payload exceeds 255 bytes.
var ErrShortBuffer = errors.New("dhcp: write exceeds buffer capacity")

// writer is a fixed capacity byte builder. The first failed write sticks,
// later writes are ignored.
type writer struct {
	buf []byte
	err error
}

func newWriter(capacity int) *writer {
	return &writer{buf: make([]byte, 0, capacity)}
}

func (w *writer) fits(n int) bool {
	if w.err != nil {
		return false
	}
	if len(w.buf)+n > cap(w.buf) {
		w.err = ErrShortBuffer
		return false
	}
	return true
}

func (w *writer) byte(b byte) {
	if w.fits(1) {
		w.buf = append(w.buf, b)
	}
}

func (w *writer) bytes(p []byte) {
	if w.fits(len(p)) {
		w.buf = append(w.buf, p...)
	}
}

func (w *writer) zeros(n int) {
	if w.fits(n) {
		w.buf = append(w.buf, make([]byte, n)...)
	}
}

func (w *writer) uint16(v uint16) {
	if w.fits(2) {
		w.buf = binary.BigEndian.AppendUint16(w.buf, v)
	}
}

func (w *writer) uint32(v uint32) {
	if w.fits(4) {
		w.buf = binary.BigEndian.AppendUint32(w.buf, v)
	}
}

// option writes code, length and payload.
func (w *writer) option(code uint8, payload ...byte) {
	if len(payload) > 255 {
		if w.err == nil {
			w.err = ErrShortBuffer
		}
		return
	}
	if w.fits(2 + len(payload)) {
		w.buf = append(w.buf, code, byte(len(payload)))
		w.buf = append(w.buf, payload...)
	}
}

func (w *writer) Bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	return w.buf, nil
}

// cursor reads a datagram front to back and never hands out bytes past
// its end.
type cursor struct {
	data []byte
	off  int
}

func (c *cursor) remaining() int {
	return len(c.data) - c.off
}

func (c *cursor) read(n int) ([]byte, bool) {
	if n < 0 || n > c.remaining() {
		c.off = len(c.data)
		return nil, false
	}
	p := c.data[c.off : c.off+n]
	c.off += n
	return p, true
}

func (c *cursor) readByte() (byte, bool) {
	p, ok := c.read(1)
	if !ok {
		return 0, false
	}
	return p[0], true
}

func (c *cursor) discard(n int) bool {
	_, ok := c.read(n)
	return ok
}
