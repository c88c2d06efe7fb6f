package dhcp

import "time"

// Clock is a monotonic millisecond clock. Its value may wrap, differences
// are taken with unsigned 32 bit arithmetic.
type Clock interface {
	Millis() uint32
}

type SystemClock struct {
	start time.Time
}

func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

func (c *SystemClock) Millis() uint32 {
	return uint32(time.Since(c.start).Milliseconds())
}
