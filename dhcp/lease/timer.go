// Package lease keeps the renew, rebind and expiry countdowns of an acquired
// DHCP lease.
package lease

// DefaultLeaseTime is assumed when a server acknowledges without a lease
// time, in milliseconds.
const DefaultLeaseTime uint32 = 900 * 1000

// tickResolution is the minimal elapsed time, in milliseconds, before the
// counters are aged.
const tickResolution = 1000

type Event int

const (
	EventNone Event = iota
	EventRenewDue
	EventRebindDue
)

func (e Event) String() string {
	switch e {
	case EventRenewDue:
		return "renew due"
	case EventRebindDue:
		return "rebind due"
	default:
		return "none"
	}
}

// Derive fills in the values a server did not send. A missing renew time is
// half the lease, a missing rebind time is seven eighths of it.
func Derive(leaseTime, renewAfter, rebindAfter uint32) (uint32, uint32, uint32) {
	if leaseTime == 0 {
		leaseTime = DefaultLeaseTime
	}
	if renewAfter == 0 {
		renewAfter = leaseTime >> 1
	}
	if rebindAfter == 0 {
		rebindAfter = leaseTime - leaseTime>>3
	}
	return leaseTime, renewAfter, rebindAfter
}

// Timer counts down the lease. All values are milliseconds taken from a
// wrapping 32 bit monotonic clock.
type Timer struct {
	armed     bool
	renew     uint32
	rebind    uint32
	remaining uint32
	lastCheck uint32
}

// Arm starts the countdown at now.
func (t *Timer) Arm(now, leaseTime, renewAfter, rebindAfter uint32) {
	t.armed = true
	t.remaining = leaseTime
	t.renew = renewAfter
	t.rebind = rebindAfter
	t.lastCheck = now
}

// Disarm stops the countdown and zeroes all counters.
func (t *Timer) Disarm() {
	*t = Timer{}
}

// Tick ages the counters by the time passed since the last aging, once at
// least a second has passed, and reports which deadline is due. Renew and
// rebind are due early when less than two intervals are left.
func (t *Timer) Tick(now uint32) Event {
	if !t.armed {
		return EventNone
	}

	if elapsed := now - t.lastCheck; elapsed >= tickResolution {
		t.lastCheck = now

		t.renew = ageEarly(t.renew, elapsed)
		t.rebind = ageEarly(t.rebind, elapsed)
		if t.remaining < elapsed {
			t.remaining = 0
		} else {
			t.remaining -= elapsed
		}
	}

	switch {
	case t.rebind == 0:
		return EventRebindDue
	case t.renew == 0:
		return EventRenewDue
	default:
		return EventNone
	}
}

func ageEarly(counter, elapsed uint32) uint32 {
	// counter < 2*elapsed, without overflowing
	if counter < elapsed || counter-elapsed < elapsed {
		return 0
	}
	return counter - elapsed
}

// Expired reports whether an armed lease has run out.
func (t *Timer) Expired() bool {
	return t.armed && t.remaining == 0
}

func (t *Timer) Armed() bool {
	return t.armed
}

func (t *Timer) RenewIn() uint32 {
	return t.renew
}

func (t *Timer) RebindIn() uint32 {
	return t.rebind
}

func (t *Timer) Remaining() uint32 {
	return t.remaining
}
