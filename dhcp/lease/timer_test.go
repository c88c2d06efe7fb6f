package lease

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		name                 string
		lease, renew, rebind uint32
		wantLease            uint32
		wantRenew            uint32
		wantRebind           uint32
	}{
		{"all missing", 0, 0, 0, 900000, 450000, 787500},
		{"lease only", 3600000, 0, 0, 3600000, 1800000, 3150000},
		{"renew given", 3600000, 1000000, 0, 3600000, 1000000, 3150000},
		{"rebind given", 3600000, 0, 2000000, 3600000, 1800000, 2000000},
		{"everything given", 3600000, 60000, 120000, 3600000, 60000, 120000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := require.New(t)

			lease, renew, rebind := Derive(tt.lease, tt.renew, tt.rebind)
			assert.Equal(tt.wantLease, lease)
			assert.Equal(tt.wantRenew, renew)
			assert.Equal(tt.wantRebind, rebind)
		})
	}
}

func TestTickBelowResolution(t *testing.T) {
	assert := require.New(t)

	var timer Timer
	timer.Arm(5000, 10000, 5000, 8000)

	assert.Equal(EventNone, timer.Tick(5999))
	assert.Equal(uint32(10000), timer.Remaining())
	assert.Equal(uint32(5000), timer.RenewIn())
	assert.Equal(uint32(8000), timer.RebindIn())
}

func TestTickFiresEarly(t *testing.T) {
	assert := require.New(t)

	var timer Timer
	timer.Arm(0, 10000, 5000, 9000)

	// 3000 left, 2000 elapsed: 3000 < 4000 snaps renew to zero
	assert.Equal(EventNone, timer.Tick(0))
	timer.renew = 3000
	assert.Equal(EventRenewDue, timer.Tick(2000))
	assert.Equal(uint32(0), timer.RenewIn())
	assert.Equal(uint32(7000), timer.RebindIn())
	assert.Equal(uint32(8000), timer.Remaining())
}

func TestTickFiresBeforeDeadline(t *testing.T) {
	assert := require.New(t)

	var timer Timer
	timer.Arm(0, 3600000, 1800500, 3150000)

	now := uint32(0)
	for timer.Tick(now) == EventNone {
		now += 1000
	}
	assert.Equal(uint32(1800000), now)
}

func TestTickRebindHasPriority(t *testing.T) {
	assert := require.New(t)

	var timer Timer
	timer.Arm(0, 10000, 3000, 3000)

	assert.Equal(EventRebindDue, timer.Tick(2000))
	assert.Equal(uint32(0), timer.RenewIn())
	assert.Equal(uint32(0), timer.RebindIn())
}

func TestTickReachesZero(t *testing.T) {
	assert := require.New(t)

	var timer Timer
	timer.Arm(0, 3600000, 1800000, 3150000)

	now := uint32(0)
	renewAt, rebindAt := uint32(0), uint32(0)
	for !timer.Expired() {
		now += 1000
		previous := [3]uint32{timer.RenewIn(), timer.RebindIn(), timer.Remaining()}

		switch timer.Tick(now) {
		case EventRenewDue:
			if renewAt == 0 {
				renewAt = now
			}
		case EventRebindDue:
			if rebindAt == 0 {
				rebindAt = now
			}
		}

		assert.LessOrEqual(timer.RenewIn(), previous[0])
		assert.LessOrEqual(timer.RebindIn(), previous[1])
		assert.LessOrEqual(timer.Remaining(), previous[2])
		assert.LessOrEqual(now, uint32(3600000))
	}

	assert.Equal(uint32(3600000), now)
	assert.Equal(uint32(1800000), renewAt)
	assert.Equal(uint32(3150000), rebindAt)
	assert.Equal(uint32(0), timer.RenewIn())
	assert.Equal(uint32(0), timer.RebindIn())

	// counters stay at zero until the timer is armed again
	for i := 0; i < 5; i++ {
		now += 1000 * uint32(i+1)
		assert.Equal(EventRebindDue, timer.Tick(now))
		assert.True(timer.Expired())
		assert.Equal(uint32(0), timer.RenewIn())
		assert.Equal(uint32(0), timer.RebindIn())
		assert.Equal(uint32(0), timer.Remaining())
	}

	timer.Arm(now, 3600000, 1800000, 3150000)
	assert.False(timer.Expired())
	assert.Equal(uint32(1800000), timer.RenewIn())
}

func TestTickWrapsAround(t *testing.T) {
	assert := require.New(t)

	var timer Timer
	timer.Arm(math.MaxUint32-500, 10000, 8000, 9000)

	assert.Equal(EventNone, timer.Tick(1499))
	assert.Equal(uint32(8000), timer.Remaining())
	assert.Equal(uint32(6000), timer.RenewIn())
}

func TestTickHugeElapsed(t *testing.T) {
	assert := require.New(t)

	var timer Timer
	timer.Arm(0, math.MaxUint32, math.MaxUint32, math.MaxUint32)

	assert.Equal(EventRebindDue, timer.Tick(math.MaxUint32/2+1))
	assert.False(timer.Expired())
	assert.Equal(uint32(math.MaxUint32/2), timer.Remaining())
}

func TestDisarmedTimer(t *testing.T) {
	assert := require.New(t)

	var timer Timer
	assert.Equal(EventNone, timer.Tick(123456))
	assert.False(timer.Expired())
	assert.False(timer.Armed())

	timer.Arm(0, 1000, 500, 800)
	assert.True(timer.Armed())
	timer.Disarm()
	assert.False(timer.Armed())
	assert.Equal(EventNone, timer.Tick(5000))
}

func TestEventString(t *testing.T) {
	assert := require.New(t)

	assert.Equal("none", EventNone.String())
	assert.Equal("renew due", EventRenewDue.String())
	assert.Equal("rebind due", EventRebindDue.String())
}
