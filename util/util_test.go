package util

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSafeConvertToUint32(t *testing.T) {
	assert := require.New(t)

	assert.Equal(uint32(0), SafeConvertToUint32(-1))
	assert.Equal(uint32(42), SafeConvertToUint32(42.9))
	assert.Equal(uint32(math.MaxUint32), SafeConvertToUint32(math.MaxUint32+1))
}

func TestDurationToMillis(t *testing.T) {
	assert := require.New(t)

	assert.Equal(uint32(60000), DurationToMillis(time.Minute))
	assert.Equal(uint32(math.MaxUint32), DurationToMillis(24*time.Hour*365))
}

func TestParseDurationOrDefault(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", time.Minute},
		{"garbage", time.Minute},
		{"-5s", time.Minute},
		{"10s", 10 * time.Second},
		{"1h30m", 90 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			require.Equal(t, tt.want, ParseDurationOrDefault(tt.value, time.Minute))
		})
	}
}
