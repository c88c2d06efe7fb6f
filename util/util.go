package util

import (
	"math"
	"time"
)

func SafeConvertToUint32(float64Value float64) uint32 {
	if float64Value > math.MaxUint32 {
		return math.MaxUint32
	} else if float64Value < 0 {
		return 0
	} else {
		return uint32(float64Value)
	}
}

// DurationToMillis saturates at the largest uint32.
func DurationToMillis(d time.Duration) uint32 {
	return SafeConvertToUint32(float64(d.Milliseconds()))
}

// ParseDurationOrDefault returns def for empty or unparsable values.
func ParseDurationOrDefault(value string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
