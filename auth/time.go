package auth

import "time"

// IsWithinThresholdPeriod checks if t is less than period before now.
func IsWithinThresholdPeriod(t, now time.Time, period time.Duration) bool {
	return t.After(now.Add(-period))
}

// IsOutsideThresholdPeriod is the negation of IsWithinThresholdPeriod
func IsOutsideThresholdPeriod(t, now time.Time, period time.Duration) bool {
	return !IsWithinThresholdPeriod(t, now, period)
}
