package engine

import (
	"math"
	"time"
)

const (
	// backoffCap bounds any single reconnect delay.
	backoffCap = 60 * time.Second
	// backoffMaxExponent stops the delay from growing past base·1.5⁵.
	backoffMaxExponent = 5
)

// Backoff returns the delay before reconnect attempt number failures
// (1-based): min(base · 1.5^min(failures-1, 5), 60s).
func Backoff(base time.Duration, failures int) time.Duration {
	if failures < 1 {
		failures = 1
	}
	exp := failures - 1
	if exp > backoffMaxExponent {
		exp = backoffMaxExponent
	}
	d := time.Duration(float64(base) * math.Pow(1.5, float64(exp)))
	if d > backoffCap {
		return backoffCap
	}
	return d
}
