package gateway

import (
	"math"
	"net/http"
	"time"
)

// RetryPolicy controls how idempotent calls are repeated when the server cannot be reached.
// A zero MaxRetries sends every call once.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// NextDelay returns the pause before the given retry (1-based), clamped to MaxDelay.
func (p RetryPolicy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	initial := p.InitialDelay
	if initial <= 0 {
		initial = 100 * time.Millisecond
	}
	factor := p.BackoffFactor
	if factor <= 0 {
		factor = 2
	}

	d := time.Duration(float64(initial) * math.Pow(factor, float64(attempt-1)))
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	if d <= 0 {
		d = initial
	}
	return d
}

// retryable reports whether a failed call may be sent again without side effects.
func retryable(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodDelete:
		return true
	default:
		return false
	}
}
