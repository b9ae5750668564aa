package util

import (
	"time"

	"golang.org/x/time/rate"
)

// Limiter is a token bucket. A nil *Limiter admits everything.
type Limiter struct {
	inner *rate.Limiter
}

// NewLimiter refills r tokens per second up to a burst of b.
func NewLimiter(r float64, b int) *Limiter {
	return &Limiter{inner: rate.NewLimiter(rate.Limit(r), b)}
}

// PerMinute admits n events per minute after an initial burst of b.
func PerMinute(n, b int) *Limiter {
	return NewLimiter(float64(n)/60, b)
}

func (l *Limiter) Allow() bool {
	return l.Next() == 0
}

// Next takes a token and returns zero when one is free. Otherwise it takes
// nothing and returns how long until the next token.
func (l *Limiter) Next() time.Duration {
	if l == nil {
		return 0
	}
	now := time.Now()
	r := l.inner.ReserveN(now, 1)
	if !r.OK() {
		return time.Duration(1<<63 - 1)
	}
	d := r.DelayFrom(now)
	if d > 0 {
		r.CancelAt(now)
	}
	return d
}
