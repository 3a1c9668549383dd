package api

import (
	"sync"

	"shareit/internal/config"

	"golang.org/x/time/rate"
)

const defaultBurst = 5

// keyedLimiter hands out one token bucket per client key.
type keyedLimiter struct {
	limiters sync.Map // map[string]*rate.Limiter
	cfg      config.RateLimitConfig
}

func newKeyedLimiter(cfg config.RateLimitConfig) *keyedLimiter {
	return &keyedLimiter{cfg: cfg}
}

func (l *keyedLimiter) enabled() bool {
	return l.cfg.RPS > 0
}

func (l *keyedLimiter) allow(key string) bool {
	if !l.enabled() {
		return true
	}
	return l.get(key).Allow()
}

func (l *keyedLimiter) get(key string) *rate.Limiter {
	if v, ok := l.limiters.Load(key); ok {
		if lim, ok := v.(*rate.Limiter); ok {
			return lim
		}
	}

	burst := l.cfg.Burst
	if burst <= 0 {
		burst = defaultBurst
	}

	lim := rate.NewLimiter(rate.Limit(l.cfg.RPS), burst)
	actual, loaded := l.limiters.LoadOrStore(key, lim)
	if loaded {
		if actualLim, ok := actual.(*rate.Limiter); ok {
			return actualLim
		}
	}
	return lim
}
