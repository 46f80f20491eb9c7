package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginThrottle limits login attempts per client key, usually the client IP
type LoginThrottle struct {
	limiters sync.Map
	rate     rate.Limit
	burst    int
}

// NewLoginThrottle allows perMinute attempts per key, with a burst of the same size
func NewLoginThrottle(perMinute int) *LoginThrottle {
	if perMinute < 1 {
		perMinute = 1
	}
	return &LoginThrottle{
		rate:  rate.Every(time.Minute / time.Duration(perMinute)),
		burst: perMinute,
	}
}

// Allow reports whether key may attempt a login now
func (t *LoginThrottle) Allow(key string) bool {
	limiter, _ := t.limiters.LoadOrStore(key, rate.NewLimiter(t.rate, t.burst))
	return limiter.(*rate.Limiter).Allow()
}
