package service

import (
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

const maxTrackedLogins = 10000

// loginLimiter throttles login attempts per client and email, so failed
// attempts from one client cannot lock the account out for the others.
type loginLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newLoginLimiter(perMinute int) *loginLimiter {
	if perMinute <= 0 {
		return nil
	}
	return &loginLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(float64(perMinute) / 60),
		burst:    perMinute,
	}
}

func (l *loginLimiter) Allow(client, email string) bool {
	if l == nil {
		return true
	}
	key := client + "|" + strings.ToLower(strings.TrimSpace(email))

	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[key]
	if !ok {
		if len(l.limiters) >= maxTrackedLogins {
			l.limiters = make(map[string]*rate.Limiter)
		}
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = lim
	}
	return lim.Allow()
}
