package auth

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter checks whether a request should be allowed for the
// authenticated identity.
type RateLimiter interface {
	Allow(ctx context.Context, identity *Identity) error
}

// TierConfig holds rate limit settings for a role.
type TierConfig struct {
	RequestsPerMinute int
}

// InProcessLimiter is a fixed-window rate limiter that tracks request
// counts per user in memory. Tiers are keyed by role name, case-insensitively.
type InProcessLimiter struct {
	tiers      map[string]TierConfig
	defaultRPM int
	nowFunc    func() time.Time
	mu         sync.Mutex
	counters   map[string]*counter
}

type counter struct {
	count    int
	windowAt time.Time
}

// NewInProcessLimiter creates a rate limiter with per-role configuration.
func NewInProcessLimiter(tiers map[string]TierConfig, defaultRPM int) *InProcessLimiter {
	byRole := make(map[string]TierConfig, len(tiers))
	for role, tc := range tiers {
		byRole[strings.ToLower(role)] = tc
	}
	return &InProcessLimiter{
		tiers:      byRole,
		defaultRPM: defaultRPM,
		nowFunc:    time.Now,
		counters:   make(map[string]*counter),
	}
}

// Allow checks if the request is within the rate limit.
func (l *InProcessLimiter) Allow(_ context.Context, identity *Identity) error {
	tier := strings.ToLower(string(identity.Role))
	if tier == "" {
		tier = "default"
	}

	rpm := l.defaultRPM
	if tc, ok := l.tiers[tier]; ok {
		rpm = tc.RequestsPerMinute
	}

	if rpm <= 0 {
		return nil // no limit
	}

	key := strconv.FormatInt(identity.ID, 10) + ":" + tier

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFunc()
	c, ok := l.counters[key]
	if !ok || now.Sub(c.windowAt) >= time.Minute {
		l.counters[key] = &counter{count: 1, windowAt: now}
		l.sweep(now)
		return nil
	}

	c.count++
	if c.count > rpm {
		return ErrTooManyRequests
	}

	return nil
}

// sweep drops counters whose window ended. Must be called with mu held.
func (l *InProcessLimiter) sweep(now time.Time) {
	for k, c := range l.counters {
		if now.Sub(c.windowAt) >= time.Minute {
			delete(l.counters, k)
		}
	}
}
