package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryFailureLimiter is the single-instance FailureLimiter used when Redis
// is disabled.
type MemoryFailureLimiter struct {
	mu       sync.Mutex
	config   Config
	failures map[string][]time.Time
	now      func() time.Time
}

func NewMemoryFailureLimiter(config Config) *MemoryFailureLimiter {
	return &MemoryFailureLimiter{
		config:   config,
		failures: make(map[string][]time.Time),
		now:      time.Now,
	}
}

func (l *MemoryFailureLimiter) Blocked(_ context.Context, key string) (bool, time.Duration, error) {
	if l.config.MaxFailures <= 0 {
		return false, 0, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	recent := l.prune(key, now)
	if len(recent) < l.config.MaxFailures {
		return false, 0, nil
	}
	return true, max(recent[0].Add(l.config.Window).Sub(now), 0), nil
}

func (l *MemoryFailureLimiter) RecordFailure(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.failures[key] = append(l.prune(key, now), now)
	return nil
}

func (l *MemoryFailureLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	delete(l.failures, key)
	l.mu.Unlock()
	return nil
}

// prune drops failures older than the window. Callers hold mu.
func (l *MemoryFailureLimiter) prune(key string, now time.Time) []time.Time {
	cutoff := now.Add(-l.config.Window)
	kept := l.failures[key][:0]
	for _, at := range l.failures[key] {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	if len(kept) == 0 {
		delete(l.failures, key)
		return nil
	}
	l.failures[key] = kept
	return kept
}
