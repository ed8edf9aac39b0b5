// Package ratelimit throttles repeated failed sign-in attempts.
package ratelimit

import (
	"context"
	"time"
)

// Config bounds failures per key within a sliding window.
type Config struct {
	MaxFailures int
	Window      time.Duration
}

// FailureLimiter counts failures per key. A key is blocked once it has
// MaxFailures failures inside the window.
type FailureLimiter interface {
	// Blocked reports whether key is blocked and, if so, how long until the
	// oldest counted failure leaves the window.
	Blocked(ctx context.Context, key string) (bool, time.Duration, error)
	RecordFailure(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}
