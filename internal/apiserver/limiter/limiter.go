// Package limiter provides a fixed-window rate limiter used to bound
// anonymous siren submissions per client IP.
package limiter

import (
	"context"
	"time"
)

// Limiter answers whether a keyed event is within its fixed window budget.
type Limiter interface {
	// Allow records one event for key and reports whether it fits the
	// window. An error means the backing store failed, not that the
	// caller is over budget.
	Allow(ctx context.Context, key string) (bool, error)
	// Close releases backing resources.
	Close() error
}

// Config mirrors config.LimiterConfig without importing it, so the package
// stays usable from tests with literal values.
type Config struct {
	Limit  int
	Window time.Duration
}

func (c Config) withDefaults() Config {
	if c.Limit <= 0 {
		c.Limit = 5
	}
	if c.Window <= 0 {
		c.Window = time.Minute
	}
	return c
}
