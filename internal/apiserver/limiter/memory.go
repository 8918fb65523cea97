package limiter

import (
	"context"
	"sync"
	"time"
)

type window struct {
	count   int
	started time.Time
}

// MemoryLimiter is an in-process fixed-window limiter. Suitable for a single
// instance; multi-instance deployments should use the redis limiter.
type MemoryLimiter struct {
	mu        sync.Mutex
	cfg       Config
	windows   map[string]*window
	now       func() time.Time
	lastSweep time.Time
}

// NewMemoryLimiter creates a new in-memory limiter.
func NewMemoryLimiter(cfg Config) *MemoryLimiter {
	return &MemoryLimiter{
		cfg:     cfg.withDefaults(),
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)
	w, ok := l.windows[key]
	if !ok || now.Sub(w.started) >= l.cfg.Window {
		l.windows[key] = &window{count: 1, started: now}
		return true, nil
	}

	w.count++
	return w.count <= l.cfg.Limit, nil
}

// sweep drops expired windows at most once per window so the map does not
// grow with every distinct key ever seen. Callers hold l.mu.
func (l *MemoryLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.cfg.Window {
		return
	}
	l.lastSweep = now
	for key, w := range l.windows {
		if now.Sub(w.started) >= l.cfg.Window {
			delete(l.windows, key)
		}
	}
}

func (l *MemoryLimiter) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.windows = make(map[string]*window)
	return nil
}
