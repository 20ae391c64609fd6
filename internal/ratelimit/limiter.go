// Package ratelimit implements the process-wide fixed-window request budget.
// Handlers never touch the bucket map directly; they go through the Limiter
// interface so the in-memory implementation can be swapped for a distributed
// one later.
package ratelimit

import (
	"sync"
	"time"

	"github.com/medba/medba/internal/config"
)

// Decision is the outcome of one admit call. RetryAfter is only meaningful
// when Allowed is false.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// Limiter gates requests per client key.
type Limiter interface {
	Admit(key string) Decision
}

type bucket struct {
	windowStart time.Time
	count       int
}

// FixedWindow counts requests per key in fixed windows. Buckets for idle
// clients are evicted by a periodic sweep so memory stays bounded by the set
// of active clients.
type FixedWindow struct {
	mu      sync.Mutex
	buckets map[string]*bucket

	window time.Duration
	max    int
	now    func() time.Time

	stop chan struct{}
	done chan struct{}
}

// NewFixedWindow creates a limiter from configuration. Call Start to begin
// the background sweep and Stop on shutdown.
func NewFixedWindow(cfg config.RateLimitConfig) *FixedWindow {
	return &FixedWindow{
		buckets: make(map[string]*bucket),
		window:  cfg.Window,
		max:     cfg.Max,
		now:     time.Now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Admit counts one request for key. The first request in a window always
// passes; once the cap is reached the caller is told how long until the
// window resets.
func (l *FixedWindow) Admit(key string) Decision {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok || now.Sub(b.windowStart) >= l.window {
		l.buckets[key] = &bucket{windowStart: now, count: 1}
		return Decision{Allowed: true}
	}

	if b.count >= l.max {
		remaining := l.window - now.Sub(b.windowStart)
		if remaining < 0 {
			remaining = 0
		}
		// Round up so clients never retry a moment too early.
		retryAfter := remaining.Truncate(time.Second)
		if retryAfter < remaining {
			retryAfter += time.Second
		}
		return Decision{Allowed: false, RetryAfter: retryAfter}
	}

	b.count++
	return Decision{Allowed: true}
}

// Start launches the periodic sweep. The interval equals the window length.
func (l *FixedWindow) Start() {
	go func() {
		defer close(l.done)

		ticker := time.NewTicker(l.window)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				l.sweep(l.now())
			case <-l.stop:
				return
			}
		}
	}()
}

// Stop halts the sweep goroutine and waits for it to exit.
func (l *FixedWindow) Stop() {
	close(l.stop)
	<-l.done
}

// sweep evicts buckets whose window started more than two window lengths ago.
func (l *FixedWindow) sweep(now time.Time) {
	cutoff := 2 * l.window

	l.mu.Lock()
	defer l.mu.Unlock()

	for key, b := range l.buckets {
		if now.Sub(b.windowStart) > cutoff {
			delete(l.buckets, key)
		}
	}
}
