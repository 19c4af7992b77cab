package http

import (
	"sync"
	"time"
)

// rateLimiter is a fixed-window limiter keyed by client IP. Only writes are
// limited; analytics reads are served from the report cache.
type rateLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu          sync.Mutex
	clients     map[string]*window
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

type window struct {
	start    time.Time
	requests int
}

func newRateLimiter(limit int, per time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:       limit,
		window:      per,
		now:         time.Now,
		clients:     make(map[string]*window),
		stopCleanup: make(chan struct{}),
	}
}

// startCleanup drops idle clients until stop is called.
func (rl *rateLimiter) startCleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *rateLimiter) cleanup() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-2 * rl.window)
	removed := 0
	for ip, w := range rl.clients {
		if w.start.Before(cutoff) {
			delete(rl.clients, ip)
			removed++
		}
	}
	return removed
}

func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() { close(rl.stopCleanup) })
}

// allow records a request from clientIP. When the limit is exhausted it
// returns false and the time left in the current window.
func (rl *rateLimiter) allow(clientIP string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.clients[clientIP]
	if !ok || now.Sub(w.start) >= rl.window {
		rl.clients[clientIP] = &window{start: now, requests: 1}
		return true, 0
	}

	if w.requests >= rl.limit {
		return false, w.start.Add(rl.window).Sub(now)
	}
	w.requests++
	return true, 0
}
