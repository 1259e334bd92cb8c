package insights

import (
	"sync"
	"time"
)

const pollLimitWindow = 500 * time.Millisecond

// pollLimiter throttles snapshot polling per session and operation.
type pollLimiter struct {
	mu      sync.Mutex
	lastHit map[string]time.Time
	now     func() time.Time
	window  time.Duration
}

func newPollLimiter(window time.Duration, now func() time.Time) *pollLimiter {
	if now == nil {
		now = time.Now
	}
	if window <= 0 {
		window = pollLimitWindow
	}
	return &pollLimiter{
		lastHit: make(map[string]time.Time),
		now:     now,
		window:  window,
	}
}

func (l *pollLimiter) Allow(sessionID, op string) bool {
	if l == nil {
		return true
	}
	key := sessionID + "|" + op
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	if last, ok := l.lastHit[key]; ok {
		if now.Sub(last) < l.window {
			return false
		}
	}
	l.lastHit[key] = now
	return true
}

// Forget drops entries older than the window so the map stays bounded.
func (l *pollLimiter) Forget() {
	if l == nil {
		return
	}
	cutoff := l.now().Add(-l.window)
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, last := range l.lastHit {
		if last.Before(cutoff) {
			delete(l.lastHit, key)
		}
	}
}

func (l *pollLimiter) RetryAfterSeconds() int {
	window := pollLimitWindow
	if l != nil {
		window = l.window
	}
	secs := int((window + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
