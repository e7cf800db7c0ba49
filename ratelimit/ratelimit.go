// Package ratelimit throttles login attempts per client IP using a sliding window.
//
// Records live in memory only and are lost on restart. Records of IPs that stop
// sending requests are never evicted.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter counts attempts per IP within a trailing window
type Limiter struct {
	mu          sync.Mutex
	attempts    map[string][]time.Time
	maxAttempts int
	window      time.Duration
	now         func() time.Time
}

// New creates a limiter allowing maxAttempts within window
func New(maxAttempts int, window time.Duration) *Limiter {
	return &Limiter{
		attempts:    make(map[string][]time.Time),
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
	}
}

// SetClock replaces the time source, used by tests
func (l *Limiter) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

// MaxAttempts returns the number of attempts allowed within the window
func (l *Limiter) MaxAttempts() int {
	return l.maxAttempts
}

// Window returns the length of the sliding window
func (l *Limiter) Window() time.Duration {
	return l.window
}

// IsLimited drops attempts older than the window and reports whether the
// remaining count has reached the limit
func (l *Limiter) IsLimited(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.prune(ip)) >= l.maxAttempts
}

// RecordAttempt adds an attempt for ip and returns the number of attempts now inside the window
func (l *Limiter) RecordAttempt(ip string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	attempts := append(l.prune(ip), l.now())
	l.attempts[ip] = attempts
	return len(attempts)
}

// Attempts returns the number of attempts for ip inside the window
func (l *Limiter) Attempts(ip string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.prune(ip))
}

// prune must be called with mu held
func (l *Limiter) prune(ip string) []time.Time {
	attempts, ok := l.attempts[ip]
	if !ok {
		return nil
	}

	now := l.now()
	kept := attempts[:0]
	for _, t := range attempts {
		if now.Sub(t) < l.window {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		delete(l.attempts, ip)
		return nil
	}
	l.attempts[ip] = kept
	return kept
}
