package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestLimiter() (*Limiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	l := New(5, time.Minute)
	l.SetClock(clock.Now)
	return l, clock
}

func TestLimiter_NotLimitedWithoutAttempts(t *testing.T) {
	l, _ := newTestLimiter()
	assert.False(t, l.IsLimited("10.0.0.1"))
	assert.Equal(t, 0, l.Attempts("10.0.0.1"))
}

func TestLimiter_LimitedAfterMaxAttempts(t *testing.T) {
	l, clock := newTestLimiter()
	ip := "10.0.0.1"

	for i := 1; i <= 4; i++ {
		assert.Equal(t, i, l.RecordAttempt(ip))
		clock.Advance(time.Second)
		assert.False(t, l.IsLimited(ip), "attempt %d should not limit yet", i)
	}

	assert.Equal(t, 5, l.RecordAttempt(ip))
	assert.True(t, l.IsLimited(ip))
}

func TestLimiter_PerIP(t *testing.T) {
	l, _ := newTestLimiter()
	for i := 0; i < 5; i++ {
		l.RecordAttempt("10.0.0.1")
	}

	assert.True(t, l.IsLimited("10.0.0.1"))
	assert.False(t, l.IsLimited("10.0.0.2"))
}

func TestLimiter_SlidingWindow(t *testing.T) {
	l, clock := newTestLimiter()
	ip := "10.0.0.1"

	// one attempt every 10 seconds: t=0,10,20,30,40
	for i := 0; i < 5; i++ {
		l.RecordAttempt(ip)
		clock.Advance(10 * time.Second)
	}
	// t=50
	require.True(t, l.IsLimited(ip))

	// t=60: the attempt from t=0 leaves the window
	clock.Advance(10 * time.Second)
	assert.False(t, l.IsLimited(ip))
	assert.Equal(t, 4, l.Attempts(ip))

	// a fixed bucket would have reset here, the sliding window still counts t=10..40
	l.RecordAttempt(ip)
	assert.True(t, l.IsLimited(ip))
}

func TestLimiter_RejectedAttemptsExtendTheLock(t *testing.T) {
	l, clock := newTestLimiter()
	ip := "10.0.0.1"

	for i := 0; i < 5; i++ {
		l.RecordAttempt(ip)
	}
	clock.Advance(50 * time.Second)
	require.True(t, l.IsLimited(ip))
	l.RecordAttempt(ip) // rejected, but recorded

	clock.Advance(20 * time.Second)
	// the first five expired, the rejected one is still inside the window
	assert.False(t, l.IsLimited(ip))
	assert.Equal(t, 1, l.Attempts(ip))
}

func TestLimiter_Accessors(t *testing.T) {
	l := New(3, 30*time.Second)
	assert.Equal(t, 3, l.MaxAttempts())
	assert.Equal(t, 30*time.Second, l.Window())
}

func TestLimiter_ConcurrentUse(t *testing.T) {
	l, _ := newTestLimiter()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.RecordAttempt("10.0.0.1")
			l.IsLimited("10.0.0.1")
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, l.Attempts("10.0.0.1"))
}
