package ratelimit

import (
	"fmt"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is a manually advanced clock for window tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
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

// ============================================================================
// Consume
// ============================================================================

func TestLimiter_Consume_RejectsRequestPastQuota(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	l := New(DefaultPolicy(), WithClock(clock.Now))

	for i := 1; i <= 10; i++ {
		d := l.Consume("203.0.113.7")
		require.True(t, d.Allowed, "request %d should be allowed", i)
		assert.Equal(t, i, d.Count)
		clock.Advance(time.Second)
	}

	d := l.Consume("203.0.113.7")
	assert.False(t, d.Allowed)
	assert.Equal(t, 10, d.Count)
	assert.Zero(t, d.Delay)
}

func TestLimiter_Consume_RejectedAttemptIsNotRecorded(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	l := New(Policy{Window: time.Minute, MaxRequests: 2}, WithClock(clock.Now))

	require.True(t, l.Consume("k").Allowed)
	require.True(t, l.Consume("k").Allowed)
	for i := 0; i < 5; i++ {
		assert.False(t, l.Consume("k").Allowed)
	}

	// Only the two admitted requests age out; the rejected ones never counted.
	clock.Advance(time.Minute + time.Millisecond)
	assert.True(t, l.Consume("k").Allowed)
}

func TestLimiter_Consume_AllowsAgainAfterWindow(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	l := New(DefaultPolicy(), WithClock(clock.Now))

	for i := 0; i < 10; i++ {
		require.True(t, l.Consume("client").Allowed)
	}
	require.False(t, l.Consume("client").Allowed)

	clock.Advance(60*time.Second + time.Millisecond)

	d := l.Consume("client")
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Count)
}

func TestLimiter_Consume_SlidingWindowReleasesOldestFirst(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	l := New(Policy{Window: 10 * time.Second, MaxRequests: 3}, WithClock(clock.Now))

	require.True(t, l.Consume("c").Allowed) // t=0
	clock.Advance(4 * time.Second)
	require.True(t, l.Consume("c").Allowed) // t=4
	require.True(t, l.Consume("c").Allowed) // t=4
	require.False(t, l.Consume("c").Allowed)

	clock.Advance(6*time.Second + time.Millisecond) // t=10.001, first stamp out
	d := l.Consume("c")
	assert.True(t, d.Allowed)
	assert.Equal(t, 3, d.Count)
}

func TestLimiter_Consume_KeysAreIndependent(t *testing.T) {
	t.Parallel()

	l := New(Policy{Window: time.Minute, MaxRequests: 1})

	assert.True(t, l.Consume("a").Allowed)
	assert.False(t, l.Consume("a").Allowed)
	assert.True(t, l.Consume("b").Allowed)
	assert.Equal(t, 2, l.Len())
}

func TestLimiter_Consume_EmptyKeyBypasses(t *testing.T) {
	t.Parallel()

	l := New(Policy{Window: time.Minute, MaxRequests: 1})
	for i := 0; i < 50; i++ {
		d := l.Consume("")
		require.True(t, d.Allowed)
		require.Zero(t, d.Delay)
	}
	assert.Equal(t, 0, l.Len())
}

func TestLimiter_Consume_ConcurrentNeverAdmitsMoreThanQuota(t *testing.T) {
	t.Parallel()

	l := New(Policy{Window: time.Minute, MaxRequests: 10})

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Consume("shared").Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, allowed)
}

func TestLimiter_MaxClients_BoundsTable(t *testing.T) {
	t.Parallel()

	l := New(Policy{Window: time.Minute, MaxRequests: 5, MaxClients: 3})
	for i := 0; i < 20; i++ {
		l.Consume(fmt.Sprintf("client-%d", i))
	}
	assert.Equal(t, 3, l.Len())
}

func TestLimiter_Len_ExpiresIdleClients(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	l := New(DefaultPolicy(), WithClock(clock.Now))

	l.Consume("203.0.113.1")
	clock.Advance(30 * time.Second)
	l.Consume("203.0.113.2")
	assert.Equal(t, 2, l.Len())

	clock.Advance(31 * time.Second)
	assert.Equal(t, 1, l.Len(), "first client idle for a full window")

	clock.Advance(30 * time.Second)
	assert.Zero(t, l.Len())
}

func TestLimiter_Consume_RejectedCallKeepsClientTracked(t *testing.T) {
	t.Parallel()

	clock := newFakeClock()
	l := New(Policy{Window: time.Minute, MaxRequests: 1}, WithClock(clock.Now))

	require.True(t, l.Consume("c").Allowed)
	clock.Advance(50 * time.Second)
	require.False(t, l.Consume("c").Allowed)
	clock.Advance(20 * time.Second)

	assert.Equal(t, 1, l.Len())
	assert.True(t, l.Consume("c").Allowed, "the admitted stamp has left the window")
}

func TestNew_StartsNoBackgroundGoroutine(t *testing.T) {
	before := runtime.NumGoroutine()
	limiters := make([]*Limiter, 0, 50)
	for i := 0; i < 50; i++ {
		limiters = append(limiters, New(DefaultPolicy()))
	}
	after := runtime.NumGoroutine()

	assert.Len(t, limiters, 50)
	assert.LessOrEqual(t, after, before)
}

func TestLimiter_Remaining(t *testing.T) {
	t.Parallel()

	l := New(Policy{Window: time.Minute, MaxRequests: 4})
	assert.Equal(t, 4, l.Remaining("x"))
	l.Consume("x")
	l.Consume("x")
	assert.Equal(t, 2, l.Remaining("x"))
	assert.Equal(t, 4, l.Remaining(""))
}

// ============================================================================
// Progressive delay
// ============================================================================

func TestLimiter_Consume_DelayOnlyAboveThreshold(t *testing.T) {
	t.Parallel()

	l := New(DefaultPolicy())

	want := []time.Duration{0, 0, 0, 0, 0, 0, 0, 500 * time.Millisecond, 1000 * time.Millisecond, 1500 * time.Millisecond}
	for i, w := range want {
		d := l.Consume("delay-client")
		require.True(t, d.Allowed)
		assert.Equal(t, w, d.Delay, "request %d", i+1)
	}
}

func TestDelayFor_MonotonicAndCapped(t *testing.T) {
	t.Parallel()

	p := Policy{MaxRequests: 100, DelayThreshold: 0.7, MaxDelay: 1500 * time.Millisecond}

	prev := time.Duration(0)
	for count := 1; count <= 100; count++ {
		d := DelayFor(count, p)
		if count <= 70 {
			assert.Zero(t, d, "count %d", count)
			continue
		}
		assert.Greater(t, d, prev, "delay must increase at count %d", count)
		assert.LessOrEqual(t, d, p.MaxDelay)
		prev = d
	}
	assert.Equal(t, p.MaxDelay, DelayFor(100, p))
	assert.Equal(t, p.MaxDelay, DelayFor(150, p))
}

func TestDelayFor_MatchesLegacyFormula(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy()
	for count := 1; count <= p.MaxRequests; count++ {
		ratio := float64(count) / float64(p.MaxRequests)
		legacy := time.Duration(0)
		if ratio > 0.7 {
			ms := (ratio - 0.7) * 5000
			if ms > 1500 {
				ms = 1500
			}
			legacy = time.Duration(int64(ms+0.5)) * time.Millisecond
		}
		assert.Equal(t, legacy, DelayFor(count, p), "count %d", count)
	}
}

func TestDelayFor_DegenerateThreshold(t *testing.T) {
	t.Parallel()

	assert.Zero(t, DelayFor(10, Policy{MaxRequests: 10, DelayThreshold: 1, MaxDelay: time.Second}))
	assert.Zero(t, DelayFor(10, Policy{MaxRequests: 0, DelayThreshold: 0.5, MaxDelay: time.Second}))
}

func TestPolicy_WithDefaults(t *testing.T) {
	t.Parallel()

	p := Policy{}.withDefaults()
	assert.Equal(t, DefaultPolicy(), p)
}
