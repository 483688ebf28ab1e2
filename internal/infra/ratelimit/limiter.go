// Package ratelimit implements the per-client sliding-window limiter that gates
// the chat endpoint, including the progressive soft delay applied as a client
// approaches its quota.
//
// Design:
//   - One Limiter per process, constructed at startup and injected into callers.
//   - A bucket holds the request timestamps of one client inside the trailing window.
//   - Read-prune-check-append for a key runs under a single mutex.
//   - The bucket table is a size-bounded LRU. Buckets idle for a full window
//     are swept from the cold end on every call, on the limiter's own clock, so
//     no background goroutine is needed.
//   - Client keys are stored as keyed BLAKE2b digests so raw addresses are never
//     held in memory.
package ratelimit

import (
	"crypto/rand"
	"encoding/hex"
	"math"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"
	"golang.org/x/crypto/blake2b"
)

// Policy configures a Limiter.
type Policy struct {
	Window         time.Duration `yaml:"window"`
	MaxRequests    int           `yaml:"max_requests"`
	DelayThreshold float64       `yaml:"delay_threshold"`
	MaxDelay       time.Duration `yaml:"max_delay"`
	MaxClients     int           `yaml:"max_clients"`
}

// DefaultPolicy returns 10 requests per minute, soft delay past 70% usage
// capped at 1.5s, and at most 10 000 tracked clients.
func DefaultPolicy() Policy {
	return Policy{
		Window:         time.Minute,
		MaxRequests:    10,
		DelayThreshold: 0.7,
		MaxDelay:       1500 * time.Millisecond,
		MaxClients:     10000,
	}
}

func (p Policy) withDefaults() Policy {
	def := DefaultPolicy()
	if p.Window <= 0 {
		p.Window = def.Window
	}
	if p.MaxRequests <= 0 {
		p.MaxRequests = def.MaxRequests
	}
	if p.DelayThreshold <= 0 {
		p.DelayThreshold = def.DelayThreshold
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = def.MaxDelay
	}
	if p.MaxClients <= 0 {
		p.MaxClients = def.MaxClients
	}
	return p
}

// Decision is the outcome of a Consume call.
type Decision struct {
	Allowed bool
	// Count is the number of requests in the window, including this one when allowed.
	Count int
	// Delay is the suggested cooperative pause before serving the request.
	Delay time.Duration
}

// Option customizes a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now; used by tests to move through windows.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// Limiter is a sliding-window request counter keyed by client.
type Limiter struct {
	mu      sync.Mutex
	policy  Policy
	buckets *simplelru.LRU[string, bucket]
	secret  []byte
	now     func() time.Time
}

// bucket is one client's window. seen is the last time the client called
// Consume, allowed or not; it orders the LRU and drives idle expiry.
type bucket struct {
	stamps []time.Time
	seen   time.Time
}

// New creates a Limiter. Zero-valued policy fields take DefaultPolicy values.
func New(policy Policy, opts ...Option) *Limiter {
	policy = policy.withDefaults()

	secret := make([]byte, 32)
	_, _ = rand.Read(secret)

	// NewLRU only fails for a non-positive size; withDefaults rules that out.
	buckets, _ := simplelru.NewLRU[string, bucket](policy.MaxClients, nil)

	l := &Limiter{
		policy:  policy,
		buckets: buckets,
		secret:  secret,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Policy returns the effective policy.
func (l *Limiter) Policy() Policy { return l.policy }

// Consume records a request for clientKey if the window has room.
// An empty clientKey is never limited.
func (l *Limiter) Consume(clientKey string) Decision {
	if clientKey == "" {
		return Decision{Allowed: true}
	}
	id := l.digest(clientKey)

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	windowStart := now.Add(-l.policy.Window)
	l.sweepIdle(windowStart)

	b, _ := l.buckets.Get(id)
	stamps := prune(b.stamps, windowStart)

	if len(stamps) >= l.policy.MaxRequests {
		l.buckets.Add(id, bucket{stamps: stamps, seen: now})
		return Decision{Allowed: false, Count: len(stamps)}
	}

	stamps = append(stamps, now)
	l.buckets.Add(id, bucket{stamps: stamps, seen: now})
	return Decision{
		Allowed: true,
		Count:   len(stamps),
		Delay:   DelayFor(len(stamps), l.policy),
	}
}

// Remaining returns how many more requests clientKey may make in the current window.
func (l *Limiter) Remaining(clientKey string) int {
	if clientKey == "" {
		return l.policy.MaxRequests
	}
	id := l.digest(clientKey)

	l.mu.Lock()
	defer l.mu.Unlock()

	b, _ := l.buckets.Peek(id)
	remaining := l.policy.MaxRequests - len(prune(b.stamps, l.now().Add(-l.policy.Window)))
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Len returns the number of client buckets seen within the last window.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweepIdle(l.now().Add(-l.policy.Window))
	return l.buckets.Len()
}

// sweepIdle drops buckets not seen since windowStart. The LRU is ordered by
// seen, so it stops at the first live bucket. Callers hold l.mu.
func (l *Limiter) sweepIdle(windowStart time.Time) {
	for {
		_, b, ok := l.buckets.GetOldest()
		if !ok || b.seen.After(windowStart) {
			return
		}
		l.buckets.RemoveOldest()
	}
}

// DelayFor returns the soft delay for the count-th request of a window.
// Below the threshold ratio the delay is zero; above it the delay grows linearly
// and reaches MaxDelay when the quota is fully used.
func DelayFor(count int, p Policy) time.Duration {
	if p.MaxRequests <= 0 || p.DelayThreshold >= 1 {
		return 0
	}
	ratio := float64(count) / float64(p.MaxRequests)
	if ratio <= p.DelayThreshold {
		return 0
	}
	frac := (ratio - p.DelayThreshold) / (1 - p.DelayThreshold)
	d := time.Duration(math.Round(frac*float64(p.MaxDelay.Milliseconds()))) * time.Millisecond
	if d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// prune returns the timestamps strictly after windowStart, in order.
func prune(stamps []time.Time, windowStart time.Time) []time.Time {
	kept := make([]time.Time, 0, len(stamps)+1)
	for _, ts := range stamps {
		if ts.After(windowStart) {
			kept = append(kept, ts)
		}
	}
	return kept
}

func (l *Limiter) digest(clientKey string) string {
	h, _ := blake2b.New256(l.secret)
	h.Write([]byte(clientKey)) //nolint:errcheck
	return hex.EncodeToString(h.Sum(nil)[:16])
}
