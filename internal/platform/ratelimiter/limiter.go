// Package ratelimiter provides per-sender token buckets for inbound packets.
package ratelimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"blechat/internal/domain"
)

// SenderLimiter keeps one token bucket per sender public key. Buckets idle
// for longer than the TTL are dropped on the next sweep.
//
// A nil *SenderLimiter allows everything.
type SenderLimiter struct {
	limit rate.Limit
	burst int
	ttl   time.Duration

	mu        sync.Mutex
	buckets   map[domain.PublicKey]*bucket
	nextSweep time.Time
}

type bucket struct {
	tokens *rate.Limiter
	seen   time.Time
}

// New returns a limiter allowing rps packets per second per sender with the
// given burst, or nil when either is not positive.
func New(rps float64, burst int, idleTTL time.Duration) *SenderLimiter {
	if rps <= 0 || burst <= 0 {
		return nil
	}
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	return &SenderLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		ttl:     idleTTL,
		buckets: make(map[domain.PublicKey]*bucket),
	}
}

// Allow consumes one token from sender's bucket at now.
func (l *SenderLimiter) Allow(sender domain.PublicKey, now time.Time) bool {
	if l == nil {
		return true
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if !now.Before(l.nextSweep) {
		l.sweep(now)
	}
	b, ok := l.buckets[sender]
	if !ok {
		b = &bucket{tokens: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[sender] = b
	}
	b.seen = now
	return b.tokens.AllowN(now, 1)
}

func (l *SenderLimiter) sweep(now time.Time) {
	for k, b := range l.buckets {
		if now.Sub(b.seen) > l.ttl {
			delete(l.buckets, k)
		}
	}
	l.nextSweep = now.Add(l.ttl)
}

// Len returns the number of senders with a live bucket.
func (l *SenderLimiter) Len() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
