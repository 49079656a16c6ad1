package ratelimiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blechat/internal/domain"
)

func key(b byte) domain.PublicKey {
	var k domain.PublicKey
	k[0] = b
	return k
}

func TestNew_InvalidArgsDisables(t *testing.T) {
	assert.Nil(t, New(0, 1, 0))
	assert.Nil(t, New(1, 0, 0))
	assert.Nil(t, New(-1, 5, 0))

	var l *SenderLimiter
	assert.True(t, l.Allow(key(1), time.Now()))
	assert.Zero(t, l.Len())
}

func TestAllow_BurstThenRefill(t *testing.T) {
	l := New(1, 2, time.Minute)
	require.NotNil(t, l)
	now := time.Unix(1_700_000_000, 0)

	assert.True(t, l.Allow(key(1), now))
	assert.True(t, l.Allow(key(1), now))
	assert.False(t, l.Allow(key(1), now))

	assert.True(t, l.Allow(key(2), now), "senders have separate buckets")
	assert.True(t, l.Allow(key(1), now.Add(time.Second)))
}

func TestAllow_SweepsIdleSenders(t *testing.T) {
	l := New(100, 10, time.Second)
	start := time.Unix(1_700_000_000, 0)
	l.Allow(key(1), start)
	l.Allow(key(2), start)
	assert.Equal(t, 2, l.Len())

	l.Allow(key(3), start.Add(500*time.Millisecond))
	assert.Equal(t, 3, l.Len(), "no sweep before the TTL has passed")

	l.Allow(key(3), start.Add(2*time.Second))
	assert.Equal(t, 1, l.Len())
}
