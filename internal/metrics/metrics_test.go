package metrics

import (
	"errors"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blechat/internal/domain"
)

func TestResultFor(t *testing.T) {
	assert.Equal(t, ResultOK, ResultFor(nil))
	assert.Equal(t, ResultMalformed, ResultFor(fmt.Errorf("x: %w", domain.ErrMalformedPacket)))
	assert.Equal(t, ResultTruncated, ResultFor(domain.ErrTruncatedPacket))
	assert.Equal(t, ResultRateLimited, ResultFor(domain.ErrRateLimited))
	assert.Equal(t, ResultRetryable, ResultFor(domain.ErrRetryable))
	assert.Equal(t, ResultError, ResultFor(errors.New("boom")))
}

func TestObservePacket(t *testing.T) {
	m := New()
	m.ObservePacket(domain.PacketKindIdentity, nil, time.Millisecond)
	m.ObservePacket(domain.PacketKindIdentity, nil, time.Millisecond)
	m.ObservePacket(domain.PacketKindMessage, domain.ErrMalformedPacket, time.Millisecond)
	m.PeerCreated()
	m.MessageStored()
	m.Broadcast(domain.PacketKindMessage)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.packets.WithLabelValues("identity", ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.packets.WithLabelValues("message", ResultMalformed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.peersCreated))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.messagesStored))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.broadcasts.WithLabelValues("message")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObservePacket(domain.PacketKindMessage, nil, 0)
		m.PeerCreated()
		m.MessageStored()
		m.Broadcast(domain.PacketKindIdentity)
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.PeerCreated()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "blechat_peers_created_total 1"))
}
