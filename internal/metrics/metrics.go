// Package metrics exposes ingest and broadcast counters in Prometheus form.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"blechat/internal/domain"
)

// Result labels for PacketsTotal.
const (
	ResultOK          = "ok"
	ResultMalformed   = "malformed"
	ResultTruncated   = "truncated"
	ResultRateLimited = "rate_limited"
	ResultRetryable   = "retryable"
	ResultError       = "error"
)

// Metrics holds the collectors for one process. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	packets        *prometheus.CounterVec
	peersCreated   prometheus.Counter
	messagesStored prometheus.Counter
	ingestDuration *prometheus.HistogramVec
	broadcasts     *prometheus.CounterVec
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		packets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blechat_packets_total",
			Help: "Received packets by kind and outcome.",
		}, []string{"kind", "result"}),
		peersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blechat_peers_created_total",
			Help: "Peers first seen by this device.",
		}),
		messagesStored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blechat_messages_stored_total",
			Help: "Public messages persisted.",
		}),
		ingestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "blechat_ingest_duration_seconds",
			Help:    "Time to decode and persist one packet.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"kind"}),
		broadcasts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blechat_broadcasts_total",
			Help: "Outbound packets handed to the transport.",
		}, []string{"kind"}),
	}
	m.registry.MustRegister(
		m.packets,
		m.peersCreated,
		m.messagesStored,
		m.ingestDuration,
		m.broadcasts,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObservePacket records one ingest attempt.
func (m *Metrics) ObservePacket(kind domain.PacketKind, err error, took time.Duration) {
	if m == nil {
		return
	}
	m.packets.WithLabelValues(string(kind), ResultFor(err)).Inc()
	m.ingestDuration.WithLabelValues(string(kind)).Observe(took.Seconds())
}

// PeerCreated counts a newly inserted peer.
func (m *Metrics) PeerCreated() {
	if m == nil {
		return
	}
	m.peersCreated.Inc()
}

// MessageStored counts a persisted message.
func (m *Metrics) MessageStored() {
	if m == nil {
		return
	}
	m.messagesStored.Inc()
}

// Broadcast counts an outbound packet.
func (m *Metrics) Broadcast(kind domain.PacketKind) {
	if m == nil {
		return
	}
	m.broadcasts.WithLabelValues(string(kind)).Inc()
}

// ResultFor maps an ingest error onto a result label.
func ResultFor(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, domain.ErrMalformedPacket):
		return ResultMalformed
	case errors.Is(err, domain.ErrTruncatedPacket):
		return ResultTruncated
	case errors.Is(err, domain.ErrRateLimited):
		return ResultRateLimited
	case errors.Is(err, domain.ErrRetryable):
		return ResultRetryable
	default:
		return ResultError
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is done.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	log.WithField("addr", addr).Info("metrics listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
