// Package broadcast builds outbound packets for the primary identity and
// hands them to a transport.
package broadcast

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"blechat/internal/crypto"
	"blechat/internal/domain"
	"blechat/internal/metrics"
	"blechat/internal/protocol/packet"
)

// ErrNoTransport is returned by Announce and Post when no transport is configured.
var ErrNoTransport = errors.New("no transport configured")

// OwnedIdentitySource yields the identity packets are signed with.
type OwnedIdentitySource interface {
	OwnedIdentity(ctx context.Context) (domain.OwnedIdentity, error)
}

// Service encodes packets for the primary identity.
type Service struct {
	identities OwnedIdentitySource
	transport  domain.Transport
	codec      packet.Codec
	metrics    *metrics.Metrics
	log        logrus.FieldLogger
}

// Option configures a Service.
type Option func(*Service)

// WithTransport sets where Announce and Post send packets.
func WithTransport(t domain.Transport) Option {
	return func(s *Service) { s.transport = t }
}

// WithMetrics counts broadcasts on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger. The default is the logrus standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) { s.log = l }
}

// WithClock replaces time.Now for packet timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.codec = packet.Codec{Now: now} }
}

// New returns a broadcast service signing with the identity from ids.
func New(ids OwnedIdentitySource, opts ...Option) *Service {
	s := &Service{identities: ids, log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IdentityAnnouncement encodes the primary identity as an Identity Announce packet.
func (s *Service) IdentityAnnouncement(ctx context.Context) ([]byte, error) {
	id, err := s.identities.OwnedIdentity(ctx)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(id.PrivateKey[:])
	return s.codec.CreateIdentityResponse(id)
}

// PublicMessage encodes body as a Public Message packet from the primary identity.
func (s *Service) PublicMessage(ctx context.Context, body string) ([]byte, error) {
	id, err := s.identities.OwnedIdentity(ctx)
	if err != nil {
		return nil, err
	}
	defer crypto.Wipe(id.PrivateKey[:])
	return s.codec.CreatePublicMessageResponse(id, body)
}

// Announce broadcasts the primary identity.
func (s *Service) Announce(ctx context.Context) error {
	if s.transport == nil {
		return ErrNoTransport
	}
	b, err := s.IdentityAnnouncement(ctx)
	if err != nil {
		return err
	}
	return s.send(ctx, domain.PacketKindIdentity, b)
}

// Post broadcasts body as a public message.
func (s *Service) Post(ctx context.Context, body string) error {
	if s.transport == nil {
		return ErrNoTransport
	}
	b, err := s.PublicMessage(ctx, body)
	if err != nil {
		return err
	}
	return s.send(ctx, domain.PacketKindMessage, b)
}

func (s *Service) send(ctx context.Context, kind domain.PacketKind, b []byte) error {
	if err := s.transport.Broadcast(ctx, kind, b); err != nil {
		s.log.WithError(err).WithField("kind", kind).Warn("broadcast failed")
		return err
	}
	s.metrics.Broadcast(kind)
	s.log.WithFields(logrus.Fields{"kind": kind, "bytes": len(b)}).Debug("broadcast sent")
	return nil
}

// Compile-time assertion that Service implements domain.BroadcastService.
var _ domain.BroadcastService = (*Service)(nil)
