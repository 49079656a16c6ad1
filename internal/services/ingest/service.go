package ingest

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"blechat/internal/crypto"
	"blechat/internal/domain"
	domaintypes "blechat/internal/domain/types"
	"blechat/internal/metrics"
	"blechat/internal/platform/keylock"
	"blechat/internal/platform/ratelimiter"
	"blechat/internal/protocol/packet"
)

// Service ingests identity and message packets into a Repository.
type Service struct {
	repo    domain.Repository
	codec   packet.Codec
	locks   *keylock.Map[domain.PublicKey]
	limiter *ratelimiter.SenderLimiter
	metrics *metrics.Metrics
	log     logrus.FieldLogger
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The default is the logrus standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) { s.log = l }
}

// WithLimiter rejects senders that exceed l with ErrRateLimited. A nil
// limiter disables the check.
func WithLimiter(l *ratelimiter.SenderLimiter) Option {
	return func(s *Service) { s.limiter = l }
}

// WithMetrics records every ingest attempt on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithClock replaces time.Now for stamping DateSeen and rate limiting.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
		s.codec = packet.Codec{Now: now}
	}
}

// New returns an ingestion service writing to repo.
func New(repo domain.Repository, opts ...Option) *Service {
	s := &Service{
		repo:  repo,
		locks: keylock.New[domain.PublicKey](),
		log:   logrus.StandardLogger(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ConsumeReceivedIdentity decodes an Identity Announce packet and resolves
// its sender: an existing peer gets its DateSeen refreshed, an unknown key
// becomes a new non-primary peer.
func (s *Service) ConsumeReceivedIdentity(ctx context.Context, b []byte) (domain.Peer, error) {
	start := time.Now()
	log := s.log.WithField("kind", domain.PacketKindIdentity)

	var peer domain.Peer
	id, err := s.codec.ConsumeIdentityResponse(b)
	if err == nil {
		log = log.WithField("fingerprint", crypto.Fingerprint(id.PublicKey[:]))
		err = s.admit(id.PublicKey)
	}
	if err == nil {
		var created bool
		err = s.withSender(ctx, id, func(_ context.Context, _ domain.Repository, p domain.Peer, isNew bool) error {
			peer, created = p, isNew
			return nil
		})
		if err == nil {
			log = log.WithFields(logrus.Fields{"peer_id": peer.ID, "created": created})
		}
	}

	s.finish(log, domain.PacketKindIdentity, err, start)
	if err != nil {
		return domain.Peer{}, err
	}
	return peer, nil
}

// ConsumeReceivedBroadcastMessage decodes a Public Message packet, resolves
// its sender the same way as ConsumeReceivedIdentity and stores the message.
// The returned Message carries its storage id.
func (s *Service) ConsumeReceivedBroadcastMessage(ctx context.Context, b []byte) (domain.Message, error) {
	start := time.Now()
	log := s.log.WithField("kind", domain.PacketKindMessage)

	msg, err := s.codec.ConsumeMessageResponse(b)
	if err == nil {
		log = log.WithField("fingerprint", crypto.Fingerprint(msg.Sender.PublicKey[:]))
		err = s.admit(msg.Sender.PublicKey)
	}
	if err == nil {
		var peerID domain.PeerID
		err = s.withSender(ctx, msg.Sender, func(ctx context.Context, tx domain.Repository, p domain.Peer, _ bool) error {
			id, err := tx.InsertMessage(ctx, msg, p.ID)
			if err != nil {
				return err
			}
			msg.ID, peerID = id, p.ID
			return nil
		})
		if err == nil {
			s.metrics.MessageStored()
			log = log.WithFields(logrus.Fields{"peer_id": peerID, "message_id": msg.ID})
		}
	}

	s.finish(log, domain.PacketKindMessage, err, start)
	if err != nil {
		return domain.Message{}, err
	}
	return msg, nil
}

// withSender resolves or creates the peer for id and runs fn with it inside
// one transaction. Work on the same public key is serialised so two
// concurrent packets cannot both insert the sender.
func (s *Service) withSender(
	ctx context.Context,
	id domain.Identity,
	fn func(ctx context.Context, tx domain.Repository, p domain.Peer, created bool) error,
) error {
	unlock := s.locks.Lock(id.PublicKey)
	defer unlock()

	created := false
	err := s.repo.WithinTx(ctx, func(ctx context.Context, tx domain.Repository) error {
		p, found, err := tx.FindPeerByPublicKey(ctx, id.PublicKey)
		if err != nil {
			return err
		}
		if found {
			if err := tx.UpdatePeerSeenDate(ctx, p.ID, id.DateSeen); err != nil {
				return err
			}
			p.DateSeen = id.DateSeen
		} else {
			p = domain.PeerFromIdentity(id)
			if p.ID, err = tx.InsertPeer(ctx, p); err != nil {
				return err
			}
			created = true
		}
		return fn(ctx, tx, p, created)
	})
	if err != nil {
		return retryable(err)
	}
	if created {
		s.metrics.PeerCreated()
	}
	return nil
}

func (s *Service) admit(key domain.PublicKey) error {
	if s.limiter.Allow(key, s.now()) {
		return nil
	}
	return domain.ErrRateLimited
}

// retryable marks failures caused by a caller deadline or cancellation so the
// caller can try the packet again.
func retryable(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domaintypes.Wrap(domaintypes.CodeRetryable, "ingest interrupted", err)
	}
	return err
}

func (s *Service) finish(log logrus.FieldLogger, kind domain.PacketKind, err error, start time.Time) {
	s.metrics.ObservePacket(kind, err, time.Since(start))
	switch {
	case err == nil:
		log.Debug("packet ingested")
	case errors.Is(err, domain.ErrMalformedPacket), errors.Is(err, domain.ErrTruncatedPacket),
		errors.Is(err, domain.ErrRateLimited):
		log.WithError(err).WithField("code", domaintypes.CodeOf(err)).Debug("packet rejected")
	default:
		log.WithError(err).WithField("code", domaintypes.CodeOf(err)).Warn("packet not stored")
	}
}

// Compile-time assertion that Service implements domain.IngestionService.
var _ domain.IngestionService = (*Service)(nil)
