package identity

import (
	"context"

	"github.com/sirupsen/logrus"

	"blechat/internal/crypto"
	"blechat/internal/domain"
)

// Service manages the primary identity through a Repository.
type Service struct {
	repo domain.Repository
	log  logrus.FieldLogger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The default is the logrus standard logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) { s.log = l }
}

// New returns an identity service backed by repo.
func New(repo domain.Repository, opts ...Option) *Service {
	s := &Service{repo: repo, log: logrus.StandardLogger()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateNewIdentity generates a key pair for alias and stores it as the
// primary identity. It fails with ErrPrimaryIdentityExists on any run after
// the first.
func (s *Service) CreateNewIdentity(ctx context.Context, alias string) (domain.PeerID, error) {
	id, err := crypto.GenerateOwnedIdentity(alias)
	if err != nil {
		return 0, err
	}
	defer crypto.Wipe(id.PrivateKey[:])
	return s.storePrimary(ctx, id, "created")
}

// RestoreIdentity rebuilds the primary identity from a recovery phrase
// produced by ExportMnemonic.
func (s *Service) RestoreIdentity(ctx context.Context, alias, mnemonic string) (domain.PeerID, error) {
	id, err := crypto.OwnedIdentityFromMnemonic(alias, mnemonic)
	if err != nil {
		return 0, err
	}
	defer crypto.Wipe(id.PrivateKey[:])
	return s.storePrimary(ctx, id, "restored")
}

func (s *Service) storePrimary(ctx context.Context, id domain.OwnedIdentity, verb string) (domain.PeerID, error) {
	var peerID domain.PeerID
	err := s.repo.WithinTx(ctx, func(ctx context.Context, tx domain.Repository) error {
		_, exists, err := tx.FindPrimaryPeer(ctx)
		if err != nil {
			return err
		}
		if exists {
			return domain.ErrPrimaryIdentityExists
		}
		// Our own key may already be stored as an ordinary peer, heard
		// from another device before this one was restored.
		known, found, err := tx.FindPeerByPublicKey(ctx, id.PublicKey)
		if err != nil {
			return err
		}
		if found {
			peerID = known.ID
			return tx.PromotePeer(ctx, known.ID, id.Alias, id.PrivateKey)
		}
		peer := domain.PeerFromIdentity(id.Identity)
		priv := id.PrivateKey
		peer.PrivateKey = &priv
		peerID, err = tx.InsertPeer(ctx, peer)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.log.WithFields(logrus.Fields{
		"peer_id":     peerID,
		"alias":       id.Alias,
		"fingerprint": crypto.Fingerprint(id.PublicKey[:]),
	}).Infof("primary identity %s", verb)
	return peerID, nil
}

// GetPrimaryIdentity returns the primary peer. ok is false on first run.
func (s *Service) GetPrimaryIdentity(ctx context.Context) (domain.Peer, bool, error) {
	return s.repo.FindPrimaryPeer(ctx)
}

// OwnedIdentity returns the primary identity with its private key, or
// ErrNoPrimaryIdentity before one has been created.
func (s *Service) OwnedIdentity(ctx context.Context) (domain.OwnedIdentity, error) {
	p, _, err := s.repo.FindPrimaryPeer(ctx)
	if err != nil {
		return domain.OwnedIdentity{}, err
	}
	id, ok := p.OwnedIdentity()
	if !ok {
		return domain.OwnedIdentity{}, domain.ErrNoPrimaryIdentity
	}
	return id, nil
}

// ExportMnemonic returns the recovery phrase for the primary identity.
func (s *Service) ExportMnemonic(ctx context.Context) (string, error) {
	id, err := s.OwnedIdentity(ctx)
	if err != nil {
		return "", err
	}
	return crypto.Mnemonic(id.PrivateKey)
}

// Fingerprint returns the short fingerprint of the primary public key.
func (s *Service) Fingerprint(ctx context.Context) (domain.Fingerprint, error) {
	p, ok, err := s.repo.FindPrimaryPeer(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", domain.ErrNoPrimaryIdentity
	}
	return crypto.Fingerprint(p.PublicKey[:]), nil
}

// Compile-time assertion that Service implements domain.IdentityService.
var _ domain.IdentityService = (*Service)(nil)
