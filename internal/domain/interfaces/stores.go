package interfaces

//go:generate mockgen -destination=../mocks/mock_repository.go -package=mocks blechat/internal/domain/interfaces Repository
//go:generate mockgen -destination=../mocks/mock_transport.go -package=mocks blechat/internal/domain/interfaces Transport

import (
	"context"
	"time"

	domaintypes "blechat/internal/domain/types"
)

// Repository is durable storage for peers and messages.
//
// Every method returns an error matching types.ErrStorage when the backing
// store fails.
type Repository interface {
	FindPeerByPublicKey(ctx context.Context, key domaintypes.PublicKey) (domaintypes.Peer, bool, error)
	// FindPrimaryPeer returns the single peer that holds a private key.
	FindPrimaryPeer(ctx context.Context) (domaintypes.Peer, bool, error)
	InsertPeer(ctx context.Context, peer domaintypes.Peer) (domaintypes.PeerID, error)
	// PromotePeer turns a known non-primary peer into the primary one by
	// attaching its private key. It fails if a primary peer already exists.
	PromotePeer(ctx context.Context, id domaintypes.PeerID, alias string, key domaintypes.PrivateKey) error
	UpdatePeerSeenDate(ctx context.Context, id domaintypes.PeerID, seen time.Time) error
	InsertMessage(
		ctx context.Context,
		msg domaintypes.Message,
		peerID domaintypes.PeerID,
	) (domaintypes.MessageID, error)

	// Maintenance. Deleting a peer also deletes its messages.
	DeletePeers(ctx context.Context, ids ...domaintypes.PeerID) (int, error)
	DeleteMessages(ctx context.Context, ids ...domaintypes.MessageID) (int, error)

	// Read views.
	ListPeers(ctx context.Context) ([]domaintypes.Peer, error)
	ListMessages(ctx context.Context, limit int) ([]domaintypes.StoredMessage, error)

	// WithinTx runs fn against a transactional view of the repository. The
	// view is released when fn returns; a non-nil error rolls back.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Repository) error) error
}
