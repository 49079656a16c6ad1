package interfaces

import (
	"context"

	domaintypes "blechat/internal/domain/types"
)

// IdentityService creates and retrieves the device's primary identity.
type IdentityService interface {
	CreateNewIdentity(ctx context.Context, alias string) (domaintypes.PeerID, error)
	RestoreIdentity(ctx context.Context, alias, mnemonic string) (domaintypes.PeerID, error)
	GetPrimaryIdentity(ctx context.Context) (domaintypes.Peer, bool, error)
	OwnedIdentity(ctx context.Context) (domaintypes.OwnedIdentity, error)
	ExportMnemonic(ctx context.Context) (string, error)
}

// IngestionService turns received packets into stored peers and messages.
type IngestionService interface {
	ConsumeReceivedIdentity(ctx context.Context, packet []byte) (domaintypes.Peer, error)
	ConsumeReceivedBroadcastMessage(ctx context.Context, packet []byte) (domaintypes.Message, error)
}

// BroadcastService builds outbound packets for the primary identity.
type BroadcastService interface {
	IdentityAnnouncement(ctx context.Context) ([]byte, error)
	PublicMessage(ctx context.Context, body string) ([]byte, error)
	Announce(ctx context.Context) error
	Post(ctx context.Context, body string) error
}
