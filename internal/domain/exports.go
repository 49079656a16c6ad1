package domain

import (
	interfaces "blechat/internal/domain/interfaces"
	types "blechat/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	PeerID        = types.PeerID
	MessageID     = types.MessageID
	Fingerprint   = types.Fingerprint
	PublicKey     = types.PublicKey
	PrivateKey    = types.PrivateKey
	Signature     = types.Signature
	Identity      = types.Identity
	OwnedIdentity = types.OwnedIdentity
	Peer          = types.Peer
	Message       = types.Message
	StoredMessage = types.StoredMessage
	Error         = types.Error
	ErrorCode     = types.Code
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	Repository       = interfaces.Repository
	IdentityService  = interfaces.IdentityService
	IngestionService = interfaces.IngestionService
	BroadcastService = interfaces.BroadcastService
	Transport        = interfaces.Transport
	PacketKind       = interfaces.PacketKind
)

const (
	PacketKindIdentity = interfaces.PacketKindIdentity
	PacketKindMessage  = interfaces.PacketKindMessage

	AliasLength       = types.AliasLength
	MessageBodyLength = types.MessageBodyLength
	PublicKeyLength   = types.PublicKeyLength
	PrivateKeyLength  = types.PrivateKeyLength
	SignatureLength   = types.SignatureLength
)

// Error sentinels, compared with errors.Is.
var (
	ErrInvalidAlias          = types.ErrInvalidAlias
	ErrEncoding              = types.ErrEncoding
	ErrMalformedPacket       = types.ErrMalformedPacket
	ErrTruncatedPacket       = types.ErrTruncatedPacket
	ErrPrimaryIdentityExists = types.ErrPrimaryIdentityExists
	ErrNoPrimaryIdentity     = types.ErrNoPrimaryIdentity
	ErrStorage               = types.ErrStorage
	ErrRetryable             = types.ErrRetryable
	ErrRateLimited           = types.ErrRateLimited
)

// PeerFromIdentity builds an unsaved, non-primary Peer.
var PeerFromIdentity = types.PeerFromIdentity
