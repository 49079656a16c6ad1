package packet

import (
	"fmt"
	"time"

	"blechat/internal/domain"
	domaintypes "blechat/internal/domain/types"
)

// SchemaVersion is the only frame version this package reads or writes.
const SchemaVersion byte = 0x01

// Type identifies the frame family in byte 1 of every packet.
type Type byte

const (
	TypeIdentity Type = 0x01
	TypeMessage  Type = 0x02
)

func (t Type) String() string {
	switch t {
	case TypeIdentity:
		return "identity"
	case TypeMessage:
		return "message"
	default:
		return fmt.Sprintf("type(0x%02x)", byte(t))
	}
}

// Kind maps t onto the transport-level packet kind.
func (t Type) Kind() domain.PacketKind {
	if t == TypeMessage {
		return domain.PacketKindMessage
	}
	return domain.PacketKindIdentity
}

const (
	offVersion   = 0
	offType      = 1
	offTimestamp = 2
	offPublicKey = offTimestamp + 8
	offAliasLen  = offPublicKey + domaintypes.PublicKeyLength
	offAlias     = offAliasLen + 1
	offAliasEnd  = offAlias + domaintypes.AliasLength

	headerLength = 2

	identitySigned = offAliasEnd
	// IdentityFrameLength is the exact size of an Identity Announce packet.
	IdentityFrameLength = identitySigned + domaintypes.SignatureLength

	offBodyLen    = offAliasEnd
	offBody       = offBodyLen + 2
	offBodyEnd    = offBody + domaintypes.MessageBodyLength
	messageSigned = offBodyEnd
	// MessageFrameLength is the exact size of a Public Message packet.
	MessageFrameLength = messageSigned + domaintypes.SignatureLength
)

// Accepted timestamp range: after the epoch and no later than 9999-12-31.
var maxTimestamp = time.Date(9999, time.December, 31, 23, 59, 59, 999e6, time.UTC).UnixMilli()
