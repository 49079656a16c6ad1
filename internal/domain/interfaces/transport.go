package interfaces

import "context"

// PacketKind names the two packet families a transport carries.
type PacketKind string

const (
	PacketKindIdentity PacketKind = "identity"
	PacketKindMessage  PacketKind = "message"
)

// Transport hands whole packets to nearby peers. It has no notion of
// connections or fragmentation from the caller's side.
type Transport interface {
	Broadcast(ctx context.Context, kind PacketKind, packet []byte) error
}
