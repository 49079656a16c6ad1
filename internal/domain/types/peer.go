package types

import "time"

// Peer is the persisted form of an Identity.
//
// PrivateKey is set only on the primary peer, the device's own identity.
type Peer struct {
	ID         PeerID      `json:"id"`
	Alias      string      `json:"alias"`
	PublicKey  PublicKey   `json:"public_key"`
	PrivateKey *PrivateKey `json:"private_key,omitempty"`
	DateSeen   time.Time   `json:"date_seen"`
}

// IsPrimary reports whether p holds the device's private key.
func (p Peer) IsPrimary() bool { return p.PrivateKey != nil }

// Identity returns the public view of p.
func (p Peer) Identity() Identity {
	return Identity{Alias: p.Alias, PublicKey: p.PublicKey, DateSeen: p.DateSeen}
}

// OwnedIdentity returns p with its private key, or false if p is not primary.
func (p Peer) OwnedIdentity() (OwnedIdentity, bool) {
	if p.PrivateKey == nil {
		return OwnedIdentity{}, false
	}
	return OwnedIdentity{Identity: p.Identity(), PrivateKey: *p.PrivateKey}, true
}

// PeerFromIdentity builds an unsaved, non-primary Peer.
func PeerFromIdentity(id Identity) Peer {
	return Peer{Alias: id.Alias, PublicKey: id.PublicKey, DateSeen: id.DateSeen}
}
