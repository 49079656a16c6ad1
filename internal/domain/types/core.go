package types

import "strconv"

// PeerID is the storage-assigned surrogate key of a Peer.
type PeerID int64

// String returns the decimal form of the id.
func (id PeerID) String() string { return strconv.FormatInt(int64(id), 10) }

// MessageID is the storage-assigned surrogate key of a Message.
type MessageID int64

// String returns the decimal form of the id.
func (id MessageID) String() string { return strconv.FormatInt(int64(id), 10) }

// Fingerprint is a short identifier for public keys presented to users.
type Fingerprint string

// String returns the string form of the fingerprint.
func (f Fingerprint) String() string { return string(f) }
