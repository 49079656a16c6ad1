package store

import (
	"encoding/json"
	"time"

	"blechat/internal/domain"
)

// peerRecord is the on-disk form of a Peer. Only the primary peer carries a
// SealedKey.
type peerRecord struct {
	ID        domain.PeerID   `json:"id"`
	Alias     string          `json:"alias"`
	PublicKey []byte          `json:"public_key"`
	SealedKey json.RawMessage `json:"sealed_key,omitempty"`
	DateSeen  time.Time       `json:"date_seen"`
}

func (r peerRecord) primary() bool { return len(r.SealedKey) > 0 }

// messageRecord is the on-disk form of a received Message. The sender alias
// is kept as it was on the wire; the key is reached through PeerID.
type messageRecord struct {
	ID           domain.MessageID `json:"id"`
	PeerID       domain.PeerID    `json:"peer_id"`
	SenderAlias  string           `json:"sender_alias"`
	Body         string           `json:"body"`
	AuthoredDate time.Time        `json:"authored_date"`
	ReceivedDate time.Time        `json:"received_date"`
	Signature    []byte           `json:"signature"`
}

type peerTable struct {
	LastID domain.PeerID `json:"last_id"`
	Peers  []peerRecord  `json:"peers"`
}

type messageTable struct {
	LastID   domain.MessageID `json:"last_id"`
	Messages []messageRecord  `json:"messages"`
}

// state is one loaded snapshot of both tables.
type state struct {
	peers         peerTable
	messages      messageTable
	dirtyPeers    bool
	dirtyMessages bool
}

func (st *state) peerIndex(id domain.PeerID) int {
	for i, p := range st.peers.Peers {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// dropOrphans removes messages whose peer is gone. A crash between the two
// file writes of a cascading delete can leave such rows behind.
func (st *state) dropOrphans() {
	known := make(map[domain.PeerID]struct{}, len(st.peers.Peers))
	for _, p := range st.peers.Peers {
		known[p.ID] = struct{}{}
	}
	kept := st.messages.Messages[:0]
	for _, m := range st.messages.Messages {
		if _, ok := known[m.PeerID]; ok {
			kept = append(kept, m)
		}
	}
	if len(kept) != len(st.messages.Messages) {
		st.dirtyMessages = true
	}
	st.messages.Messages = kept
}
