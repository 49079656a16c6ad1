package sqlstore

import (
	"time"

	"github.com/uptrace/bun"

	"blechat/internal/domain"
	domaintypes "blechat/internal/domain/types"
)

type peerModel struct {
	bun.BaseModel `bun:"table:peers,alias:p"`

	ID        int64  `bun:",pk,autoincrement"`
	Alias     string `bun:",notnull"`
	PublicKey []byte `bun:"type:bytea,unique,notnull"`
	// PrivateKey is set on the single primary row only.
	PrivateKey []byte    `bun:"type:bytea,nullzero"`
	DateSeen   time.Time `bun:",notnull"`
}

type messageModel struct {
	bun.BaseModel `bun:"table:messages,alias:m"`

	ID     int64      `bun:",pk,autoincrement"`
	PeerID int64      `bun:",notnull"`
	Peer   *peerModel `bun:"rel:belongs-to,join:peer_id=id"`

	SenderAlias  string    `bun:",notnull"`
	Body         string    `bun:",notnull"`
	AuthoredDate time.Time `bun:",notnull"`
	ReceivedDate time.Time `bun:",notnull"`
	Signature    []byte    `bun:"type:bytea,notnull"`
}

func peerToModel(p domain.Peer) *peerModel {
	m := &peerModel{
		Alias:     p.Alias,
		PublicKey: append([]byte(nil), p.PublicKey[:]...),
		DateSeen:  p.DateSeen.UTC(),
	}
	if p.PrivateKey != nil {
		m.PrivateKey = append([]byte(nil), p.PrivateKey[:]...)
	}
	return m
}

func (m *peerModel) toDomain() (domain.Peer, error) {
	pub, err := domaintypes.PublicKeyFromBytes(m.PublicKey)
	if err != nil {
		return domain.Peer{}, err
	}
	p := domain.Peer{
		ID:        domain.PeerID(m.ID),
		Alias:     m.Alias,
		PublicKey: pub,
		DateSeen:  m.DateSeen.UTC(),
	}
	if len(m.PrivateKey) > 0 {
		priv, err := domaintypes.PrivateKeyFromBytes(m.PrivateKey)
		if err != nil {
			return domain.Peer{}, err
		}
		p.PrivateKey = &priv
	}
	return p, nil
}

func messageToModel(msg domain.Message, peerID domain.PeerID) *messageModel {
	return &messageModel{
		PeerID:       int64(peerID),
		SenderAlias:  msg.Sender.Alias,
		Body:         msg.Body,
		AuthoredDate: msg.AuthoredDate.UTC(),
		ReceivedDate: msg.Sender.DateSeen.UTC(),
		Signature:    append([]byte(nil), msg.Signature[:]...),
	}
}

func (m *messageModel) toDomain() (domain.StoredMessage, error) {
	var pub domain.PublicKey
	if m.Peer != nil {
		k, err := domaintypes.PublicKeyFromBytes(m.Peer.PublicKey)
		if err != nil {
			return domain.StoredMessage{}, err
		}
		pub = k
	}
	var sig domain.Signature
	copy(sig[:], m.Signature)
	return domain.StoredMessage{
		Message: domain.Message{
			ID:           domain.MessageID(m.ID),
			Sender:       domain.Identity{Alias: m.SenderAlias, PublicKey: pub, DateSeen: m.ReceivedDate.UTC()},
			Body:         m.Body,
			AuthoredDate: m.AuthoredDate.UTC(),
			Signature:    sig,
		},
		PeerID: domain.PeerID(m.PeerID),
	}, nil
}
