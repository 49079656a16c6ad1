package types

import "time"

// Message is a public broadcast as decoded from the wire or loaded from storage.
//
// ID is zero until the message has been persisted. AuthoredDate is asserted by
// the sender; Sender.DateSeen is stamped by the receiver.
type Message struct {
	ID           MessageID `json:"id"`
	Sender       Identity  `json:"sender"`
	Body         string    `json:"body"`
	AuthoredDate time.Time `json:"authored_date"`
	Signature    Signature `json:"signature"`
}

// StoredMessage is a Message joined with the id of the Peer that sent it.
type StoredMessage struct {
	Message
	PeerID PeerID `json:"peer_id"`
}
