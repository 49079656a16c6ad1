package packet

import (
	"encoding/binary"

	"blechat/internal/domain"
	domaintypes "blechat/internal/domain/types"
)

// CreatePublicMessageResponse encodes body from sender as a Public Message packet.
func CreatePublicMessageResponse(sender domain.OwnedIdentity, body string) ([]byte, error) {
	return defaultCodec.CreatePublicMessageResponse(sender, body)
}

// ConsumeMessageResponse decodes a Public Message packet.
func ConsumeMessageResponse(b []byte) (domain.Message, error) {
	return defaultCodec.ConsumeMessageResponse(b)
}

// CreatePublicMessageResponse encodes body from sender, authored now. It fails
// with ErrEncoding if the body or alias is out of bounds.
func (c Codec) CreatePublicMessageResponse(sender domain.OwnedIdentity, body string) ([]byte, error) {
	if err := checkOwned(sender); err != nil {
		return nil, err
	}
	if err := domaintypes.ValidateBody(body); err != nil {
		return nil, encoding("body", err)
	}
	frame := make([]byte, MessageFrameLength)
	putHeader(frame, TypeMessage, c.now())
	copy(frame[offPublicKey:offAliasLen], sender.PublicKey[:])
	putAlias(frame, sender.Alias)
	binary.BigEndian.PutUint16(frame[offBodyLen:offBody], uint16(len(body)))
	copy(frame[offBody:offBodyEnd], body)
	sign(sender.PrivateKey, frame, messageSigned)
	return frame, nil
}

// ConsumeMessageResponse decodes a Public Message packet. AuthoredDate comes
// from the frame; Sender.DateSeen is the decode time.
func (c Codec) ConsumeMessageResponse(b []byte) (domain.Message, error) {
	if err := checkFrame(b, TypeMessage, MessageFrameLength); err != nil {
		return domain.Message{}, err
	}
	authored, err := readTimestamp(b)
	if err != nil {
		return domain.Message{}, err
	}
	alias, err := readAlias(b)
	if err != nil {
		return domain.Message{}, malformedCause("sender", err)
	}
	body, err := readBody(b)
	if err != nil {
		return domain.Message{}, err
	}
	pub := readPublicKey(b)
	sig, err := verify(pub, b, messageSigned)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		Sender: domain.Identity{
			Alias:     alias,
			PublicKey: pub,
			DateSeen:  c.now(),
		},
		Body:         body,
		AuthoredDate: authored,
		Signature:    sig,
	}, nil
}
