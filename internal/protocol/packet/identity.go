package packet

import "blechat/internal/domain"

// CreateIdentityResponse encodes id as an Identity Announce packet.
func CreateIdentityResponse(id domain.OwnedIdentity) ([]byte, error) {
	return defaultCodec.CreateIdentityResponse(id)
}

// ConsumeIdentityResponse decodes an Identity Announce packet.
func ConsumeIdentityResponse(b []byte) (domain.Identity, error) {
	return defaultCodec.ConsumeIdentityResponse(b)
}

// CreateIdentityResponse encodes id as an Identity Announce packet. It fails
// with ErrEncoding if the alias is out of bounds.
func (c Codec) CreateIdentityResponse(id domain.OwnedIdentity) ([]byte, error) {
	if err := checkOwned(id); err != nil {
		return nil, err
	}
	frame := make([]byte, IdentityFrameLength)
	putHeader(frame, TypeIdentity, c.now())
	copy(frame[offPublicKey:offAliasLen], id.PublicKey[:])
	putAlias(frame, id.Alias)
	sign(id.PrivateKey, frame, identitySigned)
	return frame, nil
}

// ConsumeIdentityResponse decodes an Identity Announce packet. DateSeen is
// the decode time; the timestamp in the frame is validated but not used.
func (c Codec) ConsumeIdentityResponse(b []byte) (domain.Identity, error) {
	if err := checkFrame(b, TypeIdentity, IdentityFrameLength); err != nil {
		return domain.Identity{}, err
	}
	if _, err := readTimestamp(b); err != nil {
		return domain.Identity{}, err
	}
	alias, err := readAlias(b)
	if err != nil {
		return domain.Identity{}, err
	}
	pub := readPublicKey(b)
	if _, err := verify(pub, b, identitySigned); err != nil {
		return domain.Identity{}, err
	}
	return domain.Identity{
		Alias:     alias,
		PublicKey: pub,
		DateSeen:  c.now(),
	}, nil
}
