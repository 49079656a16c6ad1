package crypto

import (
	"crypto/ed25519"
	"fmt"
	"time"

	"blechat/internal/domain"
	domaintypes "blechat/internal/domain/types"
)

// GenerateOwnedIdentity creates a fresh key pair bound to alias.
// DateSeen is set to the current time.
func GenerateOwnedIdentity(alias string) (domain.OwnedIdentity, error) {
	if err := domaintypes.ValidateAlias(alias); err != nil {
		return domain.OwnedIdentity{}, err
	}
	priv, pub, err := GenerateEd25519()
	if err != nil {
		return domain.OwnedIdentity{}, fmt.Errorf("generate ed25519: %w", err)
	}
	return ownedIdentity(alias, priv, pub), nil
}

// OwnedIdentityFromSeed rebuilds the identity whose Ed25519 seed is seed.
func OwnedIdentityFromSeed(alias string, seed []byte) (domain.OwnedIdentity, error) {
	if err := domaintypes.ValidateAlias(alias); err != nil {
		return domain.OwnedIdentity{}, err
	}
	if len(seed) != ed25519.SeedSize {
		return domain.OwnedIdentity{}, fmt.Errorf("seed: want %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	sk := ed25519.NewKeyFromSeed(seed)
	defer Wipe(sk)

	priv := domain.PrivateKey(sk)
	return ownedIdentity(alias, priv, PublicKeyOf(priv)), nil
}

func ownedIdentity(alias string, priv domain.PrivateKey, pub domain.PublicKey) domain.OwnedIdentity {
	return domain.OwnedIdentity{
		Identity: domain.Identity{
			Alias:     alias,
			PublicKey: pub,
			DateSeen:  time.Now().UTC(),
		},
		PrivateKey: priv,
	}
}
