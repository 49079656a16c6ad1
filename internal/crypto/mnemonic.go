package crypto

import (
	"errors"
	"strings"

	"github.com/tyler-smith/go-bip39"

	"blechat/internal/domain"
)

// ErrInvalidMnemonic is returned when a backup phrase fails the BIP-39 checksum.
var ErrInvalidMnemonic = errors.New("invalid mnemonic")

// Mnemonic encodes the seed half of priv as a 24-word BIP-39 phrase.
func Mnemonic(priv domain.PrivateKey) (string, error) {
	return bip39.NewMnemonic(priv.Seed())
}

// OwnedIdentityFromMnemonic restores the identity backed up with Mnemonic.
func OwnedIdentityFromMnemonic(alias, mnemonic string) (domain.OwnedIdentity, error) {
	mnemonic = strings.Join(strings.Fields(mnemonic), " ")
	if !bip39.IsMnemonicValid(mnemonic) {
		return domain.OwnedIdentity{}, ErrInvalidMnemonic
	}
	seed, err := bip39.EntropyFromMnemonic(mnemonic)
	if err != nil {
		return domain.OwnedIdentity{}, ErrInvalidMnemonic
	}
	defer Wipe(seed)
	return OwnedIdentityFromSeed(alias, seed)
}
