package crypto

import (
	"github.com/mr-tron/base58/base58"
	"golang.org/x/crypto/blake2b"

	"blechat/internal/domain"
)

const fingerprintPrefix = "bm1"

// Fingerprint returns a short base58 fingerprint of a public key.
//
// It hashes with BLAKE2b-256 and keeps the first 10 bytes.
func Fingerprint(pub []byte) domain.Fingerprint {
	sum := blake2b.Sum256(pub)
	return domain.Fingerprint(fingerprintPrefix + base58.Encode(sum[:10]))
}
