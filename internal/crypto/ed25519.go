package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"io"

	"filippo.io/edwards25519"
	"github.com/sirupsen/logrus"

	"blechat/internal/domain"
)

// GenerateEd25519 returns a new Ed25519 signing key pair.
func GenerateEd25519() (priv domain.PrivateKey, pub domain.PublicKey, err error) {
	return generateEd25519(rand.Reader)
}

func generateEd25519(r io.Reader) (priv domain.PrivateKey, pub domain.PublicKey, err error) {
	pk, sk, err := ed25519.GenerateKey(r)
	if err != nil {
		return priv, pub, err
	}
	copy(priv[:], sk)
	copy(pub[:], pk)
	Wipe(sk)
	return priv, pub, nil
}

// Sign signs msg with priv and returns the signature.
func Sign(priv domain.PrivateKey, msg []byte) domain.Signature {
	var sig domain.Signature
	copy(sig[:], ed25519.Sign(ed25519.PrivateKey(priv[:]), msg))
	return sig
}

// Verify verifies sig over msg with pub. Wrong-sized input returns false, as
// does a public key or signature R of small order: with those a signature can
// be produced without knowing any private key.
func Verify(pub []byte, msg, sig []byte) bool {
	if len(pub) != ed25519.PublicKeySize {
		logrus.Debugf("verify: public key is %d bytes, want %d", len(pub), ed25519.PublicKeySize)
		return false
	}
	if len(sig) != ed25519.SignatureSize {
		logrus.Debugf("verify: signature is %d bytes, want %d", len(sig), ed25519.SignatureSize)
		return false
	}
	if IsWeakPoint(pub) {
		logrus.Debugf("verify: public key %x has small order", pub)
		return false
	}
	if IsWeakPoint(sig[:32]) {
		logrus.Debugf("verify: signature R has small order for %s", Fingerprint(pub))
		return false
	}
	if !ed25519.Verify(ed25519.PublicKey(pub), msg, sig) {
		logrus.Debugf("verify: signature mismatch for %s", Fingerprint(pub))
		return false
	}
	return true
}

// IsWeakPoint reports whether b does not decode to a curve point or decodes
// to one of the eight points of small order. Non-canonical encodings of those
// points are caught too, since the check multiplies by the cofactor.
func IsWeakPoint(b []byte) bool {
	p, err := new(edwards25519.Point).SetBytes(b)
	if err != nil {
		return true
	}
	return new(edwards25519.Point).MultByCofactor(p).Equal(edwards25519.NewIdentityPoint()) == 1
}

// PublicKeyOf derives the public half of priv.
func PublicKeyOf(priv domain.PrivateKey) domain.PublicKey {
	var pub domain.PublicKey
	copy(pub[:], priv[32:])
	return pub
}
