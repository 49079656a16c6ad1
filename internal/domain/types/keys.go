package types

import "fmt"

// Fixed key and signature sizes for Ed25519 as carried on the wire.
const (
	PublicKeyLength  = 32
	PrivateKeyLength = 64
	SignatureLength  = 64
)

// PublicKey is an Ed25519 public key.
type PublicKey [PublicKeyLength]byte

// Slice returns the key as a []byte.
func (k PublicKey) Slice() []byte { return k[:] }

// IsZero reports whether the key is all zeros.
func (k PublicKey) IsZero() bool { return k == PublicKey{} }

// PrivateKey is an Ed25519 private key in seed||public layout.
type PrivateKey [PrivateKeyLength]byte

// Slice returns the key as a []byte.
func (k PrivateKey) Slice() []byte { return k[:] }

// Seed returns the 32-byte seed half of the key.
func (k PrivateKey) Seed() []byte { return k[:32] }

// Signature is a detached Ed25519 signature.
type Signature [SignatureLength]byte

// Slice returns the signature as a []byte.
func (s Signature) Slice() []byte { return s[:] }

// IsZero reports whether no signature is present.
func (s Signature) IsZero() bool { return s == Signature{} }

// PublicKeyFromBytes copies b into a PublicKey.
func PublicKeyFromBytes(b []byte) (PublicKey, error) {
	var out PublicKey
	if len(b) != PublicKeyLength {
		return out, fmt.Errorf("public key: want %d bytes, got %d", PublicKeyLength, len(b))
	}
	copy(out[:], b)
	return out, nil
}

// PrivateKeyFromBytes copies b into a PrivateKey.
func PrivateKeyFromBytes(b []byte) (PrivateKey, error) {
	var out PrivateKey
	if len(b) != PrivateKeyLength {
		return out, fmt.Errorf("private key: want %d bytes, got %d", PrivateKeyLength, len(b))
	}
	copy(out[:], b)
	return out, nil
}

// MustPublicKey is PublicKeyFromBytes for inputs whose length is already known to be right.
func MustPublicKey(b []byte) PublicKey {
	k, err := PublicKeyFromBytes(b)
	if err != nil {
		panic(err)
	}
	return k
}

// MustPrivateKey is PrivateKeyFromBytes for inputs whose length is already known to be right.
func MustPrivateKey(b []byte) PrivateKey {
	k, err := PrivateKeyFromBytes(b)
	if err != nil {
		panic(err)
	}
	return k
}
