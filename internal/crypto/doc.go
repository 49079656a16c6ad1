// Package crypto exposes the minimal primitives used by blechat.
//
// Contents
//
//   - Ed25519 key generation, signing and verification (GenerateEd25519,
//     Sign, Verify)
//   - Owned identity generation and restore from a seed or a BIP-39
//     mnemonic (GenerateOwnedIdentity, OwnedIdentityFromSeed,
//     OwnedIdentityFromMnemonic, Mnemonic)
//   - Best-effort memory wiping for sensitive byte slices (Wipe)
//   - Short public-key fingerprints for display/logging (Fingerprint)
//
// # Notes
//
// All functions return fixed-size array types defined in internal/domain to
// avoid accidental reallocations. Verify never panics: structurally invalid
// keys or signatures simply fail verification.
package crypto
