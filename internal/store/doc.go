// Package store provides file-based persistence for blechat's peers and
// messages.
//
// FileStore implements domain.Repository by serialising state as JSON under a
// home directory. Writes go through a temp file and rename so a crash never
// leaves a half-written file. The primary peer's private key is sealed with
// scrypt and ChaCha20-Poly1305 under the store passphrase; everything else is
// public and kept in the clear.
//
// Files:
//   - peers.json: every known peer, the primary one with its sealed key
//   - messages.json: received public messages, each referencing a peer id
//
// The Postgres implementation lives in the sqlstore subpackage.
package store
