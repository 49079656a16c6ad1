package packet

import (
	"bytes"
	"encoding/binary"
	"time"
	"unicode/utf8"

	"blechat/internal/crypto"
	"blechat/internal/domain"
	domaintypes "blechat/internal/domain/types"
)

// Codec encodes and decodes packets against a clock. The zero value uses
// time.Now.
type Codec struct {
	Now func() time.Time
}

var defaultCodec Codec

func (c Codec) now() time.Time {
	if c.Now != nil {
		return c.Now().UTC()
	}
	return time.Now().UTC()
}

// PeekType validates the frame header and returns the frame type.
func PeekType(b []byte) (Type, error) {
	if len(b) < headerLength {
		return 0, truncated(Type(0), len(b), headerLength)
	}
	if b[offVersion] != SchemaVersion {
		return 0, malformed("unsupported schema version %d", b[offVersion])
	}
	switch t := Type(b[offType]); t {
	case TypeIdentity, TypeMessage:
		return t, nil
	default:
		return 0, malformed("unknown packet %s", t)
	}
}

// checkFrame validates length, version and type of a fixed-size frame.
func checkFrame(b []byte, want Type, size int) error {
	if len(b) < size {
		return truncated(want, len(b), size)
	}
	if b[offVersion] != SchemaVersion {
		return malformed("unsupported schema version %d", b[offVersion])
	}
	if got := Type(b[offType]); got != want {
		return malformed("expected %s packet, got %s", want, got)
	}
	if len(b) > size {
		return malformed("%d trailing bytes after %s packet", len(b)-size, want)
	}
	return nil
}

func putHeader(b []byte, t Type, ts time.Time) {
	b[offVersion] = SchemaVersion
	b[offType] = byte(t)
	binary.BigEndian.PutUint64(b[offTimestamp:offPublicKey], uint64(ts.UnixMilli()))
}

func readTimestamp(b []byte) (time.Time, error) {
	ms := int64(binary.BigEndian.Uint64(b[offTimestamp:offPublicKey]))
	if ms <= 0 || ms > maxTimestamp {
		return time.Time{}, malformed("timestamp %d out of range", ms)
	}
	return time.UnixMilli(ms).UTC(), nil
}

func putAlias(b []byte, alias string) {
	b[offAliasLen] = byte(len(alias))
	copy(b[offAlias:offAliasEnd], alias)
}

func readAlias(b []byte) (string, error) {
	n := int(b[offAliasLen])
	if n == 0 || n > domaintypes.AliasLength {
		return "", malformed("alias length %d", n)
	}
	field := b[offAlias:offAliasEnd]
	if !allZero(field[n:]) {
		return "", malformed("alias padding is not zero")
	}
	alias := string(field[:n])
	if err := domaintypes.ValidateAlias(alias); err != nil {
		return "", malformedCause("alias", err)
	}
	return alias, nil
}

func readPublicKey(b []byte) domain.PublicKey {
	return domaintypes.MustPublicKey(b[offPublicKey:offAliasLen])
}

func readBody(b []byte) (string, error) {
	n := int(binary.BigEndian.Uint16(b[offBodyLen:offBody]))
	if n > domaintypes.MessageBodyLength {
		return "", malformed("body length %d", n)
	}
	field := b[offBody:offBodyEnd]
	if !allZero(field[n:]) {
		return "", malformed("body padding is not zero")
	}
	body := field[:n]
	if !utf8.Valid(body) || bytes.IndexByte(body, 0) >= 0 {
		return "", malformed("body is not valid text")
	}
	return string(body), nil
}

func sign(priv domain.PrivateKey, frame []byte, signedLen int) {
	sig := crypto.Sign(priv, frame[:signedLen])
	copy(frame[signedLen:], sig[:])
}

func verify(pub domain.PublicKey, frame []byte, signedLen int) (domain.Signature, error) {
	var sig domain.Signature
	copy(sig[:], frame[signedLen:])
	if !crypto.Verify(pub[:], frame[:signedLen], sig[:]) {
		return sig, malformed("signature does not verify")
	}
	return sig, nil
}

// checkOwned rejects identities whose private key does not belong to the
// public key, which would produce frames nobody can verify.
func checkOwned(id domain.OwnedIdentity) error {
	if err := domaintypes.ValidateAlias(id.Alias); err != nil {
		return encoding("alias", err)
	}
	if crypto.PublicKeyOf(id.PrivateKey) != id.PublicKey {
		return encoding("identity", domaintypes.New(domaintypes.CodeEncoding, "private key does not match public key"))
	}
	return nil
}

func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}
