// Package packet encodes and decodes the two blechat wire formats.
//
// Schema version 1. All integers are big-endian, timestamps are int64 Unix
// milliseconds and text fields are UTF-8 padded with NUL to their fixed width.
// Every frame ends with an Ed25519 signature by the embedded public key over
// all preceding bytes.
//
// Identity Announce (type 0x01), 142 bytes:
//
//	0    1   version
//	1    1   type
//	2    8   timestamp (sender clock, not trusted)
//	10   32  public key
//	42   1   alias length (1..35)
//	43   35  alias
//	78   64  signature over [0,78)
//
// Public Message (type 0x02), 284 bytes:
//
//	0    1   version
//	1    1   type
//	2    8   authored timestamp
//	10   32  sender public key
//	42   1   sender alias length (1..35)
//	43   35  sender alias
//	78   2   body length (0..140)
//	80   140 body
//	220  64  signature over [0,220)
//
// Decoding stamps every "seen" time with the receiver's clock. Only content
// the author asserts (alias, body, authored time) is taken from the frame.
//
// Encode and decode are pure functions of their input and the Codec clock,
// and are safe for concurrent use.
package packet
