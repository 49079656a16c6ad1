// Package broadcast encodes the primary identity's outgoing packets and hands
// them to a Transport.
package broadcast
