// Package identity creates, restores and loads the device's primary identity.
//
// The primary identity is the single Peer that holds a private key. It is
// created once, on first run, and never replaced.
package identity
