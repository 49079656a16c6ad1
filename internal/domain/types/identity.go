package types

import "time"

// Identity is a remote party as currently known.
type Identity struct {
	Alias     string    `json:"alias"`
	PublicKey PublicKey `json:"public_key"`
	DateSeen  time.Time `json:"date_seen"`
}

// Validate checks the alias bound.
func (i Identity) Validate() error { return ValidateAlias(i.Alias) }

// OwnedIdentity is the local device's identity including its private key.
// The private key never leaves the device.
type OwnedIdentity struct {
	Identity
	PrivateKey PrivateKey `json:"-"`
}
