// Copyright (C) 2025, Nuru AI. All rights reserved.
// See the file LICENSE for licensing terms.

// Package principal models the opaque caller identity used throughout the
// bridge. A Principal is serialisable bytes on the host platform; this
// package only gives it a comparable map key and a debug string.
package principal

import "encoding/hex"

// Principal is an opaque caller identity on the host platform (HP).
type Principal []byte

// Key returns a value usable as a Go map key for this principal.
func (p Principal) Key() string {
	return hex.EncodeToString(p)
}

// String renders the principal for logs and error messages.
func (p Principal) String() string {
	return hex.EncodeToString(p)
}

// FromKey reconstructs a Principal from a value previously produced by Key.
func FromKey(key string) (Principal, error) {
	b, err := hex.DecodeString(key)
	if err != nil {
		return nil, err
	}
	return Principal(b), nil
}

// Equal reports whether two principals refer to the same identity.
func Equal(a, b Principal) bool {
	return a.Key() == b.Key()
}
