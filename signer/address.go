// Copyright (C) 2025, Nuru AI. All rights reserved.
// See the file LICENSE for licensing terms.

package signer

import (
	"crypto/sha512"
	"encoding/base32"
	"errors"
)

// addressEncoding is RFC 4648's base32 alphabet (A-Z, 2-7) with no padding,
// streamed 5 bits at a time MSB-first. This happens to be exactly Go's
// standard base32 alphabet, so no custom table is needed — only the padding
// policy differs from the default.
var addressEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// PublicKeyLen is the size in bytes of an FA (Algorand-style) Ed25519
// public key.
const PublicKeyLen = 32

// AddressLen is the fixed length of an encoded FA custody address. 36 bytes
// (32-byte public key + 4-byte checksum) always base32-encodes to exactly
// this many characters.
const AddressLen = 58

// ErrInvalidPublicKeyLen is returned when EncodeAddress is given anything
// other than a 32-byte public key.
var ErrInvalidPublicKeyLen = errors.New("public key must be exactly 32 bytes")

// EncodeAddress implements the FA compatibility contract bit-for-bit:
//  1. checksum = SHA-512/256(public_key)[28:32]
//  2. payload = public_key || checksum (36 bytes)
//  3. base32-encode, no padding, MSB-first, flush remaining bits
//
// The result is always exactly AddressLen characters.
func EncodeAddress(publicKey []byte) (string, error) {
	if len(publicKey) != PublicKeyLen {
		return "", ErrInvalidPublicKeyLen
	}
	sum := sha512.Sum512_256(publicKey)
	checksum := sum[28:32]

	payload := make([]byte, 0, PublicKeyLen+len(checksum))
	payload = append(payload, publicKey...)
	payload = append(payload, checksum...)

	encoded := addressEncoding.EncodeToString(payload)
	if len(encoded) != AddressLen {
		// 36 bytes always yields 58 base32 characters; the encoder is wrong
		// if this ever fires.
		return "", errors.New("address encoder produced unexpected length")
	}
	return encoded, nil
}

// DecodeAddress recovers the public key and embedded checksum from an
// encoded address, verifying the checksum matches SHA-512/256(public_key).
// Used by the round-trip tests. The bridge's custody registration does not
// call it: RegisterCustody accepts the address string as given.
func DecodeAddress(address string) (publicKey []byte, checksum []byte, err error) {
	if len(address) != AddressLen {
		return nil, nil, errors.New("invalid address length")
	}
	decoded, err := addressEncoding.DecodeString(address)
	if err != nil {
		return nil, nil, err
	}
	if len(decoded) != PublicKeyLen+4 {
		return nil, nil, errors.New("decoded address has unexpected length")
	}
	pk := decoded[:PublicKeyLen]
	sum := sha512.Sum512_256(pk)
	wantChecksum := sum[28:32]
	gotChecksum := decoded[PublicKeyLen:]
	for i := range wantChecksum {
		if wantChecksum[i] != gotChecksum[i] {
			return nil, nil, errors.New("checksum mismatch")
		}
	}
	return pk, gotChecksum, nil
}
