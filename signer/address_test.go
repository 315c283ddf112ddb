// Copyright (C) 2025, Nuru AI. All rights reserved.
// See the file LICENSE for licensing terms.

package signer

import (
	"crypto/sha512"
	"testing"
)

func TestEncodeAddressLength(t *testing.T) {
	pk := make([]byte, PublicKeyLen)
	for i := range pk {
		pk[i] = byte(i)
	}
	addr, err := EncodeAddress(pk)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(addr) != AddressLen {
		t.Fatalf("address length = %d, want %d", len(addr), AddressLen)
	}
}

func TestEncodeAddressRejectsWrongLength(t *testing.T) {
	if _, err := EncodeAddress(make([]byte, 31)); err != ErrInvalidPublicKeyLen {
		t.Fatalf("expected ErrInvalidPublicKeyLen, got %v", err)
	}
}

// TestAddressRoundTrip checks that for any 32-byte public key, decoding
// the encoding recovers the key and the checksum matches SHA-512/256.
func TestAddressRoundTrip(t *testing.T) {
	cases := [][]byte{
		make([]byte, 32),
		bytesOf(0xFF),
		bytesOf(0x01),
		{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16,
			17, 18, 19, 20, 21, 22, 23, 24, 25, 26, 27, 28, 29, 30, 31, 32},
	}

	for _, pk := range cases {
		addr, err := EncodeAddress(pk)
		if err != nil {
			t.Fatalf("encode(%x): %v", pk, err)
		}
		if len(addr) != AddressLen {
			t.Fatalf("encode(%x) length = %d", pk, len(addr))
		}

		decodedPK, checksum, err := DecodeAddress(addr)
		if err != nil {
			t.Fatalf("decode(%s): %v", addr, err)
		}
		if string(decodedPK) != string(pk) {
			t.Fatalf("decoded public key mismatch: got %x want %x", decodedPK, pk)
		}

		sum := sha512.Sum512_256(pk)
		want := sum[28:32]
		if string(checksum) != string(want) {
			t.Fatalf("checksum mismatch: got %x want %x", checksum, want)
		}
	}
}

func TestDecodeAddressRejectsBadChecksum(t *testing.T) {
	pk := make([]byte, 32)
	addr, err := EncodeAddress(pk)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	// Flip the last character to corrupt the checksum.
	corrupted := []byte(addr)
	if corrupted[len(corrupted)-1] == 'A' {
		corrupted[len(corrupted)-1] = 'B'
	} else {
		corrupted[len(corrupted)-1] = 'A'
	}
	if _, _, err := DecodeAddress(string(corrupted)); err == nil {
		t.Fatal("expected checksum mismatch error")
	}
}

func bytesOf(b byte) []byte {
	out := make([]byte, 32)
	for i := range out {
		out[i] = b
	}
	return out
}
