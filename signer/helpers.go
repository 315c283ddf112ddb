// Copyright (C) 2025, Nuru AI. All rights reserved.
// See the file LICENSE for licensing terms.

package signer

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/nuru-ai/ckalgo-bridge/principal"
)

func sha256Sum(p principal.Principal) [32]byte {
	return sha256.Sum256([]byte(p))
}

// txIDHint gives the caller a deterministic, human-debuggable identifier for
// a freshly produced signature. The bridge never treats this as the FA
// transaction id — the broadcaster learns the real one once FA accepts the
// payment.
func txIDHint(payload, signature []byte) string {
	h := sha256.New()
	h.Write(payload)
	h.Write(signature)
	return hex.EncodeToString(h.Sum(nil))
}
