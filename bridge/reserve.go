// Copyright (C) 2025, Nuru AI. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"math/big"
	"time"

	"github.com/nuru-ai/ckalgo-bridge/principal"
)

// ReserveStatus reports the current backing ratio. Healthy is an off-core
// signal: an external reconciliation job computes whether on-FA balances
// match LockedFaReserves and posts the result via SetHealth.
func (b *Bridge) ReserveStatus() ReserveStatus {
	b.mu.RLock()
	defer b.mu.RUnlock()

	supply := b.ledger.TotalSupply()
	ratio := 1.0
	if supply.Sign() > 0 {
		lockedF := new(big.Float).SetInt(b.reserve.LockedFaReserves)
		supplyF := new(big.Float).SetInt(supply)
		ratioF, _ := new(big.Float).Quo(lockedF, supplyF).Float64()
		ratio = ratioF
	}

	return ReserveStatus{
		LockedFaReserves: new(big.Int).Set(b.reserve.LockedFaReserves),
		TotalSupply:      supply,
		Ratio:            ratio,
		Healthy:          b.reserve.Healthy,
		LastChecked:      b.reserve.LastChecked,
	}
}

// SetHealth toggles the health flag. While unhealthy, mint and redeem are
// rejected; transfers remain permitted. Reporter/controller only.
func (b *Bridge) SetHealth(caller principal.Principal, healthy bool) *Error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.isMinterLocked(caller) {
		return newErr(Unauthorized, "caller is not an authorised reporter")
	}
	b.reserve.Healthy = healthy
	b.reserve.LastChecked = time.Now()
	return nil
}
