// Copyright (C) 2025, Nuru AI. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"fmt"
	"math/big"

	"github.com/nuru-ai/ckalgo-bridge/principal"
)

// Redeem burns amount from caller's balance and returns an opaque withdraw
// id; the actual FA payment is built and signed by an off-core broadcaster
// that calls the signer subsystem directly with owner.
func (b *Bridge) Redeem(caller principal.Principal, amount *big.Int, destination string) (WithdrawID, *Error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.redeemLocked(caller, caller, amount, destination)
}

// AdminRedeem burns on behalf of owner, driven by an off-core request
// queue. caller must be an authorised reporter.
func (b *Bridge) AdminRedeem(caller principal.Principal, owner principal.Principal, amount *big.Int, destination string) (WithdrawID, *Error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.isMinterLocked(caller) {
		return "", newErr(Unauthorized, "caller is not an authorised reporter")
	}
	return b.redeemLocked(caller, owner, amount, destination)
}

func (b *Bridge) redeemLocked(_ principal.Principal, owner principal.Principal, amount *big.Int, destination string) (WithdrawID, *Error) {
	balance := b.ledger.BalanceOf(owner)
	if balance.Cmp(amount) < 0 {
		return "", newErr(InsufficientFunds, "")
	}
	if !b.reserve.Healthy {
		return "", newErr(ReservesUnhealthy, "")
	}
	if b.reserve.LockedFaReserves.Cmp(amount) < 0 {
		return "", newErr(GenericError, "ReserveExhausted")
	}

	if !b.ledger.Debit(owner, amount) {
		return "", newErr(InsufficientFunds, "")
	}
	b.reserve.LockedFaReserves.Sub(b.reserve.LockedFaReserves, amount)

	b.nextWithdrawID++
	withdrawID := WithdrawID(fmt.Sprintf("wd-%d-%s-%s", b.nextWithdrawID, owner.Key(), destination))
	return withdrawID, nil
}

// AdminTransfer debits from and credits to without touching reserves or
// total supply. Reporter/controller only; used to settle service fees
// off-protocol.
func (b *Bridge) AdminTransfer(caller principal.Principal, from, to principal.Principal, amount *big.Int) *Error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.isMinterLocked(caller) {
		return newErr(Unauthorized, "caller is not an authorised reporter")
	}
	if err := b.ledger.AdminTransfer(from, to, amount); err != nil {
		return newErr(InsufficientFunds, "")
	}
	return nil
}
