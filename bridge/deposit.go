// Copyright (C) 2025, Nuru AI. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"math/big"
	"time"

	"github.com/nuru-ai/ckalgo-bridge/principal"
)

// RegisterCustody binds address to owner. caller must be an authorised
// reporter; this is the only entry point through which a new custody
// binding can be created. An address already bound to a different owner is
// rejected as a security violation rather than silently re-pointed.
func (b *Bridge) RegisterCustody(caller principal.Principal, address string, owner principal.Principal) *Error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.isMinterLocked(caller) {
		return newErr(Unauthorized, "caller is not an authorised reporter")
	}
	if err := b.custody.Register(address, owner); err != nil {
		return newErr(SecurityViolation, err.Error())
	}
	return nil
}

// RegisterPendingDeposit opens a new deposit record keyed by faTxID. caller
// must be an authorised reporter. A
// fa_tx_id that already appears as a pending deposit or a completed record
// can never be re-registered. custodyAddress must already be bound via
// RegisterCustody; this operation never creates a binding.
func (b *Bridge) RegisterPendingDeposit(caller principal.Principal, owner principal.Principal, faTxID string, amount *big.Int, custodyAddress string, requiredConfirmations uint8) (string, *Error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.isMinterLocked(caller) {
		return "", newErr(Unauthorized, "caller is not an authorised reporter")
	}

	boundOwner, ok := b.custody.Lookup(custodyAddress)
	if !ok {
		return "", newErr(UnknownCustody, custodyAddress)
	}
	if !principal.Equal(boundOwner, owner) {
		return "", newErr(SecurityViolation, "custody address is bound to a different principal")
	}

	if _, exists := b.pending[faTxID]; exists {
		return "", newErr(Duplicate, faTxID)
	}
	if b.depositRecordExistsLocked(faTxID) {
		return "", newErr(Duplicate, faTxID)
	}

	if amount == nil || amount.Sign() <= 0 {
		return "", newErr(InvalidAmount, "amount must be positive")
	}
	if amount.Cmp(b.cfg.MinDeposit) < 0 {
		return "", newErr(InvalidAmount, "amount below MIN_DEPOSIT")
	}
	if amount.Cmp(b.cfg.MaxDeposit) > 0 {
		return "", newErr(InvalidAmount, "amount above MAX_DEPOSIT")
	}

	if len(b.pending) >= b.cfg.MaxPending {
		return "", newErr(LimitExceeded, "MAX_PENDING reached")
	}

	if requiredConfirmations != b.cfg.RequiredConfirmations {
		return "", newErr(InvalidConfirmations, "required_confirmations must match the deployment's fixed value")
	}

	b.pending[faTxID] = &PendingDeposit{
		Owner:                 owner,
		FaTxID:                faTxID,
		CustodyAddress:        custodyAddress,
		Amount:                new(big.Int).Set(amount),
		CreatedAt:             time.Now(),
		Confirmations:         0,
		RequiredConfirmations: requiredConfirmations,
	}

	return faTxID, nil
}

func (b *Bridge) depositRecordExistsLocked(faTxID string) bool {
	for _, r := range b.records {
		if r.FaTxID == faTxID {
			return true
		}
	}
	return false
}

// UpdateDepositConfirmations lifts the confirmation count for faTxID.
// Reporter/controller only. The reporter is authoritative: this does not
// enforce monotonicity beyond trusting the caller's count.
func (b *Bridge) UpdateDepositConfirmations(caller principal.Principal, faTxID string, confirmations uint8) (string, *Error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.isMinterLocked(caller) {
		return "", newErr(Unauthorized, "caller is not an authorised reporter")
	}

	dep, ok := b.pending[faTxID]
	if !ok {
		return "", newErr(NotFound, faTxID)
	}
	dep.Confirmations = confirmations
	return faTxID, nil
}

// MintAfterDepositConfirmed credits owner's balance once a pending deposit
// has reached its required confirmation count, then retires the pending
// record into an append-only DepositRecord.
//
// A duplicate call after a successful mint returns NotFound, not a distinct
// "already minted" error, because the pending record no longer exists by
// then — callers must treat a post-success NotFound as confirmation of the
// earlier success, not as a fresh failure.
func (b *Bridge) MintAfterDepositConfirmed(caller principal.Principal, faTxID string) (*big.Int, *Error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.isMinterLocked(caller) {
		return nil, newErr(Unauthorized, "caller is not an authorised reporter")
	}

	dep, ok := b.pending[faTxID]
	if !ok {
		return nil, newErr(NotFound, faTxID)
	}
	if dep.Confirmations < dep.RequiredConfirmations {
		return nil, newErr(NotYetConfirmed, faTxID)
	}
	if !b.reserve.Healthy {
		return nil, newErr(ReservesUnhealthy, "")
	}

	amount := new(big.Int).Set(dep.Amount)
	b.ledger.Credit(dep.Owner, amount)
	b.reserve.LockedFaReserves.Add(b.reserve.LockedFaReserves, amount)

	delete(b.pending, faTxID)
	b.nextDepositID++
	b.records = append(b.records, DepositRecord{
		DepositID:      b.nextDepositID,
		Owner:          dep.Owner,
		CustodyAddress: dep.CustodyAddress,
		Amount:         amount,
		FaTxID:         faTxID,
		ConfirmedAt:    time.Now(),
		MintedAmount:   amount,
	})

	return amount, nil
}
