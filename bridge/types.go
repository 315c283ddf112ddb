// Copyright (C) 2025, Nuru AI. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"math/big"
	"time"

	"github.com/nuru-ai/ckalgo-bridge/principal"
)

// PendingDeposit tracks an FA deposit between registration and mint. It is
// consumed (removed) the moment mint succeeds; a DepositRecord replaces it.
type PendingDeposit struct {
	Owner                 principal.Principal
	FaTxID                string
	CustodyAddress        string
	Amount                *big.Int
	CreatedAt             time.Time
	Confirmations         uint8
	RequiredConfirmations uint8
}

// DepositRecord is the immutable, append-only record of a completed mint.
type DepositRecord struct {
	DepositID      uint64
	Owner          principal.Principal
	CustodyAddress string
	Amount         *big.Int
	FaTxID         string
	ConfirmedAt    time.Time
	MintedAmount   *big.Int
}

// ReserveState tracks the two distinct backings of total supply.
type ReserveState struct {
	LockedFaReserves  *big.Int
	CkEthBackedSupply *big.Int
	TotalCeReceived   *big.Int
	Healthy           bool
	LastChecked       time.Time
}

// ReserveStatus is the read-only view returned to callers.
type ReserveStatus struct {
	LockedFaReserves *big.Int
	TotalSupply      *big.Int
	Ratio            float64
	Healthy          bool
	LastChecked      time.Time
}

// SwapRecord is the immutable, append-only record of a completed swap.
type SwapRecord struct {
	Owner        principal.Principal
	CeIn         *big.Int
	CaOut        uint64
	RateUsed     float64
	FeeCollected uint64
	Timestamp    time.Time
	RefID        string
}

// SwapConfig gates and bounds the swap engine.
type SwapConfig struct {
	Enabled bool
	FeeBps  uint64
	MinCe   *big.Int
	MaxCe   *big.Int
}

// MaxFeeBps is the ceiling set_swap_fee_bps enforces.
const MaxFeeBps = 500

// WithdrawID identifies a redeem request to the off-core broadcaster.
type WithdrawID string
