// Copyright (C) 2025, Nuru AI. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"context"
	"crypto/sha256"
	"math"
	"math/big"
	"time"

	"github.com/nuru-ai/ckalgo-bridge/principal"
)

// ce1e18 and ca1e6 are the fixed decimal scales of cE (18) and cA (6).
var (
	ce1e18 = new(big.Float).SetFloat64(1e18)
	ca1e6  = 1e6
)

// GetSwapCustodySubaccount derives the per-principal sub-account an agent
// deposits cE into ahead of calling SwapCkEthForCkAlgoDeposit: the full
// 32-byte SHA-256 of the agent's principal bytes.
func GetSwapCustodySubaccount(agent principal.Principal) [32]byte {
	return sha256.Sum256([]byte(agent))
}

func (b *Bridge) quoteLocked(ctx context.Context, ceIn *big.Int, minCaOut *uint64) (caOut uint64, fee uint64, rate float64, bridgeErr *Error) {
	if !b.swapCfg.Enabled {
		return 0, 0, 0, newErr(GenericError, "swap disabled")
	}
	if ceIn == nil || ceIn.Sign() <= 0 {
		return 0, 0, 0, newErr(InvalidAmount, "ce_in must be positive")
	}
	if ceIn.Cmp(b.swapCfg.MinCe) < 0 || ceIn.Cmp(b.swapCfg.MaxCe) > 0 {
		return 0, 0, 0, newErr(LimitExceeded, "ce_in out of swap bounds")
	}

	rate, err := b.oracle.Rate(ctx)
	if err != nil {
		return 0, 0, 0, newErr(OracleUnavailable, err.Error())
	}

	ceInF := new(big.Float).SetInt(ceIn)
	ceScaled, _ := new(big.Float).Quo(ceInF, ce1e18).Float64()
	caGross := ceScaled * rate * ca1e6

	feeF := caGross * float64(b.swapCfg.FeeBps) / 10000.0
	caOutF := math.Floor(caGross - feeF)
	if caOutF <= 0 {
		return 0, 0, 0, newErr(InvalidAmount, "computed ca_out is not positive")
	}
	if caOutF > math.MaxUint64 || feeF > math.MaxUint64 {
		return 0, 0, 0, newErr(GenericError, "quote exceeds representable range")
	}

	caOut = uint64(caOutF)
	fee = uint64(math.Floor(feeF))

	if minCaOut != nil && caOut < *minCaOut {
		return 0, 0, 0, newErr(SlippageExceeded, "")
	}
	return caOut, fee, rate, nil
}

// SwapCkEthToCkAlgo is Flow A: pull-based, via the user's prior ICRC-2
// allowance to the bridge. Reporter-authorised. No state mutates before the
// transfer_from call; if it fails, the operation aborts with no observable
// change.
func (b *Bridge) SwapCkEthToCkAlgo(ctx context.Context, caller principal.Principal, user principal.Principal, ceIn *big.Int, minCaOut *uint64) (uint64, *Error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.isMinterLocked(caller) {
		return 0, newErr(Unauthorized, "caller is not an authorised reporter")
	}

	caOut, fee, rate, qerr := b.quoteLocked(ctx, ceIn, minCaOut)
	if qerr != nil {
		return 0, qerr
	}

	if err := b.ceLedger.TransferFrom(user, b.cfg.Self, ceIn); err != nil {
		return 0, newErr(GenericError, err.Error())
	}

	b.creditSwapLocked(user, ceIn, caOut, fee, rate, "")
	return caOut, nil
}

// SwapCkEthForCkAlgoDeposit is Flow B: used by an autonomous agent that
// already transferred cE to its custody sub-account out-of-band. Reporter-
// authorised; the reporter has verified the deposit. The deposit tx id is
// inserted into the processed set before any credit, so a crash between
// insertion and credit leaves the deposit correctly marked processed rather
// than replayable.
func (b *Bridge) SwapCkEthForCkAlgoDeposit(ctx context.Context, caller principal.Principal, agent principal.Principal, ceIn *big.Int, ceDepositTxID string, minCaOut *uint64) (uint64, *Error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.isMinterLocked(caller) {
		return 0, newErr(Unauthorized, "caller is not an authorised reporter")
	}
	if _, seen := b.processedDeposit[ceDepositTxID]; seen {
		return 0, newErr(Duplicate, ceDepositTxID)
	}

	caOut, fee, rate, qerr := b.quoteLocked(ctx, ceIn, minCaOut)
	if qerr != nil {
		return 0, qerr
	}

	b.processedDeposit[ceDepositTxID] = struct{}{}
	b.creditSwapLocked(agent, ceIn, caOut, fee, rate, ceDepositTxID)
	return caOut, nil
}

func (b *Bridge) creditSwapLocked(owner principal.Principal, ceIn *big.Int, caOut, fee uint64, rate float64, refID string) {
	caOutAmount := new(big.Int).SetUint64(caOut)
	b.ledger.Credit(owner, caOutAmount)
	b.reserve.CkEthBackedSupply.Add(b.reserve.CkEthBackedSupply, caOutAmount)
	b.reserve.TotalCeReceived.Add(b.reserve.TotalCeReceived, ceIn)

	b.swapRecords = append(b.swapRecords, SwapRecord{
		Owner:        owner,
		CeIn:         new(big.Int).Set(ceIn),
		CaOut:        caOut,
		RateUsed:     rate,
		FeeCollected: fee,
		Timestamp:    time.Now(),
		RefID:        refID,
	})
}

// SetSwapEnabled is a controller-only helper.
func (b *Bridge) SetSwapEnabled(enabled bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.swapCfg.Enabled = enabled
}

// SetSwapFeeBps is a controller-only helper, capped at MaxFeeBps.
func (b *Bridge) SetSwapFeeBps(feeBps uint64) *Error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if feeBps > MaxFeeBps {
		return newErr(LimitExceeded, "fee_bps exceeds cap")
	}
	b.swapCfg.FeeBps = feeBps
	return nil
}

// SetSwapLimits is a controller-only helper.
func (b *Bridge) SetSwapLimits(minCe, maxCe *big.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.swapCfg.MinCe = new(big.Int).Set(minCe)
	b.swapCfg.MaxCe = new(big.Int).Set(maxCe)
}

// GetSwapConfig is a query.
func (b *Bridge) GetSwapConfig() SwapConfig {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return SwapConfig{
		Enabled: b.swapCfg.Enabled,
		FeeBps:  b.swapCfg.FeeBps,
		MinCe:   new(big.Int).Set(b.swapCfg.MinCe),
		MaxCe:   new(big.Int).Set(b.swapCfg.MaxCe),
	}
}

// GetSwapRecords returns the most recent limit swap records, newest last.
func (b *Bridge) GetSwapRecords(limit int) []SwapRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if limit <= 0 || limit > len(b.swapRecords) {
		limit = len(b.swapRecords)
	}
	start := len(b.swapRecords) - limit
	out := make([]SwapRecord, limit)
	copy(out, b.swapRecords[start:])
	return out
}

// IsSwapDepositProcessed is a query.
func (b *Bridge) IsSwapDepositProcessed(tx string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.processedDeposit[tx]
	return ok
}

// AdminSweepCeToCustody moves cE from the bridge's main account (cfg.Self)
// to user via TransferFrom; used when an agent deposited to the wrong
// account. CkEthLedger takes no sub-account, so the destination is user's
// principal account, not the GetSwapCustodySubaccount sub-account. The
// caller is checked against AuthorisedMinters, like the reporter
// operations; the bridge holds no separate controller set.
func (b *Bridge) AdminSweepCeToCustody(caller principal.Principal, user principal.Principal, amount *big.Int) *Error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.isMinterLocked(caller) {
		return newErr(Unauthorized, "caller is not an authorised reporter")
	}
	if err := b.ceLedger.TransferFrom(b.cfg.Self, user, amount); err != nil {
		return newErr(GenericError, err.Error())
	}
	return nil
}
