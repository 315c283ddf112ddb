// Copyright (C) 2025, Nuru AI. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"math/big"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/nuru-ai/ckalgo-bridge/principal"
)

// Snapshot is the single opaque blob the bridge writes to stable storage on
// planned shutdown and reads back on restart. Every field is tagged by a
// stable CBOR map key (not positional), so a snapshot produced by an older
// binary that lacks a newer field decodes cleanly — the missing field takes
// its Go zero value, and RestoreSnapshot fills in anything that needs a
// non-zero default.
type Snapshot struct {
	Balances          map[string]string        `cbor:"balances"`
	TotalSupply       string                    `cbor:"total_supply"`
	NextTxIndex       uint64                    `cbor:"next_tx_index"`
	CustodyBindings   map[string]principal.Principal `cbor:"custody_bindings"`
	Pending           []snapshotPendingDeposit  `cbor:"pending_deposits"`
	Records           []snapshotDepositRecord   `cbor:"deposit_records"`
	NextDepositID     uint64                    `cbor:"next_deposit_id"`
	NextWithdrawID    uint64                    `cbor:"next_withdraw_id"`
	Reserve           snapshotReserveState      `cbor:"reserve_state"`
	SwapConfig        snapshotSwapConfig        `cbor:"swap_config,omitempty"`
	SwapRecords       []snapshotSwapRecord      `cbor:"swap_records,omitempty"`
	ProcessedDeposits []string                  `cbor:"processed_swap_deposits,omitempty"`
	AuthorisedMinters []principal.Principal     `cbor:"authorised_minters"`
}

type snapshotPendingDeposit struct {
	Owner                 principal.Principal `cbor:"owner"`
	FaTxID                string              `cbor:"fa_tx_id"`
	CustodyAddress        string              `cbor:"custody_address"`
	Amount                string              `cbor:"amount"`
	CreatedAtUnix         int64               `cbor:"created_at"`
	Confirmations         uint8               `cbor:"confirmations"`
	RequiredConfirmations uint8               `cbor:"required_confirmations"`
}

type snapshotDepositRecord struct {
	DepositID      uint64              `cbor:"deposit_id"`
	Owner          principal.Principal `cbor:"owner"`
	CustodyAddress string              `cbor:"custody_address"`
	Amount         string              `cbor:"amount"`
	FaTxID         string              `cbor:"fa_tx_id"`
	ConfirmedAtUnix int64              `cbor:"confirmed_at"`
	MintedAmount   string              `cbor:"minted_amount"`
}

type snapshotReserveState struct {
	LockedFaReserves  string `cbor:"locked_fa_reserves"`
	CkEthBackedSupply string `cbor:"cketh_backed_supply"`
	TotalCeReceived   string `cbor:"total_ce_received"`
	Healthy           bool   `cbor:"healthy"`
	LastCheckedUnix   int64  `cbor:"last_checked"`
}

type snapshotSwapConfig struct {
	Enabled bool   `cbor:"enabled"`
	FeeBps  uint64 `cbor:"fee_bps"`
	MinCe   string `cbor:"min_ce"`
	MaxCe   string `cbor:"max_ce"`
}

type snapshotSwapRecord struct {
	Owner          principal.Principal `cbor:"owner"`
	CeIn           string              `cbor:"ce_in"`
	CaOut          uint64              `cbor:"ca_out"`
	RateUsed       float64             `cbor:"rate_used"`
	FeeCollected   uint64              `cbor:"fee_collected"`
	TimestampUnix  int64               `cbor:"timestamp"`
	RefID          string              `cbor:"ref_id"`
}

// SaveSnapshot serialises every piece of state into the opaque blob written
// to stable storage ahead of a planned shutdown.
func (b *Bridge) SaveSnapshot() ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	balances, totalSupply, nextTxIndex := b.ledger.Snapshot()
	balanceStrs := make(map[string]string, len(balances))
	for k, v := range balances {
		balanceStrs[k] = v.String()
	}

	bindings := b.custody.Snapshot()

	pending := make([]snapshotPendingDeposit, 0, len(b.pending))
	for _, d := range b.pending {
		pending = append(pending, snapshotPendingDeposit{
			Owner:                 d.Owner,
			FaTxID:                d.FaTxID,
			CustodyAddress:        d.CustodyAddress,
			Amount:                d.Amount.String(),
			CreatedAtUnix:         d.CreatedAt.Unix(),
			Confirmations:         d.Confirmations,
			RequiredConfirmations: d.RequiredConfirmations,
		})
	}

	records := make([]snapshotDepositRecord, 0, len(b.records))
	for _, r := range b.records {
		records = append(records, snapshotDepositRecord{
			DepositID:       r.DepositID,
			Owner:           r.Owner,
			CustodyAddress:  r.CustodyAddress,
			Amount:          r.Amount.String(),
			FaTxID:          r.FaTxID,
			ConfirmedAtUnix: r.ConfirmedAt.Unix(),
			MintedAmount:    r.MintedAmount.String(),
		})
	}

	swapRecords := make([]snapshotSwapRecord, 0, len(b.swapRecords))
	for _, s := range b.swapRecords {
		swapRecords = append(swapRecords, snapshotSwapRecord{
			Owner:         s.Owner,
			CeIn:          s.CeIn.String(),
			CaOut:         s.CaOut,
			RateUsed:      s.RateUsed,
			FeeCollected:  s.FeeCollected,
			TimestampUnix: s.Timestamp.Unix(),
			RefID:         s.RefID,
		})
	}

	processed := make([]string, 0, len(b.processedDeposit))
	for tx := range b.processedDeposit {
		processed = append(processed, tx)
	}

	minters := make([]principal.Principal, 0, len(b.authorisedMinters))
	for _, p := range b.authorisedMinters {
		minters = append(minters, p)
	}

	snap := Snapshot{
		Balances:        balanceStrs,
		TotalSupply:     totalSupply.String(),
		NextTxIndex:     nextTxIndex,
		CustodyBindings: bindings,
		Pending:         pending,
		Records:         records,
		NextDepositID:   b.nextDepositID,
		NextWithdrawID:  b.nextWithdrawID,
		Reserve: snapshotReserveState{
			LockedFaReserves:  b.reserve.LockedFaReserves.String(),
			CkEthBackedSupply: b.reserve.CkEthBackedSupply.String(),
			TotalCeReceived:   b.reserve.TotalCeReceived.String(),
			Healthy:           b.reserve.Healthy,
			LastCheckedUnix:   b.reserve.LastChecked.Unix(),
		},
		SwapConfig: snapshotSwapConfig{
			Enabled: b.swapCfg.Enabled,
			FeeBps:  b.swapCfg.FeeBps,
			MinCe:   b.swapCfg.MinCe.String(),
			MaxCe:   b.swapCfg.MaxCe.String(),
		},
		SwapRecords:       swapRecords,
		ProcessedDeposits: processed,
		AuthorisedMinters: minters,
	}

	return cbor.Marshal(snap)
}

// RestoreSnapshot reconstructs every piece of bridge-owned state from a
// blob produced by SaveSnapshot, onto a Bridge already constructed (with
// New) against its live dependencies — the signer, oracle and cE ledger are
// never part of the snapshot, only the state this package owns.
//
// Snapshots from an older binary that omitted a field this version knows
// about decode that field to its Go zero value; numeric string fields that
// fail to parse as a result default to zero rather than panicking, so a
// genuinely missing field never corrupts restore. Well-known reporters are
// always re-added to AuthorisedMinters regardless of what the snapshot
// contained, as an operational safety net.
func (b *Bridge) RestoreSnapshot(data []byte) error {
	var snap Snapshot
	if err := cbor.Unmarshal(data, &snap); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	balances := make(map[string]*big.Int, len(snap.Balances))
	for k, v := range snap.Balances {
		balances[k] = parseBigIntOrZero(v)
	}
	b.ledger.Restore(balances, parseBigIntOrZero(snap.TotalSupply), snap.NextTxIndex)
	b.custody.Restore(snap.CustodyBindings)

	b.pending = make(map[string]*PendingDeposit, len(snap.Pending))
	for _, d := range snap.Pending {
		b.pending[d.FaTxID] = &PendingDeposit{
			Owner:                 d.Owner,
			FaTxID:                d.FaTxID,
			CustodyAddress:        d.CustodyAddress,
			Amount:                parseBigIntOrZero(d.Amount),
			CreatedAt:             time.Unix(d.CreatedAtUnix, 0),
			Confirmations:         d.Confirmations,
			RequiredConfirmations: d.RequiredConfirmations,
		}
	}

	b.records = make([]DepositRecord, 0, len(snap.Records))
	for _, r := range snap.Records {
		b.records = append(b.records, DepositRecord{
			DepositID:      r.DepositID,
			Owner:          r.Owner,
			CustodyAddress: r.CustodyAddress,
			Amount:         parseBigIntOrZero(r.Amount),
			FaTxID:         r.FaTxID,
			ConfirmedAt:    time.Unix(r.ConfirmedAtUnix, 0),
			MintedAmount:   parseBigIntOrZero(r.MintedAmount),
		})
	}

	b.nextDepositID = snap.NextDepositID
	b.nextWithdrawID = snap.NextWithdrawID

	b.reserve = ReserveState{
		LockedFaReserves:  parseBigIntOrZero(snap.Reserve.LockedFaReserves),
		CkEthBackedSupply: parseBigIntOrZero(snap.Reserve.CkEthBackedSupply),
		TotalCeReceived:   parseBigIntOrZero(snap.Reserve.TotalCeReceived),
		Healthy:           snap.Reserve.Healthy,
		LastChecked:       time.Unix(snap.Reserve.LastCheckedUnix, 0),
	}

	minCe := parseBigIntOrZero(snap.SwapConfig.MinCe)
	maxCe := parseBigIntOrZero(snap.SwapConfig.MaxCe)
	if maxCe.Sign() == 0 {
		// A snapshot predating swap support has no MaxCe at all; default to
		// the same permissive ceiling New() starts with rather than a swap
		// engine that rejects everything.
		maxCe = new(big.Int).Lsh(big.NewInt(1), 128)
	}
	b.swapCfg = SwapConfig{
		Enabled: snap.SwapConfig.Enabled,
		FeeBps:  snap.SwapConfig.FeeBps,
		MinCe:   minCe,
		MaxCe:   maxCe,
	}

	b.swapRecords = make([]SwapRecord, 0, len(snap.SwapRecords))
	for _, s := range snap.SwapRecords {
		b.swapRecords = append(b.swapRecords, SwapRecord{
			Owner:        s.Owner,
			CeIn:         parseBigIntOrZero(s.CeIn),
			CaOut:        s.CaOut,
			RateUsed:     s.RateUsed,
			FeeCollected: s.FeeCollected,
			Timestamp:    time.Unix(s.TimestampUnix, 0),
			RefID:        s.RefID,
		})
	}

	b.processedDeposit = make(map[string]struct{}, len(snap.ProcessedDeposits))
	for _, tx := range snap.ProcessedDeposits {
		b.processedDeposit[tx] = struct{}{}
	}

	b.authorisedMinters = make(map[string]principal.Principal, len(snap.AuthorisedMinters))
	for _, p := range snap.AuthorisedMinters {
		b.authorisedMinters[p.Key()] = p
	}
	for _, p := range b.cfg.WellKnownReporters {
		b.authorisedMinters[p.Key()] = p
	}

	return nil
}

func parseBigIntOrZero(s string) *big.Int {
	if s == "" {
		return big.NewInt(0)
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return big.NewInt(0)
	}
	return n
}
