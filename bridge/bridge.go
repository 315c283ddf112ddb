// Copyright (C) 2025, Nuru AI. All rights reserved.
// See the file LICENSE for licensing terms.

// Package bridge is the orchestrating aggregate: it composes the ledger,
// custody registry, threshold signer and oracle packages into the chain-key
// bridge's state machine (deposits, redemptions, reserve accounting, swaps)
// and its upgrade-safe persistence.
package bridge

import (
	"math/big"
	"sync"
	"time"

	log "github.com/luxfi/log"

	"github.com/nuru-ai/ckalgo-bridge/custody"
	"github.com/nuru-ai/ckalgo-bridge/ledger"
	"github.com/nuru-ai/ckalgo-bridge/oracle"
	"github.com/nuru-ai/ckalgo-bridge/principal"
	"github.com/nuru-ai/ckalgo-bridge/signer"
)

// Bridge owns every piece of state in the data model and is the sole
// mutator of it. Operations are assumed to be scheduled one at a time by
// the caller (a single-writer host runtime); the mutex here exists so the
// type is also safe to exercise directly from concurrent tests.
type Bridge struct {
	mu sync.RWMutex

	cfg Config
	log log.Logger

	ledger   *ledger.Ledger
	custody  *custody.Registry
	signer   signer.Signer
	oracle   *oracle.Oracle
	ceLedger CkEthLedger

	pending        map[string]*PendingDeposit // fa_tx_id -> deposit
	records        []DepositRecord
	nextDepositID  uint64
	nextWithdrawID uint64

	reserve ReserveState

	swapCfg          SwapConfig
	swapRecords      []SwapRecord
	processedDeposit map[string]struct{}

	authorisedMinters map[string]principal.Principal
}

// CkEthLedger is the ICRC-2-style surface the swap engine pulls from.
// Implemented by an out-of-process ledger canister in production; tests
// supply an in-memory stub.
type CkEthLedger interface {
	TransferFrom(from, to principal.Principal, amount *big.Int) error
}

// New constructs a bridge with empty state, the given dependencies, and the
// well-known reporters pre-authorised.
func New(cfg Config, led *ledger.Ledger, reg *custody.Registry, sgn signer.Signer, orc *oracle.Oracle, ceLedger CkEthLedger) *Bridge {
	b := &Bridge{
		cfg:               cfg,
		log:               log.NewTestLogger(log.InfoLevel),
		ledger:            led,
		custody:           reg,
		signer:            sgn,
		oracle:            orc,
		ceLedger:          ceLedger,
		pending:           make(map[string]*PendingDeposit),
		processedDeposit:  make(map[string]struct{}),
		authorisedMinters: make(map[string]principal.Principal),
		reserve: ReserveState{
			LockedFaReserves:  big.NewInt(0),
			CkEthBackedSupply: big.NewInt(0),
			TotalCeReceived:   big.NewInt(0),
			Healthy:           true,
			LastChecked:       time.Now(),
		},
		swapCfg: SwapConfig{
			Enabled: false,
			FeeBps:  0,
			MinCe:   big.NewInt(0),
			MaxCe:   new(big.Int).Lsh(big.NewInt(1), 128),
		},
	}
	for _, r := range cfg.WellKnownReporters {
		b.authorisedMinters[r.Key()] = r
	}
	return b
}

// AuthoriseMinter adds p to AuthorisedMinters. Controller-only in a real
// deployment; gating is the caller's responsibility since the platform
// controller set is out-of-band.
func (b *Bridge) AuthoriseMinter(p principal.Principal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.authorisedMinters[p.Key()] = p
}

// RevokeMinter removes p from AuthorisedMinters.
func (b *Bridge) RevokeMinter(p principal.Principal) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.authorisedMinters, p.Key())
}

func (b *Bridge) isMinterLocked(p principal.Principal) bool {
	_, ok := b.authorisedMinters[p.Key()]
	return ok
}

// IsAuthorisedMinter reports whether p is currently a reporter.
func (b *Bridge) IsAuthorisedMinter(p principal.Principal) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.isMinterLocked(p)
}

// Ledger exposes the underlying token ledger for read-only query surfaces
// (balance_of, total_supply, transfer) that pass straight through.
func (b *Bridge) Ledger() *ledger.Ledger { return b.ledger }

// Custody exposes the underlying registry for read-only lookups.
func (b *Bridge) Custody() *custody.Registry { return b.custody }
