// Copyright (C) 2025, Nuru AI. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ledger implements the minimal fungible-token ledger (balances and
// total supply) that the bridge controls. It exposes the standard
// query/transfer surface; minting and burning authority live in the bridge
// package, not here — this package has no notion of reserves.
package ledger

import (
	"math/big"
	"sync"

	"github.com/nuru-ai/ckalgo-bridge/principal"
)

// StandardDescriptor names one fungible-token standard this ledger claims
// to support, with a reference URL for callers that want to verify.
type StandardDescriptor struct {
	Name string
	URL  string
}

// TransferErrorKind distinguishes why a transfer did not go through.
type TransferErrorKind uint8

const (
	// TransferInsufficientFunds means the caller's balance is below amount.
	TransferInsufficientFunds TransferErrorKind = iota
	// TransferGenericError is a catch-all for conditions outside this enum.
	TransferGenericError
)

// TransferError is returned by Transfer when the debit/credit cannot
// proceed. It carries enough detail for a caller to decide whether to retry.
type TransferError struct {
	Kind    TransferErrorKind
	Balance *big.Int // populated for TransferInsufficientFunds
	Code    int      // populated for TransferGenericError
	Message string   // populated for TransferGenericError
}

func (e *TransferError) Error() string {
	switch e.Kind {
	case TransferInsufficientFunds:
		return "insufficient funds"
	default:
		return e.Message
	}
}

// Ledger is a linearisable balance/total-supply store. All reads observe the
// last committed mutation; there are no locks needed by callers because the
// single-writer scheduling model (see bridge package) serialises operations
// for them — the mutex here exists only to make the type safe to share
// across goroutines in tests and non-canister embeddings.
type Ledger struct {
	name     string
	symbol   string
	decimals uint8
	fee      *big.Int

	mu          sync.RWMutex
	balances    map[string]*big.Int
	totalSupply *big.Int
	nextTxIndex uint64
}

// Config describes the advertised identity of the token. Fee is advertised
// only — see Transfer's doc comment for why it is never deducted here.
type Config struct {
	Name     string
	Symbol   string
	Decimals uint8
	Fee      *big.Int
}

// New creates an empty ledger (zero balances, zero supply) with the given
// advertised identity.
func New(cfg Config) *Ledger {
	fee := cfg.Fee
	if fee == nil {
		fee = big.NewInt(0)
	}
	return &Ledger{
		name:        cfg.Name,
		symbol:      cfg.Symbol,
		decimals:    cfg.Decimals,
		fee:         new(big.Int).Set(fee),
		balances:    make(map[string]*big.Int),
		totalSupply: big.NewInt(0),
	}
}

func (l *Ledger) Name() string     { return l.name }
func (l *Ledger) Symbol() string   { return l.symbol }
func (l *Ledger) Decimals() uint8  { return l.decimals }
func (l *Ledger) Fee() *big.Int    { return new(big.Int).Set(l.fee) }

// SupportedStandards lists the standards this ledger implements.
func (l *Ledger) SupportedStandards() []StandardDescriptor {
	return []StandardDescriptor{
		{Name: "ICRC-1", URL: "https://github.com/dfinity/ICRC-1"},
	}
}

// TotalSupply returns the current total supply.
func (l *Ledger) TotalSupply() *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return new(big.Int).Set(l.totalSupply)
}

// BalanceOf returns p's balance, zero if p has never held a balance.
func (l *Ledger) BalanceOf(p principal.Principal) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balanceLocked(p.Key())
}

func (l *Ledger) balanceLocked(key string) *big.Int {
	if b, ok := l.balances[key]; ok {
		return new(big.Int).Set(b)
	}
	return big.NewInt(0)
}

// nextIndex returns a monotonically-increasing opaque transaction index.
// Timestamp-based indices are acceptable per the token's contract when it is
// not standalone; we use a simple counter instead so ordering is exact even
// when two operations land in the same instant.
func (l *Ledger) nextIndex() uint64 {
	l.nextTxIndex++
	return l.nextTxIndex
}

// Transfer debits the caller and credits recipient atomically, returning an
// opaque monotonically-increasing index.
//
// No fee is deducted here: the advertised Fee() is a hint only. This repo
// pins that policy deliberately (see DESIGN.md) rather than guessing at the
// deployed standard's intent.
func (l *Ledger) Transfer(caller, to principal.Principal, amount *big.Int) (uint64, *TransferError) {
	l.mu.Lock()
	defer l.mu.Unlock()

	callerKey := caller.Key()
	balance := l.balanceLocked(callerKey)
	if balance.Cmp(amount) < 0 {
		return 0, &TransferError{Kind: TransferInsufficientFunds, Balance: balance}
	}

	toKey := to.Key()
	newCallerBalance := new(big.Int).Sub(balance, amount)
	newToBalance := new(big.Int).Add(l.balanceLocked(toKey), amount)

	l.balances[callerKey] = newCallerBalance
	l.balances[toKey] = newToBalance

	return l.nextIndex(), nil
}

// Credit increases to's balance and the total supply by amount. Callers
// outside this package (the bridge's mint/swap paths) are the only intended
// users; there is no authorisation check here because that check belongs to
// the caller who already decided minting is warranted.
func (l *Ledger) Credit(to principal.Principal, amount *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := to.Key()
	l.balances[key] = new(big.Int).Add(l.balanceLocked(key), amount)
	l.totalSupply.Add(l.totalSupply, amount)
}

// Debit decreases from's balance and the total supply by amount. Returns
// false without mutating anything if the balance is insufficient.
func (l *Ledger) Debit(from principal.Principal, amount *big.Int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := from.Key()
	balance := l.balanceLocked(key)
	if balance.Cmp(amount) < 0 {
		return false
	}
	l.balances[key] = new(big.Int).Sub(balance, amount)
	l.totalSupply.Sub(l.totalSupply, amount)
	return true
}

// AdminTransfer debits from and credits to without touching total supply or
// reserves — off-protocol settlement, gated by the caller (bridge package)
// checking the reporter/controller authorisation.
func (l *Ledger) AdminTransfer(from, to principal.Principal, amount *big.Int) *TransferError {
	l.mu.Lock()
	defer l.mu.Unlock()
	fromKey := from.Key()
	balance := l.balanceLocked(fromKey)
	if balance.Cmp(amount) < 0 {
		return &TransferError{Kind: TransferInsufficientFunds, Balance: balance}
	}
	toKey := to.Key()
	l.balances[fromKey] = new(big.Int).Sub(balance, amount)
	l.balances[toKey] = new(big.Int).Add(l.balanceLocked(toKey), amount)
	return nil
}

// SumBalances is a diagnostic/property-test helper: Σ balances should always
// equal TotalSupply.
func (l *Ledger) SumBalances() *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	sum := big.NewInt(0)
	for _, b := range l.balances {
		sum.Add(sum, b)
	}
	return sum
}

// Snapshot returns a deep copy of the balances map and total supply, for
// persistence across upgrades.
func (l *Ledger) Snapshot() (balances map[string]*big.Int, totalSupply *big.Int, nextTxIndex uint64) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]*big.Int, len(l.balances))
	for k, v := range l.balances {
		out[k] = new(big.Int).Set(v)
	}
	return out, new(big.Int).Set(l.totalSupply), l.nextTxIndex
}

// Restore replaces the ledger's state wholesale. Used only by persistence
// restore on upgrade; never called mid-operation.
func (l *Ledger) Restore(balances map[string]*big.Int, totalSupply *big.Int, nextTxIndex uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances = make(map[string]*big.Int, len(balances))
	for k, v := range balances {
		l.balances[k] = new(big.Int).Set(v)
	}
	if totalSupply == nil {
		totalSupply = big.NewInt(0)
	}
	l.totalSupply = new(big.Int).Set(totalSupply)
	l.nextTxIndex = nextTxIndex
}
