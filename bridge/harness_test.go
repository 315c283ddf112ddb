// Copyright (C) 2025, Nuru AI. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/nuru-ai/ckalgo-bridge/custody"
	"github.com/nuru-ai/ckalgo-bridge/ledger"
	"github.com/nuru-ai/ckalgo-bridge/oracle"
	"github.com/nuru-ai/ckalgo-bridge/principal"
	"github.com/nuru-ai/ckalgo-bridge/signer"
)

// stubCeLedger is an in-memory ICRC-2-style ledger for the swap engine's
// pull-based flow. Allowance is unlimited by default; FailNext forces the
// next TransferFrom call to fail, to exercise the no-mutation-on-failure
// requirement.
type stubCeLedger struct {
	mu       sync.Mutex
	balances map[string]*big.Int
	FailNext bool
}

func newStubCeLedger() *stubCeLedger {
	return &stubCeLedger{balances: make(map[string]*big.Int)}
}

func (s *stubCeLedger) TransferFrom(from, to principal.Principal, amount *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailNext {
		s.FailNext = false
		return errors.New("transfer_from rejected")
	}
	fromBal := s.balances[from.Key()]
	if fromBal == nil {
		fromBal = big.NewInt(0)
	}
	s.balances[from.Key()] = new(big.Int).Sub(fromBal, amount)
	toBal := s.balances[to.Key()]
	if toBal == nil {
		toBal = big.NewInt(0)
	}
	s.balances[to.Key()] = new(big.Int).Add(toBal, amount)
	return nil
}

func testHarness(t *testing.T) (*Bridge, principal.Principal, *stubCeLedger) {
	t.Helper()

	reporter := principal.Principal("reporter-1")
	cfg := TestnetConfig(reporter)
	cfg.Self = principal.Principal("bridge-self")

	led := ledger.New(ledger.Config{
		Name: "chain-key ALGO", Symbol: "ckALGO", Decimals: 6, Fee: big.NewInt(1000),
	})
	reg := custody.New()

	var seed [32]byte
	copy(seed[:], []byte("bridge-test-root-seed-thirty-tw"))
	sgn, err := signer.New("bridge-test-key", seed, []signer.NodeID{"node-a"})
	if err != nil {
		t.Fatalf("signer.New: %v", err)
	}

	feed := oracle.NewStaticFeed()
	feed.Set(oracle.SymbolETHUSD, oracle.Quote{Rate: 300000, Decimals: 2})
	feed.Set(oracle.SymbolALGOUSD, oracle.Quote{Rate: 20, Decimals: 2})
	orc := oracle.New(feed)

	ceLedger := newStubCeLedger()

	b := New(cfg, led, reg, sgn, orc, ceLedger)
	return b, reporter, ceLedger
}

// registerCustodyFor derives a custody address for owner via the bridge's
// signer and binds it through the bridge's reporter-gated RegisterCustody
// entry point, returning the address for use in deposit tests.
func registerCustodyFor(t *testing.T, b *Bridge, owner principal.Principal) string {
	t.Helper()
	key, err := b.signer.DeriveAddress(owner)
	if err != nil {
		t.Fatalf("derive address: %v", err)
	}
	reporter := b.cfg.WellKnownReporters[0]
	if regErr := b.RegisterCustody(reporter, key.Address, owner); regErr != nil {
		t.Fatalf("register custody: %v", regErr)
	}
	return key.Address
}
