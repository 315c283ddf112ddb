// Copyright (C) 2025, Nuru AI. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"math/big"
	"testing"

	"github.com/nuru-ai/ckalgo-bridge/principal"
)

func alice() principal.Principal { return principal.Principal("alice") }
func bob() principal.Principal   { return principal.Principal("bob") }

func TestNewLedger(t *testing.T) {
	l := New(Config{Name: "Chain-Key ALGO", Symbol: "ckALGO", Decimals: 6, Fee: big.NewInt(10000)})
	if l.Name() != "Chain-Key ALGO" {
		t.Errorf("unexpected name %q", l.Name())
	}
	if l.TotalSupply().Sign() != 0 {
		t.Error("expected zero total supply")
	}
	if l.BalanceOf(alice()).Sign() != 0 {
		t.Error("expected zero balance for unknown principal")
	}
}

func TestCreditAndTransferNoFee(t *testing.T) {
	l := New(Config{Decimals: 6, Fee: big.NewInt(10000)})
	l.Credit(alice(), big.NewInt(1_000_000))

	idx, terr := l.Transfer(alice(), bob(), big.NewInt(400_000))
	if terr != nil {
		t.Fatalf("unexpected transfer error: %v", terr)
	}
	if idx == 0 {
		t.Error("expected non-zero tx index")
	}

	// No fee deducted: 1_000_000 - 400_000 == 600_000 exactly.
	if got := l.BalanceOf(alice()); got.Cmp(big.NewInt(600_000)) != 0 {
		t.Errorf("sender balance = %s, want 600000 (fee must not be deducted)", got)
	}
	if got := l.BalanceOf(bob()); got.Cmp(big.NewInt(400_000)) != 0 {
		t.Errorf("recipient balance = %s, want 400000", got)
	}
	if got := l.TotalSupply(); got.Cmp(big.NewInt(1_000_000)) != 0 {
		t.Errorf("total supply changed by a pure transfer: got %s", got)
	}
}

func TestTransferInsufficientFunds(t *testing.T) {
	l := New(Config{})
	_, terr := l.Transfer(alice(), bob(), big.NewInt(1))
	if terr == nil || terr.Kind != TransferInsufficientFunds {
		t.Fatalf("expected InsufficientFunds, got %v", terr)
	}
	if terr.Balance.Sign() != 0 {
		t.Errorf("expected reported balance 0, got %s", terr.Balance)
	}
}

func TestDebitInsufficientFundsLeavesStateUnchanged(t *testing.T) {
	l := New(Config{})
	l.Credit(alice(), big.NewInt(100))
	if l.Debit(alice(), big.NewInt(1000)) {
		t.Fatal("expected debit to fail")
	}
	if got := l.BalanceOf(alice()); got.Cmp(big.NewInt(100)) != 0 {
		t.Errorf("balance mutated on failed debit: %s", got)
	}
	if got := l.TotalSupply(); got.Cmp(big.NewInt(100)) != 0 {
		t.Errorf("supply mutated on failed debit: %s", got)
	}
}

func TestSumBalancesMatchesTotalSupply(t *testing.T) {
	l := New(Config{})
	l.Credit(alice(), big.NewInt(700))
	l.Credit(bob(), big.NewInt(300))
	l.Debit(bob(), big.NewInt(50))

	if l.SumBalances().Cmp(l.TotalSupply()) != 0 {
		t.Errorf("sum(balances)=%s total_supply=%s", l.SumBalances(), l.TotalSupply())
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	l := New(Config{})
	l.Credit(alice(), big.NewInt(123))
	l.Credit(bob(), big.NewInt(456))
	l.Transfer(bob(), alice(), big.NewInt(1))

	balances, supply, nextIdx := l.Snapshot()

	l2 := New(Config{})
	l2.Restore(balances, supply, nextIdx)

	if l2.TotalSupply().Cmp(l.TotalSupply()) != 0 {
		t.Errorf("supply mismatch after restore")
	}
	if l2.BalanceOf(alice()).Cmp(l.BalanceOf(alice())) != 0 {
		t.Errorf("alice balance mismatch after restore")
	}
	if l2.BalanceOf(bob()).Cmp(l.BalanceOf(bob())) != 0 {
		t.Errorf("bob balance mismatch after restore")
	}
}

func TestSupportedStandards(t *testing.T) {
	l := New(Config{})
	standards := l.SupportedStandards()
	if len(standards) != 1 || standards[0].Name != "ICRC-1" {
		t.Errorf("unexpected standards list: %+v", standards)
	}
}
