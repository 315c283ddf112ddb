// Copyright (C) 2025, Nuru AI. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"math/big"
	"testing"

	"github.com/nuru-ai/ckalgo-bridge/principal"
)

func TestReserveStatusRatioDefaultsToOneWithZeroSupply(t *testing.T) {
	b, _, _ := testHarness(t)
	status := b.ReserveStatus()
	if status.Ratio != 1.0 {
		t.Fatalf("ratio = %v, want 1.0", status.Ratio)
	}
}

func TestReserveStatusRatioAfterMint(t *testing.T) {
	b, reporter, _ := testHarness(t)
	owner := principal.Principal("2vxsx-fae")
	depositAndMint(t, b, reporter, owner, big.NewInt(1_000_000), "ALGO_TX_1")

	status := b.ReserveStatus()
	if status.Ratio != 1.0 {
		t.Fatalf("ratio = %v, want 1.0 (fully backed)", status.Ratio)
	}
}

func TestSetHealthRequiresAuthorisation(t *testing.T) {
	b, _, _ := testHarness(t)
	notAReporter := principal.Principal("random")
	if err := b.SetHealth(notAReporter, false); err == nil || err.Kind != Unauthorized {
		t.Fatalf("err = %v, want Unauthorized", err)
	}
}
