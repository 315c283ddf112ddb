// Copyright (C) 2025, Nuru AI. All rights reserved.
// See the file LICENSE for licensing terms.

package bridge

import (
	"math/big"

	"github.com/nuru-ai/ckalgo-bridge/principal"
)

// Config fixes the deployment-wide constants the state machine checks
// against. These are not tunable per-call; only the controller-only swap
// setters may adjust the swap subset at runtime.
type Config struct {
	Network string // "testnet" or "mainnet"

	// RequiredConfirmations is the single accepted value for
	// register_pending_deposit's required_confirmations argument on this
	// deployment: 3 for testnet, 6 for mainnet.
	RequiredConfirmations uint8

	MinDeposit *big.Int // 100_000 base units (0.1 native unit)
	MaxDeposit *big.Int // 1_000_000 native units, in base units

	MaxPending int // 10_000

	// WellKnownReporters are re-added to AuthorisedMinters on every restore
	// as an operational safety net.
	WellKnownReporters []principal.Principal

	// Self is the bridge's own principal, the destination of every
	// transfer_from pull in the swap engine.
	Self principal.Principal
}

// TestnetConfig returns the standard testnet deployment constants.
func TestnetConfig(reporters ...principal.Principal) Config {
	return Config{
		Network:               "testnet",
		RequiredConfirmations: 3,
		MinDeposit:            big.NewInt(100_000),
		MaxDeposit:            new(big.Int).Mul(big.NewInt(1_000_000), big.NewInt(1_000_000)),
		MaxPending:            10_000,
		WellKnownReporters:    reporters,
	}
}

// MainnetConfig returns the standard mainnet deployment constants.
func MainnetConfig(reporters ...principal.Principal) Config {
	cfg := TestnetConfig(reporters...)
	cfg.Network = "mainnet"
	cfg.RequiredConfirmations = 6
	return cfg
}
