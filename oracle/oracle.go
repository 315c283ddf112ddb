// Copyright (C) 2025, Nuru AI. All rights reserved.
// See the file LICENSE for licensing terms.

// Package oracle implements the swap engine's price-feed contract: query
// ETH/USD and ALGO/USD, each scaled by a reported decimals count, and derive
// an ETH-per-ALGO rate. The real subsystem charges per call, so a fixed
// per-quote budget is declared as QuoteBudgetCycles; this package does not
// meter or deduct it.
package oracle

import (
	"context"
	"errors"
)

// Quote is one price feed's raw answer: rate scaled by 10^decimals.
type Quote struct {
	Rate     uint64
	Decimals uint32
}

// Scaled returns the quote as a float64 USD price.
func (q Quote) Scaled() float64 {
	scale := 1.0
	for i := uint32(0); i < q.Decimals; i++ {
		scale *= 10
	}
	return float64(q.Rate) / scale
}

// Feed fetches a single symbol's quote (e.g. "ETH/USD").
type Feed interface {
	Quote(ctx context.Context, symbol string) (Quote, error)
}

// QuoteBudgetCycles is the fixed cycle budget for one Rate() call,
// covering both underlying feed queries. Rate does not consume it; it is a
// deployment parameter, not part of the core algorithm.
const QuoteBudgetCycles = 20_000_000_000

// ErrOracleUnavailable covers both "either call failed" and the
// ALGO/USD == 0 degenerate case.
var ErrOracleUnavailable = errors.New("oracle unavailable")

const (
	SymbolETHUSD  = "ETH/USD"
	SymbolALGOUSD = "ALGO/USD"
)

// Oracle composes a Feed into the ETH-per-ALGO rate the swap engine needs.
type Oracle struct {
	feed Feed
}

// New wraps feed as the bridge's oracle.
func New(feed Feed) *Oracle {
	return &Oracle{feed: feed}
}

// Rate returns ETH-per-ALGO. There is no fallback: any failure aborts the
// swap with ErrOracleUnavailable, never a stale or synthetic rate.
func (o *Oracle) Rate(ctx context.Context) (float64, error) {
	eth, err := o.feed.Quote(ctx, SymbolETHUSD)
	if err != nil {
		return 0, ErrOracleUnavailable
	}
	algo, err := o.feed.Quote(ctx, SymbolALGOUSD)
	if err != nil {
		return 0, ErrOracleUnavailable
	}
	algoUSD := algo.Scaled()
	if algoUSD == 0 {
		return 0, ErrOracleUnavailable
	}
	return eth.Scaled() / algoUSD, nil
}
