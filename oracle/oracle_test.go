// Copyright (C) 2025, Nuru AI. All rights reserved.
// See the file LICENSE for licensing terms.

package oracle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRateComposesBothQuotes(t *testing.T) {
	feed := NewStaticFeed()
	feed.Set(SymbolETHUSD, Quote{Rate: 300000, Decimals: 2})  // 3000.00
	feed.Set(SymbolALGOUSD, Quote{Rate: 20, Decimals: 2})     // 0.20

	o := New(feed)
	rate, err := o.Rate(context.Background())
	require.NoError(t, err)
	require.Equal(t, 15000.0, rate)
}

func TestRateFailsWhenEthQuoteMissing(t *testing.T) {
	feed := NewStaticFeed()
	feed.Set(SymbolALGOUSD, Quote{Rate: 20, Decimals: 2})

	o := New(feed)
	_, err := o.Rate(context.Background())
	require.ErrorIs(t, err, ErrOracleUnavailable)
}

func TestRateFailsWhenAlgoQuoteMissing(t *testing.T) {
	feed := NewStaticFeed()
	feed.Set(SymbolETHUSD, Quote{Rate: 300000, Decimals: 2})

	o := New(feed)
	_, err := o.Rate(context.Background())
	require.ErrorIs(t, err, ErrOracleUnavailable)
}

func TestRateFailsOnZeroAlgoPrice(t *testing.T) {
	feed := NewStaticFeed()
	feed.Set(SymbolETHUSD, Quote{Rate: 300000, Decimals: 2})
	feed.Set(SymbolALGOUSD, Quote{Rate: 0, Decimals: 2})

	o := New(feed)
	_, err := o.Rate(context.Background())
	require.ErrorIs(t, err, ErrOracleUnavailable)
}

func TestQuoteScaledHandlesZeroDecimals(t *testing.T) {
	q := Quote{Rate: 42, Decimals: 0}
	require.Equal(t, 42.0, q.Scaled())
}
