package collector

import (
	"context"

	"CryptoFlow/internal/model"
)

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	// ActiveSymbols lists tradable USDT-margined perpetual contracts.
	ActiveSymbols(ctx context.Context) ([]string, error)
	// FetchCandles returns up to limit bars for symbol, oldest first.
	FetchCandles(ctx context.Context, symbol string, tf model.Timeframe, limit int) ([]model.OHLCV, error)
	Name() string
}
