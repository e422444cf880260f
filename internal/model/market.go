package model

import (
	"strings"
	"time"
)

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Timeframe is a candle interval understood by the exchange.
type Timeframe string

const (
	TF15m Timeframe = "15m"
	TF1h  Timeframe = "1h"
	TF4h  Timeframe = "4h"
	TF1d  Timeframe = "1d"
)

// Timeframes lists the intervals offered by the dashboard selector, shortest first.
var Timeframes = []Timeframe{TF15m, TF1h, TF4h, TF1d}

func (tf Timeframe) String() string { return string(tf) }

// ParseTimeframe accepts "15m", "1h", "4h", "1d" in any case.
func ParseTimeframe(s string) (Timeframe, bool) {
	switch Timeframe(strings.ToLower(strings.TrimSpace(s))) {
	case TF15m:
		return TF15m, true
	case TF1h:
		return TF1h, true
	case TF4h:
		return TF4h, true
	case TF1d:
		return TF1d, true
	}
	return "", false
}

// Closes extracts closing prices in bar order.
func Closes(bars []OHLCV) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
