package strategy

import (
	"testing"
	"time"

	"CryptoFlow/internal/model"
)

// flatThenLast builds n bars closing at base, with the final close replaced by last.
func flatThenLast(n int, base, last float64) []model.OHLCV {
	bars := make([]model.OHLCV, n)
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i] = model.OHLCV{Time: t0.AddDate(0, 0, i), Open: base, High: base, Low: base, Close: base}
	}
	bars[n-1].Close = last
	return bars
}

func TestDeviation_Rounded(t *testing.T) {
	if got := Deviation(110, 100); got != 10.00 {
		t.Errorf("expected 10.00, got %v", got)
	}
	if got := Deviation(100.123456, 100); got != 0.12 {
		t.Errorf("expected 0.12, got %v", got)
	}
	if got := Distance(90, 100); got != -10 {
		t.Errorf("expected signed -10, got %v", got)
	}
}

func TestEvaluate_AboveSMA(t *testing.T) {
	// 49 bars at 100 and one at 149 → SMA 100.98, price 149.
	bars := flatThenLast(50, 100, 149)
	res, ok := Evaluate("BTCUSDT", bars, 50)
	if !ok {
		t.Fatal("expected symbol to qualify")
	}
	if res.Symbol != "BTCUSDT" || res.Price != 149 {
		t.Errorf("unexpected row: %+v", res)
	}
	if res.SMA != 100.98 {
		t.Errorf("expected SMA 100.98, got %v", res.SMA)
	}
	if res.Deviation != Deviation(149, 100.98) {
		t.Errorf("deviation mismatch: %v", res.Deviation)
	}
}

func TestEvaluate_Rejects(t *testing.T) {
	tests := []struct {
		name string
		bars []model.OHLCV
	}{
		{"below sma", flatThenLast(60, 100, 50)},
		{"equal to sma", flatThenLast(60, 100, 100)},
		{"sma undefined", flatThenLast(49, 100, 500)},
		{"empty", nil},
	}
	for _, tt := range tests {
		if _, ok := Evaluate("X", tt.bars, 50); ok {
			t.Errorf("%s: expected rejection", tt.name)
		}
	}
}

func TestRank_DescendingByDeviation(t *testing.T) {
	in := []model.ScanResult{
		{Symbol: "A", Deviation: 3.0},
		{Symbol: "B", Deviation: 7.5},
		{Symbol: "C", Deviation: 1.2},
	}
	out := Rank(in)
	want := []float64{7.5, 3.0, 1.2}
	for i, w := range want {
		if out[i].Deviation != w {
			t.Fatalf("position %d: expected %v, got %v", i, w, out[i].Deviation)
		}
	}
}

func TestRank_StableForTies(t *testing.T) {
	out := Rank([]model.ScanResult{{Symbol: "A", Deviation: 2}, {Symbol: "B", Deviation: 2}})
	if out[0].Symbol != "A" || out[1].Symbol != "B" {
		t.Errorf("tie order changed: %+v", out)
	}
}
