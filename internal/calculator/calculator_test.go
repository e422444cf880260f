package calculator

import (
	"math"
	"testing"
	"time"

	"CryptoFlow/internal/model"
)

func barsFromCloses(closes ...float64) []model.OHLCV {
	bars := make([]model.OHLCV, len(closes))
	t0 := time.Unix(0, 0).UTC()
	for i, c := range closes {
		bars[i] = model.OHLCV{Time: t0.Add(time.Duration(i) * 24 * time.Hour), Open: c, High: c + 1, Low: c - 1, Close: c}
	}
	return bars
}

func TestCalculateSMA(t *testing.T) {
	got, err := CalculateSMA([]float64{1, 2, 3, 4, 5}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if got != 4 {
		t.Errorf("expected 4, got %v", got)
	}
	if _, err := CalculateSMA([]float64{1, 2}, 3); err != ErrNotEnoughData {
		t.Errorf("expected ErrNotEnoughData, got %v", err)
	}
	if _, err := CalculateSMA([]float64{1}, 0); err == nil {
		t.Error("expected error for zero period")
	}
}

func TestSMASeries_AlignedWithWarmup(t *testing.T) {
	s := SMASeries([]float64{2, 4, 6, 8}, 3)
	if len(s) != 4 {
		t.Fatalf("expected aligned length 4, got %d", len(s))
	}
	if !math.IsNaN(s[0]) || !math.IsNaN(s[1]) {
		t.Errorf("expected NaN warmup, got %v %v", s[0], s[1])
	}
	if s[2] != 4 || s[3] != 6 {
		t.Errorf("unexpected values: %v", s)
	}
	last, _ := CalculateSMA([]float64{2, 4, 6, 8}, 3)
	if s[3] != last {
		t.Errorf("series tail %v != scalar %v", s[3], last)
	}
}

func TestSMASeries_ShortInputAllNaN(t *testing.T) {
	for _, v := range SMASeries([]float64{1, 2}, 5) {
		if !math.IsNaN(v) {
			t.Fatalf("expected NaN, got %v", v)
		}
	}
}

func TestRSISeries(t *testing.T) {
	up := make([]float64, 30)
	for i := range up {
		up[i] = 100 + float64(i)
	}
	s := RSISeries(barsFromCloses(up...), 14)
	if !math.IsNaN(s[13]) {
		t.Errorf("expected NaN before index 14, got %v", s[13])
	}
	if s[14] != 100 || s[29] != 100 {
		t.Errorf("monotonic rise should give RSI 100, got %v / %v", s[14], s[29])
	}

	rsi, err := CalculateRSI(barsFromCloses(1, 2, 3), 14)
	if err != nil || rsi != 50 {
		t.Errorf("short input should default to 50, got %v %v", rsi, err)
	}
}

func TestRSISeries_Mixed(t *testing.T) {
	closes := []float64{44, 44.34, 44.09, 43.61, 44.33, 44.83, 45.10, 45.42, 45.84, 46.08, 45.89, 46.03, 45.61, 46.28, 46.28}
	rsi, err := CalculateRSI(barsFromCloses(closes...), 14)
	if err != nil {
		t.Fatal(err)
	}
	if rsi < 65 || rsi > 75 {
		t.Errorf("expected RSI around 70, got %.2f", rsi)
	}
}

func TestCalculateRange(t *testing.T) {
	bars := barsFromCloses(10, 20, 15, 30, 25)
	r, err := CalculateRange(bars, 3)
	if err != nil {
		t.Fatal(err)
	}
	if r.High != 31 || r.Low != 14 {
		t.Errorf("expected 31/14, got %v/%v", r.High, r.Low)
	}
	r, _ = CalculateRange(bars, 0)
	if r.High != 31 || r.Low != 9 {
		t.Errorf("expected full range 31/9, got %v/%v", r.High, r.Low)
	}
	if got := r.Position(31); got != 1 {
		t.Errorf("position at high = %v", got)
	}
	if _, err := CalculateRange(nil, 3); err != ErrNoBars {
		t.Errorf("expected ErrNoBars, got %v", err)
	}
}

func TestRangePosition(t *testing.T) {
	tests := []struct {
		cur, high, low, want float64
	}{
		{15, 20, 10, 0.5},
		{25, 20, 10, 1},
		{5, 20, 10, 0},
		{7, 7, 7, 0.5},
	}
	if _, err := RangePosition(1, 5, 10); err == nil {
		t.Error("expected error when high < low")
	}
	for _, tt := range tests {
		got, err := RangePosition(tt.cur, tt.high, tt.low)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("RangePosition(%v,%v,%v) = %v, want %v", tt.cur, tt.high, tt.low, got, tt.want)
		}
	}
}
