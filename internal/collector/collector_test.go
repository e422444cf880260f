package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"CryptoFlow/internal/model"
)

// lastAbove builds n flat bars at 100 with the final close set to last.
func lastAbove(n int, last float64) []model.OHLCV {
	bars := make([]model.OHLCV, n)
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		bars[i] = model.OHLCV{Time: t0.AddDate(0, 0, i), Open: 100, High: 100, Low: 100, Close: 100}
	}
	bars[n-1].Close = last
	return bars
}

func TestScan_FiltersAndRanks(t *testing.T) {
	f := &MockFetcher{
		Symbols: []string{"AAAUSDT", "BBBUSDT", "CCCUSDT", "DDDUSDT", "EEEUSDT"},
		Bars: map[string][]model.OHLCV{
			"AAAUSDT": lastAbove(80, 103),
			"BBBUSDT": lastAbove(80, 108),
			"CCCUSDT": lastAbove(80, 90),  // below SMA
			"DDDUSDT": lastAbove(30, 200), // SMA undefined
		},
		Errs: map[string]error{"EEEUSDT": errors.New("boom")},
	}
	c := NewCollector(f)

	sum, err := c.Scan(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if sum.Symbols != 5 {
		t.Errorf("expected 5 symbols, got %d", sum.Symbols)
	}
	if len(sum.Results) != 2 {
		t.Fatalf("expected 2 results, got %+v", sum.Results)
	}
	if sum.Results[0].Symbol != "BBBUSDT" || sum.Results[1].Symbol != "AAAUSDT" {
		t.Errorf("wrong order: %+v", sum.Results)
	}
	if sum.Skipped != 2 {
		t.Errorf("expected 2 skipped (error + short), got %d", sum.Skipped)
	}
	if len(f.Calls) != 5 {
		t.Errorf("every symbol should be fetched once, got %v", f.Calls)
	}
}

func TestScan_EmptySymbolList(t *testing.T) {
	c := NewCollector(&MockFetcher{})
	sum, err := c.Scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(sum.Results) != 0 {
		t.Errorf("expected no results, got %+v", sum.Results)
	}
}

func TestScan_SymbolListError(t *testing.T) {
	c := NewCollector(&MockFetcher{SymbolsErr: errors.New("exchange down")})
	sum, err := c.Scan(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if sum == nil || len(sum.Results) != 0 {
		t.Errorf("expected empty summary, got %+v", sum)
	}
}

func TestScan_StopsOnCancel(t *testing.T) {
	f := &MockFetcher{Symbols: []string{"A", "B", "C"}, Price: 100}
	c := NewCollector(f)
	c.Pause = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	if _, err := c.Scan(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(f.Calls) != 1 {
		t.Errorf("expected a single fetch before cancel, got %v", f.Calls)
	}
}

func TestBuildChart(t *testing.T) {
	bars := GenerateMockBars(100, 250)
	chart, err := BuildChart("BTCUSDT", model.TF1d, bars, ChartOptions{ShowSMA: true, ShowRSI: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(chart.Candles) != 250 {
		t.Errorf("expected 250 candles, got %d", len(chart.Candles))
	}
	if len(chart.Overlays) != 3 {
		t.Fatalf("expected SMA 50, SMA 200 and RSI overlays, got %d", len(chart.Overlays))
	}
	for _, o := range chart.Overlays {
		if len(o.Values) != len(bars) {
			t.Errorf("%s not aligned: %d values", o.Name, len(o.Values))
		}
	}
	if chart.Summary.SMA == nil || chart.Summary.Distance == nil {
		t.Fatal("expected SMA and distance in summary")
	}
	if *chart.Summary.Distance <= 0 {
		t.Errorf("rising series should sit above SMA, got %.4f", *chart.Summary.Distance)
	}

	plain, _ := BuildChart("BTCUSDT", model.TF1d, bars, ChartOptions{})
	if len(plain.Overlays) != 0 {
		t.Errorf("expected no overlays, got %d", len(plain.Overlays))
	}
	if plain.Summary.Distance == nil {
		t.Error("distance must be reported regardless of overlay toggles")
	}
}

func TestBuildChart_ShortSeriesHasNoSMA(t *testing.T) {
	chart, err := BuildChart("X", model.TF1h, GenerateMockBars(10, 20), ChartOptions{ShowSMA: true})
	if err != nil {
		t.Fatal(err)
	}
	if chart.Summary.SMA != nil || chart.Summary.Distance != nil {
		t.Error("SMA should be undefined for 20 bars")
	}
	if _, err := BuildChart("X", model.TF1h, nil, ChartOptions{}); err == nil {
		t.Error("expected error for empty bars")
	}
}

func TestCollectorChart(t *testing.T) {
	mock := &MockFetcher{Price: 50, Errs: map[string]error{"BADUSDT": errors.New("HTTP 400")}}
	c := NewCollector(mock)

	chart, err := c.Chart(context.Background(), "ETHUSDT", model.TF4h, 120, ChartOptions{ShowRSI: true})
	if err != nil {
		t.Fatal(err)
	}
	if chart.Timeframe != model.TF4h || len(chart.Candles) != 120 || len(chart.Overlays) != 1 {
		t.Errorf("unexpected chart: tf=%s candles=%d overlays=%d", chart.Timeframe, len(chart.Candles), len(chart.Overlays))
	}
	if _, err := c.Chart(context.Background(), "BADUSDT", model.TF1d, 120, ChartOptions{}); err == nil {
		t.Error("expected fetch error")
	}
}
