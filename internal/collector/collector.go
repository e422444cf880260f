package collector

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"

	"CryptoFlow/internal/calculator"
	"CryptoFlow/internal/logger"
	"CryptoFlow/internal/metrics"
	"CryptoFlow/internal/model"
	"CryptoFlow/internal/strategy"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Symbols    []string
	SymbolsErr error
	Bars       map[string][]model.OHLCV
	Errs       map[string]error
	Price      float64 // used to generate bars for symbols missing from Bars

	Calls []string // symbols requested via FetchCandles, in order
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) ActiveSymbols(_ context.Context) ([]string, error) {
	if m.SymbolsErr != nil {
		return nil, m.SymbolsErr
	}
	return m.Symbols, nil
}

func (m *MockFetcher) FetchCandles(_ context.Context, symbol string, _ model.Timeframe, limit int) ([]model.OHLCV, error) {
	m.Calls = append(m.Calls, symbol)
	if err, ok := m.Errs[symbol]; ok {
		return nil, err
	}
	if bars, ok := m.Bars[symbol]; ok {
		if limit > 0 && len(bars) > limit {
			bars = bars[len(bars)-limit:]
		}
		return bars, nil
	}
	if m.Price > 0 {
		return GenerateMockBars(m.Price, limit), nil
	}
	return nil, errors.Errorf("mock: no data for %s", symbol)
}

// GenerateMockBars returns count daily bars drifting slowly upward around basePrice.
func GenerateMockBars(basePrice float64, count int) []model.OHLCV {
	bars := make([]model.OHLCV, count)
	now := time.Now().UTC().Truncate(24 * time.Hour)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.OHLCV{
			Time:   now.AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Collector orchestrates data fetching and indicator computation.
type Collector struct {
	Fetcher     Fetcher
	Timeframe   model.Timeframe
	CandleLimit int
	SMALength   int
	// Pause between per-symbol requests, to stay inside the exchange rate limit.
	Pause time.Duration
}

// NewCollector creates a Collector using the daily scan defaults.
func NewCollector(fetcher Fetcher) *Collector {
	return &Collector{
		Fetcher:     fetcher,
		Timeframe:   model.TF1d,
		CandleLimit: 80,
		SMALength:   strategy.DefaultSMALength,
	}
}

// Scan fetches every active symbol, keeps those whose last close is above the
// SMA and returns them ordered by deviation, largest first. Per-symbol errors
// are logged and skipped. A failure to list symbols returns an empty summary
// together with the error.
func (c *Collector) Scan(ctx context.Context) (*model.ScanSummary, error) {
	sum := &model.ScanSummary{Started: time.Now(), Results: []model.ScanResult{}}
	defer func() { sum.Finished = time.Now() }()

	symbols, err := c.Fetcher.ActiveSymbols(ctx)
	if err != nil {
		metrics.FetchErrorsTotal.WithLabelValues("symbols").Inc()
		return sum, errors.Wrap(err, "list symbols")
	}
	sum.Symbols = len(symbols)
	logger.Info("scan started: %d symbols via %s", len(symbols), c.Fetcher.Name())

	for i, sym := range symbols {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if i > 0 && c.Pause > 0 {
			select {
			case <-ctx.Done():
				return sum, ctx.Err()
			case <-time.After(c.Pause):
			}
		}

		bars, err := c.Fetcher.FetchCandles(ctx, sym, c.Timeframe, c.CandleLimit)
		if err != nil {
			metrics.FetchErrorsTotal.WithLabelValues("candles").Inc()
			logger.Warn("fetch %s: %v", sym, err)
			sum.Skipped++
			continue
		}
		if len(bars) < c.SMALength {
			sum.Skipped++
			continue
		}
		if res, ok := strategy.Evaluate(sym, bars, c.SMALength); ok {
			sum.Results = append(sum.Results, res)
		}
	}

	strategy.Rank(sum.Results)
	metrics.QualifiedSymbols.Set(float64(len(sum.Results)))
	logger.Info("scan finished: %d qualifying, %d skipped", len(sum.Results), sum.Skipped)
	return sum, nil
}

// ChartOptions selects the overlays included in a chart payload.
type ChartOptions struct {
	ShowSMA bool
	ShowRSI bool
}

// Chart overlay periods.
const (
	ChartSMAFast = 50
	ChartSMASlow = 200
	ChartRSI     = 14
)

// Chart fetches limit candles for symbol and builds the chart payload.
func (c *Collector) Chart(ctx context.Context, symbol string, tf model.Timeframe, limit int, opts ChartOptions) (*model.Chart, error) {
	bars, err := c.Fetcher.FetchCandles(ctx, symbol, tf, limit)
	if err != nil {
		metrics.FetchErrorsTotal.WithLabelValues("chart").Inc()
		return nil, errors.Wrapf(err, "chart %s %s", symbol, tf)
	}
	return BuildChart(symbol, tf, bars, opts)
}

// BuildChart turns bars into the dashboard chart payload. The summary always
// carries price, SMA 50 and the signed distance from it; overlays are
// included according to opts.
func BuildChart(symbol string, tf model.Timeframe, bars []model.OHLCV, opts ChartOptions) (*model.Chart, error) {
	if len(bars) == 0 {
		return nil, errors.Errorf("no candles for %s %s", symbol, tf)
	}
	chart := &model.Chart{
		Symbol:    symbol,
		Timeframe: tf,
		Candles:   make([]model.ChartCandle, len(bars)),
		Overlays:  []model.Overlay{},
	}
	for i, b := range bars {
		chart.Candles[i] = model.ChartCandle{
			Time: b.Time.Unix(), Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, Volume: b.Volume,
		}
	}

	fast := calculator.CloseSMA(bars, ChartSMAFast)
	rsi := calculator.CloseRSI(bars, ChartRSI)
	if opts.ShowSMA {
		chart.Overlays = append(chart.Overlays, fast, calculator.CloseSMA(bars, ChartSMASlow))
	}
	if opts.ShowRSI {
		chart.Overlays = append(chart.Overlays, rsi)
	}

	last := bars[len(bars)-1].Close
	s := model.ChartSummary{LastPrice: last, GeneratedAt: time.Now().UTC()}
	if v := fast.Last(); !math.IsNaN(v) {
		s.SMA = &v
		d := strategy.Distance(last, v)
		s.Distance = &d
	}
	if v := rsi.Last(); !math.IsNaN(v) {
		s.RSI = &v
	}
	if r, err := calculator.CalculateRange(bars, 0); err == nil {
		s.RangeHigh, s.RangeLow = r.High, r.Low
		s.RangePos = r.Position(last)
	}
	chart.Summary = s
	return chart, nil
}
