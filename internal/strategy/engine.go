package strategy

import (
	"math"
	"sort"

	"CryptoFlow/internal/calculator"
	"CryptoFlow/internal/model"
)

// DefaultSMALength is the moving-average period symbols are compared against.
const DefaultSMALength = 50

// Evaluate checks whether the last close of bars sits above its SMA(period).
// It qualifies only when the SMA is defined, i.e. at least period bars exist.
func Evaluate(symbol string, bars []model.OHLCV, period int) (model.ScanResult, bool) {
	if len(bars) == 0 {
		return model.ScanResult{}, false
	}
	sma, err := calculator.CalculateSMA(model.Closes(bars), period)
	if err != nil || math.IsNaN(sma) || sma <= 0 {
		return model.ScanResult{}, false
	}
	price := bars[len(bars)-1].Close
	if !(price > sma) {
		return model.ScanResult{}, false
	}
	return model.ScanResult{
		Symbol:    symbol,
		Price:     price,
		SMA:       sma,
		Deviation: Deviation(price, sma),
	}, true
}

// Deviation is the percentage of price above sma, rounded to 2 decimals.
func Deviation(price, sma float64) float64 {
	return math.Round(Distance(price, sma)*100) / 100
}

// Distance is the signed, unrounded percentage distance of price from sma.
func Distance(price, sma float64) float64 {
	if sma == 0 {
		return 0
	}
	return (price - sma) / sma * 100
}

// Rank orders results by deviation, largest first. Ties keep input order.
func Rank(results []model.ScanResult) []model.ScanResult {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Deviation > results[j].Deviation
	})
	return results
}
