package calculator

import (
	"math"

	"github.com/pkg/errors"

	"CryptoFlow/internal/model"
)

// ErrNoBars is returned for an empty bar series.
var ErrNoBars = errors.New("no bars provided")

// PriceRange is the high/low envelope of a window of bars.
type PriceRange struct {
	High float64
	Low  float64
}

// CalculateRange returns the envelope of the most recent lookback bars.
// A lookback <= 0 covers every bar.
func CalculateRange(bars []model.OHLCV, lookback int) (PriceRange, error) {
	if len(bars) == 0 {
		return PriceRange{}, ErrNoBars
	}
	window := bars
	if lookback > 0 && len(bars) > lookback {
		window = bars[len(bars)-lookback:]
	}
	r := PriceRange{High: window[0].High, Low: window[0].Low}
	for _, b := range window[1:] {
		r.High = math.Max(r.High, b.High)
		r.Low = math.Min(r.Low, b.Low)
	}
	return r, nil
}

// Position places price inside the range, clamped to [0, 1]. A flat range is 0.5.
func (r PriceRange) Position(price float64) float64 {
	span := r.High - r.Low
	if span <= 0 {
		return 0.5
	}
	return math.Min(1, math.Max(0, (price-r.Low)/span))
}

// RangePosition is Position for a loose high/low pair.
func RangePosition(current, high, low float64) (float64, error) {
	if high < low {
		return 0, errors.Errorf("high %v below low %v", high, low)
	}
	return PriceRange{High: high, Low: low}.Position(current), nil
}
