package calculator

import (
	"math"
	"strconv"

	"github.com/pkg/errors"

	"CryptoFlow/internal/model"
)

// ErrNotEnoughData is returned when a series is shorter than the indicator period.
var ErrNotEnoughData = errors.New("not enough data")

// CalculateSMA computes the simple moving average of the last period prices.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, ErrNotEnoughData
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// SMASeries returns an SMA aligned with prices; the first period-1 points are NaN.
func SMASeries(prices []float64, period int) []float64 {
	if period <= 0 {
		return nil
	}
	out := make([]float64, len(prices))
	var sum float64
	for i := range prices {
		sum += prices[i]
		if i >= period {
			sum -= prices[i-period]
		}
		if i < period-1 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sum / float64(period)
	}
	return out
}

// CloseSMA returns the SMA overlay of bar closes, named like "SMA 50".
func CloseSMA(bars []model.OHLCV, period int) model.Overlay {
	return model.Overlay{
		Name:   "SMA " + strconv.Itoa(period),
		Values: SMASeries(model.Closes(bars), period),
	}
}
