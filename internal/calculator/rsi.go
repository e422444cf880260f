package calculator

import (
	"math"
	"strconv"

	"github.com/pkg/errors"

	"CryptoFlow/internal/model"
)

// wilder keeps the running averages of up and down moves.
type wilder struct {
	period   float64
	up, down float64
}

func (w *wilder) seed(closes []float64) {
	for i := 1; i < len(closes); i++ {
		d := closes[i] - closes[i-1]
		w.up += math.Max(d, 0)
		w.down += math.Max(-d, 0)
	}
	w.up /= w.period
	w.down /= w.period
}

func (w *wilder) push(d float64) {
	w.up = (w.up*(w.period-1) + math.Max(d, 0)) / w.period
	w.down = (w.down*(w.period-1) + math.Max(-d, 0)) / w.period
}

func (w *wilder) rsi() float64 {
	if w.down == 0 {
		return 100
	}
	return 100 - 100/(1+w.up/w.down)
}

// RSISeries returns Wilder RSI aligned with bars. Points before index period are NaN.
func RSISeries(bars []model.OHLCV, period int) []float64 {
	if period <= 0 {
		return nil
	}
	closes := model.Closes(bars)
	out := make([]float64, len(closes))
	for i := range out {
		out[i] = math.NaN()
	}
	if len(closes) <= period {
		return out
	}

	w := &wilder{period: float64(period)}
	w.seed(closes[:period+1])
	out[period] = w.rsi()
	for i := period + 1; i < len(closes); i++ {
		w.push(closes[i] - closes[i-1])
		out[i] = w.rsi()
	}
	return out
}

// CalculateRSI returns the latest RSI, or 50 when there are not enough bars.
func CalculateRSI(bars []model.OHLCV, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(bars) <= period {
		return 50, nil
	}
	s := RSISeries(bars, period)
	return s[len(s)-1], nil
}

// CloseRSI returns the RSI overlay, named like "RSI 14".
func CloseRSI(bars []model.OHLCV, period int) model.Overlay {
	return model.Overlay{Name: "RSI " + strconv.Itoa(period), Values: RSISeries(bars, period)}
}
