package model

import (
	"encoding/json"
	"math"
	"time"
)

// Overlay is an indicator series aligned index-for-index with a candle series.
// Undefined points are NaN and encode as JSON null.
type Overlay struct {
	Name   string
	Values []float64
}

func (o Overlay) MarshalJSON() ([]byte, error) {
	vals := make([]*float64, len(o.Values))
	for i := range o.Values {
		if math.IsNaN(o.Values[i]) {
			continue
		}
		v := o.Values[i]
		vals[i] = &v
	}
	return json.Marshal(struct {
		Name   string     `json:"name"`
		Values []*float64 `json:"values"`
	}{o.Name, vals})
}

// Last returns the final value of the overlay, NaN when empty.
func (o Overlay) Last() float64 {
	if len(o.Values) == 0 {
		return math.NaN()
	}
	return o.Values[len(o.Values)-1]
}

// ChartCandle is the wire shape of a candle sent to the dashboard.
type ChartCandle struct {
	Time   int64   `json:"time"` // unix seconds
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// ChartSummary holds the metric cards shown under the chart.
type ChartSummary struct {
	LastPrice   float64   `json:"last_price"`
	SMA         *float64  `json:"sma"`
	Distance    *float64  `json:"distance"` // signed % from SMA
	RSI         *float64  `json:"rsi"`
	RangeHigh   float64   `json:"range_high"`
	RangeLow    float64   `json:"range_low"`
	RangePos    float64   `json:"range_pos"` // 0.0 ~ 1.0
	GeneratedAt time.Time `json:"generated_at"`
}

// Chart is the payload returned for a single symbol and timeframe.
type Chart struct {
	Symbol    string        `json:"symbol"`
	Timeframe Timeframe     `json:"timeframe"`
	Candles   []ChartCandle `json:"candles"`
	Overlays  []Overlay     `json:"overlays"`
	Summary   ChartSummary  `json:"summary"`
}
