package model

import "time"

// ScanResult is one qualifying symbol from a scan pass. Not persisted.
type ScanResult struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	SMA       float64 `json:"sma"`
	Deviation float64 `json:"deviation"` // percent above SMA, 2 decimals
}

// ScanSummary describes a finished scan pass.
type ScanSummary struct {
	Started  time.Time
	Finished time.Time
	Symbols  int // symbols returned by the exchange
	Skipped  int // symbols dropped because of fetch errors or short history
	Results  []ScanResult
}

// Duration returns how long the pass took.
func (s ScanSummary) Duration() time.Duration { return s.Finished.Sub(s.Started) }
