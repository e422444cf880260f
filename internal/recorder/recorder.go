package recorder

import "time"

// CycleEvent summarises one scan-and-notify cycle.
type CycleEvent struct {
	StartedAt  time.Time
	Duration   time.Duration
	Symbols    int
	Qualified  int
	AlertsSent int
	Suppressed int    // qualifying symbols skipped because of alert history
	Error      string // empty on success
}

// AlertEvent records one delivered alert.
type AlertEvent struct {
	SentAt    time.Time `json:"sent_at"`
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	SMA       float64   `json:"sma"`
	Deviation float64   `json:"deviation"`
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordCycle(evt *CycleEvent) error
	RecordAlert(evt *AlertEvent) error
	RecentAlerts(limit int) ([]AlertEvent, error)
	Close() error
}
