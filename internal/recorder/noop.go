package recorder

import "CryptoFlow/internal/logger"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordCycle(_ *CycleEvent) error          { return nil }
func (n *NoopRecorder) RecordAlert(_ *AlertEvent) error          { return nil }
func (n *NoopRecorder) RecentAlerts(_ int) ([]AlertEvent, error) { return nil, nil }
func (n *NoopRecorder) Close() error                             { return nil }

// Open returns a SQLite recorder at dbPath, or a no-op recorder when the
// path is empty or the database cannot be opened.
func Open(dbPath string) Recorder {
	if dbPath == "" {
		return NewNoopRecorder()
	}
	r, err := NewSQLiteRecorder(dbPath)
	if err != nil {
		logger.Warn("init sqlite recorder failed, using noop: %v", err)
		return NewNoopRecorder()
	}
	return r
}
