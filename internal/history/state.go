package history

import (
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

// DefaultWindow is how long a symbol stays suppressed after an alert.
const DefaultWindow = 24 * time.Hour

// Load reads the {symbol: unix_seconds} file. A missing file is an empty history.
// Fractional timestamps are accepted and truncated.
func Load(filePath string) (map[string]int64, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]int64{}, nil
		}
		return nil, errors.Wrap(err, "read history")
	}
	if len(data) == 0 {
		return map[string]int64{}, nil
	}
	var raw map[string]float64
	if err := sonic.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, "decode history %s", filePath)
	}
	entries := make(map[string]int64, len(raw))
	for sym, ts := range raw {
		entries[sym] = int64(math.Floor(ts))
	}
	return entries, nil
}

// Save overwrites the history file wholesale.
func Save(filePath string, entries map[string]int64) error {
	if entries == nil {
		entries = map[string]int64{}
	}
	data, err := sonic.ConfigStd.MarshalIndent(entries, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode history")
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(err, "create history dir")
		}
	}
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return errors.Wrap(err, "write history")
	}
	return nil
}

// Purge returns the entries younger than window relative to now. Entries
// whose age is >= window are dropped; the input map is not modified.
func Purge(entries map[string]int64, now time.Time, window time.Duration) map[string]int64 {
	limit := int64(window / time.Second)
	nowSec := now.Unix()
	kept := make(map[string]int64, len(entries))
	for sym, ts := range entries {
		if nowSec-ts < limit {
			kept[sym] = ts
		}
	}
	return kept
}
