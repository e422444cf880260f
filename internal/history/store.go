package history

import (
	"sort"
	"sync"
	"time"
)

// Store is the alert history: an expiring symbol→timestamp map backed by a
// JSON file. The scanner loop is its only writer.
type Store struct {
	mu       sync.Mutex
	entries  map[string]int64
	filePath string
	window   time.Duration

	// Now is the clock; tests replace it.
	Now func() time.Time
}

// Entry is one suppressed symbol.
type Entry struct {
	Symbol     string
	NotifiedAt time.Time
	ExpiresAt  time.Time
}

// NewStore creates an empty Store. Call Load to read the file.
func NewStore(filePath string, window time.Duration) *Store {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Store{
		entries:  map[string]int64{},
		filePath: filePath,
		window:   window,
		Now:      time.Now,
	}
}

// Load replaces the in-memory entries with the file contents.
func (s *Store) Load() error {
	entries, err := Load(s.filePath)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
	return nil
}

// Purge drops expired entries and returns how many were removed.
func (s *Store) Purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	before := len(s.entries)
	s.entries = Purge(s.entries, s.Now(), s.window)
	return before - len(s.entries)
}

// Seen reports whether symbol was alerted within the window.
func (s *Store) Seen(symbol string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ts, ok := s.entries[symbol]
	if !ok {
		return false
	}
	return s.Now().Unix()-ts < int64(s.window/time.Second)
}

// Mark records symbol as alerted now.
func (s *Store) Mark(symbol string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[symbol] = s.Now().Unix()
}

// Save writes all entries to disk, replacing the file.
func (s *Store) Save() error {
	s.mu.Lock()
	snapshot := make(map[string]int64, len(s.entries))
	for k, v := range s.entries {
		snapshot[k] = v
	}
	s.mu.Unlock()
	return Save(s.filePath, snapshot)
}

// Len returns the number of entries held in memory.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Snapshot returns entries sorted by soonest expiry.
func (s *Store) Snapshot() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, 0, len(s.entries))
	for sym, ts := range s.entries {
		at := time.Unix(ts, 0)
		out = append(out, Entry{Symbol: sym, NotifiedAt: at, ExpiresAt: at.Add(s.window)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NotifiedAt.Equal(out[j].NotifiedAt) {
			return out[i].Symbol < out[j].Symbol
		}
		return out[i].NotifiedAt.Before(out[j].NotifiedAt)
	})
	return out
}

// Window returns the suppression window.
func (s *Store) Window() time.Duration { return s.window }
