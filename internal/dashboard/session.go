package dashboard

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"CryptoFlow/internal/model"
)

const (
	sessionCookie = "cf_session"
	sessionIdle   = 24 * time.Hour
)

// Session is the per-browser dashboard state.
type Session struct {
	ID             string
	SelectedSymbol string
	Timeframe      model.Timeframe
	ShowSMA        bool
	ShowRSI        bool
	Results        []model.ScanResult
	LastScan       time.Time
	lastSeen       time.Time
}

// SessionView is the JSON/template shape of a session.
type SessionView struct {
	SelectedSymbol string             `json:"selected_symbol"`
	Timeframe      model.Timeframe    `json:"timeframe"`
	ShowSMA        bool               `json:"show_sma"`
	ShowRSI        bool               `json:"show_rsi"`
	Results        []model.ScanResult `json:"results"`
	LastScan       *time.Time         `json:"last_scan"`
	Timeframes     []model.Timeframe  `json:"timeframes"`
}

// Settings is the body of POST /api/settings. Nil fields are left unchanged.
type Settings struct {
	Timeframe string `json:"timeframe"`
	ShowSMA   *bool  `json:"show_sma"`
	ShowRSI   *bool  `json:"show_rsi"`
}

// SessionStore keeps sessions in memory, keyed by cookie id.
type SessionStore struct {
	DefaultSymbol string
	Now           func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewSessionStore(defaultSymbol string) *SessionStore {
	if defaultSymbol == "" {
		defaultSymbol = "BTCUSDT"
	}
	return &SessionStore{
		DefaultSymbol: defaultSymbol,
		Now:           time.Now,
		sessions:      map[string]*Session{},
	}
}

func (s *SessionStore) newSession() *Session {
	return &Session{
		ID:             uuid.NewString(),
		SelectedSymbol: s.DefaultSymbol,
		Timeframe:      model.TF1d,
		ShowSMA:        true,
		Results:        []model.ScanResult{},
	}
}

// Acquire returns the session id for the request, creating a session and
// setting the cookie when the browser has none or an unknown one.
func (s *SessionStore) Acquire(c *gin.Context) string {
	id, _ := c.Cookie(sessionCookie)

	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.Now()
	s.prune(now)

	sess, ok := s.sessions[id]
	if !ok {
		sess = s.newSession()
		s.sessions[sess.ID] = sess
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, sess.ID, int(sessionIdle/time.Second), "/", "", false, true)
	}
	sess.lastSeen = now
	return sess.ID
}

// Update runs fn on the session under the store lock and returns its view.
func (s *SessionStore) Update(id string, fn func(*Session)) SessionView {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = s.newSession()
		sess.ID = id
		s.sessions[id] = sess
	}
	if fn != nil {
		fn(sess)
	}
	return sess.view()
}

// View returns a copy of the session state.
func (s *SessionStore) View(id string) SessionView {
	return s.Update(id, nil)
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *SessionStore) prune(now time.Time) {
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeen) > sessionIdle {
			delete(s.sessions, id)
		}
	}
}

func (sess *Session) view() SessionView {
	v := SessionView{
		SelectedSymbol: sess.SelectedSymbol,
		Timeframe:      sess.Timeframe,
		ShowSMA:        sess.ShowSMA,
		ShowRSI:        sess.ShowRSI,
		Results:        append([]model.ScanResult(nil), sess.Results...),
		Timeframes:     model.Timeframes,
	}
	if v.Results == nil {
		v.Results = []model.ScanResult{}
	}
	if !sess.LastScan.IsZero() {
		t := sess.LastScan
		v.LastScan = &t
	}
	return v
}

// NormalizeSymbol upper-cases s and reports whether it looks like an
// exchange symbol.
func NormalizeSymbol(s string) (string, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" || len(s) > 32 {
		return "", false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return "", false
		}
	}
	return s, true
}
