package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"CryptoFlow/internal/history"
	"CryptoFlow/internal/logger"
	"CryptoFlow/internal/metrics"
	"CryptoFlow/internal/model"
	"CryptoFlow/internal/notifier"
	"CryptoFlow/internal/recorder"
)

// State is the phase of the scan-and-notify loop.
type State string

const (
	StateIdle      State = "IDLE"
	StateScanning  State = "SCANNING"
	StateNotifying State = "NOTIFYING"
	StateSleeping  State = "SLEEPING"
)

var (
	// ErrCycleRunning is reported when a cycle is requested while one is in flight.
	ErrCycleRunning = errors.New("scan cycle already running")
	// ErrStopped is reported for cycles requested after Stop.
	ErrStopped = errors.New("scheduler stopped")
)

// Scanner produces the ranked scan results. *collector.Collector satisfies it.
type Scanner interface {
	Scan(ctx context.Context) (*model.ScanSummary, error)
}

// Sender delivers chat messages. *notifier.TelegramNotifier satisfies it.
type Sender interface {
	Send(text string) error
	Enabled() bool
}

// CycleReport describes one finished cycle.
type CycleReport struct {
	StartedAt  time.Time
	Duration   time.Duration
	Symbols    int
	Qualified  int
	Sent       int // notifications attempted and recorded in history
	Failed     int // of Sent, how many the chat rejected
	Suppressed int // qualifying symbols already alerted within the window
	Purged     int
	Saved      bool
	ScanErr    error // data-source failure; the cycle still completes
	Err        error // cycle-level failure
}

// Scheduler runs the scan-and-notify cycle on a fixed interval.
type Scheduler struct {
	Cron      *cron.Cron
	Scanner   Scanner
	History   *history.Store
	Notifier  Sender
	Recorder  recorder.Recorder
	Ctx       context.Context
	SMALength int
	// SendPause separates consecutive notifications (chat rate limit).
	SendPause time.Duration
	// NotifyErrors sends cycle failures to the chat as well as the log.
	NotifyErrors bool
	// OnStateChange, when set, observes every state transition.
	OnStateChange func(State)

	running atomic.Bool
	cycles  sync.WaitGroup // cycles started by cron, RunNow or /scan
	stopped bool
	mu      sync.Mutex
	state   State
	last    *CycleReport
	entryID cron.EntryID
	every   time.Duration
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, sc Scanner, hs *history.Store, tn Sender, rec recorder.Recorder) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	cl := cronLogger{}
	return &Scheduler{
		Cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.SkipIfStillRunning(cl)),
		),
		Scanner:      sc,
		History:      hs,
		Notifier:     tn,
		Recorder:     rec,
		Ctx:          ctx,
		SMALength:    50,
		SendPause:    time.Second,
		NotifyErrors: true,
		state:        StateIdle,
	}
}

// Register schedules the cycle every interval.
func (s *Scheduler) Register(interval time.Duration) error {
	if interval <= 0 {
		return errors.New("interval must be positive")
	}
	id, err := s.Cron.AddFunc(fmt.Sprintf("@every %s", interval), s.scheduledCycle)
	if err != nil {
		return errors.Wrap(err, "register scan cycle")
	}
	s.entryID = id
	s.every = interval
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	logger.Info("scheduler started, cycle every %s", s.every)
}

// Stop stops the cron scheduler and waits for every running cycle to
// finish, including ones started outside cron. Later cycles fail with ErrStopped.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
	<-s.Cron.Stop().Done()
	s.cycles.Wait()
	s.setState(StateIdle)
	logger.Info("scheduler stopped")
}

// Announce sends the startup message.
func (s *Scheduler) Announce() {
	s.trySend(notifier.FormatStartup(s.every))
}

// RunNow executes a cycle immediately (RUN_ON_START / manual trigger).
func (s *Scheduler) RunNow() {
	s.scheduledCycle()
}

// State returns the current loop phase.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LastReport returns the most recent cycle report, nil before the first cycle.
func (s *Scheduler) LastReport() *CycleReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return nil
	}
	r := *s.last
	return &r
}

func (s *Scheduler) setState(st State) {
	s.mu.Lock()
	s.state = st
	hook := s.OnStateChange
	s.mu.Unlock()
	if hook != nil {
		hook(st)
	}
}

// begin claims the single cycle slot and registers the cycle with Stop.
func (s *Scheduler) begin() error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrCycleRunning
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		s.running.Store(false)
		return ErrStopped
	}
	s.cycles.Add(1)
	return nil
}

// scheduledCycle is the top-level recovery boundary: nothing escapes it.
func (s *Scheduler) scheduledCycle() {
	report := s.RunCycle(s.Ctx)
	if report.Err == nil || errors.Is(report.Err, ErrCycleRunning) || errors.Is(report.Err, ErrStopped) ||
		errors.Is(report.Err, context.Canceled) {
		return
	}
	metrics.CycleErrorsTotal.Inc()
	logger.Error("scan cycle failed: %v", report.Err)
	if s.NotifyErrors {
		s.trySend(notifier.FormatError(report.Err))
	}
}

// RunCycle performs one load → purge → scan → notify → save pass. Errors and
// panics are captured in the report; the scheduler keeps running either way.
// Between cycles the state is SLEEPING; it returns to IDLE when the next
// cycle wakes up, then moves to SCANNING.
func (s *Scheduler) RunCycle(ctx context.Context) (report CycleReport) {
	report.StartedAt = time.Now()
	if err := s.begin(); err != nil {
		report.Err = err
		return report
	}
	defer s.cycles.Done()
	metrics.CyclesTotal.Inc()

	defer func() {
		if r := recover(); r != nil {
			report.Err = errors.Errorf("panic: %v", r)
			logger.Error("scan cycle panic: %v\n%s", r, debug.Stack())
		}
		report.Duration = time.Since(report.StartedAt)
		metrics.CycleDuration.Observe(report.Duration.Seconds())
		s.record(&report)

		s.mu.Lock()
		s.last = &report
		s.mu.Unlock()
		s.setState(StateSleeping)
		s.running.Store(false)
	}()

	s.setState(StateIdle)
	s.setState(StateScanning)
	if err := s.History.Load(); err != nil {
		report.Err = errors.Wrap(err, "load history")
		return report
	}
	report.Purged = s.History.Purge()

	sum, err := s.Scanner.Scan(ctx)
	if err != nil {
		// Exchange hiccups are not worth a chat message; the next cycle retries.
		report.ScanErr = err
		logger.Warn("scan: %v", err)
	}
	if sum == nil {
		sum = &model.ScanSummary{}
	}
	report.Symbols = sum.Symbols
	report.Qualified = len(sum.Results)
	// A cancelled scan is partial and unranked: nothing from it is sent.
	if err := ctx.Err(); err != nil {
		report.Err = errors.Wrap(err, "scan interrupted")
		return report
	}

	if len(sum.Results) == 0 {
		logger.Info("no symbols above SMA %d", s.SMALength)
		return report
	}

	s.setState(StateNotifying)
	for _, res := range sum.Results {
		if err := ctx.Err(); err != nil {
			report.Err = errors.Wrap(err, "notify interrupted")
			break
		}
		if s.History.Seen(res.Symbol) {
			report.Suppressed++
			continue
		}
		if report.Sent > 0 && s.SendPause > 0 {
			select {
			case <-ctx.Done():
				report.Err = errors.Wrap(ctx.Err(), "notify interrupted")
			case <-time.After(s.SendPause):
			}
			if report.Err != nil {
				break
			}
		}

		if err := s.Notifier.Send(notifier.FormatAlert(res, s.SMALength)); err != nil {
			report.Failed++
			metrics.NotifyErrorsTotal.Inc()
			logger.Error("send alert %s: %v", res.Symbol, err)
		} else {
			metrics.AlertsSentTotal.Inc()
			if err := s.Recorder.RecordAlert(&recorder.AlertEvent{
				SentAt: time.Now(), Symbol: res.Symbol, Price: res.Price, SMA: res.SMA, Deviation: res.Deviation,
			}); err != nil {
				logger.Error("record alert: %v", err)
			}
		}
		s.History.Mark(res.Symbol)
		report.Sent++
	}

	if report.Sent > 0 {
		logger.Info("%d new notifications (%d failed)", report.Sent, report.Failed)
		if err := s.History.Save(); err != nil {
			report.Err = errors.Wrap(err, "save history")
			return report
		}
		report.Saved = true
	} else {
		logger.Info("no new setups, %d already alerted", report.Suppressed)
	}
	return report
}

func (s *Scheduler) record(r *CycleReport) {
	evt := &recorder.CycleEvent{
		StartedAt:  r.StartedAt,
		Duration:   r.Duration,
		Symbols:    r.Symbols,
		Qualified:  r.Qualified,
		AlertsSent: r.Sent - r.Failed,
		Suppressed: r.Suppressed,
	}
	switch {
	case r.Err != nil:
		evt.Error = r.Err.Error()
	case r.ScanErr != nil:
		evt.Error = r.ScanErr.Error()
	}
	if err := s.Recorder.RecordCycle(evt); err != nil {
		logger.Error("record cycle: %v", err)
	}
}

// Status collects the current state for the /status command.
func (s *Scheduler) Status() notifier.CycleStatus {
	st := notifier.CycleStatus{State: string(s.State()), HistorySize: s.History.Len()}
	if r := s.LastReport(); r != nil {
		st.LastRun = r.StartedAt
		st.Duration = r.Duration
		st.Symbols = r.Symbols
		st.Qualified = r.Qualified
		st.Sent = r.Sent
		if r.Err != nil {
			st.LastErr = r.Err.Error()
		} else if r.ScanErr != nil {
			st.LastErr = r.ScanErr.Error()
		}
	}
	if s.entryID != 0 {
		st.NextRun = s.Cron.Entry(s.entryID).Next
	}
	return st
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	switch command {
	case "/scan":
		r := s.RunCycle(s.Ctx)
		if errors.Is(r.Err, ErrCycleRunning) {
			return "⏳ A scan is already running."
		}
		if errors.Is(r.Err, ErrStopped) {
			return "Scanner is shutting down."
		}
		if r.Err != nil {
			return notifier.FormatError(r.Err)
		}
		return fmt.Sprintf("🔍 Scan finished: %d above SMA %d, %d new alerts, %d already sent.",
			r.Qualified, s.SMALength, r.Sent, r.Suppressed)
	case "/status":
		return notifier.FormatStatus(s.Status())
	case "/history":
		now := s.History.Now()
		var active []history.Entry
		for _, e := range s.History.Snapshot() {
			if e.ExpiresAt.After(now) {
				active = append(active, e)
			}
		}
		return notifier.FormatHistory(active, now)
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) trySend(text string) {
	if err := s.Notifier.Send(text); err != nil {
		logger.Error("send notification: %v", err)
	}
}

// cronLogger routes cron's own messages through zap.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.L().Sugar().Debugw(msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.L().Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
