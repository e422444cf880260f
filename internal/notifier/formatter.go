package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"CryptoFlow/internal/history"
	"CryptoFlow/internal/model"
)

// FuturesURL is the exchange page linked from alerts.
const FuturesURL = "https://www.binance.com/en/futures/"

// FormatAlert formats one qualifying symbol into an HTML Telegram message.
func FormatAlert(r model.ScanResult, smaLength int) string {
	emoji := "✅"
	if r.Deviation > 5 {
		emoji = "🚀"
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("<b>%s NEW SETUP: %s</b>\n\n", emoji, html.EscapeString(r.Symbol)))
	b.WriteString(fmt.Sprintf("💰 <b>Price:</b> $%s\n", formatPrice(r.Price)))
	b.WriteString(fmt.Sprintf("📈 <b>Above SMA %d:</b> %.2f%% (SMA $%s)\n", smaLength, r.Deviation, formatPrice(r.SMA)))
	b.WriteString(fmt.Sprintf("🔗 <a href='%s%s'>Open on Binance</a>", FuturesURL, html.EscapeString(r.Symbol)))
	return b.String()
}

// FormatStartup is sent once when the scanner comes online.
func FormatStartup(interval time.Duration) string {
	return fmt.Sprintf("🤖 <b>System online!</b> Scanning every %s.", interval)
}

// FormatError reports a failed cycle.
func FormatError(err error) string {
	return fmt.Sprintf("⚠️ <b>System error:</b> %s", html.EscapeString(err.Error()))
}

// CycleStatus is the scheduler state rendered by FormatStatus.
type CycleStatus struct {
	State       string
	LastRun     time.Time
	Duration    time.Duration
	Symbols     int
	Qualified   int
	Sent        int
	LastErr     string
	HistorySize int
	NextRun     time.Time
}

// FormatStatus formats the scheduler state for display.
func FormatStatus(s CycleStatus) string {
	var b strings.Builder
	b.WriteString("📦 <b>Scanner status</b>\n\n")
	b.WriteString(fmt.Sprintf("State: %s\n", s.State))
	if s.LastRun.IsZero() {
		b.WriteString("Last cycle: never\n")
	} else {
		b.WriteString(fmt.Sprintf("Last cycle: %s (%s)\n", s.LastRun.Format("2006-01-02 15:04"), s.Duration.Round(time.Second)))
		b.WriteString(fmt.Sprintf("Scanned: %d | Above SMA: %d | Sent: %d\n", s.Symbols, s.Qualified, s.Sent))
	}
	if s.LastErr != "" {
		b.WriteString(fmt.Sprintf("Last error: %s\n", html.EscapeString(s.LastErr)))
	}
	b.WriteString(fmt.Sprintf("Suppressed symbols: %d\n", s.HistorySize))
	if !s.NextRun.IsZero() {
		b.WriteString(fmt.Sprintf("Next cycle: %s\n", s.NextRun.Format("2006-01-02 15:04")))
	}
	return b.String()
}

// FormatHistory lists suppressed symbols and when they become eligible again.
func FormatHistory(entries []history.Entry, now time.Time) string {
	if len(entries) == 0 {
		return "📭 No alerts in the last 24h."
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🕒 <b>Alerted in the last 24h</b> (%d)\n\n", len(entries)))
	for _, e := range entries {
		left := e.ExpiresAt.Sub(now)
		if left < 0 {
			left = 0
		}
		b.WriteString(fmt.Sprintf("• %s at %s, eligible in %s\n",
			html.EscapeString(e.Symbol), e.NotifiedAt.Format("01-02 15:04"), left.Round(time.Minute)))
	}
	return b.String()
}

// FormatHelp lists the supported commands.
func FormatHelp() string {
	return "Available commands:\n• /scan - run a scan now\n• /status - scanner status\n• /history - symbols alerted in the last 24h"
}

// formatPrice keeps small-cap prices readable without trailing noise.
func formatPrice(p float64) string {
	switch {
	case p >= 1000:
		return fmt.Sprintf("%.2f", p)
	case p >= 1:
		return fmt.Sprintf("%.4f", p)
	default:
		return fmt.Sprintf("%.8g", p)
	}
}
