package notifier

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"CryptoFlow/internal/history"
	"CryptoFlow/internal/model"
)

type fakeTelegram struct {
	mu    sync.Mutex
	sent  []map[string]string
	fail  bool
	token string
}

func (f *fakeTelegram) handler(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/bot" + f.token + "/getMe":
		_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"flow","username":"flow_bot"}}`))
	case "/bot" + f.token + "/sendMessage":
		if f.fail {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
			return
		}
		f.mu.Lock()
		f.sent = append(f.sent, map[string]string{
			"chat_id":                  r.Form.Get("chat_id"),
			"text":                     r.Form.Get("text"),
			"parse_mode":               r.Form.Get("parse_mode"),
			"disable_web_page_preview": r.Form.Get("disable_web_page_preview"),
		})
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":7,"date":0,"chat":{"id":42,"type":"private"}}}`))
	default:
		http.NotFound(w, r)
	}
}

func newTestNotifier(t *testing.T, fake *fakeTelegram, chatID string) *TelegramNotifier {
	srv := httptest.NewServer(http.HandlerFunc(fake.handler))
	t.Cleanup(srv.Close)
	n := NewTelegramNotifier(fake.token, chatID, "")
	n.Endpoint = srv.URL + "/bot%s/%s"
	return n
}

func TestSend_PayloadFields(t *testing.T) {
	fake := &fakeTelegram{token: "123:abc"}
	n := newTestNotifier(t, fake, "42")

	if err := n.Send("<b>hi</b>"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(fake.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(fake.sent))
	}
	got := fake.sent[0]
	if got["chat_id"] != "42" || got["text"] != "<b>hi</b>" {
		t.Errorf("unexpected payload: %v", got)
	}
	if got["parse_mode"] != "HTML" || got["disable_web_page_preview"] != "true" {
		t.Errorf("expected HTML mode and suppressed previews, got %v", got)
	}
}

func TestSend_ChannelTarget(t *testing.T) {
	fake := &fakeTelegram{token: "123:abc"}
	n := newTestNotifier(t, fake, "@flow_alerts")
	if err := n.Send("x"); err != nil {
		t.Fatal(err)
	}
	if fake.sent[0]["chat_id"] != "@flow_alerts" {
		t.Errorf("expected channel username, got %q", fake.sent[0]["chat_id"])
	}
}

func TestSend_ErrorsAreReturned(t *testing.T) {
	fake := &fakeTelegram{token: "123:abc", fail: true}
	n := newTestNotifier(t, fake, "42")
	if err := n.Send("x"); err == nil {
		t.Error("expected delivery error")
	}

	bad := newTestNotifier(t, &fakeTelegram{token: "123:abc"}, "not-a-chat")
	if err := bad.Send("x"); err == nil {
		t.Error("expected invalid chat id error")
	}
}

func TestSend_DisabledIsNoop(t *testing.T) {
	n := NewTelegramNotifier("", "42", "")
	if n.Enabled() {
		t.Fatal("notifier without token should be disabled")
	}
	if err := n.Send("x"); err != nil {
		t.Errorf("disabled send should be a no-op, got %v", err)
	}
}

func TestFormatAlert(t *testing.T) {
	hot := FormatAlert(model.ScanResult{Symbol: "SOLUSDT", Price: 150.5, SMA: 140, Deviation: 7.5}, 50)
	if !strings.Contains(hot, "🚀") || !strings.Contains(hot, "SOLUSDT") {
		t.Errorf("expected rocket alert for SOLUSDT, got %q", hot)
	}
	if !strings.Contains(hot, "7.50%") || !strings.Contains(hot, "SMA 50") {
		t.Errorf("deviation missing: %q", hot)
	}
	if !strings.Contains(hot, FuturesURL+"SOLUSDT") {
		t.Errorf("futures link missing: %q", hot)
	}

	mild := FormatAlert(model.ScanResult{Symbol: "XRPUSDT", Price: 0.5123, SMA: 0.5, Deviation: 2.46}, 50)
	if !strings.Contains(mild, "✅") || strings.Contains(mild, "🚀") {
		t.Errorf("expected check-mark alert, got %q", mild)
	}
}

func TestFormatError_Escapes(t *testing.T) {
	got := FormatError(errors.New("bad <tag>"))
	if !strings.Contains(got, "bad &lt;tag&gt;") {
		t.Errorf("error text not escaped: %q", got)
	}
}

func TestFormatHistory(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	if got := FormatHistory(nil, now); !strings.Contains(got, "No alerts") {
		t.Errorf("unexpected empty output: %q", got)
	}
	got := FormatHistory([]history.Entry{{
		Symbol:     "BTCUSDT",
		NotifiedAt: now.Add(-2 * time.Hour),
		ExpiresAt:  now.Add(22 * time.Hour),
	}}, now)
	if !strings.Contains(got, "BTCUSDT") || !strings.Contains(got, "22h0m0s") {
		t.Errorf("unexpected history output: %q", got)
	}
}

func TestFormatStatus(t *testing.T) {
	got := FormatStatus(CycleStatus{State: "SLEEPING", HistorySize: 3})
	if !strings.Contains(got, "never") || !strings.Contains(got, "Suppressed symbols: 3") {
		t.Errorf("unexpected status: %q", got)
	}
}
