package notifier

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"

	"CryptoFlow/internal/logger"
)

// TelegramNotifier sends messages via the Telegram Bot API. A notifier
// without token or chat id is disabled: Send does nothing and returns nil.
type TelegramNotifier struct {
	BotToken string
	ChatID   string
	Client   *http.Client
	// Endpoint is the Bot API URL pattern, tgbot.APIEndpoint unless overridden in tests.
	Endpoint string

	mu  sync.Mutex
	bot *tgbot.BotAPI
}

// NewTelegramNotifier creates a notifier with optional proxy support.
// The bot connection is established lazily on the first send.
func NewTelegramNotifier(botToken, chatID, proxyURL string) *TelegramNotifier {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	t := &TelegramNotifier{
		BotToken: botToken,
		ChatID:   chatID,
		Endpoint: tgbot.APIEndpoint,
		Client: &http.Client{
			Timeout:   10 * time.Second,
			Transport: transport,
		},
	}
	if !t.Enabled() {
		logger.Warn("telegram token or chat id missing, notifications disabled")
	}
	return t
}

// Enabled reports whether both secrets are configured.
func (t *TelegramNotifier) Enabled() bool {
	return t != nil && t.BotToken != "" && t.ChatID != ""
}

// Send delivers an HTML message with link previews suppressed. Failures are
// returned to the caller; there is no retry.
func (t *TelegramNotifier) Send(text string) error {
	if !t.Enabled() {
		return nil
	}
	bot, err := t.api()
	if err != nil {
		return err
	}
	msg, err := t.newMessage(text)
	if err != nil {
		return err
	}
	if _, err := bot.Send(msg); err != nil {
		return errors.Wrap(err, "telegram send")
	}
	return nil
}

func (t *TelegramNotifier) newMessage(text string) (tgbot.MessageConfig, error) {
	var msg tgbot.MessageConfig
	switch id, err := strconv.ParseInt(t.ChatID, 10, 64); {
	case err == nil:
		msg = tgbot.NewMessage(id, text)
	case strings.HasPrefix(t.ChatID, "@"):
		msg = tgbot.NewMessageToChannel(t.ChatID, text)
	default:
		return msg, errors.Errorf("invalid telegram chat id %q", t.ChatID)
	}
	msg.ParseMode = tgbot.ModeHTML
	msg.DisableWebPagePreview = true
	return msg, nil
}

// api connects on first use and caches the bot. A failed connection is
// retried on the next call.
func (t *TelegramNotifier) api() (*tgbot.BotAPI, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.bot != nil {
		return t.bot, nil
	}
	endpoint := t.Endpoint
	if endpoint == "" {
		endpoint = tgbot.APIEndpoint
	}
	bot, err := tgbot.NewBotAPIWithClient(t.BotToken, endpoint, t.Client)
	if err != nil {
		return nil, errors.Wrap(err, "telegram connect")
	}
	logger.Info("telegram connected as @%s", bot.Self.UserName)
	t.bot = bot
	return bot, nil
}
