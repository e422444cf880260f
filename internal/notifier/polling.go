package notifier

import (
	"context"
	"strconv"
	"strings"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"CryptoFlow/internal/logger"
)

// CommandHandler is called when a user command is received.
type CommandHandler func(command string) string

// StartPolling long-polls Telegram for commands from the configured chat.
// Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	if !t.Enabled() {
		return
	}
	bot, err := t.api()
	if err != nil {
		logger.Error("telegram polling disabled: %v", err)
		return
	}

	u := tgbot.NewUpdate(0)
	u.Timeout = 30
	u.AllowedUpdates = []string{"message", "channel_post"}
	updates := bot.GetUpdatesChan(u)
	logger.Info("telegram polling started")

	for {
		select {
		case <-ctx.Done():
			bot.StopReceivingUpdates()
			logger.Info("telegram polling stopped")
			return
		case upd, ok := <-updates:
			if !ok {
				return
			}
			msg := upd.Message
			if msg == nil {
				msg = upd.ChannelPost
			}
			if msg == nil || !t.fromTarget(msg.Chat) {
				continue
			}
			text := strings.TrimSpace(msg.Text)
			if text == "" {
				continue
			}
			command := text
			if msg.IsCommand() {
				command = "/" + msg.Command()
			}
			logger.Info("received command: %s", command)
			if reply := handler(command); reply != "" {
				if err := t.Send(reply); err != nil {
					logger.Error("send reply: %v", err)
				}
			}
		}
	}
}

// fromTarget reports whether chat is the configured notification target.
func (t *TelegramNotifier) fromTarget(chat *tgbot.Chat) bool {
	if chat == nil {
		return false
	}
	if id, err := strconv.ParseInt(t.ChatID, 10, 64); err == nil {
		return chat.ID == id
	}
	return strings.EqualFold(strings.TrimPrefix(t.ChatID, "@"), chat.UserName)
}
