// Package telegram forwards accepted prayer requests to a Telegram chat
// so the prayer team sees them as they arrive.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"prayer_bot/internal/model"
)

type telegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Notifier sends one Telegram message per prayer request.
type Notifier struct {
	api    telegramAPI
	chatID int64
	log    *slog.Logger
}

// New creates a Notifier posting to chatID with the given bot token.
func New(token string, chatID int64, log *slog.Logger) (*Notifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	log.Info("telegram notifier ready", "bot", api.Self.UserName, "chat_id", chatID)
	return &Notifier{api: api, chatID: chatID, log: log}, nil
}

// NotifyRequest forwards req to the configured chat.
func (n *Notifier) NotifyRequest(_ context.Context, req model.PrayerRequest) error {
	msg := tgbotapi.NewMessage(n.chatID, FormatRequest(req))
	msg.DisableWebPagePreview = true
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	n.log.Debug("prayer request forwarded", "chat_id", n.chatID, "name", req.Name)
	return nil
}

// FormatRequest formats a prayer request as a Telegram message.
func FormatRequest(req model.PrayerRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[Prayer request] %s\n\n", req.SubmittedAt.Format(model.RowTimeLayout))
	b.WriteString("From: ")
	b.WriteString(req.Name)
	b.WriteString("\n\n")
	b.WriteString(req.Text)
	return b.String()
}
