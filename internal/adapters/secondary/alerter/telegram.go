package alerter

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"unicode/utf8"

	"github.com/admin/tg-bots/dose-bot/internal/domain"
	"github.com/admin/tg-bots/dose-bot/internal/ports/telegram"
)

// лимит Telegram 4096 символов, оставляем запас под <pre> и экранирование
const maxAlertRunes = 3500

// Client алерты в служебный чат (или топик форума) через того же бота
type Client struct {
	tg       telegram.IClient
	chatID   int64
	threadID int64
	log      *slog.Logger
}

// NewClient nil, если алерты не настроены
func NewClient(cfg *Config, tg telegram.IClient, log *slog.Logger) *Client {
	if !cfg.Enabled() {
		return nil
	}
	return &Client{
		tg:       tg,
		chatID:   cfg.ChatID,
		threadID: cfg.MessageThreadID,
		log:      log,
	}
}

func (c *Client) SendAlert(ctx context.Context, message string) error {
	if c == nil || c.tg == nil {
		return fmt.Errorf("alerter client is not initialized")
	}

	_, err := c.tg.SendMessage(ctx, domain.OutgoingMessage{
		ChatID:   c.chatID,
		ThreadID: c.threadID,
		Text:     "<pre>" + html.EscapeString(truncate(message, maxAlertRunes)) + "</pre>",
	})
	if err != nil {
		c.log.Warn("failed to send alert", "error", err, "chat_id", c.chatID, "message_thread_id", c.threadID)
		return fmt.Errorf("failed to send alert: %w", err)
	}

	c.log.Debug("alert sent", "chat_id", c.chatID)
	return nil
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "…"
}
