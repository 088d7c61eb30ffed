package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"log/slog"

	"github.com/admin/tg-bots/dose-bot/internal/domain"
	kafkaPorts "github.com/admin/tg-bots/dose-bot/internal/ports/kafka"
)

// UpdateHandler обработчик обновления Telegram (services/telegram.Service.HandleUpdate)
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update *domain.Update) error
}

// UpdatesHandler читает обновления Telegram, которые вебхук положил в топик
type UpdatesHandler struct {
	Handler UpdateHandler
	Log     *slog.Logger
}

// NewUpdatesHandler создаёт handler топика обновлений
func NewUpdatesHandler(handler UpdateHandler, log *slog.Logger) kafkaPorts.MessageHandler {
	return &UpdatesHandler{
		Handler: handler,
		Log:     log,
	}
}

// HandleMessage битое сообщение не повторяем: оно не станет валидным
func (h *UpdatesHandler) HandleMessage(ctx context.Context, key string, value []byte) error {
	var update domain.Update
	if err := json.Unmarshal(value, &update); err != nil {
		h.Log.Warn("malformed update in kafka", "error", err, "key", key)
		return domain.WrapBusinessError(fmt.Errorf("failed to unmarshal update: %w", err))
	}

	h.Log.Debug("processing update from kafka",
		"update_id", update.UpdateID,
		"key", key,
	)

	if err := h.Handler.HandleUpdate(ctx, &update); err != nil {
		return fmt.Errorf("failed to handle update %d: %w", update.UpdateID, err)
	}
	return nil
}
