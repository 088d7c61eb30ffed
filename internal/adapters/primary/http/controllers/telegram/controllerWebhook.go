package telegram

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/admin/tg-bots/dose-bot/internal/domain"
	kafkaPorts "github.com/admin/tg-bots/dose-bot/internal/ports/kafka"
)

const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// UpdateHandler services/telegram.Service
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update *domain.Update) error
}

type Controller struct {
	TgService UpdateHandler
	Producer  kafkaPorts.IKafkaProducer // если задан, обновления уходят в топик, а не обрабатываются сразу
	Log       *slog.Logger

	secret string
}

func New(tgService UpdateHandler, producer kafkaPorts.IKafkaProducer, secret string, log *slog.Logger) *Controller {
	return &Controller{
		TgService: tgService,
		Producer:  producer,
		Log:       log,
		secret:    secret,
	}
}

func (c *Controller) RegisterRoutes(router *gin.Engine) {
	router.POST("/webhook/", c.handleWebhook)
}

func (c *Controller) handleWebhook(ctx *gin.Context) {
	if c.secret != "" {
		got := ctx.GetHeader(SecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(c.secret)) != 1 {
			c.Log.Warn("webhook with invalid secret token", "remote_addr", ctx.ClientIP())
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "invalid secret token"})
			return
		}
	}

	body, err := ctx.GetRawData()
	if err != nil {
		c.Log.Error("failed to read webhook body", "error", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	var update domain.Update
	if err := bindUpdate(body, &update); err != nil {
		c.Log.Error("failed to bind webhook request", "error", err)
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	c.Log.Debug("received webhook update", "update_id", update.UpdateID)

	if c.Producer != nil {
		if err := c.Producer.Send(ctx.Request.Context(), partitionKey(&update), body); err != nil {
			c.Log.Error("failed to enqueue update",
				"error", err,
				"update_id", update.UpdateID,
			)
			// 500 - Telegram повторит доставку
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to enqueue update"})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}

	if err := c.TgService.HandleUpdate(ctx.Request.Context(), &update); err != nil {
		c.Log.Error("failed to handle update",
			"error", err,
			"update_id", update.UpdateID,
		)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process update"})
		return
	}

	// Telegram ожидает 200 OK в ответ
	ctx.JSON(http.StatusOK, gin.H{"ok": true})
}

// partitionKey обновления одного чата попадают в одну партицию
func partitionKey(update *domain.Update) string {
	switch {
	case update.Message != nil && update.Message.Chat != nil:
		return strconv.FormatInt(update.Message.Chat.ID, 10)
	case update.CallbackQuery != nil && update.CallbackQuery.Message != nil && update.CallbackQuery.Message.Chat != nil:
		return strconv.FormatInt(update.CallbackQuery.Message.Chat.ID, 10)
	case update.InlineQuery != nil && update.InlineQuery.From != nil:
		return strconv.FormatInt(update.InlineQuery.From.ID, 10)
	}
	return strconv.FormatInt(update.UpdateID, 10)
}

func bindUpdate(body []byte, update *domain.Update) error {
	if len(body) == 0 {
		return fmt.Errorf("empty body")
	}
	if err := json.Unmarshal(body, update); err != nil {
		return fmt.Errorf("failed to unmarshal update: %w", err)
	}
	return nil
}
