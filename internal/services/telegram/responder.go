package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgClient "github.com/admin/tg-bots/dose-bot/internal/adapters/secondary/telegram"
	"github.com/admin/tg-bots/dose-bot/internal/domain"
	"github.com/admin/tg-bots/dose-bot/internal/ports/service"
	"github.com/admin/tg-bots/dose-bot/internal/ports/telegram"
)

// Responder доставляет ответы ядра в Telegram
type Responder struct {
	Client telegram.IClient
	Log    *slog.Logger
}

func NewResponder(client telegram.IClient, log *slog.Logger) *Responder {
	return &Responder{Client: client, Log: log}
}

var _ service.IResponder = (*Responder)(nil)

// Reply в Telegram нет скрытых сообщений: ephemeral-ответ из группы уходит в личку вызвавшему.
// Если личка недоступна (бот не запущен пользователем), отвечаем в группе
func (r *Responder) Reply(ctx context.Context, in *domain.Interaction, reply domain.Reply) (domain.MessageRef, error) {
	msg := outgoing(reply)
	msg.ChatID = in.ChatID
	msg.ReplyToMessageID = in.MessageID

	if reply.Ephemeral && !in.Private {
		private := msg
		private.ChatID = in.User.ID
		private.ReplyToMessageID = 0

		id, err := r.Client.SendMessage(ctx, private)
		if err == nil {
			return domain.MessageRef{ChatID: private.ChatID, MessageID: id}, nil
		}
		if !tgClient.IsForbidden(err) {
			return domain.MessageRef{}, fmt.Errorf("failed to send private reply: %w", err)
		}
		r.Log.Debug("private chat unavailable, replying in group",
			"user_id", in.User.ID,
			"chat_id", in.ChatID,
		)
	}

	id, err := r.Client.SendMessage(ctx, msg)
	if err != nil {
		return domain.MessageRef{}, fmt.Errorf("failed to send reply: %w", err)
	}
	return domain.MessageRef{ChatID: msg.ChatID, MessageID: id}, nil
}

func (r *Responder) Edit(ctx context.Context, ref domain.MessageRef, reply domain.Reply) error {
	if err := r.Client.EditMessageText(ctx, ref, outgoing(reply)); err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}
	return nil
}

func outgoing(reply domain.Reply) domain.OutgoingMessage {
	return domain.OutgoingMessage{
		Text:       RenderHTML(reply),
		PreviewURL: reply.ImageURL,
		Keyboard:   Keyboard(reply.Buttons),
	}
}
