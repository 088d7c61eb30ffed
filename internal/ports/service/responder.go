package service

import (
	"context"

	"github.com/admin/tg-bots/dose-bot/internal/domain"
)

// IResponder доставка ответов на платформу
type IResponder interface {
	// Reply отвечает на взаимодействие и возвращает ссылку на отправленное сообщение
	Reply(ctx context.Context, in *domain.Interaction, reply domain.Reply) (domain.MessageRef, error)
	// Edit заменяет содержимое ранее отправленного сообщения
	Edit(ctx context.Context, ref domain.MessageRef, reply domain.Reply) error
}
