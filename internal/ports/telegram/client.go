package telegram

import (
	"context"

	"github.com/admin/tg-bots/dose-bot/internal/domain"
)

// IClient интерфейс для клиента Telegram API
type IClient interface {
	// SendMessage отправляет HTML-сообщение и возвращает message_id
	SendMessage(ctx context.Context, msg domain.OutgoingMessage) (int64, error)
	EditMessageText(ctx context.Context, ref domain.MessageRef, msg domain.OutgoingMessage) error
	AnswerCallbackQuery(ctx context.Context, callbackID string, text string, showAlert bool) error
	AnswerInlineQuery(ctx context.Context, queryID string, suggestions []domain.Suggestion) error
	GetChatMember(ctx context.Context, chatID, userID int64) (*domain.ChatMember, error)
	GetMe(ctx context.Context) (*domain.TelegramUser, error)
	SetMyCommands(ctx context.Context, commands []domain.BotCommand) error
}
