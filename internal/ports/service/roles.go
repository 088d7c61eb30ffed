package service

import (
	"context"

	"github.com/admin/tg-bots/dose-bot/internal/domain"
)

// IRoleResolver эффективные права участника в чате
type IRoleResolver interface {
	BotRole(ctx context.Context, chatID int64) (domain.Role, error)
	UserRole(ctx context.Context, chatID, userID int64) (domain.Role, error)
}
