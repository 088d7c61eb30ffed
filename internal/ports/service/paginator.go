package service

import (
	"context"

	"github.com/admin/tg-bots/dose-bot/internal/domain"
)

// IPaginator отправка многостраничных ответов и навигация по ним
type IPaginator interface {
	Send(ctx context.Context, in *domain.Interaction, pages []domain.Page) error
	Navigate(ctx context.Context, ref domain.MessageRef, userID int64, delta int) (domain.Page, error)
}
