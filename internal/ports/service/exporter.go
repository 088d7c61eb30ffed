package service

import (
	"context"

	"github.com/admin/tg-bots/dose-bot/internal/domain"
)

// ILogExporter выгрузка лога во внешнее хранилище, возвращает ссылку на скачивание
type ILogExporter interface {
	Export(ctx context.Context, log *domain.DoseLog, year string) (string, error)
}
