package repository

import (
	"context"

	"github.com/admin/tg-bots/dose-bot/internal/domain"
)

// IDoseLogRepo хранилище логов доз, один документ на пользователя.
// Все изменения атомарны в пределах одного документа.
type IDoseLogRepo interface {
	// GetByUserID возвращает domain.ErrNotFound, если лога нет
	GetByUserID(ctx context.Context, userID int64) (*domain.DoseLog, error)
	// AppendEntry добавляет запись в корзину года, создаёт лог и корзину при необходимости.
	// Повторное добавление той же записи ничего не меняет
	AppendEntry(ctx context.Context, userID int64, year string, entry domain.Entry) error
	// RemoveEntry удаляет запись с индексом index (с нуля), если там всё ещё лежит expected.
	// domain.ErrNotFound - нет лога/года/индекса, domain.ErrConflict - запись успела измениться
	RemoveEntry(ctx context.Context, userID int64, year string, index int, expected domain.Entry) error
	// ResetYear удаляет корзину года, идемпотентно
	ResetYear(ctx context.Context, userID int64, year string) error
	// Delete удаляет весь лог, идемпотентно
	Delete(ctx context.Context, userID int64) error
}
