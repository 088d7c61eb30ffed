package cache

import (
	"context"
	"time"

	"github.com/admin/tg-bots/dose-bot/internal/domain"
)

// IPaginationStore состояние навигации по страницам, ключ - отправленное сообщение.
// Move атомарен для одного ключа, при гонке выигрывает последний.
type IPaginationStore interface {
	Save(ctx context.Context, ref domain.MessageRef, state domain.PaginationState, ttl time.Duration) error
	// Move сдвигает индекс на delta с ограничением [0, count-1], продлевает TTL и возвращает новую страницу.
	// domain.ErrStateExpired - состояния нет, domain.ErrNotOwner - листает не автор
	Move(ctx context.Context, ref domain.MessageRef, userID int64, delta int, ttl time.Duration) (domain.Page, error)
	Delete(ctx context.Context, ref domain.MessageRef) error
}
