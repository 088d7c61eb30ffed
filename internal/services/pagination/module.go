package pagination

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/admin/tg-bots/dose-bot/internal/domain"
	"github.com/admin/tg-bots/dose-bot/internal/ports/cache"
	"github.com/admin/tg-bots/dose-bot/internal/ports/service"
)

// Данные callback-кнопок навигации
const (
	CallbackPrev = "pg:prev"
	CallbackNext = "pg:next"
	CallbackNoop = "pg:noop"
)

const DefaultTTL = 10 * time.Minute

// Service отправка многостраничных ответов и листание по кнопкам
type Service struct {
	store     cache.IPaginationStore
	responder service.IResponder
	ttl       time.Duration
	log       *slog.Logger
}

func New(store cache.IPaginationStore, responder service.IResponder, ttl time.Duration, log *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		store:     store,
		responder: responder,
		ttl:       ttl,
		log:       log,
	}
}

var _ service.IPaginator = (*Service)(nil)

// Send показывает первую страницу. Кнопки и состояние появляются только если страниц больше одной
func (s *Service) Send(ctx context.Context, in *domain.Interaction, pages []domain.Page) error {
	if len(pages) == 0 {
		return fmt.Errorf("no pages to send")
	}

	reply := pageReply(pages[0])
	ref, err := s.responder.Reply(ctx, in, reply)
	if err != nil {
		return fmt.Errorf("failed to send page: %w", err)
	}
	if len(pages) == 1 {
		return nil
	}

	state := domain.PaginationState{Owner: in.User.ID, Pages: pages}
	if err := s.store.Save(ctx, ref, state, s.ttl); err != nil {
		// сообщение уже отправлено, кнопки просто не будут работать
		s.log.Error("failed to save pagination state",
			"error", err,
			"chat_id", ref.ChatID,
			"message_id", ref.MessageID,
		)
	}
	return nil
}

// Navigate сдвигает страницу и перерисовывает сообщение.
// domain.ErrStateExpired и domain.ErrNotOwner возвращаются как есть
func (s *Service) Navigate(ctx context.Context, ref domain.MessageRef, userID int64, delta int) (domain.Page, error) {
	page, err := s.store.Move(ctx, ref, userID, delta, s.ttl)
	if err != nil {
		if errors.Is(err, domain.ErrStateExpired) || errors.Is(err, domain.ErrNotOwner) {
			return domain.Page{}, err
		}
		return domain.Page{}, fmt.Errorf("failed to move pagination: %w", err)
	}

	if err := s.responder.Edit(ctx, ref, pageReply(page)); err != nil {
		return domain.Page{}, fmt.Errorf("failed to edit page: %w", err)
	}
	return page, nil
}

// Delta переводит данные callback-кнопки в сдвиг страницы
func Delta(data string) (int, bool) {
	switch data {
	case CallbackPrev:
		return -1, true
	case CallbackNext:
		return 1, true
	case CallbackNoop:
		return 0, true
	}
	return 0, false
}

func pageReply(page domain.Page) domain.Reply {
	reply := page.Reply()
	if page.Count > 1 {
		reply.Buttons = [][]domain.Button{{
			{Text: "◀", Data: CallbackPrev},
			{Text: fmt.Sprintf("%d/%d", page.Number, page.Count), Data: CallbackNoop},
			{Text: "▶", Data: CallbackNext},
		}}
	}
	return reply
}
