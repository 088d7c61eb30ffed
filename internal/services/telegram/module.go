package telegram

import (
	"context"
	"log/slog"
	"strings"

	"github.com/admin/tg-bots/dose-bot/internal/domain"
	"github.com/admin/tg-bots/dose-bot/internal/ports/service"
	"github.com/admin/tg-bots/dose-bot/internal/ports/telegram"
)

// Dispatcher ядро обработки команд
type Dispatcher interface {
	Dispatch(ctx context.Context, in *domain.Interaction) error
	Autocomplete(ev domain.AutocompleteEvent) []domain.Suggestion
}

// Service переводит обновления Telegram во взаимодействия ядра и обратно
type Service struct {
	Dispatcher Dispatcher
	Paginator  service.IPaginator
	Client     telegram.IClient
	Log        *slog.Logger

	// botUsername для фильтрации "/cmd@other_bot" в группах
	botUsername string
}

func New(
	dispatcher Dispatcher,
	paginator service.IPaginator,
	client telegram.IClient,
	botUsername string,
	log *slog.Logger,
) *Service {
	return &Service{
		Dispatcher:  dispatcher,
		Paginator:   paginator,
		Client:      client,
		Log:         log,
		botUsername: strings.TrimPrefix(botUsername, "@"),
	}
}

// addressedToUs пустое упоминание или наше имя
func (s *Service) addressedToUs(mention string) bool {
	return mention == "" || s.botUsername == "" || strings.EqualFold(mention, s.botUsername)
}
