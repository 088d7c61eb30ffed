package info

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/admin/tg-bots/dose-bot/internal/domain"
	"github.com/admin/tg-bots/dose-bot/internal/ports/command"
	"github.com/admin/tg-bots/dose-bot/internal/ports/service"
)

const defaultLookupTimeout = 10 * time.Second

// Service команда /info: справка по веществу из внешнего справочника
type Service struct {
	Lookup    service.ISubstanceLookup
	Responder service.IResponder
	Log       *slog.Logger

	timeout time.Duration
	now     func() time.Time
}

func New(lookup service.ISubstanceLookup, responder service.IResponder, timeout time.Duration, log *slog.Logger) *Service {
	if timeout <= 0 {
		timeout = defaultLookupTimeout
	}
	return &Service{
		Lookup:    lookup,
		Responder: responder,
		Log:       log,
		timeout:   timeout,
		now:       time.Now,
	}
}

func (s *Service) Command() command.Command {
	return command.Command{
		Name:          "info",
		Description:   "View harm reduction info for substances",
		Category:      domain.CategoryInformation,
		BotPermission: domain.PermissionSendMessages,
		Options: []domain.Option{
			{Name: "substance", Description: "The substance to get info about", Type: domain.OptionString, Required: true},
		},
		Execute: s.HandleInfo,
	}
}

// HandleInfo ошибки справочника пользователь видит как ошибку, но обработчик их не возвращает
func (s *Service) HandleInfo(ctx context.Context, in *domain.Interaction) error {
	query, _ := in.Args.String("substance")

	lookupCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	substance, err := s.Lookup.Lookup(lookupCtx, query)
	switch {
	case errors.Is(err, domain.ErrSubstanceNotFound):
		return s.reply(ctx, in, domain.ErrorReply(SubstanceNotFound))
	case err != nil:
		s.Log.Warn("substance lookup failed", "error", err, "query", query)
		return s.reply(ctx, in, domain.ErrorReply(FetchFailed))
	}

	return s.reply(ctx, in, substanceReply(substance, s.now()))
}

func (s *Service) reply(ctx context.Context, in *domain.Interaction, reply domain.Reply) error {
	if _, err := s.Responder.Reply(ctx, in, reply); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	return nil
}
