package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"

	"github.com/admin/tg-bots/dose-bot/internal/domain"
	"github.com/admin/tg-bots/dose-bot/internal/ports/command"
	"github.com/admin/tg-bots/dose-bot/internal/ports/service"
)

// Service маршрутизирует взаимодействия к командам: права, разбор аргументов, выполнение
type Service struct {
	Registry  *Registry
	Roles     service.IRoleResolver
	Responder service.IResponder
	Alerter   service.IAlerterService // может быть nil
	Log       *slog.Logger
}

func New(
	registry *Registry,
	roles service.IRoleResolver,
	responder service.IResponder,
	alerter service.IAlerterService,
	log *slog.Logger,
) *Service {
	return &Service{
		Registry:  registry,
		Roles:     roles,
		Responder: responder,
		Alerter:   alerter,
		Log:       log,
	}
}

// Dispatch обрабатывает одно взаимодействие.
// Возвращает ошибку только если не удалось доставить ответ пользователю
func (s *Service) Dispatch(ctx context.Context, in *domain.Interaction) error {
	if in == nil {
		return fmt.Errorf("interaction is nil")
	}

	cmd, ok := s.Registry.Lookup(in.Command)
	if !ok {
		s.Log.Debug("unknown command", "command", in.Command, "user_id", in.User.ID)
		return nil
	}

	denial, err := s.checkPermissions(ctx, cmd, in)
	if err != nil {
		s.Log.Error("failed to resolve permissions",
			"error", err,
			"command", cmd.Name,
			"chat_id", in.ChatID,
		)
		return s.reply(ctx, in, domain.ErrorReply(domain.GenericErrorText))
	}
	if denial != "" {
		return s.reply(ctx, in, domain.ErrorReply(denial))
	}

	sub, args, err := Bind(cmd, in.RawArgs, in.ReplyTo)
	if err != nil {
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			return s.reply(ctx, in, domain.ErrorReply(validationErr.Message))
		}
		return fmt.Errorf("failed to bind arguments: %w", err)
	}
	in.Subcommand = sub
	in.Args = args

	if err := s.execute(ctx, cmd, in); err != nil {
		s.Log.Error("command failed",
			"error", err,
			"command", cmd.Name,
			"subcommand", sub,
			"user_id", in.User.ID,
			"chat_id", in.ChatID,
		)
		s.alert(ctx, cmd, in, err)
		return s.reply(ctx, in, domain.ErrorReply(domain.GenericErrorText))
	}

	return nil
}

// checkPermissions сначала права бота, потом вызывающего. Непустая строка - текст отказа, команду не выполнять
func (s *Service) checkPermissions(ctx context.Context, cmd command.Command, in *domain.Interaction) (string, error) {
	if cmd.BotPermission != domain.PermissionNone {
		role, err := s.Roles.BotRole(ctx, in.ChatID)
		if err != nil {
			return "", fmt.Errorf("failed to get bot role: %w", err)
		}
		if !domain.Allowed(role, cmd.BotPermission) {
			return fmt.Sprintf("I need the `%s` permission to execute that command.", cmd.BotPermission), nil
		}
	}

	if cmd.Permission != domain.PermissionNone {
		role, err := s.Roles.UserRole(ctx, in.ChatID, in.User.ID)
		if err != nil {
			return "", fmt.Errorf("failed to get user role: %w", err)
		}
		if !domain.Allowed(role, cmd.Permission) {
			return fmt.Sprintf("You need the `%s` permission to use that command.", cmd.Permission), nil
		}
	}

	return "", nil
}

func (s *Service) execute(ctx context.Context, cmd command.Command, in *domain.Interaction) (err error) {
	defer func() {
		if r := recover(); r != nil {
			s.Log.Error("command panicked",
				"command", cmd.Name,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			err = fmt.Errorf("command %s panicked: %v", cmd.Name, r)
		}
	}()

	return cmd.Execute(ctx, in)
}

func (s *Service) reply(ctx context.Context, in *domain.Interaction, reply domain.Reply) error {
	if _, err := s.Responder.Reply(ctx, in, reply); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	return nil
}

func (s *Service) alert(ctx context.Context, cmd command.Command, in *domain.Interaction, cause error) {
	if s.Alerter == nil {
		return
	}

	name := cmd.Name
	if in.Subcommand != "" {
		name += " " + in.Subcommand
	}
	message := fmt.Sprintf("Command /%s failed\nUser: %d\nChat: %d\nError: %v", name, in.User.ID, in.ChatID, cause)
	if err := s.Alerter.SendAlert(ctx, message); err != nil {
		s.Log.Warn("failed to send alert", "error", err)
	}
}

// Autocomplete подсказки по префиксу в порядке списка команды, с учётом регистра
func (s *Service) Autocomplete(ev domain.AutocompleteEvent) []domain.Suggestion {
	cmd, ok := s.Registry.Lookup(ev.Command)
	if !ok || len(cmd.Autocomplete) == 0 {
		return nil
	}

	out := make([]domain.Suggestion, 0, len(cmd.Autocomplete))
	for _, word := range cmd.Autocomplete {
		if strings.HasPrefix(word, ev.Partial) {
			out = append(out, domain.Suggestion{Name: word, Value: word})
		}
	}
	return out
}
