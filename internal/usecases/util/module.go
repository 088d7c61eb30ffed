package util

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/admin/tg-bots/dose-bot/internal/domain"
	"github.com/admin/tg-bots/dose-bot/internal/ports/command"
	"github.com/admin/tg-bots/dose-bot/internal/ports/service"
)

const (
	HelpTitle        = "Dose Bot Commands"
	InviteText       = "🤖 Click the button below to add me to your chat!"
	InviteUnset      = "Invite links are not configured."
	inviteButtonText = "Invite Bot"
	supportText      = "Support Chat"
)

// Catalog источник описаний команд для /help
type Catalog interface {
	DescribeAll() []domain.CommandDescriptor
}

// Links ссылки для /invite, пустые не показываются
type Links struct {
	InviteURL  string
	SupportURL string
}

// Service служебные команды /help и /invite
type Service struct {
	Catalog   Catalog
	Responder service.IResponder
	Log       *slog.Logger

	links Links
}

func New(catalog Catalog, responder service.IResponder, links Links, log *slog.Logger) *Service {
	return &Service{
		Catalog:   catalog,
		Responder: responder,
		Log:       log,
		links:     links,
	}
}

// Commands команды пакета в порядке регистрации
func (s *Service) Commands() []command.Command {
	return []command.Command{
		{
			Name:          "help",
			Description:   "Display a list of all commands",
			Category:      domain.CategoryUtility,
			BotPermission: domain.PermissionSendMessages,
			Execute:       s.HandleHelp,
		},
		{
			Name:          "invite",
			Description:   "Invite the bot to your chats",
			Category:      domain.CategoryUtility,
			BotPermission: domain.PermissionSendMessages,
			Execute:       s.HandleInvite,
		},
	}
}

// HandleHelp каталог по разделам в порядке domain.Categories
func (s *Service) HandleHelp(ctx context.Context, in *domain.Interaction) error {
	byCategory := make(map[string][]string)
	for _, desc := range s.Catalog.DescribeAll() {
		byCategory[desc.Category] = append(byCategory[desc.Category], helpLines(desc)...)
	}

	reply := domain.Reply{Kind: domain.ReplyDefault, Title: HelpTitle}
	for _, category := range domain.Categories {
		lines := byCategory[category.Name]
		if len(lines) == 0 {
			continue
		}
		reply.Fields = append(reply.Fields, domain.Field{
			Name:  category.String(),
			Value: strings.Join(lines, "\n"),
		})
	}

	return s.reply(ctx, in, reply)
}

func helpLines(desc domain.CommandDescriptor) []string {
	if len(desc.Subcommands) == 0 {
		return []string{helpLine("/"+desc.Name, desc.Options, desc.Description)}
	}
	lines := make([]string, 0, len(desc.Subcommands))
	for _, sub := range desc.Subcommands {
		lines = append(lines, helpLine("/"+desc.Name+" "+sub.Name, sub.Options, sub.Description))
	}
	return lines
}

func helpLine(invocation string, options []domain.Option, description string) string {
	if usage := domain.Usage(options); usage != "" {
		invocation += " " + usage
	}
	return fmt.Sprintf("`%s` - %s", invocation, description)
}

func (s *Service) HandleInvite(ctx context.Context, in *domain.Interaction) error {
	var row []domain.Button
	if s.links.InviteURL != "" {
		row = append(row, domain.Button{Text: inviteButtonText, URL: s.links.InviteURL})
	}
	if s.links.SupportURL != "" {
		row = append(row, domain.Button{Text: supportText, URL: s.links.SupportURL})
	}
	if len(row) == 0 {
		return s.reply(ctx, in, domain.ErrorReply(InviteUnset))
	}

	reply := domain.DefaultReply(InviteText)
	reply.Buttons = [][]domain.Button{row}
	return s.reply(ctx, in, reply)
}

func (s *Service) reply(ctx context.Context, in *domain.Interaction, reply domain.Reply) error {
	if _, err := s.Responder.Reply(ctx, in, reply); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	return nil
}
