package command

import (
	"context"

	"github.com/admin/tg-bots/dose-bot/internal/domain"
)

// Handler тело команды. Доменные ошибки команда обрабатывает сама и отвечает пользователю,
// наружу возвращаются только транспортные ошибки
type Handler func(ctx context.Context, in *domain.Interaction) error

// Command неизменяемое описание команды и её поведение
type Command struct {
	Name          string
	Description   string
	Category      domain.Category
	Permission    domain.Permission // нужна вызывающему
	BotPermission domain.Permission // нужна самому боту
	Options       []domain.Option
	Subcommands   []domain.Subcommand
	Autocomplete  []string
	Execute       Handler
}

// Descriptor проекция для публикации каталога
func (c Command) Descriptor() domain.CommandDescriptor {
	return domain.CommandDescriptor{
		Name:        c.Name,
		Description: c.Description,
		Category:    c.Category.Name,
		Options:     c.Options,
		Subcommands: c.Subcommands,
	}
}

func (c Command) Subcommand(name string) (domain.Subcommand, bool) {
	for _, sub := range c.Subcommands {
		if sub.Name == name {
			return sub, true
		}
	}
	return domain.Subcommand{}, false
}

// SubcommandNames имена в порядке объявления
func (c Command) SubcommandNames() []string {
	names := make([]string, len(c.Subcommands))
	for i, sub := range c.Subcommands {
		names[i] = sub.Name
	}
	return names
}
