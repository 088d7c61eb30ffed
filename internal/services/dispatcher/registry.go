package dispatcher

import (
	"fmt"

	"github.com/admin/tg-bots/dose-bot/internal/domain"
	"github.com/admin/tg-bots/dose-bot/internal/ports/command"
)

// Registry набор команд. Заполняется при старте, после этого только читается
type Registry struct {
	ordered []command.Command
	byName  map[string]int
}

func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]int),
	}
}

// Register добавляет команду; повтор имени - ошибка конфигурации
func (r *Registry) Register(cmd command.Command) error {
	if cmd.Name == "" {
		return fmt.Errorf("command name is required")
	}
	if cmd.Execute == nil {
		return fmt.Errorf("command %s has no handler", cmd.Name)
	}
	if _, ok := r.byName[cmd.Name]; ok {
		return fmt.Errorf("%w: %s", domain.ErrDuplicateCommand, cmd.Name)
	}

	r.byName[cmd.Name] = len(r.ordered)
	r.ordered = append(r.ordered, cmd)
	return nil
}

// MustRegister для статической регистрации при старте
func (r *Registry) MustRegister(cmds ...command.Command) {
	for _, cmd := range cmds {
		if err := r.Register(cmd); err != nil {
			panic(err)
		}
	}
}

func (r *Registry) Lookup(name string) (command.Command, bool) {
	idx, ok := r.byName[name]
	if !ok {
		return command.Command{}, false
	}
	return r.ordered[idx], true
}

// Commands команды в порядке регистрации
func (r *Registry) Commands() []command.Command {
	out := make([]command.Command, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// DescribeAll чистая проекция каталога команд
func (r *Registry) DescribeAll() []domain.CommandDescriptor {
	out := make([]domain.CommandDescriptor, len(r.ordered))
	for i, cmd := range r.ordered {
		out[i] = cmd.Descriptor()
	}
	return out
}
