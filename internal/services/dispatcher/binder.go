package dispatcher

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/admin/tg-bots/dose-bot/internal/domain"
	"github.com/admin/tg-bots/dose-bot/internal/ports/command"
)

// Bind сопоставляет сырые токены со схемой команды.
// Первый токен выбирает подкоманду (если они объявлены). Дальше токены вида name:value
// заполняют опцию по имени, остальные идут позиционно в порядке объявления.
// Опция типа user без значения берётся из replyTo.
func Bind(cmd command.Command, raw []string, replyTo *domain.UserRef) (string, domain.Args, error) {
	options := cmd.Options
	usage := "/" + cmd.Name
	var sub string

	if len(cmd.Subcommands) > 0 {
		names := strings.Join(cmd.SubcommandNames(), ", ")
		if len(raw) == 0 {
			return "", nil, domain.NewValidationError("", "Choose a subcommand: %s", names)
		}
		s, ok := cmd.Subcommand(strings.ToLower(raw[0]))
		if !ok {
			return "", nil, domain.NewValidationError("", "Unknown subcommand `%s`. Choose one of: %s", raw[0], names)
		}
		sub = s.Name
		options = s.Options
		raw = raw[1:]
		usage += " " + sub
	}
	if len(options) > 0 {
		usage += " " + domain.Usage(options)
	}

	values := make(map[string]string, len(raw))
	positional := make([]string, 0, len(raw))
	for _, tok := range raw {
		name, value, ok := splitNamed(tok, options)
		if !ok {
			positional = append(positional, tok)
			continue
		}
		if _, dup := values[name]; dup {
			return "", nil, domain.NewValidationError(name, "Option `%s` was given twice.", name)
		}
		values[name] = value
	}

	for _, opt := range options {
		if len(positional) == 0 {
			break
		}
		if _, ok := values[opt.Name]; ok {
			continue
		}
		values[opt.Name] = positional[0]
		positional = positional[1:]
	}
	if len(positional) > 0 {
		return "", nil, domain.NewValidationError("", "Too many arguments. Usage: `%s`", usage)
	}

	args := make(domain.Args, len(options))
	for _, opt := range options {
		rawValue, ok := values[opt.Name]
		if !ok {
			if opt.Type == domain.OptionUser && replyTo != nil {
				args[opt.Name] = *replyTo
				continue
			}
			if opt.Required {
				return "", nil, domain.NewValidationError(opt.Name, "Missing required option `%s`. Usage: `%s`", opt.Name, usage)
			}
			continue
		}

		value, err := convert(opt, rawValue)
		if err != nil {
			return "", nil, err
		}
		args[opt.Name] = value
	}

	return sub, args, nil
}

func splitNamed(tok string, options []domain.Option) (string, string, bool) {
	idx := strings.IndexAny(tok, ":=")
	if idx <= 0 {
		return "", "", false
	}
	name := strings.ToLower(tok[:idx])
	for _, opt := range options {
		if opt.Name == name {
			return name, tok[idx+1:], true
		}
	}
	return "", "", false
}

func convert(opt domain.Option, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, domain.NewValidationError(opt.Name, "Option `%s` must not be empty.", opt.Name)
	}

	switch opt.Type {
	case domain.OptionString:
		if len(opt.Choices) == 0 {
			return raw, nil
		}
		for _, choice := range opt.Choices {
			if strings.EqualFold(raw, choice.Value) || strings.EqualFold(raw, choice.Name) {
				return choice.Value, nil
			}
		}
		values := make([]string, len(opt.Choices))
		for i, choice := range opt.Choices {
			values[i] = choice.Value
		}
		return nil, domain.NewValidationError(opt.Name, "Invalid `%s`: choose one of %s.", opt.Name, strings.Join(values, ", "))

	case domain.OptionInteger:
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, domain.NewValidationError(opt.Name, "Option `%s` must be a whole number.", opt.Name)
		}
		if opt.MinValue != nil && v < *opt.MinValue {
			return nil, domain.NewValidationError(opt.Name, "Option `%s` must be at least %d.", opt.Name, *opt.MinValue)
		}
		return v, nil

	case domain.OptionNumber:
		v, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
		if err != nil {
			return nil, domain.NewValidationError(opt.Name, "Option `%s` must be a number.", opt.Name)
		}
		if !domain.IsBoundedDecimal(v) {
			return nil, domain.NewValidationError(opt.Name, "Option `%s` is out of range.", opt.Name)
		}
		if opt.MinValue != nil && v.LessThan(decimal.NewFromInt(*opt.MinValue)) {
			return nil, domain.NewValidationError(opt.Name, "Option `%s` must be at least %d.", opt.Name, *opt.MinValue)
		}
		return v, nil

	case domain.OptionBoolean:
		switch strings.ToLower(raw) {
		case "true", "yes", "y", "on", "1":
			return true, nil
		case "false", "no", "n", "off", "0":
			return false, nil
		}
		return nil, domain.NewValidationError(opt.Name, "Option `%s` must be true or false.", opt.Name)

	case domain.OptionUser:
		id, err := strconv.ParseInt(strings.TrimPrefix(raw, "tg://user?id="), 10, 64)
		if err != nil || id <= 0 {
			return nil, domain.NewValidationError(opt.Name, "Option `%s` must be a numeric user id, or reply to the user's message.", opt.Name)
		}
		return domain.UserRef{ID: id}, nil
	}

	return nil, domain.NewValidationError(opt.Name, "Option `%s` has unsupported type %s.", opt.Name, opt.Type)
}
