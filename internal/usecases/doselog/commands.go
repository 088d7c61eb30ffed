package doselog

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/admin/tg-bots/dose-bot/internal/domain"
	"github.com/admin/tg-bots/dose-bot/internal/ports/command"
)

// DrugSuggestions варианты автодополнения для аргумента drug
var DrugSuggestions = []string{
	"Alcohol", "Amphetamine", "Benzodiazepines", "Cannabis", "Cocaine", "DMT", "DXM", "GBL", "GHB",
	"Ketamine", "Heroin", "Kratom", "LSD", "MDMA", "Methamphetamine", "Mushrooms", "Modafinil",
	"Nicotine", "Oxycodone", "2C-B",
}

var unitChoices = []domain.Choice{
	{Name: "Micrograms (μg)", Value: string(domain.UnitMicrogram)},
	{Name: "Milligrams (mg)", Value: string(domain.UnitMilligram)},
	{Name: "Grams (g)", Value: string(domain.UnitGram)},
	{Name: "Milliliters (mL)", Value: string(domain.UnitMilliliter)},
	{Name: "Drinks", Value: string(domain.UnitDrinks)},
	{Name: "Other", Value: string(domain.UnitOther)},
}

func routeChoices() []domain.Choice {
	choices := make([]domain.Choice, len(domain.Routes))
	for i, route := range domain.Routes {
		choices[i] = domain.Choice{Name: route.Label(), Value: string(route)}
	}
	return choices
}

func yearOption(description string) domain.Option {
	return domain.Option{
		Name:        "year",
		Description: description,
		Type:        domain.OptionInteger,
		MinValue:    domain.MinValue(domain.MinYear),
	}
}

// Command описание команды /log
func (s *Service) Command() command.Command {
	return command.Command{
		Name:          "log",
		Description:   "Log commands",
		Category:      domain.CategoryLogging,
		BotPermission: domain.PermissionSendMessages,
		Autocomplete:  DrugSuggestions,
		Subcommands: []domain.Subcommand{
			{
				Name:        "add",
				Description: "Add a new drug dose to your log",
				Options: []domain.Option{
					{Name: "drug", Description: "The name of the drug taken", Type: domain.OptionString, Required: true, Autocomplete: true},
					{Name: "dose", Description: "The amount of the drug taken", Type: domain.OptionNumber, Required: true, MinValue: domain.MinValue(0)},
					{Name: "units", Description: "The unit measured in", Type: domain.OptionString, Required: true, Choices: unitChoices},
					{Name: "route", Description: "The route of administration", Type: domain.OptionString, Required: true, Choices: routeChoices()},
					{Name: "hide", Description: "Set to true if you want to hide reply from others", Type: domain.OptionBoolean},
				},
			},
			{
				Name:        "view",
				Description: "View your full dose log",
				Options: []domain.Option{
					{Name: "user", Description: "See another user's log", Type: domain.OptionUser},
					yearOption("Specify a year to view logged doses"),
				},
			},
			{
				Name:        "remove",
				Description: "Remove a dose by ID from your log",
				Options: []domain.Option{
					{Name: "id", Description: "The ID of the logged dose", Type: domain.OptionInteger, Required: true, MinValue: domain.MinValue(1)},
					yearOption("Specify the year to remove logged dose from"),
				},
			},
			{
				Name:        "reset",
				Description: "Reset your entire log or a specified year",
				Options:     []domain.Option{yearOption("Specify which year to reset log data")},
			},
			{
				Name:        "export",
				Description: "Download your dose log as a JSON file",
				Options:     []domain.Option{yearOption("Specify a year to export")},
			},
		},
		Execute: s.Execute,
	}
}

// Execute роутит в подкоманду
func (s *Service) Execute(ctx context.Context, in *domain.Interaction) error {
	switch in.Subcommand {
	case "add":
		return s.HandleAdd(ctx, in)
	case "view":
		return s.HandleView(ctx, in)
	case "remove":
		return s.HandleRemove(ctx, in)
	case "reset":
		return s.HandleReset(ctx, in)
	case "export":
		return s.HandleExport(ctx, in)
	default:
		return fmt.Errorf("unknown log subcommand: %q", in.Subcommand)
	}
}

// HandleAdd записывает новую дозу в корзину текущего года
func (s *Service) HandleAdd(ctx context.Context, in *domain.Interaction) error {
	drug, _ := in.Args.String("drug")
	amount, _ := in.Args.Decimal("dose")
	units, _ := in.Args.String("units")
	route, _ := in.Args.String("route")

	now := s.now()
	entry, err := domain.NewEntry(drug, amount, domain.Unit(units), domain.Route(route), now)
	if err != nil {
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			return s.reply(ctx, in, domain.ErrorReply(validationErr.Message))
		}
		return err
	}

	year := domain.CurrentYear(now)
	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	if err := s.Repo.AppendEntry(storeCtx, in.User.ID, year, entry); err != nil {
		return fmt.Errorf("failed to append entry: %w", err)
	}

	s.Log.Debug("dose logged", "user_id", in.User.ID, "year", year, "drug", entry.Drug)

	reply := entryReply(NewDoseLoggedTitle, in.User, entry)
	reply.Ephemeral = in.Args.Bool("hide")
	return s.reply(ctx, in, reply)
}

// HandleView показывает лог за год постранично
func (s *Service) HandleView(ctx context.Context, in *domain.Interaction) error {
	target := in.User
	if user, ok := in.Args.User("user"); ok {
		target = user
	}
	year, ok, err := s.yearArg(ctx, in)
	if err != nil || !ok {
		return err
	}

	log, err := s.getLog(ctx, target.ID)
	if err != nil {
		return err
	}
	if log.IsEmpty() {
		text := NoDosesSelf
		if target.ID != in.User.ID {
			text = FormatNoDosesOther(target.Mention())
		}
		return s.reply(ctx, in, domain.ErrorReply(text))
	}
	if !log.HasYear(year) {
		return s.reply(ctx, in, domain.ErrorReply(FormatNoDosesYear(year)))
	}

	pages := domain.RenderPages(target, year, log.Entries(year), s.renderOptions())
	return s.Paginator.Send(ctx, in, pages)
}

// HandleRemove удаляет запись по отображаемому ID
func (s *Service) HandleRemove(ctx context.Context, in *domain.Interaction) error {
	id, _ := in.Args.Int("id")
	year, ok, err := s.yearArg(ctx, in)
	if err != nil || !ok {
		return err
	}

	log, err := s.getLog(ctx, in.User.ID)
	if err != nil {
		return err
	}
	if log.IsEmpty() {
		return s.reply(ctx, in, domain.ErrorReply(NoDosesSelf))
	}
	if !log.HasYear(year) {
		return s.reply(ctx, in, domain.ErrorReply(FormatNoDosesYear(year)))
	}
	entry, found := log.EntryByID(year, int(id))
	if !found {
		return s.reply(ctx, in, domain.ErrorReply(NoSuchID))
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	err = s.Repo.RemoveEntry(storeCtx, in.User.ID, year, int(id)-1, entry)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return s.reply(ctx, in, domain.ErrorReply(NoSuchID))
	case errors.Is(err, domain.ErrConflict):
		return s.reply(ctx, in, domain.ErrorReply(LogChanged))
	case err != nil:
		return fmt.Errorf("failed to remove entry: %w", err)
	}

	s.Log.Debug("dose removed", "user_id", in.User.ID, "year", year, "id", id)
	return s.reply(ctx, in, entryReply(FormatDoseRemoved(int(id)), in.User, entry))
}

// HandleReset без года удаляет весь лог, с годом только его корзину
func (s *Service) HandleReset(ctx context.Context, in *domain.Interaction) error {
	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	if _, given := in.Args.Int("year"); !given {
		if err := s.Repo.Delete(storeCtx, in.User.ID); err != nil {
			return fmt.Errorf("failed to delete log: %w", err)
		}
		return s.reply(ctx, in, domain.DefaultReply(FormatResetAll(in.User.Mention())))
	}

	year, ok, err := s.yearArg(ctx, in)
	if err != nil || !ok {
		return err
	}
	if err := s.Repo.ResetYear(storeCtx, in.User.ID, year); err != nil {
		return fmt.Errorf("failed to reset year: %w", err)
	}
	return s.reply(ctx, in, domain.DefaultReply(FormatResetYear(in.User.Mention(), year)))
}

// HandleExport выгружает лог в S3 и отвечает ссылкой
func (s *Service) HandleExport(ctx context.Context, in *domain.Interaction) error {
	if s.Exporter == nil {
		return s.reply(ctx, in, domain.ErrorReply(ExportUnavailable))
	}

	var year string
	if _, given := in.Args.Int("year"); given {
		y, ok, err := s.yearArg(ctx, in)
		if err != nil || !ok {
			return err
		}
		year = y
	}

	log, err := s.getLog(ctx, in.User.ID)
	if err != nil {
		return err
	}
	if log.IsEmpty() {
		return s.reply(ctx, in, domain.ErrorReply(NoDosesSelf))
	}
	if year != "" && !log.HasYear(year) {
		return s.reply(ctx, in, domain.ErrorReply(FormatNoDosesYear(year)))
	}

	exportCtx, cancel := context.WithTimeout(ctx, s.cfg.ExportTimeout)
	defer cancel()

	url, err := s.Exporter.Export(exportCtx, log, year)
	if err != nil {
		return fmt.Errorf("failed to export log: %w", err)
	}

	reply := domain.SuccessReply(ExportReady)
	reply.Ephemeral = true
	reply.Buttons = [][]domain.Button{{{Text: "Download", URL: url}}}
	return s.reply(ctx, in, reply)
}

// yearArg год из аргументов или текущий. ok=false - пользователю уже ответили ошибкой
func (s *Service) yearArg(ctx context.Context, in *domain.Interaction) (string, bool, error) {
	raw, given := in.Args.Int("year")
	if !given {
		return domain.CurrentYear(s.now()), true, nil
	}

	year, err := domain.ParseYear(strconv.FormatInt(raw, 10))
	if err != nil {
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			return "", false, s.reply(ctx, in, domain.ErrorReply(validationErr.Message))
		}
		return "", false, err
	}
	return year, true, nil
}

// getLog отсутствующий лог возвращается как пустой
func (s *Service) getLog(ctx context.Context, userID int64) (*domain.DoseLog, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	log, err := s.Repo.GetByUserID(storeCtx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return &domain.DoseLog{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get log: %w", err)
	}
	return log, nil
}

func (s *Service) reply(ctx context.Context, in *domain.Interaction, reply domain.Reply) error {
	if _, err := s.Responder.Reply(ctx, in, reply); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	return nil
}

func entryReply(title string, user domain.UserRef, entry domain.Entry) domain.Reply {
	recordedAt := entry.RecordedAt
	return domain.Reply{
		Kind:  domain.ReplyDefault,
		Title: title,
		Fields: []domain.Field{
			{Name: "User", Value: user.Mention()},
			{Name: "Drug", Value: domain.PlainText(entry.Drug)},
			{Name: "Amount", Value: entry.Dose(), Inline: true},
			{Name: "Route", Value: entry.Route.Label(), Inline: true},
		},
		Timestamp: &recordedAt,
	}
}
