package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/admin/tg-bots/dose-bot/internal/domain"
	"github.com/admin/tg-bots/dose-bot/internal/services/pagination"
)

const (
	MenuExpiredText = "This menu has expired."
	NotOwnerText    = "Only the user who ran the command can use these buttons."
)

// HandleUpdate Основной метод для обработки всех типов обновлений
func (s *Service) HandleUpdate(ctx context.Context, update *domain.Update) error {
	if update == nil {
		return fmt.Errorf("update is nil")
	}

	switch {
	case update.Message != nil:
		return s.HandleMessage(ctx, update.Message, update.UpdateID)
	case update.CallbackQuery != nil:
		return s.HandleCallback(ctx, update.CallbackQuery)
	case update.InlineQuery != nil:
		return s.HandleInlineQuery(ctx, update.InlineQuery)
	}

	s.Log.Debug("ignoring unsupported update", "update_id", update.UpdateID)
	return nil
}

// HandleMessage командное сообщение в Interaction и в диспетчер
func (s *Service) HandleMessage(ctx context.Context, message *domain.Message, updateID int64) error {
	if message.From == nil || message.From.IsBot {
		s.Log.Debug("ignoring message from bot", "update_id", updateID)
		return nil
	}
	if message.Text == nil || message.Chat == nil {
		return nil
	}

	parsed, ok := ParseCommand(*message.Text)
	if !ok {
		return nil
	}
	if !s.addressedToUs(parsed.Mention) {
		s.Log.Debug("ignoring command for another bot", "update_id", updateID, "mention", parsed.Mention)
		return nil
	}

	in := &domain.Interaction{
		ID:         strconv.FormatInt(updateID, 10),
		Command:    parsed.Name,
		User:       message.From.Ref(),
		ChatID:     message.Chat.ID,
		Private:    message.Chat.IsPrivate(),
		MessageID:  message.MessageID,
		RawArgs:    parsed.Args,
		ReceivedAt: time.Unix(message.Date, 0).UTC(),
	}
	if reply := message.ReplyToMessage; reply != nil && reply.From != nil && !reply.From.IsBot {
		ref := reply.From.Ref()
		in.ReplyTo = &ref
	}

	return s.Dispatcher.Dispatch(ctx, in)
}

// HandleCallback кнопки навигации по страницам
func (s *Service) HandleCallback(ctx context.Context, query *domain.CallbackQuery) error {
	if query.Data == nil || query.From == nil || query.Message == nil || query.Message.Chat == nil {
		return s.Client.AnswerCallbackQuery(ctx, query.ID, "", false)
	}

	delta, ok := pagination.Delta(*query.Data)
	if !ok || delta == 0 {
		return s.Client.AnswerCallbackQuery(ctx, query.ID, "", false)
	}

	ref := domain.MessageRef{ChatID: query.Message.Chat.ID, MessageID: query.Message.MessageID}
	_, err := s.Paginator.Navigate(ctx, ref, query.From.ID, delta)
	switch {
	case errors.Is(err, domain.ErrStateExpired):
		return s.Client.AnswerCallbackQuery(ctx, query.ID, MenuExpiredText, false)
	case errors.Is(err, domain.ErrNotOwner):
		return s.Client.AnswerCallbackQuery(ctx, query.ID, NotOwnerText, true)
	case err != nil:
		s.Log.Error("failed to navigate pages",
			"error", err,
			"chat_id", ref.ChatID,
			"message_id", ref.MessageID,
		)
		if answerErr := s.Client.AnswerCallbackQuery(ctx, query.ID, domain.GenericErrorText, false); answerErr != nil {
			s.Log.Warn("failed to answer callback query", "error", answerErr)
		}
		return err
	}

	return s.Client.AnswerCallbackQuery(ctx, query.ID, "", false)
}

// HandleInlineQuery "@bot <команда> [слова...] <начало значения>" - автодополнение.
// Выбранный вариант отправляется в чат готовой командой
func (s *Service) HandleInlineQuery(ctx context.Context, query *domain.InlineQuery) error {
	fields := strings.Fields(query.Query)
	if len(fields) == 0 {
		return s.Client.AnswerInlineQuery(ctx, query.ID, nil)
	}

	command := strings.ToLower(strings.TrimPrefix(fields[0], "/"))
	var partial string
	var prefix []string
	if len(fields) > 1 {
		prefix = fields[1 : len(fields)-1]
		partial = fields[len(fields)-1]
	}
	if len(fields) > 1 && strings.HasSuffix(query.Query, " ") {
		prefix = fields[1:]
		partial = ""
	}

	suggestions := s.Dispatcher.Autocomplete(domain.AutocompleteEvent{
		ID:      query.ID,
		Command: command,
		User:    query.From.Ref(),
		Partial: partial,
	})

	head := "/" + command
	if len(prefix) > 0 {
		head += " " + strings.Join(prefix, " ")
	}
	for i := range suggestions {
		value := suggestions[i].Value
		if strings.ContainsAny(value, " \t") {
			value = `"` + value + `"`
		}
		suggestions[i].Value = head + " " + value
	}

	return s.Client.AnswerInlineQuery(ctx, query.ID, suggestions)
}
