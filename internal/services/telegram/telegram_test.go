package telegram

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tgClient "github.com/admin/tg-bots/dose-bot/internal/adapters/secondary/telegram"
	"github.com/admin/tg-bots/dose-bot/internal/domain"
)

type callbackAnswer struct {
	id        string
	text      string
	showAlert bool
}

type fakeClient struct {
	mu        sync.Mutex
	nextID    int64
	sent      []domain.OutgoingMessage
	edited    []domain.OutgoingMessage
	answers   []callbackAnswer
	inline    []domain.Suggestion
	members   map[int64]*domain.ChatMember
	sendErrTo map[int64]error
}

func (f *fakeClient) SendMessage(_ context.Context, msg domain.OutgoingMessage) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.sendErrTo[msg.ChatID]; err != nil {
		return 0, err
	}
	f.nextID++
	f.sent = append(f.sent, msg)
	return f.nextID, nil
}

func (f *fakeClient) EditMessageText(_ context.Context, _ domain.MessageRef, msg domain.OutgoingMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edited = append(f.edited, msg)
	return nil
}

func (f *fakeClient) AnswerCallbackQuery(_ context.Context, id, text string, showAlert bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers = append(f.answers, callbackAnswer{id: id, text: text, showAlert: showAlert})
	return nil
}

func (f *fakeClient) AnswerInlineQuery(_ context.Context, _ string, suggestions []domain.Suggestion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inline = suggestions
	return nil
}

func (f *fakeClient) GetChatMember(_ context.Context, _ int64, userID int64) (*domain.ChatMember, error) {
	member, ok := f.members[userID]
	if !ok {
		return nil, errors.New("member not found")
	}
	return member, nil
}

func (f *fakeClient) GetMe(context.Context) (*domain.TelegramUser, error) {
	return &domain.TelegramUser{ID: 99, IsBot: true}, nil
}

func (f *fakeClient) SetMyCommands(context.Context, []domain.BotCommand) error { return nil }

type fakeDispatcher struct {
	got         []*domain.Interaction
	suggestions []domain.Suggestion
	event       domain.AutocompleteEvent
}

func (f *fakeDispatcher) Dispatch(_ context.Context, in *domain.Interaction) error {
	f.got = append(f.got, in)
	return nil
}

func (f *fakeDispatcher) Autocomplete(ev domain.AutocompleteEvent) []domain.Suggestion {
	f.event = ev
	return f.suggestions
}

type fakePaginator struct {
	err   error
	delta int
}

func (f *fakePaginator) Send(context.Context, *domain.Interaction, []domain.Page) error { return nil }

func (f *fakePaginator) Navigate(_ context.Context, _ domain.MessageRef, _ int64, delta int) (domain.Page, error) {
	f.delta = delta
	return domain.Page{}, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strPtr(s string) *string { return &s }

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{in: "add Caffeine 100 mg oral", want: []string{"add", "Caffeine", "100", "mg", "oral"}},
		{in: `add "Morning glory" 5 g oral`, want: []string{"add", "Morning glory", "5", "g", "oral"}},
		{in: `add drug:"Morning glory"  dose=5`, want: []string{"add", "drug:Morning glory", "dose=5"}},
		{in: "add St John's wort", want: []string{"add", "St", "John's", "wort"}},
		{in: "add 'St John' 1", want: []string{"add", "St John", "1"}},
		{in: "add “Morning glory”", want: []string{"add", "Morning glory"}},
		{in: `view ""`, want: []string{"view", ""}},
		{in: "   ", want: nil},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Tokenize(tt.in), tt.in)
	}
}

func TestParseCommand(t *testing.T) {
	t.Parallel()

	parsed, ok := ParseCommand("/Log@Dose_Bot view year:2024")
	require.True(t, ok)
	assert.Equal(t, "log", parsed.Name)
	assert.Equal(t, "Dose_Bot", parsed.Mention)
	assert.Equal(t, []string{"view", "year:2024"}, parsed.Args)

	parsed, ok = ParseCommand("/help")
	require.True(t, ok)
	assert.Equal(t, "help", parsed.Name)
	assert.Empty(t, parsed.Args)

	parsed, ok = ParseCommand("/log\nview")
	require.True(t, ok)
	assert.Equal(t, "log", parsed.Name)
	assert.Equal(t, []string{"view"}, parsed.Args)

	for _, text := range []string{"hello", "/", "/@bot", ""} {
		_, ok := ParseCommand(text)
		assert.False(t, ok, text)
	}
}

func TestRenderHTML(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 5, 2, 15, 4, 0, 0, time.UTC)
	reply := domain.Reply{
		Title:       "Dose Log (2024)",
		Description: "[1] May 2nd — Caffeine <b> & **bold** `code`",
		Fields: []domain.Field{
			{Name: "User", Value: "<@1|A & B>"},
			{Name: "Other", Value: "<@2> [Wiki](https://example.org/?a=1&b=2) __(oral)__"},
		},
		Footer:    "@alice",
		Timestamp: &ts,
	}

	want := "<b>Dose Log (2024)</b>\n\n" +
		"[1] May 2nd — Caffeine &lt;b&gt; &amp; <b>bold</b> <code>code</code>\n\n" +
		"<b>User</b>\n<a href=\"tg://user?id=1\">A &amp; B</a>\n\n" +
		"<b>Other</b>\n<a href=\"tg://user?id=2\">user 2</a> <a href=\"https://example.org/?a=1&amp;b=2\">Wiki</a> <u>(oral)</u>\n\n" +
		"<i>@alice • May 2, 2024 15:04 UTC</i>"
	assert.Equal(t, want, RenderHTML(reply))
}

func TestRenderHTML_UserTextIsNotMarkup(t *testing.T) {
	t.Parallel()

	entry := domain.Entry{Drug: "<@123|Admin>", Amount: decimal.NewFromInt(5), Unit: domain.UnitMilligram, Route: domain.RouteOral}
	reply := domain.Reply{
		Description: "[1] " + entry.String(),
		Fields: []domain.Field{
			{Name: "User", Value: domain.UserRef{ID: 7, Name: "Eve><@1|Admin"}.Mention()},
			{Name: "Drug", Value: domain.PlainText("[x](https://evil.example)")},
		},
	}

	out := RenderHTML(reply)
	assert.NotContains(t, out, "tg://user?id=123")
	assert.NotContains(t, out, "tg://user?id=1\"")
	assert.NotContains(t, out, `href="https://evil.example"`)
	assert.Contains(t, out, "[1] ‹@123|Admin› 5 mg (Oral)")
	assert.Contains(t, out, `<a href="tg://user?id=7">Eve›‹@1|Admin</a>`)
}

func TestKeyboard(t *testing.T) {
	t.Parallel()

	assert.Nil(t, Keyboard(nil))

	kb := Keyboard([][]domain.Button{{{Text: "◀", Data: "pg:prev"}, {Text: "Invite", URL: "https://t.me/x"}}})
	require.NotNil(t, kb)
	assert.Equal(t, [][]domain.InlineKeyboardButton{{
		{Text: "◀", CallbackData: "pg:prev"},
		{Text: "Invite", URL: "https://t.me/x"},
	}}, kb.InlineKeyboard)
}

func TestHandleMessage_BuildsInteraction(t *testing.T) {
	t.Parallel()

	dispatcher := &fakeDispatcher{}
	svc := New(dispatcher, &fakePaginator{}, &fakeClient{}, "@dose_bot", discardLogger())

	update := &domain.Update{
		UpdateID: 10,
		Message: &domain.Message{
			MessageID: 5,
			From:      &domain.TelegramUser{ID: 1, FirstName: "Alice", Username: strPtr("alice")},
			Chat:      &domain.Chat{ID: -100, Type: "supergroup"},
			Date:      1714662240,
			Text:      strPtr(`/log@dose_bot add "Morning glory" 5 g oral`),
			ReplyToMessage: &domain.Message{
				From: &domain.TelegramUser{ID: 2, FirstName: "Bob"},
			},
		},
	}
	require.NoError(t, svc.HandleUpdate(context.Background(), update))
	require.Len(t, dispatcher.got, 1)

	in := dispatcher.got[0]
	assert.Equal(t, "10", in.ID)
	assert.Equal(t, "log", in.Command)
	assert.Equal(t, domain.UserRef{ID: 1, Name: "Alice", Username: "alice"}, in.User)
	assert.Equal(t, int64(-100), in.ChatID)
	assert.False(t, in.Private)
	assert.Equal(t, int64(5), in.MessageID)
	assert.Equal(t, []string{"add", "Morning glory", "5", "g", "oral"}, in.RawArgs)
	require.NotNil(t, in.ReplyTo)
	assert.Equal(t, int64(2), in.ReplyTo.ID)
	assert.Equal(t, time.Unix(1714662240, 0).UTC(), in.ReceivedAt)
}

func TestHandleMessage_Ignored(t *testing.T) {
	t.Parallel()

	dispatcher := &fakeDispatcher{}
	svc := New(dispatcher, &fakePaginator{}, &fakeClient{}, "dose_bot", discardLogger())
	chat := &domain.Chat{ID: -100, Type: "group"}

	messages := []*domain.Message{
		{From: &domain.TelegramUser{ID: 1, IsBot: true}, Chat: chat, Text: strPtr("/log view")},
		{From: &domain.TelegramUser{ID: 1}, Chat: chat, Text: strPtr("just chatting")},
		{From: &domain.TelegramUser{ID: 1}, Chat: chat, Text: strPtr("/log@other_bot view")},
		{From: &domain.TelegramUser{ID: 1}, Chat: chat},
	}
	for _, msg := range messages {
		require.NoError(t, svc.HandleUpdate(context.Background(), &domain.Update{Message: msg}))
	}
	assert.Empty(t, dispatcher.got)
}

func TestHandleCallback(t *testing.T) {
	t.Parallel()

	message := &domain.Message{MessageID: 7, Chat: &domain.Chat{ID: -100}}
	from := &domain.TelegramUser{ID: 1}

	tests := []struct {
		name      string
		data      string
		navErr    error
		wantText  string
		wantAlert bool
		wantDelta int
	}{
		{name: "next", data: "pg:next", wantDelta: 1},
		{name: "prev", data: "pg:prev", wantDelta: -1},
		{name: "counter", data: "pg:noop"},
		{name: "expired", data: "pg:next", navErr: domain.ErrStateExpired, wantText: MenuExpiredText, wantDelta: 1},
		{name: "not owner", data: "pg:prev", navErr: domain.ErrNotOwner, wantText: NotOwnerText, wantAlert: true, wantDelta: -1},
		{name: "unknown data", data: "something"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := &fakeClient{}
			paginator := &fakePaginator{err: tt.navErr}
			svc := New(&fakeDispatcher{}, paginator, client, "", discardLogger())

			err := svc.HandleUpdate(context.Background(), &domain.Update{
				CallbackQuery: &domain.CallbackQuery{ID: "cb", From: from, Message: message, Data: strPtr(tt.data)},
			})
			require.NoError(t, err)

			require.Len(t, client.answers, 1)
			assert.Equal(t, callbackAnswer{id: "cb", text: tt.wantText, showAlert: tt.wantAlert}, client.answers[0])
			assert.Equal(t, tt.wantDelta, paginator.delta)
		})
	}
}

func TestHandleCallback_TransportError(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	boom := errors.New("redis down")
	svc := New(&fakeDispatcher{}, &fakePaginator{err: boom}, client, "", discardLogger())

	err := svc.HandleCallback(context.Background(), &domain.CallbackQuery{
		ID:      "cb",
		From:    &domain.TelegramUser{ID: 1},
		Message: &domain.Message{MessageID: 7, Chat: &domain.Chat{ID: 1}},
		Data:    strPtr("pg:next"),
	})
	assert.ErrorIs(t, err, boom)
	require.Len(t, client.answers, 1)
	assert.Equal(t, domain.GenericErrorText, client.answers[0].text)
}

func TestHandleInlineQuery(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	dispatcher := &fakeDispatcher{suggestions: []domain.Suggestion{
		{Name: "Caffeine", Value: "Caffeine"},
		{Name: "Morning glory", Value: "Morning glory"},
	}}
	svc := New(dispatcher, &fakePaginator{}, client, "", discardLogger())

	err := svc.HandleUpdate(context.Background(), &domain.Update{
		InlineQuery: &domain.InlineQuery{ID: "q", From: &domain.TelegramUser{ID: 1}, Query: "/log add Ca"},
	})
	require.NoError(t, err)

	assert.Equal(t, "log", dispatcher.event.Command)
	assert.Equal(t, "Ca", dispatcher.event.Partial)
	assert.Equal(t, []domain.Suggestion{
		{Name: "Caffeine", Value: "/log add Caffeine"},
		{Name: "Morning glory", Value: `/log add "Morning glory"`},
	}, client.inline)
}

func TestHandleInlineQuery_TrailingSpace(t *testing.T) {
	t.Parallel()

	dispatcher := &fakeDispatcher{}
	svc := New(dispatcher, &fakePaginator{}, &fakeClient{}, "", discardLogger())

	require.NoError(t, svc.HandleInlineQuery(context.Background(),
		&domain.InlineQuery{ID: "q", From: &domain.TelegramUser{ID: 1}, Query: "log add "}))
	assert.Equal(t, "", dispatcher.event.Partial)
}

func TestResponder_EphemeralGoesPrivate(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	responder := NewResponder(client, discardLogger())
	in := &domain.Interaction{User: domain.UserRef{ID: 1}, ChatID: -100, MessageID: 5}

	ref, err := responder.Reply(context.Background(), in, domain.ErrorReply("nope"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), ref.ChatID)
	require.Len(t, client.sent, 1)
	assert.Equal(t, int64(1), client.sent[0].ChatID)
	assert.Zero(t, client.sent[0].ReplyToMessageID)

	ref, err = responder.Reply(context.Background(), in, domain.DefaultReply("public"))
	require.NoError(t, err)
	assert.Equal(t, int64(-100), ref.ChatID)
	assert.Equal(t, int64(5), client.sent[1].ReplyToMessageID)
}

func TestResponder_EphemeralFallsBackToGroup(t *testing.T) {
	t.Parallel()

	client := &fakeClient{sendErrTo: map[int64]error{
		1: &tgClient.APIError{Method: "sendMessage", Code: 403, Description: "Forbidden"},
	}}
	responder := NewResponder(client, discardLogger())
	in := &domain.Interaction{User: domain.UserRef{ID: 1}, ChatID: -100}

	ref, err := responder.Reply(context.Background(), in, domain.ErrorReply("nope"))
	require.NoError(t, err)
	assert.Equal(t, int64(-100), ref.ChatID)
}

func TestResponder_EphemeralInPrivateChat(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	responder := NewResponder(client, discardLogger())
	in := &domain.Interaction{User: domain.UserRef{ID: 1}, ChatID: 1, Private: true, MessageID: 3}

	_, err := responder.Reply(context.Background(), in, domain.ErrorReply("nope"))
	require.NoError(t, err)
	assert.Equal(t, int64(3), client.sent[0].ReplyToMessageID)
}

func TestRoleResolver(t *testing.T) {
	t.Parallel()

	client := &fakeClient{members: map[int64]*domain.ChatMember{
		99: {Status: "member"},
		1:  {Status: "creator"},
	}}
	roles := NewRoleResolver(client, 99)
	ctx := context.Background()

	role, err := roles.BotRole(ctx, -100)
	require.NoError(t, err)
	assert.True(t, role.Has(domain.PermissionSendMessages))
	assert.False(t, role.Has(domain.PermissionManageMessages))

	role, err = roles.UserRole(ctx, -100, 1)
	require.NoError(t, err)
	assert.True(t, domain.Allowed(role, domain.PermissionManageMessages))

	_, err = roles.UserRole(ctx, -100, 2)
	assert.Error(t, err)

	role, err = roles.UserRole(ctx, 2, 2)
	require.NoError(t, err)
	assert.True(t, role.Has(domain.PermissionAdministrator))
}
