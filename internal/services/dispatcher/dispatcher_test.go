package dispatcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admin/tg-bots/dose-bot/internal/domain"
	"github.com/admin/tg-bots/dose-bot/internal/ports/command"
)

type fakeResponder struct {
	mu      sync.Mutex
	replies []domain.Reply
	err     error
}

func (f *fakeResponder) Reply(_ context.Context, _ *domain.Interaction, reply domain.Reply) (domain.MessageRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, reply)
	if f.err != nil {
		return domain.MessageRef{}, f.err
	}
	return domain.MessageRef{ChatID: 1, MessageID: int64(len(f.replies))}, nil
}

func (f *fakeResponder) Edit(context.Context, domain.MessageRef, domain.Reply) error {
	return nil
}

type fakeRoles struct {
	bot  domain.Role
	user domain.Role
	err  error
}

func (f fakeRoles) BotRole(context.Context, int64) (domain.Role, error) {
	return f.bot, f.err
}

func (f fakeRoles) UserRole(context.Context, int64, int64) (domain.Role, error) {
	return f.user, f.err
}

type fakeAlerter struct {
	messages []string
}

func (f *fakeAlerter) SendAlert(_ context.Context, message string) error {
	f.messages = append(f.messages, message)
	return nil
}

var everything = domain.Role{Permissions: domain.PermissionSendMessages | domain.PermissionEmbedLinks}

func newTestService(t *testing.T, roles fakeRoles, cmds ...command.Command) (*Service, *fakeResponder, *fakeAlerter) {
	t.Helper()
	registry := NewRegistry()
	for _, cmd := range cmds {
		require.NoError(t, registry.Register(cmd))
	}
	responder := &fakeResponder{}
	alerter := &fakeAlerter{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(registry, roles, responder, alerter, log), responder, alerter
}

func noop(context.Context, *domain.Interaction) error { return nil }

func TestRegistry_DuplicateName(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	require.NoError(t, registry.Register(command.Command{Name: "help", Execute: noop}))

	err := registry.Register(command.Command{Name: "help", Execute: noop})
	require.ErrorIs(t, err, domain.ErrDuplicateCommand)
	assert.Len(t, registry.Commands(), 1)
}

func TestRegistry_RejectsIncompleteCommands(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	assert.Error(t, registry.Register(command.Command{Execute: noop}))
	assert.Error(t, registry.Register(command.Command{Name: "x"}))
	assert.Panics(t, func() {
		registry.MustRegister(command.Command{Name: "a", Execute: noop}, command.Command{Name: "a", Execute: noop})
	})
}

func TestRegistry_DescribeAllKeepsOrder(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.MustRegister(
		command.Command{Name: "log", Description: "Log commands", Category: domain.CategoryLogging, Execute: noop},
		command.Command{Name: "help", Description: "Help", Category: domain.CategoryUtility, Execute: noop},
	)

	want := []domain.CommandDescriptor{
		{Name: "log", Description: "Log commands", Category: "Logging"},
		{Name: "help", Description: "Help", Category: "Utility"},
	}
	if diff := cmp.Diff(want, registry.DescribeAll()); diff != "" {
		t.Errorf("descriptors mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatch_UnknownCommandIsIgnored(t *testing.T) {
	t.Parallel()

	svc, responder, _ := newTestService(t, fakeRoles{bot: everything})

	require.NoError(t, svc.Dispatch(context.Background(), &domain.Interaction{Command: "nope"}))
	assert.Empty(t, responder.replies)
}

func TestDispatch_BotPermissionDenied(t *testing.T) {
	t.Parallel()

	called := false
	cmd := command.Command{
		Name:          "info",
		BotPermission: domain.PermissionEmbedLinks,
		Execute: func(context.Context, *domain.Interaction) error {
			called = true
			return nil
		},
	}
	svc, responder, _ := newTestService(t, fakeRoles{bot: domain.Role{Permissions: domain.PermissionSendMessages}}, cmd)

	require.NoError(t, svc.Dispatch(context.Background(), &domain.Interaction{Command: "info"}))

	assert.False(t, called)
	require.Len(t, responder.replies, 1)
	assert.Equal(t, "❌ I need the `Embed Links` permission to execute that command.", responder.replies[0].Description)
	assert.True(t, responder.replies[0].Ephemeral)
}

func TestDispatch_AdministratorOverridesMissingBit(t *testing.T) {
	t.Parallel()

	called := false
	cmd := command.Command{
		Name:          "info",
		BotPermission: domain.PermissionEmbedLinks,
		Permission:    domain.PermissionManageMessages,
		Execute: func(context.Context, *domain.Interaction) error {
			called = true
			return nil
		},
	}
	admin := domain.Role{Permissions: domain.PermissionAdministrator}
	svc, responder, _ := newTestService(t, fakeRoles{bot: admin, user: admin}, cmd)

	require.NoError(t, svc.Dispatch(context.Background(), &domain.Interaction{Command: "info"}))

	assert.True(t, called)
	assert.Empty(t, responder.replies)
}

func TestDispatch_UserPermissionDenied(t *testing.T) {
	t.Parallel()

	cmd := command.Command{Name: "purge", Permission: domain.PermissionManageMessages, Execute: noop}
	svc, responder, _ := newTestService(t, fakeRoles{bot: everything, user: everything}, cmd)

	require.NoError(t, svc.Dispatch(context.Background(), &domain.Interaction{Command: "purge"}))

	require.Len(t, responder.replies, 1)
	assert.Equal(t, "❌ You need the `Manage Messages` permission to use that command.", responder.replies[0].Description)
}

func TestDispatch_DenialSendFailureIsNotRepliedTwice(t *testing.T) {
	t.Parallel()

	cmd := command.Command{Name: "purge", Permission: domain.PermissionManageMessages, Execute: noop}
	svc, responder, alerter := newTestService(t, fakeRoles{bot: everything, user: everything}, cmd)
	sendErr := errors.New("chat not found")
	responder.err = sendErr

	err := svc.Dispatch(context.Background(), &domain.Interaction{Command: "purge"})
	require.ErrorIs(t, err, sendErr)
	assert.ErrorContains(t, err, "failed to send reply")

	require.Len(t, responder.replies, 1)
	assert.Equal(t, "❌ You need the `Manage Messages` permission to use that command.", responder.replies[0].Description)
	assert.Empty(t, alerter.messages)
}

func TestDispatch_RoleLookupFailure(t *testing.T) {
	t.Parallel()

	cmd := command.Command{Name: "log", BotPermission: domain.PermissionSendMessages, Execute: noop}
	svc, responder, _ := newTestService(t, fakeRoles{err: errors.New("telegram down")}, cmd)

	require.NoError(t, svc.Dispatch(context.Background(), &domain.Interaction{Command: "log"}))

	require.Len(t, responder.replies, 1)
	assert.Equal(t, "❌ "+domain.GenericErrorText, responder.replies[0].Description)
}

func TestDispatch_HandlerErrorRepliesGenericAndAlerts(t *testing.T) {
	t.Parallel()

	cmd := command.Command{
		Name: "boom",
		Execute: func(context.Context, *domain.Interaction) error {
			return errors.New("db unavailable")
		},
	}
	svc, responder, alerter := newTestService(t, fakeRoles{}, cmd)

	require.NoError(t, svc.Dispatch(context.Background(), &domain.Interaction{Command: "boom", User: domain.UserRef{ID: 7}}))

	require.Len(t, responder.replies, 1)
	assert.Equal(t, domain.ReplyError, responder.replies[0].Kind)
	assert.Equal(t, "❌ "+domain.GenericErrorText, responder.replies[0].Description)
	require.Len(t, alerter.messages, 1)
	assert.Contains(t, alerter.messages[0], "db unavailable")
}

func TestDispatch_HandlerPanicIsRecovered(t *testing.T) {
	t.Parallel()

	cmd := command.Command{
		Name: "panic",
		Execute: func(context.Context, *domain.Interaction) error {
			panic("unexpected")
		},
	}
	svc, responder, _ := newTestService(t, fakeRoles{}, cmd)

	require.NotPanics(t, func() {
		require.NoError(t, svc.Dispatch(context.Background(), &domain.Interaction{Command: "panic"}))
	})
	require.Len(t, responder.replies, 1)
	assert.Equal(t, "❌ "+domain.GenericErrorText, responder.replies[0].Description)
}

func TestDispatch_BindsSubcommandAndArgs(t *testing.T) {
	t.Parallel()

	var got *domain.Interaction
	cmd := command.Command{
		Name: "log",
		Subcommands: []domain.Subcommand{
			{
				Name: "add",
				Options: []domain.Option{
					{Name: "drug", Type: domain.OptionString, Required: true},
					{Name: "dose", Type: domain.OptionNumber, Required: true, MinValue: domain.MinValue(0)},
					{Name: "units", Type: domain.OptionString, Required: true, Choices: []domain.Choice{{Name: "Milligrams (mg)", Value: "mg"}}},
					{Name: "hide", Type: domain.OptionBoolean},
				},
			},
		},
		Execute: func(_ context.Context, in *domain.Interaction) error {
			got = in
			return nil
		},
	}
	svc, responder, _ := newTestService(t, fakeRoles{}, cmd)

	in := &domain.Interaction{Command: "log", RawArgs: []string{"add", "Caffeine", "100", "MG", "hide:yes"}}
	require.NoError(t, svc.Dispatch(context.Background(), in))

	assert.Empty(t, responder.replies)
	require.NotNil(t, got)
	assert.Equal(t, "add", got.Subcommand)
	drug, _ := got.Args.String("drug")
	assert.Equal(t, "Caffeine", drug)
	dose, _ := got.Args.Decimal("dose")
	assert.True(t, dose.Equal(decimal.NewFromInt(100)))
	units, _ := got.Args.String("units")
	assert.Equal(t, "mg", units)
	assert.True(t, got.Args.Bool("hide"))
}

func TestDispatch_ValidationErrorIsEphemeral(t *testing.T) {
	t.Parallel()

	cmd := command.Command{
		Name:    "info",
		Options: []domain.Option{{Name: "substance", Type: domain.OptionString, Required: true}},
		Execute: noop,
	}
	svc, responder, _ := newTestService(t, fakeRoles{}, cmd)

	require.NoError(t, svc.Dispatch(context.Background(), &domain.Interaction{Command: "info"}))

	require.Len(t, responder.replies, 1)
	assert.True(t, responder.replies[0].Ephemeral)
	assert.Equal(t, "❌ Missing required option `substance`. Usage: `/info <substance>`", responder.replies[0].Description)
}

func TestAutocomplete_PrefixInListOrder(t *testing.T) {
	t.Parallel()

	cmd := command.Command{
		Name:         "log",
		Autocomplete: []string{"Caffeine", "Cannabis", "Cocaine", "caffeine-free"},
		Execute:      noop,
	}
	svc, _, _ := newTestService(t, fakeRoles{}, cmd)

	got := svc.Autocomplete(domain.AutocompleteEvent{Command: "log", Partial: "Ca"})
	want := []domain.Suggestion{
		{Name: "Caffeine", Value: "Caffeine"},
		{Name: "Cannabis", Value: "Cannabis"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("suggestions mismatch (-want +got):\n%s", diff)
	}

	assert.Len(t, svc.Autocomplete(domain.AutocompleteEvent{Command: "log"}), 4)
	assert.Empty(t, svc.Autocomplete(domain.AutocompleteEvent{Command: "log", Partial: "X"}))
	assert.Nil(t, svc.Autocomplete(domain.AutocompleteEvent{Command: "unknown", Partial: "C"}))
}
