package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admin/tg-bots/dose-bot/internal/domain"
)

type recordingHandler struct {
	updates []*domain.Update
	err     error
}

func (r *recordingHandler) HandleUpdate(_ context.Context, update *domain.Update) error {
	r.updates = append(r.updates, update)
	return r.err
}

func newHandler(inner UpdateHandler) *UpdatesHandler {
	return NewUpdatesHandler(inner, slog.New(slog.NewTextHandler(io.Discard, nil))).(*UpdatesHandler)
}

func TestUpdatesHandler_Delivers(t *testing.T) {
	t.Parallel()

	inner := &recordingHandler{}
	value := []byte(`{"update_id":42,"message":{"message_id":1,"chat":{"id":-100,"type":"group"},"text":"/help"}}`)

	require.NoError(t, newHandler(inner).HandleMessage(context.Background(), "-100", value))
	require.Len(t, inner.updates, 1)
	assert.Equal(t, int64(42), inner.updates[0].UpdateID)
	require.NotNil(t, inner.updates[0].Message)
	assert.Equal(t, "/help", *inner.updates[0].Message.Text)
}

func TestUpdatesHandler_MalformedIsNotRetried(t *testing.T) {
	t.Parallel()

	inner := &recordingHandler{}
	err := newHandler(inner).HandleMessage(context.Background(), "k", []byte("{not json"))

	require.Error(t, err)
	assert.True(t, domain.IsBusinessError(err))
	assert.Empty(t, inner.updates)
}

func TestUpdatesHandler_HandlerErrorIsRetried(t *testing.T) {
	t.Parallel()

	boom := errors.New("telegram down")
	inner := &recordingHandler{err: boom}
	err := newHandler(inner).HandleMessage(context.Background(), "k", []byte(`{"update_id":7}`))

	assert.ErrorIs(t, err, boom)
	assert.False(t, domain.IsBusinessError(err))
}
