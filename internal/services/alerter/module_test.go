package alerter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSender struct {
	messages []string
}

func (c *countingSender) SendAlert(_ context.Context, message string) error {
	c.messages = append(c.messages, message)
	return nil
}

func TestSendAlert_SuppressesRepeatsWithinCooldown(t *testing.T) {
	t.Parallel()

	sender := &countingSender{}
	svc := New(sender, time.Minute).(*Service)
	now := time.Date(2024, 5, 2, 15, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, svc.SendAlert(ctx, "store down"))
	require.NoError(t, svc.SendAlert(ctx, "store down"))
	require.NoError(t, svc.SendAlert(ctx, "cache down"))

	now = now.Add(time.Minute)
	require.NoError(t, svc.SendAlert(ctx, "store down"))

	assert.Equal(t, []string{"store down", "cache down", "store down"}, sender.messages)
}

func TestSendAlert_NoCooldown(t *testing.T) {
	t.Parallel()

	sender := &countingSender{}
	svc := New(sender, 0)
	require.NoError(t, svc.SendAlert(context.Background(), "a"))
	require.NoError(t, svc.SendAlert(context.Background(), "a"))
	assert.Len(t, sender.messages, 2)
}

func TestSendAlert_NotInitialized(t *testing.T) {
	t.Parallel()

	assert.Error(t, New(nil, time.Minute).SendAlert(context.Background(), "a"))
}
