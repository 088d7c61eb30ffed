package telegram

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admin/tg-bots/dose-bot/internal/domain"
)

func TestPoller_DeliversUpdatesAndAdvancesOffset(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var offsets []float64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)

		mu.Lock()
		offset, _ := body["offset"].(float64)
		offsets = append(offsets, offset)
		first := len(offsets) == 1
		mu.Unlock()

		if first {
			_, _ = io.WriteString(w, `{"ok":true,"result":[{"update_id":41},{"update_id":42}]}`)
			return
		}
		_, _ = io.WriteString(w, `{"ok":true,"result":[]}`)
	}))
	t.Cleanup(server.Close)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := NewClient("TOKEN", log)
	client.baseURL = server.URL + "/botTOKEN"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got []int64
	poller := NewPoller(client, &Config{PollingTimeout: 1}, func(_ context.Context, update *domain.Update) error {
		got = append(got, update.UpdateID)
		if len(got) == 2 {
			go func() {
				time.Sleep(20 * time.Millisecond)
				cancel()
			}()
		}
		return nil
	}, log)

	err := poller.Start(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []int64{41, 42}, got)

	mu.Lock()
	defer mu.Unlock()
	require.GreaterOrEqual(t, len(offsets), 2)
	assert.Equal(t, float64(0), offsets[0])
	assert.Equal(t, float64(43), offsets[1])
}

func TestCall_RetryAfter(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, map[string]string{
		"getUpdates": `{"ok":false,"error_code":429,"description":"Too Many Requests","parameters":{"retry_after":7}}`,
	})

	var updates []domain.Update
	err := client.call(context.Background(), "getUpdates", getUpdatesRequest{}, &updates)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 429, apiErr.Code)
	assert.Equal(t, 7*time.Second, apiErr.RetryAfter)
	assert.False(t, IsConflict(err))
}
