package telegram

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/admin/tg-bots/dose-bot/internal/domain"
)

const (
	defaultPollingTimeout = 30
	pollingRetryDelay     = 5 * time.Second
	maxPollingRetryDelay  = time.Minute
)

// UpdateHandler функция для обработки обновлений от Telegram
type UpdateHandler func(ctx context.Context, update *domain.Update) error

// Poller long polling getUpdates, только для локальной разработки
type Poller struct {
	client     *Client
	httpClient *http.Client // таймаут больше, чем у long poll
	handler    UpdateHandler
	timeout    int
	offset     int64
	log        *slog.Logger
}

type getUpdatesRequest struct {
	Offset         int64    `json:"offset,omitempty"`
	Timeout        int      `json:"timeout"`
	AllowedUpdates []string `json:"allowed_updates"`
}

func NewPoller(client *Client, config *Config, handler UpdateHandler, log *slog.Logger) *Poller {
	timeout := config.PollingTimeout
	if timeout <= 0 {
		timeout = defaultPollingTimeout
	}

	return &Poller{
		client:     client,
		httpClient: &http.Client{Timeout: time.Duration(timeout+10) * time.Second},
		handler:    handler,
		timeout:    timeout,
		log:        log,
	}
}

// Start блокирует до отмены ctx. Ошибка обработки одного обновления не останавливает цикл,
// ошибки getUpdates - пауза с удвоением до минуты (или retry_after от Telegram)
func (p *Poller) Start(ctx context.Context) error {
	p.log.Info("starting telegram polling", "timeout", p.timeout)

	delay := pollingRetryDelay
	for ctx.Err() == nil {
		updates, err := p.poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				break
			}

			wait := delay
			var apiErr *APIError
			if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
				wait = apiErr.RetryAfter
			}
			if IsConflict(err) {
				p.log.Warn("getUpdates conflict - another bot instance or webhook is active", "retry_in", wait)
			} else {
				p.log.Error("failed to get updates", "error", err, "retry_in", wait)
			}

			select {
			case <-ctx.Done():
			case <-time.After(wait):
			}
			delay = min(delay*2, maxPollingRetryDelay)
			continue
		}
		delay = pollingRetryDelay

		for i := range updates {
			p.dispatch(ctx, &updates[i])
		}
	}

	p.log.Info("polling stopped")
	return ctx.Err()
}

func (p *Poller) poll(ctx context.Context) ([]domain.Update, error) {
	var updates []domain.Update
	err := p.client.callWith(ctx, p.httpClient, "getUpdates", getUpdatesRequest{
		Offset:         p.offset,
		Timeout:        p.timeout,
		AllowedUpdates: AllowedUpdates,
	}, &updates)
	return updates, err
}

// dispatch offset сдвигается до обработки: упавшее обновление повторно не придёт
func (p *Poller) dispatch(ctx context.Context, update *domain.Update) {
	if update.UpdateID >= p.offset {
		p.offset = update.UpdateID + 1
	}

	if err := p.handler(ctx, update); err != nil {
		p.log.Error("failed to handle update", "error", err, "update_id", update.UpdateID)
	}
}
