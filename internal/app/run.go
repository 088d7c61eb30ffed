package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

func (a *App) runServices(ctx context.Context, deps *Dependencies) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Log.Info("starting http server",
			"host", a.Cfg.Server.Host,
			"port", a.Cfg.Server.Port)

		err := deps.HTTPServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	// Telegram Updates: либо Webhook (prod), либо Polling (local dev)
	if deps.TelegramPoller != nil {
		g.Go(func() error {
			return a.runPolling(gCtx, deps)
		})
	} else {
		a.Log.Info("telegram updates mode: webhook",
			"webhook_url", a.Cfg.Telegram.WebhookURL,
			"kafka", deps.KafkaConsumer != nil)
	}

	if deps.KafkaConsumer != nil {
		g.Go(func() error {
			a.Log.Info("starting kafka consumer", "topic", a.Cfg.Kafka.Topic)
			return deps.KafkaConsumer.Start(gCtx)
		})
	}

	if deps.JobScheduler != nil && deps.JobScheduler.Len() > 0 {
		g.Go(func() error {
			return deps.JobScheduler.Run(gCtx)
		})
	}

	// Graceful shutdown
	g.Go(func() error {
		<-gCtx.Done()
		a.Log.Info("received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := deps.HTTPServer.Shutdown(shutdownCtx); err != nil {
			a.Log.Error("failed to shutdown http server", "error", err)
		}

		a.closeAll(deps)

		a.Log.Info("application shutdown completed")
		return nil
	})

	if err := g.Wait(); err != nil {
		a.Log.Error("application error", "error", err)
		return err
	}

	return nil
}

// closeAll закрывает соединения в порядке, обратном открытию
func (a *App) closeAll(deps *Dependencies) {
	if deps == nil {
		return
	}
	for i := len(deps.closers) - 1; i >= 0; i-- {
		c := deps.closers[i]
		if err := c.close(); err != nil {
			a.Log.Error("failed to close dependency", "error", err, "name", c.name)
		}
	}
	deps.closers = nil
}

// runPolling запускает polling для локальной разработки
func (a *App) runPolling(ctx context.Context, deps *Dependencies) error {
	// Удаляем webhook перед запуском polling
	deleteCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := deps.TelegramClient.DeleteWebhook(deleteCtx); err != nil {
		a.Log.Warn("failed to delete webhook, continuing anyway", "error", err)
	} else {
		a.Log.Info("webhook deleted successfully, starting polling")
	}

	return deps.TelegramPoller.Start(ctx)
}
