package app

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/admin/tg-bots/dose-bot/internal/adapters/secondary/storage/pg"
	"github.com/admin/tg-bots/dose-bot/internal/pkg/logger"
)

type App struct {
	Name string
	Cfg  *Config
	Log  *slog.Logger
}

func New(name string, cfg *Config) *App {
	return &App{
		Name: name,
		Cfg:  cfg,
		Log:  logger.New(name, cfg.Log),
	}
}

// Run поднимает зависимости и блокируется до отмены ctx
func (a *App) Run(ctx context.Context) error {
	a.Log.Info("starting dose bot",
		"store", a.Cfg.Store.Driver,
		"pagination", a.Cfg.Pagination.Driver,
	)

	deps, err := a.initDependencies(ctx)
	if err != nil {
		return fmt.Errorf("failed to init dependencies: %w", err)
	}

	return a.runServices(ctx, deps)
}

// Migrate применяет миграции Postgres и выходит
func (a *App) Migrate(ctx context.Context) error {
	db, err := a.Cfg.Postgres.NewConnection(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer db.Close()

	if err := pg.RunMigrations(ctx, db, a.Log); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
