package jobs

import (
	"context"
	"log/slog"
	"time"
)

const paginationSweeperName = "pagination-sweeper"

// Sweeper хранилище, которое умеет само удалять истёкшие записи
type Sweeper interface {
	Sweep() int
}

// PaginationSweeper чистит истёкшие состояния пагинации в памяти процесса.
// Для Redis не нужна, там ключи живут с TTL
type PaginationSweeper struct {
	store    Sweeper
	interval time.Duration
	log      *slog.Logger
}

func NewPaginationSweeper(store Sweeper, interval time.Duration, log *slog.Logger) *PaginationSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &PaginationSweeper{
		store:    store,
		interval: interval,
		log:      log,
	}
}

func (j *PaginationSweeper) Name() string {
	return paginationSweeperName
}

// NextRun ближайшая граница интервала
func (j *PaginationSweeper) NextRun(now time.Time) time.Time {
	next := now.Truncate(j.interval).Add(j.interval)
	if !next.After(now) {
		next = next.Add(j.interval)
	}
	return next
}

func (j *PaginationSweeper) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if removed := j.store.Sweep(); removed > 0 {
		j.log.Debug("expired pagination states removed", "count", removed)
	}
	return nil
}
