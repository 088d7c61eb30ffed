package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/admin/tg-bots/dose-bot/internal/ports/jobs"
	"github.com/admin/tg-bots/dose-bot/internal/ports/service"
)

// DefaultRetries паузы перед повторами упавшего запуска
var DefaultRetries = []time.Duration{
	5 * time.Second,
	30 * time.Second,
	2 * time.Minute,
}

// Scheduler крутит зарегистрированные джобы до отмены контекста.
// Запуск, не прошедший после всех повторов, уходит алертом; следующий запуск по расписанию
type Scheduler struct {
	jobs    []jobs.Job
	retries []time.Duration
	alerter service.IAlerterService // может быть nil
	log     *slog.Logger
}

func NewScheduler(log *slog.Logger, alerter service.IAlerterService) *Scheduler {
	return &Scheduler{
		retries: DefaultRetries,
		alerter: alerter,
		log:     log,
	}
}

func (s *Scheduler) WithRetries(retries ...time.Duration) *Scheduler {
	s.retries = retries
	return s
}

func (s *Scheduler) Register(job jobs.Job) {
	s.jobs = append(s.jobs, job)
	s.log.Debug("job registered", "job_name", job.Name(), "total_jobs", len(s.jobs))
}

func (s *Scheduler) Len() int {
	return len(s.jobs)
}

// Run блокирует до отмены ctx
func (s *Scheduler) Run(ctx context.Context) error {
	if len(s.jobs) == 0 {
		s.log.Debug("no jobs registered, scheduler idle")
		return nil
	}

	s.log.Info("starting job scheduler", "jobs_count", len(s.jobs))
	g, gCtx := errgroup.WithContext(ctx)
	for _, job := range s.jobs {
		g.Go(func() error {
			s.loop(gCtx, job)
			return nil
		})
	}
	return g.Wait()
}

func (s *Scheduler) loop(ctx context.Context, job jobs.Job) {
	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for {
		now := time.Now()
		timer.Reset(job.NextRun(now).Sub(now))

		select {
		case <-ctx.Done():
			s.log.Info("job stopped", "job_name", job.Name())
			return
		case <-timer.C:
		}

		err := s.runWithRetry(ctx, job)
		switch {
		case err == nil:
			s.log.Debug("job executed successfully", "job_name", job.Name())
		case ctx.Err() != nil:
			return
		default:
			s.log.Error("job failed after all retries", "error", err, "job_name", job.Name())
			s.alert(ctx, job.Name(), err)
		}
	}
}

// runWithRetry nil при первом успешном запуске, иначе errors.Join ошибок всех попыток
func (s *Scheduler) runWithRetry(ctx context.Context, job jobs.Job) error {
	var errs []error
	for attempt := 0; ; attempt++ {
		err := job.Run(ctx)
		if err == nil {
			return nil
		}
		errs = append(errs, fmt.Errorf("attempt %d: %w", attempt+1, err))
		if attempt >= len(s.retries) {
			return errors.Join(errs...)
		}

		s.log.Warn("job run failed, will retry",
			"error", err,
			"job_name", job.Name(),
			"attempt", attempt+1,
			"retry_in", s.retries[attempt],
		)
		select {
		case <-ctx.Done():
			return errors.Join(append(errs, ctx.Err())...)
		case <-time.After(s.retries[attempt]):
		}
	}
}

func (s *Scheduler) alert(ctx context.Context, jobName string, err error) {
	if s.alerter == nil {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Job %s failed, retries exhausted\n\n", jobName)
	b.WriteString(err.Error())

	if alertErr := s.alerter.SendAlert(ctx, b.String()); alertErr != nil {
		s.log.Warn("failed to send job failure alert", "error", alertErr, "job_name", jobName)
	}
}
