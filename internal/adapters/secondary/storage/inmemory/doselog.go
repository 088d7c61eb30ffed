package inmemory

import (
	"context"
	"sync"

	"github.com/admin/tg-bots/dose-bot/internal/domain"
	"github.com/admin/tg-bots/dose-bot/internal/ports/repository"
)

// DoseLogRepo хранение логов в памяти процесса (STORE_DRIVER=memory и тесты)
type DoseLogRepo struct {
	mu   sync.RWMutex
	logs map[int64]map[string][]domain.Entry
}

func NewDoseLogRepo() *DoseLogRepo {
	return &DoseLogRepo{
		logs: make(map[int64]map[string][]domain.Entry),
	}
}

var _ repository.IDoseLogRepo = (*DoseLogRepo)(nil)

func (r *DoseLogRepo) GetByUserID(_ context.Context, userID int64) (*domain.DoseLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	years, ok := r.logs[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}

	doses := make(map[string][]domain.Entry, len(years))
	for year, entries := range years {
		doses[year] = append([]domain.Entry(nil), entries...)
	}
	return &domain.DoseLog{UserID: userID, Doses: doses}, nil
}

func (r *DoseLogRepo) AppendEntry(_ context.Context, userID int64, year string, entry domain.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	years, ok := r.logs[userID]
	if !ok {
		years = make(map[string][]domain.Entry)
		r.logs[userID] = years
	}
	if domain.ContainsEntry(years[year], entry) {
		return nil
	}
	years[year] = append(years[year], entry)
	return nil
}

func (r *DoseLogRepo) RemoveEntry(_ context.Context, userID int64, year string, index int, expected domain.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	years, ok := r.logs[userID]
	if !ok {
		return domain.ErrNotFound
	}
	entries := years[year]
	if index < 0 || index >= len(entries) {
		return domain.ErrNotFound
	}
	if !entries[index].Equal(expected) {
		return domain.ErrConflict
	}

	remaining := domain.WithoutEntry(entries, index)
	if remaining == nil {
		delete(years, year)
		return nil
	}
	years[year] = remaining
	return nil
}

func (r *DoseLogRepo) ResetYear(_ context.Context, userID int64, year string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if years, ok := r.logs[userID]; ok {
		delete(years, year)
	}
	return nil
}

func (r *DoseLogRepo) Delete(_ context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.logs, userID)
	return nil
}

// Ping для healthcheck
func (r *DoseLogRepo) Ping(context.Context) error {
	return nil
}
