package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/admin/tg-bots/dose-bot/internal/domain"
	"github.com/admin/tg-bots/dose-bot/internal/ports/cache"
)

type paginationEntry struct {
	mu        sync.Mutex
	state     domain.PaginationState
	expiresAt time.Time
}

// PaginationStore in-memory реализация хранилища пагинации.
// Общая карта под RWMutex, навигация по одному сообщению сериализуется мьютексом записи
type PaginationStore struct {
	mu      sync.RWMutex
	entries map[string]*paginationEntry // chat:message -> состояние
	now     func() time.Time
}

func NewPaginationStore() *PaginationStore {
	return &PaginationStore{
		entries: make(map[string]*paginationEntry),
		now:     time.Now,
	}
}

var _ cache.IPaginationStore = (*PaginationStore)(nil)

// Save сохраняет состояние, повторный Save по тому же сообщению заменяет его
func (s *PaginationStore) Save(_ context.Context, ref domain.MessageRef, state domain.PaginationState, ttl time.Duration) error {
	if len(state.Pages) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[ref.Key()] = &paginationEntry{
		state:     state,
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

func (s *PaginationStore) Move(_ context.Context, ref domain.MessageRef, userID int64, delta int, ttl time.Duration) (domain.Page, error) {
	s.mu.RLock()
	entry, ok := s.entries[ref.Key()]
	s.mu.RUnlock()
	if !ok {
		return domain.Page{}, domain.ErrStateExpired
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	now := s.now()
	// истёкшую запись удалит Sweep
	if !now.Before(entry.expiresAt) {
		return domain.Page{}, domain.ErrStateExpired
	}
	if entry.state.Owner != userID {
		return domain.Page{}, domain.ErrNotOwner
	}

	entry.state.Index = domain.Clamp(entry.state.Index, delta, len(entry.state.Pages))
	entry.expiresAt = now.Add(ttl)
	return entry.state.Pages[entry.state.Index], nil
}

func (s *PaginationStore) Delete(_ context.Context, ref domain.MessageRef) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, ref.Key())
	return nil
}

// Sweep удаляет истёкшие состояния, возвращает сколько удалено
func (s *PaginationStore) Sweep() int {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, entry := range s.entries {
		entry.mu.Lock()
		expired := !now.Before(entry.expiresAt)
		entry.mu.Unlock()
		if expired {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

func (s *PaginationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
