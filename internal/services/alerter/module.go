package alerter

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/admin/tg-bots/dose-bot/internal/ports/service"
)

// Sender транспорт алертов (adapters/secondary/alerter.Client)
type Sender interface {
	SendAlert(ctx context.Context, message string) error
}

// Service реализует IAlerterService: одинаковые алерты чаще, чем раз в cooldown, не отправляются
type Service struct {
	client   Sender
	cooldown time.Duration
	now      func() time.Time

	mu   sync.Mutex
	sent map[string]time.Time
}

// New создаёт новый сервис для отправки алертов
func New(client Sender, cooldown time.Duration) service.IAlerterService {
	return &Service{
		client:   client,
		cooldown: cooldown,
		now:      time.Now,
		sent:     make(map[string]time.Time),
	}
}

// SendAlert отправляет алерт
func (s *Service) SendAlert(ctx context.Context, message string) error {
	if s.client == nil {
		return fmt.Errorf("alerter client is not initialized")
	}
	if !s.allow(message) {
		return nil
	}

	return s.client.SendAlert(ctx, message)
}

func (s *Service) allow(message string) bool {
	if s.cooldown <= 0 {
		return true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if last, ok := s.sent[message]; ok && now.Sub(last) < s.cooldown {
		return false
	}
	s.sent[message] = now

	for msg, at := range s.sent {
		if now.Sub(at) >= s.cooldown {
			delete(s.sent, msg)
		}
	}
	return true
}
