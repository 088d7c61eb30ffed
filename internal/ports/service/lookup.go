package service

import (
	"context"

	"github.com/admin/tg-bots/dose-bot/internal/domain"
)

// ISubstanceLookup внешний справочник веществ.
// Нет совпадений - domain.ErrSubstanceNotFound, любая другая ошибка - транспортная
type ISubstanceLookup interface {
	Lookup(ctx context.Context, query string) (*domain.Substance, error)
}
