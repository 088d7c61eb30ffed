package persistence

import (
	"context"
)

// Querier запросы, одинаковые для соединения и транзакции
type Querier interface {
	Get(ctx context.Context, dest any, query string, args ...any) error
	Select(ctx context.Context, dest any, query string, args ...any) error
	Exec(ctx context.Context, query string, args ...any) (int64, error)
}

type Transaction interface {
	Querier
	Commit() error
	Rollback() error
}

// Persistence соединение с БД. Транзакции только через WithTransaction: commit при nil, иначе rollback
type Persistence interface {
	Querier
	WithTransaction(ctx context.Context, fn func(context.Context, Transaction) error) error
}
