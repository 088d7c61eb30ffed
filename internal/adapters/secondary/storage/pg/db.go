package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/admin/tg-bots/dose-bot/internal/ports/persistence"
)

// querier общая часть *sqlx.DB и *sqlx.Tx
type querier interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

type executor struct {
	q querier
}

func (e executor) Get(ctx context.Context, dest any, query string, args ...any) error {
	return e.q.GetContext(ctx, dest, query, args...)
}

func (e executor) Select(ctx context.Context, dest any, query string, args ...any) error {
	return e.q.SelectContext(ctx, dest, query, args...)
}

// Exec возвращает количество затронутых строк
func (e executor) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	result, err := e.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// DB обёртка над sqlx.DB
type DB struct {
	executor
	Db *sqlx.DB
}

func NewDB(db *sqlx.DB) *DB {
	return &DB{executor: executor{q: db}, Db: db}
}

var _ persistence.Persistence = (*DB)(nil)

type tx struct {
	executor
	tx *sqlx.Tx
}

func (t *tx) Commit() error   { return t.tx.Commit() }
func (t *tx) Rollback() error { return t.tx.Rollback() }

func (d *DB) WithTransaction(ctx context.Context, fn func(context.Context, persistence.Transaction) error) error {
	sqlxTx, err := d.Db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	t := &tx{executor: executor{q: sqlxTx}, tx: sqlxTx}

	if err := fn(ctx, t); err != nil {
		if rollbackErr := t.Rollback(); rollbackErr != nil {
			return errors.Join(err, fmt.Errorf("failed to rollback: %w", rollbackErr))
		}
		return err
	}

	if err := t.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Ping для /ready
func (d *DB) Ping(ctx context.Context) error {
	return d.Db.PingContext(ctx)
}

func (d *DB) Close() error {
	return d.Db.Close()
}
