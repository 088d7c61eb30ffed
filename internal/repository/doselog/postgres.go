package doseLogRepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"

	"github.com/admin/tg-bots/dose-bot/internal/domain"
	"github.com/admin/tg-bots/dose-bot/internal/ports/persistence"
	ports "github.com/admin/tg-bots/dose-bot/internal/ports/repository"
)

type doseLogColumns struct {
	TableName string
	UserID    string
	Doses     string
	CreatedAt string
	UpdatedAt string
}

// Repository лог доз в Postgres: одна строка на пользователя, корзины годов в JSONB
type Repository struct {
	db      persistence.Persistence
	Log     *slog.Logger
	columns doseLogColumns
	builder squirrel.StatementBuilderType
}

func New(db persistence.Persistence, log *slog.Logger) *Repository {
	cols := doseLogColumns{
		TableName: "dose_logs",
		UserID:    "user_id",
		Doses:     "doses",
		CreatedAt: "created_at",
		UpdatedAt: "updated_at",
	}
	return &Repository{
		db:      db,
		Log:     log,
		columns: cols,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ ports.IDoseLogRepo = (*Repository)(nil)

func (r *Repository) GetByUserID(ctx context.Context, userID int64) (*domain.DoseLog, error) {
	query, args, err := r.builder.
		Select(r.columns.Doses).
		From(r.columns.TableName).
		Where(squirrel.Eq{r.columns.UserID: userID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	var raw []byte
	if err := r.db.Get(ctx, &raw, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		r.Log.Error("failed to get dose log", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to get dose log: %w", err)
	}

	return decodeDoses(userID, raw)
}

// AppendEntry одним INSERT ... ON CONFLICT: создаёт строку или дописывает в корзину года,
// если такой записи там ещё нет
func (r *Repository) AppendEntry(ctx context.Context, userID int64, year string, entry domain.Entry) error {
	data, err := json.Marshal(toRecord(entry))
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}
	record := string(data)

	bucket := fmt.Sprintf("COALESCE(%[1]s.%[2]s -> ?::text, '[]'::jsonb)", r.columns.TableName, r.columns.Doses)
	query, args, err := r.builder.
		Insert(r.columns.TableName).
		Columns(r.columns.UserID, r.columns.Doses).
		Values(userID, squirrel.Expr("jsonb_build_object(?::text, jsonb_build_array(?::jsonb))", year, record)).
		Suffix(fmt.Sprintf(
			"ON CONFLICT (%[1]s) DO UPDATE SET %[2]s = jsonb_set(%[3]s.%[2]s, ARRAY[?::text], %[4]s || jsonb_build_array(?::jsonb)), %[5]s = NOW() WHERE NOT %[4]s @> jsonb_build_array(?::jsonb)",
			r.columns.UserID, r.columns.Doses, r.columns.TableName, bucket, r.columns.UpdatedAt,
		), year, year, record, year, record).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	affected, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		r.Log.Error("failed to append dose entry", "error", err, "user_id", userID, "year", year)
		return fmt.Errorf("failed to append dose entry: %w", err)
	}
	if affected == 0 {
		r.Log.Debug("identical dose entry already logged", "user_id", userID, "year", year)
		return nil
	}
	r.Log.Debug("dose entry appended", "user_id", userID, "year", year)
	return nil
}

// RemoveEntry под блокировкой строки проверяет, что по индексу всё ещё лежит expected
func (r *Repository) RemoveEntry(ctx context.Context, userID int64, year string, index int, expected domain.Entry) error {
	return r.db.WithTransaction(ctx, func(ctx context.Context, tx persistence.Transaction) error {
		query, args, err := r.builder.
			Select(r.columns.Doses).
			From(r.columns.TableName).
			Where(squirrel.Eq{r.columns.UserID: userID}).
			Suffix("FOR UPDATE").
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build query: %w", err)
		}

		var raw []byte
		if err := tx.Get(ctx, &raw, query, args...); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("failed to lock dose log: %w", err)
		}

		var doses map[string][]entryRecord
		if err := json.Unmarshal(raw, &doses); err != nil {
			return fmt.Errorf("failed to unmarshal doses: %w", err)
		}
		records := doses[year]
		if index < 0 || index >= len(records) {
			return domain.ErrNotFound
		}
		if !sameRecord(records[index], expected) {
			return domain.ErrConflict
		}

		update := r.builder.Update(r.columns.TableName).
			Set(r.columns.UpdatedAt, squirrel.Expr("NOW()")).
			Where(squirrel.Eq{r.columns.UserID: userID})

		remaining := append(records[:index:index], records[index+1:]...)
		if len(remaining) == 0 {
			update = update.Set(r.columns.Doses, squirrel.Expr(r.columns.Doses+" - ?::text", year))
		} else {
			data, err := json.Marshal(remaining)
			if err != nil {
				return fmt.Errorf("failed to marshal entries: %w", err)
			}
			update = update.Set(r.columns.Doses, squirrel.Expr("jsonb_set("+r.columns.Doses+", ARRAY[?::text], ?::jsonb)", year, string(data)))
		}

		query, args, err = update.ToSql()
		if err != nil {
			return fmt.Errorf("failed to build query: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to remove dose entry: %w", err)
		}

		r.Log.Debug("dose entry removed", "user_id", userID, "year", year, "index", index)
		return nil
	})
}

func (r *Repository) ResetYear(ctx context.Context, userID int64, year string) error {
	query, args, err := r.builder.Update(r.columns.TableName).
		Set(r.columns.Doses, squirrel.Expr(r.columns.Doses+" - ?::text", year)).
		Set(r.columns.UpdatedAt, squirrel.Expr("NOW()")).
		Where(squirrel.Eq{r.columns.UserID: userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		r.Log.Error("failed to reset year", "error", err, "user_id", userID, "year", year)
		return fmt.Errorf("failed to reset year: %w", err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, userID int64) error {
	query, args, err := r.builder.Delete(r.columns.TableName).
		Where(squirrel.Eq{r.columns.UserID: userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build query: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		r.Log.Error("failed to delete dose log", "error", err, "user_id", userID)
		return fmt.Errorf("failed to delete dose log: %w", err)
	}
	return nil
}

func decodeDoses(userID int64, raw []byte) (*domain.DoseLog, error) {
	var doses map[string][]entryRecord
	if err := json.Unmarshal(raw, &doses); err != nil {
		return nil, fmt.Errorf("failed to unmarshal doses: %w", err)
	}
	return toDoseLog(userID, doses)
}
