package pg

import (
	"context"
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsTable = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version    BIGINT      NOT NULL PRIMARY KEY,
		name       TEXT        NOT NULL,
		checksum   TEXT        NOT NULL,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`

// advisory lock, чтобы две реплики не накатывали схему одновременно
const migrationsLockID = 7_340_211

type migration struct {
	Version  int64
	Name     string
	SQL      string
	Checksum string
}

// RunMigrations накатывает embedded-миграции, каждую в своей транзакции вместе с записью в schema_migrations.
// Уже применённая миграция с другим содержимым - ошибка
func RunMigrations(ctx context.Context, db *sqlx.DB, log *slog.Logger) error {
	migrations, err := loadMigrations(migrationsFS)
	if err != nil {
		return err
	}

	conn, err := db.Connx(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "SELECT pg_advisory_lock($1)", migrationsLockID); err != nil {
		return fmt.Errorf("failed to take migrations lock: %w", err)
	}
	defer func() {
		if _, err := conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock($1)", migrationsLockID); err != nil {
			log.Warn("failed to release migrations lock", "error", err)
		}
	}()

	if _, err := conn.ExecContext(ctx, migrationsTable); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	applied := map[int64]string{}
	rows, err := conn.QueryxContext(ctx, "SELECT version, checksum FROM schema_migrations")
	if err != nil {
		return fmt.Errorf("failed to read applied migrations: %w", err)
	}
	for rows.Next() {
		var version int64
		var checksum string
		if err := rows.Scan(&version, &checksum); err != nil {
			_ = rows.Close()
			return fmt.Errorf("failed to scan applied migration: %w", err)
		}
		applied[version] = checksum
	}
	if err := rows.Close(); err != nil {
		return fmt.Errorf("failed to read applied migrations: %w", err)
	}

	var count int
	for _, m := range migrations {
		if checksum, ok := applied[m.Version]; ok {
			if checksum != m.Checksum {
				return fmt.Errorf("migration %04d_%s was changed after it had been applied", m.Version, m.Name)
			}
			continue
		}

		log.Info("applying migration", "version", m.Version, "name", m.Name)
		if err := applyMigration(ctx, conn, m); err != nil {
			return fmt.Errorf("failed to apply migration %04d_%s: %w", m.Version, m.Name, err)
		}
		count++
	}

	log.Info("database migrations completed", "applied", count, "total", len(migrations))
	return nil
}

func applyMigration(ctx context.Context, conn *sqlx.Conn, m migration) error {
	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name, checksum) VALUES ($1, $2, $3)",
		m.Version, m.Name, m.Checksum,
	); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	return tx.Commit()
}

// loadMigrations файлы вида 0001_name.sql, по возрастанию версии
func loadMigrations(fsys fs.FS) ([]migration, error) {
	entries, err := fs.ReadDir(fsys, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var migrations []migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, name, err := parseMigrationName(entry.Name())
		if err != nil {
			return nil, fmt.Errorf("invalid migration name %s: %w", entry.Name(), err)
		}

		content, err := fs.ReadFile(fsys, path.Join("migrations", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", entry.Name(), err)
		}

		sum := sha256.Sum256(content)
		migrations = append(migrations, migration{
			Version:  version,
			Name:     name,
			SQL:      string(content),
			Checksum: hex.EncodeToString(sum[:]),
		})
	}

	slices.SortFunc(migrations, func(a, b migration) int {
		return int(a.Version - b.Version)
	})
	for i := 1; i < len(migrations); i++ {
		if migrations[i].Version == migrations[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version %d", migrations[i].Version)
		}
	}

	return migrations, nil
}

func parseMigrationName(filename string) (int64, string, error) {
	version, name, ok := strings.Cut(strings.TrimSuffix(filename, ".sql"), "_")
	if !ok || name == "" {
		return 0, "", fmt.Errorf("expected NNNN_name.sql")
	}

	v, err := strconv.ParseInt(version, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid version number: %w", err)
	}
	if v <= 0 {
		return 0, "", fmt.Errorf("version must be positive")
	}

	return v, name, nil
}
