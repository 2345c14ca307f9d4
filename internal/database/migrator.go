// AngelaMos | 2026
// migrator.go

package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/freelancehub/internal/core"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrator applies the embedded SQL files in lexical order. Each file
// runs in its own transaction together with its schema_migrations row,
// so a failed file leaves no trace and is retried on the next run.
type Migrator struct {
	db     *sqlx.DB
	files  fs.FS
	logger *slog.Logger
}

func NewMigrator(db *sqlx.DB, logger *slog.Logger) *Migrator {
	if logger == nil {
		logger = slog.Default()
	}
	sub, _ := fs.Sub(migrationsFS, "migrations") //nolint:errcheck // path is a compile-time constant
	return &Migrator{db: db, files: sub, logger: logger}
}

// Migrations lists the embedded migration names in the order they apply.
func Migrations() ([]string, error) {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open migrations: %w", err)
	}
	return listMigrations(sub)
}

func listMigrations(files fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".sql" {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)

	return names, nil
}

// Up applies every migration that has not been recorded yet and returns
// the names it applied.
func (m *Migrator) Up(ctx context.Context) ([]string, error) {
	names, err := listMigrations(m.files)
	if err != nil {
		return nil, err
	}

	applied, err := m.Applied(ctx)
	if err != nil {
		return nil, err
	}

	var ran []string
	for _, name := range names {
		if applied[name] {
			continue
		}

		body, err := fs.ReadFile(m.files, name)
		if err != nil {
			return ran, fmt.Errorf("read migration %s: %w", name, err)
		}
		if strings.TrimSpace(string(body)) == "" {
			return ran, fmt.Errorf("migration %s is empty", name)
		}

		err = core.InTx(ctx, m.db, func(tx *sqlx.Tx) error {
			if _, err := tx.ExecContext(ctx, string(body)); err != nil {
				return fmt.Errorf("execute: %w", err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (name) VALUES ($1)`, name,
			); err != nil {
				return fmt.Errorf("record: %w", err)
			}
			return nil
		})
		if err != nil {
			return ran, fmt.Errorf("apply migration %s: %w", name, err)
		}

		m.logger.Info("migration applied", "name", name)
		ran = append(ran, name)
	}

	return ran, nil
}

// Applied returns the set of recorded migration names, creating the
// tracking table on first use.
func (m *Migrator) Applied(ctx context.Context) (map[string]bool, error) {
	if _, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name       TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		return nil, fmt.Errorf("create schema_migrations: %w", err)
	}

	var names []string
	if err := m.db.SelectContext(ctx, &names,
		`SELECT name FROM schema_migrations`); err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}

	applied := make(map[string]bool, len(names))
	for _, n := range names {
		applied[n] = true
	}
	return applied, nil
}
