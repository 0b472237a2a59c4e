// Package sqlite implements the break record and daily rollup persistence
// on top of an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"eyerest/resources"
)

const driverName = "sqlite"

// Config holds database configuration.
type Config struct {
	Path string
	// Now overrides the clock used for migration bookkeeping. Defaults to time.Now.
	Now func() time.Time
}

// Store is the persistence adapter. A single connection is shared by the
// timer and the analytics engine and guarded by its own mutex.
type Store struct {
	mu  sync.Mutex
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database, enables WAL and runs migrations.
// A migration failure is returned to the caller, which treats it as fatal.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("open database: path is empty")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}

	db, err := sql.Open(driverName, cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	store := &Store{db: db, now: cfg.Now}
	if err := store.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	log.Info().Str("path", cfg.Path).Msg("Database ready")
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// migrate applies every embedded migration not yet recorded in _migrations.
func (s *Store) migrate(ctx context.Context) error {
	migrations, err := resources.Migrations()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, migration := range migrations {
		applied, err := s.migrationApplied(ctx, migration.Name)
		if err != nil {
			return err
		}
		if applied {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin %s: %w", migration.Name, err)
		}
		if _, err := tx.ExecContext(ctx, migration.SQL); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", migration.Name, err)
		}
		if hook, ok := postMigrationHooks[migration.Name]; ok {
			if err := hook(ctx, tx, s.now()); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("post-apply %s: %w", migration.Name, err)
			}
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO _migrations (name, applied_at) VALUES (?, ?)`,
			migration.Name, s.now().UnixMilli()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", migration.Name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", migration.Name, err)
		}
		log.Debug().Str("migration", migration.Name).Msg("Migration applied")
	}
	return nil
}

func (s *Store) migrationApplied(ctx context.Context, name string) (bool, error) {
	var table string
	err := s.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = '_migrations'`).Scan(&table)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check migrations table: %w", err)
	}

	var id int64
	err = s.db.QueryRowContext(ctx, `SELECT id FROM _migrations WHERE name = ?`, name).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check migration %s: %w", name, err)
	}
	return true, nil
}

// postMigrationHooks run inside the migration transaction.
var postMigrationHooks = map[string]func(ctx context.Context, tx *sql.Tx, now time.Time) error{
	// Installs that already have break history skip onboarding.
	"002_onboarding": func(ctx context.Context, tx *sql.Tx, now time.Time) error {
		var id int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM break_records LIMIT 1`).Scan(&id)
		if err == sql.ErrNoRows {
			return nil
		}
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE settings
			SET onboarding_completed = 1, first_break_completed = 1, onboarding_completed_at = ?
			WHERE id = 1
		`, now.UnixMilli())
		return err
	},
}
