package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/apim-labs/punchlist/internal/checklist"
)

//go:embed schema.sql
var schemaSQL string

// Options configures Open.
type Options struct {
	// SeedDemo populates the demo checklist when the store holds no slugs.
	SeedDemo bool
}

// Store provides durable storage for checklist slugs.
//
// All exported methods serialize on one mutex and run against a single
// SQLite connection. See the package documentation for the concurrency and
// migration contracts.
type Store struct {
	mu sync.Mutex
	db *sql.DB

	// now stamps updates that arrive without an explicit timestamp.
	// Overridable in tests for deterministic history rows.
	now func() string
}

// Open creates or opens a SQLite database at the given path and ensures the
// normalized schema exists. Parent directories are created as needed.
//
// If the database still carries the legacy flat slugs layout, all core
// tables are dropped and recreated; any prior data is lost. Schema or
// connection failures here are fatal to startup and returned to the caller.
func Open(path string, opts Options) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY and matches the mutex-serialized access model.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db: db, now: checklist.NowUTC}

	if opts.SeedDemo {
		has, err := s.HasAnySlugs(context.Background())
		if err != nil {
			db.Close()
			return nil, err
		}
		if !has {
			if err := s.seedDemoData(context.Background()); err != nil {
				db.Close()
				return nil, fmt.Errorf("seed demo data: %w", err)
			}
		}
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// HasAnySlugs reports whether the store contains at least one slug.
func (s *Store) HasAnySlugs(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM slugs LIMIT 1`).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("count slugs: %w", err)
	}
	return true, nil
}

// applyPragmas sets required SQLite configuration. foreign_keys is load
// bearing (cascades depend on it) and failure is fatal; WAL is best effort.
func applyPragmas(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enable foreign_keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return fmt.Errorf("set busy_timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		slog.Warn("could not set WAL journal mode", "error", err)
	}
	return nil
}

// applySchema creates tables if they don't exist, first discarding any
// legacy flat layout. Idempotent.
func applySchema(db *sql.DB) error {
	legacy, err := hasLegacyLayout(db)
	if err != nil {
		return err
	}
	if legacy {
		slog.Warn("legacy flat slugs layout detected, dropping and recreating core tables")
		if err := dropCoreTables(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// hasLegacyLayout reports whether an existing slugs table inlines the
// identity text (a "checklist" column) instead of referencing the dimension
// tables. A missing slugs table is not legacy.
func hasLegacyLayout(db *sql.DB) (bool, error) {
	rows, err := db.Query(`PRAGMA table_info(slugs)`)
	if err != nil {
		return false, fmt.Errorf("inspect slugs layout: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notnull    int
			dfltValue  sql.NullString
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &typ, &notnull, &dfltValue, &primaryKey); err != nil {
			return false, fmt.Errorf("inspect slugs layout: %w", err)
		}
		if name == "checklist" {
			return true, nil
		}
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("inspect slugs layout: %w", err)
	}
	return false, nil
}

// dropCoreTables removes every table the schema owns, children first so the
// drops succeed with foreign_keys enabled.
func dropCoreTables(db *sql.DB) error {
	tables := []string{
		"history", "relationships", "slugs",
		"specs", "actions", "procedures", "sections", "checklists",
	}
	for _, table := range tables {
		if _, err := db.Exec("DROP TABLE IF EXISTS " + table); err != nil {
			return fmt.Errorf("drop table %s: %w", table, err)
		}
	}
	return nil
}
