package connection

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	dbMonitoring "github.com/Jacobbrewer1/satla/pkg/dataaccess/monitoring"
	_ "modernc.org/sqlite"
)

type SQLite struct {
	// Path is the database file.
	Path string

	db *sql.DB
}

// Connect opens the database file, creating its directory if needed.
func (s *SQLite) Connect(ctx context.Context) (*sql.DB, error) {
	if s.Path == "" {
		return nil, fmt.Errorf("sqlite path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", s.Path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// A single connection serialises writers, which SQLite requires anyway.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA busy_timeout=5000;`,
		`PRAGMA synchronous=NORMAL;`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite %s: %w", pragma, err)
		}
	}

	s.db = db
	return db, nil
}

// Ping checks that the database is usable.
func (s *SQLite) Ping(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("sqlite is not open")
	}
	defer dbMonitoring.StartOperation("sqlite", "health_check", "ping", "-").ObserveDuration()
	return s.db.PingContext(ctx)
}

// Disconnect closes the database.
func (s *SQLite) Disconnect(_ context.Context) error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
