// Package history persists build reports in a local sqlite database so
// `docbuild history` can show what ran and when.
package history

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/docbuild/internal/sphinx"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is a sqlite-backed build history.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// DefaultPath returns the database location for a repository root.
func DefaultPath(root string) string {
	return filepath.Join(root, ".docbuild", "history.db")
}

// NewBuildID returns a fresh build identifier.
func NewBuildID() string { return uuid.NewString() }

// Open opens (and migrates) the history database at path. Use ":memory:"
// for an ephemeral store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if path == ":memory:" {
		// Each pooled connection gets its own in-memory database; keep a
		// single connection so the migrated schema is the one queried.
		db.SetMaxOpenConns(1)
	}

	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Record appends one build report.
func (s *Store) Record(ctx context.Context, report sphinx.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO builds (build_id, started, duration_ms, status, exit_code, sphinx_version, commit_hash, error, index_file)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.BuildID,
		report.Started.Unix(),
		report.Duration.Milliseconds(),
		string(report.Status),
		report.ExitCode,
		report.SphinxVersion,
		report.Commit,
		report.Error,
		report.IndexFile,
	)
	if err != nil {
		return fmt.Errorf("insert build record: %w", err)
	}
	return nil
}

// Recent returns up to limit reports, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]sphinx.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT build_id, started, duration_ms, status, exit_code, sphinx_version, commit_hash, error, index_file
		 FROM builds ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query build records: %w", err)
	}
	defer rows.Close()

	var reports []sphinx.Report
	for rows.Next() {
		var (
			r          sphinx.Report
			started    int64
			durationMS int64
			status     string
		)
		if err := rows.Scan(&r.BuildID, &started, &durationMS, &status, &r.ExitCode,
			&r.SphinxVersion, &r.Commit, &r.Error, &r.IndexFile); err != nil {
			return nil, fmt.Errorf("scan build record: %w", err)
		}
		r.Started = time.Unix(started, 0)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		r.Status = sphinx.Status(status)
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }
