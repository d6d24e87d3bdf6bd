// Propacity - Customer Feedback Analytics and Insight Extraction
// Copyright 2026 GreenHacker420
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/GreenHacker420/propacity-proj-sub000

// Package store persists reviews and analysis snapshots in DuckDB.
//
// The store owns a single embedded database file (or :memory: for tests)
// and exposes typed accessors over two tables: reviews, holding every piece
// of ingested feedback, and analysis_snapshots, holding the JSON result of
// completed insight jobs. All methods take a context and apply a default
// timeout when the caller did not set a deadline.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/GreenHacker420/propacity-proj-sub000/internal/config"
	"github.com/GreenHacker420/propacity-proj-sub000/internal/logging"
)

// defaultQueryTimeout bounds operations whose caller context has no deadline.
const defaultQueryTimeout = 30 * time.Second

// Store wraps the DuckDB connection and provides data access methods.
type Store struct {
	conn *sql.DB
	cfg  *config.DatabaseConfig
}

// New opens (or creates) the database at cfg.Path and initializes the schema.
func New(cfg *config.DatabaseConfig) (*Store, error) {
	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	// Ensure the parent directory exists for file-backed databases.
	if cfg.Path != ":memory:" {
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dbDir, err)
			}
		}
	}

	// Auto-install/auto-load are disabled: the schema uses no extensions and
	// implicit installs can hang in restricted network environments.
	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, numThreads, cfg.MaxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{conn: conn, cfg: cfg}
	s.configureConnectionPool()

	if err := s.createTables(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Int("threads", numThreads).
		Str("max_memory", cfg.MaxMemory).
		Msg("Review store opened")

	return s, nil
}

// configureConnectionPool sets connection pool parameters.
func (s *Store) configureConnectionPool() {
	s.conn.SetMaxOpenConns(runtime.NumCPU())
	s.conn.SetMaxIdleConns(2)
	s.conn.SetConnMaxLifetime(time.Hour)
	s.conn.SetConnMaxIdleTime(5 * time.Minute)
}

// createTables creates the schema. Statements are idempotent so reopening an
// existing database is safe.
func (s *Store) createTables() error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	schema := `
		CREATE TABLE IF NOT EXISTS reviews (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			text TEXT NOT NULL,
			rating DOUBLE DEFAULT 0,
			username TEXT,
			created_at TIMESTAMP NOT NULL,
			ingested_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS analysis_snapshots (
			job_id TEXT PRIMARY KEY,
			sample_size INTEGER NOT NULL,
			degraded BOOLEAN NOT NULL DEFAULT FALSE,
			bundle TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_reviews_source ON reviews(source);
		CREATE INDEX IF NOT EXISTS idx_reviews_created_at ON reviews(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_snapshots_created_at ON analysis_snapshots(created_at DESC);
	`

	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}

// Close flushes the WAL and closes the connection.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := s.Checkpoint(ctx); err != nil {
		logging.Warn().Err(err).Msg("Failed to checkpoint database before close")
	}
	cancel()

	return s.conn.Close()
}

// Ping checks if the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	if s.conn == nil {
		return fmt.Errorf("database connection is nil")
	}
	return s.conn.PingContext(ctx)
}

// Checkpoint forces a WAL checkpoint.
func (s *Store) Checkpoint(ctx context.Context) error {
	ctx, cancel := s.ensureContext(ctx)
	defer cancel()

	if _, err := s.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		return fmt.Errorf("checkpoint failed: %w", err)
	}
	return nil
}

// Conn returns the underlying SQL database connection.
func (s *Store) Conn() *sql.DB {
	return s.conn
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.cfg.Path
}

// ensureContext creates a context with a default timeout if none provided.
func (s *Store) ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		return context.WithTimeout(context.Background(), defaultQueryTimeout)
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		return context.WithTimeout(ctx, defaultQueryTimeout)
	}
	return ctx, func() {}
}

// closeQuietly closes a resource and explicitly ignores any error.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
