// Package store keeps the export log: one row per class recording where its
// program was written and the checksum of the program text.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// Dialect selects the SQL placeholder style
type Dialect int

const (
	// DialectSQLite uses ? placeholders
	DialectSQLite Dialect = iota
	// DialectPostgres uses $n placeholders
	DialectPostgres
)

// String returns the name of the dialect
func (d Dialect) String() string {
	switch d {
	case DialectSQLite:
		return "sqlite"
	case DialectPostgres:
		return "postgres"
	default:
		return "unknown"
	}
}

// DialectFor returns the dialect of a database/sql driver name: sqlite3,
// pgx, or postgres (lib/pq)
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "sqlite3":
		return DialectSQLite, nil
	case "pgx", "postgres":
		return DialectPostgres, nil
	default:
		return 0, fmt.Errorf("unsupported registry driver: %s", driver)
	}
}

// rebind rewrites ? placeholders for the dialect
func (d Dialect) rebind(query string) string {
	if d != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Entry is one export log row
type Entry struct {
	ClassName  string
	Path       string
	Checksum   string
	Statements int
	RunID      string
	ExportedAt time.Time
}

// Checksum returns the hex xxhash64 of a rendered program
func Checksum(program string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(program))
}

// NewRunID returns a fresh identifier for one export run
func NewRunID() string {
	return uuid.NewString()
}

// Store reads and writes the export log
type Store struct {
	db      *sql.DB
	dialect Dialect
	logger  *zap.Logger
	retry   *RetryConfig
}

// Option configures a Store
type Option func(*Store)

// WithLogger sets the store logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRetryConfig sets how batch writes retry on lock conflicts. At least
// one attempt is always made.
func WithRetryConfig(cfg *RetryConfig) Option {
	return func(s *Store) {
		if cfg == nil {
			return
		}
		retry := *cfg
		if retry.MaxRetries < 1 {
			retry.MaxRetries = 1
		}
		s.retry = &retry
	}
}

// New wraps an open database
func New(db *sql.DB, dialect Dialect, opts ...Option) *Store {
	s := &Store{
		db:      db,
		dialect: dialect,
		logger:  zap.NewNop(),
		retry:   DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open connects to the export log database
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*Store, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open export log: %w", err)
	}
	if dialect == DialectSQLite {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to export log: %w", err)
	}

	return New(db, dialect, opts...), nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Initialize ensures the mapping_exports table exists
func (s *Store) Initialize(ctx context.Context) error {
	statements := []string{`
CREATE TABLE IF NOT EXISTS mapping_exports (
	class_name VARCHAR(512) PRIMARY KEY,
	path TEXT NOT NULL,
	checksum VARCHAR(16) NOT NULL,
	statements INTEGER NOT NULL,
	run_id VARCHAR(36) NOT NULL,
	exported_at TIMESTAMP NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_mapping_exports_run_id ON mapping_exports(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize export log: %w", err)
		}
	}
	return nil
}

const upsertQuery = `
INSERT INTO mapping_exports (class_name, path, checksum, statements, run_id, exported_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (class_name) DO UPDATE SET
	path = excluded.path,
	checksum = excluded.checksum,
	statements = excluded.statements,
	run_id = excluded.run_id,
	exported_at = excluded.exported_at
`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (s *Store) record(ctx context.Context, ex execer, e Entry) error {
	if e.ExportedAt.IsZero() {
		e.ExportedAt = time.Now().UTC()
	}
	_, err := ex.ExecContext(ctx, s.dialect.rebind(upsertQuery),
		e.ClassName, e.Path, e.Checksum, e.Statements, e.RunID, e.ExportedAt)
	if err != nil {
		return fmt.Errorf("failed to record export of %s: %w", e.ClassName, err)
	}

	s.logger.Info("recorded export",
		zap.String("class", e.ClassName),
		zap.String("checksum", e.Checksum),
		zap.String("run_id", e.RunID),
	)
	return nil
}

// Record inserts or replaces the log row of e.ClassName
func (s *Store) Record(ctx context.Context, e Entry) error {
	return s.record(ctx, s.db, e)
}

// RecordAll records entries in one transaction, retrying on lock conflicts
func (s *Store) RecordAll(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	return s.withRetry(ctx, func(tx *sql.Tx) error {
		for _, e := range entries {
			if err := s.record(ctx, tx, e); err != nil {
				return err
			}
		}
		return nil
	})
}

const selectColumns = `SELECT class_name, path, checksum, statements, run_id, exported_at FROM mapping_exports`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row scanner) (*Entry, error) {
	e := &Entry{}
	if err := row.Scan(&e.ClassName, &e.Path, &e.Checksum, &e.Statements, &e.RunID, &e.ExportedAt); err != nil {
		return nil, err
	}
	return e, nil
}

// Get returns the log row of className, or nil if it was never exported
func (s *Store) Get(ctx context.Context, className string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, s.dialect.rebind(selectColumns+" WHERE class_name = ?"), className)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get export of %s: %w", className, err)
	}
	return e, nil
}

// List returns every log row, most recent first
func (s *Store) List(ctx context.Context) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+" ORDER BY exported_at DESC, class_name ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query export log: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan export entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating export log: %w", err)
	}
	return entries, nil
}

// Unchanged reports whether className was last exported with checksum
func (s *Store) Unchanged(ctx context.Context, className, checksum string) (bool, error) {
	e, err := s.Get(ctx, className)
	if err != nil || e == nil {
		return false, err
	}
	return e.Checksum == checksum, nil
}
