package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

const (
	// DefaultMaxRetries is the default number of attempts for a batch write
	DefaultMaxRetries = 3
	// DefaultBaseBackoff is the default base backoff duration
	DefaultBaseBackoff = 50 * time.Millisecond
)

// ErrRetriesExhausted is returned when every attempt hit a lock conflict
var ErrRetriesExhausted = errors.New("export log write retries exhausted")

// RetryConfig configures retry behavior for batch writes
type RetryConfig struct {
	MaxRetries  int
	BaseBackoff time.Duration
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:  DefaultMaxRetries,
		BaseBackoff: DefaultBaseBackoff,
	}
}

// withTransaction runs fn in a transaction, committing on success
func (s *Store) withTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed: %w, rollback failed: %v", err, rbErr)
		}
		return err
	}

	return tx.Commit()
}

// withRetry runs fn in a transaction and retries with exponential backoff
// while the failure is a lock conflict
func (s *Store) withRetry(ctx context.Context, fn func(tx *sql.Tx) error) error {
	var lastErr error

	for attempt := 0; attempt < s.retry.MaxRetries; attempt++ {
		if ctx.Err() != nil {
			return fmt.Errorf("export log write cancelled before attempt %d: %w", attempt, ctx.Err())
		}

		err := s.withTransaction(ctx, fn)
		if err == nil {
			return nil
		}
		if !IsRetryableError(err) {
			return err
		}
		lastErr = err

		backoff := s.retry.BaseBackoff * time.Duration(1<<uint(attempt))
		select {
		case <-ctx.Done():
			return fmt.Errorf("export log write cancelled during backoff: %w", ctx.Err())
		case <-time.After(backoff):
		}
	}

	return fmt.Errorf("%w after %d attempts: %v", ErrRetriesExhausted, s.retry.MaxRetries, lastErr)
}

// IsRetryableError reports whether err is a lock conflict worth retrying.
// Covers PostgreSQL deadlock and serialization codes and SQLite busy errors.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return isRetryableCode(pgErr.Code)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return isRetryableCode(string(pqErr.Code))
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range []string{
		"40p01",
		"40001",
		"deadlock detected",
		"could not serialize access",
		"database is locked",
		"database table is locked",
	} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// isRetryableCode matches the PostgreSQL deadlock_detected and
// serialization_failure SQLSTATE codes
func isRetryableCode(code string) bool {
	return code == "40P01" || code == "40001"
}
