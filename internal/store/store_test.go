package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func setupMock(t *testing.T, dialect Dialect) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, dialect, WithRetryConfig(&RetryConfig{MaxRetries: 2, BaseBackoff: time.Millisecond})), mock
}

func setupSQLite(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), "sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Initialize(context.Background()))
	return s
}

func TestDialect(t *testing.T) {
	d, err := DialectFor("pgx")
	require.NoError(t, err)
	assert.Equal(t, DialectPostgres, d)
	assert.Equal(t, "SELECT $1, $2", d.rebind("SELECT ?, ?"))

	d, err = DialectFor("sqlite3")
	require.NoError(t, err)
	assert.Equal(t, "SELECT ?, ?", d.rebind("SELECT ?, ?"))

	d, err = DialectFor("postgres")
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.String())

	_, err = DialectFor("oracle")
	assert.Error(t, err)
}

func TestChecksumAndRunID(t *testing.T) {
	a := Checksum("metadata.setTable(table)\n")
	assert.Len(t, a, 16)
	assert.Equal(t, a, Checksum("metadata.setTable(table)\n"))
	assert.NotEqual(t, a, Checksum("metadata.setTable(other)\n"))

	assert.Len(t, NewRunID(), 36)
	assert.NotEqual(t, NewRunID(), NewRunID())
}

func TestStore_RecordPostgresPlaceholders(t *testing.T) {
	s, mock := setupMock(t, DialectPostgres)
	at := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("VALUES ($1, $2, $3, $4, $5, $6)")).
		WithArgs("User", "build/User.mapping", "00ff", int64(12), "run-1", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.Record(context.Background(), Entry{
		ClassName: "User", Path: "build/User.mapping", Checksum: "00ff",
		Statements: 12, RunID: "run-1", ExportedAt: at,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetMissing(t *testing.T) {
	s, mock := setupMock(t, DialectSQLite)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE class_name = ?")).
		WithArgs("Ghost").
		WillReturnRows(sqlmock.NewRows([]string{"class_name", "path", "checksum", "statements", "run_id", "exported_at"}))

	e, err := s.Get(context.Background(), "Ghost")
	require.NoError(t, err)
	assert.Nil(t, e)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_RecordAllRollsBack(t *testing.T) {
	s, mock := setupMock(t, DialectSQLite)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO mapping_exports").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO mapping_exports").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := s.RecordAll(context.Background(), []Entry{{ClassName: "A"}, {ClassName: "B"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_RecordAllRetriesLockConflicts(t *testing.T) {
	s, mock := setupMock(t, DialectSQLite)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO mapping_exports").WillReturnError(errors.New("database is locked"))
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO mapping_exports").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.RecordAll(context.Background(), []Entry{{ClassName: "A"}}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_RecordAllGivesUp(t *testing.T) {
	s, mock := setupMock(t, DialectSQLite)

	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO mapping_exports").WillReturnError(errors.New("deadlock detected"))
		mock.ExpectRollback()
	}

	err := s.RecordAll(context.Background(), []Entry{{ClassName: "A"}})
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ZeroRetriesStillWrites(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := New(db, DialectSQLite, WithRetryConfig(&RetryConfig{MaxRetries: 0, BaseBackoff: time.Millisecond}))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO mapping_exports").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.RecordAll(context.Background(), []Entry{{ClassName: "A"}}))
	assert.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO mapping_exports").WillReturnError(errors.New("database is locked"))
	mock.ExpectRollback()

	err = s.RecordAll(context.Background(), []Entry{{ClassName: "A"}})
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Contains(t, err.Error(), "after 1 attempts: database is locked")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsRetryableError(t *testing.T) {
	assert.False(t, IsRetryableError(nil))
	assert.True(t, IsRetryableError(errors.New("ERROR: deadlock detected (SQLSTATE 40P01)")))
	assert.True(t, IsRetryableError(errors.New("database is locked")))
	assert.False(t, IsRetryableError(sql.ErrNoRows))

	assert.True(t, IsRetryableError(&pgconn.PgError{Code: "40001", Message: "serialization failure"}))
	assert.False(t, IsRetryableError(&pgconn.PgError{Code: "23505", Message: "duplicate key"}))
	assert.True(t, IsRetryableError(fmt.Errorf("record: %w", &pq.Error{Code: "40P01"})))
	assert.False(t, IsRetryableError(&pq.Error{Code: "42P01"}))
}

func TestStore_SQLiteLifecycle(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	// idempotent
	require.NoError(t, s.Initialize(ctx))

	first := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.Record(ctx, Entry{
		ClassName: `App\Entity\User`, Path: "a.mapping", Checksum: Checksum("one"),
		Statements: 10, RunID: "run-1", ExportedAt: first,
	}))
	require.NoError(t, s.RecordAll(ctx, []Entry{
		{ClassName: `App\Entity\Group`, Path: "b.mapping", Checksum: Checksum("two"),
			Statements: 4, RunID: "run-2", ExportedAt: first.Add(time.Hour)},
		{ClassName: `App\Entity\User`, Path: "a2.mapping", Checksum: Checksum("three"),
			Statements: 11, RunID: "run-2", ExportedAt: first.Add(2 * time.Hour)},
	}))

	user, err := s.Get(ctx, `App\Entity\User`)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "a2.mapping", user.Path)
	assert.Equal(t, 11, user.Statements)
	assert.Equal(t, "run-2", user.RunID)
	assert.True(t, first.Add(2*time.Hour).Equal(user.ExportedAt))

	unchanged, err := s.Unchanged(ctx, `App\Entity\User`, Checksum("three"))
	require.NoError(t, err)
	assert.True(t, unchanged)
	unchanged, err = s.Unchanged(ctx, `App\Entity\Tag`, Checksum("three"))
	require.NoError(t, err)
	assert.False(t, unchanged)

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, `App\Entity\User`, entries[0].ClassName)
	assert.Equal(t, `App\Entity\Group`, entries[1].ClassName)
}

func TestStore_LogsRecords(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	s, err := Open(context.Background(), "sqlite3", ":memory:", WithLogger(zap.New(core)))
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Initialize(context.Background()))

	require.NoError(t, s.Record(context.Background(), Entry{ClassName: "User", RunID: "run-1"}))
	entries := logs.FilterMessage("recorded export").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "User", entries[0].ContextMap()["class"])
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), "oracle", "")
	assert.Error(t, err)
}
