package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T, fresh bool, path string) *Sqldb {
	t.Helper()
	d, err := New(WithConnURL(path), WithFresh(fresh))
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func TestSchema(t *testing.T) {
	for driver, count := range map[string]int{DriverSQLite: 6, DriverMySQL: 4} {
		script, err := Schema(driver)
		require.NoError(t, err, driver)
		stmts := SplitStatements(script)
		assert.Len(t, stmts, count, driver)
		assert.Contains(t, script, "CREATE TABLE answer")
		assert.Contains(t, script, "CREATE TABLE label")
	}

	_, err := Schema("postgres")
	assert.Error(t, err)
}

func TestSplitStatements(t *testing.T) {
	assert.Equal(t, []string{"SELECT 1", "SELECT 2"}, SplitStatements(" SELECT 1;\n\n;SELECT 2;\n"))
	assert.Empty(t, SplitStatements(" ; \n"))
}

func TestNewEmptyURL(t *testing.T) {
	_, err := New()
	assert.Error(t, err)
}

func TestBootstrapAndExists(t *testing.T) {
	ctx := context.Background()
	d := openTemp(t, true, filepath.Join(t.TempDir(), "tables.sqlite"))

	script, err := Schema(DriverSQLite)
	require.NoError(t, err)
	require.NoError(t, d.Bootstrap(ctx, script))
	assert.Error(t, d.Bootstrap(ctx, ";"))

	ok, err := d.Exists(ctx, "SELECT 1 FROM answer WHERE question_id = ? LIMIT 1", 1)
	require.NoError(t, err)
	assert.False(t, ok)

	err = d.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO answer (question_id, answer_id, question, answer, star) VALUES (?, ?, ?, ?, ?)", 1, 2, "q", "a", 3)
		return err
	})
	require.NoError(t, err)

	ok, err = d.Exists(ctx, "SELECT 1 FROM answer WHERE question_id = ? LIMIT 1", 1)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWithTxRollback(t *testing.T) {
	ctx := context.Background()
	d := openTemp(t, true, filepath.Join(t.TempDir(), "tables.sqlite"))
	script, _ := Schema(DriverSQLite)
	require.NoError(t, d.Bootstrap(ctx, script))

	boom := errors.New("boom")
	err := d.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "INSERT INTO label (question_id, label) VALUES (?, ?)", 1, "恋爱"); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	ok, err := d.Exists(ctx, "SELECT 1 FROM label LIMIT 1")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Panics(t, func() {
		_ = d.WithTx(ctx, func(tx *sql.Tx) error {
			_, _ = tx.ExecContext(ctx, "INSERT INTO label (question_id, label) VALUES (?, ?)", 1, "婚姻")
			panic("unexpected")
		})
	})
	ok, err = d.Exists(ctx, "SELECT 1 FROM label LIMIT 1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWithTxRollbackError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	d := NewFromDB(db)

	boom := errors.New("boom")
	mock.ExpectBegin()
	mock.ExpectRollback().WillReturnError(errors.New("connection lost"))

	err = d.WithTx(context.Background(), func(tx *sql.Tx) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "failed to rollback")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithTxCommitError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	d := NewFromDB(db)

	mock.ExpectBegin()
	mock.ExpectCommit().WillReturnError(errors.New("disk full"))

	err = d.WithTx(context.Background(), func(tx *sql.Tx) error { return nil })
	assert.ErrorContains(t, err, "failed to commit")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFreshRemovesFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tables.sqlite")
	script, _ := Schema(DriverSQLite)

	d, err := New(WithConnURL(path), WithFresh(true))
	require.NoError(t, err)
	require.NoError(t, d.Bootstrap(ctx, script))
	require.NoError(t, d.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, "INSERT INTO label (question_id, label) VALUES (1, 'x')")
		return err
	}))
	require.NoError(t, d.Close())

	kept := openTemp(t, false, path)
	ok, err := kept.Exists(ctx, "SELECT 1 FROM label LIMIT 1")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, kept.Close())

	fresh := openTemp(t, true, path)
	_, err = fresh.Exists(ctx, "SELECT 1 FROM label LIMIT 1")
	assert.Error(t, err, "tables must be gone after a fresh open")

	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
}
