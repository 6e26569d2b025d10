package database

import (
	"context"
	"errors"
	"testing"

	"stocklink/internal/common"

	pgx "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
)

var serializableTx = pgx.TxOptions{IsoLevel: pgx.Serializable}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	mock, err := pgxmock.NewPool()
	assert.NoError(t, err)
	defer mock.Close()

	mock.ExpectBeginTx(serializableTx)
	mock.ExpectCommit()
	mock.ExpectRollback() // deferred rollback after commit is a no-op

	runner := NewTxRunner(mock)
	calls := 0
	err = runner.WithTx(context.Background(), func(tx pgx.Tx) error {
		calls++
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithTx_PropagatesDomainErrorsWithoutRetry(t *testing.T) {
	mock, err := pgxmock.NewPool()
	assert.NoError(t, err)
	defer mock.Close()

	mock.ExpectBeginTx(serializableTx)
	mock.ExpectRollback()

	runner := NewTxRunner(mock)
	sentinel := errors.New("insufficient stock")
	calls := 0
	err = runner.WithTx(context.Background(), func(tx pgx.Tx) error {
		calls++
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, calls)
}

func TestWithTx_RetriesSerializationFailure(t *testing.T) {
	mock, err := pgxmock.NewPool()
	assert.NoError(t, err)
	defer mock.Close()

	for i := 0; i < maxTxAttempts; i++ {
		mock.ExpectBeginTx(serializableTx)
		mock.ExpectRollback()
	}

	runner := NewTxRunner(mock)
	calls := 0
	err = runner.WithTx(context.Background(), func(tx pgx.Tx) error {
		calls++
		return &pgconn.PgError{Code: "40001"}
	})
	assert.ErrorIs(t, err, common.ErrStorageConflict)
	assert.True(t, common.IsRetryable(err))
	assert.Equal(t, maxTxAttempts, calls)
}

func TestWithTx_UniqueViolationIsAConflict(t *testing.T) {
	mock, err := pgxmock.NewPool()
	assert.NoError(t, err)
	defer mock.Close()

	for i := 0; i < maxTxAttempts; i++ {
		mock.ExpectBeginTx(serializableTx)
		mock.ExpectRollback()
	}

	// Two callers racing to create the same stock row: the loser's
	// INSERT hits the unique index. That outcome must be the typed,
	// retryable conflict, not an opaque internal error.
	runner := NewTxRunner(mock)
	calls := 0
	err = runner.WithTx(context.Background(), func(tx pgx.Tx) error {
		calls++
		return &pgconn.PgError{Code: "23505"}
	})
	assert.ErrorIs(t, err, common.ErrStorageConflict)
	assert.True(t, common.IsRetryable(err))
	assert.Equal(t, maxTxAttempts, calls)
}

func TestWithTx_RetrySucceedsAfterConflict(t *testing.T) {
	mock, err := pgxmock.NewPool()
	assert.NoError(t, err)
	defer mock.Close()

	mock.ExpectBeginTx(serializableTx)
	mock.ExpectRollback()
	mock.ExpectBeginTx(serializableTx)
	mock.ExpectCommit()
	mock.ExpectRollback()

	runner := NewTxRunner(mock)
	calls := 0
	err = runner.WithTx(context.Background(), func(tx pgx.Tx) error {
		calls++
		if calls == 1 {
			return &pgconn.PgError{Code: "23505"}
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestIsTxConflict_Codes(t *testing.T) {
	for _, code := range []string{"40001", "40P01", "23505"} {
		assert.True(t, isTxConflict(&pgconn.PgError{Code: code}), code)
	}
	assert.False(t, isTxConflict(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isTxConflict(errors.New("plain error")))
	assert.False(t, isTxConflict(nil))
}
