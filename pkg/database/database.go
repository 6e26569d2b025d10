package database

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"stocklink/internal/common"
)

func NewPool(dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, err
	}

	log.Println("Database connected successfully")

	return pool, nil
}

// TxRunner executes a function inside one serializable transaction.
// Every multi-record ledger operation goes through this so stock writes
// and their movement entries commit or roll back together.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

const maxTxAttempts = 3

// TxBeginner is the slice of the pool the runner needs.
type TxBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

type pgxRunner struct {
	pool TxBeginner
}

func NewTxRunner(pool TxBeginner) TxRunner {
	return &pgxRunner{pool: pool}
}

// WithTx runs fn in a serializable transaction, retrying on
// serialization failures, deadlocks and unique violations. A unit that
// still conflicts after maxTxAttempts surfaces as ErrStorageConflict so
// the caller can decide whether to retry.
func (r *pgxRunner) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = r.runOnce(ctx, fn)
		if !isTxConflict(err) {
			return err
		}
		log.Printf("transaction conflict (attempt %d/%d): %v", attempt, maxTxAttempts, err)
	}
	return fmt.Errorf("%w: %v", common.ErrStorageConflict, err)
}

func (r *pgxRunner) runOnce(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		if isTxConflict(err) {
			return err
		}
		return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
	}
	return nil
}

// SQLSTATE 40001 = serialization_failure, 40P01 = deadlock_detected,
// 23505 = unique_violation. The last covers two transactions racing to
// create the same row; the retry sees the committed row and proceeds.
func isTxConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01" || pgErr.Code == "23505"
	}
	return false
}
