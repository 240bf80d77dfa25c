package uow

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"rental-ledger/internal/infra/db"
	"rental-ledger/internal/infra/readstore"
	"rental-ledger/internal/infra/repository"
	"rental-ledger/internal/pkg/errs"
	"rental-ledger/internal/usecase/shared"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	maxTxRetries = 3

	pgErrCodeSerializationFailure = "40001"
	pgErrCodeDeadlockDetected     = "40P01"
)

var (
	errTransactionBegin   = errs.New("failed to begin transaction")
	errTransactionCommit  = errs.New("failed to commit transaction")
	errMaxRetriesExceeded = errs.New("transaction failed after max retries")
)

type PostgresUoW struct {
	pool *pgxpool.Pool
}

func NewPostgresUoW(pool *pgxpool.Pool) shared.UnitOfWork {
	return &PostgresUoW{pool: pool}
}

// Serializable so that concurrent webhook, sweep and API writers on the same
// payment either commit in a serial order or are retried.
func (u *PostgresUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.runInTxWithOptions(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable}, fn)
}

// Read-only transaction for consistent multi-table snapshots
func (u *PostgresUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return u.runReadOnlyTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, fn)
}

func (u *PostgresUoW) CommandReads() shared.CommandReads {
	return &commandReads{dbtx: u.pool}
}

// Each attempt opens and closes its own transaction. Serialization failures
// and deadlocks are retried with jittered exponential backoff; anything else
// is returned as is.
func (u *PostgresUoW) runInTxWithOptions(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) error {
	attempt := 0
	op := func() error {
		attempt++
		err := u.attempt(ctx, options, fn)
		if err == nil || isRetryableError(err) {
			return err
		}
		return backoff.Permanent(err)
	}
	notify := func(err error, wait time.Duration) {
		slog.Warn("retrying serializable transaction",
			"attempt", attempt,
			"wait_ms", wait.Milliseconds(),
			"error", err.Error())
	}

	err := backoff.RetryNotify(op, backoff.WithContext(backoff.WithMaxRetries(newTxBackOff(), maxTxRetries), ctx), notify)
	if err != nil && isRetryableError(err) {
		slog.Error("transaction failed after max retries", "attempts", attempt, "error", err.Error())
		return errs.Mark(err, errMaxRetriesExceeded)
	}
	return err
}

func (u *PostgresUoW) attempt(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) error {
	pgxTx, err := u.pool.BeginTx(ctx, options)
	if err != nil {
		return errs.Mark(err, errTransactionBegin)
	}

	err = fn(ctx, &pgTx{dbtx: pgxTx})
	if err == nil {
		if err = pgxTx.Commit(ctx); err == nil {
			return nil
		}
		err = errs.Mark(err, errTransactionCommit)
	}

	if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
		slog.Warn("rollback failed", "error", rollbackErr.Error())
	}
	return err
}

func newTxBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.RandomizationFactor = 0.2
	b.MaxInterval = time.Second
	b.MaxElapsedTime = 0
	return b
}

func (u *PostgresUoW) runReadOnlyTx(ctx context.Context, options pgx.TxOptions, fn func(ctx context.Context, tx shared.Tx) error) error {
	pgxTx, err := u.pool.BeginTx(ctx, options)
	if err != nil {
		return errs.Mark(err, errTransactionBegin)
	}

	defer func() {
		if rollbackErr := pgxTx.Rollback(ctx); rollbackErr != nil {
			if !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				slog.Warn("failed to rollback read-only transaction", "error", rollbackErr.Error())
			}
		}
	}()

	if err := fn(ctx, &pgTx{dbtx: pgxTx}); err != nil {
		return err
	}

	return pgxTx.Commit(ctx)
}

func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	switch pgErr.Code {
	case pgErrCodeSerializationFailure, pgErrCodeDeadlockDetected:
		return true
	default:
		return false
	}
}

type pgTx struct {
	dbtx db.DBTX

	// Lazy-initialized repositories
	bookingRepo      shared.BookingRepository
	paymentRepo      shared.PaymentRepository
	depositCaseRepo  shared.DepositCaseRepository
	webhookEventRepo shared.WebhookEventRepository
	alertRepo        shared.AlertRepository
	commandReads     shared.CommandReads
}

func (t *pgTx) Bookings() shared.BookingRepository {
	if t.bookingRepo == nil {
		t.bookingRepo = repository.NewBookingRepository(t.dbtx)
	}
	return t.bookingRepo
}

func (t *pgTx) Payments() shared.PaymentRepository {
	if t.paymentRepo == nil {
		t.paymentRepo = repository.NewPaymentRepository(t.dbtx)
	}
	return t.paymentRepo
}

func (t *pgTx) DepositCases() shared.DepositCaseRepository {
	if t.depositCaseRepo == nil {
		t.depositCaseRepo = repository.NewDepositCaseRepository(t.dbtx)
	}
	return t.depositCaseRepo
}

func (t *pgTx) WebhookEvents() shared.WebhookEventRepository {
	if t.webhookEventRepo == nil {
		t.webhookEventRepo = repository.NewWebhookEventRepository(t.dbtx)
	}
	return t.webhookEventRepo
}

func (t *pgTx) Alerts() shared.AlertRepository {
	if t.alertRepo == nil {
		t.alertRepo = repository.NewAlertRepository(t.dbtx)
	}
	return t.alertRepo
}

func (t *pgTx) Reads() shared.CommandReads {
	if t.commandReads == nil {
		t.commandReads = &commandReads{dbtx: t.dbtx}
	}
	return t.commandReads
}

type commandReads struct {
	dbtx db.DBTX

	// Lazy-initialized readstores
	carStore          *readstore.CarReadStore
	verificationStore *readstore.VerificationReadStore
}

func (r *commandReads) CarByID(ctx context.Context, id uuid.UUID) (*shared.CarSnapshot, error) {
	if r.carStore == nil {
		r.carStore = readstore.NewCarReadStore(r.dbtx)
	}
	return r.carStore.FindByID(ctx, id)
}

func (r *commandReads) VerificationByUserID(ctx context.Context, userID uuid.UUID) (*shared.VerificationSnapshot, error) {
	if r.verificationStore == nil {
		r.verificationStore = readstore.NewVerificationReadStore(r.dbtx)
	}
	return r.verificationStore.FindByUserID(ctx, userID)
}
