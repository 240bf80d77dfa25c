//go:build unit || e2e

package dbtest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// Execer is satisfied by a pool, a connection or a transaction.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// CreateTestCar inserts an active listing owned by hostID.
func CreateTestCar(t *testing.T, db Execer, hostID uuid.UUID, dailyRate, depositAmount int64) uuid.UUID {
	t.Helper()

	carID := uuid.New()
	_, err := db.Exec(context.Background(),
		"INSERT INTO cars (id, host_id, daily_rate, deposit_amount, currency, active) VALUES ($1, $2, $3, $4, 'eur', true)",
		carID, hostID, dailyRate, depositAmount)
	require.NoError(t, err)

	return carID
}

func CreateVerifiedRenter(t *testing.T, db Execer) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	_, err := db.Exec(context.Background(),
		"INSERT INTO account_verifications (user_id, ready_to_book) VALUES ($1, true)", userID)
	require.NoError(t, err)

	return userID
}

// CreatePayoutHost inserts a host whose connected account can receive transfers.
func CreatePayoutHost(t *testing.T, db Execer, accountID string) uuid.UUID {
	t.Helper()

	userID := uuid.New()
	_, err := db.Exec(context.Background(),
		"INSERT INTO account_verifications (user_id, ready_to_book, payouts_enabled, connected_account_id) VALUES ($1, true, true, $2)",
		userID, accountID)
	require.NoError(t, err)

	return userID
}

// ResetDB empties every table in the public schema. Migrations carry no
// seed data, so nothing is restored afterwards.
func ResetDB(pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var tables string
	err := pool.QueryRow(ctx, `
		SELECT coalesce(string_agg('public.' || quote_ident(tablename), ', '), '')
		FROM pg_tables
		WHERE schemaname = 'public'`).Scan(&tables)
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}
	if tables == "" {
		return nil
	}
	_, err = pool.Exec(ctx, "TRUNCATE "+tables+" RESTART IDENTITY CASCADE")
	return err
}
