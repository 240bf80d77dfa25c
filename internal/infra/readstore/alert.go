package readstore

import (
	"context"
	"log/slog"
	"time"

	"rental-ledger/internal/infra"
	"rental-ledger/internal/infra/db"
	"rental-ledger/internal/pkg/pgconv"
	"rental-ledger/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type AlertReadStore struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewAlertReadStore(dbtx db.DBTX) *AlertReadStore {
	return &AlertReadStore{db: dbtx, logger: slog.Default()}
}

func (s *AlertReadStore) FindOpenFirstPage(ctx context.Context, limit int32) ([]*queries.AlertView, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, kind, dedup_key, payment_id, message, payload, created_at
		FROM ledger_alerts
		WHERE resolved_at IS NULL
		ORDER BY created_at DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to find open alerts", err)
	}
	return s.collect(rows)
}

func (s *AlertReadStore) FindOpenKeyset(ctx context.Context, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.AlertView, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, kind, dedup_key, payment_id, message, payload, created_at
		FROM ledger_alerts
		WHERE resolved_at IS NULL
		  AND (created_at, id) < ($1, $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $3`, lastCreatedAt, lastID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to find open alerts keyset", err)
	}
	return s.collect(rows)
}

func (s *AlertReadStore) collect(rows pgx.Rows) ([]*queries.AlertView, error) {
	alerts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*queries.AlertView, error) {
		var (
			a         queries.AlertView
			paymentID pgtype.UUID
			payload   []byte
		)
		if err := row.Scan(&a.ID, &a.Kind, &a.DedupKey, &paymentID, &a.Message, &payload, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.PaymentID = pgconv.UUIDPtrFromPgtype(paymentID)
		a.Payload = payload
		a.CreatedAt = a.CreatedAt.UTC()
		return &a, nil
	})
	if err != nil {
		return nil, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to scan alerts", err)
	}
	return alerts, nil
}
