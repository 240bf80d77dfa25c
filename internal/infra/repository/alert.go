package repository

import (
	"context"
	"log/slog"

	"rental-ledger/internal/infra/db"
	"rental-ledger/internal/pkg/pgconv"
	"rental-ledger/internal/usecase/shared"
)

type AlertRepository struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewAlertRepository(dbtx db.DBTX) *AlertRepository {
	return &AlertRepository{
		db:     dbtx,
		logger: slog.Default(),
	}
}

func (r *AlertRepository) Raise(ctx context.Context, alert shared.Alert) error {
	payload := alert.Payload
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	_, err := r.db.Exec(ctx, `
		INSERT INTO ledger_alerts (kind, dedup_key, payment_id, message, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (kind, dedup_key) DO NOTHING`,
		string(alert.Kind), alert.DedupKey, pgconv.UUIDPtrToPgtype(alert.PaymentID), alert.Message, payload, alert.CreatedAt,
	)
	if err != nil {
		return wrapWriteErr(r.logger, "failed to raise ledger alert", err)
	}
	return nil
}
