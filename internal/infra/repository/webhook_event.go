package repository

import (
	"context"
	"log/slog"

	"rental-ledger/internal/infra/db"
	"rental-ledger/internal/pkg/pgconv"
	"rental-ledger/internal/usecase/shared"
)

type WebhookEventRepository struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewWebhookEventRepository(dbtx db.DBTX) *WebhookEventRepository {
	return &WebhookEventRepository{
		db:     dbtx,
		logger: slog.Default(),
	}
}

func (r *WebhookEventRepository) Record(ctx context.Context, rec shared.WebhookEventRecord) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO webhook_events (event_id, type, payment_id, outcome, received_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id) DO NOTHING`,
		rec.EventID, rec.Type, pgconv.UUIDPtrToPgtype(rec.PaymentID), rec.Outcome, rec.ReceivedAt,
	)
	if err != nil {
		return false, wrapWriteErr(r.logger, "failed to record webhook event", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *WebhookEventRepository) Exists(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM webhook_events WHERE event_id = $1)`, eventID).Scan(&exists)
	if err != nil {
		return false, wrapWriteErr(r.logger, "failed to check webhook event", err)
	}
	return exists, nil
}
