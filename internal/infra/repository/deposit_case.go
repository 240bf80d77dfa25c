package repository

import (
	"context"
	"log/slog"

	"rental-ledger/internal/domain/depositcase"
	"rental-ledger/internal/infra/db"
	"rental-ledger/internal/infra/repository/converter"

	"github.com/google/uuid"
)

type DepositCaseRepository struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewDepositCaseRepository(dbtx db.DBTX) *DepositCaseRepository {
	return &DepositCaseRepository{
		db:     dbtx,
		logger: slog.Default(),
	}
}

func (r *DepositCaseRepository) Create(ctx context.Context, c *depositcase.DepositCase) error {
	row := converter.DepositCaseToRow(c)
	_, err := r.db.Exec(ctx, `
		INSERT INTO deposit_cases (`+converter.DepositCaseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		row.ID, row.PaymentID, row.BookingID, row.HostID, row.RenterID, row.RequestedAmount, row.Reason,
		row.Status, row.ResolutionAmount, row.ResolutionNote, row.Version, row.CreatedAt, row.UpdatedAt, row.ResolvedAt,
	)
	if err != nil {
		return wrapWriteErr(r.logger, "failed to create deposit case", err)
	}
	return nil
}

func (r *DepositCaseRepository) Update(ctx context.Context, c *depositcase.DepositCase) error {
	row := converter.DepositCaseToRow(c)
	tag, err := r.db.Exec(ctx, `
		UPDATE deposit_cases
		SET status = $3,
		    resolution_amount = $4,
		    resolution_note = $5,
		    resolved_at = $6,
		    updated_at = $7,
		    version = version + 1
		WHERE id = $1 AND version = $2`,
		row.ID, row.Version, row.Status, row.ResolutionAmount, row.ResolutionNote, row.ResolvedAt, row.UpdatedAt,
	)
	if err != nil {
		return wrapWriteErr(r.logger, "failed to update deposit case", err)
	}
	if tag.RowsAffected() == 0 {
		return staleVersion(r.logger, "deposit case version changed")
	}
	c.IncrementVersion()
	return nil
}

func (r *DepositCaseRepository) findOne(ctx context.Context, where string, arg any) (*depositcase.DepositCase, error) {
	var row converter.DepositCaseRow
	err := r.db.QueryRow(ctx, `SELECT `+converter.DepositCaseColumns+` FROM deposit_cases WHERE `+where, arg).Scan(row.Targets()...)
	if err != nil {
		return nil, wrapReadErr(r.logger, "deposit case not found", "failed to find deposit case", err)
	}
	return converter.DepositCaseFromRow(row), nil
}

func (r *DepositCaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*depositcase.DepositCase, error) {
	return r.findOne(ctx, "id = $1", id)
}

func (r *DepositCaseRepository) FindPendingByPaymentID(ctx context.Context, paymentID uuid.UUID) (*depositcase.DepositCase, error) {
	return r.findOne(ctx, "payment_id = $1 AND status IN ('open', 'under_review')", paymentID)
}

// FindDecidedByPaymentID returns the latest case with a decision that is not yet resolved.
func (r *DepositCaseRepository) FindDecidedByPaymentID(ctx context.Context, paymentID uuid.UUID) (*depositcase.DepositCase, error) {
	return r.findOne(ctx, `payment_id = $1
		  AND status IN ('approved', 'partially_approved', 'rejected')
		ORDER BY updated_at DESC
		LIMIT 1`, paymentID)
}
