package repository

import (
	"context"
	"log/slog"
	"time"

	"rental-ledger/internal/domain/payment"
	"rental-ledger/internal/infra/db"
	"rental-ledger/internal/infra/repository/converter"
	"rental-ledger/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PaymentRepository struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewPaymentRepository(dbtx db.DBTX) *PaymentRepository {
	return &PaymentRepository{
		db:     dbtx,
		logger: slog.Default(),
	}
}

func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	row := converter.PaymentToRow(p)
	_, err := r.db.Exec(ctx, `
		INSERT INTO payments (`+converter.PaymentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		        $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
		        $21, $22, $23, $24, $25, $26, $27, $28, $29, $30,
		        $31, $32, $33, $34, $35, $36, $37, $38, $39, $40,
		        $41, $42, $43)`,
		row.Values()...,
	)
	if err != nil {
		return wrapWriteErr(r.logger, "failed to create payment", err)
	}
	return nil
}

// Update writes every mutable column guarded by the version the payment was read at.
func (r *PaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	// Nothing that breaks the ledger invariants reaches the table.
	if err := p.Validate(); err != nil {
		r.logger.Error("refusing to persist invalid payment", "payment_id", p.ID.String(), "error", err.Error())
		return errs.Mark(err, errs.ErrInvariantViolation)
	}
	row := converter.PaymentToRow(p)
	tag, err := r.db.Exec(ctx, `
		UPDATE payments
		SET host_account_id = $3,
		    checkout_session_id = $4,
		    checkout_url = $5,
		    payment_intent_id = $6,
		    charge_id = $7,
		    strategy = $8,
		    capture_status = $9,
		    manual_capture_deadline = $10,
		    capture_attempts = $11,
		    refunded_amount = $12,
		    status = $13,
		    paid_at = $14,
		    payment_due_at = $15,
		    deposit_status = $16,
		    deposit_claim_window_ends_at = $17,
		    deposit_refund_amount = $18,
		    deposit_retained_amount = $19,
		    deposit_refund_id = $20,
		    deposit_transfer_id = $21,
		    payout_status = $22,
		    release_at = $23,
		    payout_attempts = $24,
		    stripe_transfer_id = $25,
		    stripe_transfer_reversal_id = $26,
		    last_webhook_event_id = $27,
		    last_error = $28,
		    lease_owner = $29,
		    lease_expires_at = $30,
		    updated_at = $31,
		    version = version + 1
		WHERE id = $1 AND version = $2`,
		row.ID, row.Version,
		row.HostAccountID, row.CheckoutSessionID, row.CheckoutURL, row.PaymentIntentID, row.ChargeID,
		row.Strategy, row.CaptureStatus, row.ManualCaptureDeadline, row.CaptureAttempts,
		row.RefundedAmount, row.Status, row.PaidAt, row.PaymentDueAt,
		row.DepositStatus, row.DepositClaimWindowEndsAt, row.DepositRefundAmount, row.DepositRetainedAmount,
		row.DepositRefundID, row.DepositTransferID,
		row.PayoutStatus, row.ReleaseAt, row.PayoutAttempts, row.StripeTransferID, row.StripeTransferReversalID,
		row.LastWebhookEventID, row.LastError, row.LeaseOwner, row.LeaseExpiresAt,
		row.UpdatedAt,
	)
	if err != nil {
		return wrapWriteErr(r.logger, "failed to update payment", err)
	}
	if tag.RowsAffected() == 0 {
		return staleVersion(r.logger, "payment version changed")
	}
	p.Version++
	return nil
}

func (r *PaymentRepository) findOne(ctx context.Context, where string, arg any) (*payment.Payment, error) {
	var row converter.PaymentRow
	err := r.db.QueryRow(ctx, `SELECT `+converter.PaymentColumns+` FROM payments WHERE `+where, arg).Scan(row.Targets()...)
	if err != nil {
		return nil, wrapReadErr(r.logger, "payment not found", "failed to find payment", err)
	}
	return converter.PaymentFromRow(row), nil
}

func (r *PaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	return r.findOne(ctx, "id = $1", id)
}

func (r *PaymentRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*payment.Payment, error) {
	return r.findOne(ctx, "booking_id = $1", bookingID)
}

func (r *PaymentRepository) FindByCheckoutSessionID(ctx context.Context, sessionID string) (*payment.Payment, error) {
	return r.findOne(ctx, "checkout_session_id = $1", sessionID)
}

func (r *PaymentRepository) FindByPaymentIntentID(ctx context.Context, intentID string) (*payment.Payment, error) {
	return r.findOne(ctx, "payment_intent_id = $1", intentID)
}

func (r *PaymentRepository) list(ctx context.Context, query string, args ...any) ([]*payment.Payment, error) {
	rows, err := r.db.Query(ctx, `SELECT `+converter.PaymentColumns+` FROM payments WHERE `+query, args...)
	if err != nil {
		return nil, wrapWriteErr(r.logger, "failed to list payments", err)
	}
	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*payment.Payment, error) {
		var pr converter.PaymentRow
		if err := row.Scan(pr.Targets()...); err != nil {
			return nil, err
		}
		return converter.PaymentFromRow(pr), nil
	})
	if err != nil {
		return nil, wrapWriteErr(r.logger, "failed to scan payments", err)
	}
	return result, nil
}

func (r *PaymentRepository) ListCaptureDue(ctx context.Context, now time.Time, limit int) ([]*payment.Payment, error) {
	return r.list(ctx, `
		status = 'paid'
		  AND strategy = 'destination_manual_capture'
		  AND capture_status = 'pending_capture'
		  AND manual_capture_deadline < $1
		  AND (lease_expires_at IS NULL OR lease_expires_at <= $1)
		ORDER BY manual_capture_deadline
		LIMIT $2`, now, limit)
}

func (r *PaymentRepository) ListPayoutCandidates(ctx context.Context, now time.Time, limit int) ([]*payment.Payment, error) {
	return r.list(ctx, `
		payout_status = 'pending'
		  AND status = 'paid'
		  AND capture_status IN ('captured', 'not_required')
		  AND deposit_status NOT IN ('case_submitted', 'refund_pending')
		  AND release_at <= $1
		ORDER BY release_at
		LIMIT $2`, now, limit)
}

// ListTransferCandidates includes transferring rows whose worker lease expired.
func (r *PaymentRepository) ListTransferCandidates(ctx context.Context, now time.Time, limit int) ([]*payment.Payment, error) {
	return r.list(ctx, `
		(payout_status IN ('eligible', 'error')
		   OR (payout_status = 'transferring' AND (lease_expires_at IS NULL OR lease_expires_at <= $1)))
		ORDER BY release_at
		LIMIT $2`, now, limit)
}

func (r *PaymentRepository) ListExpiredDepositWindows(ctx context.Context, now time.Time, limit int) ([]*payment.Payment, error) {
	return r.list(ctx, `
		deposit_status = 'held'
		  AND deposit_claim_window_ends_at < $1
		ORDER BY deposit_claim_window_ends_at
		LIMIT $2`, now, limit)
}

func (r *PaymentRepository) ListDepositSettlementsDue(ctx context.Context, now time.Time, limit int) ([]*payment.Payment, error) {
	return r.list(ctx, `
		status = 'paid'
		  AND capture_status IN ('captured', 'not_required')
		  AND deposit_status IN ('refunded', 'partially_refunded', 'retained')
		  AND ((deposit_refund_amount > 0 AND deposit_refund_id IS NULL)
		    OR (deposit_retained_amount > 0 AND deposit_transfer_id IS NULL))
		  AND (lease_expires_at IS NULL OR lease_expires_at <= $1)
		ORDER BY updated_at
		LIMIT $2`, now, limit)
}

func (r *PaymentRepository) ListReversalsPending(ctx context.Context, now time.Time, limit int) ([]*payment.Payment, error) {
	return r.list(ctx, `
		payout_status = 'reversal_pending'
		  AND (lease_expires_at IS NULL OR lease_expires_at <= $1)
		ORDER BY updated_at
		LIMIT $2`, now, limit)
}
