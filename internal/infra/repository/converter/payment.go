package converter

import (
	"time"

	"rental-ledger/internal/domain/payment"
	"rental-ledger/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const PaymentColumns = `id, booking_id, car_id, renter_id, host_id, host_account_id, trip_start, trip_end,
	checkout_session_id, checkout_url, payment_intent_id, charge_id,
	strategy, capture_status, manual_capture_deadline, capture_attempts,
	currency, rental_amount, platform_fee_amount, host_amount, deposit_amount, refunded_amount,
	status, paid_at, payment_due_at,
	deposit_status, deposit_claim_window_ends_at, deposit_refund_amount, deposit_retained_amount,
	deposit_refund_id, deposit_transfer_id,
	payout_status, release_at, payout_attempts, stripe_transfer_id, stripe_transfer_reversal_id,
	last_webhook_event_id, last_error, lease_owner, lease_expires_at,
	version, created_at, updated_at`

type PaymentRow struct {
	ID            uuid.UUID
	BookingID     uuid.UUID
	CarID         uuid.UUID
	RenterID      uuid.UUID
	HostID        uuid.UUID
	HostAccountID pgtype.Text
	TripStart     time.Time
	TripEnd       time.Time

	CheckoutSessionID pgtype.Text
	CheckoutURL       pgtype.Text
	PaymentIntentID   pgtype.Text
	ChargeID          pgtype.Text

	Strategy              string
	CaptureStatus         string
	ManualCaptureDeadline pgtype.Timestamptz
	CaptureAttempts       int32

	Currency          string
	RentalAmount      int64
	PlatformFeeAmount int64
	HostAmount        int64
	DepositAmount     int64
	RefundedAmount    int64

	Status       string
	PaidAt       pgtype.Timestamptz
	PaymentDueAt pgtype.Timestamptz

	DepositStatus            string
	DepositClaimWindowEndsAt pgtype.Timestamptz
	DepositRefundAmount      int64
	DepositRetainedAmount    int64
	DepositRefundID          pgtype.Text
	DepositTransferID        pgtype.Text

	PayoutStatus             string
	ReleaseAt                pgtype.Timestamptz
	PayoutAttempts           int32
	StripeTransferID         pgtype.Text
	StripeTransferReversalID pgtype.Text

	LastWebhookEventID pgtype.Text
	LastError          pgtype.Text
	LeaseOwner         pgtype.Text
	LeaseExpiresAt     pgtype.Timestamptz

	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Targets returns scan destinations in PaymentColumns order.
func (r *PaymentRow) Targets() []any {
	return []any{
		&r.ID, &r.BookingID, &r.CarID, &r.RenterID, &r.HostID, &r.HostAccountID, &r.TripStart, &r.TripEnd,
		&r.CheckoutSessionID, &r.CheckoutURL, &r.PaymentIntentID, &r.ChargeID,
		&r.Strategy, &r.CaptureStatus, &r.ManualCaptureDeadline, &r.CaptureAttempts,
		&r.Currency, &r.RentalAmount, &r.PlatformFeeAmount, &r.HostAmount, &r.DepositAmount, &r.RefundedAmount,
		&r.Status, &r.PaidAt, &r.PaymentDueAt,
		&r.DepositStatus, &r.DepositClaimWindowEndsAt, &r.DepositRefundAmount, &r.DepositRetainedAmount,
		&r.DepositRefundID, &r.DepositTransferID,
		&r.PayoutStatus, &r.ReleaseAt, &r.PayoutAttempts, &r.StripeTransferID, &r.StripeTransferReversalID,
		&r.LastWebhookEventID, &r.LastError, &r.LeaseOwner, &r.LeaseExpiresAt,
		&r.Version, &r.CreatedAt, &r.UpdatedAt,
	}
}

// Values returns insert arguments in PaymentColumns order.
func (r PaymentRow) Values() []any {
	return []any{
		r.ID, r.BookingID, r.CarID, r.RenterID, r.HostID, r.HostAccountID, r.TripStart, r.TripEnd,
		r.CheckoutSessionID, r.CheckoutURL, r.PaymentIntentID, r.ChargeID,
		r.Strategy, r.CaptureStatus, r.ManualCaptureDeadline, r.CaptureAttempts,
		r.Currency, r.RentalAmount, r.PlatformFeeAmount, r.HostAmount, r.DepositAmount, r.RefundedAmount,
		r.Status, r.PaidAt, r.PaymentDueAt,
		r.DepositStatus, r.DepositClaimWindowEndsAt, r.DepositRefundAmount, r.DepositRetainedAmount,
		r.DepositRefundID, r.DepositTransferID,
		r.PayoutStatus, r.ReleaseAt, r.PayoutAttempts, r.StripeTransferID, r.StripeTransferReversalID,
		r.LastWebhookEventID, r.LastError, r.LeaseOwner, r.LeaseExpiresAt,
		r.Version, r.CreatedAt, r.UpdatedAt,
	}
}

func PaymentToRow(p *payment.Payment) PaymentRow {
	return PaymentRow{
		ID:            p.ID,
		BookingID:     p.BookingID,
		CarID:         p.CarID,
		RenterID:      p.RenterID,
		HostID:        p.HostID,
		HostAccountID: pgconv.TextFromString(p.HostAccountID),
		TripStart:     p.TripStart,
		TripEnd:       p.TripEnd,

		CheckoutSessionID: pgconv.TextFromString(p.CheckoutSessionID),
		CheckoutURL:       pgconv.TextFromString(p.CheckoutURL),
		PaymentIntentID:   pgconv.TextFromString(p.PaymentIntentID),
		ChargeID:          pgconv.TextFromString(p.ChargeID),

		Strategy:              p.Strategy.String(),
		CaptureStatus:         p.CaptureStatus.String(),
		ManualCaptureDeadline: pgconv.TimePtrToPgtype(p.ManualCaptureDeadline),
		CaptureAttempts:       int32(p.CaptureAttempts), // #nosec G115 -- bounded by CAPTURE_MAX_ATTEMPTS

		Currency:          p.Currency,
		RentalAmount:      p.RentalAmount,
		PlatformFeeAmount: p.PlatformFeeAmount,
		HostAmount:        p.HostAmount,
		DepositAmount:     p.DepositAmount,
		RefundedAmount:    p.RefundedAmount,

		Status:       p.Status.String(),
		PaidAt:       pgconv.TimePtrToPgtype(p.PaidAt),
		PaymentDueAt: pgconv.TimePtrToPgtype(p.PaymentDueAt),

		DepositStatus:            p.DepositStatus.String(),
		DepositClaimWindowEndsAt: pgconv.TimePtrToPgtype(p.DepositClaimWindowEndsAt),
		DepositRefundAmount:      p.DepositRefundAmount,
		DepositRetainedAmount:    p.DepositRetainedAmount,
		DepositRefundID:          pgconv.TextFromString(p.DepositRefundID),
		DepositTransferID:        pgconv.TextFromString(p.DepositTransferID),

		PayoutStatus:             p.PayoutStatus.String(),
		ReleaseAt:                pgconv.TimePtrToPgtype(p.ReleaseAt),
		PayoutAttempts:           int32(p.PayoutAttempts), // #nosec G115 -- bounded by SCHEDULER_TRANSFER_MAX_SWEEPS
		StripeTransferID:         pgconv.TextFromString(p.StripeTransferID),
		StripeTransferReversalID: pgconv.TextFromString(p.StripeTransferReversalID),

		LastWebhookEventID: pgconv.TextFromString(p.LastWebhookEventID),
		LastError:          pgconv.TextFromString(p.LastError),
		LeaseOwner:         pgconv.TextFromString(p.LeaseOwner),
		LeaseExpiresAt:     pgconv.TimePtrToPgtype(p.LeaseExpiresAt),

		Version:   p.Version,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func PaymentFromRow(r PaymentRow) *payment.Payment {
	return &payment.Payment{
		ID:            r.ID,
		BookingID:     r.BookingID,
		CarID:         r.CarID,
		RenterID:      r.RenterID,
		HostID:        r.HostID,
		HostAccountID: pgconv.StringFromText(r.HostAccountID),
		TripStart:     r.TripStart.UTC(),
		TripEnd:       r.TripEnd.UTC(),

		CheckoutSessionID: pgconv.StringFromText(r.CheckoutSessionID),
		CheckoutURL:       pgconv.StringFromText(r.CheckoutURL),
		PaymentIntentID:   pgconv.StringFromText(r.PaymentIntentID),
		ChargeID:          pgconv.StringFromText(r.ChargeID),

		Strategy:              payment.Strategy(r.Strategy),
		CaptureStatus:         payment.CaptureStatus(r.CaptureStatus),
		ManualCaptureDeadline: pgconv.TimePtrFromPgtype(r.ManualCaptureDeadline),
		CaptureAttempts:       int(r.CaptureAttempts),

		Currency:          r.Currency,
		RentalAmount:      r.RentalAmount,
		PlatformFeeAmount: r.PlatformFeeAmount,
		HostAmount:        r.HostAmount,
		DepositAmount:     r.DepositAmount,
		RefundedAmount:    r.RefundedAmount,

		Status:       payment.Status(r.Status),
		PaidAt:       pgconv.TimePtrFromPgtype(r.PaidAt),
		PaymentDueAt: pgconv.TimePtrFromPgtype(r.PaymentDueAt),

		DepositStatus:            payment.DepositStatus(r.DepositStatus),
		DepositClaimWindowEndsAt: pgconv.TimePtrFromPgtype(r.DepositClaimWindowEndsAt),
		DepositRefundAmount:      r.DepositRefundAmount,
		DepositRetainedAmount:    r.DepositRetainedAmount,
		DepositRefundID:          pgconv.StringFromText(r.DepositRefundID),
		DepositTransferID:        pgconv.StringFromText(r.DepositTransferID),

		PayoutStatus:             payment.PayoutStatus(r.PayoutStatus),
		ReleaseAt:                pgconv.TimePtrFromPgtype(r.ReleaseAt),
		PayoutAttempts:           int(r.PayoutAttempts),
		StripeTransferID:         pgconv.StringFromText(r.StripeTransferID),
		StripeTransferReversalID: pgconv.StringFromText(r.StripeTransferReversalID),

		LastWebhookEventID: pgconv.StringFromText(r.LastWebhookEventID),
		LastError:          pgconv.StringFromText(r.LastError),
		LeaseOwner:         pgconv.StringFromText(r.LeaseOwner),
		LeaseExpiresAt:     pgconv.TimePtrFromPgtype(r.LeaseExpiresAt),

		Version:   r.Version,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}
