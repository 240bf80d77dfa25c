package shared

import (
	"context"
	"time"

	"rental-ledger/internal/domain/booking"
	"rental-ledger/internal/domain/depositcase"
	"rental-ledger/internal/domain/payment"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Serializable transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: Read-only transaction for multi-table consistent reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// CommandReads: Direct access to collaborator reads for validation outside transactions
	CommandReads() CommandReads
}

type Tx interface {
	Bookings() BookingRepository
	Payments() PaymentRepository
	DepositCases() DepositCaseRepository
	WebhookEvents() WebhookEventRepository
	Alerts() AlertRepository
	Reads() CommandReads
}

// CommandReads exposes tables owned by other services. They are never written here.
type CommandReads interface {
	CarByID(ctx context.Context, id uuid.UUID) (*CarSnapshot, error)
	VerificationByUserID(ctx context.Context, userID uuid.UUID) (*VerificationSnapshot, error)
}

// Every Update is a compare-and-set on the aggregate's version. A lost race
// surfaces as infra.KindStaleVersion and the in-memory version is bumped on success.
type BookingRepository interface {
	Create(ctx context.Context, b *booking.Booking) error
	Update(ctx context.Context, b *booking.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error)
	FindByIdempotencyKey(ctx context.Context, renterID uuid.UUID, key string) (*booking.Booking, error)
	HasConfirmedOverlap(ctx context.Context, carID uuid.UUID, start, end time.Time) (bool, error)
}

type PaymentRepository interface {
	Create(ctx context.Context, p *payment.Payment) error
	Update(ctx context.Context, p *payment.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error)
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*payment.Payment, error)
	FindByCheckoutSessionID(ctx context.Context, sessionID string) (*payment.Payment, error)
	FindByPaymentIntentID(ctx context.Context, intentID string) (*payment.Payment, error)

	ListCaptureDue(ctx context.Context, now time.Time, limit int) ([]*payment.Payment, error)
	ListPayoutCandidates(ctx context.Context, now time.Time, limit int) ([]*payment.Payment, error)
	ListTransferCandidates(ctx context.Context, now time.Time, limit int) ([]*payment.Payment, error)
	ListExpiredDepositWindows(ctx context.Context, now time.Time, limit int) ([]*payment.Payment, error)
	ListDepositSettlementsDue(ctx context.Context, now time.Time, limit int) ([]*payment.Payment, error)
	ListReversalsPending(ctx context.Context, now time.Time, limit int) ([]*payment.Payment, error)
}

type DepositCaseRepository interface {
	Create(ctx context.Context, c *depositcase.DepositCase) error
	Update(ctx context.Context, c *depositcase.DepositCase) error
	FindByID(ctx context.Context, id uuid.UUID) (*depositcase.DepositCase, error)
	FindPendingByPaymentID(ctx context.Context, paymentID uuid.UUID) (*depositcase.DepositCase, error)
	FindDecidedByPaymentID(ctx context.Context, paymentID uuid.UUID) (*depositcase.DepositCase, error)
}

type WebhookEventRepository interface {
	// Record returns false when the event id was already journaled.
	Record(ctx context.Context, rec WebhookEventRecord) (bool, error)
	Exists(ctx context.Context, eventID string) (bool, error)
}

type AlertRepository interface {
	// Raise is a no-op when an alert with the same kind and dedup key exists.
	Raise(ctx context.Context, alert Alert) error
}
