package booking

import (
	"errors"
	"time"

	"rental-ledger/internal/domain/payment"

	"github.com/google/uuid"
)

var (
	ErrNotCancellable   = errors.New("booking cannot be cancelled in its current state")
	ErrTripStarted      = errors.New("trip has already started")
	ErrNotCompletable   = errors.New("booking cannot be completed in its current state")
	ErrTripNotEnded     = errors.New("trip has not ended yet")
	ErrPaymentMismatch  = errors.New("payment does not belong to booking")
	ErrInvalidTotal     = errors.New("total price must be positive")
	ErrInvalidIdemKey   = errors.New("idempotency key is required")
	ErrAlreadyCancelled = errors.New("booking is already cancelled")
)

type NewParams struct {
	CarID          uuid.UUID
	RenterID       uuid.UUID
	HostID         uuid.UUID
	DateRange      DateRange
	TotalPrice     int64
	Currency       string
	IdempotencyKey string
}

type Booking struct {
	id                uuid.UUID
	carID             uuid.UUID
	renterID          uuid.UUID
	hostID            uuid.UUID
	dateRange         DateRange
	totalPrice        int64
	currency          string
	paymentID         *uuid.UUID
	checkoutSessionID string
	idempotencyKey    string
	status            Status
	cancelRequestedAt *time.Time
	version           int64
	createdAt         time.Time
	updatedAt         time.Time
}

func New(params NewParams, now time.Time) (*Booking, error) {
	if params.TotalPrice <= 0 {
		return nil, ErrInvalidTotal
	}
	if params.IdempotencyKey == "" {
		return nil, ErrInvalidIdemKey
	}
	return &Booking{
		id:             uuid.New(),
		carID:          params.CarID,
		renterID:       params.RenterID,
		hostID:         params.HostID,
		dateRange:      params.DateRange,
		totalPrice:     params.TotalPrice,
		currency:       params.Currency,
		idempotencyKey: params.IdempotencyKey,
		status:         StatusPending,
		version:        1,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

func Reconstruct(
	id, carID, renterID, hostID uuid.UUID,
	dateRange DateRange,
	totalPrice int64,
	currency string,
	paymentID *uuid.UUID,
	checkoutSessionID, idempotencyKey string,
	status Status,
	cancelRequestedAt *time.Time,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:                id,
		carID:             carID,
		renterID:          renterID,
		hostID:            hostID,
		dateRange:         dateRange,
		totalPrice:        totalPrice,
		currency:          currency,
		paymentID:         paymentID,
		checkoutSessionID: checkoutSessionID,
		idempotencyKey:    idempotencyKey,
		status:            status,
		cancelRequestedAt: cancelRequestedAt,
		version:           version,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

func (b *Booking) ID() uuid.UUID                 { return b.id }
func (b *Booking) CarID() uuid.UUID              { return b.carID }
func (b *Booking) RenterID() uuid.UUID           { return b.renterID }
func (b *Booking) HostID() uuid.UUID             { return b.hostID }
func (b *Booking) DateRange() DateRange          { return b.dateRange }
func (b *Booking) TotalPrice() int64             { return b.totalPrice }
func (b *Booking) Currency() string              { return b.currency }
func (b *Booking) PaymentID() *uuid.UUID         { return b.paymentID }
func (b *Booking) CheckoutSessionID() string     { return b.checkoutSessionID }
func (b *Booking) IdempotencyKey() string        { return b.idempotencyKey }
func (b *Booking) Status() Status                { return b.status }
func (b *Booking) CancelRequestedAt() *time.Time { return b.cancelRequestedAt }
func (b *Booking) Version() int64                { return b.version }
func (b *Booking) CreatedAt() time.Time          { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time          { return b.updatedAt }

// IncrementVersion is called by the repository after a successful compare-and-set write.
func (b *Booking) IncrementVersion() {
	b.version++
}

func (b *Booking) AttachPayment(paymentID uuid.UUID, now time.Time) {
	id := paymentID
	b.paymentID = &id
	b.updatedAt = now
}

// SyncFromPayment derives the booking status from its payment. It is the only
// writer of the status apart from the explicit cancel and complete actions.
func (b *Booking) SyncFromPayment(p *payment.Payment, now time.Time) (bool, error) {
	if b.paymentID == nil || *b.paymentID != p.ID || p.BookingID != b.id {
		return false, ErrPaymentMismatch
	}
	if b.status == StatusCompleted || b.status == StatusCancelled {
		return false, nil
	}

	before := b.status
	if b.checkoutSessionID == "" && p.CheckoutSessionID != "" {
		b.checkoutSessionID = p.CheckoutSessionID
		b.updatedAt = now
	}

	switch p.Status {
	case payment.StatusCheckoutCreated:
		if b.status == StatusPending {
			b.status = StatusPaymentPending
		}
	case payment.StatusFailed:
		if b.status == StatusPending || b.status == StatusPaymentPending {
			b.status = StatusPaymentFailed
			if b.cancelRequestedAt != nil {
				b.status = StatusCancelled
			}
		}
	case payment.StatusCanceled:
		b.status = StatusCancelled
	case payment.StatusRefunded:
		at := now
		if p.PaidAt != nil && p.PaidAt.After(at) {
			at = *p.PaidAt
		}
		if b.cancelRequestedAt != nil || at.Before(b.dateRange.Start()) || b.isPrePayment() {
			b.status = StatusCancelled
		}
	case payment.StatusPaid, payment.StatusPartiallyRefunded, payment.StatusDisputed, payment.StatusDisputeLost:
		if b.isPrePayment() {
			b.status = StatusPaid
		}
		if b.status == StatusPaid && b.cancelRequestedAt == nil {
			b.status = StatusConfirmed
		}
	}

	if b.status != before {
		b.updatedAt = now
		return true, nil
	}
	return false, nil
}

func (b *Booking) isPrePayment() bool {
	return b.status == StatusPending || b.status == StatusPaymentPending || b.status == StatusPaymentFailed
}

// RequestCancel records the renter's intent; the processor confirmation finalizes it.
func (b *Booking) RequestCancel(now time.Time) error {
	if b.status == StatusCancelled {
		return ErrAlreadyCancelled
	}
	if !b.status.Cancellable() {
		return ErrNotCancellable
	}
	if !now.Before(b.dateRange.Start()) {
		return ErrTripStarted
	}
	if b.cancelRequestedAt == nil {
		at := now
		b.cancelRequestedAt = &at
		b.updatedAt = now
	}
	return nil
}

// CancelDirectly is used when no processor state exists that could finalize the cancellation.
func (b *Booking) CancelDirectly(now time.Time) error {
	if err := b.RequestCancel(now); err != nil {
		return err
	}
	b.status = StatusCancelled
	b.updatedAt = now
	return nil
}

func (b *Booking) MarkCompleted(p *payment.Payment, now time.Time) error {
	if b.status != StatusConfirmed {
		return ErrNotCompletable
	}
	if p == nil || (p.Status != payment.StatusPaid && p.Status != payment.StatusPartiallyRefunded) {
		return ErrNotCompletable
	}
	if now.Before(b.dateRange.End()) {
		return ErrTripNotEnded
	}
	b.status = StatusCompleted
	b.updatedAt = now
	return nil
}
