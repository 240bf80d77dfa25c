package commands

import (
	"context"
	"log/slog"

	"rental-ledger/internal/domain/booking"
	"rental-ledger/internal/domain/payment"
	"rental-ledger/internal/pkg/clock"
	"rental-ledger/internal/pkg/errs"
	"rental-ledger/internal/usecase/shared"

	"github.com/google/uuid"
)

type cancelAction int

const (
	cancelNone cancelAction = iota
	cancelExpireSession
	cancelVoidAuthorization
	cancelRefund
)

type CancelResult struct {
	Booking *booking.Booking
	// AwaitingProcessor is true when the processor's confirmation finalizes the cancellation.
	AwaitingProcessor bool
}

type BookingCommands interface {
	CancelReservation(ctx context.Context, bookingID, renterID uuid.UUID) (*CancelResult, error)
	MarkCompleted(ctx context.Context, bookingID, actorID uuid.UUID, isAdmin bool) (*booking.Booking, error)
}

type bookingCommandsImpl struct {
	uow       shared.UnitOfWork
	processor PaymentProcessor
	clock     clock.Clock
	settings  Settings
}

func NewBookingCommands(uow shared.UnitOfWork, processor PaymentProcessor, clock clock.Clock, settings Settings) BookingCommands {
	return &bookingCommandsImpl{
		uow:       uow,
		processor: processor,
		clock:     clock,
		settings:  settings,
	}
}

func (b *bookingCommandsImpl) CancelReservation(ctx context.Context, bookingID, renterID uuid.UUID) (*CancelResult, error) {
	var (
		result = &CancelResult{}
		action cancelAction
		p      *payment.Payment
	)
	err := withCASRetry(ctx, b.uow, func(ctx context.Context, tx shared.Tx) error {
		now := b.clock.Now()
		bk, err := tx.Bookings().FindByID(ctx, bookingID)
		if err != nil {
			if isNotFound(err) {
				return errs.ErrBookingNotFound
			}
			return err
		}
		if bk.RenterID() != renterID {
			return errs.ErrForbidden
		}

		p, err = tx.Payments().FindByBookingID(ctx, bookingID)
		if err != nil && !isNotFound(err) {
			return err
		}
		if err != nil {
			p = nil
		}

		action, err = planCancellation(p)
		if err != nil {
			return err
		}

		if action == cancelNone {
			if err := bk.CancelDirectly(now); err != nil {
				return markBookingError(err)
			}
			if p != nil {
				changed, err := p.MarkFailed("cancelled before checkout", now)
				if err != nil {
					return markTransitionError(err)
				}
				if changed {
					if err := tx.Payments().Update(ctx, p); err != nil {
						return err
					}
				}
			}
		} else {
			if err := bk.RequestCancel(now); err != nil {
				return markBookingError(err)
			}
			if p.RequestCancellationRefund(now) {
				if err := tx.Payments().Update(ctx, p); err != nil {
					return err
				}
			}
		}

		if err := tx.Bookings().Update(ctx, bk); err != nil {
			return err
		}
		result.Booking = bk
		return nil
	})
	if err != nil {
		var ref *uuid.UUID
		if p != nil {
			ref = paymentRef(p.ID)
		}
		return nil, alertOnInvariant(ctx, b.uow, "cancel", ref, err, b.clock.Now())
	}

	if action == cancelNone {
		slog.Info("booking cancelled", "booking_id", bookingID.String())
		return result, nil
	}

	result.AwaitingProcessor = true
	policy := retryPolicy{MaxAttempts: 2, BaseDelay: b.settings.RetryBaseDelay, CallTimeout: b.settings.CallTimeout}
	_, err = callProvider(ctx, policy, func(ctx context.Context) error {
		switch action {
		case cancelExpireSession:
			return b.processor.ExpireCheckoutSession(ctx, p.CheckoutSessionID)
		case cancelVoidAuthorization:
			return b.processor.CancelPayment(ctx, p.PaymentIntentID, voidKey(p.ID))
		default:
			_, err := b.processor.Refund(ctx, RefundParams{
				PaymentID:       p.ID,
				PaymentIntentID: p.PaymentIntentID,
				Reason:          "requested_by_customer",
				IdempotencyKey:  cancelRefundKey(p.ID),
			})
			return err
		}
	})
	if err != nil {
		slog.Error("processor cancellation failed",
			"booking_id", bookingID.String(),
			"payment_id", p.ID.String(),
			"error", err.Error())
		return nil, errs.Mark(err, errs.ErrProviderTransient)
	}

	slog.Info("booking cancellation requested",
		"booking_id", bookingID.String(),
		"payment_id", p.ID.String(),
		"payment_status", p.Status.String())
	return result, nil
}

// planCancellation picks the processor call that will produce the confirming event.
func planCancellation(p *payment.Payment) (cancelAction, error) {
	if p == nil {
		return cancelNone, nil
	}
	switch p.Status {
	case payment.StatusMethodCollectionPending, payment.StatusFailed:
		return cancelNone, nil
	case payment.StatusCheckoutCreated:
		return cancelExpireSession, nil
	case payment.StatusPaid:
		if p.CaptureStatus == payment.CapturePending {
			return cancelVoidAuthorization, nil
		}
		return cancelRefund, nil
	case payment.StatusPartiallyRefunded:
		return cancelRefund, nil
	default:
		return cancelNone, errs.Wrapf(errs.ErrStateConflict, "cannot cancel with payment status %s", p.Status)
	}
}

func (b *bookingCommandsImpl) MarkCompleted(ctx context.Context, bookingID, actorID uuid.UUID, isAdmin bool) (*booking.Booking, error) {
	var completed *booking.Booking
	err := withCASRetry(ctx, b.uow, func(ctx context.Context, tx shared.Tx) error {
		bk, err := tx.Bookings().FindByID(ctx, bookingID)
		if err != nil {
			if isNotFound(err) {
				return errs.ErrBookingNotFound
			}
			return err
		}
		if !isAdmin && bk.RenterID() != actorID && bk.HostID() != actorID {
			return errs.ErrForbidden
		}

		p, err := tx.Payments().FindByBookingID(ctx, bookingID)
		if err != nil && !isNotFound(err) {
			return err
		}
		if err := bk.MarkCompleted(p, b.clock.Now()); err != nil {
			return markBookingError(err)
		}
		if err := tx.Bookings().Update(ctx, bk); err != nil {
			return err
		}
		completed = bk
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("booking completed", "booking_id", bookingID.String())
	return completed, nil
}

func markBookingError(err error) error {
	return errs.Mark(err, errs.ErrStateConflict)
}
