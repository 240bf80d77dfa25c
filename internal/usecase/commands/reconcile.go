package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"rental-ledger/internal/domain/booking"
	"rental-ledger/internal/domain/payment"
	"rental-ledger/internal/domain/webhook"
	"rental-ledger/internal/infra"
	"rental-ledger/internal/pkg/clock"
	"rental-ledger/internal/pkg/errs"
	"rental-ledger/internal/usecase/shared"

	"github.com/google/uuid"
)

type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeNoop      Outcome = "noop"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeIgnored   Outcome = "ignored"
	OutcomeUnmatched Outcome = "unmatched"
)

type Ack struct {
	EventID   string
	Outcome   Outcome
	PaymentID *uuid.UUID
	BookingID *uuid.UUID
}

var errEventAlreadyJournaled = errors.New("event already journaled")

// eventApplier folds processor events into the ledger. Webhooks and checkout
// redirects share it so both paths go through the same transition table.
type eventApplier struct {
	uow    shared.UnitOfWork
	clock  clock.Clock
	policy payment.Policy
}

func (a *eventApplier) apply(ctx context.Context, e *webhook.Event) (*Ack, error) {
	ack := &Ack{EventID: e.ID}

	seen, err := a.alreadyJournaled(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	if seen {
		ack.Outcome = OutcomeDuplicate
		return ack, nil
	}

	err = withCASRetry(ctx, a.uow, func(ctx context.Context, tx shared.Tx) error {
		now := a.clock.Now()
		p, err := resolvePayment(ctx, tx, e)
		if err != nil {
			if isNotFound(err) {
				ack.Outcome = OutcomeUnmatched
				return a.journal(ctx, tx, e, nil, OutcomeUnmatched)
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		ack.PaymentID = paymentRef(p.ID)
		ack.BookingID = paymentRef(p.BookingID)

		changed, err := webhook.Apply(p, *e, webhook.Context{Policy: a.policy, Now: now})
		if err != nil {
			return markTransitionError(err)
		}

		outcome := OutcomeNoop
		if changed {
			outcome = OutcomeApplied
			if err := tx.Payments().Update(ctx, p); err != nil {
				return err
			}
			if err := syncBooking(ctx, tx, p, now); err != nil {
				return err
			}
		}
		ack.Outcome = outcome
		return a.journal(ctx, tx, e, &p.ID, outcome)
	})

	switch {
	case err == nil:
		if ack.Outcome == OutcomeUnmatched {
			slog.Warn("webhook event matched no payment",
				"event_id", e.ID,
				"event_type", string(e.Type))
			if e.PaymentID != uuid.Nil {
				raiseAlert(ctx, a.uow, shared.AlertUnmatchedEvent, "event:"+e.ID, nil, "event references unknown payment", map[string]any{
					"event_id":   e.ID,
					"payment_id": e.PaymentID.String(),
				}, a.clock.Now())
			}
		}
		return ack, nil
	case errors.Is(err, errEventAlreadyJournaled):
		ack.Outcome = OutcomeDuplicate
		return ack, nil
	case errs.IsAny(err, errs.ErrInvariantViolation):
		raiseAlert(ctx, a.uow, shared.AlertInvariantViolation, "event:"+e.ID, ack.PaymentID, err.Error(), map[string]any{
			"event_id":   e.ID,
			"event_type": string(e.Type),
		}, a.clock.Now())
		return ack, err
	default:
		return ack, err
	}
}

func (a *eventApplier) alreadyJournaled(ctx context.Context, eventID string) (bool, error) {
	var seen bool
	err := a.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		seen, err = tx.WebhookEvents().Exists(ctx, eventID)
		return err
	})
	if err != nil {
		return false, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return seen, nil
}

func (a *eventApplier) journal(ctx context.Context, tx shared.Tx, e *webhook.Event, paymentID *uuid.UUID, outcome Outcome) error {
	inserted, err := tx.WebhookEvents().Record(ctx, shared.WebhookEventRecord{
		EventID:    e.ID,
		Type:       string(e.Type),
		PaymentID:  paymentID,
		Outcome:    string(outcome),
		ReceivedAt: a.clock.Now(),
	})
	if err != nil {
		return err
	}
	if !inserted {
		return errEventAlreadyJournaled
	}
	return nil
}

// resolvePayment prefers the payment id stamped in processor metadata, then
// falls back to the processor object ids.
func resolvePayment(ctx context.Context, tx shared.Tx, e *webhook.Event) (*payment.Payment, error) {
	repo := tx.Payments()
	if e.PaymentID != uuid.Nil {
		p, err := repo.FindByID(ctx, e.PaymentID)
		if err == nil || !isNotFound(err) {
			return p, err
		}
	}
	if e.CheckoutSessionID != "" {
		p, err := repo.FindByCheckoutSessionID(ctx, e.CheckoutSessionID)
		if err == nil || !isNotFound(err) {
			return p, err
		}
	}
	if e.PaymentIntentID != "" {
		return repo.FindByPaymentIntentID(ctx, e.PaymentIntentID)
	}
	return nil, infra.WrapRepoErr(slog.Default(), infra.KindNotFound, "event carries no payment reference", nil)
}

// syncBooking propagates the payment state to its booking. It is the only
// path by which processor events change a booking.
func syncBooking(ctx context.Context, tx shared.Tx, p *payment.Payment, now time.Time) error {
	b, err := tx.Bookings().FindByID(ctx, p.BookingID)
	if err != nil {
		return err
	}
	changed, err := b.SyncFromPayment(p, now)
	if err != nil {
		return errs.Mark(err, errs.ErrInvariantViolation)
	}
	if !changed {
		return nil
	}
	slog.Info("booking status synced from payment",
		"booking_id", b.ID().String(),
		"payment_id", p.ID.String(),
		"booking_status", b.Status().String(),
		"payment_status", p.Status.String())
	return tx.Bookings().Update(ctx, b)
}

func markTransitionError(err error) error {
	switch {
	case errors.Is(err, payment.ErrOutOfOrder):
		return errs.Mark(err, errs.ErrOutOfOrder)
	case errors.Is(err, payment.ErrInvariantViolation), errors.Is(err, booking.ErrPaymentMismatch):
		return errs.Mark(err, errs.ErrInvariantViolation)
	case errors.Is(err, webhook.ErrUnhandledEventType):
		return errs.Mark(err, errs.ErrDomainValidation)
	default:
		return errs.Mark(err, errs.ErrStateConflict)
	}
}
