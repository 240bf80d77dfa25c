package webhook

import (
	"errors"
	"fmt"
	"time"

	"rental-ledger/internal/domain/payment"
)

var ErrUnhandledEventType = errors.New("unhandled event type")

type Context struct {
	Policy payment.Policy
	Now    time.Time
}

// Apply folds one event into the payment. It has no side effects beyond p and
// reports whether anything changed. Invariant failures wrap payment.ErrInvariantViolation
// and leave p in an undefined state; callers discard it.
func Apply(p *payment.Payment, e Event, c Context) (bool, error) {
	if e.ID != "" && e.ID == p.LastWebhookEventID {
		return false, nil
	}

	if supersededIntent(p, e) {
		return false, nil
	}

	changed, err := dispatch(p, e, c)
	if err != nil {
		return false, err
	}
	if !changed {
		return false, nil
	}
	if err := p.Validate(); err != nil {
		return false, err
	}
	p.LastWebhookEventID = e.ID
	return true, nil
}

func dispatch(p *payment.Payment, e Event, c Context) (bool, error) {
	switch e.Type {
	case CheckoutSessionCompleted:
		if !e.Authorized {
			return false, nil
		}
		return p.MarkPaid(paidFacts(e, c, e.Captured), c.Policy, c.Now)
	case PaymentIntentAmountCapturable:
		return p.MarkPaid(paidFacts(e, c, false), c.Policy, c.Now)
	case PaymentIntentSucceeded:
		return p.MarkPaid(paidFacts(e, c, true), c.Policy, c.Now)
	case CheckoutSessionExpired:
		return p.MarkFailed(reasonOr(e, "checkout session expired"), c.Now)
	case CheckoutSessionAsyncPaymentFailed, PaymentIntentPaymentFailed:
		return p.MarkFailed(reasonOr(e, "payment failed"), c.Now)
	case PaymentIntentCanceled:
		return p.MarkCanceled(c.Now)
	case ChargeCaptured:
		return p.MarkCaptured(e.ChargeID, c.Now)
	case ChargeRefunded:
		return p.ApplyRefundTotal(e.AmountRefunded, c.Now)
	case ChargeDisputeCreated:
		return p.OpenDispute(c.Now)
	case ChargeDisputeClosed:
		return p.CloseDispute(e.DisputeWon, c.Now)
	default:
		return false, fmt.Errorf("%w: %s", ErrUnhandledEventType, e.Type)
	}
}

// supersededIntent reports events about an authorization that was replaced by
// a fallback platform charge.
func supersededIntent(p *payment.Payment, e Event) bool {
	return p.Strategy == payment.StrategyPlatformTransferFallback &&
		e.PaymentIntentID != "" && p.PaymentIntentID != "" &&
		e.PaymentIntentID != p.PaymentIntentID
}

func paidFacts(e Event, c Context, captured bool) payment.PaidFacts {
	at := e.Created
	if at.IsZero() {
		at = c.Now
	}
	return payment.PaidFacts{
		SessionID:       e.CheckoutSessionID,
		PaymentIntentID: e.PaymentIntentID,
		ChargeID:        e.ChargeID,
		Captured:        captured,
		At:              at,
	}
}

func reasonOr(e Event, fallback string) string {
	if e.FailureReason != "" {
		return e.FailureReason
	}
	return fallback
}
