package webhook

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	CheckoutSessionCompleted          EventType = "checkout.session.completed"
	CheckoutSessionExpired            EventType = "checkout.session.expired"
	CheckoutSessionAsyncPaymentFailed EventType = "checkout.session.async_payment_failed"
	PaymentIntentAmountCapturable     EventType = "payment_intent.amount_capturable_updated"
	PaymentIntentSucceeded            EventType = "payment_intent.succeeded"
	PaymentIntentPaymentFailed        EventType = "payment_intent.payment_failed"
	PaymentIntentCanceled             EventType = "payment_intent.canceled"
	ChargeCaptured                    EventType = "charge.captured"
	ChargeRefunded                    EventType = "charge.refunded"
	ChargeDisputeCreated              EventType = "charge.dispute.created"
	ChargeDisputeClosed               EventType = "charge.dispute.closed"
)

var knownTypes = map[EventType]struct{}{
	CheckoutSessionCompleted:          {},
	CheckoutSessionExpired:            {},
	CheckoutSessionAsyncPaymentFailed: {},
	PaymentIntentAmountCapturable:     {},
	PaymentIntentSucceeded:            {},
	PaymentIntentPaymentFailed:        {},
	PaymentIntentCanceled:             {},
	ChargeCaptured:                    {},
	ChargeRefunded:                    {},
	ChargeDisputeCreated:              {},
	ChargeDisputeClosed:               {},
}

func ParseEventType(s string) (EventType, bool) {
	t := EventType(s)
	_, ok := knownTypes[t]
	return t, ok
}

func (t EventType) String() string {
	return string(t)
}

// Event is a processor notification reduced to the facts the ledger acts on.
type Event struct {
	ID      string
	Type    EventType
	Created time.Time

	// PaymentID comes from the metadata stamped on every processor object; uuid.Nil if absent.
	PaymentID         uuid.UUID
	CheckoutSessionID string
	PaymentIntentID   string
	ChargeID          string

	// Authorized is set for a completed session whose funds are secured
	// (authorized for manual capture, or paid).
	Authorized     bool
	Captured       bool
	AmountRefunded int64
	DisputeWon     bool
	FailureReason  string
}
