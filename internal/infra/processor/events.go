package processor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"rental-ledger/internal/domain/webhook"
	"rental-ledger/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v74"
	stripewebhook "github.com/stripe/stripe-go/v74/webhook"
)

func (s *StripeProcessor) ParseWebhook(payload []byte, signatureHeader string) (*webhook.Event, error) {
	evt, err := stripewebhook.ConstructEventWithOptions(payload, signatureHeader, s.webhookSecret,
		stripewebhook.ConstructEventOptions{
			Tolerance:                s.tolerance,
			IgnoreAPIVersionMismatch: true,
		})
	if err != nil {
		return nil, errs.Mark(err, errs.ErrAuthenticity)
	}
	return decodeEvent(evt)
}

func decodeEvent(evt stripe.Event) (*webhook.Event, error) {
	raw := string(evt.Type)
	e := &webhook.Event{}
	if t, ok := webhook.ParseEventType(raw); ok {
		e.Type = t
	} else {
		e.Type = webhook.EventType(raw)
	}

	if evt.Data != nil {
		var err error
		switch {
		case strings.HasPrefix(raw, "checkout.session."):
			var sess stripe.CheckoutSession
			if err = json.Unmarshal(evt.Data.Raw, &sess); err == nil {
				e = mergeEvent(e, sessionEvent(&sess))
			}
		case strings.HasPrefix(raw, "payment_intent."):
			var pi stripe.PaymentIntent
			if err = json.Unmarshal(evt.Data.Raw, &pi); err == nil {
				e = mergeEvent(e, intentEvent(&pi))
			}
		case strings.HasPrefix(raw, "charge.dispute."):
			var d stripe.Dispute
			if err = json.Unmarshal(evt.Data.Raw, &d); err == nil {
				e = mergeEvent(e, disputeEvent(&d))
			}
		case strings.HasPrefix(raw, "charge."):
			var ch stripe.Charge
			if err = json.Unmarshal(evt.Data.Raw, &ch); err == nil {
				e = mergeEvent(e, chargeEvent(&ch))
			}
		}
		if err != nil {
			return nil, errs.Mark(errs.Wrapf(err, "decode %s payload", raw), errs.ErrDomainValidation)
		}
	}

	e.ID = evt.ID
	if evt.Created > 0 {
		e.Created = time.Unix(evt.Created, 0).UTC()
	}
	return e, nil
}

// mergeEvent keeps the envelope's type on top of the object facts.
func mergeEvent(envelope, facts *webhook.Event) *webhook.Event {
	facts.Type = envelope.Type
	return facts
}

func sessionEvent(sess *stripe.CheckoutSession) *webhook.Event {
	e := &webhook.Event{
		PaymentID:         metadataPayment(sess.Metadata),
		CheckoutSessionID: sess.ID,
	}
	if pi := sess.PaymentIntent; pi != nil {
		e.PaymentIntentID = pi.ID
		e.ChargeID = latestChargeID(pi)
		if e.PaymentID == uuid.Nil {
			e.PaymentID = metadataPayment(pi.Metadata)
		}
		e.Captured = pi.Status == stripe.PaymentIntentStatusSucceeded
	}
	e.Authorized = sessionAuthorized(sess)
	return e
}

// sessionAuthorized: a manual-capture session may still report "unpaid"
// while its intent already holds the funds.
func sessionAuthorized(sess *stripe.CheckoutSession) bool {
	if sess.Status != stripe.CheckoutSessionStatusComplete && sess.Status != "" {
		return false
	}
	switch sess.PaymentStatus {
	case stripe.CheckoutSessionPaymentStatusPaid, stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		return true
	}
	if pi := sess.PaymentIntent; pi != nil {
		return pi.Status == stripe.PaymentIntentStatusRequiresCapture ||
			pi.Status == stripe.PaymentIntentStatusSucceeded
	}
	return false
}

func intentEvent(pi *stripe.PaymentIntent) *webhook.Event {
	e := &webhook.Event{
		PaymentID:       metadataPayment(pi.Metadata),
		PaymentIntentID: pi.ID,
		ChargeID:        latestChargeID(pi),
		Captured:        pi.Status == stripe.PaymentIntentStatusSucceeded,
	}
	if pi.LastPaymentError != nil {
		e.FailureReason = pi.LastPaymentError.Msg
	}
	if pi.CancellationReason != "" && e.FailureReason == "" {
		e.FailureReason = string(pi.CancellationReason)
	}
	return e
}

func chargeEvent(ch *stripe.Charge) *webhook.Event {
	e := &webhook.Event{
		PaymentID:      metadataPayment(ch.Metadata),
		ChargeID:       ch.ID,
		Captured:       ch.Captured,
		AmountRefunded: ch.AmountRefunded,
		FailureReason:  ch.FailureMessage,
	}
	if ch.PaymentIntent != nil {
		e.PaymentIntentID = ch.PaymentIntent.ID
	}
	return e
}

func disputeEvent(d *stripe.Dispute) *webhook.Event {
	e := &webhook.Event{
		PaymentID:  metadataPayment(d.Metadata),
		DisputeWon: d.Status == stripe.DisputeStatusWon,
	}
	if d.Charge != nil {
		e.ChargeID = d.Charge.ID
		if e.PaymentID == uuid.Nil {
			e.PaymentID = metadataPayment(d.Charge.Metadata)
		}
	}
	if d.PaymentIntent != nil {
		e.PaymentIntentID = d.PaymentIntent.ID
	}
	return e
}

func metadataPayment(md map[string]string) uuid.UUID {
	id, err := uuid.Parse(md[metadataPaymentID])
	if err != nil {
		return uuid.Nil
	}
	return id
}

// classifyError marks processor failures as transient or permanent so callers
// know whether a retry with the same idempotency key can succeed.
func classifyError(err error) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		switch {
		case se.HTTPStatusCode == http.StatusTooManyRequests,
			se.HTTPStatusCode >= http.StatusInternalServerError,
			se.Type == stripe.ErrorTypeAPI,
			se.Code == stripe.ErrorCodeLockTimeout,
			se.Code == stripe.ErrorCodeRateLimit:
			return errs.Mark(err, errs.ErrProviderTransient)
		default:
			return errs.Mark(err, errs.ErrProviderPermanent)
		}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	// Network failures and timeouts
	return errs.Mark(err, errs.ErrProviderTransient)
}
