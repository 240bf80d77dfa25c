package processor

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"rental-ledger/internal/domain/webhook"
	"rental-ledger/internal/pkg/config"
	"rental-ledger/internal/pkg/errs"
	"rental-ledger/internal/usecase/commands"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
)

const metadataPaymentID = "payment_id"

// Refund reasons the processor accepts; anything else travels in metadata.
var refundReasons = map[string]struct{}{
	string(stripe.RefundReasonDuplicate):           {},
	string(stripe.RefundReasonFraudulent):          {},
	string(stripe.RefundReasonRequestedByCustomer): {},
}

type StripeProcessor struct {
	api           *client.API
	webhookSecret string
	tolerance     time.Duration
	successURL    string
	cancelURL     string
}

var _ commands.PaymentProcessor = (*StripeProcessor)(nil)

// NewStripeProcessor builds a client with network retries disabled; the ledger
// retries on its own with the same idempotency keys.
func NewStripeProcessor(cfg config.StripeConfig) *StripeProcessor {
	backendCfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: cfg.CallTimeout},
		MaxNetworkRetries: stripe.Int64(0),
	}
	if cfg.APIBaseURL != "" {
		backendCfg.URL = stripe.String(cfg.APIBaseURL)
	}
	api := &client.API{}
	api.Init(cfg.SecretKey, &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
		Connect: stripe.GetBackendWithConfig(stripe.ConnectBackend, backendCfg),
		Uploads: stripe.GetBackendWithConfig(stripe.UploadsBackend, backendCfg),
	})
	return &StripeProcessor{
		api:           api,
		webhookSecret: cfg.WebhookSecret,
		tolerance:     cfg.WebhookTolerance,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
	}
}

func (s *StripeProcessor) CreateCheckoutSession(ctx context.Context, in commands.CheckoutSessionParams) (*commands.CheckoutSession, error) {
	paymentID := in.PaymentID.String()
	lineItems := []*stripe.CheckoutSessionLineItemParams{
		lineItem(in.Currency, in.Description, in.RentalAmount),
	}
	if in.DepositAmount > 0 {
		lineItems = append(lineItems, lineItem(in.Currency, "Security deposit", in.DepositAmount))
	}

	intentData := &stripe.CheckoutSessionPaymentIntentDataParams{
		SetupFutureUsage: stripe.String(string(stripe.PaymentIntentSetupFutureUsageOffSession)),
		TransferGroup:    stripe.String(in.BookingID.String()),
		Metadata: map[string]string{
			metadataPaymentID: paymentID,
			"booking_id":      in.BookingID.String(),
		},
	}
	if in.ManualCapture {
		intentData.CaptureMethod = stripe.String(string(stripe.PaymentIntentCaptureMethodManual))
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(s.successURL),
		CancelURL:         stripe.String(s.cancelURL),
		ClientReferenceID: stripe.String(in.BookingID.String()),
		CustomerCreation:  stripe.String(string(stripe.CheckoutSessionCustomerCreationAlways)),
		LineItems:         lineItems,
		PaymentIntentData: intentData,
	}
	if !in.ExpiresAt.IsZero() {
		params.ExpiresAt = stripe.Int64(in.ExpiresAt.Unix())
	}
	params.AddMetadata(metadataPaymentID, paymentID)
	params.AddMetadata("renter_id", in.RenterID.String())
	params.AddMetadata("car_id", in.CarID.String())
	withRequest(&params.Params, ctx, in.IdempotencyKey)

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, s.classify("create checkout session", err)
	}
	out := &commands.CheckoutSession{ID: sess.ID, URL: sess.URL}
	if sess.PaymentIntent != nil {
		out.PaymentIntentID = sess.PaymentIntent.ID
	}
	return out, nil
}

// RetrieveCheckoutSession reports the session's current state as an event.
// An open session yields an empty Type.
func (s *StripeProcessor) RetrieveCheckoutSession(ctx context.Context, sessionID string) (*webhook.Event, error) {
	params := &stripe.CheckoutSessionParams{}
	params.AddExpand("payment_intent.latest_charge")
	withRequest(&params.Params, ctx, "")

	sess, err := s.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, s.classify("retrieve checkout session", err)
	}

	e := sessionEvent(sess)
	switch sess.Status {
	case stripe.CheckoutSessionStatusComplete:
		e.Type = webhook.CheckoutSessionCompleted
	case stripe.CheckoutSessionStatusExpired:
		e.Type = webhook.CheckoutSessionExpired
	}
	return e, nil
}

func (s *StripeProcessor) ExpireCheckoutSession(ctx context.Context, sessionID string) error {
	params := &stripe.CheckoutSessionExpireParams{}
	withRequest(&params.Params, ctx, "expire:"+sessionID)
	if _, err := s.api.CheckoutSessions.Expire(sessionID, params); err != nil {
		return s.classify("expire checkout session", err)
	}
	return nil
}

func (s *StripeProcessor) CapturePayment(ctx context.Context, in commands.CaptureParams) (*commands.CaptureResult, error) {
	params := &stripe.PaymentIntentCaptureParams{}
	if in.Amount > 0 {
		params.AmountToCapture = stripe.Int64(in.Amount)
	}
	params.AddExpand("latest_charge")
	withRequest(&params.Params, ctx, in.IdempotencyKey)

	pi, err := s.api.PaymentIntents.Capture(in.PaymentIntentID, params)
	if err != nil {
		return nil, s.classify("capture payment intent", err)
	}
	return &commands.CaptureResult{PaymentIntentID: pi.ID, ChargeID: latestChargeID(pi)}, nil
}

func (s *StripeProcessor) CancelPayment(ctx context.Context, paymentIntentID, idempotencyKey string) error {
	params := &stripe.PaymentIntentCancelParams{}
	withRequest(&params.Params, ctx, idempotencyKey)
	if _, err := s.api.PaymentIntents.Cancel(paymentIntentID, params); err != nil {
		return s.classify("cancel payment intent", err)
	}
	return nil
}

// ChargeOffSession charges the customer and card saved by the original
// authorization on the platform account.
func (s *StripeProcessor) ChargeOffSession(ctx context.Context, in commands.OffSessionChargeParams) (*commands.CaptureResult, error) {
	getParams := &stripe.PaymentIntentParams{}
	withRequest(&getParams.Params, ctx, "")
	original, err := s.api.PaymentIntents.Get(in.OriginalIntentID, getParams)
	if err != nil {
		return nil, s.classify("load original payment intent", err)
	}
	if original.Customer == nil || original.PaymentMethod == nil {
		return nil, errs.Wrapf(errs.ErrProviderPermanent, "payment intent %s has no reusable payment method", in.OriginalIntentID)
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(in.Amount),
		Currency:      stripe.String(in.Currency),
		Customer:      stripe.String(original.Customer.ID),
		PaymentMethod: stripe.String(original.PaymentMethod.ID),
		OffSession:    stripe.Bool(true),
		Confirm:       stripe.Bool(true),
	}
	params.AddMetadata(metadataPaymentID, in.PaymentID.String())
	params.AddMetadata("replaces", in.OriginalIntentID)
	params.AddExpand("latest_charge")
	withRequest(&params.Params, ctx, in.IdempotencyKey)

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		return nil, s.classify("off-session charge", err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, errs.Wrapf(errs.ErrProviderPermanent, "off-session charge %s ended in status %s", pi.ID, pi.Status)
	}
	return &commands.CaptureResult{PaymentIntentID: pi.ID, ChargeID: latestChargeID(pi)}, nil
}

func (s *StripeProcessor) Refund(ctx context.Context, in commands.RefundParams) (string, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(in.PaymentIntentID),
	}
	if in.Amount > 0 {
		params.Amount = stripe.Int64(in.Amount)
	}
	if _, ok := refundReasons[in.Reason]; ok {
		params.Reason = stripe.String(in.Reason)
	} else if in.Reason != "" {
		params.AddMetadata("reason", in.Reason)
	}
	params.AddMetadata(metadataPaymentID, in.PaymentID.String())
	withRequest(&params.Params, ctx, in.IdempotencyKey)

	r, err := s.api.Refunds.New(params)
	if err != nil {
		return "", s.classify("refund", err)
	}
	return r.ID, nil
}

func (s *StripeProcessor) Transfer(ctx context.Context, in commands.TransferParams) (string, error) {
	params := &stripe.TransferParams{
		Amount:        stripe.Int64(in.Amount),
		Currency:      stripe.String(in.Currency),
		Destination:   stripe.String(in.Destination),
		TransferGroup: stripe.String(in.TransferGroup),
	}
	if in.SourceChargeID != "" {
		params.SourceTransaction = stripe.String(in.SourceChargeID)
	}
	params.AddMetadata(metadataPaymentID, in.PaymentID.String())
	withRequest(&params.Params, ctx, in.IdempotencyKey)

	t, err := s.api.Transfers.New(params)
	if err != nil {
		return "", s.classify("transfer", err)
	}
	return t.ID, nil
}

func (s *StripeProcessor) ReverseTransfer(ctx context.Context, transferID, idempotencyKey string) (string, error) {
	params := &stripe.TransferReversalParams{ID: stripe.String(transferID)}
	withRequest(&params.Params, ctx, idempotencyKey)

	r, err := s.api.TransferReversals.New(params)
	if err != nil {
		return "", s.classify("reverse transfer", err)
	}
	return r.ID, nil
}

func (s *StripeProcessor) classify(op string, err error) error {
	mapped := classifyError(err)
	slog.Warn("processor call failed",
		"component", "stripe",
		"op", op,
		"permanent", errs.IsAny(mapped, errs.ErrProviderPermanent),
		"error", err.Error())
	return mapped
}

func withRequest(p *stripe.Params, ctx context.Context, idempotencyKey string) {
	p.Context = ctx
	if idempotencyKey != "" {
		p.SetIdempotencyKey(idempotencyKey)
	}
}

func lineItem(currency, name string, amount int64) *stripe.CheckoutSessionLineItemParams {
	return &stripe.CheckoutSessionLineItemParams{
		Quantity: stripe.Int64(1),
		PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:   stripe.String(currency),
			UnitAmount: stripe.Int64(amount),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String(name),
			},
		},
	}
}

func latestChargeID(pi *stripe.PaymentIntent) string {
	if pi == nil || pi.LatestCharge == nil {
		return ""
	}
	return pi.LatestCharge.ID
}
