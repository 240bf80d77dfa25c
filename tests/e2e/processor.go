//go:build e2e

package e2e

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"rental-ledger/internal/domain/webhook"
	"rental-ledger/internal/usecase/commands"
)

// ValidSignature is the only Stripe-Signature value FakeProcessor accepts.
const ValidSignature = "t=1,v1=e2e"

// FakeProcessor stands in for Stripe. Webhook payloads are JSON encoded webhook.Event values.
type FakeProcessor struct {
	mu       sync.Mutex
	sessions map[string]commands.CheckoutSessionParams
	voided   []string
	refunds  []commands.RefundParams
}

func NewFakeProcessor() *FakeProcessor {
	return &FakeProcessor{sessions: map[string]commands.CheckoutSessionParams{}}
}

func (f *FakeProcessor) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions = map[string]commands.CheckoutSessionParams{}
	f.voided = nil
	f.refunds = nil
}

func (f *FakeProcessor) SessionID(paymentID string) string {
	return "cs_" + paymentID
}

func (f *FakeProcessor) Session(sessionID string) (commands.CheckoutSessionParams, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.sessions[sessionID]
	return p, ok
}

func (f *FakeProcessor) Voided() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.voided...)
}

func (f *FakeProcessor) CreateCheckoutSession(_ context.Context, params commands.CheckoutSessionParams) (*commands.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.SessionID(params.PaymentID.String())
	f.sessions[id] = params
	return &commands.CheckoutSession{ID: id, URL: "https://checkout.test/" + id}, nil
}

func (f *FakeProcessor) RetrieveCheckoutSession(_ context.Context, sessionID string) (*webhook.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	params, ok := f.sessions[sessionID]
	if !ok {
		return nil, errors.New("no such checkout session")
	}
	return &webhook.Event{
		ID:                "redirect_" + sessionID,
		Type:              webhook.CheckoutSessionCompleted,
		PaymentID:         params.PaymentID,
		CheckoutSessionID: sessionID,
		PaymentIntentID:   "pi_" + params.PaymentID.String(),
		Authorized:        true,
	}, nil
}

func (f *FakeProcessor) ExpireCheckoutSession(context.Context, string) error {
	return nil
}

func (f *FakeProcessor) CapturePayment(_ context.Context, params commands.CaptureParams) (*commands.CaptureResult, error) {
	return &commands.CaptureResult{PaymentIntentID: params.PaymentIntentID, ChargeID: "ch_" + params.PaymentID.String()}, nil
}

func (f *FakeProcessor) CancelPayment(_ context.Context, paymentIntentID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.voided = append(f.voided, paymentIntentID)
	return nil
}

func (f *FakeProcessor) ChargeOffSession(_ context.Context, params commands.OffSessionChargeParams) (*commands.CaptureResult, error) {
	return &commands.CaptureResult{PaymentIntentID: "pi_off_" + params.PaymentID.String(), ChargeID: "ch_off_" + params.PaymentID.String()}, nil
}

func (f *FakeProcessor) Refund(_ context.Context, params commands.RefundParams) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refunds = append(f.refunds, params)
	return "re_" + params.IdempotencyKey, nil
}

func (f *FakeProcessor) Transfer(_ context.Context, params commands.TransferParams) (string, error) {
	return "tr_" + params.IdempotencyKey, nil
}

func (f *FakeProcessor) ReverseTransfer(_ context.Context, transferID, _ string) (string, error) {
	return "trr_" + transferID, nil
}

func (f *FakeProcessor) ParseWebhook(payload []byte, signatureHeader string) (*webhook.Event, error) {
	if signatureHeader != ValidSignature {
		return nil, errors.New("signature mismatch")
	}
	var ev webhook.Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
