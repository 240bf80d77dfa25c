package commands

import (
	"context"
	"time"

	"rental-ledger/internal/domain/webhook"

	"github.com/google/uuid"
)

// PaymentProcessor is the outbound port to the card processor. Every mutating
// call carries an idempotency key derived from ledger ids so retries are safe.
type PaymentProcessor interface {
	CreateCheckoutSession(ctx context.Context, params CheckoutSessionParams) (*CheckoutSession, error)
	RetrieveCheckoutSession(ctx context.Context, sessionID string) (*webhook.Event, error)
	ExpireCheckoutSession(ctx context.Context, sessionID string) error
	CapturePayment(ctx context.Context, params CaptureParams) (*CaptureResult, error)
	CancelPayment(ctx context.Context, paymentIntentID, idempotencyKey string) error
	ChargeOffSession(ctx context.Context, params OffSessionChargeParams) (*CaptureResult, error)
	Refund(ctx context.Context, params RefundParams) (string, error)
	Transfer(ctx context.Context, params TransferParams) (string, error)
	ReverseTransfer(ctx context.Context, transferID, idempotencyKey string) (string, error)
	// ParseWebhook verifies the signature and reduces the payload to an Event.
	// Unknown event types are returned with their raw type.
	ParseWebhook(payload []byte, signatureHeader string) (*webhook.Event, error)
}

type CheckoutSessionParams struct {
	PaymentID      uuid.UUID
	BookingID      uuid.UUID
	RenterID       uuid.UUID
	CarID          uuid.UUID
	Currency       string
	RentalAmount   int64
	DepositAmount  int64
	Description    string
	ManualCapture  bool
	ExpiresAt      time.Time
	IdempotencyKey string
}

type CheckoutSession struct {
	ID              string
	URL             string
	PaymentIntentID string
}

type CaptureParams struct {
	PaymentID       uuid.UUID
	PaymentIntentID string
	Amount          int64
	IdempotencyKey  string
}

type CaptureResult struct {
	PaymentIntentID string
	ChargeID        string
}

type OffSessionChargeParams struct {
	PaymentID        uuid.UUID
	OriginalIntentID string
	Amount           int64
	Currency         string
	IdempotencyKey   string
}

type RefundParams struct {
	PaymentID       uuid.UUID
	PaymentIntentID string
	// Amount of zero refunds whatever remains on the charge.
	Amount         int64
	Reason         string
	IdempotencyKey string
}

type TransferParams struct {
	PaymentID      uuid.UUID
	Destination    string
	Amount         int64
	Currency       string
	SourceChargeID string
	TransferGroup  string
	IdempotencyKey string
}

func checkoutKey(paymentID uuid.UUID) string      { return "checkout:" + paymentID.String() }
func captureKey(paymentID uuid.UUID) string       { return "capture:" + paymentID.String() }
func fallbackKey(paymentID uuid.UUID) string      { return "fallback:" + paymentID.String() }
func voidKey(paymentID uuid.UUID) string          { return "void:" + paymentID.String() }
func transferKey(paymentID uuid.UUID) string      { return "transfer:" + paymentID.String() }
func reversalKey(paymentID uuid.UUID) string      { return "reversal:" + paymentID.String() }
func cancelRefundKey(paymentID uuid.UUID) string  { return "cancel-refund:" + paymentID.String() }
func depositRefundKey(paymentID uuid.UUID) string { return "deposit-refund:" + paymentID.String() }
func depositTransferKey(caseID uuid.UUID) string  { return "deposit-transfer:" + caseID.String() }
