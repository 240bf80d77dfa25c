package queries

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type PaymentSummary struct {
	ID                       uuid.UUID  `json:"id"`
	Status                   string     `json:"status"`
	Strategy                 string     `json:"strategy"`
	CaptureStatus            string     `json:"capture_status"`
	DepositStatus            string     `json:"deposit_status"`
	PayoutStatus             string     `json:"payout_status"`
	Currency                 string     `json:"currency"`
	RentalAmount             int64      `json:"rental_amount"`
	PlatformFeeAmount        int64      `json:"platform_fee_amount"`
	HostAmount               int64      `json:"host_amount"`
	DepositAmount            int64      `json:"deposit_amount"`
	RefundedAmount           int64      `json:"refunded_amount"`
	CheckoutURL              string     `json:"checkout_url,omitempty"`
	PaidAt                   *time.Time `json:"paid_at,omitempty"`
	ReleaseAt                *time.Time `json:"release_at,omitempty"`
	DepositClaimWindowEndsAt *time.Time `json:"deposit_claim_window_ends_at,omitempty"`
}

type BookingView struct {
	ID                uuid.UUID       `json:"id"`
	CarID             uuid.UUID       `json:"car_id"`
	RenterID          uuid.UUID       `json:"renter_id"`
	HostID            uuid.UUID       `json:"host_id"`
	StartAt           time.Time       `json:"start_at"`
	EndAt             time.Time       `json:"end_at"`
	Status            string          `json:"status"`
	DisplayState      string          `json:"display_state"`
	TotalPrice        int64           `json:"total_price"`
	Currency          string          `json:"currency"`
	CancelRequestedAt *time.Time      `json:"cancel_requested_at,omitempty"`
	Payment           *PaymentSummary `json:"payment,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// BookingListItem carries the raw status columns so the display state can be
// derived without loading aggregates.
type BookingListItem struct {
	ID              uuid.UUID `json:"id"`
	CarID           uuid.UUID `json:"car_id"`
	StartAt         time.Time `json:"start_at"`
	EndAt           time.Time `json:"end_at"`
	Status          string    `json:"status"`
	DisplayState    string    `json:"display_state"`
	TotalPrice      int64     `json:"total_price"`
	Currency        string    `json:"currency"`
	CreatedAt       time.Time `json:"created_at"`
	CancelRequested bool      `json:"-"`
	PaymentStatus   string    `json:"-"`
	CaptureStatus   string    `json:"-"`
	DepositStatus   string    `json:"-"`
}

type AlertView struct {
	ID        uuid.UUID       `json:"id"`
	Kind      string          `json:"kind"`
	DedupKey  string          `json:"dedup_key"`
	PaymentID *uuid.UUID      `json:"payment_id,omitempty"`
	Message   string          `json:"message"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}
