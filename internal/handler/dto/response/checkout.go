package response

import (
	"rental-ledger/internal/usecase/commands"
)

type CheckoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
	BookingID   string `json:"booking_id"`
	PaymentID   string `json:"payment_id"`
	Replayed    bool   `json:"replayed"`
}

func FromCheckoutResult(r *commands.CheckoutResult) *CheckoutResponse {
	return &CheckoutResponse{
		CheckoutURL: r.CheckoutURL,
		BookingID:   r.BookingID.String(),
		PaymentID:   r.PaymentID.String(),
		Replayed:    r.Replayed,
	}
}

type RedirectResponse struct {
	BookingID    string `json:"booking_id"`
	PaymentID    string `json:"payment_id"`
	DisplayState string `json:"display_state"`
}

func FromRedirectResult(r *commands.RedirectResult) *RedirectResponse {
	return &RedirectResponse{
		BookingID:    r.BookingID.String(),
		PaymentID:    r.PaymentID.String(),
		DisplayState: string(r.DisplayState),
	}
}

type WebhookAckResponse struct {
	Received bool   `json:"received"`
	EventID  string `json:"event_id,omitempty"`
	Outcome  string `json:"outcome,omitempty"`
}

func FromAck(a *commands.Ack) *WebhookAckResponse {
	resp := &WebhookAckResponse{Received: true}
	if a != nil {
		resp.EventID = a.EventID
		resp.Outcome = string(a.Outcome)
	}
	return resp
}
