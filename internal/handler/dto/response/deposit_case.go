package response

import (
	"rental-ledger/internal/domain/depositcase"
)

type DepositCaseResponse struct {
	ID               string `json:"id"`
	PaymentID        string `json:"payment_id"`
	BookingID        string `json:"booking_id"`
	Status           string `json:"status"`
	RequestedAmount  int64  `json:"requested_amount"`
	ResolutionAmount int64  `json:"resolution_amount"`
	Reason           string `json:"reason"`
	ResolutionNote   string `json:"resolution_note,omitempty"`
	CreatedAt        int64  `json:"created_at"`
	ResolvedAt       *int64 `json:"resolved_at,omitempty"`
}

func FromDepositCase(c *depositcase.DepositCase) *DepositCaseResponse {
	resp := &DepositCaseResponse{
		ID:               c.ID().String(),
		PaymentID:        c.PaymentID().String(),
		BookingID:        c.BookingID().String(),
		Status:           c.Status().String(),
		RequestedAmount:  c.RequestedAmount(),
		ResolutionAmount: c.ResolutionAmount(),
		Reason:           c.Reason(),
		ResolutionNote:   c.ResolutionNote(),
		CreatedAt:        c.CreatedAt().Unix(),
	}
	if at := c.ResolvedAt(); at != nil {
		ts := at.Unix()
		resp.ResolvedAt = &ts
	}
	return resp
}
