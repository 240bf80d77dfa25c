package response

import (
	"time"

	"rental-ledger/internal/domain/booking"
	"rental-ledger/internal/usecase/commands"
	"rental-ledger/internal/usecase/queries"
)

type BookingStatusResponse struct {
	ID                string     `json:"id"`
	Status            string     `json:"status"`
	CancelRequestedAt *time.Time `json:"cancel_requested_at,omitempty"`
	AwaitingProcessor bool       `json:"awaiting_processor"`
	UpdatedAt         int64      `json:"updated_at"`
}

func FromCancelResult(r *commands.CancelResult) *BookingStatusResponse {
	resp := FromBooking(r.Booking)
	resp.AwaitingProcessor = r.AwaitingProcessor
	return resp
}

func FromBooking(b *booking.Booking) *BookingStatusResponse {
	return &BookingStatusResponse{
		ID:                b.ID().String(),
		Status:            b.Status().String(),
		CancelRequestedAt: b.CancelRequestedAt(),
		UpdatedAt:         b.UpdatedAt().Unix(),
	}
}

type BookingListResponse struct {
	Bookings   []*queries.BookingListItem `json:"bookings"`
	NextCursor string                     `json:"next_cursor,omitempty"`
}

func FromBookingList(items []*queries.BookingListItem, next *queries.Cursor) *BookingListResponse {
	if items == nil {
		items = []*queries.BookingListItem{}
	}
	resp := &BookingListResponse{Bookings: items}
	if next != nil {
		resp.NextCursor = next.After
	}
	return resp
}
