package converter

import (
	"time"

	"rental-ledger/internal/domain/booking"
	"rental-ledger/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const BookingColumns = `id, car_id, renter_id, host_id, start_at, end_at, total_price, currency,
	payment_id, checkout_session_id, idempotency_key, status, cancel_requested_at,
	version, created_at, updated_at`

type BookingRow struct {
	ID                uuid.UUID
	CarID             uuid.UUID
	RenterID          uuid.UUID
	HostID            uuid.UUID
	StartAt           time.Time
	EndAt             time.Time
	TotalPrice        int64
	Currency          string
	PaymentID         pgtype.UUID
	CheckoutSessionID pgtype.Text
	IdempotencyKey    string
	Status            string
	CancelRequestedAt pgtype.Timestamptz
	Version           int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Targets returns scan destinations in BookingColumns order.
func (r *BookingRow) Targets() []any {
	return []any{
		&r.ID, &r.CarID, &r.RenterID, &r.HostID, &r.StartAt, &r.EndAt, &r.TotalPrice, &r.Currency,
		&r.PaymentID, &r.CheckoutSessionID, &r.IdempotencyKey, &r.Status, &r.CancelRequestedAt,
		&r.Version, &r.CreatedAt, &r.UpdatedAt,
	}
}

func BookingToRow(b *booking.Booking) BookingRow {
	return BookingRow{
		ID:                b.ID(),
		CarID:             b.CarID(),
		RenterID:          b.RenterID(),
		HostID:            b.HostID(),
		StartAt:           b.DateRange().Start(),
		EndAt:             b.DateRange().End(),
		TotalPrice:        b.TotalPrice(),
		Currency:          b.Currency(),
		PaymentID:         pgconv.UUIDPtrToPgtype(b.PaymentID()),
		CheckoutSessionID: pgconv.TextFromString(b.CheckoutSessionID()),
		IdempotencyKey:    b.IdempotencyKey(),
		Status:            b.Status().String(),
		CancelRequestedAt: pgconv.TimePtrToPgtype(b.CancelRequestedAt()),
		Version:           b.Version(),
		CreatedAt:         b.CreatedAt(),
		UpdatedAt:         b.UpdatedAt(),
	}
}

func BookingFromRow(r BookingRow) *booking.Booking {
	return booking.Reconstruct(
		r.ID, r.CarID, r.RenterID, r.HostID,
		booking.ReconstructDateRange(r.StartAt.UTC(), r.EndAt.UTC()),
		r.TotalPrice,
		r.Currency,
		pgconv.UUIDPtrFromPgtype(r.PaymentID),
		pgconv.StringFromText(r.CheckoutSessionID),
		r.IdempotencyKey,
		booking.Status(r.Status),
		pgconv.TimePtrFromPgtype(r.CancelRequestedAt),
		r.Version,
		r.CreatedAt.UTC(),
		r.UpdatedAt.UTC(),
	)
}
