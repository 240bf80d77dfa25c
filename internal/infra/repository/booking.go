package repository

import (
	"context"
	"log/slog"
	"time"

	"rental-ledger/internal/domain/booking"
	"rental-ledger/internal/infra/db"
	"rental-ledger/internal/infra/repository/converter"

	"github.com/google/uuid"
)

type BookingRepository struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewBookingRepository(dbtx db.DBTX) *BookingRepository {
	return &BookingRepository{
		db:     dbtx,
		logger: slog.Default(),
	}
}

func (r *BookingRepository) Create(ctx context.Context, b *booking.Booking) error {
	row := converter.BookingToRow(b)
	_, err := r.db.Exec(ctx, `
		INSERT INTO bookings (`+converter.BookingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		row.ID, row.CarID, row.RenterID, row.HostID, row.StartAt, row.EndAt, row.TotalPrice, row.Currency,
		row.PaymentID, row.CheckoutSessionID, row.IdempotencyKey, row.Status, row.CancelRequestedAt,
		row.Version, row.CreatedAt, row.UpdatedAt,
	)
	if err != nil {
		return wrapWriteErr(r.logger, "failed to create booking", err)
	}
	return nil
}

func (r *BookingRepository) Update(ctx context.Context, b *booking.Booking) error {
	row := converter.BookingToRow(b)
	tag, err := r.db.Exec(ctx, `
		UPDATE bookings
		SET status = $3,
		    payment_id = $4,
		    checkout_session_id = $5,
		    cancel_requested_at = $6,
		    updated_at = $7,
		    version = version + 1
		WHERE id = $1 AND version = $2`,
		row.ID, row.Version, row.Status, row.PaymentID, row.CheckoutSessionID, row.CancelRequestedAt, row.UpdatedAt,
	)
	if err != nil {
		return wrapWriteErr(r.logger, "failed to update booking", err)
	}
	if tag.RowsAffected() == 0 {
		return staleVersion(r.logger, "booking version changed")
	}
	b.IncrementVersion()
	return nil
}

func (r *BookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*booking.Booking, error) {
	var row converter.BookingRow
	err := r.db.QueryRow(ctx, `SELECT `+converter.BookingColumns+` FROM bookings WHERE id = $1`, id).Scan(row.Targets()...)
	if err != nil {
		return nil, wrapReadErr(r.logger, "booking not found", "failed to find booking by ID", err)
	}
	return converter.BookingFromRow(row), nil
}

func (r *BookingRepository) FindByIdempotencyKey(ctx context.Context, renterID uuid.UUID, key string) (*booking.Booking, error) {
	var row converter.BookingRow
	err := r.db.QueryRow(ctx, `
		SELECT `+converter.BookingColumns+`
		FROM bookings
		WHERE renter_id = $1 AND idempotency_key = $2`, renterID, key).Scan(row.Targets()...)
	if err != nil {
		return nil, wrapReadErr(r.logger, "booking not found for idempotency key", "failed to find booking by idempotency key", err)
	}
	return converter.BookingFromRow(row), nil
}

// HasConfirmedOverlap checks the half-open window [start, end) against paid or confirmed bookings.
func (r *BookingRepository) HasConfirmedOverlap(ctx context.Context, carID uuid.UUID, start, end time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE car_id = $1
			  AND status IN ('paid', 'confirmed')
			  AND start_at < $3
			  AND end_at > $2
		)`, carID, start, end).Scan(&exists)
	if err != nil {
		return false, wrapWriteErr(r.logger, "failed to check booking overlap", err)
	}
	return exists, nil
}
