package readstore

import (
	"context"
	"log/slog"
	"time"

	"rental-ledger/internal/infra"
	"rental-ledger/internal/infra/db"
	"rental-ledger/internal/pkg/pgconv"
	"rental-ledger/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const bookingListSelect = `
	SELECT b.id, b.car_id, b.start_at, b.end_at, b.status, b.total_price, b.currency, b.created_at,
	       b.cancel_requested_at IS NOT NULL,
	       p.status, p.capture_status, p.deposit_status
	FROM bookings b
	LEFT JOIN payments p ON p.booking_id = b.id`

type BookingReadStore struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewBookingReadStore(dbtx db.DBTX) *BookingReadStore {
	return &BookingReadStore{db: dbtx, logger: slog.Default()}
}

func sideColumn(side queries.BookingSide) string {
	if side == queries.SideHost {
		return "b.host_id"
	}
	return "b.renter_id"
}

func (s *BookingReadStore) FindByUserFirstPage(ctx context.Context, userID uuid.UUID, side queries.BookingSide, limit int32) ([]*queries.BookingListItem, error) {
	rows, err := s.db.Query(ctx, bookingListSelect+`
		WHERE `+sideColumn(side)+` = $1
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to find bookings first page", err)
	}
	return s.collect(rows)
}

func (s *BookingReadStore) FindByUserKeyset(ctx context.Context, userID uuid.UUID, side queries.BookingSide, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*queries.BookingListItem, error) {
	rows, err := s.db.Query(ctx, bookingListSelect+`
		WHERE `+sideColumn(side)+` = $1
		  AND (b.created_at, b.id) < ($2, $3)
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT $4`, userID, lastCreatedAt, lastID, limit)
	if err != nil {
		return nil, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to find bookings keyset", err)
	}
	return s.collect(rows)
}

func (s *BookingReadStore) collect(rows pgx.Rows) ([]*queries.BookingListItem, error) {
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*queries.BookingListItem, error) {
		var (
			item                                        queries.BookingListItem
			paymentStatus, captureStatus, depositStatus pgtype.Text
		)
		err := row.Scan(
			&item.ID, &item.CarID, &item.StartAt, &item.EndAt, &item.Status, &item.TotalPrice, &item.Currency, &item.CreatedAt,
			&item.CancelRequested,
			&paymentStatus, &captureStatus, &depositStatus,
		)
		if err != nil {
			return nil, err
		}
		item.StartAt = item.StartAt.UTC()
		item.EndAt = item.EndAt.UTC()
		item.CreatedAt = item.CreatedAt.UTC()
		item.PaymentStatus = pgconv.StringFromText(paymentStatus)
		item.CaptureStatus = pgconv.StringFromText(captureStatus)
		item.DepositStatus = pgconv.StringFromText(depositStatus)
		return &item, nil
	})
	if err != nil {
		return nil, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to scan bookings", err)
	}
	return items, nil
}
