package queries

import (
	"context"
	"time"

	"rental-ledger/internal/domain/booking"
	"rental-ledger/internal/domain/payment"
	"rental-ledger/internal/infra"
	"rental-ledger/internal/pkg/errs"
	"rental-ledger/internal/usecase/shared"

	"github.com/google/uuid"
)

type BookingSide string

const (
	SideRenter BookingSide = "renter"
	SideHost   BookingSide = "host"
)

type BookingListStore interface {
	FindByUserFirstPage(ctx context.Context, userID uuid.UUID, side BookingSide, limit int32) ([]*BookingListItem, error)
	FindByUserKeyset(ctx context.Context, userID uuid.UUID, side BookingSide, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*BookingListItem, error)
}

type BookingQueries interface {
	GetByID(ctx context.Context, actorID uuid.UUID, isAdmin bool, id uuid.UUID) (*BookingView, error)
	ListByUser(ctx context.Context, userID uuid.UUID, side BookingSide, cursor *Cursor, limit int) ([]*BookingListItem, *Cursor, error)
}

type bookingQueriesImpl struct {
	uow   shared.UnitOfWork
	store BookingListStore
}

func NewBookingQueries(uow shared.UnitOfWork, store BookingListStore) BookingQueries {
	return &bookingQueriesImpl{uow: uow, store: store}
}

// GetByID reads booking and payment in one snapshot so the display state is consistent.
func (q *bookingQueriesImpl) GetByID(ctx context.Context, actorID uuid.UUID, isAdmin bool, id uuid.UUID) (*BookingView, error) {
	var (
		b *booking.Booking
		p *payment.Payment
	)
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		b, err = tx.Bookings().FindByID(ctx, id)
		if err != nil {
			return err
		}
		p, err = tx.Payments().FindByBookingID(ctx, id)
		if infra.IsKind(err, infra.KindNotFound) {
			p = nil
			return nil
		}
		return err
	})
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrBookingNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	if !isAdmin && b.RenterID() != actorID && b.HostID() != actorID {
		return nil, errs.ErrForbidden
	}
	return toBookingView(b, p), nil
}

func toBookingView(b *booking.Booking, p *payment.Payment) *BookingView {
	view := &BookingView{
		ID:                b.ID(),
		CarID:             b.CarID(),
		RenterID:          b.RenterID(),
		HostID:            b.HostID(),
		StartAt:           b.DateRange().Start(),
		EndAt:             b.DateRange().End(),
		Status:            b.Status().String(),
		DisplayState:      string(booking.Display(b, p)),
		TotalPrice:        b.TotalPrice(),
		Currency:          b.Currency(),
		CancelRequestedAt: b.CancelRequestedAt(),
		CreatedAt:         b.CreatedAt(),
		UpdatedAt:         b.UpdatedAt(),
	}
	if p != nil {
		view.Payment = &PaymentSummary{
			ID:                       p.ID,
			Status:                   p.Status.String(),
			Strategy:                 p.Strategy.String(),
			CaptureStatus:            p.CaptureStatus.String(),
			DepositStatus:            p.DepositStatus.String(),
			PayoutStatus:             p.PayoutStatus.String(),
			Currency:                 p.Currency,
			RentalAmount:             p.RentalAmount,
			PlatformFeeAmount:        p.PlatformFeeAmount,
			HostAmount:               p.HostAmount,
			DepositAmount:            p.DepositAmount,
			RefundedAmount:           p.RefundedAmount,
			PaidAt:                   p.PaidAt,
			ReleaseAt:                p.ReleaseAt,
			DepositClaimWindowEndsAt: p.DepositClaimWindowEndsAt,
		}
		if p.Status.IsPrePayment() {
			view.Payment.CheckoutURL = p.CheckoutURL
		}
	}
	return view
}

func (q *bookingQueriesImpl) ListByUser(ctx context.Context, userID uuid.UUID, side BookingSide, cursor *Cursor, limit int) ([]*BookingListItem, *Cursor, error) {
	if side != SideRenter && side != SideHost {
		return nil, nil, errs.Mark(errs.New("side must be renter or host"), errs.ErrDomainValidation)
	}

	limit = ValidateLimit(limit)
	var (
		rows []*BookingListItem
		err  error
	)
	if cursor == nil || cursor.After == "" {
		rows, err = q.store.FindByUserFirstPage(ctx, userID, side, int32(limit+1)) // #nosec G115 -- bounded by MaxListLimit
	} else {
		lastCreatedAt, lastID, derr := DecodeAfterCursor(cursor.After)
		if derr != nil {
			return nil, nil, ErrInvalidCursor
		}
		rows, err = q.store.FindByUserKeyset(ctx, userID, side, lastCreatedAt, lastID, int32(limit+1)) // #nosec G115 -- bounded by MaxListLimit
	}
	if err != nil {
		return nil, nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	for _, row := range rows {
		row.DisplayState = string(displayOf(row))
	}
	rows, next := page(rows, limit, func(row *BookingListItem) (time.Time, uuid.UUID) {
		return row.CreatedAt, row.ID
	})
	return rows, next, nil
}

func displayOf(row *BookingListItem) booking.DisplayState {
	var p *payment.Payment
	if row.PaymentStatus != "" {
		p = &payment.Payment{
			Status:        payment.Status(row.PaymentStatus),
			CaptureStatus: payment.CaptureStatus(row.CaptureStatus),
			DepositStatus: payment.DepositStatus(row.DepositStatus),
		}
	}
	return booking.DisplayOf(booking.Status(row.Status), row.CancelRequested, p)
}
