package converter

import (
	"time"

	"rental-ledger/internal/domain/depositcase"
	"rental-ledger/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const DepositCaseColumns = `id, payment_id, booking_id, host_id, renter_id, requested_amount, reason,
	status, resolution_amount, resolution_note, version, created_at, updated_at, resolved_at`

type DepositCaseRow struct {
	ID               uuid.UUID
	PaymentID        uuid.UUID
	BookingID        uuid.UUID
	HostID           uuid.UUID
	RenterID         uuid.UUID
	RequestedAmount  int64
	Reason           string
	Status           string
	ResolutionAmount int64
	ResolutionNote   pgtype.Text
	Version          int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ResolvedAt       pgtype.Timestamptz
}

func (r *DepositCaseRow) Targets() []any {
	return []any{
		&r.ID, &r.PaymentID, &r.BookingID, &r.HostID, &r.RenterID, &r.RequestedAmount, &r.Reason,
		&r.Status, &r.ResolutionAmount, &r.ResolutionNote, &r.Version, &r.CreatedAt, &r.UpdatedAt, &r.ResolvedAt,
	}
}

func DepositCaseToRow(c *depositcase.DepositCase) DepositCaseRow {
	return DepositCaseRow{
		ID:               c.ID(),
		PaymentID:        c.PaymentID(),
		BookingID:        c.BookingID(),
		HostID:           c.HostID(),
		RenterID:         c.RenterID(),
		RequestedAmount:  c.RequestedAmount(),
		Reason:           c.Reason(),
		Status:           c.Status().String(),
		ResolutionAmount: c.ResolutionAmount(),
		ResolutionNote:   pgconv.TextFromString(c.ResolutionNote()),
		Version:          c.Version(),
		CreatedAt:        c.CreatedAt(),
		UpdatedAt:        c.UpdatedAt(),
		ResolvedAt:       pgconv.TimePtrToPgtype(c.ResolvedAt()),
	}
}

func DepositCaseFromRow(r DepositCaseRow) *depositcase.DepositCase {
	return depositcase.Reconstruct(
		r.ID, r.PaymentID, r.BookingID, r.HostID, r.RenterID,
		r.RequestedAmount,
		depositcase.Status(r.Status),
		r.ResolutionAmount,
		r.Reason,
		pgconv.StringFromText(r.ResolutionNote),
		r.Version,
		r.CreatedAt.UTC(),
		r.UpdatedAt.UTC(),
		pgconv.TimePtrFromPgtype(r.ResolvedAt),
	)
}
