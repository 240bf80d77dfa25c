package queries

import (
	"context"
	"time"

	"rental-ledger/internal/pkg/errs"

	"github.com/google/uuid"
)

type AlertReadStore interface {
	FindOpenFirstPage(ctx context.Context, limit int32) ([]*AlertView, error)
	FindOpenKeyset(ctx context.Context, lastCreatedAt time.Time, lastID uuid.UUID, limit int32) ([]*AlertView, error)
}

type AlertQueries interface {
	ListOpen(ctx context.Context, cursor *Cursor, limit int) ([]*AlertView, *Cursor, error)
}

type alertQueriesImpl struct {
	store AlertReadStore
}

func NewAlertQueries(store AlertReadStore) AlertQueries {
	return &alertQueriesImpl{store: store}
}

func (q *alertQueriesImpl) ListOpen(ctx context.Context, cursor *Cursor, limit int) ([]*AlertView, *Cursor, error) {
	limit = ValidateLimit(limit)
	var (
		rows []*AlertView
		err  error
	)
	if cursor == nil || cursor.After == "" {
		rows, err = q.store.FindOpenFirstPage(ctx, int32(limit+1)) // #nosec G115 -- bounded by MaxListLimit
	} else {
		lastCreatedAt, lastID, derr := DecodeAfterCursor(cursor.After)
		if derr != nil {
			return nil, nil, ErrInvalidCursor
		}
		rows, err = q.store.FindOpenKeyset(ctx, lastCreatedAt, lastID, int32(limit+1)) // #nosec G115 -- bounded by MaxListLimit
	}
	if err != nil {
		return nil, nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	rows, next := page(rows, limit, func(a *AlertView) (time.Time, uuid.UUID) {
		return a.CreatedAt, a.ID
	})
	return rows, next, nil
}
