//go:build unit

package queries_test

import (
	"context"
	"testing"
	"time"

	"rental-ledger/internal/usecase/queries"
	"rental-ledger/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAlertStore struct {
	rows        []*queries.AlertView
	keysetAfter uuid.UUID
}

func (f *fakeAlertStore) FindOpenFirstPage(_ context.Context, limit int32) ([]*queries.AlertView, error) {
	return f.rows[:min(int(limit), len(f.rows))], nil
}

func (f *fakeAlertStore) FindOpenKeyset(_ context.Context, _ time.Time, lastID uuid.UUID, limit int32) ([]*queries.AlertView, error) {
	f.keysetAfter = lastID
	for i, row := range f.rows {
		if row.ID == lastID {
			rest := f.rows[i+1:]
			return rest[:min(int(limit), len(rest))], nil
		}
	}
	return nil, nil
}

func TestAlertQueries_ListOpen(t *testing.T) {
	ctx := context.Background()
	store := &fakeAlertStore{}
	for i := 0; i < 3; i++ {
		store.rows = append(store.rows, &queries.AlertView{
			ID:        uuid.New(),
			Kind:      "transfer_blocked",
			CreatedAt: builder.BaseTime.Add(-time.Duration(i) * time.Hour),
		})
	}
	q := queries.NewAlertQueries(store)

	t.Run("カーソルで全件を辿れる", func(t *testing.T) {
		first, next, err := q.ListOpen(ctx, nil, 2)
		require.NoError(t, err)
		require.Len(t, first, 2)
		require.NotNil(t, next)

		second, last, err := q.ListOpen(ctx, next, 2)
		require.NoError(t, err)
		assert.Nil(t, last)
		require.Len(t, second, 1)
		assert.Equal(t, first[1].ID, store.keysetAfter)
		assert.Equal(t, store.rows[2].ID, second[0].ID)
	})
}
