package readstore

import (
	"context"
	"log/slog"

	"rental-ledger/internal/infra"
	"rental-ledger/internal/infra/db"
	"rental-ledger/internal/pkg/pgconv"
	"rental-ledger/internal/usecase/shared"

	"github.com/google/uuid"
)

// CarReadStore reads the listing service's cars table.
type CarReadStore struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewCarReadStore(dbtx db.DBTX) *CarReadStore {
	return &CarReadStore{db: dbtx, logger: slog.Default()}
}

func (s *CarReadStore) FindByID(ctx context.Context, id uuid.UUID) (*shared.CarSnapshot, error) {
	var car shared.CarSnapshot
	err := s.db.QueryRow(ctx, `
		SELECT id, host_id, daily_rate, deposit_amount, currency, active
		FROM cars
		WHERE id = $1`, id).Scan(&car.ID, &car.HostID, &car.DailyRate, &car.DepositAmount, &car.Currency, &car.Active)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr(s.logger, infra.KindNotFound, "car not found", err)
		}
		return nil, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to find car by ID", err)
	}
	return &car, nil
}
