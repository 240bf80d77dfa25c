package readstore

import (
	"context"
	"log/slog"

	"rental-ledger/internal/infra"
	"rental-ledger/internal/infra/db"
	"rental-ledger/internal/pkg/pgconv"
	"rental-ledger/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// VerificationReadStore reads the identity service's account_verifications table.
type VerificationReadStore struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewVerificationReadStore(dbtx db.DBTX) *VerificationReadStore {
	return &VerificationReadStore{db: dbtx, logger: slog.Default()}
}

func (s *VerificationReadStore) FindByUserID(ctx context.Context, userID uuid.UUID) (*shared.VerificationSnapshot, error) {
	var (
		v         shared.VerificationSnapshot
		accountID pgtype.Text
	)
	err := s.db.QueryRow(ctx, `
		SELECT user_id, ready_to_book, payouts_enabled, connected_account_id
		FROM account_verifications
		WHERE user_id = $1`, userID).Scan(&v.UserID, &v.ReadyToBook, &v.PayoutsEnabled, &accountID)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr(s.logger, infra.KindNotFound, "verification not found", err)
		}
		return nil, infra.WrapRepoErr(s.logger, infra.KindDBFailure, "failed to find verification", err)
	}
	v.ConnectedAccountID = pgconv.StringFromText(accountID)
	return &v, nil
}
