package repository

import (
	"log/slog"

	"rental-ledger/internal/infra"
	"rental-ledger/internal/pkg/pgconv"
)

// wrapWriteErr classifies constraint violations so use cases can tell a lost
// race from a database failure.
func wrapWriteErr(logger *slog.Logger, msg string, err error) error {
	switch {
	case pgconv.IsUniqueViolation(err):
		return infra.WrapRepoErr(logger, infra.KindDuplicateKey, msg+": "+pgconv.ConstraintName(err), err)
	case pgconv.IsForeignKeyViolation(err):
		return infra.WrapRepoErr(logger, infra.KindForeignKeyViolated, msg+": "+pgconv.ConstraintName(err), err)
	default:
		return infra.WrapRepoErr(logger, infra.KindDBFailure, msg, err)
	}
}

func wrapReadErr(logger *slog.Logger, notFoundMsg, failMsg string, err error) error {
	if pgconv.IsNoRows(err) {
		return infra.WrapRepoErr(logger, infra.KindNotFound, notFoundMsg, err)
	}
	return infra.WrapRepoErr(logger, infra.KindDBFailure, failMsg, err)
}

func staleVersion(logger *slog.Logger, msg string) error {
	return infra.WrapRepoErr(logger, infra.KindStaleVersion, msg, nil)
}
