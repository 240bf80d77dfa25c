package infra

import (
	"errors"
	"log/slog"

	"rental-ledger/internal/pkg/errs"
)

type RepositoryErrorKind string

const (
	KindNotFound           RepositoryErrorKind = "NOT_FOUND"
	KindDBFailure          RepositoryErrorKind = "DB_FAILURE"
	KindDuplicateKey       RepositoryErrorKind = "DUPLICATE_KEY"
	KindForeignKeyViolated RepositoryErrorKind = "FOREIGN_KEY_VIOLATED"
	KindStaleVersion       RepositoryErrorKind = "STALE_VERSION"
)

// Kinds the use cases branch on. They are part of normal control flow and
// only logged at debug.
var expectedKinds = map[RepositoryErrorKind]bool{
	KindNotFound:     true,
	KindStaleVersion: true,
	KindDuplicateKey: true,
}

// RepositoryError classifies a storage failure so callers never inspect
// driver errors directly.
type RepositoryError struct {
	Kind  RepositoryErrorKind
	msg   string
	cause error
}

func (e RepositoryError) Error() string {
	if e.cause == nil {
		return string(e.Kind) + ": " + e.msg
	}
	return string(e.Kind) + ": " + e.msg + ": " + e.cause.Error()
}

func (e RepositoryError) Unwrap() error {
	return e.cause
}

func WrapRepoErr(logger *slog.Logger, kind RepositoryErrorKind, msg string, cause error) error {
	attrs := []any{slog.String("kind", string(kind))}
	if cause != nil {
		attrs = append(attrs, slog.String("cause", cause.Error()))
		cause = errs.Wrap(cause, msg)
	}

	if expectedKinds[kind] {
		logger.Debug("repository: "+msg, attrs...)
	} else {
		logger.Error("repository: "+msg, attrs...)
	}

	return RepositoryError{Kind: kind, msg: msg, cause: cause}
}

func IsKind(err error, kind RepositoryErrorKind) bool {
	var e RepositoryError
	return errors.As(err, &e) && e.Kind == kind
}
