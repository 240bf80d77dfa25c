package commands

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"rental-ledger/internal/domain/payment"
	"rental-ledger/internal/pkg/errs"
	"rental-ledger/internal/pkg/metrics"
	"rental-ledger/internal/usecase/shared"

	"github.com/google/uuid"
)

// raiseAlert writes to the alert outbox in its own transaction, since it is
// usually called after the business transaction was rolled back.
func raiseAlert(ctx context.Context, uow shared.UnitOfWork, kind shared.AlertKind, dedupKey string, paymentID *uuid.UUID, message string, detail any, now time.Time) {
	payload, err := json.Marshal(detail)
	if err != nil {
		payload = []byte("{}")
	}

	alert := shared.Alert{
		Kind:      kind,
		DedupKey:  dedupKey,
		PaymentID: paymentID,
		Message:   message,
		Payload:   payload,
		CreatedAt: now,
	}
	err = uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		return tx.Alerts().Raise(ctx, alert)
	})
	if err != nil {
		slog.Error("failed to raise ledger alert",
			"kind", string(kind),
			"dedup_key", dedupKey,
			"error", err.Error())
		return
	}

	metrics.IncAlert(string(kind))
	slog.Warn("ledger alert raised",
		"kind", string(kind),
		"dedup_key", dedupKey,
		"message", message)
}

func isInvariantViolation(err error) bool {
	return err != nil && (errors.Is(err, payment.ErrInvariantViolation) || errs.IsAny(err, errs.ErrInvariantViolation))
}

// alertOnInvariant raises an invariant alert when a write was refused because
// the mutated payment broke the ledger rules. Other errors pass through untouched.
func alertOnInvariant(ctx context.Context, uow shared.UnitOfWork, operation string, paymentID *uuid.UUID, err error, now time.Time) error {
	if !isInvariantViolation(err) {
		return err
	}
	dedup := operation
	if paymentID != nil {
		dedup += ":" + paymentID.String()
	}
	raiseAlert(ctx, uow, shared.AlertInvariantViolation, dedup, paymentID, err.Error(), map[string]any{
		"operation": operation,
	}, now)
	return errs.Mark(err, errs.ErrInvariantViolation)
}

func paymentRef(id uuid.UUID) *uuid.UUID {
	return &id
}

func uuidString(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}
