package commands

import (
	"context"
	"log/slog"

	"rental-ledger/internal/domain/webhook"
	"rental-ledger/internal/pkg/clock"
	"rental-ledger/internal/pkg/errs"
	"rental-ledger/internal/pkg/metrics"
	"rental-ledger/internal/usecase/shared"
)

type WebhookCommands interface {
	HandleEvent(ctx context.Context, payload []byte, signatureHeader string) (*Ack, error)
}

type webhookCommandsImpl struct {
	uow       shared.UnitOfWork
	processor PaymentProcessor
	applier   *eventApplier
}

func NewWebhookCommands(uow shared.UnitOfWork, processor PaymentProcessor, clock clock.Clock, settings Settings) WebhookCommands {
	return &webhookCommandsImpl{
		uow:       uow,
		processor: processor,
		applier:   &eventApplier{uow: uow, clock: clock, policy: settings.Policy},
	}
}

func (w *webhookCommandsImpl) HandleEvent(ctx context.Context, payload []byte, signatureHeader string) (*Ack, error) {
	event, err := w.processor.ParseWebhook(payload, signatureHeader)
	if err != nil {
		metrics.IncSignatureFailure()
		slog.Warn("webhook rejected",
			"security_event", true,
			"error", err.Error())
		return nil, errs.Mark(err, errs.ErrAuthenticity)
	}

	if _, known := webhook.ParseEventType(string(event.Type)); !known {
		metrics.IncWebhookEvent(string(event.Type), string(OutcomeIgnored))
		slog.Info("ignoring unhandled webhook event",
			"event_id", event.ID,
			"event_type", string(event.Type))
		return &Ack{EventID: event.ID, Outcome: OutcomeIgnored}, nil
	}

	ack, err := w.applier.apply(ctx, event)
	if err != nil {
		outcome := "error"
		switch {
		case errs.IsAny(err, errs.ErrOutOfOrder):
			outcome = "out_of_order"
		case errs.IsAny(err, errs.ErrInvariantViolation):
			outcome = "invariant_violation"
		}
		metrics.IncWebhookEvent(string(event.Type), outcome)
		slog.Warn("webhook event not applied",
			"event_id", event.ID,
			"event_type", string(event.Type),
			"outcome", outcome,
			"error", err.Error())
		return ack, err
	}

	metrics.IncWebhookEvent(string(event.Type), string(ack.Outcome))
	slog.Info("webhook event processed",
		"event_id", event.ID,
		"event_type", string(event.Type),
		"outcome", string(ack.Outcome),
		"payment_id", uuidString(ack.PaymentID))
	return ack, nil
}
