package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"rental-ledger/internal/domain/depositcase"
	"rental-ledger/internal/domain/payment"
	"rental-ledger/internal/pkg/clock"
	"rental-ledger/internal/pkg/errs"
	"rental-ledger/internal/pkg/metrics"
	"rental-ledger/internal/usecase/shared"

	"github.com/google/uuid"
)

const (
	StepCapture           = "capture"
	StepPayoutEligibility = "payout_eligibility"
	StepTransfer          = "transfer"
	StepDepositWindow     = "deposit_window"
	StepDepositSettlement = "deposit_settlement"
	StepReversal          = "reversal"
)

type SweepReport struct {
	Step      string
	Processed int
	Succeeded int
	Skipped   int
	Failed    int
}

// SettlementCommands moves money that no inbound event will move on its own.
// Every sweep is safe to run concurrently on several workers.
type SettlementCommands interface {
	SweepCaptures(ctx context.Context) (*SweepReport, error)
	SweepPayoutEligibility(ctx context.Context) (*SweepReport, error)
	SweepTransfers(ctx context.Context) (*SweepReport, error)
	SweepDepositWindows(ctx context.Context) (*SweepReport, error)
	SweepDepositSettlements(ctx context.Context) (*SweepReport, error)
	SweepReversals(ctx context.Context) (*SweepReport, error)
	RunAll(ctx context.Context) ([]SweepReport, error)
}

type settlementCommandsImpl struct {
	uow       shared.UnitOfWork
	processor PaymentProcessor
	clock     clock.Clock
	settings  Settings
}

func NewSettlementCommands(uow shared.UnitOfWork, processor PaymentProcessor, clock clock.Clock, settings Settings) SettlementCommands {
	return &settlementCommandsImpl{
		uow:       uow,
		processor: processor,
		clock:     clock,
		settings:  settings,
	}
}

type itemResult int

const (
	itemSucceeded itemResult = iota
	itemSkipped
)

// errSkipItem aborts a claim transaction when the candidate no longer qualifies.
var errSkipItem = errors.New("sweep item no longer eligible")

type candidateLister func(ctx context.Context, payments shared.PaymentRepository, now time.Time, limit int) ([]*payment.Payment, error)

func (s *settlementCommandsImpl) sweep(ctx context.Context, step string, list candidateLister, process func(ctx context.Context, id uuid.UUID) (itemResult, error)) (*SweepReport, error) {
	started := time.Now()
	defer metrics.ObserveSweep(step, started)

	var ids []uuid.UUID
	err := s.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		candidates, err := list(ctx, tx.Payments(), s.clock.Now(), s.settings.BatchSize)
		if err != nil {
			return err
		}
		for _, p := range candidates {
			ids = append(ids, p.ID)
		}
		return nil
	})
	if err != nil {
		return nil, errs.Wrapf(err, "list %s candidates", step)
	}

	report := &SweepReport{Step: step}
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		report.Processed++
		result, err := process(ctx, id)
		switch {
		case err != nil:
			report.Failed++
			metrics.IncSweepItem(step, "failed")
			slog.Error("sweep item failed",
				"step", step,
				"payment_id", id.String(),
				"error", err.Error())
		case result == itemSkipped:
			report.Skipped++
			metrics.IncSweepItem(step, "skipped")
		default:
			report.Succeeded++
			metrics.IncSweepItem(step, "succeeded")
		}
	}

	if report.Processed > 0 {
		slog.Info("sweep finished",
			"step", step,
			"processed", report.Processed,
			"succeeded", report.Succeeded,
			"skipped", report.Skipped,
			"failed", report.Failed)
	}
	return report, nil
}

// claim re-reads the payment and applies mutate in one transaction. A false
// return means another worker or a concurrent event got there first.
func (s *settlementCommandsImpl) claim(ctx context.Context, id uuid.UUID, mutate func(tx shared.Tx, p *payment.Payment, now time.Time) error) (*payment.Payment, bool, error) {
	var claimed *payment.Payment
	err := s.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		p, err := tx.Payments().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := mutate(tx, p, s.clock.Now()); err != nil {
			return err
		}
		if err := tx.Payments().Update(ctx, p); err != nil {
			return err
		}
		claimed = p
		return nil
	})
	switch {
	case err == nil:
		return claimed, true, nil
	case isStale(err),
		errors.Is(err, errSkipItem),
		errors.Is(err, payment.ErrLeaseHeld),
		errors.Is(err, payment.ErrTransitionNotAllowed):
		return nil, false, nil
	default:
		return nil, false, alertOnInvariant(ctx, s.uow, "settlement", paymentRef(id), err, s.clock.Now())
	}
}

// finish re-reads the payment and records the outcome of a processor call.
func (s *settlementCommandsImpl) finish(ctx context.Context, id uuid.UUID, mutate func(tx shared.Tx, p *payment.Payment, now time.Time) error) (*payment.Payment, error) {
	var finished *payment.Payment
	err := withCASRetry(ctx, s.uow, func(ctx context.Context, tx shared.Tx) error {
		now := s.clock.Now()
		p, err := tx.Payments().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := mutate(tx, p, now); err != nil {
			return err
		}
		if err := tx.Payments().Update(ctx, p); err != nil {
			return err
		}
		finished = p
		return syncBooking(ctx, tx, p, now)
	})
	if err != nil {
		return nil, alertOnInvariant(ctx, s.uow, "settlement", paymentRef(id), err, s.clock.Now())
	}
	return finished, nil
}

func (s *settlementCommandsImpl) providerPolicy(maxAttempts int) retryPolicy {
	return retryPolicy{
		MaxAttempts: maxAttempts,
		BaseDelay:   s.settings.RetryBaseDelay,
		CallTimeout: s.settings.CallTimeout,
	}
}

func (s *settlementCommandsImpl) RunAll(ctx context.Context) ([]SweepReport, error) {
	steps := []func(context.Context) (*SweepReport, error){
		s.SweepCaptures,
		s.SweepDepositWindows,
		s.SweepDepositSettlements,
		s.SweepPayoutEligibility,
		s.SweepTransfers,
		s.SweepReversals,
	}

	reports := make([]SweepReport, 0, len(steps))
	var errList []error
	for _, step := range steps {
		report, err := step(ctx)
		if err != nil {
			errList = append(errList, err)
			continue
		}
		reports = append(reports, *report)
	}
	return reports, errors.Join(errList...)
}

// SweepCaptures captures manual authorizations whose deadline has passed and
// falls back to a platform charge when capture keeps failing.
func (s *settlementCommandsImpl) SweepCaptures(ctx context.Context) (*SweepReport, error) {
	list := func(ctx context.Context, payments shared.PaymentRepository, now time.Time, limit int) ([]*payment.Payment, error) {
		return payments.ListCaptureDue(ctx, now, limit)
	}
	return s.sweep(ctx, StepCapture, list, s.captureOne)
}

func (s *settlementCommandsImpl) captureOne(ctx context.Context, id uuid.UUID) (itemResult, error) {
	p, ok, err := s.claim(ctx, id, func(_ shared.Tx, p *payment.Payment, now time.Time) error {
		if !p.CaptureDue(now) {
			return errSkipItem
		}
		return p.ClaimLease(s.settings.WorkerID, now, s.settings.LeaseTTL)
	})
	if err != nil || !ok {
		return itemSkipped, err
	}

	var result *CaptureResult
	attempts, captureErr := callProvider(ctx, s.providerPolicy(s.settings.CaptureMaxAttempts), func(ctx context.Context) error {
		var err error
		result, err = s.processor.CapturePayment(ctx, CaptureParams{
			PaymentID:       p.ID,
			PaymentIntentID: p.PaymentIntentID,
			Amount:          p.TotalCharge(),
			IdempotencyKey:  captureKey(p.ID),
		})
		return err
	})

	if captureErr == nil {
		_, err := s.finish(ctx, id, func(_ shared.Tx, p *payment.Payment, now time.Time) error {
			defer p.ReleaseLease(now)
			_, err := p.MarkCaptured(result.ChargeID, now)
			return err
		})
		if err != nil {
			return itemSucceeded, errs.Wrap(err, "record capture")
		}
		slog.Info("payment captured", "payment_id", id.String(), "attempts", attempts)
		return itemSucceeded, nil
	}

	slog.Warn("capture failed",
		"payment_id", id.String(),
		"attempts", attempts,
		"error", captureErr.Error())

	_, err = s.finish(ctx, id, func(_ shared.Tx, p *payment.Payment, now time.Time) error {
		defer p.ReleaseLease(now)
		return p.MarkCaptureFailed(captureErr.Error(), attempts, now)
	})
	if err != nil {
		return itemSkipped, errs.Wrap(err, "record capture failure")
	}

	if s.settings.FallbackEnabled && (s.settings.FallbackOnAny || isPermanentProviderError(captureErr)) {
		if err := s.fallback(ctx, p, captureErr); err != nil {
			return itemSkipped, err
		}
		return itemSucceeded, nil
	}

	raiseAlert(ctx, s.uow, shared.AlertCaptureFailed, "capture:"+id.String(), paymentRef(id),
		"manual capture failed",
		map[string]any{"attempts": attempts, "error": captureErr.Error()},
		s.clock.Now())
	return itemSkipped, errs.Mark(captureErr, errs.ErrProviderPermanent)
}

// fallback charges the saved payment method off session and voids the stale
// authorization.
func (s *settlementCommandsImpl) fallback(ctx context.Context, p *payment.Payment, cause error) error {
	var result *CaptureResult
	_, err := callProvider(ctx, s.providerPolicy(s.settings.CaptureMaxAttempts), func(ctx context.Context) error {
		var err error
		result, err = s.processor.ChargeOffSession(ctx, OffSessionChargeParams{
			PaymentID:        p.ID,
			OriginalIntentID: p.PaymentIntentID,
			Amount:           p.TotalCharge(),
			Currency:         p.Currency,
			IdempotencyKey:   fallbackKey(p.ID),
		})
		return err
	})
	if err != nil {
		raiseAlert(ctx, s.uow, shared.AlertCaptureFailed, "capture:"+p.ID.String(), paymentRef(p.ID),
			"manual capture and fallback charge failed",
			map[string]any{"capture_error": cause.Error(), "fallback_error": err.Error()},
			s.clock.Now())
		return errs.Wrap(err, "fallback charge")
	}

	oldIntentID := p.PaymentIntentID
	_, err = s.finish(ctx, p.ID, func(_ shared.Tx, p *payment.Payment, now time.Time) error {
		return p.SwitchToFallback(result.PaymentIntentID, result.ChargeID, now)
	})
	if err != nil {
		raiseAlert(ctx, s.uow, shared.AlertInvariantViolation, "fallback:"+p.ID.String(), paymentRef(p.ID),
			"fallback charge succeeded but could not be recorded",
			map[string]any{"payment_intent_id": result.PaymentIntentID, "error": err.Error()},
			s.clock.Now())
		return errs.Wrap(err, "record fallback")
	}

	_, voidErr := callProvider(ctx, s.providerPolicy(2), func(ctx context.Context) error {
		return s.processor.CancelPayment(ctx, oldIntentID, voidKey(p.ID))
	})
	if voidErr != nil {
		slog.Warn("failed to void superseded authorization",
			"payment_id", p.ID.String(),
			"payment_intent_id", oldIntentID,
			"error", voidErr.Error())
	}

	slog.Info("payment switched to platform charge",
		"payment_id", p.ID.String(),
		"payment_intent_id", result.PaymentIntentID)
	return nil
}

func (s *settlementCommandsImpl) SweepPayoutEligibility(ctx context.Context) (*SweepReport, error) {
	list := func(ctx context.Context, payments shared.PaymentRepository, now time.Time, limit int) ([]*payment.Payment, error) {
		return payments.ListPayoutCandidates(ctx, now, limit)
	}
	return s.sweep(ctx, StepPayoutEligibility, list, func(ctx context.Context, id uuid.UUID) (itemResult, error) {
		_, ok, err := s.claim(ctx, id, func(tx shared.Tx, p *payment.Payment, now time.Time) error {
			payoutsEnabled := false
			v, err := tx.Reads().VerificationByUserID(ctx, p.HostID)
			switch {
			case err == nil:
				payoutsEnabled = v.PayoutsEnabled
			case !isNotFound(err):
				return err
			}
			changed, err := p.MarkPayoutEligible(now, payoutsEnabled)
			if err != nil {
				return err
			}
			if !changed {
				return errSkipItem
			}
			return nil
		})
		if err != nil || !ok {
			return itemSkipped, err
		}
		return itemSucceeded, nil
	})
}

func (s *settlementCommandsImpl) SweepTransfers(ctx context.Context) (*SweepReport, error) {
	list := func(ctx context.Context, payments shared.PaymentRepository, now time.Time, limit int) ([]*payment.Payment, error) {
		return payments.ListTransferCandidates(ctx, now, limit)
	}
	return s.sweep(ctx, StepTransfer, list, s.transferOne)
}

func (s *settlementCommandsImpl) transferOne(ctx context.Context, id uuid.UUID) (itemResult, error) {
	var destination string
	p, ok, err := s.claim(ctx, id, func(tx shared.Tx, p *payment.Payment, now time.Time) error {
		destination = p.HostAccountID
		v, err := tx.Reads().VerificationByUserID(ctx, p.HostID)
		switch {
		case err == nil:
			if v.ConnectedAccountID != "" {
				destination = v.ConnectedAccountID
			}
		case !isNotFound(err):
			return err
		}
		return p.BeginTransfer(s.settings.WorkerID, now, s.settings.LeaseTTL)
	})
	if err != nil || !ok {
		return itemSkipped, err
	}

	var transferID string
	transferErr := errors.New("host has no connected account")
	if destination != "" {
		_, transferErr = callProvider(ctx, s.providerPolicy(2), func(ctx context.Context) error {
			var err error
			transferID, err = s.processor.Transfer(ctx, TransferParams{
				PaymentID:      p.ID,
				Destination:    destination,
				Amount:         p.HostAmount,
				Currency:       p.Currency,
				SourceChargeID: p.ChargeID,
				TransferGroup:  p.BookingID.String(),
				IdempotencyKey: transferKey(p.ID),
			})
			return err
		})
	}

	if transferErr == nil {
		recorded, err := s.finish(ctx, id, func(_ shared.Tx, p *payment.Payment, now time.Time) error {
			_, err := p.MarkTransferred(transferID, now)
			return err
		})
		if err != nil {
			raiseAlert(ctx, s.uow, shared.AlertInvariantViolation, "transfer:"+id.String(), paymentRef(id),
				"transfer succeeded but could not be recorded",
				map[string]any{"transfer_id": transferID, "error": err.Error()},
				s.clock.Now())
			return itemSkipped, errs.Wrap(err, "record transfer")
		}
		slog.Info("host payout transferred",
			"payment_id", id.String(),
			"transfer_id", transferID,
			"payout_status", recorded.PayoutStatus.String())
		return itemSucceeded, nil
	}

	var exhausted bool
	_, err = s.finish(ctx, id, func(_ shared.Tx, p *payment.Payment, now time.Time) error {
		var err error
		exhausted, err = p.RecordTransferFailure(transferErr.Error(), s.settings.TransferMaxSweeps, now)
		return err
	})
	if err != nil {
		return itemSkipped, errs.Wrap(err, "record transfer failure")
	}
	if exhausted {
		raiseAlert(ctx, s.uow, shared.AlertTransferBlocked, "transfer:"+id.String(), paymentRef(id),
			"host payout blocked after repeated transfer failures",
			map[string]any{"error": transferErr.Error(), "max_sweeps": s.settings.TransferMaxSweeps},
			s.clock.Now())
	}
	return itemSkipped, errs.Wrap(transferErr, "transfer")
}

func (s *settlementCommandsImpl) SweepDepositWindows(ctx context.Context) (*SweepReport, error) {
	list := func(ctx context.Context, payments shared.PaymentRepository, now time.Time, limit int) ([]*payment.Payment, error) {
		return payments.ListExpiredDepositWindows(ctx, now, limit)
	}
	return s.sweep(ctx, StepDepositWindow, list, func(ctx context.Context, id uuid.UUID) (itemResult, error) {
		_, ok, err := s.claim(ctx, id, func(tx shared.Tx, p *payment.Payment, now time.Time) error {
			_, err := tx.DepositCases().FindPendingByPaymentID(ctx, p.ID)
			switch {
			case err == nil:
				return errSkipItem
			case !isNotFound(err):
				return err
			}
			expired, err := p.ExpireDepositWindow(now)
			if err != nil {
				return err
			}
			if !expired {
				return errSkipItem
			}
			return nil
		})
		if err != nil || !ok {
			return itemSkipped, err
		}
		slog.Info("deposit claim window expired", "payment_id", id.String())
		return itemSucceeded, nil
	})
}

// SweepDepositSettlements moves decided deposit money: the renter's share back
// onto the card and any retained share to the host.
func (s *settlementCommandsImpl) SweepDepositSettlements(ctx context.Context) (*SweepReport, error) {
	list := func(ctx context.Context, payments shared.PaymentRepository, now time.Time, limit int) ([]*payment.Payment, error) {
		return payments.ListDepositSettlementsDue(ctx, now, limit)
	}
	return s.sweep(ctx, StepDepositSettlement, list, s.settleDepositOne)
}

func (s *settlementCommandsImpl) settleDepositOne(ctx context.Context, id uuid.UUID) (itemResult, error) {
	var (
		decided     *depositcase.DepositCase
		destination string
	)
	p, ok, err := s.claim(ctx, id, func(tx shared.Tx, p *payment.Payment, now time.Time) error {
		if !p.DepositSettlementDue() {
			return errSkipItem
		}
		c, err := tx.DepositCases().FindDecidedByPaymentID(ctx, p.ID)
		switch {
		case err == nil:
			decided = c
		case !isNotFound(err):
			return err
		}
		if p.DepositTransferOutstanding() {
			destination = p.HostAccountID
			v, err := tx.Reads().VerificationByUserID(ctx, p.HostID)
			switch {
			case err == nil:
				if v.ConnectedAccountID != "" {
					destination = v.ConnectedAccountID
				}
			case !isNotFound(err):
				return err
			}
		}
		return p.ClaimLease(s.settings.WorkerID, now, s.settings.LeaseTTL)
	})
	if err != nil || !ok {
		return itemSkipped, err
	}

	settleErr := s.moveDepositFunds(ctx, p, decided, destination)

	_, err = s.finish(ctx, id, func(tx shared.Tx, p *payment.Payment, now time.Time) error {
		p.ReleaseLease(now)
		if settleErr != nil {
			p.RecordError(settleErr.Error(), now)
			return nil
		}
		if decided == nil {
			return nil
		}
		c, err := tx.DepositCases().FindByID(ctx, decided.ID())
		if err != nil {
			return err
		}
		resolved, err := c.MarkResolved(now)
		if err != nil || !resolved {
			return err
		}
		return tx.DepositCases().Update(ctx, c)
	})
	if err != nil {
		return itemSkipped, errs.Wrap(err, "record deposit settlement")
	}
	if settleErr != nil {
		return itemSkipped, settleErr
	}

	slog.Info("deposit settled",
		"payment_id", id.String(),
		"refunded", p.DepositRefundAmount,
		"retained", p.DepositRetainedAmount)
	return itemSucceeded, nil
}

func (s *settlementCommandsImpl) moveDepositFunds(ctx context.Context, p *payment.Payment, decided *depositcase.DepositCase, destination string) error {
	if p.DepositRefundOutstanding() {
		var refundID string
		_, err := callProvider(ctx, s.providerPolicy(2), func(ctx context.Context) error {
			var err error
			refundID, err = s.processor.Refund(ctx, RefundParams{
				PaymentID:       p.ID,
				PaymentIntentID: p.PaymentIntentID,
				Amount:          p.DepositRefundAmount,
				Reason:          "deposit_release",
				IdempotencyKey:  depositRefundKey(p.ID),
			})
			return err
		})
		if err != nil {
			return errs.Wrap(err, "deposit refund")
		}
		if _, err := s.finish(ctx, p.ID, func(_ shared.Tx, p *payment.Payment, now time.Time) error {
			p.RecordDepositRefund(refundID, now)
			return nil
		}); err != nil {
			return errs.Wrap(err, "record deposit refund")
		}
	}

	if p.DepositTransferOutstanding() {
		if decided == nil || destination == "" {
			return errs.New("retained deposit has no decided case or destination")
		}
		var transferID string
		_, err := callProvider(ctx, s.providerPolicy(2), func(ctx context.Context) error {
			var err error
			transferID, err = s.processor.Transfer(ctx, TransferParams{
				PaymentID:      p.ID,
				Destination:    destination,
				Amount:         p.DepositRetainedAmount,
				Currency:       p.Currency,
				SourceChargeID: p.ChargeID,
				TransferGroup:  p.BookingID.String(),
				IdempotencyKey: depositTransferKey(decided.ID()),
			})
			return err
		})
		if err != nil {
			return errs.Wrap(err, "retained deposit transfer")
		}
		if _, err := s.finish(ctx, p.ID, func(_ shared.Tx, p *payment.Payment, now time.Time) error {
			p.RecordDepositTransfer(transferID, now)
			return nil
		}); err != nil {
			return errs.Wrap(err, "record retained deposit transfer")
		}
	}
	return nil
}

// SweepReversals claws back host transfers made before a refund or dispute.
func (s *settlementCommandsImpl) SweepReversals(ctx context.Context) (*SweepReport, error) {
	list := func(ctx context.Context, payments shared.PaymentRepository, now time.Time, limit int) ([]*payment.Payment, error) {
		return payments.ListReversalsPending(ctx, now, limit)
	}
	return s.sweep(ctx, StepReversal, list, s.reverseOne)
}

func (s *settlementCommandsImpl) reverseOne(ctx context.Context, id uuid.UUID) (itemResult, error) {
	p, ok, err := s.claim(ctx, id, func(_ shared.Tx, p *payment.Payment, now time.Time) error {
		if p.PayoutStatus != payment.PayoutReversalPending {
			return errSkipItem
		}
		return p.ClaimLease(s.settings.WorkerID, now, s.settings.LeaseTTL)
	})
	if err != nil || !ok {
		return itemSkipped, err
	}

	var reversalID string
	reverseErr := fmt.Errorf("payment %s has no transfer to reverse", id)
	if p.StripeTransferID != "" {
		_, reverseErr = callProvider(ctx, s.providerPolicy(2), func(ctx context.Context) error {
			var err error
			reversalID, err = s.processor.ReverseTransfer(ctx, p.StripeTransferID, reversalKey(p.ID))
			return err
		})
	}

	_, err = s.finish(ctx, id, func(_ shared.Tx, p *payment.Payment, now time.Time) error {
		if reverseErr != nil {
			p.RecordError(reverseErr.Error(), now)
			p.ReleaseLease(now)
			return nil
		}
		_, err := p.MarkReversed(reversalID, now)
		return err
	})
	if err != nil {
		return itemSkipped, errs.Wrap(err, "record reversal")
	}

	if reverseErr != nil {
		raiseAlert(ctx, s.uow, shared.AlertReversalFailed, "reversal:"+id.String(), paymentRef(id),
			"host transfer reversal failed",
			map[string]any{"transfer_id": p.StripeTransferID, "error": reverseErr.Error()},
			s.clock.Now())
		return itemSkipped, errs.Wrap(reverseErr, "reverse transfer")
	}

	slog.Info("host transfer reversed", "payment_id", id.String(), "reversal_id", reversalID)
	return itemSucceeded, nil
}
