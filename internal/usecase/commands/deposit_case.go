package commands

import (
	"context"
	"errors"
	"log/slog"

	"rental-ledger/internal/domain/depositcase"
	"rental-ledger/internal/domain/payment"
	"rental-ledger/internal/infra"
	"rental-ledger/internal/pkg/clock"
	"rental-ledger/internal/pkg/errs"
	"rental-ledger/internal/usecase/shared"

	"github.com/google/uuid"
)

type FileDepositCaseRequest struct {
	HostID          uuid.UUID
	PaymentID       uuid.UUID
	RequestedAmount int64
	Reason          string
}

type ResolveDepositCaseRequest struct {
	CaseID           uuid.UUID
	Decision         depositcase.Status
	ResolutionAmount int64
	Note             string
}

type DepositCaseResult struct {
	Case     *depositcase.DepositCase
	Existing bool
}

type DepositCaseCommands interface {
	FileDepositCase(ctx context.Context, req FileDepositCaseRequest) (*DepositCaseResult, error)
	ReviewDepositCase(ctx context.Context, caseID uuid.UUID) (*depositcase.DepositCase, error)
	ResolveDepositCase(ctx context.Context, req ResolveDepositCaseRequest) (*depositcase.DepositCase, error)
}

type depositCaseCommandsImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewDepositCaseCommands(uow shared.UnitOfWork, clock clock.Clock) DepositCaseCommands {
	return &depositCaseCommandsImpl{uow: uow, clock: clock}
}

func (d *depositCaseCommandsImpl) FileDepositCase(ctx context.Context, req FileDepositCaseRequest) (*DepositCaseResult, error) {
	result := &DepositCaseResult{}
	err := withCASRetry(ctx, d.uow, func(ctx context.Context, tx shared.Tx) error {
		now := d.clock.Now()
		p, err := tx.Payments().FindByID(ctx, req.PaymentID)
		if err != nil {
			if isNotFound(err) {
				return errs.ErrPaymentNotFound
			}
			return err
		}
		if p.HostID != req.HostID {
			return errs.ErrForbidden
		}

		existing, err := tx.DepositCases().FindPendingByPaymentID(ctx, p.ID)
		switch {
		case err == nil:
			result.Case = existing
			result.Existing = true
			return nil
		case !isNotFound(err):
			return err
		}

		c, err := depositcase.New(depositcase.NewParams{
			PaymentID:       p.ID,
			BookingID:       p.BookingID,
			HostID:          p.HostID,
			RenterID:        p.RenterID,
			RequestedAmount: req.RequestedAmount,
			Reason:          req.Reason,
		}, now)
		if err != nil {
			return markDepositError(err)
		}
		if err := p.SubmitDepositCase(req.RequestedAmount, now); err != nil {
			return markDepositError(err)
		}

		if err := tx.DepositCases().Create(ctx, c); err != nil {
			return err
		}
		if err := tx.Payments().Update(ctx, p); err != nil {
			return err
		}
		result.Case = c
		result.Existing = false
		return nil
	})

	if infra.IsKind(err, infra.KindDuplicateKey) {
		// A concurrent filing for the same payment won the unique index.
		return d.pendingCase(ctx, req.PaymentID)
	}
	if err != nil {
		return nil, alertOnInvariant(ctx, d.uow, "deposit_case_file", paymentRef(req.PaymentID), err, d.clock.Now())
	}

	if !result.Existing {
		slog.Info("deposit case filed",
			"case_id", result.Case.ID().String(),
			"payment_id", req.PaymentID.String(),
			"requested_amount", req.RequestedAmount)
	}
	return result, nil
}

func (d *depositCaseCommandsImpl) pendingCase(ctx context.Context, paymentID uuid.UUID) (*DepositCaseResult, error) {
	var c *depositcase.DepositCase
	err := d.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		c, err = tx.DepositCases().FindPendingByPaymentID(ctx, paymentID)
		return err
	})
	if err != nil {
		return nil, errs.Mark(err, errs.ErrStateConflict)
	}
	return &DepositCaseResult{Case: c, Existing: true}, nil
}

func (d *depositCaseCommandsImpl) ReviewDepositCase(ctx context.Context, caseID uuid.UUID) (*depositcase.DepositCase, error) {
	var reviewed *depositcase.DepositCase
	err := withCASRetry(ctx, d.uow, func(ctx context.Context, tx shared.Tx) error {
		c, err := tx.DepositCases().FindByID(ctx, caseID)
		if err != nil {
			if isNotFound(err) {
				return errs.ErrDepositCaseNotFound
			}
			return err
		}
		changed, err := c.StartReview(d.clock.Now())
		if err != nil {
			return markDepositError(err)
		}
		reviewed = c
		if !changed {
			return nil
		}
		return tx.DepositCases().Update(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return reviewed, nil
}

func (d *depositCaseCommandsImpl) ResolveDepositCase(ctx context.Context, req ResolveDepositCaseRequest) (*depositcase.DepositCase, error) {
	var (
		decided   *depositcase.DepositCase
		status    payment.DepositStatus
		paymentID *uuid.UUID
	)
	err := withCASRetry(ctx, d.uow, func(ctx context.Context, tx shared.Tx) error {
		now := d.clock.Now()
		c, err := tx.DepositCases().FindByID(ctx, req.CaseID)
		if err != nil {
			if isNotFound(err) {
				return errs.ErrDepositCaseNotFound
			}
			return err
		}
		p, err := tx.Payments().FindByID(ctx, c.PaymentID())
		if err != nil {
			return err
		}
		paymentID = paymentRef(p.ID)

		retained, err := c.Decide(req.Decision, req.ResolutionAmount, req.Note, now)
		if err != nil {
			return markDepositError(err)
		}
		status, err = p.ApplyDepositDecision(retained, now)
		if err != nil {
			return markDepositError(err)
		}

		if err := tx.DepositCases().Update(ctx, c); err != nil {
			return err
		}
		if err := tx.Payments().Update(ctx, p); err != nil {
			return err
		}
		decided = c
		return nil
	})
	if err != nil {
		return nil, alertOnInvariant(ctx, d.uow, "deposit_case_resolve", paymentID, err, d.clock.Now())
	}

	slog.Info("deposit case resolved",
		"case_id", req.CaseID.String(),
		"decision", req.Decision.String(),
		"deposit_status", status.String())
	return decided, nil
}

func markDepositError(err error) error {
	switch {
	case errors.Is(err, payment.ErrInvalidAmount),
		errors.Is(err, payment.ErrClaimExceedsDeposit),
		errors.Is(err, depositcase.ErrInvalidAmount):
		return errs.Mark(err, errs.ErrInvalidAmount)
	case errors.Is(err, depositcase.ErrReasonRequired),
		errors.Is(err, depositcase.ErrInvalidDecision),
		errors.Is(err, depositcase.ErrInvalidResolution):
		return errs.Mark(err, errs.ErrDomainValidation)
	default:
		return errs.Mark(err, errs.ErrStateConflict)
	}
}
