package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"rental-ledger/internal/domain/booking"
	"rental-ledger/internal/domain/payment"
	"rental-ledger/internal/domain/webhook"
	"rental-ledger/internal/infra"
	"rental-ledger/internal/pkg/clock"
	"rental-ledger/internal/pkg/errs"
	"rental-ledger/internal/pkg/metrics"
	"rental-ledger/internal/usecase/shared"

	"github.com/google/uuid"
)

type CheckoutRequest struct {
	CarID          uuid.UUID
	RenterID       uuid.UUID
	Start          time.Time
	End            time.Time
	IdempotencyKey string
}

type CheckoutResult struct {
	CheckoutURL string
	PaymentID   uuid.UUID
	BookingID   uuid.UUID
	Replayed    bool
}

type RedirectResult struct {
	BookingID    uuid.UUID
	PaymentID    uuid.UUID
	Outcome      Outcome
	DisplayState booking.DisplayState
}

type CheckoutCommands interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error)
	ReconcileCheckoutSessionFromRedirect(ctx context.Context, sessionID string, renterID uuid.UUID) (*RedirectResult, error)
}

type checkoutCommandsImpl struct {
	uow       shared.UnitOfWork
	processor PaymentProcessor
	clock     clock.Clock
	settings  Settings
	applier   *eventApplier
}

func NewCheckoutCommands(uow shared.UnitOfWork, processor PaymentProcessor, clock clock.Clock, settings Settings) CheckoutCommands {
	return &checkoutCommandsImpl{
		uow:       uow,
		processor: processor,
		clock:     clock,
		settings:  settings,
		applier:   &eventApplier{uow: uow, clock: clock, policy: settings.Policy},
	}
}

func (c *checkoutCommandsImpl) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	req.IdempotencyKey = strings.TrimSpace(req.IdempotencyKey)
	if req.IdempotencyKey == "" {
		return nil, errs.ErrIdempotencyKeyRequired
	}

	b, p, err := c.findExisting(ctx, req.RenterID, req.IdempotencyKey)
	if err != nil {
		return nil, err
	}
	if b != nil {
		return c.replay(ctx, req, b, p)
	}

	b, p, err = c.createPending(ctx, req)
	if infra.IsKind(err, infra.KindDuplicateKey) {
		// Lost a race against a concurrent request with the same key.
		b, p, err = c.findExisting(ctx, req.RenterID, req.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if b == nil {
			return nil, errs.Mark(errs.New("idempotent booking vanished"), errs.ErrDatabaseOperationFailed)
		}
		return c.replay(ctx, req, b, p)
	}
	if err != nil {
		return nil, err
	}

	return c.openSession(ctx, b, p, false)
}

func (c *checkoutCommandsImpl) replay(ctx context.Context, req CheckoutRequest, b *booking.Booking, p *payment.Payment) (*CheckoutResult, error) {
	if b.CarID() != req.CarID ||
		!b.DateRange().Start().Equal(req.Start) ||
		!b.DateRange().End().Equal(req.End) {
		return nil, errs.ErrIdempotencyConflict
	}
	if p != nil && p.CheckoutURL == "" && p.Status == payment.StatusMethodCollectionPending {
		slog.Info("retrying checkout session creation", "booking_id", b.ID().String(), "payment_id", p.ID.String())
		return c.openSession(ctx, b, p, true)
	}

	metrics.IncCheckout("replayed")
	result := &CheckoutResult{BookingID: b.ID(), Replayed: true}
	if p != nil {
		result.PaymentID = p.ID
		result.CheckoutURL = p.CheckoutURL
	}
	return result, nil
}

func (c *checkoutCommandsImpl) findExisting(ctx context.Context, renterID uuid.UUID, key string) (*booking.Booking, *payment.Payment, error) {
	var (
		b *booking.Booking
		p *payment.Payment
	)
	err := c.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		b, err = tx.Bookings().FindByIdempotencyKey(ctx, renterID, key)
		if err != nil {
			return err
		}
		p, err = tx.Payments().FindByBookingID(ctx, b.ID())
		if isNotFound(err) {
			return nil
		}
		return err
	})
	if isNotFound(err) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return b, p, nil
}

func (c *checkoutCommandsImpl) createPending(ctx context.Context, req CheckoutRequest) (*booking.Booking, *payment.Payment, error) {
	now := c.clock.Now()

	dateRange, err := booking.NewDateRange(req.Start, req.End, now)
	if err != nil {
		return nil, nil, errs.Mark(err, errs.ErrInvalidDateRange)
	}

	reads := c.uow.CommandReads()
	car, err := reads.CarByID(ctx, req.CarID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, errs.ErrCarNotFound
		}
		return nil, nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if !car.Active {
		return nil, nil, errs.ErrCarNotFound
	}
	if car.HostID == req.RenterID {
		return nil, nil, errs.Mark(errs.New("host cannot book own car"), errs.ErrForbidden)
	}

	if c.settings.RequireRenterVerification {
		v, err := reads.VerificationByUserID(ctx, req.RenterID)
		if err != nil && !isNotFound(err) {
			return nil, nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if v == nil || !v.ReadyToBook {
			return nil, nil, errs.ErrRenterUnverified
		}
	}

	hostAccountID := ""
	hostVerification, err := reads.VerificationByUserID(ctx, car.HostID)
	switch {
	case err == nil:
		hostAccountID = hostVerification.ConnectedAccountID
	case !isNotFound(err):
		return nil, nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	amounts, err := c.settings.Policy.Split(car.DailyRate * dateRange.Days())
	if err != nil {
		return nil, nil, errs.Mark(err, errs.ErrInvalidAmount)
	}

	var (
		b *booking.Booking
		p *payment.Payment
	)
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		overlap, err := tx.Bookings().HasConfirmedOverlap(ctx, car.ID, dateRange.Start(), dateRange.End())
		if err != nil {
			return err
		}
		if overlap {
			return errs.ErrDateRangeConflict
		}

		b, err = booking.New(booking.NewParams{
			CarID:          car.ID,
			RenterID:       req.RenterID,
			HostID:         car.HostID,
			DateRange:      dateRange,
			TotalPrice:     amounts.Rental,
			Currency:       car.Currency,
			IdempotencyKey: req.IdempotencyKey,
		}, now)
		if err != nil {
			return errs.Mark(err, errs.ErrDomainValidation)
		}

		p, err = payment.New(payment.NewParams{
			BookingID:     b.ID(),
			CarID:         car.ID,
			RenterID:      req.RenterID,
			HostID:        car.HostID,
			HostAccountID: hostAccountID,
			TripStart:     dateRange.Start(),
			TripEnd:       dateRange.End(),
			Currency:      car.Currency,
			Amounts:       amounts,
			DepositAmount: car.DepositAmount,
			Strategy:      payment.StrategyDestinationManualCapture,
		}, now)
		if err != nil {
			return errs.Mark(err, errs.ErrDomainValidation)
		}
		b.AttachPayment(p.ID, now)

		if err := tx.Bookings().Create(ctx, b); err != nil {
			return err
		}
		return tx.Payments().Create(ctx, p)
	})
	if err != nil {
		return nil, nil, err
	}

	slog.Info("booking created pending checkout",
		"booking_id", b.ID().String(),
		"payment_id", p.ID.String(),
		"rental_amount", p.RentalAmount,
		"deposit_amount", p.DepositAmount)
	return b, p, nil
}

func (c *checkoutCommandsImpl) openSession(ctx context.Context, b *booking.Booking, p *payment.Payment, replayed bool) (*CheckoutResult, error) {
	expiresAt := c.clock.Now().Add(c.settings.CheckoutExpiry)

	var session *CheckoutSession
	_, err := callProvider(ctx, retryPolicy{MaxAttempts: 2, BaseDelay: c.settings.RetryBaseDelay, CallTimeout: c.settings.CallTimeout}, func(ctx context.Context) error {
		var err error
		session, err = c.processor.CreateCheckoutSession(ctx, CheckoutSessionParams{
			PaymentID:      p.ID,
			BookingID:      b.ID(),
			RenterID:       p.RenterID,
			CarID:          p.CarID,
			Currency:       p.Currency,
			RentalAmount:   p.RentalAmount,
			DepositAmount:  p.DepositAmount,
			Description:    fmt.Sprintf("Car rental %s to %s", b.DateRange().Start().Format(time.DateOnly), b.DateRange().End().Format(time.DateOnly)),
			ManualCapture:  p.Strategy == payment.StrategyDestinationManualCapture,
			ExpiresAt:      expiresAt,
			IdempotencyKey: checkoutKey(p.ID),
		})
		return err
	})
	if err != nil {
		metrics.IncCheckout("session_failed")
		slog.Error("checkout session creation failed",
			"booking_id", b.ID().String(),
			"payment_id", p.ID.String(),
			"error", err.Error())
		return nil, errs.Mark(err, errs.ErrDownstreamSessionCreationFailed)
	}

	var checkoutURL string
	err = withCASRetry(ctx, c.uow, func(ctx context.Context, tx shared.Tx) error {
		now := c.clock.Now()
		current, err := tx.Payments().FindByID(ctx, p.ID)
		if err != nil {
			return err
		}
		changed, err := current.MarkCheckoutCreated(session.ID, session.URL, expiresAt, now)
		if err != nil {
			return errs.Mark(err, errs.ErrStateConflict)
		}
		checkoutURL = current.CheckoutURL
		if !changed {
			return nil
		}
		if err := tx.Payments().Update(ctx, current); err != nil {
			return err
		}
		return syncBooking(ctx, tx, current, now)
	})
	if err != nil {
		return nil, err
	}

	metrics.IncCheckout("created")
	return &CheckoutResult{
		CheckoutURL: checkoutURL,
		PaymentID:   p.ID,
		BookingID:   b.ID(),
		Replayed:    replayed,
	}, nil
}

func (c *checkoutCommandsImpl) ReconcileCheckoutSessionFromRedirect(ctx context.Context, sessionID string, renterID uuid.UUID) (*RedirectResult, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, errs.Mark(errs.New("session id required"), errs.ErrDomainValidation)
	}

	var p *payment.Payment
	err := c.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var err error
		p, err = tx.Payments().FindByCheckoutSessionID(ctx, sessionID)
		return err
	})
	if err != nil {
		if isNotFound(err) {
			return nil, errs.ErrPaymentNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if p.RenterID != renterID {
		return nil, errs.ErrForbidden
	}

	var event *webhook.Event
	_, err = callProvider(ctx, retryPolicy{MaxAttempts: 2, BaseDelay: c.settings.RetryBaseDelay, CallTimeout: c.settings.CallTimeout}, func(ctx context.Context) error {
		var err error
		event, err = c.processor.RetrieveCheckoutSession(ctx, sessionID)
		return err
	})
	if err != nil {
		return nil, errs.Mark(err, errs.ErrProviderTransient)
	}

	result := &RedirectResult{BookingID: p.BookingID, PaymentID: p.ID, Outcome: OutcomeNoop}
	if status := redirectStatus(event.Type); status != "" {
		event.ID = fmt.Sprintf("redirect:%s:%s", sessionID, status)
		if event.PaymentID == uuid.Nil {
			event.PaymentID = p.ID
		}
		if event.CheckoutSessionID == "" {
			event.CheckoutSessionID = sessionID
		}
		ack, err := c.applier.apply(ctx, event)
		if err != nil {
			return nil, err
		}
		result.Outcome = ack.Outcome
	}

	err = c.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		current, err := tx.Payments().FindByID(ctx, p.ID)
		if err != nil {
			return err
		}
		b, err := tx.Bookings().FindByID(ctx, p.BookingID)
		if err != nil {
			return err
		}
		result.DisplayState = booking.Display(b, current)
		return nil
	})
	if err != nil {
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return result, nil
}

// redirectStatus names the session state for synthetic event ids; "" means still open.
func redirectStatus(t webhook.EventType) string {
	switch t {
	case webhook.CheckoutSessionCompleted:
		return "complete"
	case webhook.CheckoutSessionExpired:
		return "expired"
	case webhook.CheckoutSessionAsyncPaymentFailed:
		return "failed"
	default:
		return ""
	}
}
