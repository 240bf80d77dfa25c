package payment

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrInvalidCurrency      = errors.New("currency is required")
	ErrInvalidStrategy      = errors.New("invalid payment strategy")
	ErrTransitionNotAllowed = errors.New("payment transition not allowed")
	ErrOutOfOrder           = errors.New("event received out of causal order")
	ErrInvariantViolation   = errors.New("payment invariant violated")
	ErrLeaseHeld            = errors.New("payment lease held by another worker")
	ErrDepositNotHeld       = errors.New("deposit is not held")
	ErrClaimWindowClosed    = errors.New("deposit claim window has closed")
	ErrClaimExceedsDeposit  = errors.New("claim exceeds deposit amount")
	ErrPayoutInFlight       = errors.New("payout transfer is in flight")
)

// Payment is the financial source of truth for one booking.
// Amounts are in the currency's minor unit.
type Payment struct {
	ID            uuid.UUID
	BookingID     uuid.UUID
	CarID         uuid.UUID
	RenterID      uuid.UUID
	HostID        uuid.UUID
	HostAccountID string
	TripStart     time.Time
	TripEnd       time.Time

	CheckoutSessionID string
	CheckoutURL       string
	PaymentIntentID   string
	ChargeID          string

	Strategy              Strategy
	CaptureStatus         CaptureStatus
	ManualCaptureDeadline *time.Time
	CaptureAttempts       int

	Currency          string
	RentalAmount      int64
	PlatformFeeAmount int64
	HostAmount        int64
	DepositAmount     int64
	RefundedAmount    int64

	Status       Status
	PaidAt       *time.Time
	PaymentDueAt *time.Time

	DepositStatus            DepositStatus
	DepositClaimWindowEndsAt *time.Time
	DepositRefundAmount      int64
	DepositRetainedAmount    int64
	DepositRefundID          string
	DepositTransferID        string

	PayoutStatus             PayoutStatus
	ReleaseAt                *time.Time
	PayoutAttempts           int
	StripeTransferID         string
	StripeTransferReversalID string

	LastWebhookEventID string
	LastError          string
	LeaseOwner         string
	LeaseExpiresAt     *time.Time

	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

type NewParams struct {
	BookingID     uuid.UUID
	CarID         uuid.UUID
	RenterID      uuid.UUID
	HostID        uuid.UUID
	HostAccountID string
	TripStart     time.Time
	TripEnd       time.Time
	Currency      string
	Amounts       Amounts
	DepositAmount int64
	Strategy      Strategy
}

func New(params NewParams, now time.Time) (*Payment, error) {
	if params.Currency == "" {
		return nil, ErrInvalidCurrency
	}
	if params.DepositAmount < 0 {
		return nil, ErrInvalidAmount
	}
	if !params.Strategy.IsValid() {
		return nil, ErrInvalidStrategy
	}

	depositStatus := DepositNone
	if params.DepositAmount > 0 {
		depositStatus = DepositPending
	}

	p := &Payment{
		ID:                uuid.New(),
		BookingID:         params.BookingID,
		CarID:             params.CarID,
		RenterID:          params.RenterID,
		HostID:            params.HostID,
		HostAccountID:     params.HostAccountID,
		TripStart:         params.TripStart,
		TripEnd:           params.TripEnd,
		Strategy:          params.Strategy,
		CaptureStatus:     CaptureNotRequired,
		Currency:          params.Currency,
		RentalAmount:      params.Amounts.Rental,
		PlatformFeeAmount: params.Amounts.PlatformFee,
		HostAmount:        params.Amounts.Host,
		DepositAmount:     params.DepositAmount,
		Status:            StatusMethodCollectionPending,
		DepositStatus:     depositStatus,
		PayoutStatus:      PayoutPending,
		Version:           1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// TotalCharge is what the renter is charged: rental plus refundable deposit.
func (p *Payment) TotalCharge() int64 {
	return p.RentalAmount + p.DepositAmount
}

// Validate checks the invariants that must hold after every mutation.
func (p *Payment) Validate() error {
	switch {
	case p.RentalAmount <= 0:
		return fmt.Errorf("%w: rental amount must be positive", ErrInvariantViolation)
	case p.PlatformFeeAmount < 0 || p.HostAmount < 0:
		return fmt.Errorf("%w: fee and host amounts must not be negative", ErrInvariantViolation)
	case p.RentalAmount != p.PlatformFeeAmount+p.HostAmount:
		return fmt.Errorf("%w: rental %d != fee %d + host %d", ErrInvariantViolation, p.RentalAmount, p.PlatformFeeAmount, p.HostAmount)
	case p.Strategy == StrategyPlatformTransferFallback && p.CaptureStatus != CaptureNotRequired:
		return fmt.Errorf("%w: capture status %s under fallback strategy", ErrInvariantViolation, p.CaptureStatus)
	case p.DepositAmount == 0 && p.DepositStatus != DepositNone:
		return fmt.Errorf("%w: deposit status %s without deposit", ErrInvariantViolation, p.DepositStatus)
	case p.DepositRefundAmount < 0 || p.DepositRetainedAmount < 0:
		return fmt.Errorf("%w: negative deposit settlement", ErrInvariantViolation)
	case p.DepositRefundAmount+p.DepositRetainedAmount > p.DepositAmount:
		return fmt.Errorf("%w: deposit settlement exceeds deposit", ErrInvariantViolation)
	case p.RefundedAmount < 0 || p.RefundedAmount > p.TotalCharge():
		return fmt.Errorf("%w: refunded %d outside [0, %d]", ErrInvariantViolation, p.RefundedAmount, p.TotalCharge())
	}
	return nil
}

func (p *Payment) touch(now time.Time) {
	p.UpdatedAt = now
}

// MarkCheckoutCreated records the processor session. The completion webhook may
// already have arrived, in which case only missing identifiers are filled in.
func (p *Payment) MarkCheckoutCreated(sessionID, checkoutURL string, dueAt, now time.Time) (bool, error) {
	if sessionID == "" {
		return false, ErrTransitionNotAllowed
	}
	if p.CheckoutSessionID != "" && p.CheckoutSessionID != sessionID {
		return false, ErrTransitionNotAllowed
	}

	changed := false
	if p.CheckoutSessionID == "" {
		p.CheckoutSessionID = sessionID
		changed = true
	}
	if p.CheckoutURL == "" && checkoutURL != "" {
		p.CheckoutURL = checkoutURL
		changed = true
	}
	if p.Status == StatusMethodCollectionPending {
		p.Status = StatusCheckoutCreated
		due := dueAt
		p.PaymentDueAt = &due
		changed = true
	}
	if changed {
		p.touch(now)
	}
	return changed, nil
}

type PaidFacts struct {
	SessionID       string
	PaymentIntentID string
	ChargeID        string
	Captured        bool
	At              time.Time
}

// MarkPaid applies an authorization or a completed charge. The earliest
// confirmation time wins so that redeliveries in any order converge.
func (p *Payment) MarkPaid(f PaidFacts, pol Policy, now time.Time) (bool, error) {
	if p.Status == StatusCanceled {
		return false, nil
	}

	changed := p.fillProcessorIDs(f.SessionID, f.PaymentIntentID, f.ChargeID)

	if p.Status.HasFunds() {
		if f.Captured && p.CaptureStatus == CapturePending {
			p.CaptureStatus = CaptureCaptured
			changed = true
		}
		if p.confirmPaidAt(f.At, pol) {
			changed = true
		}
		if changed {
			p.touch(now)
		}
		return changed, nil
	}

	p.Status = StatusPaid
	p.LastError = ""
	switch {
	case p.Strategy == StrategyPlatformTransferFallback:
		p.CaptureStatus = CaptureNotRequired
	case f.Captured:
		p.CaptureStatus = CaptureCaptured
	default:
		p.CaptureStatus = CapturePending
	}
	if p.DepositStatus == DepositPending {
		p.DepositStatus = DepositHeld
		windowEnd := pol.DepositWindowEnd(p.TripEnd)
		p.DepositClaimWindowEndsAt = &windowEnd
	}
	p.confirmPaidAt(f.At, pol)
	p.touch(now)
	return true, nil
}

func (p *Payment) confirmPaidAt(at time.Time, pol Policy) bool {
	if p.PaidAt != nil && !at.Before(*p.PaidAt) {
		return false
	}
	paidAt := at
	p.PaidAt = &paidAt
	if p.PayoutStatus == PayoutPending || p.ReleaseAt == nil {
		releaseAt := pol.ReleaseAt(paidAt, p.TripStart)
		p.ReleaseAt = &releaseAt
	}
	if p.Strategy == StrategyDestinationManualCapture {
		deadline := pol.CaptureDeadline(paidAt, p.TripStart)
		p.ManualCaptureDeadline = &deadline
	}
	return true
}

func (p *Payment) fillProcessorIDs(sessionID, intentID, chargeID string) bool {
	changed := false
	if p.CheckoutSessionID == "" && sessionID != "" {
		p.CheckoutSessionID = sessionID
		changed = true
	}
	if p.PaymentIntentID == "" && intentID != "" {
		p.PaymentIntentID = intentID
		changed = true
	}
	if p.ChargeID == "" && chargeID != "" {
		p.ChargeID = chargeID
		changed = true
	}
	return changed
}

// MarkCaptured applies a processor-confirmed capture of a manual authorization.
func (p *Payment) MarkCaptured(chargeID string, now time.Time) (bool, error) {
	switch {
	case p.Status.IsPrePayment():
		return false, ErrOutOfOrder
	case p.Status == StatusCanceled:
		return false, fmt.Errorf("%w: capture of a voided authorization", ErrInvariantViolation)
	}

	changed := p.fillProcessorIDs("", "", chargeID)
	if p.CaptureStatus == CapturePending || p.CaptureStatus == CaptureFailed {
		p.CaptureStatus = CaptureCaptured
		p.LastError = ""
		changed = true
	}
	if changed {
		p.touch(now)
	}
	return changed, nil
}

// MarkFailed is a no-op once funds exist; a late failure of an earlier attempt is stale.
func (p *Payment) MarkFailed(reason string, now time.Time) (bool, error) {
	if p.Status != StatusMethodCollectionPending && p.Status != StatusCheckoutCreated {
		return false, nil
	}
	p.Status = StatusFailed
	p.LastError = reason
	p.touch(now)
	return true, nil
}

// MarkCanceled applies a voided payment intent.
func (p *Payment) MarkCanceled(now time.Time) (bool, error) {
	switch {
	case p.Status == StatusMethodCollectionPending || p.Status == StatusCheckoutCreated:
		p.Status = StatusFailed
		p.LastError = "payment intent canceled"
		p.touch(now)
		return true, nil
	case p.Status != StatusPaid:
		return false, nil
	case p.CaptureStatus == CaptureCaptured || p.CaptureStatus == CaptureNotRequired:
		return false, fmt.Errorf("%w: cancel of a captured payment", ErrInvariantViolation)
	}

	p.Status = StatusCanceled
	if p.DepositAmount > 0 && !p.DepositStatus.IsTerminal() {
		p.DepositStatus = DepositRefunded
		p.DepositRetainedAmount = 0
		p.DepositRefundAmount = p.DepositAmount
	}
	if p.PayoutStatus.IsOpen() {
		p.PayoutStatus = PayoutCancelled
	}
	p.touch(now)
	return true, nil
}

// ApplyRefundTotal takes the processor's cumulative refunded amount. Lower or
// equal totals are stale redeliveries.
func (p *Payment) ApplyRefundTotal(amountRefunded int64, now time.Time) (bool, error) {
	switch {
	case p.Status.IsPrePayment():
		return false, ErrOutOfOrder
	case p.Status == StatusCanceled:
		return false, fmt.Errorf("%w: refund of a voided authorization", ErrInvariantViolation)
	case amountRefunded > p.TotalCharge():
		return false, fmt.Errorf("%w: refund %d exceeds charge %d", ErrInvariantViolation, amountRefunded, p.TotalCharge())
	case amountRefunded <= p.RefundedAmount:
		return false, nil
	}

	p.RefundedAmount = amountRefunded

	if amountRefunded == p.TotalCharge() {
		if p.Status != StatusDisputed && p.Status != StatusDisputeLost {
			p.Status = StatusRefunded
		}
		if p.DepositAmount > 0 {
			p.DepositStatus = DepositRefunded
			p.DepositRetainedAmount = 0
			p.DepositRefundAmount = p.DepositAmount
		}
		p.closePayoutAfterRefund()
		p.touch(now)
		return true, nil
	}

	if p.isDepositRefundEcho(amountRefunded) {
		p.touch(now)
		return true, nil
	}

	if p.Status == StatusPaid {
		p.Status = StatusPartiallyRefunded
	}
	if p.PayoutStatus == PayoutPending || p.PayoutStatus == PayoutEligible || p.PayoutStatus == PayoutError {
		p.PayoutStatus = PayoutBlocked
	}
	p.touch(now)
	return true, nil
}

// isDepositRefundEcho matches the processor's notice for a deposit release the
// ledger already decided. The decision is persisted before the refund call, so
// the notice may arrive before the refund id is recorded.
func (p *Payment) isDepositRefundEcho(amountRefunded int64) bool {
	switch p.DepositStatus {
	case DepositRefunded, DepositPartiallyRefunded:
	default:
		return false
	}
	return p.DepositRefundAmount > 0 && amountRefunded <= p.DepositRefundAmount
}

func (p *Payment) closePayoutAfterRefund() {
	switch {
	case p.PayoutStatus == PayoutTransferred:
		p.PayoutStatus = PayoutReversalPending
	case p.PayoutStatus.IsOpen():
		p.PayoutStatus = PayoutCancelled
	}
}

// OpenDispute freezes the payout. Funds already sent to the host are clawed back.
func (p *Payment) OpenDispute(now time.Time) (bool, error) {
	switch {
	case p.Status.IsPrePayment():
		return false, ErrOutOfOrder
	case p.Status == StatusDisputed || p.Status == StatusDisputeLost:
		return false, nil
	case p.Status == StatusCanceled:
		return false, fmt.Errorf("%w: dispute on a voided authorization", ErrInvariantViolation)
	}

	p.Status = StatusDisputed
	switch {
	case p.PayoutStatus == PayoutTransferred:
		p.PayoutStatus = PayoutReversalPending
	case p.PayoutStatus.IsOpen():
		p.PayoutStatus = PayoutBlocked
	}
	p.touch(now)
	return true, nil
}

func (p *Payment) CloseDispute(won bool, now time.Time) (bool, error) {
	switch {
	case p.Status == StatusDisputeLost:
		return false, nil
	case p.Status != StatusDisputed:
		return false, ErrOutOfOrder
	}

	if !won {
		p.Status = StatusDisputeLost
		if p.PayoutStatus.IsOpen() {
			p.PayoutStatus = PayoutCancelled
		}
		p.touch(now)
		return true, nil
	}

	switch {
	case p.RefundedAmount == p.TotalCharge():
		p.Status = StatusRefunded
	case p.RefundedAmount > 0 && !p.isDepositRefundEcho(p.RefundedAmount):
		p.Status = StatusPartiallyRefunded
	default:
		p.Status = StatusPaid
		if p.PayoutStatus == PayoutBlocked {
			p.PayoutStatus = PayoutPending
		}
	}
	p.touch(now)
	return true, nil
}

// ClaimLease marks the payment as being worked on by owner until now+ttl.
func (p *Payment) ClaimLease(owner string, now time.Time, ttl time.Duration) error {
	if p.LeaseActive(now) && p.LeaseOwner != owner {
		return ErrLeaseHeld
	}
	expiresAt := now.Add(ttl)
	p.LeaseOwner = owner
	p.LeaseExpiresAt = &expiresAt
	p.touch(now)
	return nil
}

func (p *Payment) LeaseActive(now time.Time) bool {
	return p.LeaseOwner != "" && p.LeaseExpiresAt != nil && now.Before(*p.LeaseExpiresAt)
}

func (p *Payment) ReleaseLease(now time.Time) {
	p.LeaseOwner = ""
	p.LeaseExpiresAt = nil
	p.touch(now)
}

func (p *Payment) CaptureDue(now time.Time) bool {
	return p.Status == StatusPaid &&
		p.Strategy == StrategyDestinationManualCapture &&
		p.CaptureStatus == CapturePending &&
		p.ManualCaptureDeadline != nil &&
		now.After(*p.ManualCaptureDeadline)
}

func (p *Payment) MarkCaptureFailed(reason string, attempts int, now time.Time) error {
	if p.CaptureStatus != CapturePending {
		return ErrTransitionNotAllowed
	}
	p.CaptureStatus = CaptureFailed
	p.CaptureAttempts += attempts
	p.LastError = reason
	p.touch(now)
	return nil
}

// SwitchToFallback moves a failed manual capture onto a platform charge.
func (p *Payment) SwitchToFallback(intentID, chargeID string, now time.Time) error {
	if p.Strategy != StrategyDestinationManualCapture || p.CaptureStatus != CaptureFailed {
		return ErrTransitionNotAllowed
	}
	p.Strategy = StrategyPlatformTransferFallback
	p.CaptureStatus = CaptureNotRequired
	p.PaymentIntentID = intentID
	p.ChargeID = chargeID
	p.LastError = ""
	p.touch(now)
	return nil
}

// PayoutBlocker names the first condition preventing the host payout, or "".
func (p *Payment) PayoutBlocker(now time.Time) string {
	switch {
	case p.Status != StatusPaid:
		return "payment_not_paid"
	case !p.CaptureStatus.IsSettled():
		return "capture_unsettled"
	case p.DepositStatus.BlocksPayout():
		return "deposit_blocked"
	case p.ReleaseAt == nil || now.Before(*p.ReleaseAt):
		return "release_not_reached"
	}
	return ""
}

func (p *Payment) MarkPayoutEligible(now time.Time, payoutsEnabled bool) (bool, error) {
	if p.PayoutStatus != PayoutPending {
		return false, nil
	}
	if !payoutsEnabled || p.PayoutBlocker(now) != "" {
		return false, nil
	}
	p.PayoutStatus = PayoutEligible
	p.touch(now)
	return true, nil
}

func (p *Payment) BeginTransfer(owner string, now time.Time, ttl time.Duration) error {
	switch p.PayoutStatus {
	case PayoutEligible, PayoutError:
	case PayoutTransferring:
		if p.LeaseActive(now) {
			return ErrLeaseHeld
		}
	default:
		return ErrTransitionNotAllowed
	}
	if p.PayoutBlocker(now) != "" {
		return ErrTransitionNotAllowed
	}
	p.PayoutStatus = PayoutTransferring
	return p.ClaimLease(owner, now, ttl)
}

// MarkTransferred records a completed transfer. If the payment was refunded or
// disputed while the call was in flight the transfer is queued for reversal.
func (p *Payment) MarkTransferred(transferID string, now time.Time) (bool, error) {
	if p.StripeTransferID == transferID && p.PayoutStatus.HasMovedFunds() {
		return false, nil
	}
	if p.PayoutStatus != PayoutTransferring {
		return false, ErrTransitionNotAllowed
	}

	p.StripeTransferID = transferID
	p.LastError = ""
	if p.Status == StatusPaid && p.CaptureStatus.IsSettled() && !p.DepositStatus.BlocksPayout() {
		p.PayoutStatus = PayoutTransferred
	} else {
		p.PayoutStatus = PayoutReversalPending
	}
	p.ReleaseLease(now)
	return true, nil
}

// RecordTransferFailure returns true when the failure budget is exhausted and
// the payout has been blocked for manual follow-up.
func (p *Payment) RecordTransferFailure(reason string, maxSweeps int, now time.Time) (bool, error) {
	if p.PayoutStatus != PayoutTransferring {
		return false, ErrTransitionNotAllowed
	}
	p.PayoutAttempts++
	p.LastError = reason
	exhausted := maxSweeps > 0 && p.PayoutAttempts >= maxSweeps
	if exhausted {
		p.PayoutStatus = PayoutBlocked
	} else {
		p.PayoutStatus = PayoutError
	}
	p.ReleaseLease(now)
	return exhausted, nil
}

func (p *Payment) MarkReversed(reversalID string, now time.Time) (bool, error) {
	if p.PayoutStatus == PayoutReversed {
		return false, nil
	}
	if p.PayoutStatus != PayoutReversalPending {
		return false, ErrTransitionNotAllowed
	}
	p.PayoutStatus = PayoutReversed
	p.StripeTransferReversalID = reversalID
	p.ReleaseLease(now)
	return true, nil
}

// SubmitDepositCase blocks the payout while a host claim is outstanding.
func (p *Payment) SubmitDepositCase(requestedAmount int64, now time.Time) error {
	switch {
	case requestedAmount <= 0:
		return ErrInvalidAmount
	case p.DepositStatus != DepositHeld:
		return ErrDepositNotHeld
	case p.DepositClaimWindowEndsAt == nil || !now.Before(*p.DepositClaimWindowEndsAt):
		return ErrClaimWindowClosed
	case requestedAmount > p.DepositAmount:
		return ErrClaimExceedsDeposit
	case p.PayoutStatus == PayoutTransferring:
		return ErrPayoutInFlight
	}

	p.DepositStatus = DepositCaseSubmitted
	if p.PayoutStatus == PayoutEligible || p.PayoutStatus == PayoutError {
		p.PayoutStatus = PayoutPending
	}
	p.touch(now)
	return nil
}

// ApplyDepositDecision settles a decided claim into a terminal deposit status.
func (p *Payment) ApplyDepositDecision(retainedAmount int64, now time.Time) (DepositStatus, error) {
	if p.DepositStatus != DepositCaseSubmitted {
		return p.DepositStatus, ErrTransitionNotAllowed
	}
	if retainedAmount < 0 || retainedAmount > p.DepositAmount {
		return p.DepositStatus, ErrClaimExceedsDeposit
	}

	p.DepositRetainedAmount = retainedAmount
	p.DepositRefundAmount = p.DepositAmount - retainedAmount
	switch {
	case retainedAmount == 0:
		p.DepositStatus = DepositRefunded
	case p.DepositRefundAmount == 0:
		p.DepositStatus = DepositRetained
	default:
		p.DepositStatus = DepositPartiallyRefunded
	}
	p.touch(now)
	return p.DepositStatus, nil
}

// ExpireDepositWindow releases an unclaimed deposit once the claim window has passed.
func (p *Payment) ExpireDepositWindow(now time.Time) (bool, error) {
	if p.DepositStatus != DepositHeld || p.DepositClaimWindowEndsAt == nil || !now.After(*p.DepositClaimWindowEndsAt) {
		return false, nil
	}
	p.DepositStatus = DepositRefunded
	p.DepositRetainedAmount = 0
	p.DepositRefundAmount = p.DepositAmount
	p.touch(now)
	return true, nil
}

// DepositSettlementDue reports whether refund or retained-transfer money still has to move.
func (p *Payment) DepositSettlementDue() bool {
	if p.Status != StatusPaid || !p.CaptureStatus.IsSettled() {
		return false
	}
	switch p.DepositStatus {
	case DepositRefunded, DepositPartiallyRefunded, DepositRetained:
	default:
		return false
	}
	return p.DepositRefundOutstanding() || p.DepositTransferOutstanding()
}

func (p *Payment) DepositRefundOutstanding() bool {
	return p.DepositRefundAmount > 0 && p.DepositRefundID == ""
}

func (p *Payment) DepositTransferOutstanding() bool {
	return p.DepositRetainedAmount > 0 && p.DepositTransferID == ""
}

func (p *Payment) RecordDepositRefund(refundID string, now time.Time) bool {
	if p.DepositRefundID != "" {
		return false
	}
	p.DepositRefundID = refundID
	p.touch(now)
	return true
}

func (p *Payment) RecordDepositTransfer(transferID string, now time.Time) bool {
	if p.DepositTransferID != "" {
		return false
	}
	p.DepositTransferID = transferID
	p.touch(now)
	return true
}

// RequestCancellationRefund holds the deposit in refund_pending until the
// processor confirms the cancellation refund.
func (p *Payment) RequestCancellationRefund(now time.Time) bool {
	if p.DepositStatus != DepositHeld {
		return false
	}
	p.DepositStatus = DepositRefundPending
	p.touch(now)
	return true
}

func (p *Payment) RecordError(reason string, now time.Time) {
	p.LastError = reason
	p.touch(now)
}
