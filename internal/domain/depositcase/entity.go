package depositcase

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	ErrInvalidAmount      = errors.New("requested amount must be positive")
	ErrReasonRequired     = errors.New("reason is required")
	ErrInvalidDecision    = errors.New("invalid decision")
	ErrInvalidResolution  = errors.New("resolution amount does not match decision")
	ErrCaseResolved       = errors.New("deposit case is already resolved")
	ErrCaseAlreadyDecided = errors.New("deposit case is already decided")
	ErrCaseNotDecided     = errors.New("deposit case has no decision yet")
)

const maxReasonLength = 2000

type NewParams struct {
	PaymentID       uuid.UUID
	BookingID       uuid.UUID
	HostID          uuid.UUID
	RenterID        uuid.UUID
	RequestedAmount int64
	Reason          string
}

type DepositCase struct {
	id               uuid.UUID
	paymentID        uuid.UUID
	bookingID        uuid.UUID
	hostID           uuid.UUID
	renterID         uuid.UUID
	requestedAmount  int64
	status           Status
	resolutionAmount int64
	reason           string
	resolutionNote   string
	version          int64
	createdAt        time.Time
	updatedAt        time.Time
	resolvedAt       *time.Time
}

func New(params NewParams, now time.Time) (*DepositCase, error) {
	if params.RequestedAmount <= 0 {
		return nil, ErrInvalidAmount
	}
	reason := strings.TrimSpace(params.Reason)
	if reason == "" {
		return nil, ErrReasonRequired
	}
	// Same unit as the request validator: characters, not bytes.
	if utf8.RuneCountInString(reason) > maxReasonLength {
		reason = string([]rune(reason)[:maxReasonLength])
	}
	return &DepositCase{
		id:              uuid.New(),
		paymentID:       params.PaymentID,
		bookingID:       params.BookingID,
		hostID:          params.HostID,
		renterID:        params.RenterID,
		requestedAmount: params.RequestedAmount,
		status:          StatusOpen,
		reason:          reason,
		version:         1,
		createdAt:       now,
		updatedAt:       now,
	}, nil
}

func Reconstruct(
	id, paymentID, bookingID, hostID, renterID uuid.UUID,
	requestedAmount int64,
	status Status,
	resolutionAmount int64,
	reason, resolutionNote string,
	version int64,
	createdAt, updatedAt time.Time,
	resolvedAt *time.Time,
) *DepositCase {
	return &DepositCase{
		id:               id,
		paymentID:        paymentID,
		bookingID:        bookingID,
		hostID:           hostID,
		renterID:         renterID,
		requestedAmount:  requestedAmount,
		status:           status,
		resolutionAmount: resolutionAmount,
		reason:           reason,
		resolutionNote:   resolutionNote,
		version:          version,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
		resolvedAt:       resolvedAt,
	}
}

func (c *DepositCase) ID() uuid.UUID           { return c.id }
func (c *DepositCase) PaymentID() uuid.UUID    { return c.paymentID }
func (c *DepositCase) BookingID() uuid.UUID    { return c.bookingID }
func (c *DepositCase) HostID() uuid.UUID       { return c.hostID }
func (c *DepositCase) RenterID() uuid.UUID     { return c.renterID }
func (c *DepositCase) RequestedAmount() int64  { return c.requestedAmount }
func (c *DepositCase) Status() Status          { return c.status }
func (c *DepositCase) ResolutionAmount() int64 { return c.resolutionAmount }
func (c *DepositCase) Reason() string          { return c.reason }
func (c *DepositCase) ResolutionNote() string  { return c.resolutionNote }
func (c *DepositCase) Version() int64          { return c.version }
func (c *DepositCase) CreatedAt() time.Time    { return c.createdAt }
func (c *DepositCase) UpdatedAt() time.Time    { return c.updatedAt }
func (c *DepositCase) ResolvedAt() *time.Time  { return c.resolvedAt }

func (c *DepositCase) IncrementVersion() {
	c.version++
}

func (c *DepositCase) StartReview(now time.Time) (bool, error) {
	switch c.status {
	case StatusUnderReview:
		return false, nil
	case StatusOpen:
		c.status = StatusUnderReview
		c.updatedAt = now
		return true, nil
	case StatusResolved:
		return false, ErrCaseResolved
	default:
		return false, ErrCaseAlreadyDecided
	}
}

// Decide records the outcome and returns the amount of the deposit the host keeps.
func (c *DepositCase) Decide(decision Status, resolutionAmount int64, note string, now time.Time) (int64, error) {
	if c.status == StatusResolved {
		return 0, ErrCaseResolved
	}
	if !c.status.IsPending() {
		return 0, ErrCaseAlreadyDecided
	}

	switch decision {
	case StatusApproved:
		if resolutionAmount == 0 {
			resolutionAmount = c.requestedAmount
		}
		if resolutionAmount != c.requestedAmount {
			return 0, ErrInvalidResolution
		}
	case StatusPartiallyApproved:
		if resolutionAmount <= 0 || resolutionAmount >= c.requestedAmount {
			return 0, ErrInvalidResolution
		}
	case StatusRejected:
		if resolutionAmount != 0 {
			return 0, ErrInvalidResolution
		}
	default:
		return 0, ErrInvalidDecision
	}

	c.status = decision
	c.resolutionAmount = resolutionAmount
	c.resolutionNote = strings.TrimSpace(note)
	c.updatedAt = now
	return resolutionAmount, nil
}

// MarkResolved closes a decided case once the money has moved.
func (c *DepositCase) MarkResolved(now time.Time) (bool, error) {
	switch {
	case c.status == StatusResolved:
		return false, nil
	case !c.status.IsDecision():
		return false, ErrCaseNotDecided
	}
	at := now
	c.status = StatusResolved
	c.resolvedAt = &at
	c.updatedAt = now
	return true, nil
}
