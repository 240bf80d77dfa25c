package payment

import (
	"errors"
	"time"
)

var ErrInvalidFeeRate = errors.New("platform fee rate must be between 0 and 10000 basis points")

// Policy holds the time and fee rules applied when a payment is confirmed.
type Policy struct {
	PlatformFeeBps        int64
	PayoutDelay           time.Duration
	DepositClaimWindow    time.Duration
	AuthorizationValidity time.Duration
	CaptureSafetyMargin   time.Duration
}

func DefaultPolicy() Policy {
	return Policy{
		PlatformFeeBps:        1500,
		PayoutDelay:           24 * time.Hour,
		DepositClaimWindow:    72 * time.Hour,
		AuthorizationValidity: 7 * 24 * time.Hour,
		CaptureSafetyMargin:   12 * time.Hour,
	}
}

// Split divides a rental amount into the platform fee and the host share.
// The fee is rounded down so the host never receives less than the remainder.
func (p Policy) Split(rentalAmount int64) (Amounts, error) {
	if rentalAmount <= 0 {
		return Amounts{}, ErrInvalidAmount
	}
	if p.PlatformFeeBps < 0 || p.PlatformFeeBps > 10000 {
		return Amounts{}, ErrInvalidFeeRate
	}
	fee := rentalAmount * p.PlatformFeeBps / 10000
	return Amounts{
		Rental:      rentalAmount,
		PlatformFee: fee,
		Host:        rentalAmount - fee,
	}, nil
}

// ReleaseAt is the earliest time the host payout is permitted.
func (p Policy) ReleaseAt(paidAt, tripStart time.Time) time.Time {
	base := paidAt
	if tripStart.After(base) {
		base = tripStart
	}
	return base.Add(p.PayoutDelay)
}

// CaptureDeadline is the moment an authorization must be captured: trip start,
// or earlier if the authorization would expire first.
func (p Policy) CaptureDeadline(authorizedAt, tripStart time.Time) time.Time {
	expiry := authorizedAt.Add(p.AuthorizationValidity - p.CaptureSafetyMargin)
	if tripStart.Before(expiry) {
		return tripStart
	}
	return expiry
}

func (p Policy) DepositWindowEnd(tripEnd time.Time) time.Time {
	return tripEnd.Add(p.DepositClaimWindow)
}

type Amounts struct {
	Rental      int64
	PlatformFee int64
	Host        int64
}
