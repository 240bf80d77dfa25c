//go:build unit || e2e

package builder

import (
	"time"

	"rental-ledger/internal/domain/booking"
	"rental-ledger/internal/domain/payment"

	"github.com/google/uuid"
)

var BaseTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type PaymentBuilder struct {
	BookingID     uuid.UUID
	CarID         uuid.UUID
	RenterID      uuid.UUID
	HostID        uuid.UUID
	HostAccountID string
	TripStart     time.Time
	TripEnd       time.Time
	Currency      string
	RentalAmount  int64
	DepositAmount int64
	Strategy      payment.Strategy
	Policy        payment.Policy
	Now           time.Time
}

func NewPaymentBuilder() *PaymentBuilder {
	return &PaymentBuilder{
		BookingID:     uuid.New(),
		CarID:         uuid.New(),
		RenterID:      uuid.New(),
		HostID:        uuid.New(),
		HostAccountID: "acct_host_1",
		TripStart:     BaseTime.Add(72 * time.Hour),
		TripEnd:       BaseTime.Add(120 * time.Hour),
		Currency:      "eur",
		RentalAmount:  20000,
		DepositAmount: 30000,
		Strategy:      payment.StrategyDestinationManualCapture,
		Policy:        payment.DefaultPolicy(),
		Now:           BaseTime,
	}
}

func (b *PaymentBuilder) With(mutate func(*PaymentBuilder)) *PaymentBuilder {
	mutate(b)
	return b
}

func (b *PaymentBuilder) WithoutDeposit() *PaymentBuilder {
	b.DepositAmount = 0
	return b
}

func (b *PaymentBuilder) Build() (*payment.Payment, error) {
	amounts, err := b.Policy.Split(b.RentalAmount)
	if err != nil {
		return nil, err
	}
	return payment.New(payment.NewParams{
		BookingID:     b.BookingID,
		CarID:         b.CarID,
		RenterID:      b.RenterID,
		HostID:        b.HostID,
		HostAccountID: b.HostAccountID,
		TripStart:     b.TripStart,
		TripEnd:       b.TripEnd,
		Currency:      b.Currency,
		Amounts:       amounts,
		DepositAmount: b.DepositAmount,
		Strategy:      b.Strategy,
	}, b.Now)
}

// BuildPaid returns a payment authorized for manual capture at Now.
func (b *PaymentBuilder) BuildPaid() (*payment.Payment, error) {
	p, err := b.Build()
	if err != nil {
		return nil, err
	}
	if _, err := p.MarkCheckoutCreated("cs_test_"+p.ID.String()[:8], "https://checkout.test/"+p.ID.String(), b.Now.Add(time.Hour), b.Now); err != nil {
		return nil, err
	}
	if _, err := p.MarkPaid(payment.PaidFacts{
		PaymentIntentID: "pi_test_" + p.ID.String()[:8],
		ChargeID:        "ch_test_" + p.ID.String()[:8],
		Captured:        b.Strategy == payment.StrategyPlatformTransferFallback,
		At:              b.Now,
	}, b.Policy, b.Now); err != nil {
		return nil, err
	}
	return p, nil
}

type BookingBuilder struct {
	CarID          uuid.UUID
	RenterID       uuid.UUID
	HostID         uuid.UUID
	Start          time.Time
	End            time.Time
	TotalPrice     int64
	Currency       string
	IdempotencyKey string
	Now            time.Time
}

func NewBookingBuilder() *BookingBuilder {
	return &BookingBuilder{
		CarID:          uuid.New(),
		RenterID:       uuid.New(),
		HostID:         uuid.New(),
		Start:          BaseTime.Add(72 * time.Hour),
		End:            BaseTime.Add(120 * time.Hour),
		TotalPrice:     20000,
		Currency:       "eur",
		IdempotencyKey: "idem-" + uuid.NewString(),
		Now:            BaseTime,
	}
}

func (b *BookingBuilder) With(mutate func(*BookingBuilder)) *BookingBuilder {
	mutate(b)
	return b
}

func (b *BookingBuilder) Build() (*booking.Booking, error) {
	dr, err := booking.NewDateRange(b.Start, b.End, b.Now)
	if err != nil {
		return nil, err
	}
	return booking.New(booking.NewParams{
		CarID:          b.CarID,
		RenterID:       b.RenterID,
		HostID:         b.HostID,
		DateRange:      dr,
		TotalPrice:     b.TotalPrice,
		Currency:       b.Currency,
		IdempotencyKey: b.IdempotencyKey,
	}, b.Now)
}

// BuildWithPayment returns a booking and its payment linked to each other.
func (b *BookingBuilder) BuildWithPayment(deposit int64) (*booking.Booking, *payment.Payment, error) {
	bk, err := b.Build()
	if err != nil {
		return nil, nil, err
	}
	pb := NewPaymentBuilder().With(func(pb *PaymentBuilder) {
		pb.BookingID = bk.ID()
		pb.CarID = bk.CarID()
		pb.RenterID = bk.RenterID()
		pb.HostID = bk.HostID()
		pb.TripStart = bk.DateRange().Start()
		pb.TripEnd = bk.DateRange().End()
		pb.RentalAmount = bk.TotalPrice()
		pb.DepositAmount = deposit
		pb.Now = b.Now
	})
	p, err := pb.Build()
	if err != nil {
		return nil, nil, err
	}
	bk.AttachPayment(p.ID, b.Now)
	return bk, p, nil
}
