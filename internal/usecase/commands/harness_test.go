//go:build unit

package commands_test

import (
	"testing"
	"time"

	"rental-ledger/internal/domain/booking"
	"rental-ledger/internal/domain/payment"
	"rental-ledger/internal/pkg/clock"
	"rental-ledger/internal/pkg/config"
	"rental-ledger/internal/usecase/commands"
	"rental-ledger/internal/usecase/shared"
	"rental-ledger/tests/common/builder"
	"rental-ledger/tests/common/memstore"
	commandsmock "rental-ledger/tests/mock/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const hostAccount = "acct_host_live"

type harness struct {
	store    *memstore.Store
	proc     *commandsmock.MockPaymentProcessor
	clock    *clock.MockClock
	settings commands.Settings

	car      shared.CarSnapshot
	renterID uuid.UUID
	hostID   uuid.UUID
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctrl := gomock.NewController(t)

	h := &harness{
		store:    memstore.New(),
		proc:     commandsmock.NewMockPaymentProcessor(ctrl),
		clock:    clock.NewMockClock(builder.BaseTime),
		settings: commands.NewSettings(config.NewTestConfig()),
		renterID: uuid.New(),
		hostID:   uuid.New(),
	}
	h.car = shared.CarSnapshot{
		ID:            uuid.New(),
		HostID:        h.hostID,
		DailyRate:     10000,
		DepositAmount: 30000,
		Currency:      "eur",
		Active:        true,
	}
	h.store.AddCar(h.car)
	h.store.AddVerification(shared.VerificationSnapshot{UserID: h.renterID, ReadyToBook: true})
	h.store.AddVerification(shared.VerificationSnapshot{
		UserID:             h.hostID,
		ReadyToBook:        true,
		PayoutsEnabled:     true,
		ConnectedAccountID: hostAccount,
	})
	return h
}

func (h *harness) checkout() commands.CheckoutCommands {
	return commands.NewCheckoutCommands(h.store, h.proc, h.clock, h.settings)
}

func (h *harness) webhooks() commands.WebhookCommands {
	return commands.NewWebhookCommands(h.store, h.proc, h.clock, h.settings)
}

func (h *harness) bookings() commands.BookingCommands {
	return commands.NewBookingCommands(h.store, h.proc, h.clock, h.settings)
}

func (h *harness) depositCases() commands.DepositCaseCommands {
	return commands.NewDepositCaseCommands(h.store, h.clock)
}

func (h *harness) settlement() commands.SettlementCommands {
	return commands.NewSettlementCommands(h.store, h.proc, h.clock, h.settings)
}

// tripStart is three days after the base time; trips last two days.
func tripStart() time.Time { return builder.BaseTime.Add(72 * time.Hour) }
func tripEnd() time.Time   { return tripStart().Add(48 * time.Hour) }

type seedOpts struct {
	captured bool
	deposit  int64
}

// seedPaid stores a confirmed booking whose payment was authorized at the base time.
func (h *harness) seedPaid(t *testing.T, opts seedOpts) (*booking.Booking, *payment.Payment) {
	t.Helper()
	now := builder.BaseTime

	bk, p, err := builder.NewBookingBuilder().With(func(b *builder.BookingBuilder) {
		b.CarID = h.car.ID
		b.RenterID = h.renterID
		b.HostID = h.hostID
		b.Start = tripStart()
		b.End = tripEnd()
		b.Now = now
	}).BuildWithPayment(opts.deposit)
	require.NoError(t, err)
	p.HostAccountID = hostAccount

	_, err = p.MarkCheckoutCreated("cs_seed", "https://checkout.test/cs_seed", now.Add(30*time.Minute), now)
	require.NoError(t, err)
	_, err = p.MarkPaid(payment.PaidFacts{
		SessionID:       "cs_seed",
		PaymentIntentID: "pi_seed",
		ChargeID:        "ch_seed",
		Captured:        opts.captured,
		At:              now,
	}, h.settings.Policy, now)
	require.NoError(t, err)

	_, err = bk.SyncFromPayment(p, now)
	require.NoError(t, err)
	require.Equal(t, booking.StatusConfirmed, bk.Status())

	h.store.PutBooking(bk)
	h.store.PutPayment(p)
	return bk, p
}
