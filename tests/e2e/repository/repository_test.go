//go:build e2e

package repository_test

import (
	"context"
	"testing"
	"time"

	"rental-ledger/internal/domain/payment"
	"rental-ledger/internal/infra"
	"rental-ledger/internal/infra/repository"
	"rental-ledger/internal/pkg/errs"
	"rental-ledger/tests/common/builder"
	"rental-ledger/tests/common/dbtest"
	"rental-ledger/tests/e2e"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RepositorySuite struct {
	e2e.SharedSuite
}

func (s *RepositorySuite) SetupSubTest() {
	s.SharedSuite.SetupSubTest()
}

func TestRepositorySuite(t *testing.T) {
	t.Parallel()
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) TestBookingRepository() {
	ctx := context.Background()

	s.Run("Normal case: a stale copy loses the compare-and-set", func() {
		t := s.T()
		hostID := uuid.New()
		carID := dbtest.CreateTestCar(t, s.DB, hostID, 10000, 0)
		bk, err := builder.NewBookingBuilder().With(func(b *builder.BookingBuilder) {
			b.CarID = carID
			b.HostID = hostID
		}).Build()
		require.NoError(t, err)

		repo := repository.NewBookingRepository(s.DB)
		require.NoError(t, repo.Create(ctx, bk))

		first, err := repo.FindByID(ctx, bk.ID())
		require.NoError(t, err)
		second, err := repo.FindByID(ctx, bk.ID())
		require.NoError(t, err)

		require.NoError(t, repo.Update(ctx, first))
		s.Equal(second.Version()+1, first.Version())

		err = repo.Update(ctx, second)
		s.True(infra.IsKind(err, infra.KindStaleVersion), "got %v", err)
	})

	s.Run("Error case: the same renter cannot reuse an idempotency key", func() {
		t := s.T()
		hostID := uuid.New()
		carID := dbtest.CreateTestCar(t, s.DB, hostID, 10000, 0)
		renterID := uuid.New()
		build := func() *builder.BookingBuilder {
			return builder.NewBookingBuilder().With(func(b *builder.BookingBuilder) {
				b.CarID = carID
				b.HostID = hostID
				b.RenterID = renterID
				b.IdempotencyKey = "key-1"
			})
		}
		a, err := build().Build()
		require.NoError(t, err)
		b, err := build().Build()
		require.NoError(t, err)

		repo := repository.NewBookingRepository(s.DB)
		require.NoError(t, repo.Create(ctx, a))

		err = repo.Create(ctx, b)
		s.True(infra.IsKind(err, infra.KindDuplicateKey), "got %v", err)

		found, err := repo.FindByIdempotencyKey(ctx, renterID, "key-1")
		require.NoError(t, err)
		s.Equal(a.ID(), found.ID())
	})

	s.Run("Error case: unknown id is not found", func() {
		_, err := repository.NewBookingRepository(s.DB).FindByID(ctx, uuid.New())
		s.True(infra.IsKind(err, infra.KindNotFound), "got %v", err)
	})
}

// storePaidPayment inserts a booking and its captured payment, authorized at
// the builder base time.
func (s *RepositorySuite) storePaidPayment(t *testing.T) *payment.Payment {
	t.Helper()
	ctx := context.Background()
	hostID := uuid.New()
	carID := dbtest.CreateTestCar(t, s.DB, hostID, 10000, 30000)
	bk, p, err := builder.NewBookingBuilder().With(func(b *builder.BookingBuilder) {
		b.CarID = carID
		b.HostID = hostID
	}).BuildWithPayment(30000)
	require.NoError(t, err)

	now := builder.BaseTime
	_, err = p.MarkCheckoutCreated("cs_"+p.ID.String()[:8], "https://checkout.test/"+p.ID.String(), now.Add(time.Hour), now)
	require.NoError(t, err)
	_, err = p.MarkPaid(payment.PaidFacts{
		PaymentIntentID: "pi_" + p.ID.String()[:8],
		ChargeID:        "ch_" + p.ID.String()[:8],
		Captured:        true,
		At:              now,
	}, payment.DefaultPolicy(), now)
	require.NoError(t, err)

	require.NoError(t, repository.NewBookingRepository(s.DB).Create(ctx, bk))
	require.NoError(t, repository.NewPaymentRepository(s.DB).Create(ctx, p))
	return p
}

func (s *RepositorySuite) TestPaymentRepository() {
	ctx := context.Background()

	s.Run("Error case: an update that breaks the ledger rules is not written", func() {
		t := s.T()
		p := s.storePaidPayment(t)
		repo := repository.NewPaymentRepository(s.DB)

		loaded, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		version := loaded.Version
		loaded.RefundedAmount = loaded.TotalCharge() + 1

		err = repo.Update(ctx, loaded)
		s.True(errs.IsAny(err, errs.ErrInvariantViolation), "got %v", err)

		stored, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		s.Equal(version, stored.Version)
		s.Zero(stored.RefundedAmount)
	})

	s.Run("Normal case: deposit settlements honour the caller's clock for leases", func() {
		t := s.T()
		p := s.storePaidPayment(t)
		repo := repository.NewPaymentRepository(s.DB)

		leasedAt := builder.BaseTime.Add(200 * time.Hour)
		loaded, err := repo.FindByID(ctx, p.ID)
		require.NoError(t, err)
		expired, err := loaded.ExpireDepositWindow(leasedAt)
		require.NoError(t, err)
		require.True(t, expired)
		require.NoError(t, loaded.ClaimLease("worker-a", leasedAt, time.Hour))
		require.NoError(t, repo.Update(ctx, loaded))

		// The wall clock is well past the lease; only the passed time counts.
		held, err := repo.ListDepositSettlementsDue(ctx, leasedAt.Add(30*time.Minute), 10)
		require.NoError(t, err)
		s.Empty(held)

		due, err := repo.ListDepositSettlementsDue(ctx, leasedAt.Add(2*time.Hour), 10)
		require.NoError(t, err)
		require.Len(t, due, 1)
		s.Equal(p.ID, due[0].ID)
	})
}
