//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"rental-ledger/internal/domain/booking"
	"rental-ledger/internal/domain/payment"
	"rental-ledger/internal/domain/webhook"
	"rental-ledger/internal/pkg/errs"
	"rental-ledger/internal/usecase/commands"
	"rental-ledger/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestCancelReservation(t *testing.T) {
	ctx := context.Background()

	t.Run("決済前はセッションを失効させ通知で取消が確定する", func(t *testing.T) {
		h := newHarness(t)
		created := h.openCheckout(t)
		h.proc.EXPECT().ExpireCheckoutSession(gomock.Any(), "cs_1").Return(nil)

		result, err := h.bookings().CancelReservation(ctx, created.BookingID, h.renterID)

		require.NoError(t, err)
		assert.True(t, result.AwaitingProcessor)
		b := h.store.Booking(created.BookingID)
		assert.Equal(t, booking.StatusPaymentPending, b.Status())
		require.NotNil(t, b.CancelRequestedAt())

		_, err = h.deliver(t, webhook.Event{
			ID:                "evt_exp",
			Type:              webhook.CheckoutSessionExpired,
			CheckoutSessionID: "cs_1",
		})
		require.NoError(t, err)
		assert.Equal(t, booking.StatusCancelled, h.store.Booking(created.BookingID).Status())
	})

	t.Run("未確定の仮売上は取り消し通知で取消が確定する", func(t *testing.T) {
		h := newHarness(t)
		bk, p := h.seedPaid(t, seedOpts{deposit: 30000})
		h.proc.EXPECT().CancelPayment(gomock.Any(), "pi_seed", "void:"+p.ID.String()).Return(nil)

		result, err := h.bookings().CancelReservation(ctx, bk.ID(), h.renterID)

		require.NoError(t, err)
		assert.True(t, result.AwaitingProcessor)
		assert.Equal(t, payment.DepositRefundPending, h.store.Payment(p.ID).DepositStatus)
		assert.Equal(t, booking.StatusConfirmed, h.store.Booking(bk.ID()).Status())

		_, err = h.deliver(t, webhook.Event{
			ID:              "evt_void",
			Type:            webhook.PaymentIntentCanceled,
			PaymentID:       p.ID,
			PaymentIntentID: "pi_seed",
		})
		require.NoError(t, err)

		got := h.store.Payment(p.ID)
		assert.Equal(t, payment.StatusCanceled, got.Status)
		assert.Equal(t, payment.DepositRefunded, got.DepositStatus)
		assert.Equal(t, payment.PayoutCancelled, got.PayoutStatus)
		assert.Equal(t, booking.StatusCancelled, h.store.Booking(bk.ID()).Status())
	})

	t.Run("確定済みの売上は返金で取り消す", func(t *testing.T) {
		h := newHarness(t)
		bk, p := h.seedPaid(t, seedOpts{captured: true, deposit: 30000})
		h.proc.EXPECT().Refund(gomock.Any(), commands.RefundParams{
			PaymentID:       p.ID,
			PaymentIntentID: "pi_seed",
			Reason:          "requested_by_customer",
			IdempotencyKey:  "cancel-refund:" + p.ID.String(),
		}).Return("re_cancel", nil)

		_, err := h.bookings().CancelReservation(ctx, bk.ID(), h.renterID)
		require.NoError(t, err)

		_, err = h.deliver(t, webhook.Event{
			ID:             "evt_refund",
			Type:           webhook.ChargeRefunded,
			PaymentID:      p.ID,
			AmountRefunded: 50000,
		})
		require.NoError(t, err)

		assert.Equal(t, payment.StatusRefunded, h.store.Payment(p.ID).Status)
		assert.Equal(t, booking.StatusCancelled, h.store.Booking(bk.ID()).Status())
	})

	t.Run("セッションがない予約はその場で取り消す", func(t *testing.T) {
		h := newHarness(t)
		h.proc.EXPECT().CreateCheckoutSession(gomock.Any(), gomock.Any()).Return(nil, permanentErr())
		_, err := h.checkout().CreateCheckoutSession(ctx, h.checkoutRequest("key-1"))
		require.Error(t, err)
		bookings := h.store.Bookings()
		require.Len(t, bookings, 1)
		bookingID := bookings[0].ID()

		result, err := h.bookings().CancelReservation(ctx, bookingID, h.renterID)

		require.NoError(t, err)
		assert.False(t, result.AwaitingProcessor)
		assert.Equal(t, booking.StatusCancelled, h.store.Booking(bookingID).Status())
		assert.Equal(t, payment.StatusFailed, h.store.PaymentByBooking(bookingID).Status)
	})

	t.Run("借り手以外は取り消せない", func(t *testing.T) {
		h := newHarness(t)
		bk, _ := h.seedPaid(t, seedOpts{deposit: 30000})

		_, err := h.bookings().CancelReservation(ctx, bk.ID(), h.hostID)

		assert.True(t, errs.IsAny(err, errs.ErrForbidden))
	})

	t.Run("開始後の予約は取り消せない", func(t *testing.T) {
		h := newHarness(t)
		bk, _ := h.seedPaid(t, seedOpts{captured: true, deposit: 30000})
		h.clock.Set(tripStart())

		_, err := h.bookings().CancelReservation(ctx, bk.ID(), h.renterID)

		assert.True(t, errs.IsAny(err, errs.ErrStateConflict))
		assert.Nil(t, h.store.Booking(bk.ID()).CancelRequestedAt())
	})

	t.Run("紛争中の支払いは取り消せない", func(t *testing.T) {
		h := newHarness(t)
		bk, p := h.seedPaid(t, seedOpts{captured: true, deposit: 30000})
		_, err := h.deliver(t, webhook.Event{ID: "evt_dp", Type: webhook.ChargeDisputeCreated, PaymentID: p.ID})
		require.NoError(t, err)

		_, err = h.bookings().CancelReservation(ctx, bk.ID(), h.renterID)

		assert.True(t, errs.IsAny(err, errs.ErrStateConflict))
	})

	t.Run("決済サービスの失敗は一時エラーとして返す", func(t *testing.T) {
		h := newHarness(t)
		bk, _ := h.seedPaid(t, seedOpts{deposit: 30000})
		h.proc.EXPECT().CancelPayment(gomock.Any(), "pi_seed", gomock.Any()).Return(transientErr()).Times(2)

		_, err := h.bookings().CancelReservation(ctx, bk.ID(), h.renterID)

		assert.True(t, errs.IsAny(err, errs.ErrProviderTransient))
		assert.NotNil(t, h.store.Booking(bk.ID()).CancelRequestedAt())
	})

	t.Run("存在しない予約は見つからない", func(t *testing.T) {
		h := newHarness(t)

		_, err := h.bookings().CancelReservation(ctx, uuid.New(), h.renterID)

		assert.True(t, errs.IsAny(err, errs.ErrBookingNotFound))
	})
}

func TestMarkCompleted(t *testing.T) {
	ctx := context.Background()

	t.Run("終了後の予約を完了にする", func(t *testing.T) {
		h := newHarness(t)
		bk, _ := h.seedPaid(t, seedOpts{captured: true, deposit: 30000})
		h.clock.Set(tripEnd())

		got, err := h.bookings().MarkCompleted(ctx, bk.ID(), h.hostID, false)

		require.NoError(t, err)
		assert.Equal(t, booking.StatusCompleted, got.Status())
		assert.Equal(t, booking.StatusCompleted, h.store.Booking(bk.ID()).Status())
	})

	t.Run("終了前は完了にできない", func(t *testing.T) {
		h := newHarness(t)
		bk, _ := h.seedPaid(t, seedOpts{captured: true, deposit: 30000})
		h.clock.Set(tripEnd().Add(-time.Minute))

		_, err := h.bookings().MarkCompleted(ctx, bk.ID(), h.renterID, false)

		assert.True(t, errs.IsAny(err, errs.ErrStateConflict))
	})

	t.Run("当事者以外は完了にできないが管理者は可能", func(t *testing.T) {
		h := newHarness(t)
		bk, _ := h.seedPaid(t, seedOpts{captured: true, deposit: 30000})
		h.clock.Set(builder.BaseTime.Add(200 * time.Hour))
		outsider := uuid.New()

		_, err := h.bookings().MarkCompleted(ctx, bk.ID(), outsider, false)
		assert.True(t, errs.IsAny(err, errs.ErrForbidden))

		got, err := h.bookings().MarkCompleted(ctx, bk.ID(), outsider, true)
		require.NoError(t, err)
		assert.Equal(t, booking.StatusCompleted, got.Status())
	})
}
