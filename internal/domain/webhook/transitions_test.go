//go:build unit

package webhook_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"rental-ledger/internal/domain/booking"
	"rental-ledger/internal/domain/payment"
	"rental-ledger/internal/domain/webhook"
	"rental-ledger/tests/common/builder"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	base    = builder.BaseTime
	ctx     = webhook.Context{Policy: payment.DefaultPolicy(), Now: base.Add(time.Hour)}
	cmpOpts = []cmp.Option{
		cmpopts.IgnoreFields(payment.Payment{}, "LastWebhookEventID", "UpdatedAt"),
	}
)

func checkoutCreated(t *testing.T) *payment.Payment {
	t.Helper()
	p, err := builder.NewPaymentBuilder().Build()
	require.NoError(t, err)
	_, err = p.MarkCheckoutCreated("cs_1", "https://checkout.test/cs_1", base.Add(time.Hour), base)
	require.NoError(t, err)
	return p
}

func authorizationEvents() []webhook.Event {
	return []webhook.Event{
		{ID: "evt_cap", Type: webhook.PaymentIntentAmountCapturable, Created: base.Add(1 * time.Minute), PaymentIntentID: "pi_1", ChargeID: "ch_1"},
		{ID: "evt_sess", Type: webhook.CheckoutSessionCompleted, Created: base.Add(2 * time.Minute), CheckoutSessionID: "cs_1", PaymentIntentID: "pi_1", Authorized: true},
		{ID: "evt_captured", Type: webhook.ChargeCaptured, Created: base.Add(3 * time.Minute), PaymentIntentID: "pi_1", ChargeID: "ch_1"},
		{ID: "evt_succ", Type: webhook.PaymentIntentSucceeded, Created: base.Add(4 * time.Minute), PaymentIntentID: "pi_1", ChargeID: "ch_1"},
	}
}

// applyAll delivers events in order, pushing out-of-order ones to the back of
// the queue the way the processor redelivers them.
func applyAll(t *testing.T, p *payment.Payment, events []webhook.Event) {
	t.Helper()
	queue := append([]webhook.Event(nil), events...)
	for attempts := 0; len(queue) > 0; attempts++ {
		require.Less(t, attempts, 100, "events never converged")
		e := queue[0]
		queue = queue[1:]
		_, err := webhook.Apply(p, e, ctx)
		if errors.Is(err, payment.ErrOutOfOrder) {
			queue = append(queue, e)
			continue
		}
		require.NoError(t, err, e.Type)
		require.NoError(t, p.Validate())
	}
}

func permutations(events []webhook.Event) [][]webhook.Event {
	if len(events) <= 1 {
		return [][]webhook.Event{events}
	}
	var out [][]webhook.Event
	for i := range events {
		rest := make([]webhook.Event, 0, len(events)-1)
		rest = append(rest, events[:i]...)
		rest = append(rest, events[i+1:]...)
		for _, perm := range permutations(rest) {
			out = append(out, append([]webhook.Event{events[i]}, perm...))
		}
	}
	return out
}

func TestApply_PermutationConvergence(t *testing.T) {
	t.Run("オーソリとキャプチャ", func(t *testing.T) {
		events := authorizationEvents()
		want := checkoutCreated(t)
		applyAll(t, want, events)

		assert.Equal(t, payment.StatusPaid, want.Status)
		assert.Equal(t, payment.CaptureCaptured, want.CaptureStatus)
		assert.Equal(t, base.Add(time.Minute), *want.PaidAt)

		for i, perm := range permutations(events) {
			t.Run(fmt.Sprintf("順序%d", i), func(t *testing.T) {
				got := checkoutCreated(t)
				got.ID = want.ID
				got.BookingID = want.BookingID
				got.CarID = want.CarID
				got.RenterID = want.RenterID
				got.HostID = want.HostID
				applyAll(t, got, perm)
				if diff := cmp.Diff(want, got, cmpOpts...); diff != "" {
					t.Errorf("Payment mismatch (-want +got):\n%s", diff)
				}
			})
		}
	})

	t.Run("返金と異議申し立て", func(t *testing.T) {
		events := []webhook.Event{
			{ID: "evt_ref", Type: webhook.ChargeRefunded, AmountRefunded: 5000},
			{ID: "evt_dc", Type: webhook.ChargeDisputeCreated},
			{ID: "evt_dx", Type: webhook.ChargeDisputeClosed, DisputeWon: true},
		}
		var want *payment.Payment
		for i, perm := range permutations(events) {
			t.Run(fmt.Sprintf("順序%d", i), func(t *testing.T) {
				got := checkoutCreated(t)
				applyAll(t, got, authorizationEvents())
				applyAll(t, got, perm)

				assert.Equal(t, payment.StatusPartiallyRefunded, got.Status)
				assert.Equal(t, payment.PayoutBlocked, got.PayoutStatus)
				assert.Equal(t, int64(5000), got.RefundedAmount)
				if want == nil {
					want = got
					return
				}
				got.ID, got.BookingID, got.CarID, got.RenterID, got.HostID = want.ID, want.BookingID, want.CarID, want.RenterID, want.HostID
				if diff := cmp.Diff(want, got, cmpOpts...); diff != "" {
					t.Errorf("Payment mismatch (-want +got):\n%s", diff)
				}
			})
		}
	})

	t.Run("失敗後の成功は成功が優先", func(t *testing.T) {
		events := []webhook.Event{
			{ID: "evt_fail", Type: webhook.PaymentIntentPaymentFailed, FailureReason: "card_declined"},
			{ID: "evt_sess", Type: webhook.CheckoutSessionCompleted, Created: base, CheckoutSessionID: "cs_1", PaymentIntentID: "pi_1", Authorized: true},
		}
		for _, perm := range permutations(events) {
			p := checkoutCreated(t)
			applyAll(t, p, perm)
			assert.Equal(t, payment.StatusPaid, p.Status)
			assert.Empty(t, p.LastError)
		}
	})
}

func TestApply_Idempotence(t *testing.T) {
	p := checkoutCreated(t)
	events := append(authorizationEvents(), webhook.Event{ID: "evt_ref", Type: webhook.ChargeRefunded, AmountRefunded: 50000})
	applyAll(t, p, events)
	snapshot := *p

	for _, e := range events {
		changed, err := webhook.Apply(p, e, ctx)
		require.NoError(t, err)
		assert.False(t, changed, e.Type)
	}
	if diff := cmp.Diff(&snapshot, p); diff != "" {
		t.Errorf("duplicate delivery changed payment (-want +got):\n%s", diff)
	}
}

func TestApply_Errors(t *testing.T) {
	t.Run("オーソリ前のキャプチャは順序違反", func(t *testing.T) {
		p := checkoutCreated(t)
		_, err := webhook.Apply(p, webhook.Event{ID: "evt_1", Type: webhook.ChargeCaptured}, ctx)
		assert.ErrorIs(t, err, payment.ErrOutOfOrder)
		assert.Empty(t, p.LastWebhookEventID)
	})

	t.Run("キャプチャ済みのキャンセルは不変条件違反", func(t *testing.T) {
		p := checkoutCreated(t)
		applyAll(t, p, authorizationEvents())
		_, err := webhook.Apply(p, webhook.Event{ID: "evt_cancel", Type: webhook.PaymentIntentCanceled}, ctx)
		assert.ErrorIs(t, err, payment.ErrInvariantViolation)
	})

	t.Run("フォールバック後の旧オーソリのキャンセルは無視", func(t *testing.T) {
		p := checkoutCreated(t)
		applyAll(t, p, authorizationEvents()[:2])
		require.NoError(t, p.MarkCaptureFailed("authorization expired", 3, base))
		require.NoError(t, p.SwitchToFallback("pi_fallback", "ch_fallback", base))

		changed, err := webhook.Apply(p, webhook.Event{ID: "evt_old_cancel", Type: webhook.PaymentIntentCanceled, PaymentIntentID: "pi_1"}, ctx)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, payment.StatusPaid, p.Status)
	})

	t.Run("未知のイベント", func(t *testing.T) {
		_, ok := webhook.ParseEventType("customer.created")
		assert.False(t, ok)
		p := checkoutCreated(t)
		_, err := webhook.Apply(p, webhook.Event{ID: "evt_x", Type: "customer.created"}, ctx)
		assert.ErrorIs(t, err, webhook.ErrUnhandledEventType)
	})

	t.Run("未完了のセッション完了は保留", func(t *testing.T) {
		p := checkoutCreated(t)
		changed, err := webhook.Apply(p, webhook.Event{ID: "evt_s", Type: webhook.CheckoutSessionCompleted, Authorized: false}, ctx)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, payment.StatusCheckoutCreated, p.Status)
	})
}

func TestApply_DuplicateFullRefundKeepsBookingCancelled(t *testing.T) {
	b, p, err := builder.NewBookingBuilder().BuildWithPayment(10000)
	require.NoError(t, err)
	_, err = p.MarkCheckoutCreated("cs_1", "https://checkout.test/cs_1", base.Add(time.Hour), base)
	require.NoError(t, err)
	applyAll(t, p, authorizationEvents())
	_, err = b.SyncFromPayment(p, ctx.Now)
	require.NoError(t, err)
	require.Equal(t, booking.StatusConfirmed, b.Status())

	refund := webhook.Event{ID: "evt_refund", Type: webhook.ChargeRefunded, AmountRefunded: p.TotalCharge()}
	changed, err := webhook.Apply(p, refund, ctx)
	require.NoError(t, err)
	require.True(t, changed)
	_, err = b.SyncFromPayment(p, ctx.Now)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusCancelled, b.Status())
	assert.Equal(t, payment.StatusRefunded, p.Status)

	duplicate := refund
	duplicate.ID = "evt_refund_redelivered"
	changed, err = webhook.Apply(p, duplicate, ctx)
	require.NoError(t, err)
	assert.False(t, changed)

	changed, err = b.SyncFromPayment(p, ctx.Now)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, booking.StatusCancelled, b.Status())
}
