//go:build unit

package processor

import (
	"context"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rental-ledger/internal/domain/webhook"
	"rental-ledger/internal/pkg/config"
	"rental-ledger/internal/pkg/errs"
	"rental-ledger/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripewebhook "github.com/stripe/stripe-go/v74/webhook"
)

const testSecret = "whsec_test"

func newTestProcessor(t *testing.T, baseURL string) *StripeProcessor {
	t.Helper()
	cfg := config.NewTestConfig().Stripe
	cfg.WebhookSecret = testSecret
	cfg.APIBaseURL = baseURL
	return NewStripeProcessor(cfg)
}

func signedHeader(payload []byte, at time.Time) string {
	sig := stripewebhook.ComputeSignature(at, payload, testSecret)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(sig))
}

func TestParseWebhook(t *testing.T) {
	paymentID := uuid.New()
	p := newTestProcessor(t, "")

	t.Run("署名が正しいcheckout完了通知を変換できる", func(t *testing.T) {
		payload := []byte(fmt.Sprintf(`{
			"id": "evt_1",
			"object": "event",
			"type": "checkout.session.completed",
			"created": 1700000000,
			"data": {"object": {
				"id": "cs_1",
				"object": "checkout.session",
				"status": "complete",
				"payment_status": "unpaid",
				"payment_intent": {"id": "pi_1", "object": "payment_intent", "status": "requires_capture", "latest_charge": "ch_1"},
				"metadata": {"payment_id": %q}
			}}
		}`, paymentID))

		e, err := p.ParseWebhook(payload, signedHeader(payload, time.Now()))

		require.NoError(t, err)
		assert.Equal(t, "evt_1", e.ID)
		assert.Equal(t, webhook.CheckoutSessionCompleted, e.Type)
		assert.Equal(t, paymentID, e.PaymentID)
		assert.Equal(t, "cs_1", e.CheckoutSessionID)
		assert.Equal(t, "pi_1", e.PaymentIntentID)
		assert.Equal(t, "ch_1", e.ChargeID)
		assert.True(t, e.Authorized)
		assert.False(t, e.Captured)
		assert.Equal(t, time.Unix(1700000000, 0).UTC(), e.Created)
	})

	t.Run("返金通知は累計返金額を持つ", func(t *testing.T) {
		payload := []byte(`{
			"id": "evt_2",
			"object": "event",
			"type": "charge.refunded",
			"created": 1700000100,
			"data": {"object": {
				"id": "ch_1",
				"object": "charge",
				"captured": true,
				"amount_refunded": 2500,
				"payment_intent": "pi_1"
			}}
		}`)

		e, err := p.ParseWebhook(payload, signedHeader(payload, time.Now()))

		require.NoError(t, err)
		assert.Equal(t, webhook.ChargeRefunded, e.Type)
		assert.Equal(t, int64(2500), e.AmountRefunded)
		assert.Equal(t, "pi_1", e.PaymentIntentID)
		assert.Equal(t, uuid.Nil, e.PaymentID)
	})

	t.Run("勝訴した紛争クローズ通知", func(t *testing.T) {
		payload := []byte(`{
			"id": "evt_3",
			"object": "event",
			"type": "charge.dispute.closed",
			"data": {"object": {"id": "dp_1", "object": "dispute", "status": "won", "charge": "ch_1", "payment_intent": "pi_1"}}
		}`)

		e, err := p.ParseWebhook(payload, signedHeader(payload, time.Now()))

		require.NoError(t, err)
		assert.Equal(t, webhook.ChargeDisputeClosed, e.Type)
		assert.True(t, e.DisputeWon)
		assert.Equal(t, "ch_1", e.ChargeID)
	})

	t.Run("未知のイベント種別はそのまま返す", func(t *testing.T) {
		payload := []byte(`{"id": "evt_4", "object": "event", "type": "customer.created", "data": {"object": {"id": "cus_1", "object": "customer"}}}`)

		e, err := p.ParseWebhook(payload, signedHeader(payload, time.Now()))

		require.NoError(t, err)
		assert.Equal(t, webhook.EventType("customer.created"), e.Type)
		_, known := webhook.ParseEventType(string(e.Type))
		assert.False(t, known)
	})

	t.Run("署名が一致しない場合は真正性エラー", func(t *testing.T) {
		payload := []byte(`{"id": "evt_5", "object": "event", "type": "charge.captured", "data": {"object": {}}}`)
		header := signedHeader([]byte(`{"tampered": true}`), time.Now())

		_, err := p.ParseWebhook(payload, header)

		require.Error(t, err)
		assert.True(t, errs.IsAny(err, errs.ErrAuthenticity))
	})

	t.Run("許容時間を過ぎた署名は拒否する", func(t *testing.T) {
		payload := []byte(`{"id": "evt_6", "object": "event", "type": "charge.captured", "data": {"object": {}}}`)

		_, err := p.ParseWebhook(payload, signedHeader(payload, time.Now().Add(-time.Hour)))

		require.Error(t, err)
		assert.True(t, errs.IsAny(err, errs.ErrAuthenticity))
	})
}

func TestCapturePayment(t *testing.T) {
	paymentID := uuid.New()

	t.Run("冪等キーと金額を送信し請求IDを返す", func(t *testing.T) {
		var gotKey, gotAmount, gotPath string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotKey = r.Header.Get("Idempotency-Key")
			_ = r.ParseForm()
			gotAmount = r.PostForm.Get("amount_to_capture")
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id": "pi_1", "object": "payment_intent", "status": "succeeded", "latest_charge": {"id": "ch_9", "object": "charge"}}`))
		}))
		defer srv.Close()

		result, err := newTestProcessor(t, srv.URL).CapturePayment(context.Background(), commands.CaptureParams{
			PaymentID:       paymentID,
			PaymentIntentID: "pi_1",
			Amount:          15000,
			IdempotencyKey:  "capture:" + paymentID.String(),
		})

		require.NoError(t, err)
		assert.Equal(t, "/v1/payment_intents/pi_1/capture", gotPath)
		assert.Equal(t, "capture:"+paymentID.String(), gotKey)
		assert.Equal(t, "15000", gotAmount)
		assert.Equal(t, "ch_9", result.ChargeID)
	})

	t.Run("カード拒否は恒久エラー", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusPaymentRequired)
			_, _ = w.Write([]byte(`{"error": {"type": "card_error", "code": "card_declined", "message": "Your card was declined."}}`))
		}))
		defer srv.Close()

		_, err := newTestProcessor(t, srv.URL).CapturePayment(context.Background(), commands.CaptureParams{
			PaymentID: paymentID, PaymentIntentID: "pi_1", Amount: 100, IdempotencyKey: "k",
		})

		require.Error(t, err)
		assert.True(t, errs.IsAny(err, errs.ErrProviderPermanent))
		assert.False(t, errs.IsAny(err, errs.ErrProviderTransient))
	})

	t.Run("サーバーエラーは一時エラー", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error": {"type": "api_error", "message": "boom"}}`))
		}))
		defer srv.Close()

		_, err := newTestProcessor(t, srv.URL).CapturePayment(context.Background(), commands.CaptureParams{
			PaymentID: paymentID, PaymentIntentID: "pi_1", Amount: 100, IdempotencyKey: "k",
		})

		require.Error(t, err)
		assert.True(t, errs.IsAny(err, errs.ErrProviderTransient))
	})
}

func TestRefundReason(t *testing.T) {
	cases := []struct {
		name       string
		reason     string
		wantReason string
		wantMeta   string
	}{
		{name: "規定の理由はreasonに送る", reason: "requested_by_customer", wantReason: "requested_by_customer"},
		{name: "独自の理由はメタデータに送る", reason: "deposit_release", wantMeta: "deposit_release"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var gotReason, gotMeta string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_ = r.ParseForm()
				gotReason = r.PostForm.Get("reason")
				gotMeta = r.PostForm.Get("metadata[reason]")
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"id": "re_1", "object": "refund"}`))
			}))
			defer srv.Close()

			id, err := newTestProcessor(t, srv.URL).Refund(context.Background(), commands.RefundParams{
				PaymentID:       uuid.New(),
				PaymentIntentID: "pi_1",
				Amount:          500,
				Reason:          tc.reason,
				IdempotencyKey:  "refund-key",
			})

			require.NoError(t, err)
			assert.Equal(t, "re_1", id)
			assert.Equal(t, tc.wantReason, gotReason)
			assert.Equal(t, tc.wantMeta, gotMeta)
		})
	}
}
