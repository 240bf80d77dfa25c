//go:build e2e

package e2e

import (
	"encoding/json"
	"fmt"
	"net/http"
	nethttptest "net/http/httptest"
	"testing"
	"time"

	"rental-ledger/internal/domain/webhook"
	resdto "rental-ledger/internal/handler/dto/response"
	"rental-ledger/internal/pkg/jwt"
	"rental-ledger/internal/usecase/queries"
	"rental-ledger/tests/common/authtest"
	"rental-ledger/tests/common/dbtest"
	"rental-ledger/tests/common/httptest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Listing is a bookable car whose host can receive payouts.
type Listing struct {
	HostID    uuid.UUID
	AccountID string
	CarID     uuid.UUID
}

// Trip starts three days out and lasts two days: rental 20000, deposit 30000.
func TripDates(now time.Time) (time.Time, time.Time) {
	start := now.UTC().Add(72 * time.Hour).Truncate(time.Hour)
	return start, start.Add(48 * time.Hour)
}

func (s *SharedSuite) Token(t *testing.T, userID uuid.UUID, role string) string {
	t.Helper()
	return authtest.NewJWTHelper(s.Config.JWT).GenerateToken(t, userID, role)
}

func (s *SharedSuite) NewListing(t *testing.T) Listing {
	t.Helper()
	account := "acct_" + uuid.NewString()[:8]
	hostID := dbtest.CreatePayoutHost(t, s.DB, account)
	return Listing{HostID: hostID, AccountID: account, CarID: dbtest.CreateTestCar(t, s.DB, hostID, 10000, 30000)}
}

func (s *SharedSuite) Checkout(t *testing.T, renterID, carID uuid.UUID, key string) *nethttptest.ResponseRecorder {
	t.Helper()
	start, end := TripDates(s.Clock.Now())
	body, err := json.Marshal(map[string]any{
		"car_id":   carID.String(),
		"start_at": start.Format(time.RFC3339),
		"end_at":   end.Format(time.RFC3339),
	})
	require.NoError(t, err)
	return httptest.PerformRawRequest(t, s.Router, http.MethodPost, "/api/checkout", body, map[string]string{
		"Authorization":   "Bearer " + s.Token(t, renterID, jwt.RoleMember),
		"Idempotency-Key": key,
	})
}

func (s *SharedSuite) Deliver(t *testing.T, ev webhook.Event, signature string) *nethttptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(ev)
	require.NoError(t, err)
	return httptest.PerformRawRequest(t, s.Router, http.MethodPost, "/api/webhooks/stripe", payload, map[string]string{
		"Stripe-Signature": signature,
	})
}

func CompletedEvent(eventID string, paymentID uuid.UUID, sessionID string) webhook.Event {
	return webhook.Event{
		ID:                eventID,
		Type:              webhook.CheckoutSessionCompleted,
		Created:           time.Now().UTC(),
		PaymentID:         paymentID,
		CheckoutSessionID: sessionID,
		PaymentIntentID:   "pi_" + paymentID.String(),
		ChargeID:          "ch_" + paymentID.String(),
		Authorized:        true,
	}
}

// OpenPaidBooking checks out and delivers the completed-session event, leaving
// the booking confirmed with an uncaptured authorization.
func (s *SharedSuite) OpenPaidBooking(t *testing.T, l Listing, renterID uuid.UUID) resdto.CheckoutResponse {
	t.Helper()
	w := s.Checkout(t, renterID, l.CarID, "key-"+uuid.NewString())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created resdto.CheckoutResponse
	require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &created))

	ev := CompletedEvent("evt_"+uuid.NewString(), uuid.MustParse(created.PaymentID), s.Processor.SessionID(created.PaymentID))
	ack := s.Deliver(t, ev, ValidSignature)
	require.Equal(t, http.StatusOK, ack.Code, ack.Body.String())
	return created
}

func (s *SharedSuite) GetBooking(t *testing.T, bookingID string, userID uuid.UUID) queries.BookingView {
	t.Helper()
	w := httptest.PerformRequest(t, s.Router, http.MethodGet, fmt.Sprintf("/api/bookings/%s", bookingID), nil,
		s.Token(t, userID, jwt.RoleMember))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var view queries.BookingView
	require.NoError(t, httptest.DecodeResponseBody(t, w.Body, &view))
	return view
}
