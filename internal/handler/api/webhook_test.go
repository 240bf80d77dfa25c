//go:build unit

package api_test

import (
	"bytes"
	"errors"
	"net/http"
	"testing"

	"rental-ledger/internal/handler/api"
	resdto "rental-ledger/internal/handler/dto/response"
	"rental-ledger/internal/pkg/errs"
	"rental-ledger/internal/usecase/commands"
	"rental-ledger/tests/common/httptest"
	commandsmock "rental-ledger/tests/mock/commands"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type WebhookHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockWebhookCommands
}

func (s *WebhookHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockWebhookCommands(s.mockCtrl)
	s.router.POST("/webhooks/stripe", api.NewWebhookHandler(s.mockCommands).Stripe)
}

func (s *WebhookHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestWebhookHandlerSuite(t *testing.T) {
	suite.Run(t, new(WebhookHandlerTestSuite))
}

func (s *WebhookHandlerTestSuite) deliver(payload []byte) *http.Response {
	rec := httptest.PerformRawRequest(s.T(), s.router, http.MethodPost, "/webhooks/stripe", payload,
		map[string]string{"Stripe-Signature": "t=1,v1=abc"})
	return rec.Result()
}

func (s *WebhookHandlerTestSuite) TestStripe() {
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed"}`)

	s.Run("success: raw bytes and signature reach the command", func() {
		s.mockCommands.EXPECT().HandleEvent(gomock.Any(), payload, "t=1,v1=abc").
			Return(&commands.Ack{EventID: "evt_1", Outcome: commands.OutcomeApplied}, nil)

		rec := httptest.PerformRawRequest(s.T(), s.router, http.MethodPost, "/webhooks/stripe", payload,
			map[string]string{"Stripe-Signature": "t=1,v1=abc"})

		var resp resdto.WebhookAckResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &resp)
		s.True(resp.Received)
		s.Equal("evt_1", resp.EventID)
		s.Equal("applied", resp.Outcome)
	})

	s.Run("success: duplicate delivery is acknowledged", func() {
		s.mockCommands.EXPECT().HandleEvent(gomock.Any(), payload, gomock.Any()).
			Return(&commands.Ack{EventID: "evt_1", Outcome: commands.OutcomeDuplicate}, nil)

		res := s.deliver(payload)
		defer res.Body.Close()

		s.Equal(http.StatusOK, res.StatusCode)
	})

	errorCases := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{name: "bad signature", err: errs.Mark(errors.New("mismatch"), errs.ErrAuthenticity), code: http.StatusBadRequest, message: "Invalid signature"},
		{name: "out of order", err: errs.Mark(errors.New("captured first"), errs.ErrOutOfOrder), code: http.StatusConflict, message: "out of order"},
		{name: "invariant violated", err: errs.Mark(errors.New("amount"), errs.ErrInvariantViolation), code: http.StatusUnprocessableEntity, message: "Event rejected"},
		{name: "storage failure", err: errors.New("db down"), code: http.StatusInternalServerError, message: "Internal server error"},
	}
	for _, tc := range errorCases {
		s.Run("error: "+tc.name, func() {
			s.mockCommands.EXPECT().HandleEvent(gomock.Any(), payload, gomock.Any()).Return(nil, tc.err)

			rec := httptest.PerformRawRequest(s.T(), s.router, http.MethodPost, "/webhooks/stripe", payload,
				map[string]string{"Stripe-Signature": "t=1,v1=abc"})

			httptest.AssertErrorResponse(s.T(), rec, tc.code, tc.message)
		})
	}

	s.Run("error: payload too large", func() {
		big := bytes.Repeat([]byte("a"), 64<<10+1)

		rec := httptest.PerformRawRequest(s.T(), s.router, http.MethodPost, "/webhooks/stripe", big, nil)

		httptest.AssertErrorResponse(s.T(), rec, http.StatusRequestEntityTooLarge, "too large")
	})
}
