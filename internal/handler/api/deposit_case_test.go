//go:build unit

package api_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"rental-ledger/internal/domain/depositcase"
	"rental-ledger/internal/handler/api"
	resdto "rental-ledger/internal/handler/dto/response"
	"rental-ledger/internal/pkg/errs"
	"rental-ledger/internal/pkg/jwt"
	"rental-ledger/internal/usecase/commands"
	"rental-ledger/tests/common/builder"
	"rental-ledger/tests/common/httptest"
	"rental-ledger/tests/common/testutil"
	commandsmock "rental-ledger/tests/mock/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type DepositCaseHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockDepositCaseCommands
	hostID       uuid.UUID
	paymentID    uuid.UUID
}

func (s *DepositCaseHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()
	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockDepositCaseCommands(s.mockCtrl)
	s.hostID = uuid.New()
	s.paymentID = uuid.New()
	handler := api.NewDepositCaseHandler(s.mockCommands)

	s.router.POST("/deposit-cases", fakeAuth(s.hostID, jwt.RoleMember), handler.File)
	admin := fakeAuth(uuid.New(), jwt.RoleAdmin)
	s.router.POST("/admin/deposit-cases/:id/review", admin, handler.Review)
	s.router.POST("/admin/deposit-cases/:id/resolve", admin, handler.Resolve)
}

func (s *DepositCaseHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestDepositCaseHandlerSuite(t *testing.T) {
	suite.Run(t, new(DepositCaseHandlerTestSuite))
}

func (s *DepositCaseHandlerTestSuite) newCase() *depositcase.DepositCase {
	dc, err := depositcase.New(depositcase.NewParams{
		PaymentID:       s.paymentID,
		BookingID:       uuid.New(),
		HostID:          s.hostID,
		RenterID:        uuid.New(),
		RequestedAmount: 12000,
		Reason:          "scratched bumper",
	}, builder.BaseTime)
	s.Require().NoError(err)
	return dc
}

func (s *DepositCaseHandlerTestSuite) fileBody(muts ...func(map[string]any)) map[string]any {
	return testutil.Body(s.T(), map[string]any{
		"payment_id":       s.paymentID.String(),
		"requested_amount": 12000,
		"reason":           "scratched bumper",
	}, muts...)
}

// ================================================================================
// TestFile
// ================================================================================

func (s *DepositCaseHandlerTestSuite) TestFile() {
	s.Run("success: new case returns 201", func() {
		dc := s.newCase()
		s.mockCommands.EXPECT().FileDepositCase(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req commands.FileDepositCaseRequest) (*commands.DepositCaseResult, error) {
				s.Equal(s.hostID, req.HostID)
				s.Equal(s.paymentID, req.PaymentID)
				s.Equal(int64(12000), req.RequestedAmount)
				return &commands.DepositCaseResult{Case: dc}, nil
			})

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/deposit-cases", s.fileBody(), "token")

		var resp resdto.DepositCaseResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &resp)
		s.Equal(dc.ID().String(), resp.ID)
		s.Equal("open", resp.Status)
	})

	s.Run("success: existing open case returns 200", func() {
		s.mockCommands.EXPECT().FileDepositCase(gomock.Any(), gomock.Any()).
			Return(&commands.DepositCaseResult{Case: s.newCase(), Existing: true}, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/deposit-cases", s.fileBody(), "token")

		s.Equal(http.StatusOK, rec.Code)
	})

	validation := []struct {
		name string
		body map[string]any
	}{
		{name: "missing field: reason", body: s.fileBody(testutil.Without("reason"))},
		{name: "missing field: requested_amount", body: s.fileBody(testutil.Without("requested_amount"))},
		{name: "negative amount", body: s.fileBody(testutil.Set("requested_amount", -5))},
		{name: "invalid payment_id", body: s.fileBody(testutil.Set("payment_id", "nope"))},
	}
	for _, tc := range validation {
		s.Run("validation: "+tc.name, func() {
			rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/deposit-cases", tc.body, "token")
			httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request")
		})
	}

	errorCases := []struct {
		name string
		err  error
		code int
	}{
		{name: "not the host", err: errs.ErrForbidden, code: http.StatusForbidden},
		{name: "claim window closed", err: errs.ErrStateConflict, code: http.StatusConflict},
		{name: "amount above deposit", err: errs.ErrInvalidAmount, code: http.StatusBadRequest},
		{name: "unknown payment", err: errs.ErrPaymentNotFound, code: http.StatusNotFound},
	}
	for _, tc := range errorCases {
		s.Run("error: "+tc.name, func() {
			s.mockCommands.EXPECT().FileDepositCase(gomock.Any(), gomock.Any()).Return(nil, tc.err)

			rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/deposit-cases", s.fileBody(), "token")

			s.Equal(tc.code, rec.Code)
		})
	}
}

// ================================================================================
// TestReview / TestResolve
// ================================================================================

func (s *DepositCaseHandlerTestSuite) TestReview() {
	dc := s.newCase()

	s.Run("success: case moves to review", func() {
		_, err := dc.StartReview(builder.BaseTime.Add(time.Hour))
		s.Require().NoError(err)
		s.mockCommands.EXPECT().ReviewDepositCase(gomock.Any(), dc.ID()).Return(dc, nil)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/admin/deposit-cases/"+dc.ID().String()+"/review", nil, "token")

		var resp resdto.DepositCaseResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &resp)
		s.Equal("under_review", resp.Status)
	})

	s.Run("error: unknown case", func() {
		s.mockCommands.EXPECT().ReviewDepositCase(gomock.Any(), dc.ID()).Return(nil, errs.ErrDepositCaseNotFound)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/admin/deposit-cases/"+dc.ID().String()+"/review", nil, "token")

		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "Deposit case not found")
	})
}

func (s *DepositCaseHandlerTestSuite) TestResolve() {
	dc := s.newCase()
	path := "/admin/deposit-cases/" + dc.ID().String() + "/resolve"

	s.Run("success: partial approval", func() {
		s.mockCommands.EXPECT().ResolveDepositCase(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req commands.ResolveDepositCaseRequest) (*depositcase.DepositCase, error) {
				s.Equal(dc.ID(), req.CaseID)
				s.Equal(depositcase.StatusPartiallyApproved, req.Decision)
				s.Equal(int64(8000), req.ResolutionAmount)
				s.Equal("photos confirm", req.Note)
				return dc, nil
			})

		body := map[string]any{"decision": "partially_approved", "resolution_amount": 8000, "note": "  photos confirm "}
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, path, body, "token")

		s.Equal(http.StatusOK, rec.Code)
	})

	validation := []struct {
		name string
		body map[string]any
	}{
		{name: "unknown decision", body: map[string]any{"decision": "resolved", "resolution_amount": 0}},
		{name: "missing decision", body: map[string]any{"resolution_amount": 100}},
		{name: "negative amount", body: map[string]any{"decision": "approved", "resolution_amount": -1}},
	}
	for _, tc := range validation {
		s.Run("validation: "+tc.name, func() {
			rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, path, tc.body, "token")
			httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request")
		})
	}

	s.Run("error: already decided", func() {
		s.mockCommands.EXPECT().ResolveDepositCase(gomock.Any(), gomock.Any()).Return(nil, errs.ErrStateConflict)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, path, map[string]any{"decision": "rejected"}, "token")

		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "current state")
	})
}
