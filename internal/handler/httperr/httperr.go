package httperr

import (
	"errors"
	"net/http"

	"rental-ledger/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		err = errors.New(msg)
	}

	resp := Response{Status: status}
	resp.Error.Message = msg
	resp.Detail = detail

	_ = c.Error(&gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}

type mapping struct {
	targets []error
	status  int
	message string
}

// Checked in order. Clients only see the coarse message.
var mappings = []mapping{
	{[]error{errs.ErrAuthenticity}, http.StatusBadRequest, "Invalid signature"},
	{[]error{errs.ErrIdempotencyKeyRequired}, http.StatusBadRequest, "Idempotency-Key header required"},
	{[]error{errs.ErrInvalidDateRange}, http.StatusBadRequest, "Invalid date range"},
	{[]error{errs.ErrInvalidAmount}, http.StatusBadRequest, "Invalid amount"},
	{[]error{errs.ErrDomainValidation}, http.StatusBadRequest, "Invalid request"},
	{[]error{errs.ErrForbidden}, http.StatusForbidden, "Forbidden"},
	{[]error{errs.ErrBookingNotFound}, http.StatusNotFound, "Booking not found"},
	{[]error{errs.ErrPaymentNotFound}, http.StatusNotFound, "Payment not found"},
	{[]error{errs.ErrCarNotFound}, http.StatusNotFound, "Car not found"},
	{[]error{errs.ErrDepositCaseNotFound}, http.StatusNotFound, "Deposit case not found"},
	{[]error{errs.ErrDateRangeConflict}, http.StatusConflict, "Car is not available for these dates"},
	{[]error{errs.ErrIdempotencyConflict}, http.StatusConflict, "Idempotency key was used with a different request"},
	{[]error{errs.ErrOutOfOrder}, http.StatusConflict, "Event received out of order"},
	{[]error{errs.ErrStateConflict, errs.ErrConcurrentUpdate}, http.StatusConflict, "Operation not allowed in current state"},
	{[]error{errs.ErrRenterUnverified}, http.StatusUnprocessableEntity, "Renter verification required"},
	{[]error{errs.ErrInvariantViolation}, http.StatusUnprocessableEntity, "Event rejected"},
	{[]error{errs.ErrDownstreamSessionCreationFailed, errs.ErrProviderTransient, errs.ErrProviderPermanent}, http.StatusBadGateway, "Payment provider unavailable"},
}

// StatusOf maps a use case error to an HTTP status and public message.
func StatusOf(err error) (int, string) {
	for _, m := range mappings {
		if errs.IsAny(err, m.targets...) {
			return m.status, m.message
		}
	}
	return http.StatusInternalServerError, "Internal server error"
}

func Respond(c *gin.Context, err error) {
	status, msg := StatusOf(err)
	AbortWithError(c, status, err, msg, nil)
}
