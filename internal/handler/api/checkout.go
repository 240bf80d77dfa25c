package api

import (
	"net/http"
	"strings"

	reqdto "rental-ledger/internal/handler/dto/request"
	resdto "rental-ledger/internal/handler/dto/response"
	"rental-ledger/internal/handler/httperr"
	"rental-ledger/internal/handler/middleware"
	"rental-ledger/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

const maxIdempotencyKeyLength = 255

type CheckoutHandler struct {
	cmds commands.CheckoutCommands
}

func NewCheckoutHandler(cmds commands.CheckoutCommands) *CheckoutHandler {
	return &CheckoutHandler{cmds: cmds}
}

// @Summary Create checkout session
// @Description Create a pending booking and a hosted checkout session. Replays return the original session.
// @Tags checkout
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string true "Idempotency key for duplicate prevention"
// @Param request body reqdto.CreateCheckoutRequest true "Checkout request"
// @Success 201 {object} resdto.CheckoutResponse
// @Success 200 {object} resdto.CheckoutResponse "Replayed"
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /checkout [post]
func (h *CheckoutHandler) Create(c *gin.Context) {
	renterID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return
	}
	key := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	if len(key) > maxIdempotencyKeyLength {
		httperr.AbortWithError(c, http.StatusBadRequest, nil, "Idempotency-Key is too long", nil)
		return
	}
	var req reqdto.CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}

	result, err := h.cmds.CreateCheckoutSession(c.Request.Context(), commands.CheckoutRequest{
		CarID:          req.CarID,
		RenterID:       renterID,
		Start:          req.StartAt,
		End:            req.EndAt,
		IdempotencyKey: key,
	})
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	c.JSON(status, resdto.FromCheckoutResult(result))
}

// @Summary Reconcile checkout redirect
// @Description Pull the session state after the renter returns from checkout
// @Tags checkout
// @Produce json
// @Security BearerAuth
// @Param session_id query string true "Checkout session ID"
// @Success 200 {object} resdto.RedirectResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /checkout/redirect [get]
func (h *CheckoutHandler) Redirect(c *gin.Context) {
	renterID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return
	}
	sessionID := c.Query("session_id")
	if sessionID == "" {
		httperr.AbortWithError(c, http.StatusBadRequest, nil, "session_id is required", nil)
		return
	}

	result, err := h.cmds.ReconcileCheckoutSessionFromRedirect(c.Request.Context(), sessionID, renterID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromRedirectResult(result))
}
