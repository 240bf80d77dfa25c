package api

import (
	"net/http"

	resdto "rental-ledger/internal/handler/dto/response"
	"rental-ledger/internal/handler/httperr"
	"rental-ledger/internal/handler/middleware"
	"rental-ledger/internal/usecase/commands"
	"rental-ledger/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BookingHandler struct {
	cmds commands.BookingCommands
	q    queries.BookingQueries
}

func NewBookingHandler(cmds commands.BookingCommands, q queries.BookingQueries) *BookingHandler {
	return &BookingHandler{cmds: cmds, q: q}
}

// @Summary Get booking
// @Description Booking with its payment summary and display state. Visible to the renter, the host and admins.
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} queries.BookingView
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /bookings/{id} [get]
func (h *BookingHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return
	}
	view, err := h.q.GetByID(c.Request.Context(), actorID, middleware.IsAdmin(c), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary List my bookings
// @Description Bookings of the current user as renter (default) or host, newest first
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param side query string false "renter or host"
// @Param limit query int false "Max items (default 20)"
// @Param after query string false "Cursor for keyset pagination"
// @Success 200 {object} resdto.BookingListResponse
// @Failure 400 {object} httperr.Response
// @Router /bookings [get]
func (h *BookingHandler) List(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return
	}
	side := queries.SideRenter
	if v := c.Query("side"); v != "" {
		side = queries.BookingSide(v)
		if side != queries.SideRenter && side != queries.SideHost {
			httperr.AbortWithError(c, http.StatusBadRequest, nil, "side must be renter or host", nil)
			return
		}
	}
	cursor, limit := pageParams(c)

	items, next, err := h.q.ListByUser(c.Request.Context(), userID, side, cursor, limit)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBookingList(items, next))
}

// @Summary Cancel booking
// @Description Renter cancellation before the rental starts. Paid bookings are finalized when the processor confirms the refund or void.
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingStatusResponse "Cancelled"
// @Success 202 {object} resdto.BookingStatusResponse "Awaiting processor"
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}
	renterID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return
	}
	result, err := h.cmds.CancelReservation(c.Request.Context(), id, renterID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	status := http.StatusOK
	if result.AwaitingProcessor {
		status = http.StatusAccepted
	}
	c.JSON(status, resdto.FromCancelResult(result))
}

// @Summary Complete booking
// @Description Mark a confirmed booking completed once its end date has passed
// @Tags bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} resdto.BookingStatusResponse
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /bookings/{id}/complete [post]
func (h *BookingHandler) Complete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return
	}
	b, err := h.cmds.MarkCompleted(c.Request.Context(), id, actorID, middleware.IsAdmin(c))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromBooking(b))
}
