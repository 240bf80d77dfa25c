package api

import (
	"net/http"

	resdto "rental-ledger/internal/handler/dto/response"
	"rental-ledger/internal/handler/httperr"
	"rental-ledger/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type AlertHandler struct {
	q queries.AlertQueries
}

func NewAlertHandler(q queries.AlertQueries) *AlertHandler {
	return &AlertHandler{q: q}
}

// @Summary List open ledger alerts
// @Description Unresolved alerts raised by webhooks and sweeps, newest first
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max items (default 20)"
// @Param after query string false "Cursor for keyset pagination"
// @Success 200 {object} resdto.AlertListResponse
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Router /admin/alerts [get]
func (h *AlertHandler) ListOpen(c *gin.Context) {
	cursor, limit := pageParams(c)
	items, next, err := h.q.ListOpen(c.Request.Context(), cursor, limit)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromAlertList(items, next))
}
