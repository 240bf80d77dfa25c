package api

import (
	"net/http"

	reqdto "rental-ledger/internal/handler/dto/request"
	resdto "rental-ledger/internal/handler/dto/response"
	"rental-ledger/internal/handler/httperr"
	"rental-ledger/internal/handler/middleware"
	"rental-ledger/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type DepositCaseHandler struct {
	cmds commands.DepositCaseCommands
}

func NewDepositCaseHandler(cmds commands.DepositCaseCommands) *DepositCaseHandler {
	return &DepositCaseHandler{cmds: cmds}
}

// @Summary File deposit case
// @Description Host claims part of the security deposit before the claim window closes. An open case is returned as is.
// @Tags deposit-cases
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.FileDepositCaseRequest true "Deposit case"
// @Success 201 {object} resdto.DepositCaseResponse
// @Success 200 {object} resdto.DepositCaseResponse "Existing open case"
// @Failure 400 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /deposit-cases [post]
func (h *DepositCaseHandler) File(c *gin.Context) {
	hostID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, nil, "Unauthorized", nil)
		return
	}
	var req reqdto.FileDepositCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request", nil)
		return
	}
	result, err := h.cmds.FileDepositCase(c.Request.Context(), req.ToCommand(hostID))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	status := http.StatusCreated
	if result.Existing {
		status = http.StatusOK
	}
	c.JSON(status, resdto.FromDepositCase(result.Case))
}

// @Summary Start deposit case review
// @Tags deposit-cases
// @Produce json
// @Security BearerAuth
// @Param id path string true "Deposit case ID"
// @Success 200 {object} resdto.DepositCaseResponse
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /admin/deposit-cases/{id}/review [post]
func (h *DepositCaseHandler) Review(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}
	dc, err := h.cmds.ReviewDepositCase(c.Request.Context(), id)
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromDepositCase(dc))
}

// @Summary Resolve deposit case
// @Description Record the decision; the scheduler moves the deposit funds afterwards
// @Tags deposit-cases
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Deposit case ID"
// @Param request body reqdto.ResolveDepositCaseRequest true "Decision"
// @Success 200 {object} resdto.DepositCaseResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /admin/deposit-cases/{id}/resolve [post]
func (h *DepositCaseHandler) Resolve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid id", nil)
		return
	}
	var req reqdto.ResolveDepositCaseRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, bindErr, "Invalid request", nil)
		return
	}
	dc, err := h.cmds.ResolveDepositCase(c.Request.Context(), req.ToCommand(id))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromDepositCase(dc))
}
