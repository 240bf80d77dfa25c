package api

import (
	"io"
	"net/http"

	resdto "rental-ledger/internal/handler/dto/response"
	"rental-ledger/internal/handler/httperr"
	"rental-ledger/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

const maxWebhookBodyBytes = 64 << 10

type WebhookHandler struct {
	cmds commands.WebhookCommands
}

func NewWebhookHandler(cmds commands.WebhookCommands) *WebhookHandler {
	return &WebhookHandler{cmds: cmds}
}

// @Summary Processor webhook
// @Description Receives signed processor events. Duplicates and unknown types are acknowledged.
// @Tags webhooks
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Processor signature"
// @Success 200 {object} resdto.WebhookAckResponse
// @Failure 400 {object} httperr.Response
// @Failure 409 {object} httperr.Response "Out of order; redelivered later"
// @Failure 422 {object} httperr.Response
// @Router /webhooks/stripe [post]
func (h *WebhookHandler) Stripe(c *gin.Context) {
	// The signature covers the exact bytes, so the body is never re-encoded.
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBodyBytes+1))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Unreadable body", nil)
		return
	}
	if len(payload) > maxWebhookBodyBytes {
		httperr.AbortWithError(c, http.StatusRequestEntityTooLarge, nil, "Payload too large", nil)
		return
	}

	ack, err := h.cmds.HandleEvent(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		httperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, resdto.FromAck(ack))
}
