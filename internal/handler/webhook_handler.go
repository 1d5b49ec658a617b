package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"content-orchestrator/internal/services"
	"content-orchestrator/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

const maxWebhookBody = 5 << 20

type WebhookHandler struct {
	service *services.WebhookService
}

func NewWebhookHandler(service *services.WebhookService) *WebhookHandler {
	return &WebhookHandler{service: service}
}

// ContentStudio records the raw callback. Only a failure to store it returns an error status,
// so the provider redelivers exactly when the event was lost.
func (h *WebhookHandler) ContentStudio(c *gin.Context) {
	raw, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		msg := fmt.Sprintf("webhook body exceeds %d bytes", tooLarge.Limit)
		c.JSON(http.StatusRequestEntityTooLarge, httpdto.NewErrorResponse(msg, httpdto.CodePayloadTooLarge))
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("unable to read body", httpdto.CodeInvalidRequest))
		return
	}
	receipt, err := h.service.Receive(c.Request.Context(), raw)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse("failed to record webhook", httpdto.CodeInternal))
		return
	}
	c.JSON(http.StatusOK, httpdto.NewWebhookAck(receipt))
}
