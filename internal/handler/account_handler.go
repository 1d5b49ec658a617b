package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"content-orchestrator/internal/contentstudio"
	"content-orchestrator/internal/services"
	"content-orchestrator/internal/transport/httpdto"
	orchestrator_errors "content-orchestrator/pkg/errors"

	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	service *services.AccountService
}

func NewAccountHandler(service *services.AccountService) *AccountHandler {
	return &AccountHandler{service: service}
}

type listEnvelope struct {
	Data []json.RawMessage `json:"data"`
}

func (h *AccountHandler) ListWorkspaces(c *gin.Context) {
	items, err := h.service.ListWorkspaces(c.Request.Context())
	if err != nil {
		upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, listEnvelope{Data: items})
}

func (h *AccountHandler) ListAccounts(c *gin.Context) {
	items, err := h.service.ListAccounts(c.Request.Context(), c.Query("workspace"))
	if err != nil {
		if errors.Is(err, orchestrator_errors.ErrInvalidInput) {
			writeError(c, err)
			return
		}
		upstreamError(c, err)
		return
	}
	c.JSON(http.StatusOK, listEnvelope{Data: items})
}

// upstreamError reports provider failures as 502 with the provider's detail.
func upstreamError(c *gin.Context, err error) {
	detail := err.Error()
	var apiErr *contentstudio.APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		detail = apiErr.Detail
	}
	c.JSON(http.StatusBadGateway, httpdto.NewErrorResponse(detail, httpdto.CodeUpstreamError))
}
