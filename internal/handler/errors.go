package handler

import (
	"errors"
	"net/http"

	"content-orchestrator/internal/transport/httpdto"
	orchestrator_errors "content-orchestrator/pkg/errors"

	"github.com/gin-gonic/gin"
)

// writeError maps service errors onto status codes and the error envelope.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, orchestrator_errors.ErrInvalidInput), errors.Is(err, orchestrator_errors.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse(err.Error(), httpdto.CodeInvalidRequest))
	case errors.Is(err, orchestrator_errors.ErrNotFound):
		c.JSON(http.StatusNotFound, httpdto.NewErrorResponse("not found", httpdto.CodeNotFound))
	case errors.Is(err, orchestrator_errors.ErrAlreadyExists), errors.Is(err, orchestrator_errors.ErrConflict):
		c.JSON(http.StatusConflict, httpdto.NewErrorResponse(err.Error(), httpdto.CodeConflict))
	case errors.Is(err, orchestrator_errors.ErrNotConfigured):
		c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(err.Error(), httpdto.CodeNotConfigured))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorResponse(err.Error(), httpdto.CodeInternal))
	}
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request: "+err.Error(), httpdto.CodeInvalidRequest))
}
