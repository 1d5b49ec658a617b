package handler

import (
	"net/http"
	"strings"

	"content-orchestrator/internal/domain/mapping"
	"content-orchestrator/internal/services"
	"content-orchestrator/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type MappingHandler struct {
	service *services.MappingService
}

func NewMappingHandler(service *services.MappingService) *MappingHandler {
	return &MappingHandler{service: service}
}

func (h *MappingHandler) List(c *gin.Context) {
	items, legacy, err := h.service.List(c.Request.Context(), c.Query("workspace"))
	if err != nil {
		writeError(c, err)
		return
	}
	if items == nil {
		items = []mapping.AccountMapping{}
	}
	c.JSON(http.StatusOK, httpdto.ListMappingsResponse{Mappings: items, LegacyFormat: legacy})
}

func (h *MappingHandler) Upsert(c *gin.Context) {
	var req httpdto.UpsertMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	m, err := h.service.Upsert(c.Request.Context(), req.WorkspaceID, req.ChannelSlug, req.AccountIDs)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(m))
}

func (h *MappingHandler) BulkUpsert(c *gin.Context) {
	var req httpdto.BulkMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	items, err := h.service.UpsertMany(c.Request.Context(), req.WorkspaceID, req.Mappings)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(items))
}

func (h *MappingHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"ok": true}))
}

func (h *MappingHandler) Resolve(c *gin.Context) {
	var req httpdto.ResolveRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}
	channels := splitList(req.Channels)
	accounts, err := h.service.Resolve(c.Request.Context(), req.Workspace, channels)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ResolveResponse{Channels: channels, Accounts: accounts}))
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
