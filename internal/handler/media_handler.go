package handler

import (
	"net/http"

	"content-orchestrator/internal/domain/media"
	"content-orchestrator/internal/services"
	"content-orchestrator/internal/transport/httpdto"
	orchestrator_errors "content-orchestrator/pkg/errors"

	"github.com/gin-gonic/gin"
)

type MediaHandler struct {
	service *services.MediaService
}

func NewMediaHandler(service *services.MediaService) *MediaHandler {
	return &MediaHandler{service: service}
}

func (h *MediaHandler) Presign(c *gin.Context) {
	var req httpdto.PresignMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	res, err := h.service.CreatePresignedUpload(c.Request.Context(), services.PresignInput{
		WorkspaceID: req.WorkspaceID,
		Filename:    req.Filename,
		ContentType: req.ContentType,
		FileSize:    req.FileSize,
		AltText:     req.AltText,
		Tags:        req.Tags,
		Folder:      req.Folder,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(httpdto.PresignMediaResponse{
		Media:     res.Asset,
		UploadURL: res.UploadURL,
		Headers:   res.Headers,
		ExpiresAt: res.ExpiresAt,
	}))
}

func (h *MediaHandler) Create(c *gin.Context) {
	var req httpdto.CreateMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	asset, err := h.service.Register(c.Request.Context(), media.Asset{
		WorkspaceID: req.WorkspaceID,
		URL:         req.URL,
		Filename:    req.Filename,
		AltText:     req.AltText,
		FileType:    req.FileType,
		FileSize:    req.FileSize,
		Width:       req.Width,
		Height:      req.Height,
		Tags:        req.Tags,
		Folder:      orchestrator_errors.StringPtr(req.Folder),
		CreatedBy:   orchestrator_errors.StringPtr(req.CreatedBy),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(asset))
}

func (h *MediaHandler) List(c *gin.Context) {
	var req httpdto.ListMediaRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}
	items, err := h.service.List(c.Request.Context(), media.ListFilter{
		WorkspaceID: req.Workspace,
		Folder:      req.Folder,
		Tags:        splitList(req.Tags),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	if items == nil {
		items = []media.Asset{}
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(httpdto.ListMediaResponse{Media: items}))
}

func (h *MediaHandler) GetByID(c *gin.Context) {
	asset, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(asset))
}

func (h *MediaHandler) Folders(c *gin.Context) {
	folders, err := h.service.Folders(c.Request.Context(), c.Query("workspace"))
	if err != nil {
		writeError(c, err)
		return
	}
	if folders == nil {
		folders = []string{}
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"folders": folders}))
}

func (h *MediaHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"ok": true}))
}
