package handler

import (
	"net/http"

	"content-orchestrator/internal/domain/post"
	"content-orchestrator/internal/services"
	"content-orchestrator/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	service *services.PostService
}

func NewPostHandler(service *services.PostService) *PostHandler {
	return &PostHandler{service: service}
}

// BulkSchedule handles POST /posts/bulk. Per-post failures are reported inside a 200 response.
func (h *PostHandler) BulkSchedule(c *gin.Context) {
	var req httpdto.BulkScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	results, err := h.service.BulkSchedule(c.Request.Context(), req.ToService())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewBulkScheduleResponse(results))
}

func (h *PostHandler) List(c *gin.Context) {
	var req httpdto.ListPostsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err)
		return
	}
	filter := req.Filter()
	posts, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	if posts == nil {
		posts = []post.Post{}
	}
	c.JSON(http.StatusOK, httpdto.ListPostsResponse{
		Posts:  posts,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	})
}

// GetByID accepts the local id or the orchestrator id.
func (h *PostHandler) GetByID(c *gin.Context) {
	p, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
