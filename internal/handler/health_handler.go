package handler

import (
	"net/http"
	"time"

	"content-orchestrator/pkg/database"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db      *gorm.DB
	name    string
	version string
}

func NewHealthHandler(db *gorm.DB, name, version string) *HealthHandler {
	return &HealthHandler{db: db, name: name, version: version}
}

// Root describes the service and its endpoints.
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    h.name,
		"version": h.version,
		"endpoints": []string{
			"GET /health",
			"POST /posts/bulk",
			"GET /posts",
			"GET /posts/:id",
			"POST /webhooks/contentstudio",
			"GET /workspaces",
			"GET /accounts",
			"GET /mappings",
			"POST /mappings",
			"POST /mappings/bulk",
			"DELETE /mappings/:id",
			"GET /mappings/resolve",
			"POST /media/presign",
			"POST /media",
			"GET /media",
			"GET /media/folders",
			"GET /media/:id",
			"DELETE /media/:id",
		},
	})
}

func (h *HealthHandler) Health(c *gin.Context) {
	if err := database.HealthCheck(c.Request.Context(), h.db); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "degraded",
			"database": err.Error(),
			"time":     time.Now().UTC(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"database": "ok",
		"time":     time.Now().UTC(),
	})
}
