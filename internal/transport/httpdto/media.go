package httpdto

import (
	"time"

	"content-orchestrator/internal/domain/media"
)

// PresignMediaRequest is used for POST /media/presign
type PresignMediaRequest struct {
	WorkspaceID string   `json:"workspace_id" binding:"required"`
	Filename    string   `json:"filename" binding:"required"`
	ContentType string   `json:"content_type" binding:"required"`
	FileSize    int64    `json:"file_size" binding:"required,gt=0"`
	AltText     string   `json:"alt_text"`
	Tags        []string `json:"tags"`
	Folder      string   `json:"folder"`
	CreatedBy   string   `json:"created_by"`
}

type PresignMediaResponse struct {
	Media     media.Asset       `json:"media"`
	UploadURL string            `json:"upload_url"`
	Headers   map[string]string `json:"headers"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// CreateMediaRequest is used for POST /media
type CreateMediaRequest struct {
	WorkspaceID string   `json:"workspace_id" binding:"required"`
	URL         string   `json:"url" binding:"required,url"`
	Filename    string   `json:"filename"`
	AltText     string   `json:"alt_text"`
	FileType    string   `json:"file_type"`
	FileSize    int64    `json:"file_size" binding:"omitempty,min=0"`
	Width       int      `json:"width" binding:"omitempty,min=0"`
	Height      int      `json:"height" binding:"omitempty,min=0"`
	Tags        []string `json:"tags"`
	Folder      string   `json:"folder"`
	CreatedBy   string   `json:"created_by"`
}

// ListMediaRequest holds query parameters for GET /media
type ListMediaRequest struct {
	Workspace string `form:"workspace" binding:"required"`
	Folder    string `form:"folder"`
	Tags      string `form:"tags"`
}

type ListMediaResponse struct {
	Media []media.Asset `json:"media"`
}
