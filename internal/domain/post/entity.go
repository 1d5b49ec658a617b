package post

import (
	"time"
)

// Status is the lifecycle state of a submitted post.
type Status string

const (
	StatusPending   Status = "pending"
	StatusScheduled Status = "scheduled"
	StatusPublished Status = "published"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusScheduled, StatusPublished, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Accepted reports whether the provider already holds this post. Such posts are never resubmitted.
func (s Status) Accepted() bool {
	return s == StatusScheduled || s == StatusPublished
}

// MediaItem is an attachment reference forwarded to the provider.
type MediaItem struct {
	URL string `json:"url"`
	Alt string `json:"alt,omitempty"`
}

// Post represents posts. One row per (workspace_id, idempotency_key).
type Post struct {
	ID                string            `gorm:"type:varchar(36);primaryKey" json:"id"`
	OrchestratorID    string            `gorm:"type:varchar(36);not null;uniqueIndex" json:"orchestrator_id"`
	WorkspaceID       string            `gorm:"type:varchar(128);not null;uniqueIndex:ux_posts_workspace_key,priority:1;index:idx_posts_workspace_status,priority:1" json:"workspace_id"`
	IdempotencyKey    string            `gorm:"type:varchar(64);not null;uniqueIndex:ux_posts_workspace_key,priority:2" json:"idempotency_key"`
	ProviderPostID    *string           `gorm:"column:contentstudio_post_id;type:varchar(128);index" json:"contentstudio_post_id,omitempty"`
	Title             string            `gorm:"type:text" json:"title,omitempty"`
	Body              string            `gorm:"type:text;not null" json:"body"`
	ScheduledAt       time.Time         `gorm:"not null" json:"scheduled_at"`
	Timezone          string            `gorm:"type:varchar(64);not null" json:"timezone"`
	RequestedChannels []string          `gorm:"serializer:json;not null" json:"requested_channels"`
	MappedAccounts    []string          `gorm:"serializer:json;not null" json:"mapped_accounts"`
	Media             []MediaItem       `gorm:"serializer:json" json:"media"`
	FirstComment      map[string]string `gorm:"serializer:json" json:"first_comment"`
	Tags              []string          `gorm:"serializer:json" json:"tags"`
	Link              *string           `gorm:"type:text" json:"link,omitempty"`
	UTM               map[string]string `gorm:"serializer:json" json:"utm"`
	Status            Status            `gorm:"type:varchar(16);not null;default:'pending';index:idx_posts_workspace_status,priority:2" json:"status"`
	ErrorMessage      *string           `gorm:"type:text" json:"error_message,omitempty"`
	RetryCount        int               `gorm:"not null;default:0" json:"retry_count"`
	LastRetryAt       *time.Time        `json:"last_retry_at,omitempty"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

func (Post) TableName() string {
	return "posts"
}

// StatusUpdate is a single-row status transition. Nil pointers leave the column untouched.
type StatusUpdate struct {
	Status         Status
	ErrorMessage   *string
	ClearError     bool
	ProviderPostID *string
	IncrementRetry bool
}

// ListFilter scopes read-side listing.
type ListFilter struct {
	WorkspaceID string
	Status      Status
	Limit       int
	Offset      int
}
