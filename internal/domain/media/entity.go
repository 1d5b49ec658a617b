package media

import (
	"time"
)

// Asset represents media_library rows.
type Asset struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	WorkspaceID string    `gorm:"type:varchar(128);not null;index" json:"workspace_id"`
	URL         string    `gorm:"type:text" json:"url"`
	ObjectKey   string    `gorm:"type:text" json:"object_key,omitempty"`
	Filename    string    `gorm:"type:text" json:"filename,omitempty"`
	AltText     string    `gorm:"type:text" json:"alt_text,omitempty"`
	FileType    string    `gorm:"type:varchar(128)" json:"file_type,omitempty"`
	FileSize    int64     `json:"file_size,omitempty"`
	Width       int       `json:"width,omitempty"`
	Height      int       `json:"height,omitempty"`
	Tags        []string  `gorm:"serializer:json" json:"tags"`
	Folder      *string   `gorm:"type:varchar(255);index" json:"folder,omitempty"`
	CreatedBy   *string   `gorm:"type:varchar(128)" json:"created_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Asset) TableName() string {
	return "media_library"
}

// ListFilter scopes media listing.
type ListFilter struct {
	WorkspaceID string
	Folder      string
	Tags        []string
}
