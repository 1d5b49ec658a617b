package mapping

import (
	"time"
)

// AccountMapping represents account_mappings: a workspace channel slug expanded to provider accounts.
type AccountMapping struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	WorkspaceID string    `gorm:"type:varchar(128);not null;uniqueIndex:ux_account_mappings_workspace_slug,priority:1" json:"workspace_id"`
	ChannelSlug string    `gorm:"type:varchar(128);not null;uniqueIndex:ux_account_mappings_workspace_slug,priority:2" json:"channel_slug"`
	AccountIDs  []string  `gorm:"serializer:json;not null" json:"account_ids"`
	Active      bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (AccountMapping) TableName() string {
	return "account_mappings"
}
