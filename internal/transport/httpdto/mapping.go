package httpdto

import (
	"content-orchestrator/internal/domain/mapping"
	"content-orchestrator/internal/mapper"
)

// UpsertMappingRequest is used for POST /mappings
type UpsertMappingRequest struct {
	WorkspaceID string            `json:"workspace_id" binding:"required"`
	ChannelSlug string            `json:"channel_slug" binding:"required,slug"`
	AccountIDs  mapper.AccountIDs `json:"account_ids" binding:"required,min=1"`
}

// BulkMappingRequest is used for POST /mappings/bulk
type BulkMappingRequest struct {
	WorkspaceID string                       `json:"workspace_id" binding:"required"`
	Mappings    map[string]mapper.AccountIDs `json:"mappings" binding:"required,min=1,dive,keys,slug,endkeys"`
}

type ListMappingsResponse struct {
	Mappings     []mapping.AccountMapping     `json:"mappings"`
	LegacyFormat map[string]mapper.AccountIDs `json:"legacy_format"`
}

// ResolveRequest holds query parameters for GET /mappings/resolve
type ResolveRequest struct {
	Workspace string `form:"workspace" binding:"required"`
	Channels  string `form:"channels" binding:"required"`
}

type ResolveResponse struct {
	Channels []string `json:"channels"`
	Accounts []string `json:"accounts"`
}
