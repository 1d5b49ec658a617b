package repository

import (
	"context"
	"time"

	"content-orchestrator/internal/domain/mapping"
	"content-orchestrator/internal/domain/media"
	"content-orchestrator/internal/domain/post"
	"content-orchestrator/internal/domain/webhook"
)

type PostRepository interface {
	FindByIdempotencyKey(ctx context.Context, workspaceID, key string) (post.Post, error)
	// Upsert inserts p or updates the row sharing its (workspace, idempotency key). Rows the provider
	// already accepted are left untouched and reported with applied=false. p is reloaded from the store.
	Upsert(ctx context.Context, p *post.Post) (applied bool, err error)
	UpdateStatus(ctx context.Context, id string, upd post.StatusUpdate) error
	FindByProviderPostID(ctx context.Context, providerPostID string) (post.Post, error)
	GetByID(ctx context.Context, id string) (post.Post, error)
	List(ctx context.Context, filter post.ListFilter) ([]post.Post, int64, error)
}

type WebhookEventRepository interface {
	Create(ctx context.Context, e *webhook.Event) error
	GetByID(ctx context.Context, id string) (webhook.Event, error)
	MarkProcessed(ctx context.Context, id string, outcome webhook.Outcome) error
	ListUnlinked(ctx context.Context, since time.Time, limit int) ([]webhook.Event, error)
}

type AccountMappingRepository interface {
	ListActive(ctx context.Context, workspaceID string) ([]mapping.AccountMapping, error)
	Upsert(ctx context.Context, m *mapping.AccountMapping) error
	UpsertMany(ctx context.Context, items []mapping.AccountMapping) ([]mapping.AccountMapping, error)
	Delete(ctx context.Context, id string) error
}

type MediaRepository interface {
	Create(ctx context.Context, a *media.Asset) error
	GetByID(ctx context.Context, id string) (media.Asset, error)
	List(ctx context.Context, filter media.ListFilter) ([]media.Asset, error)
	Folders(ctx context.Context, workspaceID string) ([]string, error)
	Delete(ctx context.Context, id string) error
}
