package repository

import (
	"context"
	"time"

	"content-orchestrator/internal/domain/post"
	orchestrator_errors "content-orchestrator/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Columns refreshed when a batch resubmits a known idempotency key. Identity columns, the provider id
// and the retry bookkeeping survive the upsert.
var postUpsertColumns = []string{
	"title",
	"body",
	"scheduled_at",
	"timezone",
	"requested_channels",
	"mapped_accounts",
	"media",
	"first_comment",
	"tags",
	"link",
	"utm",
	"status",
	"updated_at",
}

type PostgresPostRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &PostgresPostRepository{db: db}
}

func (r *PostgresPostRepository) FindByIdempotencyKey(ctx context.Context, workspaceID, key string) (post.Post, error) {
	var p post.Post
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND idempotency_key = ?", workspaceID, key).
		First(&p).Error
	if err != nil {
		return post.Post{}, translateError(err)
	}
	return p, nil
}

func (r *PostgresPostRepository) Upsert(ctx context.Context, p *post.Post) (bool, error) {
	now := time.Now().UTC()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.OrchestratorID == "" {
		p.OrchestratorID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = post.StatusPending
	}
	p.CreatedAt = now
	p.UpdatedAt = now

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "workspace_id"}, {Name: "idempotency_key"}},
			DoUpdates: clause.AssignmentColumns(postUpsertColumns),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Expr{
					SQL:  "posts.status NOT IN (?, ?)",
					Vars: []interface{}{string(post.StatusScheduled), string(post.StatusPublished)},
				},
			}},
		}).
		Create(p)
	if res.Error != nil {
		return false, translateError(res.Error)
	}

	stored, err := r.FindByIdempotencyKey(ctx, p.WorkspaceID, p.IdempotencyKey)
	if err != nil {
		return false, err
	}
	*p = stored
	return res.RowsAffected > 0, nil
}

func (r *PostgresPostRepository) UpdateStatus(ctx context.Context, id string, upd post.StatusUpdate) error {
	if !upd.Status.Valid() {
		return orchestrator_errors.ErrInvalidTransition
	}
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":     upd.Status,
		"updated_at": now,
	}
	if upd.ErrorMessage != nil {
		updates["error_message"] = *upd.ErrorMessage
	} else if upd.ClearError {
		updates["error_message"] = nil
	}
	if upd.ProviderPostID != nil {
		updates["contentstudio_post_id"] = *upd.ProviderPostID
	}
	if upd.IncrementRetry {
		updates["retry_count"] = gorm.Expr("retry_count + 1")
		updates["last_retry_at"] = now
	}

	res := r.db.WithContext(ctx).
		Model(&post.Post{}).
		Where("id = ?", id).
		Updates(updates)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return orchestrator_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresPostRepository) FindByProviderPostID(ctx context.Context, providerPostID string) (post.Post, error) {
	var p post.Post
	err := r.db.WithContext(ctx).
		Where("contentstudio_post_id = ?", providerPostID).
		Order("created_at DESC").
		First(&p).Error
	if err != nil {
		return post.Post{}, translateError(err)
	}
	return p, nil
}

// GetByID accepts either the local id or the external-facing orchestrator id.
func (r *PostgresPostRepository) GetByID(ctx context.Context, id string) (post.Post, error) {
	var p post.Post
	err := r.db.WithContext(ctx).
		Where("id = ? OR orchestrator_id = ?", id, id).
		First(&p).Error
	if err != nil {
		return post.Post{}, translateError(err)
	}
	return p, nil
}

func (r *PostgresPostRepository) List(ctx context.Context, filter post.ListFilter) ([]post.Post, int64, error) {
	limit, offset := clampPage(filter.Limit, filter.Offset, 50, 500)

	q := r.db.WithContext(ctx).Model(&post.Post{}).Where("workspace_id = ?", filter.WorkspaceID)
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []post.Post
	err := q.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}
