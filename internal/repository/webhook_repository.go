package repository

import (
	"context"
	"time"

	"content-orchestrator/internal/domain/webhook"
	orchestrator_errors "content-orchestrator/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresWebhookEventRepository struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &PostgresWebhookEventRepository{db: db}
}

func (r *PostgresWebhookEventRepository) Create(ctx context.Context, e *webhook.Event) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.ReceivedAt.IsZero() {
		e.ReceivedAt = time.Now().UTC()
	}
	if e.Source == "" {
		e.Source = webhook.SourceContentStudio
	}
	return translateError(r.db.WithContext(ctx).Create(e).Error)
}

func (r *PostgresWebhookEventRepository) GetByID(ctx context.Context, id string) (webhook.Event, error) {
	var e webhook.Event
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		return webhook.Event{}, translateError(err)
	}
	return e, nil
}

func (r *PostgresWebhookEventRepository) MarkProcessed(ctx context.Context, id string, outcome webhook.Outcome) error {
	res := r.db.WithContext(ctx).
		Model(&webhook.Event{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"processed":    true,
			"processed_at": time.Now().UTC(),
			"post_id":      outcome.LinkedPostID,
			"error":        outcome.Error,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return orchestrator_errors.ErrNotFound
	}
	return nil
}

// ListUnlinked returns events that named a provider post but matched nothing, oldest first.
func (r *PostgresWebhookEventRepository) ListUnlinked(ctx context.Context, since time.Time, limit int) ([]webhook.Event, error) {
	var events []webhook.Event
	q := r.db.WithContext(ctx).
		Where("post_id IS NULL AND contentstudio_post_id IS NOT NULL AND received_at >= ?", since)
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Order("received_at ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
