package repository

import (
	"context"
	"time"

	"content-orchestrator/internal/domain/media"
	orchestrator_errors "content-orchestrator/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresMediaRepository struct {
	db *gorm.DB
}

func NewMediaRepository(db *gorm.DB) MediaRepository {
	return &PostgresMediaRepository{db: db}
}

func (r *PostgresMediaRepository) Create(ctx context.Context, a *media.Asset) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now
	return translateError(r.db.WithContext(ctx).Create(a).Error)
}

func (r *PostgresMediaRepository) GetByID(ctx context.Context, id string) (media.Asset, error) {
	var a media.Asset
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return media.Asset{}, translateError(err)
	}
	return a, nil
}

// List filters by workspace and folder in SQL. Tags are stored as a JSON list, so the
// every-tag-present filter runs over the fetched rows.
func (r *PostgresMediaRepository) List(ctx context.Context, filter media.ListFilter) ([]media.Asset, error) {
	var assets []media.Asset
	q := r.db.WithContext(ctx).Where("workspace_id = ?", filter.WorkspaceID)
	if filter.Folder != "" {
		q = q.Where("folder = ?", filter.Folder)
	}
	if err := q.Order("created_at DESC").Find(&assets).Error; err != nil {
		return nil, err
	}
	if len(filter.Tags) == 0 {
		return assets, nil
	}

	out := assets[:0]
	for _, a := range assets {
		if hasAllTags(a.Tags, filter.Tags) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *PostgresMediaRepository) Folders(ctx context.Context, workspaceID string) ([]string, error) {
	var folders []string
	err := r.db.WithContext(ctx).
		Model(&media.Asset{}).
		Where("workspace_id = ? AND folder IS NOT NULL AND folder <> ''", workspaceID).
		Distinct().
		Order("folder ASC").
		Pluck("folder", &folders).Error
	if err != nil {
		return nil, err
	}
	return folders, nil
}

func (r *PostgresMediaRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&media.Asset{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return orchestrator_errors.ErrNotFound
	}
	return nil
}

func hasAllTags(have, want []string) bool {
	set := make(map[string]struct{}, len(have))
	for _, t := range have {
		set[t] = struct{}{}
	}
	for _, t := range want {
		if _, ok := set[t]; !ok {
			return false
		}
	}
	return true
}
