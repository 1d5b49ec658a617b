package repository

import (
	"context"
	"time"

	"content-orchestrator/internal/domain/mapping"
	orchestrator_errors "content-orchestrator/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostgresAccountMappingRepository struct {
	db *gorm.DB
}

func NewAccountMappingRepository(db *gorm.DB) AccountMappingRepository {
	return &PostgresAccountMappingRepository{db: db}
}

func (r *PostgresAccountMappingRepository) ListActive(ctx context.Context, workspaceID string) ([]mapping.AccountMapping, error) {
	var items []mapping.AccountMapping
	err := r.db.WithContext(ctx).
		Where("workspace_id = ? AND active = ?", workspaceID, true).
		Order("channel_slug ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PostgresAccountMappingRepository) Upsert(ctx context.Context, m *mapping.AccountMapping) error {
	return upsertMapping(ctx, r.db, m)
}

func (r *PostgresAccountMappingRepository) UpsertMany(ctx context.Context, items []mapping.AccountMapping) ([]mapping.AccountMapping, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range items {
			if err := upsertMapping(ctx, tx, &items[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *PostgresAccountMappingRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&mapping.AccountMapping{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return orchestrator_errors.ErrNotFound
	}
	return nil
}

// upsertMapping writes m keyed by (workspace_id, channel_slug) and reloads the stored row into m.
func upsertMapping(ctx context.Context, db *gorm.DB, m *mapping.AccountMapping) error {
	now := time.Now().UTC()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.Active = true
	m.CreatedAt = now
	m.UpdatedAt = now

	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "workspace_id"}, {Name: "channel_slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"account_ids", "active", "updated_at"}),
		}).
		Create(m).Error
	if err != nil {
		return translateError(err)
	}

	var stored mapping.AccountMapping
	err = db.WithContext(ctx).
		Where("workspace_id = ? AND channel_slug = ?", m.WorkspaceID, m.ChannelSlug).
		First(&stored).Error
	if err != nil {
		return translateError(err)
	}
	*m = stored
	return nil
}
