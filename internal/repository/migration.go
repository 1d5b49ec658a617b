package repository

import (
	"fmt"

	"content-orchestrator/internal/domain/mapping"
	"content-orchestrator/internal/domain/media"
	"content-orchestrator/internal/domain/post"
	"content-orchestrator/internal/domain/webhook"

	"gorm.io/gorm"
)

// Models lists every table owned by the orchestrator, in creation order.
func Models() []interface{} {
	return []interface{}{
		&post.Post{},
		&webhook.Event{},
		&mapping.AccountMapping{},
		&media.Asset{},
	}
}

// TableNames returns the table names of Models.
func TableNames() []string {
	return []string{
		post.Post{}.TableName(),
		webhook.Event{}.TableName(),
		mapping.AccountMapping{}.TableName(),
		media.Asset{}.TableName(),
	}
}

// InitSchema creates or updates the orchestrator tables and their indexes.
func InitSchema(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to auto-migrate: %w", err)
	}
	return nil
}

// DropSchema drops every orchestrator table.
func DropSchema(db *gorm.DB) error {
	models := Models()
	for i := len(models) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(models[i]); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
	}
	return nil
}
