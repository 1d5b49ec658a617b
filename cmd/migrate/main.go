package main

import (
	"fmt"
	"log"
	"os"

	"content-orchestrator/config"
	"content-orchestrator/internal/repository"
	"content-orchestrator/pkg/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "migrate",
		Short: "Content orchestrator database CLI",
		Long: `Manage the content orchestrator schema.

Examples:
  go run ./cmd/migrate up
  go run ./cmd/migrate status
  go run ./cmd/migrate drop --yes`,
		SilenceUsage: true,
	}
	root.AddCommand(newUpCommand(), newStatusCommand(), newDropCommand())
	return root
}

func newUpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Create or update all tables and indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *gorm.DB) error {
				log.Println("🚀 Running migrations UP...")
				if err := repository.InitSchema(db); err != nil {
					return err
				}
				log.Println("✅ Migrations completed successfully!")
				return nil
			})
		},
	}
}

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show database connection and table status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(func(db *gorm.DB) error {
				log.Println("🔍 Checking database status...")
				if err := database.HealthCheck(cmd.Context(), db); err != nil {
					return fmt.Errorf("database connection failed: %w", err)
				}
				log.Println("✅ Database connection: OK")

				for _, table := range repository.TableNames() {
					if !database.TableExists(db, table) {
						log.Printf("❌ Table %-20s does not exist", table)
						continue
					}
					count, err := database.GetTableCount(db, table)
					if err != nil {
						log.Printf("⚠️  Error counting table %s: %v", table, err)
						continue
					}
					log.Printf("✅ Table %-20s exists (%d rows)", table, count)
				}
				return nil
			})
		},
	}
}

func newDropCommand() *cobra.Command {
	var confirmed bool
	cmd := &cobra.Command{
		Use:   "drop",
		Short: "Drop every orchestrator table (DANGEROUS)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return fmt.Errorf("refusing to drop tables without --yes")
			}
			return withDB(func(db *gorm.DB) error {
				log.Println("🗑️  Dropping all tables...")
				if err := repository.DropSchema(db); err != nil {
					return err
				}
				log.Println("✅ Tables dropped")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&confirmed, "yes", false, "confirm dropping all tables")
	return cmd
}

func withDB(fn func(db *gorm.DB) error) error {
	cfg := config.LoadConfig()
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Printf("⚠️  Error closing database: %v", err)
		}
	}()
	return fn(db)
}
