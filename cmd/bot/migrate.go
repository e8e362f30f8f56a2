package main

import (
	"fmt"
	"log"

	"quran-irc-bot/internal/config"
	"quran-irc-bot/internal/model"
	"quran-irc-bot/pkg/database"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the usage statistics tables",
	Long: `Runs AutoMigrate for user_stats, channel_stats and query_history.
The Qur'an text tables (surahs, arabic and one table per translation)
are imported separately and are never modified.`,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		return fmt.Errorf("DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	models := model.StatsModels()
	log.Printf("Running AutoMigrate for %d tables...", len(models))
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Println("Migration completed")
	return nil
}
