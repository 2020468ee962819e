package cmd

import (
	"fmt"

	"eventhall-backend/config"
	"eventhall-backend/models"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := config.OpenDatabase(cfg.Database, log)
	if err != nil {
		return err
	}
	defer config.CloseDatabase(db)

	if err := models.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	log.Info("database schema is up to date")
	return nil
}
