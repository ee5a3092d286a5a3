package cmd

import (
	"fmt"

	"iiif-presentation/core/config"
	"iiif-presentation/core/database"
	"iiif-presentation/core/logger"
	"iiif-presentation/feature/manifest/models"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		logg, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		defer logg.Sync()

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("database connection required: %w", err)
		}

		tables := models.All()
		if err := database.Migrate(db, tables...); err != nil {
			return err
		}
		logg.Info("Database migrated", zap.Int("tables", len(tables)), zap.String("driver", db.Dialector.Name()))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)
}
