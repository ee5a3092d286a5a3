package cmd

import (
	"context"
	"fmt"

	"iiif-presentation/core/config"
	"iiif-presentation/core/database"
	"iiif-presentation/core/logger"
	"iiif-presentation/core/storage"
	"iiif-presentation/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var fixFlag bool

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Perform integrity checks on the bucket and the database",
	Long:  `Checks the mirror bucket layout, the database schema and the consistency between manifests and their mirrored documents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return cmd.Help()
		}
		return runIntegrityChecks(cmd.Context(), true, true, true)
	},
}

// structureCmd represents the integrity structure command
var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Check and fix the bucket layout",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, false, false)
	},
}

// schemaCmd represents the integrity schema command
var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Check the database schema against the models",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, true, false)
	},
}

// mirrorCmd represents the integrity mirror command
var mirrorCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Check manifests against mirrored documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, false, true)
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(structureCmd, schemaCmd, mirrorCmd)

	structureCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create the missing bucket and prefixes")
	mirrorCmd.Flags().BoolVar(&fixFlag, "fix", false, "Remove documents without a manifest")
}

func runIntegrityChecks(ctx context.Context, runStructure, runSchema, runMirror bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logg.Sync()

	store, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}

	// The structure check works without a database.
	var db *gorm.DB
	if conn, err := database.Connect(cfg.Database); err != nil {
		logg.Warn("Optional database connection failed", zap.Error(err))
	} else {
		db = conn
	}

	svc := integrity.NewService(store, cfg.Storage, db, logg)

	if runStructure {
		logg.Info("Checking bucket layout...", zap.String("bucket", cfg.Storage.Bucket))
		report, err := svc.CheckStructure(ctx)
		if err != nil {
			return fmt.Errorf("structure check failed: %w", err)
		}

		if report.Intact() {
			logg.Info("Bucket layout is intact.")
		} else {
			logg.Warn("Bucket layout incomplete",
				zap.Bool("bucket_exists", report.BucketExists),
				zap.Strings("missing", report.Missing))
			if fixFlag {
				if err := svc.FixStructure(ctx, report); err != nil {
					return fmt.Errorf("failed to fix structure: %w", err)
				}
				logg.Info("Bucket layout fixed successfully.")
			} else {
				logg.Info("Run with --fix to create the missing bucket and prefixes.")
			}
		}
	}

	if runSchema {
		logg.Info("Checking database schema...")
		report, err := svc.CheckSchema()
		if err != nil {
			logg.Error("Schema check failed", zap.Error(err))
		} else if report.Matched {
			logg.Info("Database schema matches the models.", zap.String("driver", report.Driver))
		} else {
			for _, table := range report.Tables {
				if !table.Exists {
					logg.Warn("Missing table", zap.String("table", table.Table))
				} else if len(table.MissingColumns) > 0 {
					logg.Warn("Missing columns", zap.String("table", table.Table), zap.Strings("columns", table.MissingColumns))
				}
			}
			for _, e := range report.Errors {
				logg.Error("Inspection error", zap.String("error", e))
			}
		}
	}

	if runMirror {
		logg.Info("Checking mirrored documents...")
		report, err := svc.CheckMirror(ctx)
		if err != nil {
			logg.Error("Mirror check failed", zap.Error(err))
			return nil
		}

		logg.Info("Mirror check completed",
			zap.Int("manifests", report.Manifests),
			zap.Int("objects", report.Objects),
			zap.Int("missing", len(report.Missing)),
			zap.Int("orphaned", len(report.Orphaned)))
		for _, m := range report.Missing {
			logg.Warn("Manifest without document", zap.Int("customer_id", m.CustomerID), zap.String("manifest_id", m.ManifestID))
		}

		if len(report.Orphaned) > 0 {
			if fixFlag {
				if err := svc.FixMirror(ctx, report); err != nil {
					return fmt.Errorf("failed to remove orphaned documents: %w", err)
				}
			} else {
				logg.Warn("Orphaned documents found", zap.Strings("keys", report.Orphaned))
				logg.Info("Run mirror with --fix to remove them.")
			}
		}
	}

	return nil
}
