package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"iiif-presentation/core/assetservice"
	"iiif-presentation/core/config"
	"iiif-presentation/core/database"
	"iiif-presentation/core/identity"
	"iiif-presentation/core/loader"
	"iiif-presentation/core/logger"
	"iiif-presentation/core/middleware/auth"
	"iiif-presentation/core/middleware/rayid"
	"iiif-presentation/core/storage"

	"iiif-presentation/feature/integrity"
	"iiif-presentation/feature/manifest"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// @title Presentation API
// @version 1.0
// @description API for writing presentation manifests and reconciling their canvases.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the presentation server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect to Database (required: manifests are the source of truth)
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Database connection failed", zap.Error(err))
		}
		logg.Info("Connected to database", zap.String("driver", db.Dialector.Name()))

		// 4. External collaborators
		store, err := storage.NewClient(cfg.Storage)
		if err != nil {
			logg.Fatal("Failed to create storage client", zap.Error(err))
		}
		assets, err := assetservice.NewClient(cfg.Assets)
		if err != nil {
			logg.Fatal("Failed to create asset service client", zap.Error(err))
		}
		ids := identity.NewDBGenerator(db, cfg.Identity,
			identity.Target{Table: "manifests", Column: "id"},
			identity.Target{Table: "canvas_paintings", Column: "canvas_id"},
		)

		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		// 5. Initialize Feature Loader
		mgr := loader.NewManager()
		mgr.Register(integrity.NewFeature(store, cfg.Storage, db, logg))
		mgr.Register(manifest.NewFeature(db, assets, store, cfg.Storage, ids, cfg.Server.PublicBase(), logg))

		// RayID must be first to trace everything.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port), zap.String("base_url", cfg.Server.PublicBase()))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
