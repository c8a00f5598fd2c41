package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ward-manager/core/config"
	"ward-manager/core/database"
	"ward-manager/core/loader"
	"ward-manager/core/logger"
	"ward-manager/core/middleware/auth"
	"ward-manager/core/middleware/rayid"
	"ward-manager/core/storage"

	"ward-manager/feature/occupancy"
	"ward-manager/feature/occupancy/feed"
	"ward-manager/feature/occupancy/models"
	occupancyStore "ward-manager/feature/occupancy/store"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "ward-manager/docs/swagger"
)

// @title Ward Manager API
// @version 1.0
// @description API for hospital room and bed occupancy.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the ward manager server",
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

		// 3. Connect to Database (Required)
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to connect to database", zap.Error(err))
		}
		if err := models.Migrate(db); err != nil {
			logg.Fatal("Failed to migrate schema", zap.Error(err))
		}
		logg.Info("Connected to database", zap.String("name", cfg.Database.Name))

		// 4. Initialize Storage (Optional snapshot archive)
		var archive storage.Client
		if cfg.Storage.Enabled {
			client, err := storage.NewClient(cfg.Storage)
			if err != nil {
				logg.Fatal("Failed to create storage client", zap.Error(err))
			}
			if err := storage.EnsureBucket(cmd.Context(), client, cfg.Storage.Bucket); err != nil {
				logg.Fatal("Failed to prepare snapshot bucket", zap.Error(err))
			}
			archive = client
			logg.Info("Snapshot archive enabled", zap.String("bucket", cfg.Storage.Bucket))
		}

		// 5. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 6. Initialize Feature Loader
		mgr := loader.NewManager()

		feedClient := feed.NewClient(cfg.Feed, logg)
		feature := occupancy.NewFeature(occupancyStore.NewGormStore(db), feedClient, archive, cfg.Storage.Bucket, logg)
		mgr.Register(feature)

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware (Custom to use Zap + RayID)
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

		// 2.5 Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		// 3. Auth (Protect API)
		if !cfg.Server.RequiresAuth() {
			logg.Warn("API key not set, requests are unauthenticated")
		}
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 7. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 8. Periodic Sync (Optional)
		syncCtx, stopSync := context.WithCancel(context.Background())
		defer stopSync()
		if cfg.Feed.SyncIntervalSeconds > 0 {
			go runPeriodicSync(syncCtx, feature.Service(), time.Duration(cfg.Feed.SyncIntervalSeconds)*time.Second, logg)
		}

		// 9. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 10. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		stopSync()
		_ = app.Shutdown()
	},
}

// runPeriodicSync runs reconciliation passes at a fixed interval until the
// context is cancelled. A pass skipped because another one is still running
// is not an error; the next tick picks up.
func runPeriodicSync(ctx context.Context, svc *occupancy.Service, interval time.Duration, logg *zap.Logger) {
	logg.Info("Periodic sync enabled", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.RunSync(ctx); err != nil && !errors.Is(err, occupancy.ErrSyncRunning) {
				logg.Warn("Scheduled sync pass failed", zap.Error(err))
			}
		}
	}
}

func init() {
	RootCmd.AddCommand(startCmd)
}
