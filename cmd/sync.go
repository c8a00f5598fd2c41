package cmd

import (
	"context"
	"fmt"

	"ward-manager/core/config"
	"ward-manager/core/database"
	"ward-manager/core/logger"
	"ward-manager/core/storage"
	"ward-manager/feature/occupancy"
	"ward-manager/feature/occupancy/feed"
	"ward-manager/feature/occupancy/models"
	occupancyStore "ward-manager/feature/occupancy/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// syncCmd runs a single reconciliation pass and exits.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one occupancy reconciliation pass",
	Long: `Fetches the full occupancy snapshot from the hospital information
system and reconciles it against the local database in a single transaction.

The pass never deletes rows: patients absent from the snapshot are archived
as discharged, and every finished stay is kept as history.`,
	RunE: runSync,
}

func init() {
	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := models.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	var archive storage.Client
	if cfg.Storage.Enabled {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to connect to storage: %w", err)
		}
		if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket); err != nil {
			return fmt.Errorf("failed to prepare snapshot bucket: %w", err)
		}
		archive = client
	}

	svc := occupancy.NewService(occupancyStore.NewGormStore(db), feed.NewClient(cfg.Feed, l), archive, cfg.Storage.Bucket, l)

	l.Info("Starting sync pass")
	result, err := svc.RunSync(ctx)
	if err != nil {
		return fmt.Errorf("sync pass failed: %w", err)
	}

	l.Info("Sync pass complete",
		zap.Int("processed", result.Processed),
		zap.Int("archived", result.Archived),
		zap.Int("active", result.Active),
		zap.Int("new", result.New),
	)
	return nil
}
