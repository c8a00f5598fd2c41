package occupancy

import (
	"ward-manager/core/storage"
	"ward-manager/feature/occupancy/store"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new Occupancy feature.
func NewFeature(s store.Store, feed FeedFetcher, archive storage.Client, bucket string, logger *zap.Logger) *Feature {
	svc := NewService(s, feed, archive, bucket, logger)
	h := NewHandler(svc)
	return &Feature{service: svc, handler: h}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "occupancy"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

// Service exposes the feature's service for callers outside the HTTP surface,
// such as the periodic sync loop and the one-shot CLI command.
func (f *Feature) Service() *Service {
	return f.service
}
