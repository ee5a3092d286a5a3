package manifest

import (
	"iiif-presentation/core/assetservice"
	"iiif-presentation/core/identity"
	"iiif-presentation/core/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates a new Manifest feature.
func NewFeature(db *gorm.DB, assets assetservice.Client, client storage.Client, storageCfg storage.Config, ids identity.Generator, baseURL string, logger *zap.Logger) *Feature {
	svc := NewService(db, assets, client, storageCfg, ids, baseURL, logger)
	h := NewHandler(svc)
	return &Feature{service: svc, handler: h}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "manifest"
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
