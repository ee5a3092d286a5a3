package integrity

import (
	"context"

	"iiif-presentation/core/storage"
	"iiif-presentation/feature/integrity/checks"
	"iiif-presentation/feature/manifest/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service handles integrity checks.
type Service struct {
	client storage.Client
	cfg    storage.Config
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates a new integrity service.
func NewService(client storage.Client, cfg storage.Config, db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{
		client: client,
		cfg:    cfg,
		db:     db,
		logger: logger,
	}
}

// CheckStructure reports the state of the mirror bucket.
func (s *Service) CheckStructure(ctx context.Context) (*checks.StructureReport, error) {
	return checks.CheckStructure(ctx, s.client, s.cfg)
}

// FixStructure creates what the report lists as missing.
func (s *Service) FixStructure(ctx context.Context, report *checks.StructureReport) error {
	return checks.FixStructure(ctx, s.client, s.cfg, s.logger, report)
}

// CheckSchema compares the live tables with the persisted models.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	return checks.CheckSchema(s.db, models.All()...)
}

// CheckMirror compares manifest rows with mirrored documents.
func (s *Service) CheckMirror(ctx context.Context) (*checks.MirrorReport, error) {
	return checks.CheckMirror(ctx, s.db, s.client, s.cfg)
}

// FixMirror removes the orphaned documents of the report.
func (s *Service) FixMirror(ctx context.Context, report *checks.MirrorReport) error {
	return checks.RemoveOrphans(ctx, s.client, s.cfg.Bucket, s.logger, report.Orphaned)
}
