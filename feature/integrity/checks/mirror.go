package checks

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"iiif-presentation/core/storage"
	"iiif-presentation/feature/manifest/mirror"
	"iiif-presentation/feature/manifest/models"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// MirrorEntry is a manifest row without any mirrored document.
type MirrorEntry struct {
	CustomerID int    `json:"customer_id"`
	ManifestID string `json:"manifest_id"`
}

// MirrorReport compares manifest rows with the documents in the bucket.
type MirrorReport struct {
	Manifests int           `json:"manifests"`
	Objects   int           `json:"objects"`
	Missing   []MirrorEntry `json:"missing"`
	Orphaned  []string      `json:"orphaned"`
}

// Consistent reports whether every row has a document and every document a row.
func (r *MirrorReport) Consistent() bool {
	return len(r.Missing) == 0 && len(r.Orphaned) == 0
}

// CheckMirror loads the manifest rows and the bucket listing concurrently and
// reports rows with neither a final nor a staging document, and documents
// whose manifest no longer exists.
func CheckMirror(ctx context.Context, db *gorm.DB, client storage.Client, cfg storage.Config) (*MirrorReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	var (
		rows    []models.Manifest
		objects map[string]struct{}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := db.WithContext(gctx).Select("id", "customer_id").Order("customer_id, id").Find(&rows).Error
		if err != nil {
			return fmt.Errorf("failed to load manifests: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		objects, err = listDocuments(gctx, client, cfg.Bucket)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m := mirror.New(client, cfg)
	report := &MirrorReport{
		Manifests: len(rows),
		Objects:   len(objects),
		Missing:   []MirrorEntry{},
		Orphaned:  []string{},
	}

	expected := make(map[string]struct{}, 2*len(rows))
	for _, row := range rows {
		ref := mirror.Ref{CustomerID: row.CustomerID, ManifestID: row.ID}
		final, staging := m.Key(ref, false), m.Key(ref, true)
		expected[final] = struct{}{}
		expected[staging] = struct{}{}

		_, hasFinal := objects[final]
		_, hasStaging := objects[staging]
		if !hasFinal && !hasStaging {
			report.Missing = append(report.Missing, MirrorEntry{CustomerID: row.CustomerID, ManifestID: row.ID})
		}
	}

	for key := range objects {
		if _, ok := expected[key]; !ok {
			report.Orphaned = append(report.Orphaned, key)
		}
	}
	sort.Strings(report.Orphaned)

	return report, nil
}

// RemoveOrphans deletes documents that have no manifest row.
func RemoveOrphans(ctx context.Context, client storage.Client, bucket string, logger *zap.Logger, orphaned []string) error {
	for _, key := range orphaned {
		if err := client.RemoveObject(ctx, bucket, key, minio.RemoveObjectOptions{}); err != nil && !storage.IsNotFound(err) {
			logger.Error("Failed to remove orphaned document", zap.String("key", key), zap.Error(err))
			return fmt.Errorf("failed to remove %s: %w", key, err)
		}
		logger.Info("Removed orphaned document", zap.String("key", key))
	}
	return nil
}

// listDocuments returns the keys of every manifest document in the bucket.
func listDocuments(ctx context.Context, client storage.Client, bucket string) (map[string]struct{}, error) {
	keys := make(map[string]struct{})
	for obj := range client.ListObjects(ctx, bucket, minio.ListObjectsOptions{Recursive: true}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("failed to list bucket %s: %w", bucket, obj.Err)
		}
		if strings.Contains(obj.Key, "/manifests/") && strings.HasSuffix(obj.Key, ".json") {
			keys[obj.Key] = struct{}{}
		}
	}
	return keys, nil
}
