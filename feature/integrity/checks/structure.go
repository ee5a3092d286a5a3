package checks

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"iiif-presentation/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// StructureReport describes the layout of the mirror bucket.
type StructureReport struct {
	Bucket       string   `json:"bucket"`
	BucketExists bool     `json:"bucket_exists"`
	Missing      []string `json:"missing"`
}

// Intact reports whether nothing needs fixing.
func (r *StructureReport) Intact() bool {
	return r.BucketExists && len(r.Missing) == 0
}

// RequiredPrefixes lists the prefixes that must exist in the bucket.
func RequiredPrefixes(cfg storage.Config) []string {
	staging := cfg.StagingPrefix
	if staging == "" {
		staging = "staging"
	}
	return []string{staging}
}

// CheckStructure reports whether the bucket and its required prefixes exist.
func CheckStructure(ctx context.Context, client storage.Client, cfg storage.Config) (*StructureReport, error) {
	report := &StructureReport{Bucket: cfg.Bucket, Missing: []string{}}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	report.BucketExists = exists
	if !exists {
		report.Missing = append(report.Missing, RequiredPrefixes(cfg)...)
		return report, nil
	}

	for _, prefix := range RequiredPrefixes(cfg) {
		opts := minio.ListObjectsOptions{
			Prefix:    folder(prefix),
			Recursive: false,
			MaxKeys:   1,
		}

		found := false
		for obj := range client.ListObjects(ctx, cfg.Bucket, opts) {
			if obj.Err != nil {
				return nil, fmt.Errorf("failed to list %s: %w", prefix, obj.Err)
			}
			found = true
			break
		}
		if !found {
			report.Missing = append(report.Missing, prefix)
		}
	}

	return report, nil
}

// FixStructure creates the bucket when absent and a marker object for each missing prefix.
func FixStructure(ctx context.Context, client storage.Client, cfg storage.Config, logger *zap.Logger, report *StructureReport) error {
	if !report.BucketExists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			logger.Error("Failed to create bucket", zap.String("bucket", cfg.Bucket), zap.Error(err))
			return fmt.Errorf("failed to create bucket %s: %w", cfg.Bucket, err)
		}
		logger.Info("Created missing bucket", zap.String("bucket", cfg.Bucket))
	}

	for _, prefix := range report.Missing {
		_, err := client.PutObject(ctx, cfg.Bucket, folder(prefix), bytes.NewReader([]byte{}), 0, minio.PutObjectOptions{})
		if err != nil {
			logger.Error("Failed to create prefix", zap.String("prefix", prefix), zap.Error(err))
			return err
		}
		logger.Info("Created missing prefix", zap.String("prefix", prefix))
	}
	return nil
}

func folder(prefix string) string {
	if strings.HasSuffix(prefix, "/") {
		return prefix
	}
	return prefix + "/"
}
