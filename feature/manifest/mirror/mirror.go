package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"

	"iiif-presentation/core/storage"

	"github.com/minio/minio-go/v7"
)

// ErrNotFound is returned when no document is stored under the requested key.
var ErrNotFound = errors.New("representation not found")

const contentType = "application/json"

// Ref addresses one manifest.
type Ref struct {
	CustomerID int
	ManifestID string
}

// Mirror stores manifest representations in the object store.
type Mirror struct {
	client        storage.Client
	bucket        string
	stagingPrefix string
}

// New creates a mirror over the configured bucket.
func New(client storage.Client, cfg storage.Config) *Mirror {
	prefix := cfg.StagingPrefix
	if prefix == "" {
		prefix = "staging"
	}
	return &Mirror{client: client, bucket: cfg.Bucket, stagingPrefix: prefix}
}

// Bucket returns the bucket documents are written to.
func (m *Mirror) Bucket() string {
	return m.bucket
}

// Key returns the object key of a manifest document.
func (m *Mirror) Key(ref Ref, staging bool) string {
	key := path.Join(fmt.Sprint(ref.CustomerID), "manifests", ref.ManifestID+".json")
	if staging {
		return path.Join(m.stagingPrefix, key)
	}
	return key
}

// SaveRepresentation writes the document to the final or the staging location.
func (m *Mirror) SaveRepresentation(ctx context.Context, ref Ref, doc *Document, staging bool) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode representation: %w", err)
	}

	key := m.Key(ref, staging)
	_, err = m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

// ReadRepresentation reads the document from the final or the staging location.
func (m *Mirror) ReadRepresentation(ctx context.Context, ref Ref, staging bool) (*Document, error) {
	key := m.Key(ref, staging)
	obj, err := m.client.GetObject(ctx, m.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return &doc, nil
}

// RemoveStaging deletes the provisional document, if any.
func (m *Mirror) RemoveStaging(ctx context.Context, ref Ref) error {
	key := m.Key(ref, true)
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil && !storage.IsNotFound(err) {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}
