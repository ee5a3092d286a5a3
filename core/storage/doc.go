// Package storage provides an abstraction layer for object storage services.
//
// It wraps the MinIO Go client so manifest documents can be mirrored to AWS S3 or a
// self-hosted MinIO instance. The Client interface makes storage interactions easy to
// mock in tests (see core/storage/mocks).
//
// # Operations
//
//   - BucketExists / MakeBucket: verify or create the mirror bucket.
//   - PutObject / GetObject: write and read mirrored documents.
//   - ListObjects: list keys under a prefix (layout checks).
//   - RemoveObject: drop superseded staging documents.
//
// # Usage
//
//	client, err := storage.NewClient(config)
//	exists, err := client.BucketExists(ctx, "presentation")
package storage
