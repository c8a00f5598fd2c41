// Package storage provides the object storage backend of the snapshot archive.
//
// It wraps the MinIO Go client behind a small interface so every raw feed
// payload can be retained for audit and replay. The abstraction supports both
// AWS S3 and self-hosted MinIO instances.
//
// # Client Interface
//
// The Client interface abstracts the underlying storage provider, making it
// easy to mock archive interactions in unit tests (see core/storage/mocks).
//
// # Operations
//
//   - BucketExists / MakeBucket: verify or create the archive bucket.
//   - PutObject: store one raw snapshot payload.
//   - GetObject: retrieve an archived snapshot as a stream.
//   - ListObjects: enumerate archived snapshots by prefix.
//
// # Usage
//
//	client, err := storage.NewClient(cfg.Storage)
//	err = storage.EnsureBucket(ctx, client, cfg.Storage.Bucket)
package storage
