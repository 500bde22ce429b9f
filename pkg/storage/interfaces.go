// Package storage defines the object-store capabilities the transfer mappers
// and the exporter consume, independent of the S3 client behind them.
package storage

import (
	"context"
	"time"
)

// ObjectInfo is what HeadObject learns about an existing object.
type ObjectInfo struct {
	Size         int64
	ETag         string
	LastModified *time.Time
}

// ObjectStore is the logical S3-compatible API. Implementations report a
// missing object with an error matching ErrNotFound.
type ObjectStore interface {
	// GetObject reads the whole object into memory.
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)

	// DownloadToFile writes the object to localPath. localPath is either
	// fully written or absent when DownloadToFile returns.
	DownloadToFile(ctx context.Context, bucket, key, localPath string) error

	// UploadFile stores the content of localPath under bucket/key.
	UploadFile(ctx context.Context, localPath, bucket, key string) error

	// HeadObject returns metadata for bucket/key.
	HeadObject(ctx context.Context, bucket, key string) (*ObjectInfo, error)
}
