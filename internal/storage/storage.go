// Package storage keeps reference files in object storage and hands out
// presigned links to them.
package storage

import (
	"context"
	"fmt"
	"io"
	"time"

	"article-admin-backend/internal/config"
)

// ObjectInfo describes one stored object
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// GetOptions controls a presigned GET link. The response overrides are
// applied by the object store when the link is followed.
type GetOptions struct {
	TTL                        time.Duration
	ResponseContentType        string
	ResponseContentDisposition string
}

// Client is the object store the backend writes reference files to.
type Client interface {
	UploadFile(ctx context.Context, key string, r io.Reader, contentType string) error
	// DeleteFile removes key. Deleting a missing object is not an error.
	DeleteFile(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, opts GetOptions) (string, error)
	ListFiles(ctx context.Context, prefix string) ([]ObjectInfo, error)
}

// New connects to the storage backend selected by cfg.Driver
func New(ctx context.Context, cfg config.StorageConfig) (Client, error) {
	switch cfg.Driver {
	case config.StorageS3:
		c, err := NewS3Client(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.StorageGCS:
		c, err := NewCloudStorageClient(ctx, cfg.Bucket, cfg.GCSCredentialsFile)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.StorageMemory:
		return NewMemoryClient(), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Driver)
	}
}

// presignTTL bounds caller supplied lifetimes to what SigV4 accepts
func presignTTL(ttl time.Duration) time.Duration {
	const maxTTL = 7 * 24 * time.Hour
	switch {
	case ttl <= 0:
		return 30 * time.Minute
	case ttl > maxTTL:
		return maxTTL
	default:
		return ttl
	}
}
