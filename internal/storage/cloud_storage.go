package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// CloudStorageClient stores objects in a Google Cloud Storage bucket
type CloudStorageClient struct {
	BucketName string
	Client     *gcs.Client
}

// NewCloudStorageClient creates a client for bucketName. An empty
// credentialsFile falls back to application default credentials.
func NewCloudStorageClient(ctx context.Context, bucketName, credentialsFile string) (*CloudStorageClient, error) {
	if bucketName == "" {
		return nil, errors.New("storage bucket is not configured")
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create cloud storage client: %w", err)
	}
	return &CloudStorageClient{
		BucketName: bucketName,
		Client:     client,
	}, nil
}

func (c *CloudStorageClient) bucket() *gcs.BucketHandle {
	return c.Client.Bucket(c.BucketName)
}

// UploadFile writes r to objectName
func (c *CloudStorageClient) UploadFile(ctx context.Context, objectName string, r io.Reader, contentType string) error {
	wc := c.bucket().Object(objectName).NewWriter(ctx)
	wc.ContentType = contentType
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return fmt.Errorf("failed to write data to object: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close object writer: %w", err)
	}
	return nil
}

// DeleteFile removes objectName, a missing object counts as deleted
func (c *CloudStorageClient) DeleteFile(ctx context.Context, objectName string) error {
	err := c.bucket().Object(objectName).Delete(ctx)
	if err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete object %s: %w", objectName, err)
	}
	return nil
}

// PresignGet returns a V4 signed GET URL. Signing needs credentials that
// carry a private key or the IAM signBlob permission.
func (c *CloudStorageClient) PresignGet(_ context.Context, objectName string, opts GetOptions) (string, error) {
	query := url.Values{}
	if opts.ResponseContentType != "" {
		query.Set("response-content-type", opts.ResponseContentType)
	}
	if opts.ResponseContentDisposition != "" {
		query.Set("response-content-disposition", opts.ResponseContentDisposition)
	}

	signed, err := c.bucket().SignedURL(objectName, &gcs.SignedURLOptions{
		Scheme:          gcs.SigningSchemeV4,
		Method:          "GET",
		Expires:         time.Now().Add(presignTTL(opts.TTL)),
		QueryParameters: query,
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign url for %s: %w", objectName, err)
	}
	return signed, nil
}

// ListFiles returns every object whose name starts with prefix
func (c *CloudStorageClient) ListFiles(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	it := c.bucket().Objects(ctx, &gcs.Query{Prefix: prefix})

	var out []ObjectInfo
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects under %s: %w", prefix, err)
		}
		out = append(out, ObjectInfo{
			Key:          attrs.Name,
			Size:         attrs.Size,
			LastModified: attrs.Updated,
		})
	}
	return out, nil
}

// Close releases the underlying client
func (c *CloudStorageClient) Close() error {
	return c.Client.Close()
}

var _ Client = (*CloudStorageClient)(nil)
