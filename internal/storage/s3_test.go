package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"article-admin-backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	puts    map[string][]byte
	types   map[string]string
	deleted []string
	pages   [][]types.Object
	err     error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.puts[aws.ToString(in.Key)] = data
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.err != nil {
		return nil, f.err
	}
	page := 0
	if in.ContinuationToken != nil {
		_, _ = fmt.Sscanf(*in.ContinuationToken, "page-%d", &page)
	}
	out := &s3.ListObjectsV2Output{Contents: f.pages[page]}
	if page+1 < len(f.pages) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(fmt.Sprintf("page-%d", page+1))
	}
	return out, nil
}

func newFakeS3() *fakeS3 {
	return &fakeS3{puts: map[string][]byte{}, types: map[string]string{}}
}

func TestNewS3ClientAppliesConfig(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	var loaded awsconfig.LoadOptions
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		for _, fn := range optFns {
			require.NoError(t, fn(&loaded))
		}
		return aws.Config{Region: loaded.Region}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}

	client, err := NewS3Client(context.Background(), config.StorageConfig{
		Bucket:         "refs",
		S3Region:       "eu-central-1",
		S3Endpoint:     "http://127.0.0.1:9000",
		S3AccessKey:    "minio",
		S3SecretKey:    "minio123",
		S3UsePathStyle: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "refs", client.Bucket)
	assert.Equal(t, "eu-central-1", loaded.Region)
	assert.NotNil(t, loaded.Credentials)
	require.NotNil(t, opts.BaseEndpoint)
	assert.Equal(t, "http://127.0.0.1:9000", *opts.BaseEndpoint)
	assert.True(t, opts.UsePathStyle)

	loadDefaultAWSConfig = func(context.Context, ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}
	_, err = NewS3Client(context.Background(), config.StorageConfig{Bucket: "refs"})
	assert.ErrorContains(t, err, "load-fail")

	_, err = NewS3Client(context.Background(), config.StorageConfig{})
	assert.Error(t, err)
}

func TestS3ClientUploadAndDelete(t *testing.T) {
	api := newFakeS3()
	client := &S3Client{Bucket: "refs", api: api}
	ctx := context.Background()

	require.NoError(t, client.UploadFile(ctx, "article_reference/a.txt", bytesReader("hello"), "text/plain"))
	assert.Equal(t, []byte("hello"), api.puts["article_reference/a.txt"])
	assert.Equal(t, "text/plain", api.types["article_reference/a.txt"])

	require.NoError(t, client.DeleteFile(ctx, "article_reference/a.txt"))
	assert.Equal(t, []string{"article_reference/a.txt"}, api.deleted)

	api.err = errors.New("access denied")
	assert.ErrorContains(t, client.UploadFile(ctx, "k", bytesReader("x"), ""), "access denied")
	assert.ErrorContains(t, client.DeleteFile(ctx, "k"), "access denied")
}

func TestS3ClientListFilesPaginates(t *testing.T) {
	modified := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	api := newFakeS3()
	api.pages = [][]types.Object{
		{{Key: aws.String("article_reference/a"), Size: aws.Int64(1), LastModified: &modified}},
		{{Key: aws.String("article_reference/b"), Size: aws.Int64(2)}},
	}
	client := &S3Client{Bucket: "refs", api: api}

	objects, err := client.ListFiles(context.Background(), "article_reference/")
	require.NoError(t, err)
	assert.Equal(t, []ObjectInfo{
		{Key: "article_reference/a", Size: 1, LastModified: modified},
		{Key: "article_reference/b", Size: 2},
	}, objects)
}

func TestS3ClientPresignGet(t *testing.T) {
	orig := presignGetObject
	t.Cleanup(func() { presignGetObject = orig })

	var captured *s3.GetObjectInput
	var expires time.Duration
	presignGetObject = func(_ *s3.PresignClient, _ context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		captured = in
		var po s3.PresignOptions
		for _, fn := range optFns {
			fn(&po)
		}
		expires = po.Expires
		return &v4.PresignedHTTPRequest{URL: "https://refs.example/signed", Method: http.MethodGet}, nil
	}

	client := &S3Client{Bucket: "refs", api: newFakeS3()}
	link, err := client.PresignGet(context.Background(), "article_reference/a.pdf", GetOptions{
		TTL:                        30 * time.Minute,
		ResponseContentType:        "application/pdf",
		ResponseContentDisposition: "attachment; filename=a.pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://refs.example/signed", link)
	assert.Equal(t, 30*time.Minute, expires)
	assert.Equal(t, "refs", aws.ToString(captured.Bucket))
	assert.Equal(t, "application/pdf", aws.ToString(captured.ResponseContentType))
	assert.Equal(t, "attachment; filename=a.pdf", aws.ToString(captured.ResponseContentDisposition))

	presignGetObject = func(*s3.PresignClient, context.Context, *s3.GetObjectInput, ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return nil, errors.New("sign-fail")
	}
	_, err = client.PresignGet(context.Background(), "k", GetOptions{})
	assert.ErrorContains(t, err, "sign-fail")
}

func TestNewSelectsDriver(t *testing.T) {
	c, err := New(context.Background(), config.StorageConfig{Driver: config.StorageMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryClient{}, c)

	_, err = New(context.Background(), config.StorageConfig{Driver: "ftp"})
	assert.Error(t, err)
}
