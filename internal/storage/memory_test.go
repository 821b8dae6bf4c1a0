package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryClientFiles(t *testing.T) {
	ctx := context.Background()
	client := NewMemoryClient()

	require.NoError(t, client.UploadFile(ctx, "article_reference/b.txt", strings.NewReader("bb"), "text/plain"))
	require.NoError(t, client.UploadFile(ctx, "article_reference/a.txt", strings.NewReader("a"), "text/plain"))
	require.NoError(t, client.UploadFile(ctx, "other/c.txt", strings.NewReader("c"), "text/plain"))
	require.NoError(t, client.UploadFile(ctx, "article_reference/a.txt", strings.NewReader("aaa"), "text/markdown"))

	data, contentType, ok := client.Object("article_reference/a.txt")
	require.True(t, ok)
	assert.Equal(t, []byte("aaa"), data)
	assert.Equal(t, "text/markdown", contentType)

	objects, err := client.ListFiles(ctx, "article_reference/")
	require.NoError(t, err)
	require.Len(t, objects, 2)
	assert.Equal(t, "article_reference/a.txt", objects[0].Key)
	assert.Equal(t, int64(3), objects[0].Size)
	assert.Equal(t, "article_reference/b.txt", objects[1].Key)

	require.NoError(t, client.DeleteFile(ctx, "article_reference/a.txt"))
	require.NoError(t, client.DeleteFile(ctx, "article_reference/a.txt"))
	assert.Equal(t, 2, client.Len())
}

func TestMemoryClientFailures(t *testing.T) {
	ctx := context.Background()
	client := NewMemoryClient()
	client.FailUpload = errors.New("upload down")
	client.FailDelete = errors.New("delete down")

	assert.EqualError(t, client.UploadFile(ctx, "k", strings.NewReader("x"), "text/plain"), "upload down")
	assert.EqualError(t, client.DeleteFile(ctx, "k"), "delete down")
	assert.Equal(t, 0, client.Len())
}
