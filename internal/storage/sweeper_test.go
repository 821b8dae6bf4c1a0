package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"article-admin-backend/internal/model"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	names map[string]struct{}
	err   error
}

func (s staticSource) StoredFilenames(context.Context) (map[string]struct{}, error) {
	return s.names, s.err
}

// failingDeleteClient fails deletes of one key only
type failingDeleteClient struct {
	*MemoryClient
	failKey string
}

func (f failingDeleteClient) DeleteFile(ctx context.Context, key string) error {
	if key == f.failKey {
		return errors.New("permission denied")
	}
	return f.MemoryClient.DeleteFile(ctx, key)
}

func seedObjects(t *testing.T, client *MemoryClient, modified time.Time, names ...string) {
	t.Helper()
	for _, n := range names {
		key := model.ArticleReferencePrefix + "/" + n
		require.NoError(t, client.UploadFile(context.Background(), key, strings.NewReader(n), ""))
		client.Touch(key, modified)
	}
}

func TestSweepDeletesOldOrphansOnly(t *testing.T) {
	client := NewMemoryClient()
	old := time.Now().Add(-2 * time.Hour)
	seedObjects(t, client, old, "kept.pdf", "orphan.pdf")
	seedObjects(t, client, time.Now(), "fresh-orphan.pdf")
	require.NoError(t, client.UploadFile(context.Background(), "elsewhere/orphan.pdf", strings.NewReader("x"), ""))

	source := staticSource{names: map[string]struct{}{"kept.pdf": {}}}
	sweeper := NewSweeper(client, source, time.Hour, nil, nil)

	report, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SweepReport{Scanned: 3, Deleted: 1}, report)

	_, _, ok := client.Object(model.ArticleReferencePrefix + "/orphan.pdf")
	assert.False(t, ok)
	_, _, ok = client.Object(model.ArticleReferencePrefix + "/kept.pdf")
	assert.True(t, ok)
	_, _, ok = client.Object(model.ArticleReferencePrefix + "/fresh-orphan.pdf")
	assert.True(t, ok)
	_, _, ok = client.Object("elsewhere/orphan.pdf")
	assert.True(t, ok)
}

func TestSweepCountsFailedDeletes(t *testing.T) {
	mem := NewMemoryClient()
	seedObjects(t, mem, time.Now().Add(-2*time.Hour), "a.pdf", "b.pdf")
	client := failingDeleteClient{MemoryClient: mem, failKey: model.ArticleReferencePrefix + "/a.pdf"}

	reg := prometheus.NewRegistry()
	observer, err := NewPrometheusObserver("test", reg)
	require.NoError(t, err)

	sweeper := NewSweeper(client, staticSource{names: map[string]struct{}{}}, time.Hour, observer, nil)
	report, err := sweeper.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, SweepReport{Scanned: 2, Deleted: 1, Failed: 1}, report)

	assert.Equal(t, float64(1), promtestutil.ToFloat64(observer.orphansDeleted))
	assert.Equal(t, float64(1), promtestutil.ToFloat64(observer.operationErrors.WithLabelValues("sweep_delete")))
}

func TestSweepSourceError(t *testing.T) {
	client := NewMemoryClient()
	seedObjects(t, client, time.Now().Add(-2*time.Hour), "a.pdf")

	sweeper := NewSweeper(client, staticSource{err: errors.New("db down")}, 0, nil, nil)
	_, err := sweeper.Sweep(context.Background())
	assert.ErrorContains(t, err, "db down")
	assert.Equal(t, 1, client.Len())
	assert.Equal(t, DefaultGracePeriod, sweeper.grace)
}

func TestScheduleRejectsInvalidSpec(t *testing.T) {
	sweeper := NewSweeper(NewMemoryClient(), staticSource{}, time.Hour, nil, nil)

	_, err := sweeper.Schedule("every now and then")
	assert.Error(t, err)

	c, err := sweeper.Schedule("@every 1h")
	require.NoError(t, err)
	assert.Len(t, c.Entries(), 1)
	<-c.Stop().Done()
}
