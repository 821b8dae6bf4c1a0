package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"article-admin-backend/internal/logging"
	"article-admin-backend/internal/model"

	"github.com/robfig/cron/v3"
)

// DefaultGracePeriod protects objects whose database row may still be committing
const DefaultGracePeriod = time.Hour

// FilenameSource lists the reference filenames that have a database row
type FilenameSource interface {
	StoredFilenames(ctx context.Context) (map[string]struct{}, error)
}

// SweepReport summarizes one Sweep run
type SweepReport struct {
	Scanned int
	Deleted int
	Failed  int
}

// Sweeper removes stored reference files that no ArticleReference points to.
// Such objects are left behind when a row insert fails after the upload, or
// when deleting the object fails after the row was removed.
type Sweeper struct {
	client   Client
	source   FilenameSource
	prefix   string
	grace    time.Duration
	observer Observer
	log      logging.Logger
	now      func() time.Time
}

// NewSweeper creates a Sweeper. A non-positive grace uses DefaultGracePeriod.
func NewSweeper(client Client, source FilenameSource, grace time.Duration, observer Observer, log logging.Logger) *Sweeper {
	if grace <= 0 {
		grace = DefaultGracePeriod
	}
	if observer == nil {
		observer = nopObserver{}
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Sweeper{
		client:   client,
		source:   source,
		prefix:   model.ArticleReferencePrefix,
		grace:    grace,
		observer: observer,
		log:      log,
		now:      time.Now,
	}
}

// Sweep deletes every orphaned object older than the grace period.
// Objects are listed before rows are loaded, so a row committed during the
// sweep is always seen.
func (s *Sweeper) Sweep(ctx context.Context) (report SweepReport, err error) {
	start := time.Now()
	defer func() {
		s.observer.RecordSweep(time.Since(start), report, err)
	}()

	objects, err := s.client.ListFiles(ctx, s.prefix+"/")
	if err != nil {
		return report, err
	}

	stored, err := s.source.StoredFilenames(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to load stored filenames: %w", err)
	}

	cutoff := s.now().Add(-s.grace)
	for _, obj := range objects {
		report.Scanned++

		filename := strings.TrimPrefix(obj.Key, s.prefix+"/")
		if _, ok := stored[filename]; ok || filename == "" || strings.Contains(filename, "/") {
			continue
		}
		if obj.LastModified.After(cutoff) {
			continue
		}

		if err := s.client.DeleteFile(ctx, path.Join(s.prefix, filename)); err != nil {
			report.Failed++
			s.log.Warn(ctx, "failed to delete orphaned reference", "key", obj.Key, "error", err)
			continue
		}
		report.Deleted++
		s.log.Info(ctx, "deleted orphaned reference", "key", obj.Key)
	}

	return report, nil
}

// Schedule runs Sweep on the standard 5 field cron spec until the returned
// cron is stopped.
func (s *Sweeper) Schedule(spec string) (*cron.Cron, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}

	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		report, err := s.Sweep(ctx)
		if err != nil {
			s.log.Error(ctx, "orphan sweep failed", "error", err)
			return
		}
		s.log.Info(ctx, "orphan sweep finished",
			"scanned", report.Scanned, "deleted", report.Deleted, "failed", report.Failed)
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}
