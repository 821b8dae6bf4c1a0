package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"article-admin-backend/internal/auth"
	"article-admin-backend/internal/config"
	"article-admin-backend/internal/database"
	"article-admin-backend/internal/logging"
	"article-admin-backend/internal/repository"
	"article-admin-backend/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// blacklistCleanupInterval is how often revoked tokens past their expiry are dropped
const blacklistCleanupInterval = 10 * time.Minute

// MyServer holds every dependency the route handlers need
type MyServer struct {
	cfg *config.Config
	log logging.Logger

	DB        *database.DBinstanceStruct
	Storage   storage.Client
	Uploader  *storage.Uploader
	Sweeper   *storage.Sweeper
	Blacklist *auth.InMemoryBlacklistStore
	Attempts  *auth.AttemptLogger
	Registry  *prometheus.Registry
}

// NewServer connects to the database and the object storage configured in cfg
// and wires the handlers on top of them.
func NewServer(ctx context.Context, cfg *config.Config, log logging.Logger) (*MyServer, error) {
	db, err := database.NewDBInstance(cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("database failed to initialize: %w", err)
	}
	if err := db.EnsureAdmin(cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return nil, fmt.Errorf("failed to create admin account: %w", err)
	}

	client, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("storage failed to initialize: %w", err)
	}

	return newServer(cfg, db, client, log)
}

func newServer(cfg *config.Config, db *database.DBinstanceStruct, client storage.Client, log logging.Logger) (*MyServer, error) {
	if log == nil {
		log = logging.Discard()
	}
	auth.Configure(cfg.SecretKey, cfg.TokenDuration)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	observer, err := storage.NewPrometheusObserver("", reg)
	if err != nil {
		return nil, fmt.Errorf("failed to register storage metrics: %w", err)
	}

	return &MyServer{
		cfg:       cfg,
		log:       log,
		DB:        db,
		Storage:   client,
		Uploader:  storage.NewUploader(client, observer, log),
		Sweeper:   storage.NewSweeper(client, repository.FilenameSource{DB: db.DB}, cfg.OrphanGracePeriod, observer, log),
		Blacklist: auth.NewInMemoryBlacklistStore(),
		Attempts:  auth.NewAttemptLogger(cfg.AuthLogging, cfg.AuthLogFile),
		Registry:  reg,
	}, nil
}

// HTTPServer returns the http.Server serving RegisterRoutes on the configured port
func (s *MyServer) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// StartBackground starts the token blacklist cleanup and, when
// ORPHAN_SWEEP_CRON is set, the scheduled orphan sweep. Both stop with ctx.
func (s *MyServer) StartBackground(ctx context.Context) error {
	go s.Blacklist.RunCleanup(ctx, blacklistCleanupInterval)

	if s.cfg.OrphanSweepCron == "" {
		return nil
	}
	c, err := s.Sweeper.Schedule(s.cfg.OrphanSweepCron)
	if err != nil {
		return err
	}
	s.log.Info(ctx, "orphan sweep scheduled", "spec", s.cfg.OrphanSweepCron)

	go func() {
		<-ctx.Done()
		<-c.Stop().Done()
	}()
	return nil
}

// Close releases the storage client and the database connection
func (s *MyServer) Close() error {
	var errs []error
	if closer, ok := s.Storage.(interface{ Close() error }); ok {
		errs = append(errs, closer.Close())
	}
	errs = append(errs, s.DB.Close())
	return errors.Join(errs...)
}
