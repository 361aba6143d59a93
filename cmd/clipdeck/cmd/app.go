package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/clipdeck/clipdeck/internal/config"
	"github.com/clipdeck/clipdeck/internal/database"
	"github.com/clipdeck/clipdeck/internal/engine"
	"github.com/clipdeck/clipdeck/internal/engine/localfile"
	"github.com/clipdeck/clipdeck/internal/engine/remoteftp"
	"github.com/clipdeck/clipdeck/internal/engine/vimeo"
	"github.com/clipdeck/clipdeck/internal/engine/youtube"
	"github.com/clipdeck/clipdeck/internal/httpclient"
	"github.com/clipdeck/clipdeck/internal/repository"
	"github.com/clipdeck/clipdeck/internal/thumbnail"
)

// app bundles the wired stack behind the media commands.
type app struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       *database.DB
	registry *engine.Registry
	pipeline *engine.Pipeline
	backends repository.StorageBackendRepository
	media    repository.MediaRepository
	files    repository.MediaFileRepository
	thumbs   *thumbnail.Generator
}

// newApp loads configuration, opens the database, runs migrations,
// registers all engine types, and seeds a default local backend on first
// run.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := slog.Default()

	db, err := database.New(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	client := httpclient.New(httpclient.Config{
		Timeout:       cfg.Ingest.HTTPTimeout,
		RetryAttempts: cfg.Ingest.RetryAttempts,
		RetryDelay:    cfg.Ingest.RetryDelay,
		Logger:        logger,
	})

	thumbs, err := thumbnail.NewGenerator(cfg.Storage.ThumbPath(), cfg.Thumbnails, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	registry := engine.NewRegistry(logger)
	descriptors := []engine.Descriptor{
		localfile.Descriptor(localfile.Options{
			MediaDir:      cfg.Storage.MediaPath(),
			PublicBaseURL: cfg.Storage.PublicBaseURL,
			Logger:        logger,
		}),
		remoteftp.Descriptor(remoteftp.Options{Logger: logger}),
		youtube.Descriptor(youtube.Options{Client: client, Logger: logger}),
		vimeo.Descriptor(vimeo.Options{Client: client, Logger: logger}),
	}
	for _, d := range descriptors {
		if err := registry.Register(d); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	backends := repository.NewStorageBackendRepository(db.DB)
	media := repository.NewMediaRepository(db.DB)
	files := repository.NewMediaFileRepository(db.DB)

	a := &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		registry: registry,
		pipeline: engine.NewPipeline(registry, backends, media, files, thumbs, client, logger),
		backends: backends,
		media:    media,
		files:    files,
		thumbs:   thumbs,
	}
	if err := a.seedDefaultBackend(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

// seedDefaultBackend creates a local-file backend when no backends exist,
// so a fresh install can ingest uploads without manual setup.
func (a *app) seedDefaultBackend(ctx context.Context) error {
	rows, err := a.backends.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("checking configured backends: %w", err)
	}
	if len(rows) > 0 {
		return nil
	}
	backend, err := a.registry.DefaultBackend(localfile.EngineType)
	if err != nil {
		return err
	}
	if err := a.backends.Create(ctx, backend); err != nil {
		return fmt.Errorf("seeding default backend: %w", err)
	}
	a.logger.Info("seeded default storage backend", "engine", backend.EngineType, "id", backend.ID)
	return nil
}

func (a *app) Close() {
	if err := a.db.Close(); err != nil {
		a.logger.Warn("closing database", "error", err)
	}
}
