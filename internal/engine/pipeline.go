package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/clipdeck/clipdeck/internal/httpclient"
	"github.com/clipdeck/clipdeck/internal/models"
	"github.com/clipdeck/clipdeck/internal/repository"
)

// Thumbnailer produces and checks display thumbnails for media items.
// Implemented by the thumbnail package; the pipeline only needs these two
// operations.
type Thumbnailer interface {
	Generate(ctx context.Context, mediaID models.ULID, image []byte) error
	Exists(mediaID models.ULID) bool
}

// Pipeline drives media-file ingestion across the configured storage
// engines. One Pipeline serves the whole process; it is safe for concurrent
// use as long as the repositories are.
type Pipeline struct {
	registry *Registry
	backends repository.StorageBackendRepository
	media    repository.MediaRepository
	files    repository.MediaFileRepository
	thumbs   Thumbnailer
	client   *httpclient.Client
	logger   *slog.Logger
}

// NewPipeline wires a Pipeline. thumbs may be nil to disable thumbnail
// handling entirely.
func NewPipeline(
	registry *Registry,
	backends repository.StorageBackendRepository,
	media repository.MediaRepository,
	files repository.MediaFileRepository,
	thumbs Thumbnailer,
	client *httpclient.Client,
	logger *slog.Logger,
) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		registry: registry,
		backends: backends,
		media:    media,
		files:    files,
		thumbs:   thumbs,
		client:   client,
		logger:   logger.With("component", "ingest-pipeline"),
	}
}

// EnabledEngines hydrates the enabled backend rows and arranges them into
// attempt order. The row set is re-read on every call so configuration
// changes take effect without a restart.
func (p *Pipeline) EnabledEngines(ctx context.Context) ([]Engine, error) {
	rows, err := p.backends.GetEnabled(ctx)
	if err != nil {
		return nil, fmt.Errorf("load enabled backends: %w", err)
	}
	engines, err := p.registry.Hydrate(rows)
	if err != nil {
		return nil, err
	}
	return p.registry.Order(engines)
}

// AddNewMediaFile ingests one file or URL for an existing media item. The
// returned MediaFile is persisted with a non-empty unique id, or ingestion
// failed and no row remains.
//
// Phases: the enabled engines are tried in order until one's Parse accepts
// the input; a stub row is flushed so the primary key exists before storage;
// the accepting engine stores the asset; missing metadata on the parent
// media item is backfilled without overwriting operator-entered values; a
// thumbnail is fetched or generated when the media item has none; the rows
// are flushed; the engine's postprocess hook runs; and finally every engine
// is offered the stored file for transcoding.
func (p *Pipeline) AddNewMediaFile(ctx context.Context, media *models.Media, in Input) (*models.MediaFile, error) {
	if media == nil || media.ID.IsZero() {
		return nil, fmt.Errorf("add media file: media must be persisted first")
	}
	if in.IsEmpty() {
		return nil, &UserError{Message: "no file or URL was provided"}
	}

	engines, err := p.EnabledEngines(ctx)
	if err != nil {
		return nil, err
	}

	log := p.logger.With("media_id", media.ID)

	winner, meta, err := p.parse(ctx, engines, in, log)
	if err != nil {
		return nil, err
	}

	file := &models.MediaFile{
		MediaID:     media.ID,
		StorageID:   winner.Backend().ID,
		Type:        meta.Type,
		Container:   meta.Container,
		DisplayName: meta.DisplayName,
		UniqueID:    meta.UniqueID,
		Size:        meta.Size,
		Bitrate:     meta.Bitrate,
		Width:       meta.Width,
		Height:      meta.Height,
	}
	if file.DisplayName == "" {
		file.DisplayName = in.URL
	}

	// Flush the stub first so the primary key exists; engines derive
	// storage names from it.
	if err := p.files.Create(ctx, file); err != nil {
		return nil, fmt.Errorf("persist media file stub: %w", err)
	}

	discard := func(stored bool) {
		if stored && file.UniqueID != "" {
			if _, derr := winner.Delete(ctx, file.UniqueID); derr != nil {
				log.Warn("failed to remove asset while unwinding ingest",
					"engine", winner.Type(), "unique_id", file.UniqueID, "error", derr)
			}
		}
		if derr := p.files.Delete(ctx, file.ID); derr != nil {
			log.Warn("failed to remove media file stub while unwinding ingest",
				"file_id", file.ID, "error", derr)
		}
	}

	uniqueID, err := winner.Store(ctx, file, in, meta)
	if err != nil {
		discard(false)
		return nil, err
	}
	if uniqueID != "" {
		file.UniqueID = uniqueID
	}
	if file.UniqueID == "" {
		discard(false)
		return nil, NewStorageError("store",
			fmt.Errorf("engine %q produced no unique id", winner.Type()))
	}

	p.backfill(media, meta)

	if err := p.ensureThumbnail(ctx, media, meta, log); err != nil {
		discard(true)
		return nil, err
	}

	if err := p.files.Update(ctx, file); err != nil {
		discard(true)
		return nil, fmt.Errorf("flush media file: %w", err)
	}
	if err := p.media.Update(ctx, media); err != nil {
		discard(true)
		return nil, fmt.Errorf("flush media item: %w", err)
	}

	if err := winner.Postprocess(ctx, file); err != nil {
		discard(true)
		return nil, fmt.Errorf("postprocess with engine %q: %w", winner.Type(), err)
	}

	// Every engine gets a shot at producing derived files. The stored
	// file is already committed; a transcode failure surfaces but does
	// not unwind it.
	for _, e := range engines {
		terr := e.Transcode(ctx, file)
		if terr == nil {
			log.Info("transcoded media file", "engine", e.Type(), "file_id", file.ID)
			break
		}
		if errors.Is(terr, ErrCannotTranscode) {
			continue
		}
		return nil, fmt.Errorf("transcode with engine %q: %w", e.Type(), terr)
	}

	log.Info("ingested media file",
		"file_id", file.ID, "engine", winner.Type(), "type", file.Type, "unique_id", file.UniqueID)
	return file, nil
}

// parse walks the ordered engines until one accepts the input.
func (p *Pipeline) parse(ctx context.Context, engines []Engine, in Input, log *slog.Logger) (Engine, *Meta, error) {
	for _, e := range engines {
		meta, err := e.Parse(ctx, in)
		if err == nil {
			if meta == nil || meta.Type == "" {
				return nil, nil, NewStorageError("parse",
					fmt.Errorf("engine %q accepted the input without a file type", e.Type()))
			}
			log.Debug("engine accepted input", "engine", e.Type(), "backend_id", e.Backend().ID)
			return e, meta, nil
		}
		if errors.Is(err, ErrUnsuitable) {
			log.Debug("engine declined input", "engine", e.Type(), "reason", err)
			continue
		}
		return nil, nil, fmt.Errorf("parse with engine %q: %w", e.Type(), err)
	}

	if in.IsUpload() {
		if ext := Extension(in.File.Filename); ext != "" {
			return nil, nil, &UserError{
				Message: fmt.Sprintf("unsupported file type: .%s", ext),
			}
		}
		return nil, nil, &UserError{Message: "the uploaded file has no recognizable type"}
	}
	return nil, nil, &UserError{Message: "the URL was not recognized by any configured provider"}
}

// backfill copies parse metadata onto the parent media item, first writer
// wins: values the operator (or an earlier file) already set are kept.
func (p *Pipeline) backfill(media *models.Media, meta *Meta) {
	if media.Duration == 0 && meta.Duration > 0 {
		media.Duration = meta.Duration
	}
	if !media.HasTitle() && meta.Title != "" {
		media.Title = meta.Title
	}
	if !media.HasDescription() && meta.Description != "" {
		media.Description = meta.Description
	}
	if meta.Type.Playable() && (media.Type == "" || (media.Type == models.MediaTypeAudio && meta.Type == models.FileTypeVideo)) {
		media.Type = models.MediaType(meta.Type)
	}
}

// ensureThumbnail gives the media item a thumbnail when it has none.
// Fetching a remote thumbnail is best-effort: a failed download is logged
// and ingestion continues. Failing to generate from bytes we do have is a
// real error and aborts.
func (p *Pipeline) ensureThumbnail(ctx context.Context, media *models.Media, meta *Meta, log *slog.Logger) error {
	if p.thumbs == nil || p.thumbs.Exists(media.ID) {
		return nil
	}

	image := meta.ThumbnailData
	if image == nil && meta.ThumbnailURL != "" {
		fetched, err := p.fetchThumbnail(ctx, meta.ThumbnailURL)
		if err != nil {
			log.Warn("thumbnail fetch failed, continuing without",
				"url", meta.ThumbnailURL, "error", err)
		} else {
			image = fetched
		}
	}
	if image == nil {
		return nil
	}

	if err := p.thumbs.Generate(ctx, media.ID, image); err != nil {
		return fmt.Errorf("generate thumbnails: %w", err)
	}
	return nil
}

func (p *Pipeline) fetchThumbnail(ctx context.Context, url string) ([]byte, error) {
	resp, err := p.client.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 16<<20))
}

// DeleteMediaFile removes a media file row and, best-effort, its stored
// asset. The parent media item's type is recomputed from the files that
// remain.
func (p *Pipeline) DeleteMediaFile(ctx context.Context, file *models.MediaFile) error {
	if file == nil || file.ID.IsZero() {
		return fmt.Errorf("delete media file: file must be persisted")
	}
	log := p.logger.With("file_id", file.ID)

	backend, err := p.backends.GetByID(ctx, file.StorageID)
	if err != nil {
		return fmt.Errorf("load backend for media file: %w", err)
	}
	if backend != nil {
		eng, err := p.registry.HydrateOne(backend)
		if err != nil {
			return err
		}
		removed, err := eng.Delete(ctx, file.UniqueID)
		if err != nil {
			log.Warn("asset removal failed, deleting row anyway",
				"engine", eng.Type(), "unique_id", file.UniqueID, "error", err)
		} else if !removed {
			log.Debug("asset already absent", "engine", eng.Type(), "unique_id", file.UniqueID)
		}
	}

	if err := p.files.Delete(ctx, file.ID); err != nil {
		return fmt.Errorf("delete media file row: %w", err)
	}

	media, err := p.media.GetByIDWithFiles(ctx, file.MediaID)
	if err != nil || media == nil {
		return err
	}
	media.UpdateTypeFromFiles()
	if err := p.media.Update(ctx, media); err != nil {
		return fmt.Errorf("update media item after file delete: %w", err)
	}
	return nil
}

// PlaybackURIs enumerates playback locations for a stored media file by
// delegating to its owning engine.
func (p *Pipeline) PlaybackURIs(ctx context.Context, file *models.MediaFile) ([]string, error) {
	backend, err := p.backends.GetByID(ctx, file.StorageID)
	if err != nil {
		return nil, fmt.Errorf("load backend for media file: %w", err)
	}
	if backend == nil {
		return nil, fmt.Errorf("media file %s references missing backend %s", file.ID, file.StorageID)
	}
	eng, err := p.registry.HydrateOne(backend)
	if err != nil {
		return nil, err
	}
	return eng.PlaybackURIs(file), nil
}
