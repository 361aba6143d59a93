// Package localfile implements the default storage engine: uploads are
// written into a sandboxed directory on the local filesystem and served from
// a configurable public base URL.
package localfile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/clipdeck/clipdeck/internal/engine"
	"github.com/clipdeck/clipdeck/internal/models"
	"github.com/clipdeck/clipdeck/internal/storage"
	"github.com/clipdeck/clipdeck/internal/urlutil"
)

// EngineType is the discriminator stored on backend rows.
const EngineType = "localfile"

// Backend config keys.
const (
	// ConfigPath overrides the storage directory for this backend
	// instance. Empty means the process-wide media directory.
	ConfigPath = "path"

	// ConfigHTTPBaseURL is the public base URL files are served from.
	ConfigHTTPBaseURL = "http_base_url"
)

// Options carries process-wide settings the factory closes over.
type Options struct {
	// MediaDir is the default storage directory when a backend does not
	// override it.
	MediaDir string

	// PublicBaseURL is the default public base URL.
	PublicBaseURL string

	// Extensions maps accepted file extensions to file types. Nil means
	// engine.DefaultExtensions.
	Extensions engine.ExtensionSet

	Logger *slog.Logger
}

// Descriptor returns the registry descriptor for the local-file engine.
func Descriptor(opts Options) engine.Descriptor {
	return engine.Descriptor{
		Type:        EngineType,
		DisplayName: "Local File Storage",
		DefaultConfig: models.ConfigMap{
			ConfigPath:        "",
			ConfigHTTPBaseURL: opts.PublicBaseURL,
		},
		New: func(backend *models.StorageBackend) (engine.Engine, error) {
			return New(backend, opts)
		},
	}
}

// Engine stores media files on the local filesystem.
type Engine struct {
	engine.Base
	sandbox *storage.Sandbox
	baseURL string
	exts    engine.ExtensionSet
	logger  *slog.Logger
}

var _ engine.Engine = (*Engine)(nil)

// New hydrates a local-file engine from a backend row.
func New(backend *models.StorageBackend, opts Options) (*Engine, error) {
	dir := backend.Config.Get(ConfigPath, opts.MediaDir)
	if dir == "" {
		return nil, fmt.Errorf("localfile backend %s: no storage directory configured", backend.ID)
	}
	sandbox, err := storage.NewSandbox(dir)
	if err != nil {
		return nil, fmt.Errorf("localfile backend %s: %w", backend.ID, err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	exts := opts.Extensions
	if exts == nil {
		exts = engine.DefaultExtensions()
	}
	return &Engine{
		Base:    engine.NewBase(backend),
		sandbox: sandbox,
		baseURL: urlutil.NormalizeBaseURL(backend.Config.Get(ConfigHTTPBaseURL, opts.PublicBaseURL)),
		exts:    exts,
		logger:  logger.With("component", "engine", "engine", EngineType),
	}, nil
}

// Type returns the engine-type discriminator.
func (e *Engine) Type() string { return EngineType }

// Parse accepts file uploads with a recognized extension.
func (e *Engine) Parse(_ context.Context, in engine.Input) (*engine.Meta, error) {
	return engine.ParseUpload(in, e.exts)
}

// Store writes the upload into the sandbox under an id-derived name and
// returns that name as the unique id.
func (e *Engine) Store(_ context.Context, file *models.MediaFile, in engine.Input, _ *engine.Meta) (string, error) {
	if in.File == nil {
		return "", engine.NewStorageError("store", fmt.Errorf("localfile requires a file upload"))
	}
	name := engine.StoredFileName(file)
	reader, err := in.File.Open()
	if err != nil {
		return "", engine.NewStorageError("open upload", err)
	}
	defer func() { _ = reader.Close() }()

	if err := e.sandbox.AtomicWriteReader(name, reader); err != nil {
		return "", engine.NewStorageError("write media file", err)
	}
	if size, serr := e.sandbox.Size(name); serr == nil {
		file.Size = size
	}
	e.logger.Debug("stored media file", "file_id", file.ID, "name", name)
	return name, nil
}

// Delete removes the stored file. A missing file reports false, nil.
func (e *Engine) Delete(_ context.Context, uniqueID string) (bool, error) {
	if uniqueID == "" {
		return false, nil
	}
	exists, err := e.sandbox.Exists(uniqueID)
	if err != nil {
		return false, engine.NewStorageError("stat media file", err)
	}
	if !exists {
		return false, nil
	}
	if err := e.sandbox.Remove(uniqueID); err != nil {
		return false, engine.NewStorageError("remove media file", err)
	}
	return true, nil
}

// PlaybackURIs returns the public URL first, then the on-disk location.
func (e *Engine) PlaybackURIs(file *models.MediaFile) []string {
	var uris []string
	if e.baseURL != "" {
		uris = append(uris, urlutil.JoinPath(e.baseURL, file.UniqueID))
	}
	if path, err := e.sandbox.ResolvePath(file.UniqueID); err == nil {
		uris = append(uris, "file://"+path)
	}
	return uris
}
