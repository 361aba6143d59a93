// Package remoteftp implements a storage engine that uploads media files to
// a remote FTP server and serves them over a separate HTTP frontend.
package remoteftp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/textproto"
	"path"
	"strconv"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/clipdeck/clipdeck/internal/engine"
	"github.com/clipdeck/clipdeck/internal/models"
	"github.com/clipdeck/clipdeck/internal/urlutil"
)

// EngineType is the discriminator stored on backend rows.
const EngineType = "remoteftp"

// Backend config keys.
const (
	ConfigHost       = "host"
	ConfigPort       = "port"
	ConfigUsername   = "username"
	ConfigPassword   = "password"
	ConfigUploadDir  = "upload_dir"
	ConfigHTTPBase   = "http_base_url"
	ConfigDialSecs   = "dial_timeout_seconds"
	defaultPort      = "21"
	defaultDialSecs  = 15
	defaultUploadDir = "."
)

// conn is the slice of the FTP client the engine uses; carved out so tests
// can run without a live server.
type conn interface {
	Stor(path string, r io.Reader) error
	Delete(path string) error
	FileSize(path string) (int64, error)
	Quit() error
}

type dialFunc func(ctx context.Context, e *Engine) (conn, error)

func dialFTP(ctx context.Context, e *Engine) (conn, error) {
	c, err := ftp.Dial(e.addr,
		ftp.DialWithContext(ctx),
		ftp.DialWithTimeout(e.dialTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("dial ftp %s: %w", e.addr, err)
	}
	if err := c.Login(e.username, e.password); err != nil {
		_ = c.Quit()
		return nil, fmt.Errorf("ftp login as %q: %w", e.username, err)
	}
	return c, nil
}

// Options carries process-wide settings the factory closes over.
type Options struct {
	// Extensions maps accepted file extensions to file types. Nil means
	// engine.DefaultExtensions.
	Extensions engine.ExtensionSet

	Logger *slog.Logger
}

// Descriptor returns the registry descriptor for the FTP engine. FTP
// backends sit before local storage: when an operator configures one, it is
// because uploads should land there.
func Descriptor(opts Options) engine.Descriptor {
	return engine.Descriptor{
		Type:        EngineType,
		DisplayName: "Remote FTP Storage",
		TryBefore:   []string{"localfile"},
		DefaultConfig: models.ConfigMap{
			ConfigHost:      "",
			ConfigPort:      defaultPort,
			ConfigUsername:  "",
			ConfigPassword:  "",
			ConfigUploadDir: defaultUploadDir,
			ConfigHTTPBase:  "",
		},
		New: func(backend *models.StorageBackend) (engine.Engine, error) {
			return New(backend, opts)
		},
	}
}

// Engine stores media files on a remote FTP server.
type Engine struct {
	engine.Base
	addr        string
	username    string
	password    string
	uploadDir   string
	baseURL     string
	dialTimeout time.Duration
	exts        engine.ExtensionSet
	logger      *slog.Logger
	dial        dialFunc
}

var _ engine.Engine = (*Engine)(nil)

// New hydrates an FTP engine from a backend row.
func New(backend *models.StorageBackend, opts Options) (*Engine, error) {
	host := backend.Config.Get(ConfigHost, "")
	if host == "" {
		return nil, fmt.Errorf("remoteftp backend %s: host is required", backend.ID)
	}
	dialSecs := defaultDialSecs
	if raw := backend.Config.Get(ConfigDialSecs, ""); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return nil, fmt.Errorf("remoteftp backend %s: invalid %s %q", backend.ID, ConfigDialSecs, raw)
		}
		dialSecs = parsed
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
		Base:        engine.NewBase(backend),
		addr:        host + ":" + backend.Config.Get(ConfigPort, defaultPort),
		username:    backend.Config.Get(ConfigUsername, "anonymous"),
		password:    backend.Config.Get(ConfigPassword, "anonymous"),
		uploadDir:   backend.Config.Get(ConfigUploadDir, defaultUploadDir),
		baseURL:     urlutil.NormalizeBaseURL(backend.Config.Get(ConfigHTTPBase, "")),
		dialTimeout: time.Duration(dialSecs) * time.Second,
		exts:        exts,
		logger:      logger.With("component", "engine", "engine", EngineType),
		dial:        dialFTP,
	}, nil
}

// Type returns the engine-type discriminator.
func (e *Engine) Type() string { return EngineType }

// Parse accepts file uploads with a recognized extension.
func (e *Engine) Parse(_ context.Context, in engine.Input) (*engine.Meta, error) {
	return engine.ParseUpload(in, e.exts)
}

// Store uploads the file under an id-derived name and returns that name as
// the unique id.
func (e *Engine) Store(ctx context.Context, file *models.MediaFile, in engine.Input, _ *engine.Meta) (string, error) {
	if in.File == nil {
		return "", engine.NewStorageError("store", fmt.Errorf("remoteftp requires a file upload"))
	}
	name := engine.StoredFileName(file)

	c, err := e.dial(ctx, e)
	if err != nil {
		return "", engine.NewStorageError("connect", err)
	}
	defer func() { _ = c.Quit() }()

	reader, err := in.File.Open()
	if err != nil {
		return "", engine.NewStorageError("open upload", err)
	}
	defer func() { _ = reader.Close() }()

	remote := path.Join(e.uploadDir, name)
	if err := c.Stor(remote, reader); err != nil {
		return "", engine.NewStorageError("upload media file", err)
	}
	if size, serr := c.FileSize(remote); serr == nil && size > 0 {
		file.Size = size
	}
	e.logger.Debug("uploaded media file", "file_id", file.ID, "remote", remote)
	return name, nil
}

// Delete removes the remote file. A 550 (file unavailable) reports
// false, nil so repeated deletes stay quiet.
func (e *Engine) Delete(ctx context.Context, uniqueID string) (bool, error) {
	if uniqueID == "" {
		return false, nil
	}
	c, err := e.dial(ctx, e)
	if err != nil {
		return false, engine.NewStorageError("connect", err)
	}
	defer func() { _ = c.Quit() }()

	if err := c.Delete(path.Join(e.uploadDir, uniqueID)); err != nil {
		var proto *textproto.Error
		if errors.As(err, &proto) && proto.Code == ftp.StatusFileUnavailable {
			return false, nil
		}
		return false, engine.NewStorageError("remove media file", err)
	}
	return true, nil
}

// PlaybackURIs returns the HTTP frontend URL for the stored file, plus an
// ftp:// fallback when no frontend is configured.
func (e *Engine) PlaybackURIs(file *models.MediaFile) []string {
	remote := path.Join(e.uploadDir, file.UniqueID)
	var uris []string
	if e.baseURL != "" {
		uris = append(uris, urlutil.JoinPath(e.baseURL, file.UniqueID))
	}
	uris = append(uris, fmt.Sprintf("ftp://%s/%s", e.addr, remote))
	return uris
}
