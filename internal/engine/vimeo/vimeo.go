// Package vimeo implements an embed storage engine for Vimeo links.
package vimeo

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"regexp"

	"github.com/clipdeck/clipdeck/internal/engine"
	"github.com/clipdeck/clipdeck/internal/httpclient"
	"github.com/clipdeck/clipdeck/internal/models"
)

// EngineType is the discriminator stored on backend rows.
const EngineType = "vimeo"

const oembedEndpoint = "https://vimeo.com/api/oembed.json"

// patterns recognize pasted Vimeo URLs. Capture group 1 is the numeric
// video id.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`^https?://(?:www\.)?vimeo\.com/(\d+)`),
	regexp.MustCompile(`^https?://player\.vimeo\.com/video/(\d+)`),
	regexp.MustCompile(`^https?://(?:www\.)?vimeo\.com/channels/[\w-]+/(\d+)`),
}

// Options carries process-wide settings the factory closes over.
type Options struct {
	Client *httpclient.Client
	Logger *slog.Logger

	// OEmbedEndpoint overrides the metadata endpoint, for tests.
	OEmbedEndpoint string
}

// Descriptor returns the registry descriptor. Like the other embed
// providers, Vimeo runs after file-based engines and once per deployment.
func Descriptor(opts Options) engine.Descriptor {
	return engine.Descriptor{
		Type:        EngineType,
		DisplayName: "Vimeo",
		Singleton:   true,
		TryAfter:    []string{"localfile"},
		New: func(backend *models.StorageBackend) (engine.Engine, error) {
			return New(backend, opts)
		},
	}
}

// Engine claims Vimeo URLs and resolves their metadata over oEmbed.
type Engine struct {
	engine.Base
	client   *httpclient.Client
	endpoint string
	logger   *slog.Logger
}

var _ engine.Engine = (*Engine)(nil)

// New hydrates a Vimeo engine from a backend row.
func New(backend *models.StorageBackend, opts Options) (*Engine, error) {
	client := opts.Client
	if client == nil {
		client = httpclient.NewWithDefaults()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	endpoint := opts.OEmbedEndpoint
	if endpoint == "" {
		endpoint = oembedEndpoint
	}
	return &Engine{
		Base:     engine.NewBase(backend),
		client:   client,
		endpoint: endpoint,
		logger:   logger.With("component", "engine", "engine", EngineType),
	}, nil
}

// Type returns the engine-type discriminator.
func (e *Engine) Type() string { return EngineType }

// Parse claims recognizable Vimeo URLs. Vimeo's oEmbed carries duration and
// description, so a successful lookup backfills both; a failed lookup still
// accepts the link.
func (e *Engine) Parse(ctx context.Context, in engine.Input) (*engine.Meta, error) {
	videoID, err := engine.MatchEmbedURL(in, patterns)
	if err != nil {
		return nil, err
	}

	meta := &engine.Meta{
		Type:        models.FileTypeVideo,
		UniqueID:    videoID,
		DisplayName: videoID,
	}

	doc, err := engine.FetchOEmbed(ctx, e.client, e.oembedURL(videoID))
	if err != nil {
		e.logger.Warn("oembed lookup failed, ingesting without metadata",
			"video_id", videoID, "error", err)
		return meta, nil
	}
	meta.Title = doc.Title
	meta.Description = doc.Description
	meta.ThumbnailURL = doc.ThumbnailURL
	meta.Width = doc.Width
	meta.Height = doc.Height
	if doc.Duration > 0 {
		meta.Duration = int(math.Round(doc.Duration))
	}
	if doc.Title != "" {
		meta.DisplayName = doc.Title
	}
	return meta, nil
}

func (e *Engine) oembedURL(videoID string) string {
	q := url.Values{}
	q.Set("url", VideoURL(videoID))
	return e.endpoint + "?" + q.Encode()
}

// Store has nothing to persist; the unique id was fixed at parse time.
func (e *Engine) Store(_ context.Context, _ *models.MediaFile, _ engine.Input, meta *engine.Meta) (string, error) {
	if meta == nil || meta.UniqueID == "" {
		return "", engine.NewStorageError("store", fmt.Errorf("vimeo store called without a video id"))
	}
	return meta.UniqueID, nil
}

// Delete cannot remove a video hosted on Vimeo.
func (e *Engine) Delete(context.Context, string) (bool, error) {
	return false, nil
}

// PlaybackURIs returns the embed player URL first, then the video page.
func (e *Engine) PlaybackURIs(file *models.MediaFile) []string {
	return []string{
		"https://player.vimeo.com/video/" + file.UniqueID,
		VideoURL(file.UniqueID),
	}
}

// VideoURL builds the canonical page URL for a video id.
func VideoURL(videoID string) string {
	return "https://vimeo.com/" + videoID
}
