// Package youtube implements an embed storage engine for YouTube links.
// Nothing is stored locally: the video id is the unique id and playback
// happens through YouTube's player.
package youtube

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
const EngineType = "youtube"

const oembedEndpoint = "https://www.youtube.com/oembed"

// patterns recognize the URL shapes users paste. Capture group 1 is the
// video id.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`^https?://(?:www\.|m\.)?youtube\.com/watch\?(?:.*&)?v=([\w-]{6,})`),
	regexp.MustCompile(`^https?://youtu\.be/([\w-]{6,})`),
	regexp.MustCompile(`^https?://(?:www\.)?youtube\.com/embed/([\w-]{6,})`),
	regexp.MustCompile(`^https?://(?:www\.)?youtube\.com/shorts/([\w-]{6,})`),
}

// Options carries process-wide settings the factory closes over.
type Options struct {
	Client *httpclient.Client
	Logger *slog.Logger

	// OEmbedEndpoint overrides the metadata endpoint, for tests.
	OEmbedEndpoint string
}

// Descriptor returns the registry descriptor. One YouTube backend per
// deployment: the engine holds no instance state worth splitting.
func Descriptor(opts Options) engine.Descriptor {
	return engine.Descriptor{
		Type:        EngineType,
		DisplayName: "YouTube",
		Singleton:   true,
		TryAfter:    []string{"localfile"},
		New: func(backend *models.StorageBackend) (engine.Engine, error) {
			return New(backend, opts)
		},
	}
}

// Engine claims YouTube URLs and resolves their metadata over oEmbed.
type Engine struct {
	engine.Base
	client   *httpclient.Client
	endpoint string
	logger   *slog.Logger
}

var _ engine.Engine = (*Engine)(nil)

// New hydrates a YouTube engine from a backend row.
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

// Parse claims recognizable YouTube URLs. Metadata lookup is best-effort:
// when oEmbed fails the link is still accepted, just without title or
// thumbnail.
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
	q.Set("url", WatchURL(videoID))
	q.Set("format", "json")
	return e.endpoint + "?" + q.Encode()
}

// Store has nothing to persist; the unique id was fixed at parse time.
func (e *Engine) Store(_ context.Context, _ *models.MediaFile, _ engine.Input, meta *engine.Meta) (string, error) {
	if meta == nil || meta.UniqueID == "" {
		return "", engine.NewStorageError("store", fmt.Errorf("youtube store called without a video id"))
	}
	return meta.UniqueID, nil
}

// Delete cannot remove a video hosted on YouTube.
func (e *Engine) Delete(context.Context, string) (bool, error) {
	return false, nil
}

// PlaybackURIs returns the embed player URL first, then the watch page.
func (e *Engine) PlaybackURIs(file *models.MediaFile) []string {
	return []string{
		"https://www.youtube.com/embed/" + file.UniqueID,
		WatchURL(file.UniqueID),
	}
}

// WatchURL builds the canonical watch-page URL for a video id.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}
