package vimeo

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipdeck/clipdeck/internal/engine"
	"github.com/clipdeck/clipdeck/internal/httpclient"
	"github.com/clipdeck/clipdeck/internal/models"
)

func testEngine(t *testing.T, endpoint string) *Engine {
	t.Helper()

	backend := &models.StorageBackend{EngineType: EngineType, DisplayName: "Vimeo"}
	backend.ID = models.NewULID()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e, err := New(backend, Options{
		Client: httpclient.New(httpclient.Config{
			Timeout:       5 * time.Second,
			RetryAttempts: 1,
			RetryDelay:    time.Millisecond,
			Logger:        logger,
		}),
		Logger:         logger,
		OEmbedEndpoint: endpoint,
	})
	require.NoError(t, err)
	return e
}

func TestParseRecognizesURLShapes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"title":"Short Film"}`))
	}))
	defer srv.Close()
	e := testEngine(t, srv.URL)
	ctx := context.Background()

	tests := []struct {
		name string
		url  string
	}{
		{"plain", "https://vimeo.com/76979871"},
		{"www", "https://www.vimeo.com/76979871"},
		{"player", "https://player.vimeo.com/video/76979871"},
		{"channel", "https://vimeo.com/channels/staffpicks/76979871"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, err := e.Parse(ctx, engine.Input{URL: tt.url})
			require.NoError(t, err)
			assert.Equal(t, "76979871", meta.UniqueID)
			assert.Equal(t, models.FileTypeVideo, meta.Type)
		})
	}
}

func TestParseRejectsOthers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()
	e := testEngine(t, srv.URL)
	ctx := context.Background()

	_, err := e.Parse(ctx, engine.Input{URL: "https://youtu.be/dQw4w9WgXcQ"})
	assert.ErrorIs(t, err, engine.ErrUnsuitable)

	_, err = e.Parse(ctx, engine.Input{File: engine.UploadFromBytes("clip.mp4", []byte("x"))})
	assert.ErrorIs(t, err, engine.ErrUnsuitable)
}

func TestParseFillsDuration(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"title":"Short Film","description":"A film.","duration":362,"thumbnail_url":"https://i.vimeocdn.com/video/t.jpg"}`))
	}))
	defer srv.Close()
	e := testEngine(t, srv.URL)

	meta, err := e.Parse(context.Background(), engine.Input{URL: "https://vimeo.com/76979871"})
	require.NoError(t, err)
	assert.Equal(t, "Short Film", meta.Title)
	assert.Equal(t, "A film.", meta.Description)
	assert.Equal(t, 362, meta.Duration)
	assert.Equal(t, "https://i.vimeocdn.com/video/t.jpg", meta.ThumbnailURL)
}

func TestParseSurvivesOEmbedFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()
	e := testEngine(t, srv.URL)

	meta, err := e.Parse(context.Background(), engine.Input{URL: "https://vimeo.com/76979871"})
	require.NoError(t, err)
	assert.Equal(t, "76979871", meta.UniqueID)
	assert.Empty(t, meta.Title)
}

func TestPlaybackURIs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()
	e := testEngine(t, srv.URL)

	file := &models.MediaFile{UniqueID: "76979871"}
	uris := e.PlaybackURIs(file)
	require.Len(t, uris, 2)
	assert.Equal(t, "https://player.vimeo.com/video/76979871", uris[0])
	assert.Equal(t, "https://vimeo.com/76979871", uris[1])
}
