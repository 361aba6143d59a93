package localfile

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipdeck/clipdeck/internal/engine"
	"github.com/clipdeck/clipdeck/internal/models"
)

func testEngine(t *testing.T) (*Engine, string) {
	t.Helper()
	dir := t.TempDir()

	backend := &models.StorageBackend{
		EngineType:  EngineType,
		DisplayName: "Local",
		Config: models.ConfigMap{
			ConfigHTTPBaseURL: "https://media.example.com",
		},
	}
	backend.ID = models.NewULID()

	e, err := New(backend, Options{
		MediaDir: dir,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return e, dir
}

func persistedFile(displayName, container string) *models.MediaFile {
	f := &models.MediaFile{
		Type:        models.FileTypeVideo,
		Container:   container,
		DisplayName: displayName,
	}
	f.ID = models.NewULID()
	return f
}

func TestParseAcceptsKnownExtensions(t *testing.T) {
	e, _ := testEngine(t)
	ctx := context.Background()

	meta, err := e.Parse(ctx, engine.Input{File: engine.UploadFromBytes("clip.mp4", []byte("x"))})
	require.NoError(t, err)
	assert.Equal(t, models.FileTypeVideo, meta.Type)
	assert.Equal(t, "mp4", meta.Container)

	_, err = e.Parse(ctx, engine.Input{File: engine.UploadFromBytes("doc.pdf", []byte("x"))})
	assert.ErrorIs(t, err, engine.ErrUnsuitable)

	_, err = e.Parse(ctx, engine.Input{URL: "https://example.com/watch?v=x"})
	assert.ErrorIs(t, err, engine.ErrUnsuitable)
}

func TestStoreWritesIDDerivedName(t *testing.T) {
	e, dir := testEngine(t)
	ctx := context.Background()

	file := persistedFile("My Clip.mp4", "mp4")
	content := []byte("video bytes")
	in := engine.Input{File: engine.UploadFromBytes("My Clip.mp4", content)}

	uniqueID, err := e.Store(ctx, file, in, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uniqueID, strings.ToLower(file.ID.String())))
	assert.True(t, strings.HasSuffix(uniqueID, ".mp4"))

	stored, err := os.ReadFile(filepath.Join(dir, uniqueID))
	require.NoError(t, err)
	assert.Equal(t, content, stored)
	assert.Equal(t, int64(len(content)), file.Size)
}

func TestStoreRequiresUpload(t *testing.T) {
	e, _ := testEngine(t)

	file := persistedFile("clip.mp4", "mp4")
	_, err := e.Store(context.Background(), file, engine.Input{URL: "https://x"}, nil)

	var se *engine.StorageError
	assert.ErrorAs(t, err, &se)
}

func TestDelete(t *testing.T) {
	e, _ := testEngine(t)
	ctx := context.Background()

	file := persistedFile("clip.mp4", "mp4")
	in := engine.Input{File: engine.UploadFromBytes("clip.mp4", []byte("x"))}
	uniqueID, err := e.Store(ctx, file, in, nil)
	require.NoError(t, err)

	removed, err := e.Delete(ctx, uniqueID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = e.Delete(ctx, uniqueID)
	require.NoError(t, err)
	assert.False(t, removed, "second delete finds nothing")

	removed, err = e.Delete(ctx, "")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestPlaybackURIs(t *testing.T) {
	e, dir := testEngine(t)

	file := persistedFile("clip.mp4", "mp4")
	file.UniqueID = "abc.mp4"

	uris := e.PlaybackURIs(file)
	require.Len(t, uris, 2)
	assert.Equal(t, "https://media.example.com/abc.mp4", uris[0])
	assert.Equal(t, "file://"+filepath.Join(dir, "abc.mp4"), uris[1])
}

func TestNewRequiresDirectory(t *testing.T) {
	backend := &models.StorageBackend{EngineType: EngineType}
	backend.ID = models.NewULID()

	_, err := New(backend, Options{})
	assert.Error(t, err)
}
