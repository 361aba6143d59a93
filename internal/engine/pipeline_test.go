package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/clipdeck/clipdeck/internal/httpclient"
	"github.com/clipdeck/clipdeck/internal/models"
	"github.com/clipdeck/clipdeck/internal/repository"
)

// probe captures engine behavior and call counts shared across hydrations.
// The pipeline re-hydrates engines on every call, so counters must outlive
// individual instances.
type probe struct {
	parseCalls  int
	storeCalls  int
	deleted     []string
	parseFn     func(in Input) (*Meta, error)
	storeFn     func(file *models.MediaFile) (string, error)
	postFn      func() error
	transcodeFn func() error
}

type probeEngine struct {
	Base
	typ string
	p   *probe
}

func (e *probeEngine) Type() string { return e.typ }

func (e *probeEngine) Parse(_ context.Context, in Input) (*Meta, error) {
	e.p.parseCalls++
	if e.p.parseFn != nil {
		return e.p.parseFn(in)
	}
	return nil, ErrUnsuitable
}

func (e *probeEngine) Store(_ context.Context, file *models.MediaFile, _ Input, _ *Meta) (string, error) {
	e.p.storeCalls++
	if e.p.storeFn != nil {
		return e.p.storeFn(file)
	}
	return "asset-" + file.ID.String(), nil
}

func (e *probeEngine) Postprocess(context.Context, *models.MediaFile) error {
	if e.p.postFn != nil {
		return e.p.postFn()
	}
	return nil
}

func (e *probeEngine) Transcode(context.Context, *models.MediaFile) error {
	if e.p.transcodeFn != nil {
		return e.p.transcodeFn()
	}
	return ErrCannotTranscode
}

func (e *probeEngine) Delete(_ context.Context, uniqueID string) (bool, error) {
	e.p.deleted = append(e.p.deleted, uniqueID)
	return true, nil
}

func (e *probeEngine) PlaybackURIs(file *models.MediaFile) []string {
	return []string{fmt.Sprintf("%s://%s", e.typ, file.UniqueID)}
}

func probeDescriptor(typ string, p *probe) Descriptor {
	return Descriptor{
		Type:        typ,
		DisplayName: typ,
		New: func(backend *models.StorageBackend) (Engine, error) {
			return &probeEngine{Base: NewBase(backend), typ: typ, p: p}, nil
		},
	}
}

// acceptUploads returns a parse func in the shape of a file engine: claim
// uploads with a known extension, decline everything else.
func acceptUploads(exts ExtensionSet) func(in Input) (*Meta, error) {
	return func(in Input) (*Meta, error) {
		return ParseUpload(in, exts)
	}
}

type fakeThumbs struct {
	exists    bool
	generated int
	genErr    error
}

func (f *fakeThumbs) Generate(_ context.Context, _ models.ULID, _ []byte) error {
	if f.genErr != nil {
		return f.genErr
	}
	f.generated++
	return nil
}

func (f *fakeThumbs) Exists(models.ULID) bool { return f.exists }

type pipeFixture struct {
	db     *gorm.DB
	reg    *Registry
	pipe   *Pipeline
	thumbs *fakeThumbs
}

func newPipeFixture(t *testing.T) *pipeFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.StorageBackend{}, &models.Media{}, &models.MediaFile{}))

	thumbs := &fakeThumbs{}
	reg := NewRegistry(testLogger())
	client := httpclient.New(httpclient.Config{
		Timeout:       5 * time.Second,
		RetryAttempts: 1,
		RetryDelay:    time.Millisecond,
		Logger:        testLogger(),
	})

	pipe := NewPipeline(
		reg,
		repository.NewStorageBackendRepository(db),
		repository.NewMediaRepository(db),
		repository.NewMediaFileRepository(db),
		thumbs,
		client,
		testLogger(),
	)
	return &pipeFixture{db: db, reg: reg, pipe: pipe, thumbs: thumbs}
}

func (f *pipeFixture) addBackend(t *testing.T, typ string, p *probe) *models.StorageBackend {
	t.Helper()
	require.NoError(t, f.reg.Register(probeDescriptor(typ, p)))
	backend := &models.StorageBackend{EngineType: typ, DisplayName: typ}
	require.NoError(t, f.db.Create(backend).Error)
	return backend
}

func (f *pipeFixture) addMedia(t *testing.T, title string) *models.Media {
	t.Helper()
	media := &models.Media{Title: title}
	require.NoError(t, f.db.Create(media).Error)
	return media
}

func (f *pipeFixture) fileCount(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&models.MediaFile{}).Count(&n).Error)
	return n
}

func mp4Upload() Input {
	return Input{File: UploadFromBytes("holiday.mp4", []byte("not really an mp4"))}
}

func TestAddNewMediaFileLaterEngineWins(t *testing.T) {
	f := newPipeFixture(t)
	ctx := context.Background()

	first := &probe{}
	second := &probe{}
	third := &probe{parseFn: acceptUploads(DefaultExtensions())}
	f.addBackend(t, "alpha", first)
	f.addBackend(t, "beta", second)
	backend := f.addBackend(t, "gamma", third)

	media := f.addMedia(t, "Holiday")
	file, err := f.pipe.AddNewMediaFile(ctx, media, mp4Upload())
	require.NoError(t, err)

	// engines before the winner were asked but never stored anything
	assert.Equal(t, 1, first.parseCalls)
	assert.Equal(t, 1, second.parseCalls)
	assert.Zero(t, first.storeCalls)
	assert.Zero(t, second.storeCalls)
	assert.Equal(t, 1, third.storeCalls)

	assert.Equal(t, backend.ID, file.StorageID)
	assert.False(t, file.StorageID.IsZero())
	assert.NotEmpty(t, file.UniqueID)
	assert.Equal(t, models.FileTypeVideo, file.Type)
	assert.Equal(t, "mp4", file.Container)
}

func TestAddNewMediaFileUnsupportedExtension(t *testing.T) {
	f := newPipeFixture(t)
	ctx := context.Background()

	f.addBackend(t, "alpha", &probe{parseFn: acceptUploads(DefaultExtensions())})
	media := f.addMedia(t, "Holiday")

	_, err := f.pipe.AddNewMediaFile(ctx, media, Input{
		File: UploadFromBytes("notes.xyz", []byte("plain text")),
	})
	require.Error(t, err)

	msg, ok := UserMessage(err)
	require.True(t, ok, "expected a user-presentable error, got %v", err)
	assert.Contains(t, msg, ".xyz")

	assert.Zero(t, f.fileCount(t), "no media file row may survive a failed ingest")
}

func TestAddNewMediaFileUnrecognizedURL(t *testing.T) {
	f := newPipeFixture(t)
	ctx := context.Background()

	f.addBackend(t, "alpha", &probe{})
	media := f.addMedia(t, "Holiday")

	_, err := f.pipe.AddNewMediaFile(ctx, media, Input{URL: "https://example.com/watch?v=abc"})
	require.Error(t, err)
	_, ok := UserMessage(err)
	assert.True(t, ok)
	assert.Zero(t, f.fileCount(t))
}

func TestAddNewMediaFileEmptyInput(t *testing.T) {
	f := newPipeFixture(t)

	media := f.addMedia(t, "Holiday")
	_, err := f.pipe.AddNewMediaFile(context.Background(), media, Input{})
	require.Error(t, err)
	_, ok := UserMessage(err)
	assert.True(t, ok)
}

func TestAddNewMediaFileBackfillKeepsOperatorValues(t *testing.T) {
	f := newPipeFixture(t)
	ctx := context.Background()

	p := &probe{parseFn: func(in Input) (*Meta, error) {
		return &Meta{
			Type:        models.FileTypeVideo,
			Title:       "Provider Title",
			Description: "Provider description",
			Duration:    42,
			DisplayName: "provider.mp4",
		}, nil
	}}
	f.addBackend(t, "alpha", p)

	media := f.addMedia(t, "Keep Me")
	_, err := f.pipe.AddNewMediaFile(ctx, media, Input{URL: "https://example.com/v/1"})
	require.NoError(t, err)

	var reloaded models.Media
	require.NoError(t, f.db.First(&reloaded, "id = ?", media.ID).Error)
	assert.Equal(t, "Keep Me", reloaded.Title, "backfill must not overwrite an operator-set title")
	assert.Equal(t, "Provider description", reloaded.Description)
	assert.Equal(t, 42, reloaded.Duration)
	assert.Equal(t, models.MediaTypeVideo, reloaded.Type)
}

func TestAddNewMediaFileStoreFailureLeavesNoRow(t *testing.T) {
	f := newPipeFixture(t)
	ctx := context.Background()

	p := &probe{
		parseFn: acceptUploads(DefaultExtensions()),
		storeFn: func(*models.MediaFile) (string, error) {
			return "", NewStorageError("write", errors.New("disk full"))
		},
	}
	f.addBackend(t, "alpha", p)

	media := f.addMedia(t, "Holiday")
	_, err := f.pipe.AddNewMediaFile(ctx, media, mp4Upload())

	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Zero(t, f.fileCount(t))
}

func TestAddNewMediaFileMissingUniqueIDFails(t *testing.T) {
	f := newPipeFixture(t)
	ctx := context.Background()

	p := &probe{
		parseFn: acceptUploads(DefaultExtensions()),
		storeFn: func(*models.MediaFile) (string, error) { return "", nil },
	}
	f.addBackend(t, "alpha", p)

	media := f.addMedia(t, "Holiday")
	_, err := f.pipe.AddNewMediaFile(ctx, media, mp4Upload())

	var se *StorageError
	require.ErrorAs(t, err, &se)
	assert.Zero(t, f.fileCount(t))
}

func TestAddNewMediaFileKeepsParseUniqueID(t *testing.T) {
	f := newPipeFixture(t)
	ctx := context.Background()

	// embed-style engine: unique id known at parse time, Store adds nothing
	p := &probe{
		parseFn: func(in Input) (*Meta, error) {
			return &Meta{Type: models.FileTypeVideo, UniqueID: "vid-123"}, nil
		},
		storeFn: func(*models.MediaFile) (string, error) { return "", nil },
	}
	f.addBackend(t, "embed", p)

	media := f.addMedia(t, "Holiday")
	file, err := f.pipe.AddNewMediaFile(ctx, media, Input{URL: "https://example.com/v/vid-123"})
	require.NoError(t, err)
	assert.Equal(t, "vid-123", file.UniqueID)
}

func TestAddNewMediaFileGeneratesThumbnail(t *testing.T) {
	f := newPipeFixture(t)
	ctx := context.Background()

	p := &probe{parseFn: func(in Input) (*Meta, error) {
		return &Meta{Type: models.FileTypeVideo, ThumbnailData: []byte("png bytes")}, nil
	}}
	f.addBackend(t, "alpha", p)

	media := f.addMedia(t, "Holiday")
	_, err := f.pipe.AddNewMediaFile(ctx, media, Input{URL: "https://example.com/v/1"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.thumbs.generated)
}

func TestAddNewMediaFileSkipsExistingThumbnail(t *testing.T) {
	f := newPipeFixture(t)
	ctx := context.Background()
	f.thumbs.exists = true

	p := &probe{parseFn: func(in Input) (*Meta, error) {
		return &Meta{Type: models.FileTypeVideo, ThumbnailData: []byte("png bytes")}, nil
	}}
	f.addBackend(t, "alpha", p)

	media := f.addMedia(t, "Holiday")
	_, err := f.pipe.AddNewMediaFile(ctx, media, Input{URL: "https://example.com/v/1"})
	require.NoError(t, err)
	assert.Zero(t, f.thumbs.generated)
}

func TestAddNewMediaFileThumbnailFetchFailureContinues(t *testing.T) {
	f := newPipeFixture(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := &probe{parseFn: func(in Input) (*Meta, error) {
		return &Meta{Type: models.FileTypeVideo, ThumbnailURL: srv.URL + "/thumb.jpg"}, nil
	}}
	f.addBackend(t, "alpha", p)

	media := f.addMedia(t, "Holiday")
	_, err := f.pipe.AddNewMediaFile(ctx, media, Input{URL: "https://example.com/v/1"})
	require.NoError(t, err, "a failed thumbnail download must not fail the ingest")
	assert.Zero(t, f.thumbs.generated)
	assert.Equal(t, int64(1), f.fileCount(t))
}

func TestAddNewMediaFileThumbnailGenerateFailureAborts(t *testing.T) {
	f := newPipeFixture(t)
	ctx := context.Background()
	f.thumbs.genErr = errors.New("unsupported image format")

	p := &probe{
		parseFn: func(in Input) (*Meta, error) {
			return &Meta{Type: models.FileTypeVideo, UniqueID: "vid-9", ThumbnailData: []byte("junk")}, nil
		},
		// storing returns no id of its own, so the parse-time id survives
		storeFn: func(file *models.MediaFile) (string, error) {
			return "", nil
		},
	}
	f.addBackend(t, "alpha", p)

	media := f.addMedia(t, "Holiday")
	_, err := f.pipe.AddNewMediaFile(ctx, media, Input{URL: "https://example.com/v/9"})
	require.Error(t, err)
	assert.Zero(t, f.fileCount(t))
	assert.Contains(t, p.deleted, "vid-9", "stored asset must be unwound")
}

func TestAddNewMediaFileTranscodeChain(t *testing.T) {
	f := newPipeFixture(t)
	ctx := context.Background()

	transcodes := 0
	declining := &probe{parseFn: acceptUploads(DefaultExtensions())}
	transcoder := &probe{transcodeFn: func() error {
		transcodes++
		return nil
	}}
	f.addBackend(t, "alpha", declining)
	f.addBackend(t, "beta", transcoder)

	media := f.addMedia(t, "Holiday")
	_, err := f.pipe.AddNewMediaFile(ctx, media, mp4Upload())
	require.NoError(t, err)
	assert.Equal(t, 1, transcodes)
}

func TestAddNewMediaFileTranscodeFailureSurfaces(t *testing.T) {
	f := newPipeFixture(t)
	ctx := context.Background()

	p := &probe{
		parseFn:     acceptUploads(DefaultExtensions()),
		transcodeFn: func() error { return errors.New("encoder crashed") },
	}
	f.addBackend(t, "alpha", p)

	media := f.addMedia(t, "Holiday")
	_, err := f.pipe.AddNewMediaFile(ctx, media, mp4Upload())
	require.Error(t, err)

	// the stored file is already committed; a transcode failure does not
	// unwind it
	assert.Equal(t, int64(1), f.fileCount(t))
}

func TestDeleteMediaFile(t *testing.T) {
	f := newPipeFixture(t)
	ctx := context.Background()

	p := &probe{parseFn: acceptUploads(DefaultExtensions())}
	f.addBackend(t, "alpha", p)

	media := f.addMedia(t, "Holiday")
	file, err := f.pipe.AddNewMediaFile(ctx, media, mp4Upload())
	require.NoError(t, err)

	require.NoError(t, f.pipe.DeleteMediaFile(ctx, file))
	assert.Zero(t, f.fileCount(t))
	assert.Contains(t, p.deleted, file.UniqueID)
}

func TestPlaybackURIs(t *testing.T) {
	f := newPipeFixture(t)
	ctx := context.Background()

	p := &probe{parseFn: acceptUploads(DefaultExtensions())}
	f.addBackend(t, "alpha", p)

	media := f.addMedia(t, "Holiday")
	file, err := f.pipe.AddNewMediaFile(ctx, media, mp4Upload())
	require.NoError(t, err)

	uris, err := f.pipe.PlaybackURIs(ctx, file)
	require.NoError(t, err)
	require.Len(t, uris, 1)
	assert.Equal(t, "alpha://"+file.UniqueID, uris[0])
}
