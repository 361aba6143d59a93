// Package engine defines the storage-engine capability interface and the
// media-file ingestion pipeline built on top of it.
//
// A storage engine binds one backend technology (local disk, FTP, an embed
// provider) to the capability contract: inspect an incoming file or URL,
// persist the asset, enumerate playback locations, and optionally produce
// derived files. Engines are configured as StorageBackend rows, hydrated
// through the Registry, and attempted in the order produced by Registry.Order.
package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/clipdeck/clipdeck/internal/models"
)

// Upload is an incoming file submission. Open must return a fresh reader on
// every call; the parse phase may probe the content and Store reads it again.
type Upload struct {
	// Filename is the client-supplied file name, used for extension
	// detection and display.
	Filename string

	// Size is the total size in bytes, if known.
	Size int64

	// Open returns a new reader over the upload content.
	Open func() (io.ReadCloser, error)
}

// UploadFromBytes builds an Upload backed by an in-memory byte slice.
func UploadFromBytes(filename string, data []byte) *Upload {
	return &Upload{
		Filename: filename,
		Size:     int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// UploadFromFile builds an Upload backed by a file on disk.
func UploadFromFile(path string) (*Upload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat upload file: %w", err)
	}
	return &Upload{
		Filename: filepath.Base(path),
		Size:     info.Size(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// Input is one incoming submission: a file upload, a URL, or both when the
// caller does not know which the operator provided.
type Input struct {
	File *Upload
	URL  string
}

// IsUpload reports whether the input carries a file.
func (in Input) IsUpload() bool {
	return in.File != nil
}

// IsEmpty reports whether the input carries neither a file nor a URL.
func (in Input) IsEmpty() bool {
	return in.File == nil && in.URL == ""
}

// Meta is the result of a successful parse: everything an engine could learn
// about the input without persisting anything. Only Type is mandatory.
type Meta struct {
	// Type classifies the asset. Required.
	Type models.FileType

	// UniqueID is the engine-specific locator, when the engine can derive
	// it at parse time (e.g. an embed video id). Engines that derive it
	// from the MediaFile primary key leave this empty and return it from
	// Store instead.
	UniqueID string

	// Container is the format hint (extension without dot); empty for embeds.
	Container string

	// DisplayName defaults the MediaFile display name.
	DisplayName string

	// Size in bytes, if known.
	Size int64

	// Bitrate in kbit/s, if known.
	Bitrate int

	// Width and Height in pixels, for video.
	Width  int
	Height int

	// Duration in seconds, if known.
	Duration int

	// Title and Description backfill the parent media item when unset.
	Title       string
	Description string

	// ThumbnailURL points at a remote thumbnail to fetch, best-effort.
	ThumbnailURL string

	// ThumbnailData is thumbnail image bytes the engine already has.
	ThumbnailData []byte
}

// Engine is the capability contract every storage backend implements.
//
// Parse must be side-effect free beyond best-effort metadata probing; it
// returns ErrUnsuitable (possibly wrapped) when this engine cannot handle
// the input, which advances the chain to the next engine. Any other error
// aborts ingestion.
//
// Store is called only after the MediaFile has a primary key, so engines may
// derive storage paths from the id. It returns the unique id when the engine
// generates one during storage; engines whose unique id is known at parse
// time return "".
type Engine interface {
	// Type returns the engine-type discriminator, matching the
	// registered Descriptor.
	Type() string

	// Backend returns the configuration row this instance was hydrated from.
	Backend() *models.StorageBackend

	// Parse inspects the input and returns metadata, or ErrUnsuitable.
	Parse(ctx context.Context, in Input) (*Meta, error)

	// Store persists the asset for a MediaFile that already has a
	// primary key. A failure must leave no partial state observable by
	// other engines.
	Store(ctx context.Context, file *models.MediaFile, in Input, meta *Meta) (string, error)

	// Postprocess runs after store, thumbnail, and flush have succeeded.
	Postprocess(ctx context.Context, file *models.MediaFile) error

	// Transcode is asked, for every newly stored MediaFile, whether this
	// engine will produce derived files. Engines decline with
	// ErrCannotTranscode.
	Transcode(ctx context.Context, file *models.MediaFile) error

	// Delete removes the underlying asset, best-effort. It reports
	// whether the asset was removed.
	Delete(ctx context.Context, uniqueID string) (bool, error)

	// PlaybackURIs enumerates playback locations for a stored file,
	// most preferred first.
	PlaybackURIs(file *models.MediaFile) []string
}

// Base provides default behavior for optional capability methods.
// Concrete engines embed it and override what they support.
type Base struct {
	backend *models.StorageBackend
}

// NewBase creates a Base bound to a backend row.
func NewBase(backend *models.StorageBackend) Base {
	return Base{backend: backend}
}

// Backend returns the configuration row this instance was hydrated from.
func (b Base) Backend() *models.StorageBackend {
	return b.backend
}

// Postprocess is a no-op by default.
func (Base) Postprocess(context.Context, *models.MediaFile) error {
	return nil
}

// Transcode declines by default; most engines do not transcode.
func (Base) Transcode(context.Context, *models.MediaFile) error {
	return ErrCannotTranscode
}
