package engine

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/clipdeck/clipdeck/internal/models"
	"github.com/clipdeck/clipdeck/internal/urlutil"
)

// ExtensionSet maps lowercase file extensions (without dot) to the file type
// a file-based engine ingests them as.
type ExtensionSet map[string]models.FileType

// DefaultExtensions returns the extensions file-based engines accept out of
// the box.
func DefaultExtensions() ExtensionSet {
	return ExtensionSet{
		// video containers
		"mp4":  models.FileTypeVideo,
		"m4v":  models.FileTypeVideo,
		"mov":  models.FileTypeVideo,
		"avi":  models.FileTypeVideo,
		"mkv":  models.FileTypeVideo,
		"webm": models.FileTypeVideo,
		"ogv":  models.FileTypeVideo,
		"flv":  models.FileTypeVideo,
		"ts":   models.FileTypeVideo,

		// audio containers
		"mp3":  models.FileTypeAudio,
		"m4a":  models.FileTypeAudio,
		"aac":  models.FileTypeAudio,
		"ogg":  models.FileTypeAudio,
		"oga":  models.FileTypeAudio,
		"opus": models.FileTypeAudio,
		"flac": models.FileTypeAudio,
		"wav":  models.FileTypeAudio,

		// sidecar files
		"srt": models.FileTypeCaptions,
		"vtt": models.FileTypeCaptions,
	}
}

// Extension returns the lowercase extension of name without the dot.
func Extension(name string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
}

// ParseUpload implements the parse phase shared by file-based engines:
// accept only inputs that carry a file whose extension appears in exts,
// and fill metadata from the upload itself. Anything else is unsuitable.
func ParseUpload(in Input, exts ExtensionSet) (*Meta, error) {
	if in.File == nil {
		return nil, fmt.Errorf("%w: no file provided", ErrUnsuitable)
	}
	ext := Extension(in.File.Filename)
	if ext == "" {
		return nil, fmt.Errorf("%w: file %q has no extension", ErrUnsuitable, in.File.Filename)
	}
	fileType, ok := exts[ext]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported extension %q", ErrUnsuitable, ext)
	}
	return &Meta{
		Type:        fileType,
		Container:   ext,
		DisplayName: in.File.Filename,
		Size:        in.File.Size,
	}, nil
}

// StoredFileName derives the on-disk name for a media file from its primary
// key and display name. The file must already be persisted so the ULID
// exists; the id prefix keeps names unique and time-sortable even when two
// uploads share a display name.
func StoredFileName(file *models.MediaFile) string {
	base := file.DisplayName
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	name := strings.ToLower(file.ID.String())
	if slug := urlutil.Slugify(base); slug != "" {
		name += "-" + slug
	}
	if file.Container != "" {
		name += "." + file.Container
	}
	return name
}
