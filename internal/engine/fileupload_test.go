package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipdeck/clipdeck/internal/models"
)

func TestParseUpload(t *testing.T) {
	exts := DefaultExtensions()

	tests := []struct {
		name     string
		in       Input
		wantType models.FileType
		wantErr  bool
	}{
		{
			name:     "video upload",
			in:       Input{File: UploadFromBytes("clip.MP4", []byte("x"))},
			wantType: models.FileTypeVideo,
		},
		{
			name:     "audio upload",
			in:       Input{File: UploadFromBytes("song.flac", []byte("x"))},
			wantType: models.FileTypeAudio,
		},
		{
			name:     "captions upload",
			in:       Input{File: UploadFromBytes("subs.srt", []byte("x"))},
			wantType: models.FileTypeCaptions,
		},
		{
			name:    "unknown extension",
			in:      Input{File: UploadFromBytes("doc.pdf", []byte("x"))},
			wantErr: true,
		},
		{
			name:    "no extension",
			in:      Input{File: UploadFromBytes("README", []byte("x"))},
			wantErr: true,
		},
		{
			name:    "url input",
			in:      Input{URL: "https://example.com/clip.mp4"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, err := ParseUpload(tt.in, exts)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsuitable)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, meta.Type)
			assert.Equal(t, tt.in.File.Filename, meta.DisplayName)
			assert.Equal(t, tt.in.File.Size, meta.Size)
		})
	}
}

func TestStoredFileName(t *testing.T) {
	file := &models.MediaFile{
		Container:   "mp4",
		DisplayName: "My Holiday Video.mp4",
	}
	file.ID = models.MustParseULID("01HZXW2N4B8Q6R9T0V1X3Y5Z7A")

	name := StoredFileName(file)
	assert.Equal(t, "01hzxw2n4b8q6r9t0v1x3y5z7a-my-holiday-video.mp4", name)
}

func TestStoredFileNameNoDisplayName(t *testing.T) {
	file := &models.MediaFile{Container: "mp3"}
	file.ID = models.NewULID()

	name := StoredFileName(file)
	assert.Equal(t, strings.ToLower(file.ID.String())+".mp3", name)
}
