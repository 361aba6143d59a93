package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMediaUpdateTypeFromFiles(t *testing.T) {
	tests := []struct {
		name  string
		files []MediaFile
		want  MediaType
	}{
		{
			name: "no files clears type",
			want: "",
		},
		{
			name:  "audio only",
			files: []MediaFile{{Type: FileTypeAudio}},
			want:  MediaTypeAudio,
		},
		{
			name:  "video wins over audio",
			files: []MediaFile{{Type: FileTypeAudio}, {Type: FileTypeVideo}},
			want:  MediaTypeVideo,
		},
		{
			name:  "captions alone set nothing",
			files: []MediaFile{{Type: FileTypeCaptions}, {Type: FileTypeAudioDesc}},
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Media{Type: MediaTypeVideo, Files: tt.files}
			m.UpdateTypeFromFiles()
			assert.Equal(t, tt.want, m.Type)
		})
	}
}

func TestMediaValidate(t *testing.T) {
	assert.NoError(t, (&Media{}).Validate())
	assert.NoError(t, (&Media{Type: MediaTypeAudio}).Validate())
	assert.ErrorIs(t, (&Media{Type: "podcast"}).Validate(), ErrInvalidMediaType)
}

func TestMediaHasTitle(t *testing.T) {
	assert.False(t, (&Media{}).HasTitle())
	assert.False(t, (&Media{Title: "   "}).HasTitle())
	assert.True(t, (&Media{Title: "Keep Me"}).HasTitle())
}
