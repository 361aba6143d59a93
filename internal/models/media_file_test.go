package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMediaFileValidate(t *testing.T) {
	mediaID := NewULID()
	storageID := NewULID()

	tests := []struct {
		name    string
		file    MediaFile
		wantErr error
	}{
		{
			name: "valid",
			file: MediaFile{MediaID: mediaID, StorageID: storageID, Type: FileTypeVideo},
		},
		{
			name: "valid without unique id (stub before store)",
			file: MediaFile{MediaID: mediaID, StorageID: storageID, Type: FileTypeAudio},
		},
		{
			name:    "missing media id",
			file:    MediaFile{StorageID: storageID, Type: FileTypeVideo},
			wantErr: ErrMediaIDRequired,
		},
		{
			name:    "missing storage id",
			file:    MediaFile{MediaID: mediaID, Type: FileTypeVideo},
			wantErr: ErrStorageIDRequired,
		},
		{
			name:    "bad type",
			file:    MediaFile{MediaID: mediaID, StorageID: storageID, Type: "document"},
			wantErr: ErrInvalidFileType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.file.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestFileTypePlayable(t *testing.T) {
	assert.True(t, FileTypeAudio.Playable())
	assert.True(t, FileTypeVideo.Playable())
	assert.False(t, FileTypeCaptions.Playable())
	assert.False(t, FileTypeAudioDesc.Playable())
}
