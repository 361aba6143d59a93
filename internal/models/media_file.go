package models

import (
	"gorm.io/gorm"
)

// FileType classifies a single media file within a media item.
type FileType string

const (
	// FileTypeAudio is a playable audio file or embed.
	FileTypeAudio FileType = "audio"
	// FileTypeVideo is a playable video file or embed.
	FileTypeVideo FileType = "video"
	// FileTypeAudioDesc is an audio-description track.
	FileTypeAudioDesc FileType = "audio_desc"
	// FileTypeCaptions is a captions/subtitles file.
	FileTypeCaptions FileType = "captions"
)

// Playable reports whether this file type is directly playable content.
func (t FileType) Playable() bool {
	return t == FileTypeAudio || t == FileTypeVideo
}

// MediaFile binds a parsed asset to exactly one storage backend and to its
// parent media item. The UniqueID is the engine-specific locator: a relative
// file path for disk-backed engines, a remote video id for embeds.
type MediaFile struct {
	BaseModel

	// MediaID is the owning media item. Required.
	MediaID ULID `gorm:"not null;index;type:varchar(26)" json:"media_id"`

	// StorageID is the owning storage backend instance. Required, set
	// exactly once during ingestion and never changed by transcoding.
	StorageID ULID `gorm:"not null;index;type:varchar(26)" json:"storage_id"`

	// Type classifies the file content.
	Type FileType `gorm:"not null;size:20" json:"type"`

	// Container is a format hint (file extension without the dot). Empty
	// for engines without a file representation, e.g. embeds.
	Container string `gorm:"size:10" json:"container,omitempty"`

	// DisplayName is shown to operators, typically the original filename
	// or the embed title.
	DisplayName string `gorm:"size:255" json:"display_name"`

	// UniqueID is the engine-specific locator. Must be non-empty by the
	// time ingestion completes.
	UniqueID string `gorm:"size:2048;index" json:"unique_id"`

	// Size is the file size in bytes; zero for embeds.
	Size int64 `gorm:"default:0" json:"size"`

	// Bitrate in kbit/s, if known.
	Bitrate int `gorm:"default:0" json:"bitrate,omitempty"`

	// Width and Height in pixels, for video files.
	Width  int `gorm:"default:0" json:"width,omitempty"`
	Height int `gorm:"default:0" json:"height,omitempty"`
}

// TableName returns the table name for MediaFile.
func (MediaFile) TableName() string {
	return "media_files"
}

// Validate performs basic validation on the media file.
// UniqueID is deliberately not required here: the stub row is flushed before
// Store runs so the backend can derive paths from the primary key.
func (f *MediaFile) Validate() error {
	if f.MediaID.IsZero() {
		return ErrMediaIDRequired
	}
	if f.StorageID.IsZero() {
		return ErrStorageIDRequired
	}
	switch f.Type {
	case FileTypeAudio, FileTypeVideo, FileTypeAudioDesc, FileTypeCaptions:
	default:
		return ErrInvalidFileType
	}
	return nil
}

// BeforeCreate is a GORM hook that validates the file and generates a ULID.
func (f *MediaFile) BeforeCreate(tx *gorm.DB) error {
	if err := f.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	return f.Validate()
}

// BeforeUpdate is a GORM hook that validates the file before update.
func (f *MediaFile) BeforeUpdate(tx *gorm.DB) error {
	return f.Validate()
}
