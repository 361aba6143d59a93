package models

import (
	"strings"

	"gorm.io/gorm"
)

// MediaType classifies a media item by its playable content.
type MediaType string

const (
	// MediaTypeAudio marks audio-only media.
	MediaTypeAudio MediaType = "audio"
	// MediaTypeVideo marks media with at least one video file.
	MediaTypeVideo MediaType = "video"
)

// Media is the owning aggregate for a set of media files. It is created by
// the operator (title, description) and enriched by ingestion: metadata
// parsed from files or embed URLs is copied onto it only while the
// corresponding field is still unset, so operator-entered data always wins.
type Media struct {
	BaseModel

	// Title is the display title. May be empty on a freshly created stub,
	// in which case the first ingested file's title backfills it.
	Title string `gorm:"size:255" json:"title"`

	// Description is a free-form description.
	Description string `gorm:"type:text" json:"description"`

	// Type is empty until a file is ingested or the operator sets it.
	Type MediaType `gorm:"size:10" json:"type,omitempty"`

	// Duration is the playback length in seconds; zero means unknown.
	Duration int `gorm:"default:0" json:"duration"`

	// Files are the media files attached to this item.
	Files []MediaFile `gorm:"foreignKey:MediaID;constraint:OnDelete:CASCADE" json:"files,omitempty"`
}

// TableName returns the table name for Media.
func (Media) TableName() string {
	return "media"
}

// HasTitle reports whether the operator or a previous ingestion set a title.
func (m *Media) HasTitle() bool {
	return strings.TrimSpace(m.Title) != ""
}

// HasDescription reports whether a description is set.
func (m *Media) HasDescription() bool {
	return strings.TrimSpace(m.Description) != ""
}

// UpdateTypeFromFiles recomputes the media type from the attached files.
// Video wins over audio; caption or audio-description files alone never
// set a type.
func (m *Media) UpdateTypeFromFiles() {
	var t MediaType
	for i := range m.Files {
		switch m.Files[i].Type {
		case FileTypeVideo:
			m.Type = MediaTypeVideo
			return
		case FileTypeAudio:
			t = MediaTypeAudio
		}
	}
	m.Type = t
}

// Validate performs basic validation on the media item.
func (m *Media) Validate() error {
	if m.Type != "" && m.Type != MediaTypeAudio && m.Type != MediaTypeVideo {
		return ErrInvalidMediaType
	}
	return nil
}

// BeforeCreate is a GORM hook that validates the media item and generates a ULID.
func (m *Media) BeforeCreate(tx *gorm.DB) error {
	if err := m.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	return m.Validate()
}

// BeforeUpdate is a GORM hook that validates the media item before update.
func (m *Media) BeforeUpdate(tx *gorm.DB) error {
	return m.Validate()
}
