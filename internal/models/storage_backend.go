package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ConfigMap is an opaque string-keyed settings map for a storage backend,
// persisted as JSON. Each concrete engine defines and validates its own keys.
type ConfigMap map[string]string

// Value implements driver.Valuer for database storage.
func (c ConfigMap) Value() (driver.Value, error) {
	if c == nil {
		return "{}", nil
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshaling config map: %w", err)
	}
	return string(data), nil
}

// Scan implements sql.Scanner for database retrieval.
func (c *ConfigMap) Scan(value any) error {
	if value == nil {
		*c = ConfigMap{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("unsupported type for ConfigMap: %T", value)
	}

	if len(data) == 0 {
		*c = ConfigMap{}
		return nil
	}
	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("scanning config map: %w", err)
	}
	return nil
}

// GormDataType returns the GORM data type for ConfigMap.
func (ConfigMap) GormDataType() string {
	return "text"
}

// Get returns the value for key, or the fallback when the key is absent or empty.
func (c ConfigMap) Get(key, fallback string) string {
	if v, ok := c[key]; ok && v != "" {
		return v
	}
	return fallback
}

// StorageBackend is one configured storage-engine instance. The EngineType
// discriminator identifies the concrete implementation; the registry hydrates
// rows into live engines at lookup time. EngineType is immutable after
// creation.
type StorageBackend struct {
	BaseModel

	// EngineType identifies the concrete engine implementation
	// (e.g. "localfile", "remoteftp", "youtube").
	EngineType string `gorm:"not null;size:50;index" json:"engine_type"`

	// DisplayName is a user-friendly name for this backend instance.
	DisplayName string `gorm:"not null;size:255" json:"display_name"`

	// Enabled indicates whether this backend participates in ingestion.
	// Pointer to distinguish "not set" (nil, defaults true) from
	// "explicitly false".
	Enabled *bool `gorm:"default:true" json:"enabled"`

	// Config holds backend-specific settings, e.g. FTP credentials.
	Config ConfigMap `gorm:"type:text" json:"config"`
}

// TableName returns the table name for StorageBackend.
func (StorageBackend) TableName() string {
	return "storage_backends"
}

// IsEnabled reports whether this backend participates in ingestion.
func (b *StorageBackend) IsEnabled() bool {
	return BoolVal(b.Enabled)
}

// Sanitize trims whitespace from user-provided fields.
func (b *StorageBackend) Sanitize() {
	b.EngineType = strings.TrimSpace(b.EngineType)
	b.DisplayName = strings.TrimSpace(b.DisplayName)
}

// Validate performs basic validation on the backend.
func (b *StorageBackend) Validate() error {
	b.Sanitize()

	if b.EngineType == "" {
		return ErrEngineTypeRequired
	}
	if b.DisplayName == "" {
		return ErrDisplayNameRequired
	}
	return nil
}

// BeforeCreate is a GORM hook that validates the backend and generates a ULID.
func (b *StorageBackend) BeforeCreate(tx *gorm.DB) error {
	if err := b.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	return b.Validate()
}

// BeforeUpdate is a GORM hook that validates the backend and guards the
// engine-type discriminator against modification.
func (b *StorageBackend) BeforeUpdate(tx *gorm.DB) error {
	if err := b.Validate(); err != nil {
		return err
	}

	if !b.ID.IsZero() {
		var current StorageBackend
		if err := tx.Session(&gorm.Session{NewDB: true, SkipHooks: true}).
			Where("id = ?", b.ID).First(&current).Error; err == nil {
			if current.EngineType != b.EngineType {
				return ErrEngineTypeImmutable
			}
		}
	}
	return nil
}
