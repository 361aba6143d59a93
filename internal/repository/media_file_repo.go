package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/clipdeck/clipdeck/internal/models"
	"gorm.io/gorm"
)

// mediaFileRepo implements MediaFileRepository using GORM.
type mediaFileRepo struct {
	db *gorm.DB
}

// NewMediaFileRepository creates a new MediaFileRepository.
func NewMediaFileRepository(db *gorm.DB) *mediaFileRepo {
	return &mediaFileRepo{db: db}
}

// Create creates a new media file row. The ULID primary key is generated in
// the BeforeCreate hook, so the row is addressable immediately after this
// returns; storage engines rely on that to derive id-based file names.
func (r *mediaFileRepo) Create(ctx context.Context, file *models.MediaFile) error {
	if err := r.db.WithContext(ctx).Create(file).Error; err != nil {
		return fmt.Errorf("creating media file: %w", err)
	}
	return nil
}

// GetByID retrieves a media file by ID.
func (r *mediaFileRepo) GetByID(ctx context.Context, id models.ULID) (*models.MediaFile, error) {
	var file models.MediaFile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting media file by ID: %w", err)
	}
	return &file, nil
}

// GetByMedia retrieves all files belonging to a media item, oldest first.
func (r *mediaFileRepo) GetByMedia(ctx context.Context, mediaID models.ULID) ([]*models.MediaFile, error) {
	var files []*models.MediaFile
	if err := r.db.WithContext(ctx).Where("media_id = ?", mediaID).Order("id ASC").Find(&files).Error; err != nil {
		return nil, fmt.Errorf("getting media files: %w", err)
	}
	return files, nil
}

// Update updates an existing media file.
func (r *mediaFileRepo) Update(ctx context.Context, file *models.MediaFile) error {
	if err := r.db.WithContext(ctx).Save(file).Error; err != nil {
		return fmt.Errorf("updating media file: %w", err)
	}
	return nil
}

// Delete hard-deletes a media file by ID.
func (r *mediaFileRepo) Delete(ctx context.Context, id models.ULID) error {
	if err := r.db.WithContext(ctx).Unscoped().Where("id = ?", id).Delete(&models.MediaFile{}).Error; err != nil {
		return fmt.Errorf("deleting media file: %w", err)
	}
	return nil
}

// Ensure mediaFileRepo implements MediaFileRepository at compile time.
var _ MediaFileRepository = (*mediaFileRepo)(nil)
