package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/clipdeck/clipdeck/internal/models"
	"gorm.io/gorm"
)

// mediaRepo implements MediaRepository using GORM.
type mediaRepo struct {
	db *gorm.DB
}

// NewMediaRepository creates a new MediaRepository.
func NewMediaRepository(db *gorm.DB) *mediaRepo {
	return &mediaRepo{db: db}
}

// Create creates a new media item.
func (r *mediaRepo) Create(ctx context.Context, media *models.Media) error {
	if err := r.db.WithContext(ctx).Create(media).Error; err != nil {
		return fmt.Errorf("creating media: %w", err)
	}
	return nil
}

// GetByID retrieves a media item by ID.
func (r *mediaRepo) GetByID(ctx context.Context, id models.ULID) (*models.Media, error) {
	var media models.Media
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&media).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting media by ID: %w", err)
	}
	return &media, nil
}

// GetByIDWithFiles retrieves a media item with its files preloaded.
func (r *mediaRepo) GetByIDWithFiles(ctx context.Context, id models.ULID) (*models.Media, error) {
	var media models.Media
	if err := r.db.WithContext(ctx).Preload("Files").Where("id = ?", id).First(&media).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting media with files: %w", err)
	}
	return &media, nil
}

// Update updates an existing media item.
func (r *mediaRepo) Update(ctx context.Context, media *models.Media) error {
	if err := r.db.WithContext(ctx).Omit("Files").Save(media).Error; err != nil {
		return fmt.Errorf("updating media: %w", err)
	}
	return nil
}

// Delete hard-deletes a media item by ID.
func (r *mediaRepo) Delete(ctx context.Context, id models.ULID) error {
	if err := r.db.WithContext(ctx).Unscoped().Where("id = ?", id).Delete(&models.Media{}).Error; err != nil {
		return fmt.Errorf("deleting media: %w", err)
	}
	return nil
}

// Ensure mediaRepo implements MediaRepository at compile time.
var _ MediaRepository = (*mediaRepo)(nil)
