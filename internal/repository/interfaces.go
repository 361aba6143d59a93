// Package repository provides data access layers for clipdeck models.
package repository

import (
	"context"

	"github.com/clipdeck/clipdeck/internal/models"
)

// MediaRepository manages media aggregates.
type MediaRepository interface {
	Create(ctx context.Context, media *models.Media) error
	GetByID(ctx context.Context, id models.ULID) (*models.Media, error)
	GetByIDWithFiles(ctx context.Context, id models.ULID) (*models.Media, error)
	Update(ctx context.Context, media *models.Media) error
	Delete(ctx context.Context, id models.ULID) error
}

// MediaFileRepository manages media file rows.
type MediaFileRepository interface {
	Create(ctx context.Context, file *models.MediaFile) error
	GetByID(ctx context.Context, id models.ULID) (*models.MediaFile, error)
	GetByMedia(ctx context.Context, mediaID models.ULID) ([]*models.MediaFile, error)
	Update(ctx context.Context, file *models.MediaFile) error
	Delete(ctx context.Context, id models.ULID) error
}

// StorageBackendRepository manages configured storage-backend instances.
type StorageBackendRepository interface {
	Create(ctx context.Context, backend *models.StorageBackend) error
	GetByID(ctx context.Context, id models.ULID) (*models.StorageBackend, error)
	GetAll(ctx context.Context) ([]*models.StorageBackend, error)
	GetEnabled(ctx context.Context) ([]*models.StorageBackend, error)
	Update(ctx context.Context, backend *models.StorageBackend) error
	Delete(ctx context.Context, id models.ULID) error
}
