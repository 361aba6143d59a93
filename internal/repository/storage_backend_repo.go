package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/clipdeck/clipdeck/internal/models"
	"gorm.io/gorm"
)

// storageBackendRepo implements StorageBackendRepository using GORM.
type storageBackendRepo struct {
	db *gorm.DB
}

// NewStorageBackendRepository creates a new StorageBackendRepository.
func NewStorageBackendRepository(db *gorm.DB) *storageBackendRepo {
	return &storageBackendRepo{db: db}
}

// Create creates a new storage backend.
func (r *storageBackendRepo) Create(ctx context.Context, backend *models.StorageBackend) error {
	if err := r.db.WithContext(ctx).Create(backend).Error; err != nil {
		return fmt.Errorf("creating storage backend: %w", err)
	}
	return nil
}

// GetByID retrieves a storage backend by ID.
func (r *storageBackendRepo) GetByID(ctx context.Context, id models.ULID) (*models.StorageBackend, error) {
	var backend models.StorageBackend
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&backend).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting storage backend by ID: %w", err)
	}
	return &backend, nil
}

// GetAll retrieves all storage backends ordered by id for stable listings.
func (r *storageBackendRepo) GetAll(ctx context.Context) ([]*models.StorageBackend, error) {
	var backends []*models.StorageBackend
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&backends).Error; err != nil {
		return nil, fmt.Errorf("getting all storage backends: %w", err)
	}
	return backends, nil
}

// GetEnabled retrieves all enabled storage backends ordered by id.
// The id ordering feeds the deterministic tie-break in engine ordering.
func (r *storageBackendRepo) GetEnabled(ctx context.Context) ([]*models.StorageBackend, error) {
	var backends []*models.StorageBackend
	if err := r.db.WithContext(ctx).
		Where("enabled = ? OR enabled IS NULL", true).
		Order("id ASC").
		Find(&backends).Error; err != nil {
		return nil, fmt.Errorf("getting enabled storage backends: %w", err)
	}
	return backends, nil
}

// Update updates an existing storage backend.
func (r *storageBackendRepo) Update(ctx context.Context, backend *models.StorageBackend) error {
	if err := r.db.WithContext(ctx).Save(backend).Error; err != nil {
		return fmt.Errorf("updating storage backend: %w", err)
	}
	return nil
}

// Delete hard-deletes a storage backend by ID.
func (r *storageBackendRepo) Delete(ctx context.Context, id models.ULID) error {
	if err := r.db.WithContext(ctx).Unscoped().Where("id = ?", id).Delete(&models.StorageBackend{}).Error; err != nil {
		return fmt.Errorf("deleting storage backend: %w", err)
	}
	return nil
}

// Ensure storageBackendRepo implements StorageBackendRepository at compile time.
var _ StorageBackendRepository = (*storageBackendRepo)(nil)
