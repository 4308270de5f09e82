package settings

import (
	"context"

	"gorm.io/gorm"

	"github.com/shopease/shopease-backend/pkg/db/models"
)

// Repository exposes storefront setting persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a settings repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns all settings.
func (r *Repository) List(ctx context.Context) ([]models.Setting, error) {
	var settings []models.Setting
	if err := r.db.WithContext(ctx).Order("key ASC").Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

// Find loads one setting by key.
func (r *Repository) Find(ctx context.Context, key string) (*models.Setting, error) {
	var setting models.Setting
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error; err != nil {
		return nil, err
	}
	return &setting, nil
}

// Upsert creates or replaces the value for a key.
func (r *Repository) Upsert(ctx context.Context, key, value string) (*models.Setting, error) {
	setting, err := r.Find(ctx, key)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, err
		}
		setting = &models.Setting{Key: key, Value: value}
		if err := r.db.WithContext(ctx).Create(setting).Error; err != nil {
			return nil, err
		}
		return setting, nil
	}
	setting.Value = value
	if err := r.db.WithContext(ctx).Save(setting).Error; err != nil {
		return nil, err
	}
	return setting, nil
}

// Delete removes a setting by key.
func (r *Repository) Delete(ctx context.Context, key string) error {
	return r.db.WithContext(ctx).Delete(&models.Setting{}, "key = ?", key).Error
}
