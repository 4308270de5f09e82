package delivery

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopease/shopease-backend/pkg/db/models"
)

// Repository exposes delivery zone persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a delivery zone repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns all zones, serviceable cities first.
func (r *Repository) List(ctx context.Context) ([]models.DeliveryZone, error) {
	var zones []models.DeliveryZone
	if err := r.db.WithContext(ctx).Order("city ASC, pincode ASC").Find(&zones).Error; err != nil {
		return nil, err
	}
	return zones, nil
}

// FindByPincode loads the zone covering the given pincode.
func (r *Repository) FindByPincode(ctx context.Context, pincode string) (*models.DeliveryZone, error) {
	var zone models.DeliveryZone
	if err := r.db.WithContext(ctx).Where("pincode = ?", pincode).First(&zone).Error; err != nil {
		return nil, err
	}
	return &zone, nil
}

// Create inserts a new zone.
func (r *Repository) Create(ctx context.Context, zone *models.DeliveryZone) error {
	return r.db.WithContext(ctx).Create(zone).Error
}

// Update persists the full zone row.
func (r *Repository) Update(ctx context.Context, zone *models.DeliveryZone) error {
	return r.db.WithContext(ctx).Save(zone).Error
}

// Delete removes the zone.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.DeliveryZone{}, "id = ?", id).Error
}
