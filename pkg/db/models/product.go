package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product represents a catalog listing.
type Product struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Description *string   `gorm:"column:description"`
	Brand       *string   `gorm:"column:brand"`
	Category    string    `gorm:"column:category;not null;index"`
	PricePaise  int64     `gorm:"column:price_paise;not null"`
	ImageURL    *string   `gorm:"column:image_url"`
	Stock       int       `gorm:"column:stock;not null;default:0"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true"`
	IsFeatured  bool      `gorm:"column:is_featured;not null;default:false"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns an ID when the caller did not.
func (p *Product) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
