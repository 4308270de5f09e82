package products

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopease/shopease-backend/pkg/db/models"
	"github.com/shopease/shopease-backend/pkg/types"
)

// ProductDTO is the catalog listing shape returned to clients. Price is the
// display string in rupees; price_paise is the integer amount carts use.
type ProductDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Brand       *string   `json:"brand,omitempty"`
	Category    string    `json:"category"`
	Price       string    `json:"price"`
	PricePaise  int64     `json:"price_paise"`
	ImageURL    *string   `json:"image_url,omitempty"`
	Stock       int       `json:"stock"`
	InStock     bool      `json:"in_stock"`
	IsActive    bool      `json:"is_active"`
	IsFeatured  bool      `json:"is_featured"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateProductRequest is the admin payload for a new listing. Price is a
// rupee decimal string, e.g. "1499.00".
type CreateProductRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description,omitempty"`
	Brand       *string `json:"brand,omitempty"`
	Category    string  `json:"category" validate:"required"`
	Price       string  `json:"price" validate:"required"`
	ImageURL    *string `json:"image_url,omitempty"`
	Stock       int     `json:"stock" validate:"gte=0"`
	IsFeatured  bool    `json:"is_featured"`
}

// UpdateProductRequest carries partial updates; nil fields are untouched.
type UpdateProductRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Brand       *string `json:"brand,omitempty"`
	Category    *string `json:"category,omitempty"`
	Price       *string `json:"price,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	Stock       *int    `json:"stock,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
	IsFeatured  *bool   `json:"is_featured,omitempty"`
}

// ListFilter narrows the public catalog listing.
type ListFilter struct {
	Category        string
	FeaturedOnly    bool
	Search          string
	IncludeInactive bool
}

func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Brand:       p.Brand,
		Category:    p.Category,
		Price:       types.RupeesFromPaise(p.PricePaise),
		PricePaise:  p.PricePaise,
		ImageURL:    p.ImageURL,
		Stock:       p.Stock,
		InStock:     p.Stock > 0,
		IsActive:    p.IsActive,
		IsFeatured:  p.IsFeatured,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func FromModels(items []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(items))
	for i := range items {
		out = append(out, *FromModel(&items[i]))
	}
	return out
}
