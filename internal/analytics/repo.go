package analytics

import (
	"context"

	"gorm.io/gorm"

	"github.com/shopease/shopease-backend/pkg/db/models"
	"github.com/shopease/shopease-backend/pkg/enums"
)

// Repository runs the aggregate queries behind the admin dashboard.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an analytics repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CountOrders returns the total number of orders ever placed.
func (r *Repository) CountOrders(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Count(&count).Error
	return count, err
}

// PaidRevenuePaise sums totals across paid orders.
func (r *Repository) PaidRevenuePaise(ctx context.Context) (int64, error) {
	var revenue *int64
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("payment_status = ?", enums.PaymentStatusPaid).
		Select("SUM(total_paise)").
		Scan(&revenue).Error
	if err != nil {
		return 0, err
	}
	if revenue == nil {
		return 0, nil
	}
	return *revenue, nil
}

// CountUsers returns the number of registered customers.
func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ?", enums.UserRoleCustomer).
		Count(&count).Error
	return count, err
}

// CountActiveProducts returns the number of products visible in the catalog.
func (r *Repository) CountActiveProducts(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("is_active = ?", true).
		Count(&count).Error
	return count, err
}

// RecentOrders loads the latest orders with their line items.
func (r *Repository) RecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// LowStockProducts lists active products at or below the given stock level.
func (r *Repository) LowStockProducts(ctx context.Context, threshold int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND stock <= ?", true, threshold).
		Order("stock ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}
