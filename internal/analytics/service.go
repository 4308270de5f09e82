package analytics

import (
	"context"
	"fmt"

	"github.com/shopease/shopease-backend/internal/orders"
	"github.com/shopease/shopease-backend/internal/products"
	"github.com/shopease/shopease-backend/pkg/db/models"
	pkgerrors "github.com/shopease/shopease-backend/pkg/errors"
	"github.com/shopease/shopease-backend/pkg/types"
)

const (
	defaultRecentOrders  = 10
	lowStockThreshold    = 5
	maxRecentOrdersLimit = 50
)

// StatsDTO is the admin dashboard summary.
type StatsDTO struct {
	TotalOrders    int64                 `json:"total_orders"`
	Revenue        string                `json:"revenue"`
	RevenuePaise   int64                 `json:"revenue_paise"`
	TotalCustomers int64                 `json:"total_customers"`
	ActiveProducts int64                 `json:"active_products"`
	RecentOrders   []orders.OrderDTO     `json:"recent_orders"`
	LowStock       []products.ProductDTO `json:"low_stock"`
}

// Service computes storefront analytics for the admin dashboard.
type Service interface {
	Stats(ctx context.Context, recentLimit int) (*StatsDTO, error)
}

type statsRepository interface {
	CountOrders(ctx context.Context) (int64, error)
	PaidRevenuePaise(ctx context.Context) (int64, error)
	CountUsers(ctx context.Context) (int64, error)
	CountActiveProducts(ctx context.Context) (int64, error)
	RecentOrders(ctx context.Context, limit int) ([]models.Order, error)
	LowStockProducts(ctx context.Context, threshold int) ([]models.Product, error)
}

type service struct {
	repo statsRepository
}

// NewService builds an analytics service backed by the provided repository.
func NewService(repo statsRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("analytics repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Stats(ctx context.Context, recentLimit int) (*StatsDTO, error) {
	if recentLimit <= 0 {
		recentLimit = defaultRecentOrders
	}
	if recentLimit > maxRecentOrdersLimit {
		recentLimit = maxRecentOrdersLimit
	}

	totalOrders, err := s.repo.CountOrders(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count orders")
	}
	revenuePaise, err := s.repo.PaidRevenuePaise(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum revenue")
	}
	totalCustomers, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count customers")
	}
	activeProducts, err := s.repo.CountActiveProducts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count products")
	}
	recent, err := s.repo.RecentOrders(ctx, recentLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load recent orders")
	}
	lowStock, err := s.repo.LowStockProducts(ctx, lowStockThreshold)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load low stock products")
	}

	return &StatsDTO{
		TotalOrders:    totalOrders,
		Revenue:        types.RupeesFromPaise(revenuePaise),
		RevenuePaise:   revenuePaise,
		TotalCustomers: totalCustomers,
		ActiveProducts: activeProducts,
		RecentOrders:   orders.FromModels(recent),
		LowStock:       products.FromModels(lowStock),
	}, nil
}
