package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shopease/shopease-backend/pkg/db/models"
	pkgerrors "github.com/shopease/shopease-backend/pkg/errors"
)

type stubProductRepo struct {
	byID map[uuid.UUID]*models.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{byID: map[uuid.UUID]*models.Product{}}
}

func (r *stubProductRepo) List(_ context.Context, filter ListFilter) ([]models.Product, error) {
	var out []models.Product
	for _, p := range r.byID {
		if !filter.IncludeInactive && !p.IsActive {
			continue
		}
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.FeaturedOnly && !p.IsFeatured {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	p, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *p
	return &copied, nil
}

func (r *stubProductRepo) Create(_ context.Context, product *models.Product) error {
	product.ID = uuid.New()
	r.byID[product.ID] = product
	return nil
}

func (r *stubProductRepo) Update(_ context.Context, product *models.Product) error {
	r.byID[product.ID] = product
	return nil
}

func (r *stubProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.byID, id)
	return nil
}

func TestCreateParsesRupeePrice(t *testing.T) {
	svc, err := NewService(newStubProductRepo())
	require.NoError(t, err)

	dto, err := svc.Create(context.Background(), CreateProductRequest{
		Name:     "Studio Headphones",
		Category: "headphones",
		Price:    "1499.99",
		Stock:    10,
	})
	require.NoError(t, err)
	require.EqualValues(t, 149999, dto.PricePaise)
	require.Equal(t, "1499.99", dto.Price)
	require.True(t, dto.InStock)
	require.True(t, dto.IsActive)
}

func TestCreateRejectsSubPaisePrecision(t *testing.T) {
	svc, err := NewService(newStubProductRepo())
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateProductRequest{
		Name:     "Cables",
		Category: "accessories",
		Price:    "12.999",
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestUpdateAppliesPartialFields(t *testing.T) {
	repo := newStubProductRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)

	created, err := svc.Create(context.Background(), CreateProductRequest{
		Name:     "Bookshelf Speaker",
		Category: "speakers",
		Price:    "250.00",
		Stock:    5,
	})
	require.NoError(t, err)

	newPrice := "225.00"
	inactive := false
	updated, err := svc.Update(context.Background(), created.ID, UpdateProductRequest{
		Price:    &newPrice,
		IsActive: &inactive,
	})
	require.NoError(t, err)
	require.EqualValues(t, 22500, updated.PricePaise)
	require.False(t, updated.IsActive)
	require.Equal(t, "Bookshelf Speaker", updated.Name)
	require.Equal(t, 5, updated.Stock)
}

func TestGetUnknownProductReturnsNotFound(t *testing.T) {
	svc, err := NewService(newStubProductRepo())
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
