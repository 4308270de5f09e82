package addresses

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shopease/shopease-backend/pkg/db/models"
	pkgerrors "github.com/shopease/shopease-backend/pkg/errors"
	"github.com/shopease/shopease-backend/pkg/types"
)

type stubAddressRepo struct {
	rows map[uuid.UUID]*models.Address
}

func newStubAddressRepo() *stubAddressRepo {
	return &stubAddressRepo{rows: map[uuid.UUID]*models.Address{}}
}

func (s *stubAddressRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Address, error) {
	var out []models.Address
	for _, row := range s.rows {
		if row.UserID == userID {
			out = append(out, *row)
		}
	}
	return out, nil
}

func (s *stubAddressRepo) Find(_ context.Context, id uuid.UUID) (*models.Address, error) {
	row, ok := s.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *row
	return &copied, nil
}

func (s *stubAddressRepo) Create(_ context.Context, address *models.Address) error {
	if address.ID == uuid.Nil {
		address.ID = uuid.New()
	}
	copied := *address
	s.rows[address.ID] = &copied
	return nil
}

func (s *stubAddressRepo) Save(_ context.Context, address *models.Address) error {
	copied := *address
	s.rows[address.ID] = &copied
	return nil
}

func (s *stubAddressRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.rows, id)
	return nil
}

func (s *stubAddressRepo) ClearDefault(_ context.Context, userID uuid.UUID) error {
	for _, row := range s.rows {
		if row.UserID == userID {
			row.IsDefault = false
		}
	}
	return nil
}

func haldwaniShipping() types.ShippingAddress {
	return types.ShippingAddress{
		Address: "12 Mall Road",
		City:    "Haldwani",
		State:   "Uttarakhand",
		Pincode: "263139",
		Phone:   "9876543210",
	}
}

func TestCreateDefaultDisplacesPrevious(t *testing.T) {
	repo := newStubAddressRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)
	userID := uuid.New()

	first, err := svc.Create(context.Background(), userID, SaveAddressRequest{
		Shipping: haldwaniShipping(), IsDefault: true,
	})
	require.NoError(t, err)
	require.True(t, first.IsDefault)

	second, err := svc.Create(context.Background(), userID, SaveAddressRequest{
		Shipping: haldwaniShipping(), IsDefault: true,
	})
	require.NoError(t, err)
	require.True(t, second.IsDefault)

	require.False(t, repo.rows[first.ID].IsDefault)
	require.True(t, repo.rows[second.ID].IsDefault)
}

func TestCreateRejectsIncompleteShipping(t *testing.T) {
	svc, err := NewService(newStubAddressRepo())
	require.NoError(t, err)

	shipping := haldwaniShipping()
	shipping.Phone = "   "
	_, err = svc.Create(context.Background(), uuid.New(), SaveAddressRequest{Shipping: shipping})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestUpdateHidesOtherUsersAddresses(t *testing.T) {
	repo := newStubAddressRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)
	owner := uuid.New()

	created, err := svc.Create(context.Background(), owner, SaveAddressRequest{Shipping: haldwaniShipping()})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), uuid.New(), created.ID, SaveAddressRequest{Shipping: haldwaniShipping()})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestUpdateReplacesFieldsAndLabel(t *testing.T) {
	repo := newStubAddressRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)
	userID := uuid.New()

	label := "Home"
	created, err := svc.Create(context.Background(), userID, SaveAddressRequest{
		Label: &label, Shipping: haldwaniShipping(),
	})
	require.NoError(t, err)

	shipping := haldwaniShipping()
	shipping.City = "Nainital"
	shipping.Pincode = "263001"
	blank := "  "
	updated, err := svc.Update(context.Background(), userID, created.ID, SaveAddressRequest{
		Label: &blank, Shipping: shipping,
	})
	require.NoError(t, err)
	require.Nil(t, updated.Label)
	require.Equal(t, "Nainital", updated.City)
	require.Equal(t, "263001", updated.Pincode)
}

func TestDeleteRemovesOwnAddressOnly(t *testing.T) {
	repo := newStubAddressRepo()
	svc, err := NewService(repo)
	require.NoError(t, err)
	owner := uuid.New()

	created, err := svc.Create(context.Background(), owner, SaveAddressRequest{Shipping: haldwaniShipping()})
	require.NoError(t, err)

	err = svc.Delete(context.Background(), uuid.New(), created.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	require.NoError(t, svc.Delete(context.Background(), owner, created.ID))
	list, err := svc.List(context.Background(), owner)
	require.NoError(t, err)
	require.Empty(t, list)
}
