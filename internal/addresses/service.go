package addresses

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopease/shopease-backend/pkg/db/models"
	pkgerrors "github.com/shopease/shopease-backend/pkg/errors"
	"github.com/shopease/shopease-backend/pkg/types"
)

// AddressDTO is a saved shipping destination.
type AddressDTO struct {
	ID        uuid.UUID `json:"id"`
	Label     *string   `json:"label,omitempty"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	State     string    `json:"state,omitempty"`
	Pincode   string    `json:"pincode"`
	Phone     string    `json:"phone"`
	IsDefault bool      `json:"is_default"`
}

// SaveAddressRequest creates or updates an address book entry.
type SaveAddressRequest struct {
	Label     *string               `json:"label,omitempty"`
	Shipping  types.ShippingAddress `json:"shipping" validate:"required"`
	IsDefault bool                  `json:"is_default"`
}

// Service manages a user's address book.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]AddressDTO, error)
	Create(ctx context.Context, userID uuid.UUID, req SaveAddressRequest) (*AddressDTO, error)
	Update(ctx context.Context, userID, addressID uuid.UUID, req SaveAddressRequest) (*AddressDTO, error)
	Delete(ctx context.Context, userID, addressID uuid.UUID) error
}

type addressRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Address, error)
	Find(ctx context.Context, id uuid.UUID) (*models.Address, error)
	Create(ctx context.Context, address *models.Address) error
	Save(ctx context.Context, address *models.Address) error
	Delete(ctx context.Context, id uuid.UUID) error
	ClearDefault(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo addressRepository
}

// NewService builds an address book service backed by the provided repository.
func NewService(repo addressRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("address repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]AddressDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	addresses, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list addresses")
	}
	out := make([]AddressDTO, 0, len(addresses))
	for i := range addresses {
		out = append(out, fromModel(&addresses[i]))
	}
	return out, nil
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, req SaveAddressRequest) (*AddressDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	shipping, err := normalizeShipping(req.Shipping)
	if err != nil {
		return nil, err
	}

	if req.IsDefault {
		if err := s.repo.ClearDefault(ctx, userID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear default address")
		}
	}

	var statePtr *string
	if shipping.State != "" {
		state := shipping.State
		statePtr = &state
	}
	address := &models.Address{
		UserID:    userID,
		Label:     trimLabel(req.Label),
		Address:   shipping.Address,
		City:      shipping.City,
		State:     statePtr,
		Pincode:   shipping.Pincode,
		Phone:     shipping.Phone,
		IsDefault: req.IsDefault,
	}
	if err := s.repo.Create(ctx, address); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create address")
	}
	dto := fromModel(address)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, userID, addressID uuid.UUID, req SaveAddressRequest) (*AddressDTO, error) {
	address, err := s.findOwned(ctx, userID, addressID)
	if err != nil {
		return nil, err
	}
	shipping, err := normalizeShipping(req.Shipping)
	if err != nil {
		return nil, err
	}

	if req.IsDefault && !address.IsDefault {
		if err := s.repo.ClearDefault(ctx, userID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear default address")
		}
	}

	address.Label = trimLabel(req.Label)
	address.Address = shipping.Address
	address.City = shipping.City
	if shipping.State != "" {
		state := shipping.State
		address.State = &state
	} else {
		address.State = nil
	}
	address.Pincode = shipping.Pincode
	address.Phone = shipping.Phone
	address.IsDefault = req.IsDefault

	if err := s.repo.Save(ctx, address); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update address")
	}
	dto := fromModel(address)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, userID, addressID uuid.UUID) error {
	if _, err := s.findOwned(ctx, userID, addressID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, addressID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete address")
	}
	return nil
}

func (s *service) findOwned(ctx context.Context, userID, addressID uuid.UUID) (*models.Address, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	address, err := s.repo.Find(ctx, addressID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load address")
	}
	if address.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}
	return address, nil
}

func normalizeShipping(shipping types.ShippingAddress) (types.ShippingAddress, error) {
	shipping.Normalize()
	if shipping.Address == "" || shipping.City == "" || shipping.Pincode == "" || shipping.Phone == "" {
		return shipping, pkgerrors.New(pkgerrors.CodeValidation, "address, city, pincode, and phone are required")
	}
	return shipping, nil
}

func trimLabel(label *string) *string {
	if label == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*label)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func fromModel(a *models.Address) AddressDTO {
	state := ""
	if a.State != nil {
		state = *a.State
	}
	return AddressDTO{
		ID:        a.ID,
		Label:     a.Label,
		Address:   a.Address,
		City:      a.City,
		State:     state,
		Pincode:   a.Pincode,
		Phone:     a.Phone,
		IsDefault: a.IsDefault,
	}
}
