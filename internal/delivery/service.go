package delivery

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/shopease/shopease-backend/pkg/db/models"
	pkgerrors "github.com/shopease/shopease-backend/pkg/errors"
)

// CheckResult is the public serviceability answer for a pincode.
type CheckResult struct {
	Pincode     string `json:"pincode"`
	Serviceable bool   `json:"serviceable"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
}

// ZoneDTO is the admin-facing zone shape.
type ZoneDTO struct {
	ID       uuid.UUID `json:"id"`
	City     string    `json:"city"`
	State    string    `json:"state"`
	Pincode  string    `json:"pincode"`
	IsActive bool      `json:"is_active"`
}

// CreateZoneRequest is the admin payload for a new serviceable area.
type CreateZoneRequest struct {
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	Pincode string `json:"pincode" validate:"required,len=6,numeric"`
}

// Service answers serviceability checks and manages the zone allow-list.
type Service interface {
	Check(ctx context.Context, pincode string) (*CheckResult, error)
	Serviceable(ctx context.Context, pincode string) (bool, error)
	ValidateDestination(ctx context.Context, city, pincode string) error
	ListZones(ctx context.Context) ([]ZoneDTO, error)
	CreateZone(ctx context.Context, req CreateZoneRequest) (*ZoneDTO, error)
	BulkCreateZones(ctx context.Context, reqs []CreateZoneRequest) ([]ZoneDTO, error)
	SetZoneActive(ctx context.Context, id uuid.UUID, active bool) (*ZoneDTO, error)
	DeleteZone(ctx context.Context, id uuid.UUID) error
}

type zoneRepository interface {
	List(ctx context.Context) ([]models.DeliveryZone, error)
	FindByPincode(ctx context.Context, pincode string) (*models.DeliveryZone, error)
	Create(ctx context.Context, zone *models.DeliveryZone) error
	Update(ctx context.Context, zone *models.DeliveryZone) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo zoneRepository
}

// NewService builds a delivery service backed by the provided repository.
func NewService(repo zoneRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("zone repository is required")
	}
	return &service{repo: repo}, nil
}

// Check reports whether the pincode is deliverable and which city covers it.
func (s *service) Check(ctx context.Context, pincode string) (*CheckResult, error) {
	pincode = strings.TrimSpace(pincode)
	if len(pincode) != 6 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pincode must be 6 digits")
	}

	zone, err := s.repo.FindByPincode(ctx, pincode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &CheckResult{Pincode: pincode, Serviceable: false}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check pincode")
	}
	if !zone.IsActive {
		return &CheckResult{Pincode: pincode, Serviceable: false}, nil
	}
	return &CheckResult{
		Pincode:     pincode,
		Serviceable: true,
		City:        zone.City,
		State:       zone.State,
	}, nil
}

// Serviceable is the narrow check used by checkout.
func (s *service) Serviceable(ctx context.Context, pincode string) (bool, error) {
	result, err := s.Check(ctx, pincode)
	if err != nil {
		typed := pkgerrors.As(err)
		if typed != nil && typed.Code() == pkgerrors.CodeValidation {
			return false, nil
		}
		return false, err
	}
	return result.Serviceable, nil
}

// ValidateDestination checks a full shipping destination against the
// allow-list: the city must match an active zone case-insensitively, and the
// pincode must be one of that city's zones. The error says which constraint
// failed and carries the valid options, so the storefront can show them.
func (s *service) ValidateDestination(ctx context.Context, city, pincode string) error {
	city = strings.TrimSpace(city)
	pincode = strings.TrimSpace(pincode)
	if city == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "city is required")
	}
	if len(pincode) != 6 {
		return pkgerrors.New(pkgerrors.CodeValidation, "pincode must be 6 digits")
	}

	zones, err := s.repo.List(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list zones")
	}

	seenCities := map[string]string{}
	var cityZones []models.DeliveryZone
	for _, zone := range zones {
		if !zone.IsActive {
			continue
		}
		if _, ok := seenCities[strings.ToLower(zone.City)]; !ok {
			seenCities[strings.ToLower(zone.City)] = zone.City
		}
		if strings.EqualFold(zone.City, city) {
			cityZones = append(cityZones, zone)
		}
	}

	if len(cityZones) == 0 {
		cities := make([]string, 0, len(seenCities))
		for _, name := range seenCities {
			cities = append(cities, name)
		}
		sort.Strings(cities)
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("delivery is not available in %s", city)).
			WithDetails(map[string]any{"field": "city", "allowed": cities})
	}

	pincodes := make([]string, 0, len(cityZones))
	for _, zone := range cityZones {
		if zone.Pincode == pincode {
			return nil
		}
		pincodes = append(pincodes, zone.Pincode)
	}
	sort.Strings(pincodes)
	return pkgerrors.New(pkgerrors.CodeValidation,
		fmt.Sprintf("delivery is not available for pincode %s in %s", pincode, cityZones[0].City)).
		WithDetails(map[string]any{"field": "pincode", "allowed": pincodes})
}

func (s *service) ListZones(ctx context.Context) ([]ZoneDTO, error) {
	zones, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list zones")
	}
	out := make([]ZoneDTO, 0, len(zones))
	for _, zone := range zones {
		out = append(out, fromModel(zone))
	}
	return out, nil
}

func (s *service) CreateZone(ctx context.Context, req CreateZoneRequest) (*ZoneDTO, error) {
	pincode := strings.TrimSpace(req.Pincode)
	if len(pincode) != 6 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pincode must be 6 digits")
	}
	if _, err := s.repo.FindByPincode(ctx, pincode); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "pincode already covered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check pincode")
	}

	zone := &models.DeliveryZone{
		City:     strings.TrimSpace(req.City),
		State:    strings.TrimSpace(req.State),
		Pincode:  pincode,
		IsActive: true,
	}
	if err := s.repo.Create(ctx, zone); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create zone")
	}
	dto := fromModel(*zone)
	return &dto, nil
}

// BulkCreateZones imports a batch of zones, typically pasted in when the
// store expands coverage. Rows that fail keep their error; rows that succeed
// stay created either way. The combined error names every rejected pincode.
func (s *service) BulkCreateZones(ctx context.Context, reqs []CreateZoneRequest) ([]ZoneDTO, error) {
	var errs []error
	created := make([]ZoneDTO, 0, len(reqs))
	for _, req := range reqs {
		zone, err := s.CreateZone(ctx, req)
		if err != nil {
			errs = append(errs, fmt.Errorf("pincode %s: %w", strings.TrimSpace(req.Pincode), err))
			continue
		}
		created = append(created, *zone)
	}
	return created, multierr.Combine(errs...)
}

func (s *service) SetZoneActive(ctx context.Context, id uuid.UUID, active bool) (*ZoneDTO, error) {
	zones, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list zones")
	}
	for i := range zones {
		if zones[i].ID != id {
			continue
		}
		zones[i].IsActive = active
		if err := s.repo.Update(ctx, &zones[i]); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update zone")
		}
		dto := fromModel(zones[i])
		return &dto, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "zone not found")
}

func (s *service) DeleteZone(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete zone")
	}
	return nil
}

func fromModel(zone models.DeliveryZone) ZoneDTO {
	return ZoneDTO{
		ID:       zone.ID,
		City:     zone.City,
		State:    zone.State,
		Pincode:  zone.Pincode,
		IsActive: zone.IsActive,
	}
}
