package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/shopease/shopease-backend/pkg/db/models"
	pkgerrors "github.com/shopease/shopease-backend/pkg/errors"
)

// Known storefront setting keys. The map is open-ended; these are the ones
// the storefront reads.
const (
	KeyStoreName      = "store_name"
	KeySupportEmail   = "support_email"
	KeySupportPhone   = "support_phone"
	KeyFreeShippingAt = "free_shipping_threshold"
)

// SettingDTO is the transport shape for one key/value pair.
type SettingDTO struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// UpsertRequest sets one setting.
type UpsertRequest struct {
	Key   string `json:"key" validate:"required"`
	Value string `json:"value" validate:"required"`
}

// Service manages storefront configuration.
type Service interface {
	List(ctx context.Context) ([]SettingDTO, error)
	Get(ctx context.Context, key string) (*SettingDTO, error)
	Upsert(ctx context.Context, req UpsertRequest) (*SettingDTO, error)
	Delete(ctx context.Context, key string) error
}

type settingRepository interface {
	List(ctx context.Context) ([]models.Setting, error)
	Find(ctx context.Context, key string) (*models.Setting, error)
	Upsert(ctx context.Context, key, value string) (*models.Setting, error)
	Delete(ctx context.Context, key string) error
}

type service struct {
	repo settingRepository
}

// NewService builds a settings service backed by the provided repository.
func NewService(repo settingRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("settings repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context) ([]SettingDTO, error) {
	settings, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list settings")
	}
	out := make([]SettingDTO, 0, len(settings))
	for _, setting := range settings {
		out = append(out, SettingDTO{Key: setting.Key, Value: setting.Value})
	}
	return out, nil
}

func (s *service) Get(ctx context.Context, key string) (*SettingDTO, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "setting key is required")
	}
	setting, err := s.repo.Find(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "setting not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load setting")
	}
	return &SettingDTO{Key: setting.Key, Value: setting.Value}, nil
}

func (s *service) Upsert(ctx context.Context, req UpsertRequest) (*SettingDTO, error) {
	key := strings.TrimSpace(req.Key)
	if key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "setting key is required")
	}
	setting, err := s.repo.Upsert(ctx, key, req.Value)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save setting")
	}
	return &SettingDTO{Key: setting.Key, Value: setting.Value}, nil
}

func (s *service) Delete(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "setting key is required")
	}
	if err := s.repo.Delete(ctx, key); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete setting")
	}
	return nil
}
